package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadUsesDefaultsWithNoConfigFile(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load(fs, filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 6600, cfg.Port)
	assert.Equal(t, 512, cfg.ArtCacheSize)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rmpd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 7700\nmusic_directory: /music\n"), 0o644))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load(fs, path)
	require.NoError(t, err)
	assert.Equal(t, 7700, cfg.Port)
	assert.Equal(t, "/music", cfg.MusicDirectory)
}

func TestWriteDefaultDoesNotOverwriteExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rmpd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 1234\n"), 0o644))

	require.NoError(t, WriteDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1234")
}

func TestWriteDefaultCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "rmpd.yaml")
	require.NoError(t, WriteDefault(path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
