package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanSkipsNonAudioAndReturnsRelativeURIs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Artist", "Album"), 0o755))
	trackPath := filepath.Join(dir, "Artist", "Album", "01.flac")
	require.NoError(t, os.WriteFile(trackPath, []byte("not a real flac file"), 0o644))

	s := New(dir, 1024, logrus.NewEntry(logrus.New()))
	songs, err := s.Scan()
	require.NoError(t, err)
	require.Len(t, songs, 1)
	assert.Equal(t, "Artist/Album/01.flac", songs[0].URI)
}

func TestScanSkipsUnchangedFileOnSecondPass(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.mp3"), []byte("x"), 0o644))

	s := New(dir, 1024, logrus.NewEntry(logrus.New()))
	first, err := s.Scan()
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := s.Scan()
	require.NoError(t, err)
	assert.Empty(t, second, "unchanged file should be skipped on rescan")
}
