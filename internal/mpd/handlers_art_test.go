package mpd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmpd-project/rmpd/internal/artcache"
	"github.com/rmpd-project/rmpd/internal/core"
)

func TestServeArtWithoutCacheConfiguredReturnsNoExist(t *testing.T) {
	d := newTestDispatcher(t)
	dur := time.Second
	d.Library.Index(core.Song{URI: "a.flac", Duration: &dur})
	cs := d.NewConnState()

	_, err := serveArt(d, cs, []string{"a.flac", "0"})
	ackErr, ok := err.(*AckError)
	require.True(t, ok)
	assert.Equal(t, AckNoExist, ackErr.Code)
}

func TestServeArtUnknownSongReturnsNoExist(t *testing.T) {
	d := newTestDispatcher(t)
	cache, err := artcache.New(t.TempDir(), 16)
	require.NoError(t, err)
	d.ArtCache = cache
	cs := d.NewConnState()

	_, err = serveArt(d, cs, []string{"missing.flac", "0"})
	ackErr, ok := err.(*AckError)
	require.True(t, ok)
	assert.Equal(t, AckNoExist, ackErr.Code)
}

func TestServeArtRejectsNegativeOffset(t *testing.T) {
	d := newTestDispatcher(t)
	cache, err := artcache.New(t.TempDir(), 16)
	require.NoError(t, err)
	d.ArtCache = cache
	dur := time.Second
	d.Library.Index(core.Song{URI: "a.flac", Duration: &dur})
	cs := d.NewConnState()

	_, err = serveArt(d, cs, []string{"a.flac", "-1"})
	ackErr, ok := err.(*AckError)
	require.True(t, ok)
	assert.Equal(t, AckArg, ackErr.Code)
}

func TestServeArtServesCachedDataInChunks(t *testing.T) {
	d := newTestDispatcher(t)
	cache, err := artcache.New(t.TempDir(), 16)
	require.NoError(t, err)
	d.ArtCache = cache
	dur := time.Second
	d.Library.Index(core.Song{URI: "a.flac", Duration: &dur})
	require.NoError(t, cache.Put("a.flac", []byte("0123456789"), "image/jpeg"))

	cs := d.NewConnState()
	cs.binaryLimit = 4

	resp, err := serveArt(d, cs, []string{"a.flac", "0"})
	require.NoError(t, err)
	assert.Contains(t, resp, "size: 10")
	assert.Contains(t, resp, "type: image/jpeg")
	assert.Contains(t, resp, "binary: 4")
	assert.Contains(t, resp, "0123")

	resp, err = serveArt(d, cs, []string{"a.flac", "4"})
	require.NoError(t, err)
	assert.Contains(t, resp, "binary: 4")
	assert.Contains(t, resp, "4567")
}

func TestServeArtOffsetBeyondSizeReturnsArgError(t *testing.T) {
	d := newTestDispatcher(t)
	cache, err := artcache.New(t.TempDir(), 16)
	require.NoError(t, err)
	d.ArtCache = cache
	dur := time.Second
	d.Library.Index(core.Song{URI: "a.flac", Duration: &dur})
	require.NoError(t, cache.Put("a.flac", []byte("abc"), "image/jpeg"))
	cs := d.NewConnState()

	_, err = serveArt(d, cs, []string{"a.flac", "100"})
	ackErr, ok := err.(*AckError)
	require.True(t, ok)
	assert.Equal(t, AckArg, ackErr.Code)
}

func TestExtractArtReturnsErrorForNonTaggedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plain.txt"), []byte("not audio"), 0o644))

	_, _, err := extractArt(dir, "plain.txt")
	assert.Error(t, err)
}
