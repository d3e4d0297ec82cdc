package artcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutThenGetRoundTrips(t *testing.T) {
	c, err := New(t.TempDir(), 8)
	require.NoError(t, err)

	require.NoError(t, c.Put("Music/a.flac", []byte("fake-jpeg-bytes"), "image/jpeg"))

	data, mime, ok := c.Get("Music/a.flac")
	require.True(t, ok)
	assert.Equal(t, []byte("fake-jpeg-bytes"), data)
	assert.Equal(t, "image/jpeg", mime)
}

func TestGetMissReturnsFalse(t *testing.T) {
	c, err := New(t.TempDir(), 8)
	require.NoError(t, err)

	_, _, ok := c.Get("nope")
	assert.False(t, ok)
}

func TestInvalidateRemovesEntry(t *testing.T) {
	c, err := New(t.TempDir(), 8)
	require.NoError(t, err)
	require.NoError(t, c.Put("a", []byte("x"), "image/png"))

	require.NoError(t, c.Invalidate("a"))
	_, _, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCapacityEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New(t.TempDir(), 1)
	require.NoError(t, err)

	require.NoError(t, c.Put("a", []byte("x"), "image/png"))
	require.NoError(t, c.Put("b", []byte("y"), "image/png"))

	assert.Equal(t, 1, c.Len())
	_, _, ok := c.Get("a")
	assert.False(t, ok, "a should have been evicted")
	_, _, ok = c.Get("b")
	assert.True(t, ok)
}
