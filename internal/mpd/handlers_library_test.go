package mpd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmpd-project/rmpd/internal/core"
)

func seedLibrary(t *testing.T, d *Dispatcher) {
	t.Helper()
	d1, d2 := 200*time.Millisecond+3*time.Second, 4*time.Second
	d.Library.Index(core.Song{URI: "rock/a.flac", Artist: "Artist A", Title: "Song A", Duration: &d1})
	d.Library.Index(core.Song{URI: "rock/b.flac", Artist: "Artist B", Title: "Song B", Duration: &d2})
	d.Library.Index(core.Song{URI: "jazz/c.flac", Artist: "Artist A", Title: "Song C", Duration: &d2})
}

func TestHandleFindLegacyArgsExactMatch(t *testing.T) {
	d := newTestDispatcher(t)
	seedLibrary(t, d)
	cs := d.NewConnState()

	resp, err := handleFind(d, cs, []string{"Artist", "Artist A"})
	require.NoError(t, err)
	assert.Contains(t, resp, "Song A")
	assert.Contains(t, resp, "Song C")
	assert.NotContains(t, resp, "Song B")
}

func TestHandleSearchCaseInsensitive(t *testing.T) {
	d := newTestDispatcher(t)
	seedLibrary(t, d)
	cs := d.NewConnState()

	resp, err := handleSearch(d, cs, []string{"Artist", "artist a"})
	require.NoError(t, err)
	assert.Contains(t, resp, "Song A")
}

func TestHandleFindCaseSensitiveRejectsWrongCase(t *testing.T) {
	d := newTestDispatcher(t)
	seedLibrary(t, d)
	cs := d.NewConnState()

	resp, err := handleFind(d, cs, []string{"Artist", "artist a"})
	require.NoError(t, err)
	assert.Empty(t, resp)
}

func TestHandleCountReturnsSongsAndPlaytime(t *testing.T) {
	d := newTestDispatcher(t)
	seedLibrary(t, d)
	cs := d.NewConnState()

	resp, err := handleCount(d, cs, []string{"Artist", "Artist A"})
	require.NoError(t, err)
	assert.Contains(t, resp, "songs: 2")
	assert.Contains(t, resp, "playtime: 7")
}

func TestHandleListDistinctValues(t *testing.T) {
	d := newTestDispatcher(t)
	seedLibrary(t, d)
	cs := d.NewConnState()

	resp, err := handleList(d, cs, []string{"Artist"})
	require.NoError(t, err)
	assert.Contains(t, resp, "Artist: Artist A")
	assert.Contains(t, resp, "Artist: Artist B")
}

func TestHandleLsInfoListsDirectoriesAndFiles(t *testing.T) {
	d := newTestDispatcher(t)
	seedLibrary(t, d)
	cs := d.NewConnState()

	resp, err := handleLsInfo(d, cs, nil)
	require.NoError(t, err)
	assert.Contains(t, resp, "directory: rock")
	assert.Contains(t, resp, "directory: jazz")
}

func TestHandleListAllInfoIsRecursive(t *testing.T) {
	d := newTestDispatcher(t)
	seedLibrary(t, d)
	cs := d.NewConnState()

	resp, err := handleListAllInfo(d, cs, nil)
	require.NoError(t, err)
	assert.Contains(t, resp, "rock/a.flac")
	assert.Contains(t, resp, "jazz/c.flac")
}

func TestHandleUpdateStartsJob(t *testing.T) {
	d := newTestDispatcher(t)
	block := make(chan struct{})
	d.ScanFunc = func(ctx context.Context, rescan bool) ([]core.Song, error) {
		<-block
		return nil, nil
	}
	t.Cleanup(func() { close(block) })
	cs := d.NewConnState()

	resp, err := handleUpdate(d, cs, nil)
	require.NoError(t, err)
	assert.Contains(t, resp, "updating_db")
}

func TestHandleGetFingerprintIsUnimplemented(t *testing.T) {
	d := newTestDispatcher(t)
	cs := d.NewConnState()

	_, err := handleGetFingerprint(d, cs, []string{"a.flac"})
	ackErr, ok := err.(*AckError)
	require.True(t, ok)
	assert.Equal(t, AckNoExist, ackErr.Code)
}
