package mpd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleCommandsListsKnownCommands(t *testing.T) {
	d := newTestDispatcher(t)
	cs := d.NewConnState()

	resp, err := handleCommands(d, cs, nil)
	require.NoError(t, err)
	assert.Contains(t, resp, "command: ping")
	assert.Contains(t, resp, "command: status")
}

func TestHandleTagTypesDefaultsToAllEnabled(t *testing.T) {
	d := newTestDispatcher(t)
	cs := d.NewConnState()

	resp, err := handleTagTypes(d, cs, nil)
	require.NoError(t, err)
	assert.Contains(t, resp, "tagtype: Artist")
	assert.Contains(t, resp, "tagtype: Genre")
}

func TestHandleTagTypesDisableRemovesFromDefaultList(t *testing.T) {
	d := newTestDispatcher(t)
	cs := d.NewConnState()

	_, err := handleTagTypes(d, cs, []string{"disable", "Genre"})
	require.NoError(t, err)

	resp, err := handleTagTypes(d, cs, nil)
	require.NoError(t, err)
	assert.NotContains(t, resp, "tagtype: Genre")
	assert.Contains(t, resp, "tagtype: Artist")
}

func TestHandleTagTypesClearThenEnableRestoresOne(t *testing.T) {
	d := newTestDispatcher(t)
	cs := d.NewConnState()

	_, err := handleTagTypes(d, cs, []string{"clear"})
	require.NoError(t, err)
	resp, err := handleTagTypes(d, cs, nil)
	require.NoError(t, err)
	assert.Empty(t, resp)

	_, err = handleTagTypes(d, cs, []string{"enable", "Title"})
	require.NoError(t, err)
	resp, err = handleTagTypes(d, cs, nil)
	require.NoError(t, err)
	assert.Equal(t, "tagtype: Title\n", resp)
}

func TestHandleTagTypesRejectsUnknownSubcommand(t *testing.T) {
	d := newTestDispatcher(t)
	cs := d.NewConnState()

	_, err := handleTagTypes(d, cs, []string{"bogus"})
	ackErr, ok := err.(*AckError)
	require.True(t, ok)
	assert.Equal(t, AckArg, ackErr.Code)
}

func TestHandleConfigReturnsMusicDirectory(t *testing.T) {
	d := newTestDispatcher(t)
	cs := d.NewConnState()

	resp, err := handleConfig(d, cs, nil)
	require.NoError(t, err)
	assert.Contains(t, resp, "music_directory: /music")
}
