package mpd

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmpd-project/rmpd/internal/broker"
	"github.com/rmpd-project/rmpd/internal/core"
	"github.com/rmpd-project/rmpd/internal/library"
	"github.com/rmpd-project/rmpd/internal/mount"
	"github.com/rmpd-project/rmpd/internal/outputs"
	"github.com/rmpd-project/rmpd/internal/player"
	"github.com/rmpd-project/rmpd/internal/playback"
	"github.com/rmpd-project/rmpd/internal/queue"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	bus := core.NewEventBus()
	br := broker.New()
	q := queue.New()
	log := logrus.NewEntry(logrus.New())
	p := player.New(q, playback.NewSimEngine(), bus, log)
	lib, err := library.Open("")
	require.NoError(t, err)
	out := outputs.New([]outputs.Output{{Name: "default", Plugin: "sim", Enabled: true}})
	mnt := mount.New()
	return NewDispatcher(log, bus, br, q, p, lib, out, mnt, "/music", "")
}

func TestDispatchPingReturnsBareOK(t *testing.T) {
	d := newTestDispatcher(t)
	cs := d.NewConnState()
	resp, closeConn := d.Dispatch(cs, "ping")
	assert.Equal(t, "OK\n", resp)
	assert.False(t, closeConn)
}

func TestDispatchUnknownCommandReturnsAck(t *testing.T) {
	d := newTestDispatcher(t)
	cs := d.NewConnState()
	resp, _ := d.Dispatch(cs, "bogus")
	assert.Equal(t, "ACK [5@0] {bogus} unknown command\n", resp)
}

func TestDispatchWrongArityReturnsAck(t *testing.T) {
	d := newTestDispatcher(t)
	cs := d.NewConnState()
	resp, _ := d.Dispatch(cs, "setvol")
	assert.Contains(t, resp, "ACK [2@0]")
}

func TestDispatchAddAndPlaylistInfo(t *testing.T) {
	d := newTestDispatcher(t)
	dur := 3 * time.Second
	d.Library.Index(core.Song{URI: "a.flac", Title: "A", Duration: &dur})

	cs := d.NewConnState()
	resp, _ := d.Dispatch(cs, `add "a.flac"`)
	assert.Contains(t, resp, "Id: 0")
	assert.Contains(t, resp, "OK\n")

	resp, _ = d.Dispatch(cs, "playlistinfo")
	assert.Contains(t, resp, "file: a.flac")
	assert.Contains(t, resp, "Title: A")
}

func TestDispatchAddUnknownURIReturnsNoExist(t *testing.T) {
	d := newTestDispatcher(t)
	cs := d.NewConnState()
	resp, _ := d.Dispatch(cs, `add "missing.flac"`)
	assert.Contains(t, resp, "ACK [50@0]")
}

func TestCommandListOkModeInsertsListOKPerCommand(t *testing.T) {
	d := newTestDispatcher(t)
	cs := d.NewConnState()

	resp, _ := d.Dispatch(cs, "command_list_ok_begin")
	assert.Equal(t, "", resp)
	resp, _ = d.Dispatch(cs, "ping")
	assert.Equal(t, "", resp)
	resp, _ = d.Dispatch(cs, "ping")
	assert.Equal(t, "", resp)
	resp, _ = d.Dispatch(cs, "command_list_end")

	assert.Equal(t, "list_OK\nlist_OK\nOK\n", resp)
}

func TestCommandListPlainModeHasSingleOK(t *testing.T) {
	d := newTestDispatcher(t)
	cs := d.NewConnState()

	d.Dispatch(cs, "command_list_begin")
	d.Dispatch(cs, "ping")
	d.Dispatch(cs, "ping")
	resp, _ := d.Dispatch(cs, "command_list_end")

	assert.Equal(t, "OK\n", resp)
}

func TestCommandListStopsAtFirstFailureWithBatchIndex(t *testing.T) {
	d := newTestDispatcher(t)
	cs := d.NewConnState()

	d.Dispatch(cs, "command_list_begin")
	d.Dispatch(cs, "ping")
	d.Dispatch(cs, "bogus")
	d.Dispatch(cs, "ping")
	resp, _ := d.Dispatch(cs, "command_list_end")

	assert.Equal(t, "ACK [5@1] {bogus} unknown command\n", resp)
}

func TestNestedCommandListBeginReportsBatchIndex(t *testing.T) {
	d := newTestDispatcher(t)
	cs := d.NewConnState()

	d.Dispatch(cs, "command_list_begin")
	d.Dispatch(cs, "ping")
	d.Dispatch(cs, "ping")
	resp, closeConn := d.Dispatch(cs, "command_list_begin")

	assert.Equal(t, "ACK [5@2] {command_list_begin} nested command list\n", resp)
	assert.False(t, closeConn)
}

func TestPasswordChecksConfiguredPassword(t *testing.T) {
	d := newTestDispatcher(t)
	d.Password = "secret"
	cs := d.NewConnState()

	resp, _ := d.Dispatch(cs, `password "wrong"`)
	assert.Contains(t, resp, "ACK [3@0]")

	resp, _ = d.Dispatch(cs, `password "secret"`)
	assert.Equal(t, "OK\n", resp)
}

func TestKillClosesConnectionAndShutdown(t *testing.T) {
	d := newTestDispatcher(t)
	cs := d.NewConnState()

	resp, closeConn := d.Dispatch(cs, "kill")
	assert.Equal(t, "OK\n", resp)
	assert.True(t, closeConn)

	select {
	case <-d.Shutdown:
	default:
		t.Fatal("expected Shutdown to be closed after kill")
	}
}
