package mpd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmpd-project/rmpd/internal/core"
)

func TestParseIdleFilterEmptyMeansNoFilter(t *testing.T) {
	f, err := parseIdleFilter(nil)
	require.NoError(t, err)
	assert.Nil(t, f)
	assert.True(t, idleFilterAllows(f, core.SubsystemPlayer))
}

func TestParseIdleFilterRejectsUnknownSubsystem(t *testing.T) {
	_, err := parseIdleFilter([]string{"bogus"})
	assert.Error(t, err)
}

func TestParseIdleFilterAcceptsKnownSubsystems(t *testing.T) {
	f, err := parseIdleFilter([]string{"player", "mixer"})
	require.NoError(t, err)
	assert.True(t, idleFilterAllows(f, core.SubsystemPlayer))
	assert.True(t, idleFilterAllows(f, core.SubsystemMixer))
	assert.False(t, idleFilterAllows(f, core.SubsystemPlaylist))
}

func TestEnterIdleReturnsImmediatelyWhenEventAlreadyPending(t *testing.T) {
	d := newTestDispatcher(t)
	cs := d.NewConnState()

	d.Bus.Emit(core.Event{Kind: core.EventQueueChanged})
	// Give Emit's non-blocking send a moment to land before subscribing
	// would miss it; EnterIdle subscribes first so this models an event
	// queued between two prior idle cycles.
	cs.idleSub = d.Bus.Subscribe()
	d.Bus.Emit(core.Event{Kind: core.EventQueueChanged})

	lineCh := make(chan string)
	resp, closeConn := d.EnterIdle(cs, nil, lineCh)
	assert.False(t, closeConn)
	assert.Equal(t, "changed: playlist\nOK\n", resp)
}

func TestEnterIdleWakesOnNoidle(t *testing.T) {
	d := newTestDispatcher(t)
	cs := d.NewConnState()
	lineCh := make(chan string)

	done := make(chan struct{})
	var resp string
	var closeConn bool
	go func() {
		resp, closeConn = d.EnterIdle(cs, nil, lineCh)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	lineCh <- "noidle"

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("EnterIdle did not return after noidle")
	}
	assert.False(t, closeConn)
	assert.Equal(t, "OK\n", resp)
}

func TestEnterIdleWakesOnEvent(t *testing.T) {
	d := newTestDispatcher(t)
	cs := d.NewConnState()
	lineCh := make(chan string)

	done := make(chan struct{})
	var resp string
	go func() {
		resp, _ = d.EnterIdle(cs, nil, lineCh)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	d.Bus.Emit(core.Event{Kind: core.EventVolumeChanged})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("EnterIdle did not wake on event")
	}
	assert.Equal(t, "changed: mixer\nOK\n", resp)
}

func TestEnterIdleClosesOnConnectionGone(t *testing.T) {
	d := newTestDispatcher(t)
	cs := d.NewConnState()
	lineCh := make(chan string)

	done := make(chan struct{})
	var closeConn bool
	go func() {
		_, closeConn = d.EnterIdle(cs, nil, lineCh)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	close(lineCh)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("EnterIdle did not return after connection close")
	}
	assert.True(t, closeConn)
}
