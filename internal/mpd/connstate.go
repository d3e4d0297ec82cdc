package mpd

import (
	"github.com/google/uuid"

	"github.com/rmpd-project/rmpd/internal/broker"
	"github.com/rmpd-project/rmpd/internal/core"
)

// tagMask tracks which tags "tagtypes" has enabled for this connection.
// All tags start enabled, matching MPD's default.
type tagMask struct {
	disabled map[string]bool
}

func newTagMask() *tagMask {
	return &tagMask{disabled: make(map[string]bool)}
}

func (m *tagMask) enabled(tag string) bool { return !m.disabled[tag] }

func (m *tagMask) clear(all []string) {
	for _, t := range all {
		m.disabled[t] = true
	}
}

func (m *tagMask) setAll(all []string, enabled bool) {
	for _, t := range all {
		m.disabled[t] = !enabled
	}
}

func (m *tagMask) set(tags []string, enabled bool) {
	for _, t := range tags {
		m.disabled[t] = !enabled
	}
}

// connState is the per-connection protocol state: idle subscriptions, the
// message broker mailbox, enabled tag types, binary chunk limit, and
// command-list batching buffer. One instance lives for the lifetime of a
// net.Conn.
type connState struct {
	// id uniquely identifies this connection for the lifetime of the
	// process, independent of the protocol's small monotonic connection
	// id; it's surfaced in log fields so a connection's lines can be
	// correlated across a busy server.
	id string

	mailbox *broker.Mailbox
	tags    *tagMask

	binaryLimit int

	// idle mode
	idling     bool
	idleFilter map[core.Subsystem]bool // empty = all subsystems
	idleSub    *core.Subscription

	// command list batching
	inBatch   bool
	batchOK   bool
	batchCmds [][]string
}

func newConnState(br *broker.Broker) *connState {
	return &connState{
		id:          uuid.NewString(),
		mailbox:     br.NewMailbox(),
		tags:        newTagMask(),
		binaryLimit: 8192,
	}
}

func (c *connState) close() {
	c.mailbox.Close()
	if c.idleSub != nil {
		c.idleSub.Close()
		c.idleSub = nil
	}
}
