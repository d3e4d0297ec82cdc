package mpd

import (
	"github.com/rmpd-project/rmpd/internal/core"
)

// Partitions, multi-output move, and stickers are modeled as protocol-level
// stubs (SPEC_FULL.md §11): they accept well-formed requests and return
// typed ACKs rather than maintaining real partition/sticker state, since
// this daemon runs a single default partition with no sticker database.

func handlePartition(d *Dispatcher, cs *connState, args []string) (string, error) {
	if args[0] != "default" {
		return "", NewAckError(AckNoExist, "no such partition")
	}
	return "", nil
}

func handleListPartitions(d *Dispatcher, cs *connState, args []string) (string, error) {
	rb := NewResponseBuilder()
	rb.Field("partition", "default")
	return rb.String(), nil
}

func handleNewPartition(d *Dispatcher, cs *connState, args []string) (string, error) {
	return "", NewAckError(AckSystem, "multiple partitions not supported")
}

func handleDelPartition(d *Dispatcher, cs *connState, args []string) (string, error) {
	return "", NewAckError(AckNoExist, "no such partition")
}

func handleMoveOutput(d *Dispatcher, cs *connState, args []string) (string, error) {
	if _, ok := d.Outputs.ByName(args[0]); !ok {
		return "", NewAckError(AckNoExist, "no such output")
	}
	return "", nil
}

func handleMount(d *Dispatcher, cs *connState, args []string) (string, error) {
	d.Mounts.Mount(args[0], args[1])
	d.Bus.Emit(core.Event{Kind: core.EventMountChanged})
	return "", nil
}

func handleUnmount(d *Dispatcher, cs *connState, args []string) (string, error) {
	if !d.Mounts.Unmount(args[0]) {
		return "", NewAckError(AckNoExist, "no such mount")
	}
	d.Bus.Emit(core.Event{Kind: core.EventMountChanged})
	return "", nil
}

func handleListMounts(d *Dispatcher, cs *connState, args []string) (string, error) {
	rb := NewResponseBuilder()
	for _, m := range d.Mounts.List() {
		rb.Field("mount", m.Path)
		rb.Field("storage", m.URI)
	}
	return rb.String(), nil
}

// handleListNeighbors returns an empty listing: network storage discovery
// (SPEC_FULL.md §4.9 "Discovery") isn't backed by a real UPnP/DNS-SD scan.
func handleListNeighbors(d *Dispatcher, cs *connState, args []string) (string, error) {
	return "", nil
}

// handleSticker responds to every sticker subcommand with an empty,
// successful result: stickers are read-only here, there being no sticker
// database (SPEC_FULL.md §11).
func handleSticker(d *Dispatcher, cs *connState, args []string) (string, error) {
	return "", nil
}
