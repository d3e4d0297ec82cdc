package mpd

import (
	"strconv"
	"strings"

	"github.com/rmpd-project/rmpd/internal/core"
	"github.com/rmpd-project/rmpd/internal/queue"
)

// parseRange parses a POS or "START:END" range argument, returning the
// half-open [start, end) bounds. A bare POS yields [POS, POS+1). end is
// not checked against a queue's length; each caller decides whether to
// clamp it or reject it.
func parseRange(s string) (start, end int, err error) {
	if idx := strings.Index(s, ":"); idx >= 0 {
		start, err = strconv.Atoi(s[:idx])
		if err != nil {
			return 0, 0, NewAckError(AckArg, "invalid range start")
		}
		end, err = strconv.Atoi(s[idx+1:])
		if err != nil {
			return 0, 0, NewAckError(AckArg, "invalid range end")
		}
		return start, end, nil
	}
	pos, err := strconv.Atoi(s)
	if err != nil {
		return 0, 0, NewAckError(AckArg, "invalid position")
	}
	return pos, pos + 1, nil
}

func handleAdd(d *Dispatcher, cs *connState, args []string) (string, error) {
	return addSong(d, args, false)
}

func handleAddID(d *Dispatcher, cs *connState, args []string) (string, error) {
	return addSong(d, args, true)
}

func addSong(d *Dispatcher, args []string, alwaysEmitID bool) (string, error) {
	uri := args[0]
	song, ok := d.Library.SongByURI(uri)
	if !ok {
		return "", NewAckError(AckNoExist, "no such song")
	}

	var id uint32
	if len(args) == 2 {
		pos, err := strconv.Atoi(args[1])
		if err != nil {
			return "", NewAckError(AckArg, "invalid position")
		}
		id, _ = d.Queue.AddAt(song, pos)
	} else {
		id = d.Queue.Add(song)
	}
	d.Bus.Emit(core.Event{Kind: core.EventQueueChanged})

	rb := NewResponseBuilder()
	rb.Field("Id", id)
	return rb.String(), nil
}

func handleDelete(d *Dispatcher, cs *connState, args []string) (string, error) {
	start, end, err := parseRange(args[0])
	if err != nil {
		return "", err
	}
	if start < 0 || end <= start {
		return "", NewAckError(AckArg, "invalid range")
	}
	for pos := end - 1; pos >= start; pos-- {
		if !d.Queue.DeleteAt(pos) {
			return "", NewAckError(AckNoExist, "no such song")
		}
	}
	d.Bus.Emit(core.Event{Kind: core.EventQueueChanged})
	return "", nil
}

func handleDeleteID(d *Dispatcher, cs *connState, args []string) (string, error) {
	id, err := parseUint32(args[0])
	if err != nil {
		return "", err
	}
	if !d.Queue.DeleteID(id) {
		return "", NewAckError(AckNoExist, "no such song")
	}
	d.Bus.Emit(core.Event{Kind: core.EventQueueChanged})
	return "", nil
}

func handleMove(d *Dispatcher, cs *connState, args []string) (string, error) {
	from, err := strconv.Atoi(args[0])
	if err != nil {
		return "", NewAckError(AckArg, "invalid position")
	}
	to, err := strconv.Atoi(args[1])
	if err != nil {
		return "", NewAckError(AckArg, "invalid position")
	}
	if !d.Queue.Move(from, to) {
		return "", NewAckError(AckNoExist, "no such song")
	}
	d.Bus.Emit(core.Event{Kind: core.EventQueueChanged})
	return "", nil
}

func handleMoveID(d *Dispatcher, cs *connState, args []string) (string, error) {
	id, err := parseUint32(args[0])
	if err != nil {
		return "", err
	}
	to, err := strconv.Atoi(args[1])
	if err != nil {
		return "", NewAckError(AckArg, "invalid position")
	}
	if !d.Queue.MoveID(id, to) {
		return "", NewAckError(AckNoExist, "no such song")
	}
	d.Bus.Emit(core.Event{Kind: core.EventQueueChanged})
	return "", nil
}

func handleSwap(d *Dispatcher, cs *connState, args []string) (string, error) {
	a, err := strconv.Atoi(args[0])
	if err != nil {
		return "", NewAckError(AckArg, "invalid position")
	}
	b, err := strconv.Atoi(args[1])
	if err != nil {
		return "", NewAckError(AckArg, "invalid position")
	}
	if !d.Queue.Swap(a, b) {
		return "", NewAckError(AckNoExist, "no such song")
	}
	d.Bus.Emit(core.Event{Kind: core.EventQueueChanged})
	return "", nil
}

func handleSwapID(d *Dispatcher, cs *connState, args []string) (string, error) {
	a, err := parseUint32(args[0])
	if err != nil {
		return "", err
	}
	b, err := parseUint32(args[1])
	if err != nil {
		return "", err
	}
	if !d.Queue.SwapID(a, b) {
		return "", NewAckError(AckNoExist, "no such song")
	}
	d.Bus.Emit(core.Event{Kind: core.EventQueueChanged})
	return "", nil
}

func handleShuffle(d *Dispatcher, cs *connState, args []string) (string, error) {
	d.Queue.Shuffle()
	d.Bus.Emit(core.Event{Kind: core.EventQueueChanged})
	return "", nil
}

func handleClear(d *Dispatcher, cs *connState, args []string) (string, error) {
	if d.Queue.Clear() {
		d.Bus.Emit(core.Event{Kind: core.EventQueueChanged})
	}
	return "", nil
}

func formatQueueItem(rb *ResponseBuilder, item queue.Item, tags *tagMask) {
	formatSong(rb, item.Song, tags)
	rb.Field("Pos", item.Position)
	rb.Field("Id", item.ID)
}

func handlePlaylistInfo(d *Dispatcher, cs *connState, args []string) (string, error) {
	items := d.Queue.Items()
	rb := NewResponseBuilder()

	if len(args) == 0 {
		for _, item := range items {
			formatQueueItem(rb, item, cs.tags)
		}
		return rb.String(), nil
	}

	start, end, err := parseRange(args[0])
	if err != nil {
		return "", err
	}
	if end > len(items) {
		end = len(items)
	}
	for pos := start; pos < end; pos++ {
		if pos < 0 || pos >= len(items) {
			continue
		}
		formatQueueItem(rb, items[pos], cs.tags)
	}
	return rb.String(), nil
}

func handlePlaylistID(d *Dispatcher, cs *connState, args []string) (string, error) {
	rb := NewResponseBuilder()
	if len(args) == 0 {
		for _, item := range d.Queue.Items() {
			formatQueueItem(rb, item, cs.tags)
		}
		return rb.String(), nil
	}
	id, err := parseUint32(args[0])
	if err != nil {
		return "", err
	}
	item, ok := d.Queue.ByID(id)
	if !ok {
		return "", NewAckError(AckNoExist, "no such song")
	}
	formatQueueItem(rb, item, cs.tags)
	return rb.String(), nil
}

func parseUint32(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, NewAckError(AckArg, "invalid id")
	}
	return uint32(n), nil
}
