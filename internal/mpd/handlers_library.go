package mpd

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rmpd-project/rmpd/internal/core"
	"github.com/rmpd-project/rmpd/internal/filter"
	"github.com/rmpd-project/rmpd/internal/library"
)

// parseFilterArgs accepts either a single parenthesized filter expression
// (already one token if the client quoted the whole thing) or the legacy
// positional "TAG VALUE TAG VALUE ..." form.
func parseFilterArgs(args []string) (filter.Expr, error) {
	joined := strings.TrimSpace(strings.Join(args, " "))
	if strings.HasPrefix(joined, "(") {
		return filter.Parse(joined)
	}
	return filter.ParseLegacyArgs(args)
}

func handleFind(d *Dispatcher, cs *connState, args []string) (string, error) {
	return queryToResponse(d, cs, args, true)
}

func handleSearch(d *Dispatcher, cs *connState, args []string) (string, error) {
	return queryToResponse(d, cs, args, false)
}

func queryToResponse(d *Dispatcher, cs *connState, args []string, caseSensitive bool) (string, error) {
	expr, err := parseFilterArgs(args)
	if err != nil {
		return "", NewAckError(AckArg, err.Error())
	}
	var songs []core.Song
	if caseSensitive {
		songs, err = d.Library.Find(expr)
	} else {
		songs, err = d.Library.Search(expr)
	}
	if err != nil {
		return "", NewAckError(AckArg, err.Error())
	}

	rb := NewResponseBuilder()
	for _, s := range songs {
		formatSong(rb, s, cs.tags)
	}
	return rb.String(), nil
}

func handleCount(d *Dispatcher, cs *connState, args []string) (string, error) {
	expr, err := parseFilterArgs(args)
	if err != nil {
		return "", NewAckError(AckArg, err.Error())
	}
	songs, playtime, err := d.Library.CountFiltered(expr)
	if err != nil {
		return "", NewAckError(AckArg, err.Error())
	}
	rb := NewResponseBuilder()
	rb.Field("songs", songs)
	rb.Field("playtime", int64(playtime))
	return rb.String(), nil
}

// handleList implements "list TAG [EXPR] [group TAG]". A trailing "group
// TAG" clause is accepted but ignored: result grouping beyond the flat
// distinct-value list isn't implemented (see DESIGN.md).
func handleList(d *Dispatcher, cs *connState, args []string) (string, error) {
	tag := args[0]
	rest := args[1:]
	for i, a := range rest {
		if a == "group" {
			rest = rest[:i]
			break
		}
	}

	var expr filter.Expr
	if len(rest) > 0 {
		e, err := parseFilterArgs(rest)
		if err != nil {
			return "", NewAckError(AckArg, err.Error())
		}
		expr = e
	}

	values, err := d.Library.List(tag, expr)
	if err != nil {
		return "", NewAckError(AckArg, err.Error())
	}
	rb := NewResponseBuilder()
	for _, v := range values {
		rb.Field(tag, v)
	}
	return rb.String(), nil
}

func joinURI(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func handleLsInfo(d *Dispatcher, cs *connState, args []string) (string, error) {
	uri := ""
	if len(args) > 0 {
		uri = args[0]
	}
	entries := d.Library.ListDirectory(uri)
	rb := NewResponseBuilder()
	for _, e := range entries {
		if e.IsDirectory {
			rb.Field("directory", joinURI(uri, e.Name))
		} else {
			formatSong(rb, e.Song, cs.tags)
		}
	}
	return rb.String(), nil
}

func handleListFiles(d *Dispatcher, cs *connState, args []string) (string, error) {
	return handleLsInfo(d, cs, args)
}

func handleListAll(d *Dispatcher, cs *connState, args []string) (string, error) {
	return listAllImpl(d, cs, args, false)
}

func handleListAllInfo(d *Dispatcher, cs *connState, args []string) (string, error) {
	return listAllImpl(d, cs, args, true)
}

func listAllImpl(d *Dispatcher, cs *connState, args []string, withInfo bool) (string, error) {
	prefix := ""
	if len(args) > 0 {
		prefix = strings.Trim(args[0], "/")
	}
	rb := NewResponseBuilder()
	for _, s := range d.Library.ListAllSongs() {
		if prefix != "" && s.URI != prefix && !strings.HasPrefix(s.URI, prefix+"/") {
			continue
		}
		if withInfo {
			formatSong(rb, s, cs.tags)
		} else {
			rb.Field("file", s.URI)
		}
	}
	return rb.String(), nil
}

func handleUpdate(d *Dispatcher, cs *connState, args []string) (string, error) {
	return startUpdate(d, args, false)
}

func handleRescan(d *Dispatcher, cs *connState, args []string) (string, error) {
	return startUpdate(d, args, true)
}

func startUpdate(d *Dispatcher, args []string, rescan bool) (string, error) {
	if d.ScanFunc == nil {
		return "", NewAckError(AckSystem, "no scanner configured")
	}

	ctx := context.Background()
	id, err := d.Library.StartUpdate(ctx, "", rescan, func(ctx context.Context) ([]core.Song, error) {
		return d.ScanFunc(ctx, rescan)
	})
	if err != nil {
		if errors.Is(err, library.ErrUpdateAlready()) {
			return "", NewAckError(AckUpdateAlready, "already updating")
		}
		return "", err
	}

	d.Bus.Emit(core.Event{Kind: core.EventDatabaseUpdateStarted})
	go func() {
		for d.Library.ActiveUpdateJobID() != nil {
			time.Sleep(100 * time.Millisecond)
		}
		d.Bus.Emit(core.Event{Kind: core.EventDatabaseUpdateFinished})
	}()

	rb := NewResponseBuilder()
	rb.Field("updating_db", id)
	return rb.String(), nil
}

func handleGetFingerprint(d *Dispatcher, cs *connState, args []string) (string, error) {
	return "", NewAckError(AckNoExist, "not implemented")
}
