package mpd

import (
	"fmt"
	"strings"

	"github.com/rmpd-project/rmpd/internal/core"
)

// parseIdleFilter validates the subsystem names an "idle" command names,
// returning nil for a bare "idle" (no filter, everything wakes it).
func parseIdleFilter(args []string) (map[core.Subsystem]bool, error) {
	if len(args) == 0 {
		return nil, nil
	}
	filter := make(map[core.Subsystem]bool, len(args))
	for _, a := range args {
		s := core.Subsystem(a)
		known := false
		for _, candidate := range core.AllSubsystems {
			if candidate == s {
				known = true
				break
			}
		}
		if !known {
			return nil, NewAckError(AckArg, fmt.Sprintf("unknown subsystem \"%s\"", a))
		}
		filter[s] = true
	}
	return filter, nil
}

func idleFilterAllows(filter map[core.Subsystem]bool, s core.Subsystem) bool {
	if len(filter) == 0 {
		return true
	}
	return filter[s]
}

// unionSubsystems merges an event's subsystems with whatever else is
// already buffered on the subscription, in first-arrival order, honoring
// the safe-over-report rule on lag (SPEC_FULL.md §5).
func unionSubsystems(first *core.Event, sub *core.Subscription, filter map[core.Subsystem]bool) []core.Subsystem {
	seen := map[core.Subsystem]bool{}
	var order []core.Subsystem
	add := func(s core.Subsystem) {
		if !idleFilterAllows(filter, s) {
			return
		}
		if !seen[s] {
			seen[s] = true
			order = append(order, s)
		}
	}

	if first != nil {
		for _, s := range first.Subsystems() {
			add(s)
		}
	}

	rest, lagged := sub.Drain()
	for i := range rest {
		for _, s := range rest[i].Subsystems() {
			add(s)
		}
	}
	if lagged {
		for _, s := range core.AllSubsystems {
			add(s)
		}
	}
	return order
}

func formatIdleResponse(subs []core.Subsystem) string {
	var b strings.Builder
	for _, s := range subs {
		fmt.Fprintf(&b, "changed: %s\n", s)
	}
	return b.String()
}

// EnterIdle implements the idle coordinator (SPEC_FULL.md §4.6). It blocks
// the calling connection goroutine until either a matching event arrives,
// "noidle" is read from lineCh, or lineCh closes (connection gone). The
// returned response is complete: it already ends with its "OK\n" (or is
// an ACK line), so the caller writes it as is.
func (d *Dispatcher) EnterIdle(cs *connState, filter map[core.Subsystem]bool, lineCh <-chan string) (resp string, closeConn bool) {
	if cs.idleSub == nil {
		cs.idleSub = d.Bus.Subscribe()
	}
	cs.idleFilter = filter

	if pending := unionSubsystems(nil, cs.idleSub, filter); len(pending) > 0 {
		return formatIdleResponse(pending) + "OK\n", false
	}

	cs.idling = true
	defer func() { cs.idling = false }()

	cancel := make(chan struct{})
	lineArrived := make(chan string, 1)
	connClosed := make(chan struct{})
	go func() {
		line, ok := <-lineCh
		if !ok {
			close(connClosed)
		} else {
			lineArrived <- line
		}
		close(cancel)
	}()

	for {
		e, ok := cs.idleSub.Wait(cancel)
		if !ok {
			select {
			case line := <-lineArrived:
				if strings.TrimSpace(line) != "noidle" {
					return NewAckError(AckUnknown, "only 'noidle' is accepted while idling").format(0), false
				}
				return "OK\n", false
			case <-connClosed:
				return "", true
			}
		}

		if pending := unionSubsystems(&e, cs.idleSub, filter); len(pending) > 0 {
			return formatIdleResponse(pending) + "OK\n", false
		}
		// Event didn't match the filter; keep waiting on the same cancel.
	}
}
