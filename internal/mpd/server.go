// Package mpd (this file) implements the network front end: one
// net.Listener, one goroutine per connection. Adapted from the teacher's
// internal/mpd.Server (net.Listener plus an accept loop and a per-conn
// bufio.Scanner loop), generalized from its single embedded command switch
// to drive the command table through Dispatch, and from plain log.Printf
// to structured logrus logging matching internal/player and
// internal/scanner. Listener lifecycle uses golang.org/x/sync/errgroup, so
// "kill" and process shutdown share one path.
package mpd

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	maxLineLength   = 65536
	protocolVersion = "0.23.0"
)

// Server accepts MPD client connections and dispatches their commands
// through a Dispatcher.
type Server struct {
	addr string
	d    *Dispatcher
	log  *logrus.Entry
}

// NewServer returns a Server bound to addr, dispatching through d.
func NewServer(addr string, d *Dispatcher, log *logrus.Entry) *Server {
	return &Server{addr: addr, d: d, log: log}
}

// Run listens on s.addr and serves connections until ctx is cancelled or
// the dispatcher's Shutdown channel is closed (the "kill" command). It
// returns once every connection goroutine has exited.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("mpd: listen on %s: %w", s.addr, err)
	}
	s.log.WithField("addr", s.addr).Info("mpd server listening")

	var g errgroup.Group
	g.Go(func() error {
		select {
		case <-ctx.Done():
		case <-s.d.Shutdown:
		}
		return ln.Close()
	})

	for {
		conn, err := ln.Accept()
		if err != nil {
			break
		}
		g.Go(func() error {
			s.handleConn(conn)
			return nil
		})
	}

	return g.Wait()
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	cs := s.d.NewConnState()
	defer cs.close()

	log := s.log.WithFields(logrus.Fields{"conn": cs.id, "remote": conn.RemoteAddr().String()})
	log.Debug("client connected")

	if _, err := fmt.Fprintf(conn, "OK MPD %s\n", protocolVersion); err != nil {
		return
	}

	lineCh := make(chan string)
	go readLines(conn, lineCh, log)

	for line := range lineCh {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		fields := strings.Fields(trimmed)
		name := strings.ToLower(fields[0])

		if name == "noidle" {
			fmt.Fprint(conn, "OK\n")
			continue
		}

		if name == "idle" && !cs.inBatch {
			filter, err := parseIdleFilter(fields[1:])
			if err != nil {
				fmt.Fprint(conn, formatError(err, "idle", 0))
				continue
			}
			resp, closeConn := s.d.EnterIdle(cs, filter, lineCh)
			fmt.Fprint(conn, resp)
			if closeConn {
				return
			}
			continue
		}

		resp, closeConn := s.d.Dispatch(cs, trimmed)
		fmt.Fprint(conn, resp)
		if closeConn {
			return
		}
	}
	log.Debug("client disconnected")
}

// readLines feeds out with every line conn sends, closing it when the
// connection ends or a line exceeds maxLineLength.
func readLines(conn net.Conn, out chan<- string, log *logrus.Entry) {
	defer close(out)
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), maxLineLength)
	for scanner.Scan() {
		out <- scanner.Text()
	}
	if err := scanner.Err(); err != nil {
		log.WithError(err).Debug("connection read error")
	}
}
