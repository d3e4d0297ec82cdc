// Command rmpd runs the daemon: it wires every collaborator package
// together and serves the MPD wire protocol over TCP. Adapted from the
// teacher's cmd/direttampd/main.go (flag parsing, config load, signal-
// driven shutdown), generalized from its one-off flag package to
// spf13/cobra + spf13/viper (via internal/config) and from a bare
// os.Signal wait to context.Context cancellation shared with the
// errgroup-based server loop.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rmpd-project/rmpd/internal/artcache"
	"github.com/rmpd-project/rmpd/internal/broker"
	"github.com/rmpd-project/rmpd/internal/config"
	"github.com/rmpd-project/rmpd/internal/core"
	"github.com/rmpd-project/rmpd/internal/library"
	"github.com/rmpd-project/rmpd/internal/mount"
	"github.com/rmpd-project/rmpd/internal/mpd"
	"github.com/rmpd-project/rmpd/internal/outputs"
	"github.com/rmpd-project/rmpd/internal/player"
	"github.com/rmpd-project/rmpd/internal/playback"
	"github.com/rmpd-project/rmpd/internal/queue"
	"github.com/rmpd-project/rmpd/internal/scanner"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "rmpd",
		Short: "rmpd is an MPD-protocol-compatible music daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				path, _ = cmd.Flags().GetString("config")
			}
			cfg, err := config.Load(cmd.Flags(), path)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	config.BindFlags(root.Flags())
	root.Flags().StringVar(&configPath, "config-file", "", "explicit path to a config file (takes precedence over --config)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	log := newLogger(cfg.Verbose)

	bus := core.NewEventBus()
	br := broker.New()
	q := queue.New()
	engine := playback.NewSimEngine()
	p := player.New(q, engine, bus, log.WithField("component", "player"))

	lib, err := library.Open(cfg.LibraryDBPath)
	if err != nil {
		return fmt.Errorf("rmpd: open library: %w", err)
	}
	defer lib.Close()

	seed := make([]outputs.Output, 0, len(cfg.Outputs))
	for _, o := range cfg.Outputs {
		seed = append(seed, outputs.Output{Name: o.Name, Plugin: o.Plugin, Enabled: o.Enabled})
	}
	if len(seed) == 0 {
		seed = append(seed, outputs.Output{Name: "default", Plugin: engine.Name(), Enabled: true})
	}
	out := outputs.New(seed)

	mnt := mount.New()

	var art *artcache.Cache
	if cfg.ArtCacheDir != "" {
		art, err = artcache.New(cfg.ArtCacheDir, cfg.ArtCacheSize)
		if err != nil {
			return fmt.Errorf("rmpd: open art cache: %w", err)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.Port)
	d := mpd.NewDispatcher(log.WithField("component", "dispatcher"), bus, br, q, p, lib, out, mnt, cfg.MusicDirectory, cfg.Password)
	d.ArtCache = art

	if cfg.MusicDirectory != "" {
		sc := scanner.New(cfg.MusicDirectory, 4096, log.WithField("component", "scanner"))
		d.ScanFunc = func(ctx context.Context, rescan bool) ([]core.Song, error) {
			return sc.Scan()
		}

		songs, err := sc.Scan()
		if err != nil {
			log.WithError(err).Warn("initial library scan failed")
		} else {
			for _, s := range songs {
				lib.Index(s)
			}
			log.WithField("songs", len(songs)).Info("initial library scan complete")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := mpd.NewServer(addr, d, log.WithField("component", "server"))
	return srv.Run(ctx)
}

func newLogger(verbose bool) *logrus.Entry {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return logrus.NewEntry(l)
}
