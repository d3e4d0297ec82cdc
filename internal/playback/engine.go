// Package playback defines the Engine collaborator: the black-box boundary
// between the daemon and actual audio output (SPEC_FULL.md §1 treats real
// decoding/output as out of scope). The interface shape is adapted from the
// teacher's internal/backends.PlaybackBackend, generalized from a
// track-at-a-time session API to the elapsed/duration polling model
// internal/player needs to assemble "status" snapshots.
package playback

import (
	"context"
	"time"

	"github.com/rmpd-project/rmpd/internal/core"
)

// Engine drives a single audio output session. Implementations are not
// required to perform real decoding; SimEngine below models elapsed time
// from a wall clock so the rest of the daemon can be exercised without an
// audio stack.
type Engine interface {
	// Load prepares a song for playback without starting it.
	Load(ctx context.Context, song core.Song) error
	// Play starts or resumes playback of the loaded song.
	Play(ctx context.Context) error
	// Pause suspends playback, preserving position.
	Pause(ctx context.Context) error
	// Stop halts playback and discards position.
	Stop(ctx context.Context) error
	// Seek moves to an absolute position within the loaded song.
	Seek(ctx context.Context, position time.Duration) error
	// Elapsed returns the current playback position.
	Elapsed() time.Duration
	// Finished reports whether the loaded song has played to completion.
	Finished() bool
	// Name identifies the backend plugin, surfaced via outputs/plugin.
	Name() string
	// Close releases any resources held by the engine.
	Close() error
}

// Factory constructs a new Engine instance, mirroring the teacher's
// BackendFactory.
type Factory func() (Engine, error)
