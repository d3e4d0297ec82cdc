// Package status holds the player status model: playback state, the
// tri-state single/consume modes, and the full status snapshot returned by
// the "status" command. Adapted from the teacher's player.PlaybackState,
// generalized to the richer state machine in SPEC_FULL.md §3.
package status

import "github.com/rmpd-project/rmpd/internal/core"

// PlaybackState is the coarse play/pause/stop state.
type PlaybackState int

const (
	Stop PlaybackState = iota
	Play
	Pause
)

func (s PlaybackState) String() string {
	switch s {
	case Play:
		return "play"
	case Pause:
		return "pause"
	default:
		return "stop"
	}
}

// TriState models MPD's single/consume modes, which are off, on, or
// one-shot (auto-reset to off after it takes effect once).
type TriState int

const (
	Off TriState = iota
	On
	Oneshot
)

func (t TriState) String() string {
	switch t {
	case On:
		return "1"
	case Oneshot:
		return "oneshot"
	default:
		return "0"
	}
}

// QueuePosition pairs a queue position with its stable item id, used for
// CurrentSong/NextSong references.
type QueuePosition struct {
	Position uint32
	ID       uint32
}

// Status is the full player status snapshot (SPEC_FULL.md §3). It is
// assembled by the player collaborator under its own lock and handed to
// the "status" handler as an immutable value.
type Status struct {
	State  PlaybackState
	Volume int // 0..100

	Repeat  bool
	Random  bool
	Single  TriState
	Consume TriState

	CurrentSong *QueuePosition
	NextSong    *QueuePosition

	Elapsed  float64 // seconds, -1 if unknown
	Duration float64 // seconds, -1 if unknown
	Bitrate  uint32  // kbps, 0 if unknown
	Audio    *core.AudioFormat

	Crossfade    int     // seconds
	MixrampDB    float32 // dB, default -17.0
	MixrampDelay float32 // seconds

	PlaylistVersion uint32
	PlaylistLength  int

	UpdatingDBJobID *uint32
	LastError       string
}

// Default returns a fresh status with MPD's documented defaults.
func Default() Status {
	return Status{
		State:        Stop,
		Volume:       100,
		MixrampDB:    -17.0,
		Elapsed:      -1,
		Duration:     -1,
	}
}
