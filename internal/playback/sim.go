package playback

import (
	"context"
	"sync"
	"time"

	"github.com/rmpd-project/rmpd/internal/core"
)

// SimEngine is a wall-clock playback simulator: it tracks elapsed time
// against the loaded song's duration without touching any real audio
// device. It stands in for the teacher's memoryplay/cgo backends, which
// depend on a proprietary native session unavailable in this pack; see
// DESIGN.md for why those backends were dropped rather than adapted.
type SimEngine struct {
	mu       sync.Mutex
	song     *core.Song
	playing  bool
	elapsed  time.Duration
	lastTick time.Time
}

// NewSimEngine returns a SimEngine ready to load songs.
func NewSimEngine() *SimEngine {
	return &SimEngine{}
}

func (e *SimEngine) Name() string { return "sim" }

func (e *SimEngine) Load(_ context.Context, song core.Song) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.song = &song
	e.elapsed = 0
	e.playing = false
	return nil
}

func (e *SimEngine) Play(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.song == nil {
		return nil
	}
	e.playing = true
	e.lastTick = time.Now()
	return nil
}

func (e *SimEngine) Pause(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.advanceLocked()
	e.playing = false
	return nil
}

func (e *SimEngine) Stop(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
	e.elapsed = 0
	return nil
}

func (e *SimEngine) Seek(_ context.Context, position time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.elapsed = position
	e.lastTick = time.Now()
	return nil
}

func (e *SimEngine) Elapsed() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.advanceLocked()
	return e.elapsed
}

func (e *SimEngine) Finished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.advanceLocked()
	if e.song == nil || e.song.Duration == nil {
		return false
	}
	return e.elapsed >= *e.song.Duration
}

func (e *SimEngine) Close() error { return nil }

// advanceLocked folds wall-clock time elapsed since the last tick into the
// tracked position, clamping to the song's duration when known. Caller
// must hold e.mu.
func (e *SimEngine) advanceLocked() {
	if !e.playing {
		return
	}
	now := time.Now()
	e.elapsed += now.Sub(e.lastTick)
	e.lastTick = now
	if e.song != nil && e.song.Duration != nil && e.elapsed > *e.song.Duration {
		e.elapsed = *e.song.Duration
	}
}
