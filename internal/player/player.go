// Package player coordinates the play queue, the playback engine, and the
// status snapshot clients poll via "status"/"currentsong". Adapted from the
// teacher's internal/player.Player (mutex-guarded state plus a background
// playbackLoop goroutine) and generalized from a single-track streaming
// loop to queue-driven play/pause/stop/seek/next/previous over
// internal/queue and internal/playback.
package player

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rmpd-project/rmpd/internal/core"
	"github.com/rmpd-project/rmpd/internal/playback"
	"github.com/rmpd-project/rmpd/internal/queue"
	"github.com/rmpd-project/rmpd/internal/status"
)

// Player owns the queue, the playback engine, and the mutable parts of the
// status snapshot that aren't derived directly from the queue (volume,
// repeat/random/single/consume, crossfade, last error).
type Player struct {
	mu sync.Mutex

	log    *logrus.Entry
	bus    *core.EventBus
	queue  *queue.Queue
	engine playback.Engine

	state   status.PlaybackState
	volume  int
	repeat  bool
	random  bool
	single  status.TriState
	consume status.TriState

	crossfade    int
	mixrampDB    float32
	mixrampDelay float32
	lastError    string

	pollCancel context.CancelFunc
}

// New builds a Player around an existing queue and engine, wiring events
// onto bus.
func New(q *queue.Queue, engine playback.Engine, bus *core.EventBus, log *logrus.Entry) *Player {
	return &Player{
		log:       log,
		bus:       bus,
		queue:     q,
		engine:    engine,
		state:     status.Stop,
		volume:    100,
		mixrampDB: -17.0,
	}
}

func (p *Player) emit(kind core.EventKind) {
	if p.bus != nil {
		p.bus.Emit(core.Event{Kind: kind})
	}
}

// Status assembles the full status snapshot under the player's lock,
// combining the mutable player fields with a live read of the queue.
func (p *Player) Status() status.Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := status.Status{
		State:           p.state,
		Volume:          p.volume,
		Repeat:          p.repeat,
		Random:          p.random,
		Single:          p.single,
		Consume:         p.consume,
		Crossfade:       p.crossfade,
		MixrampDB:       p.mixrampDB,
		MixrampDelay:    p.mixrampDelay,
		PlaylistVersion: p.queue.Version(),
		PlaylistLength:  p.queue.Len(),
		Elapsed:         -1,
		Duration:        -1,
		LastError:       p.lastError,
	}

	if cur, ok := p.queue.Current(); ok {
		s.CurrentSong = &status.QueuePosition{Position: cur.Position, ID: cur.ID}
		if cur.Song.Duration != nil {
			s.Duration = cur.Song.Duration.Seconds()
		}
		s.Audio = cur.Song.Audio
		if cur.Song.Audio != nil {
			s.Bitrate = cur.Song.Audio.Bitrate
		}
	}
	if p.state != status.Stop && p.engine != nil {
		s.Elapsed = p.engine.Elapsed().Seconds()
	}
	if idx := p.queue.CurrentIndex(); idx >= 0 {
		if next, ok := p.queue.At(idx + 1); ok {
			s.NextSong = &status.QueuePosition{Position: next.Position, ID: next.ID}
		}
	}

	return s
}

// PlayAt starts playback at the given queue position (play/playid resolve
// the id to a position before calling this).
func (p *Player) PlayAt(ctx context.Context, position int) error {
	if !p.queue.SetCurrentIndex(position) {
		return errNoSuchSong
	}
	return p.startCurrent(ctx)
}

// PlayCurrent resumes or starts playback of whatever is current, falling
// back to the first queue item if nothing is current yet (bare "play").
func (p *Player) PlayCurrent(ctx context.Context) error {
	if _, ok := p.queue.Current(); !ok {
		if p.queue.Len() == 0 {
			return errNoSuchSong
		}
		p.queue.SetCurrentIndex(0)
	}
	return p.startCurrent(ctx)
}

func (p *Player) startCurrent(ctx context.Context) error {
	item, ok := p.queue.Current()
	if !ok {
		return errNoSuchSong
	}

	p.mu.Lock()
	resuming := p.state == status.Pause
	p.mu.Unlock()

	if !resuming {
		if err := p.engine.Load(ctx, item.Song); err != nil {
			return err
		}
	}
	if err := p.engine.Play(ctx); err != nil {
		return err
	}

	p.mu.Lock()
	p.state = status.Play
	p.mu.Unlock()

	p.emit(core.EventPlayerStateChanged)
	p.startPolling()
	return nil
}

// Pause suspends playback, preserving position.
func (p *Player) Pause(ctx context.Context) error {
	p.mu.Lock()
	if p.state != status.Play {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	if err := p.engine.Pause(ctx); err != nil {
		return err
	}
	p.mu.Lock()
	p.state = status.Pause
	p.mu.Unlock()
	p.stopPolling()
	p.emit(core.EventPlayerStateChanged)
	return nil
}

// Stop halts playback and resets position.
func (p *Player) Stop(ctx context.Context) error {
	p.stopPolling()
	if err := p.engine.Stop(ctx); err != nil {
		return err
	}
	p.mu.Lock()
	p.state = status.Stop
	p.mu.Unlock()
	p.emit(core.EventPlayerStateChanged)
	return nil
}

// Next advances to the next queue item and plays it, honoring random order
// implicitly (callers are expected to have shuffled the queue already; MPD
// semantics tie "random" to queue iteration order, matching
// rmpd-core/src/queue.rs).
func (p *Player) Next(ctx context.Context) error {
	if _, ok := p.queue.Advance(); !ok {
		return p.Stop(ctx)
	}
	p.emit(core.EventSongChanged)
	return p.startCurrent(ctx)
}

// Previous retreats to the previous queue item and plays it.
func (p *Player) Previous(ctx context.Context) error {
	if _, ok := p.queue.Retreat(); !ok {
		return errNoSuchSong
	}
	p.emit(core.EventSongChanged)
	return p.startCurrent(ctx)
}

// Seek moves within the current song.
func (p *Player) Seek(ctx context.Context, position time.Duration) error {
	return p.engine.Seek(ctx, position)
}

// SetVolume sets the output volume, clamped to 0..100.
func (p *Player) SetVolume(vol int) {
	if vol < 0 {
		vol = 0
	}
	if vol > 100 {
		vol = 100
	}
	p.mu.Lock()
	p.volume = vol
	p.mu.Unlock()
	p.emit(core.EventVolumeChanged)
}

// SetRepeat toggles repeat mode.
func (p *Player) SetRepeat(on bool) {
	p.mu.Lock()
	p.repeat = on
	p.mu.Unlock()
	p.emit(core.EventQueueOptionsChanged)
}

// SetRandom toggles random mode.
func (p *Player) SetRandom(on bool) {
	p.mu.Lock()
	p.random = on
	p.mu.Unlock()
	p.emit(core.EventQueueOptionsChanged)
}

// SetSingle sets the single-track mode.
func (p *Player) SetSingle(v status.TriState) {
	p.mu.Lock()
	p.single = v
	p.mu.Unlock()
	p.emit(core.EventQueueOptionsChanged)
}

// SetConsume sets the consume mode.
func (p *Player) SetConsume(v status.TriState) {
	p.mu.Lock()
	p.consume = v
	p.mu.Unlock()
	p.emit(core.EventQueueOptionsChanged)
}

// SetCrossfade sets the crossfade duration in seconds.
func (p *Player) SetCrossfade(seconds int) {
	p.mu.Lock()
	p.crossfade = seconds
	p.mu.Unlock()
	p.emit(core.EventQueueOptionsChanged)
}

// SetMixramp sets the mixramp threshold and delay.
func (p *Player) SetMixramp(db, delay float32) {
	p.mu.Lock()
	p.mixrampDB = db
	p.mixrampDelay = delay
	p.mu.Unlock()
	p.emit(core.EventQueueOptionsChanged)
}

// ClearError clears the last playback error surfaced by status's "error"
// field, backing the "clearerror" command.
func (p *Player) ClearError() {
	p.mu.Lock()
	p.lastError = ""
	p.mu.Unlock()
}

// startPolling launches a goroutine that watches for track completion and
// advances the queue, the Go equivalent of the teacher's playbackLoop
// goroutine but driven by Engine.Finished() polling instead of a streaming
// read loop.
func (p *Player) startPolling() {
	p.mu.Lock()
	if p.pollCancel != nil {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.pollCancel = cancel
	p.mu.Unlock()

	go func() {
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if p.engine.Finished() {
					p.onTrackFinished(ctx)
					return
				}
			}
		}
	}()
}

func (p *Player) stopPolling() {
	p.mu.Lock()
	cancel := p.pollCancel
	p.pollCancel = nil
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (p *Player) onTrackFinished(ctx context.Context) {
	p.mu.Lock()
	consume := p.consume
	single := p.single
	p.pollCancel = nil
	p.mu.Unlock()

	if consume == status.On || consume == status.Oneshot {
		if cur, ok := p.queue.Current(); ok {
			p.queue.DeleteID(cur.ID)
			p.emit(core.EventQueueChanged)
		}
		if consume == status.Oneshot {
			p.SetConsume(status.Off)
		}
	}

	if single == status.On {
		p.log.Debug("single mode: repeating current track")
		if err := p.startCurrent(ctx); err != nil {
			p.log.WithError(err).Warn("failed to repeat track in single mode")
		}
		return
	}
	if single == status.Oneshot {
		p.SetSingle(status.Off)
		_ = p.Stop(ctx)
		return
	}

	if err := p.Next(ctx); err != nil {
		p.log.WithError(err).Debug("playback finished at end of queue")
	}
}

var errNoSuchSong = &playerError{"no such song"}

// ErrNoSuchSong is the sentinel PlayAt/PlayCurrent/Previous return when the
// requested position has no song, for callers (the dispatcher) that need
// to map it to a protocol-specific error code.
var ErrNoSuchSong error = errNoSuchSong

type playerError struct{ msg string }

func (e *playerError) Error() string { return e.msg }
