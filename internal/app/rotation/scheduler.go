package rotation

import (
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/mkaji/scenebox/internal/app/wallclock"
	"github.com/mkaji/scenebox/internal/domain/playlist"
)

// Loader loads a scene by name. Implemented by player.Player.
type Loader interface {
	Load(name string) error
}

// Scheduler walks the playlist in order, loading the next scene every
// interval. An armed timer is what makes the scheduler running; there is
// no separate state flag to fall out of sync.
type Scheduler struct {
	mu sync.RWMutex

	playlist playlist.Playlist
	interval time.Duration
	loader   Loader

	cursor      int
	lastFiredAt time.Time

	timerCancel func()
	timerGen    uint64

	eventCh chan Event
}

// New creates a scheduler over the given playlist. It starts stopped.
func New(pl playlist.Playlist, interval time.Duration, loader Loader) *Scheduler {
	return &Scheduler{
		playlist: pl,
		interval: interval,
		loader:   loader,
		eventCh:  make(chan Event, 10),
	}
}

// Events returns the event channel.
func (s *Scheduler) Events() <-chan Event {
	return s.eventCh
}

// Resume starts rotation. With a positive delay the first fire waits that
// long; otherwise the scene at the cursor loads immediately. Either way
// subsequent fires follow every interval. Does nothing when the playlist
// is empty or rotation is already running.
func (s *Scheduler) Resume(afterDelay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playlist.IsEmpty() {
		zlog.Info().Msg("autoplay resume requested with empty playlist, ignoring")
		return
	}
	if s.timerCancel != nil {
		zlog.Debug().Msg("autoplay already running")
		return
	}

	s.sendEventLocked(Event{Type: EventResumed, State: StateRunning})

	if afterDelay > 0 {
		zlog.Info().Msgf("autoplay resumes in %s", afterDelay.Round(time.Millisecond))
		s.armLocked(afterDelay)
		return
	}

	s.fireLocked()
	s.armLocked(s.interval)
}

// Pause stops rotation. The cursor and last fire time are kept, so a later
// resume continues where rotation left off.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timerCancel == nil {
		return
	}

	s.timerCancel()
	s.timerCancel = nil

	zlog.Info().Msg("autoplay paused")
	s.sendEventLocked(Event{Type: EventPaused, State: StateStopped})
}

// State returns the scheduler state, derived from timer presence.
func (s *Scheduler) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.timerCancel != nil {
		return StateRunning
	}
	return StateStopped
}

// Running reports whether rotation is in progress.
func (s *Scheduler) Running() bool {
	return s.State() == StateRunning
}

// Cursor returns the playlist position of the next fire.
func (s *Scheduler) Cursor() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor
}

// LastFiredAt returns the wall-clock time of the most recent fire, or the
// zero time when rotation has never fired.
func (s *Scheduler) LastFiredAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFiredAt
}

// Interval returns the rotation interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// fireLocked loads the scene at the cursor and advances it. The fire
// counts even when the load fails; rotation moves on regardless.
// Must be called with lock held.
func (s *Scheduler) fireLocked() {
	name := s.playlist.At(s.cursor)
	zlog.Info().Msgf("autoplay: rotating to scene %s (%d/%d)", name, s.cursor+1, s.playlist.Len())

	if err := s.loader.Load(name); err != nil {
		zlog.Warn().Err(err).Msgf("autoplay failed to load scene: %s", name)
	}

	s.lastFiredAt = wallclock.Now()
	s.cursor = (s.cursor + 1) % s.playlist.Len()

	s.sendEventLocked(Event{Type: EventFired, Scene: name, State: StateRunning})
}

// armLocked schedules the next fire. Must be called with lock held.
func (s *Scheduler) armLocked(d time.Duration) {
	s.timerGen++
	gen := s.timerGen
	s.timerCancel = wallclock.After(d, func() {
		s.onTimer(gen)
	})
}

// onTimer handles a timer expiry. Expiries from timers that were cancelled
// after their final tick are dropped.
func (s *Scheduler) onTimer(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timerCancel == nil || gen != s.timerGen {
		return
	}

	s.fireLocked()
	s.armLocked(s.interval)
}

// sendEventLocked sends an event without blocking.
// Must be called with lock held.
func (s *Scheduler) sendEventLocked(e Event) {
	select {
	case s.eventCh <- e:
		// Successfully sent
	default:
		// Channel full, drop event
	}
}
