// Package override shows a single scene for a fixed window, putting the
// rotation on hold and handing back afterwards as if it had never been
// interrupted.
package override

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/mkaji/scenebox/internal/app/wallclock"
)

// ErrOverrideActive is returned when an override window is already open.
var ErrOverrideActive = errors.New("override already active")

// Loader loads a scene by name. Implemented by player.Player.
type Loader interface {
	Load(name string) error
}

// Scheduler is the rotation being held while an override plays.
// Implemented by rotation.Scheduler.
type Scheduler interface {
	Pause()
	Resume(afterDelay time.Duration)
	Interval() time.Duration
	LastFiredAt() time.Time
}

// Player runs override windows. Only one window can be open at a time;
// requests during an open window are dropped, not queued.
type Player struct {
	mu sync.Mutex

	sched  Scheduler
	loader Loader

	active bool
	scene  string

	timerCancel func()
	timerGen    uint64

	eventCh chan Event
}

// New creates an override player on top of the given scheduler and loader.
func New(sched Scheduler, loader Loader) *Player {
	return &Player{
		sched:   sched,
		loader:  loader,
		eventCh: make(chan Event, 10),
	}
}

// Events returns the event channel.
func (p *Player) Events() <-chan Event {
	return p.eventCh
}

// Play pauses rotation and shows the named scene for the given duration.
// When the window closes, rotation resumes with whatever was left of the
// interval that was running when the override came in, so the original
// cadence is preserved. A load failure does not shorten the window; the
// environment simply stays empty until rotation takes over again.
func (p *Player) Play(name string, duration time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active {
		zlog.Debug().Msgf("override already active (%s), dropping request: %s", p.scene, name)
		return ErrOverrideActive
	}

	p.active = true
	p.scene = name

	p.sched.Pause()

	if err := p.loader.Load(name); err != nil {
		zlog.Warn().Err(err).Msgf("override failed to load scene: %s", name)
	}

	zlog.Info().Msgf("override: showing %s for %s", name, duration)

	p.timerGen++
	gen := p.timerGen
	p.timerCancel = wallclock.After(duration, func() {
		p.onExpiry(gen)
	})

	p.sendEventLocked(Event{Type: EventStarted, Scene: name, Duration: duration})
	return nil
}

// Active reports whether an override window is open.
func (p *Player) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Scene returns the scene of the open window, or an empty string.
func (p *Player) Scene() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scene
}

// Close cancels a pending window without resuming rotation.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timerCancel != nil {
		p.timerCancel()
		p.timerCancel = nil
	}
	p.active = false
	p.scene = ""
}

// onExpiry closes the window and hands control back to the rotation.
// Expiries from windows that were cancelled after their final tick are
// dropped.
func (p *Player) onExpiry(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timerCancel == nil || gen != p.timerGen {
		return
	}
	p.timerCancel = nil

	scene := p.scene

	// Resume with what was left of the interval when the override came
	// in. Zero or negative means the interval had already elapsed and the
	// next rotation fire happens immediately.
	elapsed := wallclock.Now().Sub(p.sched.LastFiredAt())
	remaining := p.sched.Interval() - elapsed

	zlog.Info().Msgf("override window closed: %s, next rotation in %s",
		scene, remaining.Round(time.Millisecond))
	p.sched.Resume(remaining)

	p.active = false
	p.scene = ""

	p.sendEventLocked(Event{Type: EventFinished, Scene: scene})
}

// sendEventLocked sends an event without blocking.
// Must be called with lock held.
func (p *Player) sendEventLocked(e Event) {
	select {
	case p.eventCh <- e:
		// Successfully sent
	default:
		// Channel full, drop event
	}
}
