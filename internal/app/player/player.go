// Package player loads scenes into the shared environment and tracks what
// is currently placed.
package player

import (
	"context"
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/mkaji/scenebox/internal/app/store"
	"github.com/mkaji/scenebox/internal/app/world"
	"github.com/mkaji/scenebox/internal/domain/scene"
)

// Environment places and clears scene content. Implemented by
// world.Controller.
type Environment interface {
	PlaceContent(ctx context.Context, sc *scene.Scene, opts world.PlaceOptions) error
	ClearRegion(ctx context.Context, region scene.Region) error
}

// Player swaps scenes in and out of the environment. At most one load runs
// at a time; requests arriving while one is in flight are dropped, not
// queued. Callers that need the scene shown retry on their own schedule.
type Player struct {
	store   *store.Store
	env     Environment
	tracker *RegionTracker

	mu      sync.RWMutex
	loading bool
	current string

	eventCh chan Event
}

// New creates a player backed by the given store and environment.
func New(st *store.Store, env Environment) *Player {
	return &Player{
		store:   st,
		env:     env,
		tracker: &RegionTracker{},
		eventCh: make(chan Event, 10),
	}
}

// Events returns the event channel.
func (p *Player) Events() <-chan Event {
	return p.eventCh
}

// Load swaps the named scene in: the current scene is cleared right away
// and placement runs in the background. Returns store.ErrSceneNotFound for
// names the store does not know. A load requested while another is still
// in flight is dropped.
func (p *Player) Load(name string) error {
	p.mu.Lock()
	if p.loading {
		p.mu.Unlock()
		zlog.Debug().Msgf("scene load in progress, dropping request: %s", name)
		return nil
	}

	sc, err := p.store.Get(name)
	if err != nil {
		p.mu.Unlock()
		zlog.Error().Err(err).Msgf("cannot load unknown scene: %s", name)
		return err
	}

	p.loading = true
	p.mu.Unlock()

	p.Unload()

	go p.place(sc)
	return nil
}

// place runs the actual placement. Once started it is never cancelled;
// aborting mid-flight could leave partial content behind.
func (p *Player) place(sc *scene.Scene) {
	defer func() {
		p.mu.Lock()
		p.loading = false
		p.mu.Unlock()
	}()

	if err := p.env.PlaceContent(context.Background(), sc, world.PlaceOptions{}); err != nil {
		zlog.Error().Err(err).Msgf("failed to place scene: %s", sc.Name)
		p.sendEvent(Event{Type: EventLoadFailed, Scene: sc.Name})
		return
	}

	p.mu.Lock()
	p.current = sc.Name
	p.mu.Unlock()
	p.tracker.Set(sc.Bounds)

	zlog.Info().Msgf("scene placed: %s (%d items) %s", sc.Name, sc.Items, sc.Bounds.String())
	p.sendEvent(Event{Type: EventSceneLoaded, Scene: sc.Name})
}

// Unload clears the live scene. Does nothing when no region is tracked,
// so repeated calls are safe.
func (p *Player) Unload() {
	region, ok := p.tracker.Live()
	if !ok {
		return
	}

	if err := p.env.ClearRegion(context.Background(), region); err != nil {
		zlog.Error().Err(err).Msgf("failed to clear region: %s", region.String())
	}
	p.tracker.Clear()

	p.mu.Lock()
	name := p.current
	p.current = ""
	p.mu.Unlock()

	zlog.Info().Msgf("scene unloaded: %s", name)
	p.sendEvent(Event{Type: EventSceneUnloaded, Scene: name})
}

// CurrentScene returns the name of the scene that is currently placed, or
// an empty string.
func (p *Player) CurrentScene() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Loading reports whether a placement is in flight.
func (p *Player) Loading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading
}

// LiveRegion returns the region of the placed scene, or false when the
// environment is empty.
func (p *Player) LiveRegion() (scene.Region, bool) {
	return p.tracker.Live()
}

// sendEvent sends an event without blocking.
func (p *Player) sendEvent(e Event) {
	select {
	case p.eventCh <- e:
		// Successfully sent
	default:
		// Channel full, drop event
	}
}
