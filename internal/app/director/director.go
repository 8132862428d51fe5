// Package director wires the scene components together and runs the
// process lifecycle.
package director

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/mkaji/scenebox/internal/app/notify"
	"github.com/mkaji/scenebox/internal/app/override"
	"github.com/mkaji/scenebox/internal/app/player"
	"github.com/mkaji/scenebox/internal/app/rotation"
	"github.com/mkaji/scenebox/internal/app/store"
	"github.com/mkaji/scenebox/internal/app/world"
	"github.com/mkaji/scenebox/internal/domain/playlist"
	"github.com/mkaji/scenebox/internal/domain/scene"
	"github.com/mkaji/scenebox/internal/infra/config"
	"github.com/mkaji/scenebox/internal/infra/scenefile"
)

// Director owns every runtime component.
type Director struct {
	config *config.Config

	store      *store.Store
	controller world.Controller
	player     *player.Player
	scheduler  *rotation.Scheduler
	override   *override.Player
	notifier   *notify.Manager

	playlist playlist.Playlist

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// New builds a director from configuration. Scenes are read once, here;
// a broken scene directory leaves the store empty and autoplay disabled
// rather than failing startup.
func New(cfg *config.Config) (*Director, error) {
	controller, err := world.New(cfg.World.Controller)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create world controller")
	}

	st := store.New()

	scenes, err := scenefile.LoadDirectory(cfg.Scenes.Directory)
	if err != nil {
		zlog.Error().Err(err).Msgf("failed to load scenes from %s, continuing without autoplay", cfg.Scenes.Directory)
		scenes = map[string]*scene.Scene{}
	}
	st.Populate(scenes)
	zlog.Info().Msgf("scene store ready: %d scenes from %s", st.Count(), cfg.Scenes.Directory)

	pl, missing := playlist.Build(cfg.Scenes.Autoplay, st.Has)
	for _, name := range missing {
		zlog.Warn().Msgf("autoplay entry has no scene file, dropping: %s", name)
	}

	p := player.New(st, controller)
	sched := rotation.New(pl, cfg.Scenes.Interval(), p)

	d := &Director{
		config:     cfg,
		store:      st,
		controller: controller,
		player:     p,
		scheduler:  sched,
		override:   override.New(sched, p),
		notifier:   notify.NewManager(cfg.Notify.SendTimeout()),
		playlist:   pl,
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
	}
	return d, nil
}

// Start begins rotation and event fan-out.
func (d *Director) Start() {
	go d.eventLoop()

	if d.playlist.IsEmpty() {
		zlog.Info().Msg("autoplay disabled: no playable scenes configured")
		return
	}

	zlog.Info().Msgf("starting autoplay: %d scenes, interval %s",
		d.playlist.Len(), d.config.Scenes.Interval())
	d.scheduler.Resume(0)
}

// Stop shuts everything down: any override window is cancelled, rotation
// stops, and the live scene is cleared so nothing is left behind in the
// environment. Safe to call more than once.
func (d *Director) Stop() {
	d.stopOnce.Do(func() {
		zlog.Info().Msg("shutting down director")

		d.override.Close()
		d.scheduler.Pause()
		d.player.Unload()

		if err := d.controller.Close(); err != nil {
			zlog.Warn().Err(err).Msg("failed to close world controller")
		}
		d.notifier.Close()

		close(d.stopCh)
		close(d.done)
	})
}

// Done returns a channel that is closed when the director has stopped.
func (d *Director) Done() <-chan struct{} {
	return d.done
}

// Override shows the named scene for the given duration, then hands back
// to rotation. Returns store.ErrSceneNotFound for unknown names and
// override.ErrOverrideActive when a window is already open.
func (d *Director) Override(name string, duration time.Duration) error {
	if !d.store.Has(name) {
		return store.ErrSceneNotFound
	}
	return d.override.Play(name, duration)
}

// PauseRotation stops the autoplay rotation.
func (d *Director) PauseRotation() {
	d.scheduler.Pause()
}

// ResumeRotation restarts the autoplay rotation, optionally after a delay.
func (d *Director) ResumeRotation(afterDelay time.Duration) {
	d.scheduler.Resume(afterDelay)
}

// UnloadScene clears whatever is currently placed.
func (d *Director) UnloadScene() {
	d.player.Unload()
}

// Scenes returns all known scenes in name order.
func (d *Director) Scenes() []*scene.Scene {
	return d.store.All()
}

// HasScene reports whether the store knows the named scene.
func (d *Director) HasScene(name string) bool {
	return d.store.Has(name)
}

// Notifier returns the notification manager.
func (d *Director) Notifier() *notify.Manager {
	return d.notifier
}

// Status is a point-in-time snapshot of the runtime state.
type Status struct {
	RotationState  rotation.State
	CurrentScene   string
	Loading        bool
	OverrideActive bool
	OverrideScene  string
	Cursor         int
	Playlist       []string
	LastFiredAt    time.Time
	Interval       time.Duration
	SceneCount     int
	Subscribers    int
}

// Status returns the current runtime status.
func (d *Director) Status() Status {
	return Status{
		RotationState:  d.scheduler.State(),
		CurrentScene:   d.player.CurrentScene(),
		Loading:        d.player.Loading(),
		OverrideActive: d.override.Active(),
		OverrideScene:  d.override.Scene(),
		Cursor:         d.scheduler.Cursor(),
		Playlist:       append([]string(nil), d.playlist.Names...),
		LastFiredAt:    d.scheduler.LastFiredAt(),
		Interval:       d.scheduler.Interval(),
		SceneCount:     d.store.Count(),
		Subscribers:    d.notifier.SubscriberCount(),
	}
}

// eventLoop fans component events out to notification subscribers.
func (d *Director) eventLoop() {
	defer func() {
		if r := recover(); r != nil {
			zlog.Error().Msgf("event loop panicked: %v", r)
			// Restart loop to keep notifications flowing
			zlog.Info().Msg("restarting event loop")
			go d.eventLoop()
		}
	}()

	for {
		select {
		case <-d.stopCh:
			return
		case e := <-d.player.Events():
			d.broadcast(notify.Type(e.Type.String()), e.Scene)
		case e := <-d.scheduler.Events():
			d.broadcast(notify.Type(e.Type.String()), e.Scene)
		case e := <-d.override.Events():
			d.broadcast(notify.Type(e.Type.String()), e.Scene)
		}
	}
}

func (d *Director) broadcast(typ notify.Type, sceneName string) {
	zlog.Debug().Msgf("event: type=%s scene=%s", typ, sceneName)
	d.notifier.Broadcast(notify.Event{Type: typ, Scene: sceneName})
}
