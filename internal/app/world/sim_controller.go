package world

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/mkaji/scenebox/internal/domain/scene"
)

func init() {
	register("sim", newSimController)
}

type simSettings struct {
	LatencyMs      int  `mapstructure:"latency_ms" default:"0" validate:"gte=0,lte=10000"`
	FailPlacements bool `mapstructure:"fail_placements"`
}

// simController is an in-process stand-in for a real environment. It logs
// every command and remembers what is placed, which is enough for local
// development without a broker or agent.
type simController struct {
	latency time.Duration
	fail    bool

	mu     sync.Mutex
	placed map[string]scene.Region
}

func newSimController(settings map[string]any) (Controller, error) {
	var cfg simSettings
	if err := decodeSettings(settings, &cfg); err != nil {
		return nil, err
	}

	return &simController{
		latency: time.Duration(cfg.LatencyMs) * time.Millisecond,
		fail:    cfg.FailPlacements,
		placed:  make(map[string]scene.Region),
	}, nil
}

func (c *simController) PlaceContent(ctx context.Context, sc *scene.Scene, opts PlaceOptions) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	if c.fail {
		return errors.Newf("simulated placement failure for %s", sc.Name)
	}

	c.mu.Lock()
	c.placed[sc.Name] = sc.Bounds
	c.mu.Unlock()

	zlog.Info().Msgf("simulated placement: %s (%d items) %s", sc.Name, sc.Items, sc.Bounds.String())
	return nil
}

func (c *simController) ClearRegion(ctx context.Context, region scene.Region) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	for name, r := range c.placed {
		if r == region {
			delete(c.placed, name)
		}
	}
	c.mu.Unlock()

	zlog.Info().Msgf("simulated clear: %s", region.String())
	return nil
}

func (c *simController) Close() error {
	return nil
}

// wait applies the configured command latency, honoring cancellation.
func (c *simController) wait(ctx context.Context) error {
	if c.latency <= 0 {
		return nil
	}
	select {
	case <-time.After(c.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
