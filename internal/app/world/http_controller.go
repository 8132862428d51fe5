package world

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/mkaji/scenebox/internal/domain/scene"
	"github.com/mkaji/scenebox/internal/infra/worldapi"
)

func init() {
	register("http", newHTTPController)
}

type httpSettings struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	APIKey  string `mapstructure:"api_key"`
}

// httpController drives a world agent over its REST API.
type httpController struct {
	client *worldapi.Client
}

func newHTTPController(settings map[string]any) (Controller, error) {
	var cfg httpSettings
	if err := decodeSettings(settings, &cfg); err != nil {
		return nil, err
	}

	client, err := worldapi.New(worldapi.Config{BaseURL: cfg.BaseURL, APIKey: cfg.APIKey})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create world agent client")
	}

	// Reachability is informational only. The agent may come up later, and
	// commands carry their own retries.
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		zlog.Warn().Err(err).Msg("world agent is not responding")
	}

	return &httpController{client: client}, nil
}

func (c *httpController) PlaceContent(ctx context.Context, sc *scene.Scene, opts PlaceOptions) error {
	return c.client.PlaceScene(ctx, worldapi.PlaceRequest{
		Scene:  sc.Name,
		Data:   sc.Data,
		Bounds: sc.Bounds,
		At:     opts.At,
	})
}

func (c *httpController) ClearRegion(ctx context.Context, region scene.Region) error {
	return c.client.ClearRegion(ctx, worldapi.ClearRequest{Region: region})
}

func (c *httpController) Close() error {
	return nil
}
