// Package world provides environment controllers that place and clear
// scene content in the shared environment.
package world

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/mkaji/scenebox/internal/domain/scene"
	"github.com/mkaji/scenebox/internal/infra/config"
)

// PlaceOptions carries optional placement parameters.
type PlaceOptions struct {
	// At overrides the snapshot's native anchor point when set.
	At *scene.Vec3
}

// Controller places and clears scene content in the shared environment.
// Both operations talk to a remote environment and may fail.
type Controller interface {
	PlaceContent(ctx context.Context, sc *scene.Scene, opts PlaceOptions) error
	ClearRegion(ctx context.Context, region scene.Region) error
	Close() error
}

// builderFunc creates a controller from its raw settings map.
type builderFunc func(settings map[string]any) (Controller, error)

var registry = make(map[string]builderFunc)

// register adds a controller type to the registry. Called from init().
func register(typ string, fn builderFunc) {
	registry[typ] = fn
}

// New creates the controller selected by the configuration.
func New(cfg config.ControllerConfig) (Controller, error) {
	build, ok := registry[cfg.Type]
	if !ok {
		return nil, errors.Newf("unsupported controller type: %s", cfg.Type)
	}

	zlog.Debug().Msgf("creating world controller: type=%s", cfg.Type)
	ctrl, err := build(cfg.Settings)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %s controller", cfg.Type)
	}

	zlog.Info().Msgf("world controller ready: type=%s", cfg.Type)
	return ctrl, nil
}

// decodeSettings fills out from the raw settings map, applies defaults and
// validates the result.
func decodeSettings(settings map[string]any, out any) error {
	if err := mapstructure.Decode(settings, out); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(out); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(out); err != nil {
		return errors.Wrap(err, "validation failed")
	}
	return nil
}
