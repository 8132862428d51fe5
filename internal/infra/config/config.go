// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Admin  AdminConfig  `yaml:"admin"`
	Log    LogConfig    `yaml:"log"`
	Scenes ScenesConfig `yaml:"scenes"`
	World  WorldConfig  `yaml:"world"`
	Notify NotifyConfig `yaml:"notify"`
}

// ServerConfig represents HTTP server configuration.
type ServerConfig struct {
	Addr  string      `yaml:"addr" default:":8080"`
	Hooks HooksConfig `yaml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// AdminConfig represents admin-related configuration.
type AdminConfig struct {
	Token string `yaml:"token" validate:"required"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Output string `yaml:"output" default:"stdout"`
	Level  string `yaml:"level" default:"info"`
	File   string `yaml:"file"`
}

// ScenesConfig represents scene loading and autoplay configuration.
type ScenesConfig struct {
	Directory    string   `yaml:"directory" validate:"required"`
	Autoplay     []string `yaml:"autoplay"`
	IntervalSecs int      `yaml:"interval_secs" default:"300" validate:"gte=1,lte=86400"`
}

// Interval returns the autoplay interval as a duration.
func (s ScenesConfig) Interval() time.Duration {
	return time.Duration(s.IntervalSecs) * time.Second
}

// WorldConfig represents the environment controller configuration.
type WorldConfig struct {
	Controller ControllerConfig `yaml:"controller"`
}

// ControllerConfig selects and configures a world controller implementation.
type ControllerConfig struct {
	Type     string         `yaml:"type" default:"sim" validate:"required"`
	Settings map[string]any `yaml:"settings"`
}

// NotifyConfig represents event broadcasting configuration.
type NotifyConfig struct {
	SendTimeoutMs int `yaml:"send_timeout_ms" default:"500" validate:"gte=50,lte=10000"`
}

// SendTimeout returns the per-subscriber broadcast timeout as a duration.
func (n NotifyConfig) SendTimeout() time.Duration {
	return time.Duration(n.SendTimeoutMs) * time.Millisecond
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SCENEBOX_ADMIN_TOKEN"); v != "" {
		c.Admin.Token = v
	}
	if v := os.Getenv("SCENEBOX_SCENE_DIR"); v != "" {
		c.Scenes.Directory = v
	}
	if v := os.Getenv("SCENEBOX_WORLD_PASSWORD"); v != "" {
		if c.World.Controller.Settings == nil {
			c.World.Controller.Settings = map[string]any{}
		}
		c.World.Controller.Settings["password"] = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	// Autoplay entries must be non-empty names; membership against the
	// loaded scene set is checked later, at startup.
	for i, name := range c.Scenes.Autoplay {
		if name == "" {
			return errors.Newf("scenes.autoplay[%d] is empty", i)
		}
	}

	return nil
}
