// Package config loads runtime settings for the tutor engine.
//
// Precedence, lowest first: built-in defaults, an optional config file,
// TUTOR_* environment variables, then command-line flags bound by the
// caller.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/abhisek/tutorcore/internal/apperr"
	"github.com/abhisek/tutorcore/internal/store"
)

const envPrefix = "TUTOR"

// Config is the resolved runtime configuration.
type Config struct {
	Mode       string           `mapstructure:"mode"`
	DB         string           `mapstructure:"db"`
	Addr       string           `mapstructure:"addr"`
	Review     ReviewConfig     `mapstructure:"review"`
	Difficulty DifficultyConfig `mapstructure:"difficulty"`
}

// ReviewConfig tunes the review queue and scheduler.
type ReviewConfig struct {
	SessionCap       int     `mapstructure:"session_cap"`
	DesiredRetention float64 `mapstructure:"desired_retention"`
}

// DifficultyConfig sizes the rolling answer windows.
type DifficultyConfig struct {
	Window       int `mapstructure:"window"`
	RecentWindow int `mapstructure:"recent_window"`
}

// New returns a viper instance with defaults and environment binding set
// up. Flags are bound by the caller before Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("mode", "dev")
	v.SetDefault("db", "")
	v.SetDefault("addr", ":8080")
	v.SetDefault("review.session_cap", 20)
	v.SetDefault("review.desired_retention", 0.9)
	v.SetDefault("difficulty.window", 20)
	v.SetDefault("difficulty.recent_window", 10)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file into v and decodes the result.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", file)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if cfg.DB == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		cfg.DB = p
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects out-of-range settings.
func (c *Config) Validate() error {
	if c.Review.SessionCap <= 0 {
		return errors.Wrapf(apperr.ErrValidation, "review.session_cap must be positive, got %d", c.Review.SessionCap)
	}
	if c.Review.DesiredRetention <= 0 || c.Review.DesiredRetention >= 1 {
		return errors.Wrapf(apperr.ErrValidation, "review.desired_retention must be in (0,1), got %v", c.Review.DesiredRetention)
	}
	if c.Difficulty.Window <= 0 {
		return errors.Wrapf(apperr.ErrValidation, "difficulty.window must be positive, got %d", c.Difficulty.Window)
	}
	if c.Difficulty.RecentWindow <= 0 || c.Difficulty.RecentWindow > c.Difficulty.Window {
		return errors.Wrapf(apperr.ErrValidation, "difficulty.recent_window must be in [1,%d], got %d", c.Difficulty.Window, c.Difficulty.RecentWindow)
	}
	return nil
}
