// Package config defines service configuration and how it is loaded.
//
// Conventions:
//   - New(ctx) builds a Config with defaults.
//   - Load(ctx) layers a YAML file and environment variables on top.
//   - Errors wrap ErrInvalidConfig or ErrLoadConfig.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/okian/voicepartner/internal/domain/settings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory attempt queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the attempt ID cache. Zero or less means unbounded.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLinesLimit caps GET /lines?limit.
	MaxLinesLimit int `koanf:"max_lines_limit"`

	// XPPerLevel is how much XP one learner level takes.
	XPPerLevel int `koanf:"xp_per_level"`

	// DefaultLocale is the recognition locale when an attempt names none.
	DefaultLocale string `koanf:"default_locale"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// Settings seeds the learner's voice and interface settings.
	Settings settings.Settings `koanf:"settings"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		QueueSize:       10_000,
		WorkerCount:     runtime.NumCPU(),
		DedupeSize:      50_000,
		MaxLinesLimit:   100,
		XPPerLevel:      500,
		DefaultLocale:   "en-GB",
		ShutdownTimeout: 10 * time.Second,
		Settings:        settings.Defaults(),
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.MaxLinesLimit < 1:
		return fmt.Errorf("%w: max_lines_limit must be positive, got %d", ErrInvalidConfig, c.MaxLinesLimit)
	case c.XPPerLevel < 1:
		return fmt.Errorf("%w: xp_per_level must be positive, got %d", ErrInvalidConfig, c.XPPerLevel)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if err := c.Settings.Validate(); err != nil {
		return fmt.Errorf("%w: settings: %w", ErrInvalidConfig, err)
	}
	return nil
}
