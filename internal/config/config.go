// Package config reads the server settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Addr string `env:"CULTIVATION_ADDR" envDefault:":8080"`
	// DBPath is the SQLite file holding the save slots.
	DBPath string `env:"CULTIVATION_DB_PATH" envDefault:"cultivation.db"`
	// ContentPath overrides the built-in content when set.
	ContentPath      string        `env:"CULTIVATION_CONTENT_PATH"`
	TickInterval     time.Duration `env:"CULTIVATION_TICK_INTERVAL"     envDefault:"1s"`
	AutosaveInterval time.Duration `env:"CULTIVATION_AUTOSAVE_INTERVAL" envDefault:"30s"`
	MaxSaveSlots     int           `env:"CULTIVATION_MAX_SAVE_SLOTS"    envDefault:"5"`
	LogLevel         string        `env:"CULTIVATION_LOG_LEVEL"         envDefault:"info"`
}

// Load parses the environment and checks the values the server depends on.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.TickInterval <= 0 {
		return Config{}, fmt.Errorf("tick interval must be positive, got %s", cfg.TickInterval)
	}
	if cfg.AutosaveInterval < cfg.TickInterval {
		return Config{}, fmt.Errorf("autosave interval %s is shorter than the tick interval %s", cfg.AutosaveInterval, cfg.TickInterval)
	}
	if cfg.MaxSaveSlots < 1 {
		return Config{}, fmt.Errorf("max save slots must be at least 1, got %d", cfg.MaxSaveSlots)
	}
	return cfg, nil
}

// SlogLevel maps LogLevel onto slog; unknown names fall back to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
