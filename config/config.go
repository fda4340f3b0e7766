// Package config reads runtime settings from the environment
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// FPS bounds
const (
	MinFPS = 1
	MaxFPS = 240
)

// Config holds settings for the achievement runtime and the demo host
type Config struct {
	Store    string  `env:"TROPHY_STORE" envDefault:"json"`
	SavePath string  `env:"TROPHY_SAVE_PATH" envDefault:"achievements.json"`
	DBPath   string  `env:"TROPHY_DB_PATH" envDefault:"achievements.db"`
	Catalog  string  `env:"TROPHY_CATALOG"`
	Debug    bool    `env:"TROPHY_DEBUG"`
	LogDir   string  `env:"TROPHY_LOG_DIR" envDefault:"logs"`
	FPS      int     `env:"TROPHY_FPS" envDefault:"60"`
	Muted    bool    `env:"TROPHY_MUTED"`
	Volume   float64 `env:"TROPHY_VOLUME" envDefault:"0.8"`
}

// ParseEnv loads configuration from environment variables
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment into a validated Config
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges; call again after applying flag overrides
func (c Config) Validate() error {
	switch c.Store {
	case StoreJSON, StoreSQLite:
	default:
		return fmt.Errorf("invalid store %q: want %s or %s", c.Store, StoreJSON, StoreSQLite)
	}
	if c.FPS < MinFPS || c.FPS > MaxFPS {
		return fmt.Errorf("invalid fps %d: want %d..%d", c.FPS, MinFPS, MaxFPS)
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("invalid volume %v: want 0..1", c.Volume)
	}
	return nil
}

// FrameInterval is the poll period implied by FPS
func (c Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}
