// Package config holds process-wide configuration parsed from the
// environment. A .env file, when present, is loaded by cmd/api before
// parsing.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Addr    string `env:"BOARD_ADDR" envDefault:"0.0.0.0:8431"`
	DataDir string `env:"BOARD_DATA_DIR" envDefault:"data"`

	// SecretKey signs bearer tokens; rotating it invalidates every
	// outstanding token.
	SecretKey string        `env:"BOARD_SECRET_KEY" envDefault:"change-this-in-production-use-a-real-secret-key"`
	TokenTTL  time.Duration `env:"BOARD_TOKEN_TTL" envDefault:"24h"`

	// Bootstrap admin, created at startup if absent.
	AdminUsername string `env:"BOARD_ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"BOARD_ADMIN_PASSWORD" envDefault:"changeme"`

	// StorageDriver selects the persistence gateway: "json" (flat files
	// under DataDir), "postgres" or "sqlite" (snapshot table via
	// DatabaseURL).
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"json"`
	DatabaseURL   string `env:"DATABASE_URL"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}
