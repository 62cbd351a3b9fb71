// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/Shivanand-hulikatti/rent-reservations/internal/database"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all configuration values for the service.
type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	Store       string `env:"STORE" envDefault:"postgres"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"rent-reservations"`

	// When set, REJECTED and CANCELLED reservations stop blocking their dates.
	OverlapIgnoreClosed bool `env:"OVERLAP_IGNORE_CLOSED" envDefault:"false"`

	// Requests per second per client IP; 0 disables limiting.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"0"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`

	// OTLP gRPC collector address; empty disables tracing.
	OTELEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	Database database.Config
}

// Load reads an optional .env file and then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads configuration from environment variables only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	switch c.Store {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("invalid STORE %q (want %s or %s)", c.Store, StorePostgres, StoreMemory)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", c.Port)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("invalid RATE_LIMIT_RPS: %v", c.RateLimitRPS)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 1 when rate limiting is enabled")
	}
	return nil
}
