// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (upstream client, Redis, engine) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Impulsa dashboard service.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Upstream platform API (source of initiatives and postulations)
	UpstreamURL   string  `env:"UPSTREAM_URL,required,notEmpty"`
	UpstreamRPS   float64 `env:"UPSTREAM_RPS"   envDefault:"20"`
	UpstreamBurst int     `env:"UPSTREAM_BURST" envDefault:"40"`

	// Key-Value store (Redis) for "already applied" flags
	RedisURL   string        `env:"REDIS_URL,required,notEmpty"`
	AppliedTTL time.Duration `env:"APPLIED_TTL" envDefault:"0s"`

	// Public key used to verify the access tokens issued by the platform
	JWTPubKeyPath string `env:"JWT_PUBLIC_KEY_PATH,required,notEmpty"`
	JWTIssuer     string `env:"JWT_ISSUER"` // Optional: empty accepts any issuer

	// Presentation
	FallbackImage   string `env:"FALLBACK_IMAGE"   envDefault:"/assets/img/default.png"`
	Locale          string `env:"LOCALE"           envDefault:"es"`
	DisplayTimezone string `env:"DISPLAY_TIMEZONE" envDefault:"UTC"`

	// Engine tuning
	AdminPageSize int           `env:"ADMIN_PAGE_SIZE" envDefault:"12"`
	FanoutLimit   int           `env:"FANOUT_LIMIT"    envDefault:"8"`
	SessionTTL    time.Duration `env:"SESSION_TTL"     envDefault:"30m"`

	// Cross-Origin Resource Sharing
	AllowedOriginSuffix string `env:"ALLOWED_ORIGIN_SUFFIX" envDefault:"impulsa.app"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks cross-field constraints that struct tags cannot express.
func (c *Config) validate() error {
	if c.AdminPageSize < 1 {
		return fmt.Errorf("config: ADMIN_PAGE_SIZE must be positive, got %d", c.AdminPageSize)
	}
	if c.FanoutLimit < 1 {
		return fmt.Errorf("config: FANOUT_LIMIT must be positive, got %d", c.FanoutLimit)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	c.UpstreamURL = strings.TrimRight(c.UpstreamURL, "/")
	return nil
}

// Location resolves [Config.DisplayTimezone] into a [time.Location].
func (c *Config) Location() (*time.Location, error) {
	location, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("config: invalid DISPLAY_TIMEZONE %q: %w", c.DisplayTimezone, err)
	}
	return location, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// OriginSuffix returns the production CORS origin suffix.
func (c *Config) OriginSuffix() string {
	return c.AllowedOriginSuffix
}
