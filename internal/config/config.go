// Package config handles loading and validating runtime configuration for the Tournament
// Finder API. Configuration values (like the database URL and API port) are read from
// environment variables rather than being hardcoded, so the same binary runs in dev,
// staging and production with only the environment changing.
package config

import (
	"errors"
	"fmt"
	"time"

	// env maps environment variables onto struct fields using `env:"..."` tags.
	"github.com/caarlos0/env/v11"
	// godotenv reads a .env file and loads its key=value pairs into the process environment.
	// Convenient in development; in production real env vars are used instead.
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values for the application.
type Config struct {
	Port           string        `env:"PORT" envDefault:"8080"`                  // TCP port the HTTP server listens on
	DatabaseURL    string        `env:"DATABASE_URL"`                            // PostgreSQL connection string; required
	Env            string        `env:"ENV" envDefault:"development"`            // "development", "staging" or "production"
	APIPrefix      string        `env:"API_PREFIX"`                              // Mount point for the tournament routes, e.g. "/api/tournaments"
	MigrationsPath string        `env:"MIGRATIONS_PATH" envDefault:"migrations"` // Directory holding the *.up.sql files
	JWTSecret      string        `env:"JWT_SECRET"`                              // HS256 secret for moderator tokens; empty disables auth
	RedisURL       string        `env:"REDIS_URL"`                               // e.g. "redis://localhost:6379/0"; empty disables the list cache
	CacheTTL       time.Duration `env:"CACHE_TTL" envDefault:"60s"`              // How long cached tournament lists live
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`             // zap level: debug, info, warn, error
}

// Load reads configuration from the environment, after trying to load a .env file.
// A missing .env file is fine; real environment variables win over it either way.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks settings the server cannot start without.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Env == "production" && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required in production; moderation routes would be open")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	}
	return nil
}

// AuthEnabled reports whether moderation routes require a token.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// CacheEnabled reports whether tournament lists are cached in Redis.
func (c *Config) CacheEnabled() bool {
	return c.RedisURL != ""
}
