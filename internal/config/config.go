// Package config loads the vault's settings from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	Port int `env:"PORT" envDefault:"8080"`

	// Storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"sqlite"`
	DBPath         string `env:"DB_PATH" envDefault:"data/vault.db"`
	RedisURL       string `env:"REDIS_URL"`
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"vault:"`

	// Bootstrap admin account
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@filevault.local"`
	AdminName     string `env:"ADMIN_NAME" envDefault:"Vault Admin"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin1234"`

	// Artificial pause before login, signup and upload
	SimulatedLatency time.Duration `env:"SIMULATED_LATENCY" envDefault:"0s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("config: unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.StorageBackend == BackendRedis && c.RedisURL == "" {
		return fmt.Errorf("config: REDIS_URL is required for the redis backend")
	}
	if strings.TrimSpace(c.AdminEmail) == "" {
		return fmt.Errorf("config: ADMIN_EMAIL must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT %d out of range", c.Port)
	}
	return nil
}

// SlogLevel converts LOG_LEVEL to a slog.Level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
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

// RedactedRedisURL returns REDIS_URL with any password removed, for logging.
func (c *Config) RedactedRedisURL() string {
	if c.RedisURL == "" {
		return ""
	}
	parsed, err := url.Parse(c.RedisURL)
	if err != nil {
		return "[redacted]"
	}
	if parsed.User != nil {
		parsed.User = url.User(parsed.User.Username())
	}
	return parsed.String()
}
