// Package config loads the server configuration from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"token_backend/internal/platform/env"
	infraredis "token_backend/internal/platform/redis"
)

// Config is the configuration of the HTTP server.
type Config struct {
	// Port is the listen port.
	Port int
	// GinMode is passed to gin.SetMode ("debug", "release" or "test").
	GinMode string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// CacheTTL bounds how long provider results stay in Redis.
	CacheTTL time.Duration
	// ProviderTimeout bounds every single provider call made by the orchestrators.
	ProviderTimeout time.Duration
	// CORSMaxAge is how long browsers may cache a preflight response.
	CORSMaxAge time.Duration
	// ResponseMaxAge and ResponseSWR drive the Cache-Control header of data endpoints.
	ResponseMaxAge time.Duration
	ResponseSWR    time.Duration
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	Redis infraredis.Config
}

// Load reads .env at path when it exists, then the environment, and validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ".env"
	}
	// Check if the expected .env file exists before loading it.
	if _, err := os.Stat(path); err == nil {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("loading .env file: %w", err)
		}
	} else {
		slog.Debug(".env not found; using system environment variables", "path", path)
	}

	cfg := &Config{
		Port:            env.Int("PORT", 8080),
		GinMode:         env.String("GIN_MODE", "release"),
		LogLevel:        strings.ToLower(env.String("LOG_LEVEL", "info")),
		CacheTTL:        env.Duration("CACHE_TTL", 30*time.Second),
		ProviderTimeout: env.Duration("PROVIDER_TIMEOUT", 6*time.Second),
		CORSMaxAge:      env.Duration("CORS_MAX_AGE", 12*time.Hour),
		ResponseMaxAge:  env.Duration("RESPONSE_MAX_AGE", 15*time.Second),
		ResponseSWR:     env.Duration("RESPONSE_SWR", 30*time.Second),
		ShutdownTimeout: env.Duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Redis:           infraredis.LoadConfig(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate asserts the config has sane values. Every problem is reported.
func (c *Config) Validate() error {
	var errs error

	if c.Port <= 0 || c.Port > 65535 {
		errs = errors.Join(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		errs = errors.Join(errs, fmt.Errorf("unknown gin mode %q", c.GinMode))
	}
	if _, ok := levels[c.LogLevel]; !ok {
		errs = errors.Join(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	if c.CacheTTL < 0 {
		errs = errors.Join(errs, fmt.Errorf("cache ttl cannot be negative"))
	}
	if c.ProviderTimeout <= 0 {
		errs = errors.Join(errs, fmt.Errorf("provider timeout must be positive"))
	}
	if c.ResponseMaxAge < 0 || c.ResponseSWR < 0 {
		errs = errors.Join(errs, fmt.Errorf("response cache durations cannot be negative"))
	}

	return errs
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel maps LogLevel onto a slog.Level. Unknown values map to info.
func (c *Config) SlogLevel() slog.Level {
	if l, ok := levels[c.LogLevel]; ok {
		return l
	}
	return slog.LevelInfo
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
