// Package goplus provides a client for the GoPlus token security API, used here for token metadata.
package goplus

import (
	"time"

	"token_backend/internal/platform/env"
)

// Config holds configuration for the GoPlus API client.
type Config struct {
	AccessToken       string        // Optional bearer token, anonymous access is rate limited harder
	BaseURL           string        // Base URL for the API (e.g., "https://api.gopluslabs.io")
	Timeout           time.Duration // Per-call timeout
	RequestsPerSecond float64
	Burst             int
}

// LoadConfig loads GoPlus configuration from environment variables.
func LoadConfig() Config {
	return Config{
		AccessToken:       env.String("GOPLUS_ACCESS_TOKEN", ""),
		BaseURL:           env.String("GOPLUS_BASE_URL", "https://api.gopluslabs.io"),
		Timeout:           env.Duration("GOPLUS_TIMEOUT", 4*time.Second),
		RequestsPerSecond: env.Float("GOPLUS_RPS", 0.5),
		Burst:             env.Int("GOPLUS_BURST", 2),
	}
}
