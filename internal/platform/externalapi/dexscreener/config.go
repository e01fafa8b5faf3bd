// Package dexscreener provides a client for the DexScreener pair/listing API.
package dexscreener

import (
	"time"

	"token_backend/internal/platform/env"
)

// Config holds configuration for the DexScreener API client.
type Config struct {
	BaseURL           string        // Base URL for the API (e.g., "https://api.dexscreener.com")
	Timeout           time.Duration // Per-call timeout
	RequestsPerSecond float64
	Burst             int
}

// LoadConfig loads DexScreener configuration from environment variables.
func LoadConfig() Config {
	return Config{
		BaseURL:           env.String("DEXSCREENER_BASE_URL", "https://api.dexscreener.com"),
		Timeout:           env.Duration("DEXSCREENER_TIMEOUT", 5*time.Second),
		RequestsPerSecond: env.Float("DEXSCREENER_RPS", 4),
		Burst:             env.Int("DEXSCREENER_BURST", 4),
	}
}
