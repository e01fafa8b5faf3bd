// Package birdeye provides a client for the Birdeye price/terminal API.
package birdeye

import (
	"time"

	"token_backend/internal/platform/env"
)

// Config holds configuration for the Birdeye API client.
type Config struct {
	APIKey            string        // API key sent as X-API-KEY, the client is disabled when empty
	BaseURL           string        // Base URL for the API (e.g., "https://public-api.birdeye.so")
	Timeout           time.Duration // Per-call timeout
	RequestsPerSecond float64
	Burst             int
	CandleLimit       int // Number of bars covered by the requested time range
}

// LoadConfig loads Birdeye configuration from environment variables.
func LoadConfig() Config {
	return Config{
		APIKey:            env.String("BIRDEYE_API_KEY", ""),
		BaseURL:           env.String("BIRDEYE_BASE_URL", "https://public-api.birdeye.so"),
		Timeout:           env.Duration("BIRDEYE_TIMEOUT", 5*time.Second),
		RequestsPerSecond: env.Float("BIRDEYE_RPS", 1),
		Burst:             env.Int("BIRDEYE_BURST", 2),
		CandleLimit:       env.Int("BIRDEYE_CANDLE_LIMIT", 300),
	}
}
