// Package geckoterminal provides a client for the GeckoTerminal DEX-aggregator API.
package geckoterminal

import (
	"time"

	"token_backend/internal/platform/env"
)

// Config holds configuration for the GeckoTerminal API client.
type Config struct {
	BaseURL           string        // Base URL for the API (e.g., "https://api.geckoterminal.com/api/v2")
	Timeout           time.Duration // Per-call timeout
	RequestsPerSecond float64       // Outbound rate limit, 0 disables it
	Burst             int
	CandleLimit       int // Number of bars requested per OHLCV call
}

// LoadConfig loads GeckoTerminal configuration from environment variables.
func LoadConfig() Config {
	return Config{
		BaseURL:           env.String("GECKOTERMINAL_BASE_URL", "https://api.geckoterminal.com/api/v2"),
		Timeout:           env.Duration("GECKOTERMINAL_TIMEOUT", 6*time.Second),
		RequestsPerSecond: env.Float("GECKOTERMINAL_RPS", 0.5),
		Burst:             env.Int("GECKOTERMINAL_BURST", 5),
		CandleLimit:       env.Int("GECKOTERMINAL_CANDLE_LIMIT", 300),
	}
}
