// Package timeframes holds the per-provider timeframe fallback table.
package timeframes

import "token_backend/internal/shared/market"

// fallbackTable lists, per provider and requested timeframe, the timeframes to try in order.
// The first entry is the exact match when the provider serves it; later entries coarsen.
var fallbackTable = map[string]map[market.Timeframe][]market.Timeframe{
	market.ProviderGeckoTerminal: {
		market.TF1m:  {market.TF1m, market.TF5m, market.TF15m},
		market.TF5m:  {market.TF5m, market.TF15m, market.TF1h},
		market.TF15m: {market.TF15m, market.TF1h, market.TF4h},
		market.TF30m: {market.TF1h, market.TF4h},
		market.TF1h:  {market.TF1h, market.TF4h, market.TF1d},
		market.TF4h:  {market.TF4h, market.TF12h, market.TF1d},
		market.TF12h: {market.TF12h, market.TF1d},
		market.TF1d:  {market.TF1d},
	},
	market.ProviderBirdeye: {
		market.TF1m:  {market.TF1m, market.TF5m, market.TF15m},
		market.TF5m:  {market.TF5m, market.TF15m, market.TF30m},
		market.TF15m: {market.TF15m, market.TF30m, market.TF1h},
		market.TF30m: {market.TF30m, market.TF1h, market.TF4h},
		market.TF1h:  {market.TF1h, market.TF4h, market.TF12h},
		market.TF4h:  {market.TF4h, market.TF12h, market.TF1d},
		market.TF12h: {market.TF12h, market.TF1d},
		market.TF1d:  {market.TF1d},
	},
}

// FallbackOrder returns the ordered timeframes to request from provider for requested.
// It returns nil when the provider has no candle support or the timeframe is unknown.
// The returned slice is a copy and may be modified by the caller.
func FallbackOrder(requested market.Timeframe, provider string) []market.Timeframe {
	order := fallbackTable[provider][requested]
	if len(order) == 0 {
		return nil
	}
	out := make([]market.Timeframe, len(order))
	copy(out, order)
	return out
}

// Supports reports whether provider serves tf natively.
func Supports(provider string, tf market.Timeframe) bool {
	for _, order := range fallbackTable[provider] {
		for _, t := range order {
			if t == tf {
				return true
			}
		}
	}
	return false
}
