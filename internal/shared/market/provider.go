package market

import "strings"

// Provider identifiers.
const (
	ProviderGeckoTerminal = "geckoterminal"
	ProviderBirdeye       = "birdeye"
	ProviderDexScreener   = "dexscreener"
	ProviderGoPlus        = "goplus"

	// ProviderSynthetic marks candles built from trade prints.
	ProviderSynthetic = "synthetic"
	// ProviderNone marks a result that no provider could satisfy.
	ProviderNone = "none"
)

// Attempt kinds.
const (
	KindCandles = "candles"
	KindTrades  = "trades"
	KindPools   = "pools"
	KindToken   = "token"
)

// Attempt is one provider call made while serving a request.
type Attempt struct {
	Provider  string    `json:"provider"`
	Kind      string    `json:"kind"`
	Timeframe Timeframe `json:"tf,omitempty"`
	Items     int       `json:"items"`
	Error     string    `json:"error,omitempty"`
}

// AttemptRecord is the diagnostic trail of a request.
type AttemptRecord struct {
	Attempts           []Attempt `json:"attempts"`
	EffectiveTimeframe Timeframe `json:"effectiveTf,omitempty"`
	Items              int       `json:"items"`
	Provider           string    `json:"provider"`
}

// Add appends an attempt to the trail.
func (r *AttemptRecord) Add(a Attempt) {
	r.Attempts = append(r.Attempts, a)
}

// Tried returns the provider identifiers in the order they were first attempted.
func (r *AttemptRecord) Tried() []string {
	seen := make(map[string]struct{}, len(r.Attempts))
	out := make([]string, 0, len(r.Attempts))
	for _, a := range r.Attempts {
		if _, ok := seen[a.Provider]; ok {
			continue
		}
		seen[a.Provider] = struct{}{}
		out = append(out, a.Provider)
	}
	return out
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
