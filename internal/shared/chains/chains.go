// Package chains maps human-readable chain slugs onto the network identifiers used by each provider.
//
// Providers name the same chain differently ("eth", "ethereum", "1"), so there is one table per provider.
// Lookups never fail loudly: an unknown chain or provider simply reports ok=false, which callers treat as
// "this provider does not cover the chain".
package chains

import (
	"sort"
	"strings"

	"token_backend/internal/shared/market"
)

// Supported chain slugs.
const (
	Ethereum  = "ethereum"
	BSC       = "bsc"
	Polygon   = "polygon"
	Arbitrum  = "arbitrum"
	Base      = "base"
	Solana    = "solana"
	Avalanche = "avalanche"
	Optimism  = "optimism"
)

var aliases = map[string]string{
	"eth":          Ethereum,
	"mainnet":      Ethereum,
	"bnb":          BSC,
	"binance":      BSC,
	"matic":        Polygon,
	"polygon_pos":  Polygon,
	"arb":          Arbitrum,
	"arbitrum-one": Arbitrum,
	"sol":          Solana,
	"avax":         Avalanche,
	"op":           Optimism,
}

var networks = map[string]map[string]string{
	market.ProviderGeckoTerminal: {
		Ethereum:  "eth",
		BSC:       "bsc",
		Polygon:   "polygon_pos",
		Arbitrum:  "arbitrum",
		Base:      "base",
		Solana:    "solana",
		Avalanche: "avax",
		Optimism:  "optimism",
	},
	market.ProviderBirdeye: {
		Ethereum:  "ethereum",
		BSC:       "bsc",
		Polygon:   "polygon",
		Arbitrum:  "arbitrum",
		Base:      "base",
		Solana:    "solana",
		Avalanche: "avalanche",
		Optimism:  "optimism",
	},
	market.ProviderDexScreener: {
		Ethereum:  "ethereum",
		BSC:       "bsc",
		Polygon:   "polygon",
		Arbitrum:  "arbitrum",
		Base:      "base",
		Solana:    "solana",
		Avalanche: "avalanche",
		Optimism:  "optimism",
	},
	market.ProviderGoPlus: {
		Ethereum:  "1",
		BSC:       "56",
		Polygon:   "137",
		Arbitrum:  "42161",
		Base:      "8453",
		Avalanche: "43114",
		Optimism:  "10",
		Solana:    "solana",
	},
}

var supported = map[string]struct{}{
	Ethereum: {}, BSC: {}, Polygon: {}, Arbitrum: {}, Base: {}, Solana: {}, Avalanche: {}, Optimism: {},
}

// Normalize lowercases slug and resolves aliases. The result is not necessarily supported.
func Normalize(slug string) string {
	s := strings.ToLower(strings.TrimSpace(slug))
	if canonical, ok := aliases[s]; ok {
		return canonical
	}
	return s
}

// IsSupported reports whether slug (or one of its aliases) is in the fixed supported set.
func IsSupported(slug string) bool {
	_, ok := supported[Normalize(slug)]
	return ok
}

// ToProviderNetwork returns provider's network identifier for slug.
func ToProviderNetwork(slug, provider string) (string, bool) {
	table, ok := networks[provider]
	if !ok {
		return "", false
	}
	id, ok := table[Normalize(slug)]
	return id, ok
}

// Supported returns the supported chain slugs in sorted order.
func Supported() []string {
	out := make([]string, 0, len(supported))
	for s := range supported {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
