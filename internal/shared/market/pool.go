package market

// TokenMeta is a lightweight token descriptor.
type TokenMeta struct {
	Address  string `json:"address"`
	Chain    string `json:"chain"`
	Symbol   string `json:"symbol,omitempty"`
	Name     string `json:"name,omitempty"`
	Decimals *int   `json:"decimals,omitempty"`
}

// PoolSummary describes one trading venue for a token so that a UI can choose among pools.
type PoolSummary struct {
	Address        string   `json:"address"`
	Chain          string   `json:"chain"`
	Name           string   `json:"name,omitempty"`
	Dex            string   `json:"dex,omitempty"`
	DexVersion     string   `json:"dexVersion,omitempty"`
	BaseSymbol     string   `json:"baseSymbol,omitempty"`
	QuoteSymbol    string   `json:"quoteSymbol,omitempty"`
	BaseAddress    string   `json:"baseAddress,omitempty"`
	QuoteAddress   string   `json:"quoteAddress,omitempty"`
	PriceUSD       *float64 `json:"priceUsd,omitempty"`
	LiquidityUSD   *float64 `json:"liquidityUsd,omitempty"`
	Volume24hUSD   *float64 `json:"volume24hUsd,omitempty"`
	PriceChange24h *float64 `json:"priceChange24h,omitempty"`
	CreatedAt      int64    `json:"createdAt,omitempty"`
	Provider       string   `json:"provider,omitempty"`
}

// SameVenue reports whether two summaries name the same DEX and base/quote pair.
// It is used to match pools across providers when one of them lacks the pool address.
func (p PoolSummary) SameVenue(o PoolSummary) bool {
	if p.Dex == "" || o.Dex == "" || !equalFold(p.Dex, o.Dex) {
		return false
	}
	if p.BaseAddress != "" && o.BaseAddress != "" && p.QuoteAddress != "" && o.QuoteAddress != "" {
		return equalFold(p.BaseAddress, o.BaseAddress) && equalFold(p.QuoteAddress, o.QuoteAddress)
	}
	return p.BaseSymbol != "" && equalFold(p.BaseSymbol, o.BaseSymbol) && equalFold(p.QuoteSymbol, o.QuoteSymbol)
}
