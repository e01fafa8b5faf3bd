package market

// TokenInfo is token metadata merged from one or more providers.
type TokenInfo struct {
	Address     string   `json:"address"`
	Chain       string   `json:"chain"`
	Name        string   `json:"name,omitempty"`
	Symbol      string   `json:"symbol,omitempty"`
	Decimals    *int     `json:"decimals,omitempty"`
	TotalSupply *float64 `json:"totalSupply,omitempty"`
	Holders     *int64   `json:"holders,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
}

// Meta returns the lightweight descriptor of the token.
func (t TokenInfo) Meta() TokenMeta {
	return TokenMeta{Address: t.Address, Chain: t.Chain, Symbol: t.Symbol, Name: t.Name, Decimals: t.Decimals}
}

// TokenKPIs are the market figures shown next to a token.
type TokenKPIs struct {
	PriceUSD       *float64 `json:"priceUsd,omitempty"`
	MarketCapUSD   *float64 `json:"marketCapUsd,omitempty"`
	FDVUSD         *float64 `json:"fdvUsd,omitempty"`
	PriceChange24h *float64 `json:"priceChange24h,omitempty"`
	Volume24hUSD   *float64 `json:"volume24hUsd,omitempty"`
	LiquidityUSD   *float64 `json:"liquidityUsd,omitempty"`
}

// TokenSnapshot is what a single provider knows about a token.
type TokenSnapshot struct {
	Info  TokenInfo
	KPIs  TokenKPIs
	Pools []PoolSummary
}

// Empty reports whether the snapshot carries nothing useful.
func (s TokenSnapshot) Empty() bool {
	i, k := s.Info, s.KPIs
	return i.Name == "" && i.Symbol == "" && i.Decimals == nil && i.TotalSupply == nil && i.Holders == nil &&
		k.PriceUSD == nil && k.MarketCapUSD == nil && k.FDVUSD == nil && k.PriceChange24h == nil &&
		k.Volume24hUSD == nil && k.LiquidityUSD == nil && len(s.Pools) == 0
}
