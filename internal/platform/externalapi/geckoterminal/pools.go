package geckoterminal

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	ohlcusecase "token_backend/internal/feature/ohlc/usecase"
	pairsusecase "token_backend/internal/feature/pairs/usecase"
	tokenusecase "token_backend/internal/feature/token/usecase"
	tradesusecase "token_backend/internal/feature/trades/usecase"
	"token_backend/internal/platform/externalapi/coerce"
	infrahttp "token_backend/internal/platform/http"
	"token_backend/internal/shared/market"
)

// Clientが各ユースケースの取得元インターフェースを実装していることをコンパイル時に検証します。
var (
	_ ohlcusecase.CandleSource  = (*Client)(nil)
	_ ohlcusecase.TradeSource   = (*Client)(nil)
	_ tradesusecase.TradeSource = (*Client)(nil)
	_ pairsusecase.PoolSource   = (*Client)(nil)
	_ tokenusecase.TokenSource  = (*Client)(nil)
)

// FetchPools はトークンが上場しているプール一覧を取得します。
func (c *Client) FetchPools(ctx context.Context, network, token string) ([]market.PoolSummary, error) {
	q := url.Values{}
	q.Set("include", "base_token,quote_token,dex")
	q.Set("page", "1")
	u := fmt.Sprintf("%s/networks/%s/tokens/%s/pools?%s", c.cfg.BaseURL, url.PathEscape(network), url.PathEscape(token), q.Encode())

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	symbols := includedSymbols(body.Get("included"))
	items := body.Get("data").Array()
	pools := make([]market.PoolSummary, 0, len(items))
	for _, it := range items {
		pools = append(pools, parsePool(it, network, symbols))
	}
	if len(pools) == 0 {
		return nil, fmt.Errorf("geckoterminal pools: %w", infrahttp.ErrEmptyPayload)
	}
	return pools, nil
}

// FetchToken はトークンのメタデータと指標を取得します。
func (c *Client) FetchToken(ctx context.Context, network, address string) (market.TokenSnapshot, error) {
	u := fmt.Sprintf("%s/networks/%s/tokens/%s", c.cfg.BaseURL, url.PathEscape(network), url.PathEscape(address))

	body, err := c.get(ctx, u)
	if err != nil {
		return market.TokenSnapshot{}, err
	}

	a := body.Get("data.attributes")
	if !a.Exists() {
		return market.TokenSnapshot{}, fmt.Errorf("geckoterminal token: %w", infrahttp.ErrEmptyPayload)
	}

	snap := market.TokenSnapshot{
		Info: market.TokenInfo{
			Address:     coerce.FirstString(a, "address"),
			Name:        coerce.FirstString(a, "name"),
			Symbol:      coerce.FirstString(a, "symbol"),
			TotalSupply: coerce.FirstFloatPtr(a, "normalized_total_supply", "total_supply"),
			ImageURL:    imageURL(a.Get("image_url").String()),
		},
		KPIs: market.TokenKPIs{
			PriceUSD:     coerce.FirstFloatPtr(a, "price_usd"),
			MarketCapUSD: coerce.FirstFloatPtr(a, "market_cap_usd"),
			FDVUSD:       coerce.FirstFloatPtr(a, "fdv_usd"),
			Volume24hUSD: coerce.FirstFloatPtr(a, "volume_usd.h24"),
			LiquidityUSD: coerce.FirstFloatPtr(a, "total_reserve_in_usd"),
		},
	}
	if d, ok := coerce.Int(a.Get("decimals")); ok && d >= 0 && d <= 36 {
		dec := int(d)
		snap.Info.Decimals = &dec
	}
	if snap.Empty() {
		return market.TokenSnapshot{}, fmt.Errorf("geckoterminal token: %w", infrahttp.ErrEmptyPayload)
	}
	return snap, nil
}

func parsePool(it gjson.Result, network string, symbols map[string]string) market.PoolSummary {
	a := it.Get("attributes")
	rel := it.Get("relationships")

	baseID := rel.Get("base_token.data.id").String()
	quoteID := rel.Get("quote_token.data.id").String()
	dex, version := splitDex(rel.Get("dex.data.id").String())

	p := market.PoolSummary{
		Address:        coerce.FirstString(a, "address"),
		Chain:          network,
		Name:           coerce.FirstString(a, "name"),
		Dex:            dex,
		DexVersion:     version,
		BaseAddress:    idAddress(baseID),
		QuoteAddress:   idAddress(quoteID),
		BaseSymbol:     symbols[baseID],
		QuoteSymbol:    symbols[quoteID],
		PriceUSD:       coerce.FirstFloatPtr(a, "base_token_price_usd"),
		LiquidityUSD:   coerce.FirstFloatPtr(a, "reserve_in_usd"),
		Volume24hUSD:   coerce.FirstFloatPtr(a, "volume_usd.h24"),
		PriceChange24h: coerce.FirstFloatPtr(a, "price_change_percentage.h24"),
		Provider:       market.ProviderGeckoTerminal,
	}
	if ts, ok := coerce.UnixSeconds(a.Get("pool_created_at")); ok {
		p.CreatedAt = ts
	}
	if p.Address == "" && strings.Contains(it.Get("id").String(), "_") {
		p.Address = idAddress(it.Get("id").String())
	}
	if p.BaseSymbol == "" || p.QuoteSymbol == "" {
		base, quote := splitPoolName(p.Name)
		if p.BaseSymbol == "" {
			p.BaseSymbol = base
		}
		if p.QuoteSymbol == "" {
			p.QuoteSymbol = quote
		}
	}
	return p
}

// includedSymbols は included 配列からトークンID→シンボルの対応表を作ります。
func includedSymbols(included gjson.Result) map[string]string {
	out := map[string]string{}
	included.ForEach(func(_, v gjson.Result) bool {
		if v.Get("type").String() == "token" {
			if sym := v.Get("attributes.symbol").String(); sym != "" {
				out[v.Get("id").String()] = sym
			}
		}
		return true
	})
	return out
}

// splitDex は "uniswap_v3" を ("uniswap", "v3") に分割します。
func splitDex(id string) (string, string) {
	i := strings.LastIndexByte(id, '_')
	if i < 0 {
		return id, ""
	}
	suffix := id[i+1:]
	if len(suffix) >= 2 && suffix[0] == 'v' && suffix[1] >= '0' && suffix[1] <= '9' {
		return id[:i], suffix
	}
	return id, ""
}

// splitPoolName は "PEPE / WETH 0.3%" からシンボルを取り出します。
func splitPoolName(name string) (string, string) {
	base, rest, ok := strings.Cut(name, "/")
	if !ok {
		return "", ""
	}
	quote := strings.Fields(rest)
	if len(quote) == 0 {
		return strings.TrimSpace(base), ""
	}
	return strings.TrimSpace(base), quote[0]
}

func imageURL(s string) string {
	if s == "" || s == "missing.png" {
		return ""
	}
	return s
}
