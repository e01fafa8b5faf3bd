package dexscreener

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	pairsusecase "token_backend/internal/feature/pairs/usecase"
	tokenusecase "token_backend/internal/feature/token/usecase"
	"token_backend/internal/platform/externalapi/coerce"
	infrahttp "token_backend/internal/platform/http"
	"token_backend/internal/shared/market"
	"token_backend/internal/shared/ratelimiter"
)

// Client はDexScreener APIからトークンのペア一覧と指標を取得します。
type Client struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
}

// Clientがペア・トークンユースケースの取得元インターフェースを実装していることをコンパイル時に検証します。
var (
	_ pairsusecase.PoolSource  = (*Client)(nil)
	_ tokenusecase.TokenSource = (*Client)(nil)
)

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
func NewClient(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *Client {
	return &Client{cfg: cfg, client: client, limiter: limiter}
}

// Name はプロバイダ識別子を返します。
func (c *Client) Name() string { return market.ProviderDexScreener }

// FetchPools はトークンのペアを流動性の大きい順に返します。
func (c *Client) FetchPools(ctx context.Context, network, token string) ([]market.PoolSummary, error) {
	pairs, err := c.pairs(ctx, network, token)
	if err != nil {
		return nil, err
	}
	pools := make([]market.PoolSummary, 0, len(pairs))
	for _, p := range pairs {
		pools = append(pools, parsePool(p, network))
	}
	return pools, nil
}

// FetchToken はペア情報からトークンのメタデータと指標を組み立てます。
//
// 価格・時価総額・変化率は最も流動性の大きいペアから、出来高と流動性は全ペアの合計から求めます。
func (c *Client) FetchToken(ctx context.Context, network, address string) (market.TokenSnapshot, error) {
	pairs, err := c.pairs(ctx, network, address)
	if err != nil {
		return market.TokenSnapshot{}, err
	}

	snap := market.TokenSnapshot{Info: market.TokenInfo{Address: address}}
	volume, liquidity := decimal.Zero, decimal.Zero
	var haveVolume, haveLiquidity bool

	for _, p := range pairs {
		side := tokenSide(p, address)
		if side == "" {
			continue
		}
		if snap.Info.Symbol == "" {
			snap.Info.Name = coerce.FirstString(p, side+".name")
			snap.Info.Symbol = coerce.FirstString(p, side+".symbol")
			snap.Info.ImageURL = coerce.FirstString(p, "info.imageUrl")
		}
		if v, ok := coerce.Float(p.Get("volume.h24")); ok {
			volume = volume.Add(decimal.NewFromFloat(v))
			haveVolume = true
		}
		if l, ok := coerce.Float(p.Get("liquidity.usd")); ok {
			liquidity = liquidity.Add(decimal.NewFromFloat(l))
			haveLiquidity = true
		}
		// 価格系は最上位のベース側ペアのみ採用
		if side == "baseToken" && snap.KPIs.PriceUSD == nil {
			snap.KPIs.PriceUSD = coerce.FloatPtr(p.Get("priceUsd"))
			snap.KPIs.MarketCapUSD = coerce.FloatPtr(p.Get("marketCap"))
			snap.KPIs.FDVUSD = coerce.FloatPtr(p.Get("fdv"))
			snap.KPIs.PriceChange24h = coerce.FloatPtr(p.Get("priceChange.h24"))
		}
		snap.Pools = append(snap.Pools, parsePool(p, network))
	}
	if haveVolume {
		f := volume.InexactFloat64()
		snap.KPIs.Volume24hUSD = &f
	}
	if haveLiquidity {
		f := liquidity.InexactFloat64()
		snap.KPIs.LiquidityUSD = &f
	}
	if snap.Empty() {
		return market.TokenSnapshot{}, fmt.Errorf("dexscreener token: %w", infrahttp.ErrEmptyPayload)
	}
	return snap, nil
}

// pairs はネットワークに一致するペアを流動性の降順で返します。
// レスポンスはトップレベル配列と {"pairs":[...]} の両方を受け付けます。
func (c *Client) pairs(ctx context.Context, network, token string) ([]gjson.Result, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	u := fmt.Sprintf("%s/token-pairs/v1/%s/%s", c.cfg.BaseURL, url.PathEscape(network), url.PathEscape(token))
	body, err := infrahttp.GetJSON(ctx, c.client, market.ProviderDexScreener, u, nil)
	if err != nil {
		return nil, err
	}

	list := body
	if !body.IsArray() {
		list = body.Get("pairs")
	}
	var out []gjson.Result
	for _, p := range list.Array() {
		if chain := p.Get("chainId").String(); chain != "" && !strings.EqualFold(chain, network) {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("dexscreener pairs: %w", infrahttp.ErrEmptyPayload)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return coerce.FloatOr(out[i].Get("liquidity.usd"), 0) > coerce.FloatOr(out[j].Get("liquidity.usd"), 0)
	})
	return out, nil
}

func parsePool(p gjson.Result, network string) market.PoolSummary {
	base := coerce.FirstString(p, "baseToken.symbol")
	quote := coerce.FirstString(p, "quoteToken.symbol")
	pool := market.PoolSummary{
		Address:        coerce.FirstString(p, "pairAddress"),
		Chain:          network,
		Dex:            coerce.FirstString(p, "dexId"),
		DexVersion:     coerce.FirstString(p, "labels.0"),
		BaseSymbol:     base,
		QuoteSymbol:    quote,
		BaseAddress:    coerce.FirstString(p, "baseToken.address"),
		QuoteAddress:   coerce.FirstString(p, "quoteToken.address"),
		PriceUSD:       coerce.FloatPtr(p.Get("priceUsd")),
		LiquidityUSD:   coerce.FloatPtr(p.Get("liquidity.usd")),
		Volume24hUSD:   coerce.FloatPtr(p.Get("volume.h24")),
		PriceChange24h: coerce.FloatPtr(p.Get("priceChange.h24")),
		Provider:       market.ProviderDexScreener,
	}
	if base != "" && quote != "" {
		pool.Name = base + " / " + quote
	}
	if ts, ok := coerce.UnixSeconds(p.Get("pairCreatedAt")); ok {
		pool.CreatedAt = ts
	}
	return pool
}

// tokenSide は address がペアのベース側かクオート側かを返します。
func tokenSide(p gjson.Result, address string) string {
	switch {
	case strings.EqualFold(p.Get("baseToken.address").String(), address):
		return "baseToken"
	case strings.EqualFold(p.Get("quoteToken.address").String(), address):
		return "quoteToken"
	}
	return ""
}
