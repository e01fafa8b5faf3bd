package goplus

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	pairsusecase "token_backend/internal/feature/pairs/usecase"
	tokenusecase "token_backend/internal/feature/token/usecase"
	"token_backend/internal/platform/externalapi/coerce"
	infrahttp "token_backend/internal/platform/http"
	"token_backend/internal/shared/market"
	"token_backend/internal/shared/ratelimiter"
)

// solanaNetwork はGoPlus上でSolanaを表すネットワークIDです。
const solanaNetwork = "solana"

// Client はGoPlusのトークンセキュリティAPIからトークンのメタデータを取得します。
type Client struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
}

var (
	_ pairsusecase.TokenSource = (*Client)(nil)
	_ tokenusecase.TokenSource = (*Client)(nil)
)

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
func NewClient(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *Client {
	return &Client{cfg: cfg, client: client, limiter: limiter}
}

// Name はプロバイダ識別子を返します。
func (c *Client) Name() string { return market.ProviderGoPlus }

// FetchToken は名前・シンボル・総供給量・保有者数を取得します。価格系の指標は返しません。
func (c *Client) FetchToken(ctx context.Context, network, address string) (market.TokenSnapshot, error) {
	q := url.Values{}
	q.Set("contract_addresses", address)

	var u string
	if network == solanaNetwork {
		u = fmt.Sprintf("%s/api/v1/solana/token_security?%s", c.cfg.BaseURL, q.Encode())
	} else {
		u = fmt.Sprintf("%s/api/v1/token_security/%s?%s", c.cfg.BaseURL, url.PathEscape(network), q.Encode())
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return market.TokenSnapshot{}, err
		}
	}
	var h http.Header
	if c.cfg.AccessToken != "" {
		h = http.Header{}
		h.Set("Authorization", c.cfg.AccessToken)
	}
	body, err := infrahttp.GetJSON(ctx, c.client, market.ProviderGoPlus, u, h)
	if err != nil {
		return market.TokenSnapshot{}, err
	}
	if code := body.Get("code"); code.Exists() && code.Int() != 1 {
		return market.TokenSnapshot{}, fmt.Errorf("goplus code %d %s: %w", code.Int(), body.Get("message").String(), infrahttp.ErrEmptyPayload)
	}

	r := lookup(body.Get("result"), address)
	if !r.Exists() {
		return market.TokenSnapshot{}, fmt.Errorf("goplus: %w", infrahttp.ErrEmptyPayload)
	}

	snap := market.TokenSnapshot{
		Info: market.TokenInfo{
			Address:     address,
			Name:        coerce.FirstString(r, "token_name", "metadata.name"),
			Symbol:      coerce.FirstString(r, "token_symbol", "metadata.symbol"),
			TotalSupply: coerce.FirstFloatPtr(r, "total_supply"),
		},
	}
	if d, ok := coerce.Int(coerce.First(r, "decimals", "token_decimals")); ok && d >= 0 && d <= 36 {
		dec := int(d)
		snap.Info.Decimals = &dec
	}
	if n, ok := coerce.Int(r.Get("holder_count")); ok && n >= 0 {
		snap.Info.Holders = &n
	}
	if snap.Empty() {
		return market.TokenSnapshot{}, fmt.Errorf("goplus: %w", infrahttp.ErrEmptyPayload)
	}
	return snap, nil
}

// lookup は result から address のエントリを探します。EVMのキーは小文字です。
func lookup(result gjson.Result, address string) gjson.Result {
	var found gjson.Result
	result.ForEach(func(k, v gjson.Result) bool {
		if strings.EqualFold(k.String(), address) {
			found = v
			return false
		}
		return true
	})
	return found
}
