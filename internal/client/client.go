// Package client は集約APIのGoクライアントを提供します。
//
// 同一ポーリング周期内の重複取得を避けるため、レスポンスをリクエストキーごとに短いTTLでメモ化します。
// より粗い時間足のOHLCは、同じプールの細かい時間足がキャッシュ済みで幅が割り切れる場合、
// 追加のリクエストなしにロールアップして返します。
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	ohlcdto "token_backend/internal/feature/ohlc/transport/http/dto"
	pairsdto "token_backend/internal/feature/pairs/transport/http/dto"
	tokendto "token_backend/internal/feature/token/transport/http/dto"
	tradesdto "token_backend/internal/feature/trades/transport/http/dto"
	infrahttp "token_backend/internal/platform/http"
	platformhandler "token_backend/internal/platform/http/handler"
	"token_backend/internal/shared/candles"
	"token_backend/internal/shared/market"
)

// DefaultTTL はレスポンスキャッシュの既定TTLです。
const DefaultTTL = 15 * time.Second

// ErrUnsupportedNetwork はサーバーがチェーン未対応を返したことを示します。
var ErrUnsupportedNetwork = errors.New("unsupported network")

// APIError は2xx以外のレスポンスです。
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api %d %s", e.Status, e.Code)
}

// Options はClientの設定です。
type Options struct {
	HTTPClient  *http.Client
	TTL         time.Duration
	Clock       Clock
	Preferences *PreferenceStore
}

// Client は /ohlc /trades /pairs /token を呼び出すクライアントです。
type Client struct {
	baseURL string
	http    *http.Client
	prefs   *PreferenceStore

	ohlc   *TTLCache[ohlcdto.OHLCResponse]
	trades *TTLCache[tradesdto.TradesResponse]
	pairs  *TTLCache[pairsdto.PairsResponse]
	token  *TTLCache[tokendto.TokenResponse]
}

// New は baseURL（例: "http://localhost:8080"）に対するClientを生成します。
func New(baseURL string, opts Options) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = infrahttp.NewHTTPClient(30 * time.Second)
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Preferences == nil {
		opts.Preferences = NewPreferenceStore()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    opts.HTTPClient,
		prefs:   opts.Preferences,
		ohlc:    NewTTLCache[ohlcdto.OHLCResponse](opts.TTL, opts.Clock),
		trades:  NewTTLCache[tradesdto.TradesResponse](opts.TTL, opts.Clock),
		pairs:   NewTTLCache[pairsdto.PairsResponse](opts.TTL, opts.Clock),
		token:   NewTTLCache[tokendto.TokenResponse](opts.TTL, opts.Clock),
	}
}

// Preferences はクライアントが使う時間足の記録を返します。
func (c *Client) Preferences() *PreferenceStore { return c.prefs }

// OHLCParams は /ohlc のパラメータです。TF が空なら記録済みの時間足、無ければ 1h を使います。
type OHLCParams struct {
	PairID      string
	Chain       string
	PoolAddress string
	TF          market.Timeframe
	Provider    string
}

// OHLC はローソク足を取得します。
func (c *Client) OHLC(ctx context.Context, p OHLCParams) (*ohlcdto.OHLCResponse, error) {
	pool := p.PoolAddress
	if pool == "" {
		pool = p.PairID
	}
	if p.TF == "" {
		if tf, ok := c.prefs.Timeframe(pool, p.Provider); ok {
			p.TF = tf
		} else {
			p.TF = market.TF1h
		}
	}

	key := ohlcKey(p.Chain, pool, p.Provider, p.TF)
	if res, ok := c.ohlc.Get(key); ok {
		return &res, nil
	}
	if res, ok := c.rollupFromCache(p, pool); ok {
		c.ohlc.Set(key, *res)
		return res, nil
	}

	q := url.Values{}
	q.Set("pairId", p.PairID)
	q.Set("chain", p.Chain)
	q.Set("tf", p.TF.String())
	setIf(q, "poolAddress", p.PoolAddress)
	setIf(q, "provider", p.Provider)

	var res ohlcdto.OHLCResponse
	if err := c.get(ctx, "/ohlc", q, &res); err != nil {
		return nil, err
	}
	if res.Error == platformhandler.CodeUnsupportedNetwork {
		return &res, ErrUnsupportedNetwork
	}
	c.ohlc.Set(key, res)
	c.prefs.Remember(pool, p.Provider, p.TF)
	return &res, nil
}

// rollupFromCache は同じプールのより細かい時間足がキャッシュにあれば、それを p.TF にロールアップします。
func (c *Client) rollupFromCache(p OHLCParams, pool string) (*ohlcdto.OHLCResponse, bool) {
	want := p.TF.Seconds()
	if want <= 0 {
		return nil, false
	}
	// 粗い順に探すと元の本数が少なく済む
	for i := len(market.Timeframes) - 1; i >= 0; i-- {
		tf := market.Timeframes[i]
		if tf.Seconds() >= want {
			continue
		}
		cached, ok := c.ohlc.Get(ohlcKey(p.Chain, pool, p.Provider, tf))
		if !ok || len(cached.Candles) == 0 {
			continue
		}
		from := market.Timeframe(cached.EffectiveTF)
		if from.Seconds() <= 0 || want%from.Seconds() != 0 || from.Seconds() >= want {
			continue
		}
		res := cached
		res.Candles = candles.Rollup(cached.Candles, from, p.TF)
		res.TF = p.TF.String()
		res.EffectiveTF = p.TF.String()
		res.Attempts = []market.Attempt{}
		return &res, true
	}
	return nil, false
}

// TradesParams は /trades のパラメータです。
type TradesParams struct {
	PairID      string
	Chain       string
	PoolAddress string
	Limit       int
	Window      string
	Provider    string
}

// Trades は直近の約定を取得します。
func (c *Client) Trades(ctx context.Context, p TradesParams) (*tradesdto.TradesResponse, error) {
	q := url.Values{}
	setIf(q, "pairId", p.PairID)
	q.Set("chain", p.Chain)
	setIf(q, "poolAddress", p.PoolAddress)
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	setIf(q, "window", p.Window)
	setIf(q, "provider", p.Provider)

	key := "trades?" + q.Encode()
	if res, ok := c.trades.Get(key); ok {
		return &res, nil
	}
	var res tradesdto.TradesResponse
	if err := c.get(ctx, "/trades", q, &res); err != nil {
		return nil, err
	}
	if res.Error == platformhandler.CodeUnsupportedNetwork {
		return &res, ErrUnsupportedNetwork
	}
	c.trades.Set(key, res)
	return &res, nil
}

// Pairs はトークンのプール一覧を取得します。
func (c *Client) Pairs(ctx context.Context, chain, address, provider string) (*pairsdto.PairsResponse, error) {
	q := url.Values{}
	q.Set("chain", chain)
	q.Set("address", address)
	setIf(q, "provider", provider)

	key := "pairs?" + q.Encode()
	if res, ok := c.pairs.Get(key); ok {
		return &res, nil
	}
	var res pairsdto.PairsResponse
	if err := c.get(ctx, "/pairs", q, &res); err != nil {
		return nil, err
	}
	if res.Error == platformhandler.CodeUnsupportedNetwork {
		return &res, ErrUnsupportedNetwork
	}
	c.pairs.Set(key, res)
	return &res, nil
}

// Token はトークン詳細を取得します。
func (c *Client) Token(ctx context.Context, chain, address string) (*tokendto.TokenResponse, error) {
	q := url.Values{}
	q.Set("chain", chain)
	q.Set("address", address)

	key := "token?" + q.Encode()
	if res, ok := c.token.Get(key); ok {
		return &res, nil
	}
	var res tokendto.TokenResponse
	if err := c.get(ctx, "/token", q, &res); err != nil {
		return nil, err
	}
	if res.Error == platformhandler.CodeUnsupportedNetwork {
		return &res, ErrUnsupportedNetwork
	}
	c.token.Set(key, res)
	return &res, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var er platformhandler.ErrorResponse
		if json.Unmarshal(body, &er) == nil {
			apiErr.Code, apiErr.Message, apiErr.RequestID = er.Error, er.Message, er.RequestID
		}
		return apiErr
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func ohlcKey(chain, pool, provider string, tf market.Timeframe) string {
	return strings.Join([]string{"ohlc", strings.ToLower(chain), pool, provider, tf.String()}, "|")
}

func setIf(q url.Values, k, v string) {
	if v != "" {
		q.Set(k, v)
	}
}
