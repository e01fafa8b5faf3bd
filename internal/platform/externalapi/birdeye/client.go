package birdeye

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	ohlcusecase "token_backend/internal/feature/ohlc/usecase"
	tradesusecase "token_backend/internal/feature/trades/usecase"
	"token_backend/internal/platform/externalapi/coerce"
	infrahttp "token_backend/internal/platform/http"
	"token_backend/internal/shared/market"
	"token_backend/internal/shared/ratelimiter"
)

var (
	// ErrNoAPIKey はAPIキー未設定のため呼び出しを行わなかったことを示します。
	ErrNoAPIKey = errors.New("birdeye: api key not configured")
	// ErrUnsupportedTimeframe はBirdeyeが提供しない時間足を要求したことを示します。
	ErrUnsupportedTimeframe = errors.New("birdeye: unsupported timeframe")
)

// maxTradesPerCall はBirdeyeの約定APIが1回で返す最大件数です。
const maxTradesPerCall = 50

var ohlcvTypes = map[market.Timeframe]string{
	market.TF1m:  "1m",
	market.TF5m:  "5m",
	market.TF15m: "15m",
	market.TF30m: "30m",
	market.TF1h:  "1H",
	market.TF4h:  "4H",
	market.TF12h: "12H",
	market.TF1d:  "1D",
}

// Client はBirdeye APIからローソク足と約定を取得します。
type Client struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
	now     func() time.Time
}

// ClientがOHLC・約定ユースケースの取得元インターフェースを実装していることをコンパイル時に検証します。
var (
	_ ohlcusecase.CandleSource  = (*Client)(nil)
	_ ohlcusecase.TradeSource   = (*Client)(nil)
	_ tradesusecase.TradeSource = (*Client)(nil)
)

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
func NewClient(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *Client {
	if cfg.CandleLimit <= 0 {
		cfg.CandleLimit = 300
	}
	return &Client{cfg: cfg, client: client, limiter: limiter, now: time.Now}
}

// Name はプロバイダ識別子を返します。
func (c *Client) Name() string { return market.ProviderBirdeye }

// FetchCandles は直近 CandleLimit 本分の期間のOHLCVを取得し、昇順で返します。
func (c *Client) FetchCandles(ctx context.Context, network, pool string, tf market.Timeframe) ([]market.Candle, error) {
	typ, ok := ohlcvTypes[tf]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTimeframe, tf)
	}

	width := tf.Seconds()
	to := c.now().Unix()
	from := to - width*int64(c.cfg.CandleLimit)

	q := url.Values{}
	q.Set("address", pool)
	q.Set("type", typ)
	q.Set("time_from", strconv.FormatInt(from, 10))
	q.Set("time_to", strconv.FormatInt(to, 10))

	body, err := c.get(ctx, network, "/defi/ohlcv/pair?"+q.Encode())
	if err != nil {
		return nil, err
	}

	byTS := map[int64]market.Candle{}
	for _, it := range body.Get("data.items").Array() {
		ts, ok := coerce.UnixSeconds(coerce.First(it, "unixTime", "unix_time", "time"))
		if !ok {
			continue
		}
		o, ok1 := coerce.Float(it.Get("o"))
		h, ok2 := coerce.Float(it.Get("h"))
		l, ok3 := coerce.Float(it.Get("l"))
		cl, ok4 := coerce.Float(it.Get("c"))
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue
		}
		cd := market.Candle{Timestamp: ts - ts%width, Open: o, High: h, Low: l, Close: cl, Volume: coerce.FloatOr(it.Get("v"), 0)}
		if !cd.Valid() {
			continue
		}
		byTS[cd.Timestamp] = cd
	}
	if len(byTS) == 0 {
		return nil, fmt.Errorf("birdeye ohlcv: %w", infrahttp.ErrEmptyPayload)
	}

	out := make([]market.Candle, 0, len(byTS))
	for _, cd := range byTS {
		out = append(out, cd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

// FetchTrades はペアの直近のスワップを新しい順に返します。
func (c *Client) FetchTrades(ctx context.Context, network, pool string, limit int) ([]market.Trade, error) {
	if limit <= 0 || limit > maxTradesPerCall {
		limit = maxTradesPerCall
	}
	q := url.Values{}
	q.Set("address", pool)
	q.Set("offset", "0")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("tx_type", "swap")
	q.Set("sort_type", "desc")

	body, err := c.get(ctx, network, "/defi/txs/pair?"+q.Encode())
	if err != nil {
		return nil, err
	}

	items := body.Get("data.items").Array()
	trades := make([]market.Trade, 0, len(items))
	for _, it := range items {
		if tr, ok := parseTrade(it); ok {
			trades = append(trades, tr)
		}
	}
	if len(trades) == 0 {
		return nil, fmt.Errorf("birdeye trades: %w", infrahttp.ErrEmptyPayload)
	}
	sort.SliceStable(trades, func(i, j int) bool { return trades[i].Timestamp > trades[j].Timestamp })
	return trades, nil
}

func parseTrade(it gjson.Result) (market.Trade, bool) {
	ts, ok := coerce.UnixSeconds(coerce.First(it, "blockUnixTime", "block_unix_time", "unixTime"))
	if !ok {
		return market.Trade{}, false
	}
	side, ok := market.ParseSide(coerce.FirstString(it, "side", "txType"))
	if !ok {
		return market.Trade{}, false
	}
	price, ok := coerce.FirstFloat(it, "price", "pricePair", "base.price")
	if !ok || price < 0 {
		return market.Trade{}, false
	}
	return market.Trade{
		Timestamp:       ts,
		Side:            side,
		Price:           price,
		AmountBase:      coerce.FirstFloatPtr(it, "base.uiAmount", "from.uiAmount"),
		AmountQuote:     coerce.FirstFloatPtr(it, "volumeUSD", "volumeUsd", "volume_usd"),
		TransactionHash: coerce.FirstString(it, "txHash", "tx_hash"),
		WalletAddress:   coerce.FirstString(it, "owner", "wallet"),
	}, true
}

func (c *Client) get(ctx context.Context, network, path string) (gjson.Result, error) {
	if c.cfg.APIKey == "" {
		return gjson.Result{}, ErrNoAPIKey
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return gjson.Result{}, err
		}
	}

	h := http.Header{}
	h.Set("X-API-KEY", c.cfg.APIKey)
	h.Set("x-chain", network)
	body, err := infrahttp.GetJSON(ctx, c.client, market.ProviderBirdeye, c.cfg.BaseURL+path, h)
	if err != nil {
		return gjson.Result{}, err
	}
	if s := body.Get("success"); s.Exists() && !s.Bool() {
		return gjson.Result{}, fmt.Errorf("birdeye: %s: %w", body.Get("message").String(), infrahttp.ErrEmptyPayload)
	}
	return body, nil
}
