package geckoterminal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"token_backend/internal/platform/externalapi/coerce"
	infrahttp "token_backend/internal/platform/http"
	"token_backend/internal/shared/market"
	"token_backend/internal/shared/ratelimiter"
)

// ErrUnsupportedTimeframe はGeckoTerminalが提供しない時間足を要求したことを示します。
var ErrUnsupportedTimeframe = errors.New("geckoterminal: unsupported timeframe")

// ohlcvPeriods は時間足をGeckoTerminalの (timeframe, aggregate) の組に変換します。
var ohlcvPeriods = map[market.Timeframe]struct {
	period    string
	aggregate int
}{
	market.TF1m:  {"minute", 1},
	market.TF5m:  {"minute", 5},
	market.TF15m: {"minute", 15},
	market.TF1h:  {"hour", 1},
	market.TF4h:  {"hour", 4},
	market.TF12h: {"hour", 12},
	market.TF1d:  {"day", 1},
}

// Client はGeckoTerminal APIからローソク足・約定・プール・トークン情報を取得します。
type Client struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
}

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
// limiter が nil の場合はレート制限を行いません。
func NewClient(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *Client {
	if cfg.CandleLimit <= 0 {
		cfg.CandleLimit = 300
	}
	return &Client{cfg: cfg, client: client, limiter: limiter}
}

// Name はプロバイダ識別子を返します。
func (c *Client) Name() string { return market.ProviderGeckoTerminal }

// FetchCandles はプールのOHLCVを取得し、タイムスタンプ昇順のローソク足として返します。
// 行が1本も得られない場合は ErrEmptyPayload を返します。
func (c *Client) FetchCandles(ctx context.Context, network, pool string, tf market.Timeframe) ([]market.Candle, error) {
	p, ok := ohlcvPeriods[tf]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTimeframe, tf)
	}

	q := url.Values{}
	q.Set("aggregate", strconv.Itoa(p.aggregate))
	q.Set("limit", strconv.Itoa(c.cfg.CandleLimit))
	q.Set("currency", "usd")
	u := fmt.Sprintf("%s/networks/%s/pools/%s/ohlcv/%s?%s",
		c.cfg.BaseURL, url.PathEscape(network), url.PathEscape(pool), p.period, q.Encode())

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	width := tf.Seconds()
	rows := body.Get("data.attributes.ohlcv_list").Array()
	byTS := make(map[int64]market.Candle, len(rows))
	for _, row := range rows {
		cols := row.Array()
		if len(cols) < 5 {
			continue
		}
		ts, ok := coerce.UnixSeconds(cols[0])
		if !ok {
			continue
		}
		o, ok1 := coerce.Float(cols[1])
		h, ok2 := coerce.Float(cols[2])
		l, ok3 := coerce.Float(cols[3])
		cl, ok4 := coerce.Float(cols[4])
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue
		}
		var v float64
		if len(cols) > 5 {
			v = coerce.FloatOr(cols[5], 0)
		}
		cd := market.Candle{Timestamp: ts - ts%width, Open: o, High: h, Low: l, Close: cl, Volume: v}
		if !cd.Valid() {
			continue
		}
		byTS[cd.Timestamp] = cd
	}
	if len(byTS) == 0 {
		return nil, fmt.Errorf("geckoterminal ohlcv: %w", infrahttp.ErrEmptyPayload)
	}
	return sortedCandles(byTS), nil
}

// FetchTrades はプールの直近の約定を新しい順に最大 limit 件返します。
func (c *Client) FetchTrades(ctx context.Context, network, pool string, limit int) ([]market.Trade, error) {
	u := fmt.Sprintf("%s/networks/%s/pools/%s/trades", c.cfg.BaseURL, url.PathEscape(network), url.PathEscape(pool))

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	items := body.Get("data").Array()
	trades := make([]market.Trade, 0, len(items))
	for _, it := range items {
		if tr, ok := parseTrade(it.Get("attributes")); ok {
			trades = append(trades, tr)
		}
	}
	if len(trades) == 0 {
		return nil, fmt.Errorf("geckoterminal trades: %w", infrahttp.ErrEmptyPayload)
	}
	sort.SliceStable(trades, func(i, j int) bool { return trades[i].Timestamp > trades[j].Timestamp })
	if limit > 0 && len(trades) > limit {
		trades = trades[:limit]
	}
	return trades, nil
}

// parseTrade は1件の約定を変換します。
// buy では to 側、sell では from 側がベーストークンです。
func parseTrade(a gjson.Result) (market.Trade, bool) {
	ts, ok := coerce.UnixSeconds(coerce.First(a, "block_timestamp", "timestamp"))
	if !ok {
		return market.Trade{}, false
	}
	side, ok := market.ParseSide(a.Get("kind").String())
	if !ok {
		return market.Trade{}, false
	}

	pricePaths := []string{"price_to_in_usd", "price_from_in_usd"}
	amountPath := "to_token_amount"
	if side == market.Sell {
		pricePaths = []string{"price_from_in_usd", "price_to_in_usd"}
		amountPath = "from_token_amount"
	}
	price, ok := coerce.FirstFloat(a, pricePaths...)
	if !ok || price < 0 {
		return market.Trade{}, false
	}

	return market.Trade{
		Timestamp:       ts,
		Side:            side,
		Price:           price,
		AmountBase:      coerce.FloatPtr(a.Get(amountPath)),
		AmountQuote:     coerce.FirstFloatPtr(a, "volume_in_usd", "volume_usd"),
		TransactionHash: a.Get("tx_hash").String(),
		WalletAddress:   a.Get("tx_from_address").String(),
	}, true
}

func (c *Client) get(ctx context.Context, u string) (gjson.Result, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return gjson.Result{}, err
		}
	}
	h := http.Header{}
	h.Set("Accept", "application/json;version=20230302")
	return infrahttp.GetJSON(ctx, c.client, market.ProviderGeckoTerminal, u, h)
}

func sortedCandles(byTS map[int64]market.Candle) []market.Candle {
	out := make([]market.Candle, 0, len(byTS))
	for _, cd := range byTS {
		out = append(out, cd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// idAddress は "eth_0xabc" 形式のリレーションIDからアドレス部分を取り出します。
func idAddress(id string) string {
	if i := strings.IndexByte(id, '_'); i >= 0 {
		return id[i+1:]
	}
	return id
}
