// Package usecase はOHLCエンドポイントのプロバイダ・フォールバックとローソク足合成を実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"token_backend/internal/shared/candles"
	"token_backend/internal/shared/chains"
	"token_backend/internal/shared/fallback"
	"token_backend/internal/shared/market"
	"token_backend/internal/shared/timeframes"
)

// DefaultSynthesisTradeLimit は合成用に取得する約定件数です。
const DefaultSynthesisTradeLimit = 300

// CandleSource は集計済みローソク足を返すプロバイダを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type CandleSource interface {
	Name() string
	// FetchCandles は昇順のローソク足を返します。0件の場合はエラーまたは空スライスを返します。
	FetchCandles(ctx context.Context, network, pool string, tf market.Timeframe) ([]market.Candle, error)
}

// TradeSource は約定履歴を返すプロバイダを抽象化します。
type TradeSource interface {
	Name() string
	FetchTrades(ctx context.Context, network, pool string, limit int) ([]market.Trade, error)
}

// GetCandlesInput はOHLCリクエストの生パラメータです。
type GetCandlesInput struct {
	PairID      string
	PoolAddress string
	Chain       string
	Timeframe   string
	Provider    string
}

// GetCandlesOutput はOHLCリクエストの結果と診断情報です。
type GetCandlesOutput struct {
	PairID             string
	Chain              string
	Timeframe          market.Timeframe
	EffectiveTimeframe market.Timeframe
	Candles            []market.Candle
	Provider           string
	Record             market.AttemptRecord
	// UnsupportedNetwork はチェーンが対応外のため上流を呼ばずに応答したことを示します。
	UnsupportedNetwork bool
}

type state int

const (
	stateValidate state = iota
	stateCheckChainSupport
	stateTryCandleProviders
	stateTryTradeSynthesis
	stateRespond
	stateDone
)

func (s state) String() string {
	switch s {
	case stateValidate:
		return "validate"
	case stateCheckChainSupport:
		return "check_chain_support"
	case stateTryCandleProviders:
		return "try_candle_providers"
	case stateTryTradeSynthesis:
		return "try_trade_synthesis"
	case stateRespond:
		return "respond"
	}
	return "done"
}

// request は1リクエスト分の作業状態です。
type request struct {
	in     GetCandlesInput
	pool   string
	chain  string
	tf     market.Timeframe
	forced string
	out    *GetCandlesOutput
}

// ohlcUsecase はOHLCエンドポイントのフォールバック・シーケンサです。
type ohlcUsecase struct {
	candleSources []CandleSource
	tradeSources  []TradeSource
	timeout       time.Duration
	tradeLimit    int
}

// Option はohlcUsecaseの設定を変更します。
type Option func(*ohlcUsecase)

// WithTimeout はプロバイダ呼び出し1回あたりのタイムアウトを設定します。
func WithTimeout(d time.Duration) Option {
	return func(u *ohlcUsecase) { u.timeout = d }
}

// WithSynthesisTradeLimit は合成用に取得する約定件数を設定します。
func WithSynthesisTradeLimit(n int) Option {
	return func(u *ohlcUsecase) {
		if n > 0 {
			u.tradeLimit = n
		}
	}
}

// NewOHLCUsecase はohlcUsecaseの新しいインスタンスを生成します。
// candleSources と tradeSources はそれぞれ優先度順に並べて渡します。
func NewOHLCUsecase(candleSources []CandleSource, tradeSources []TradeSource, opts ...Option) *ohlcUsecase {
	u := &ohlcUsecase{
		candleSources: candleSources,
		tradeSources:  tradeSources,
		timeout:       fallback.DefaultTimeout,
		tradeLimit:    DefaultSynthesisTradeLimit,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// GetCandles は validate → check_chain_support → try_candle_providers → try_trade_synthesis → respond の
// 順に状態を遷移してローソク足を返します。
//
// プロバイダの失敗は常に吸収され、全滅しても空の結果（provider "none"）を返します。
// エラーを返すのは入力が不正な場合（ErrInvalidRequest）のみです。
func (u *ohlcUsecase) GetCandles(ctx context.Context, in GetCandlesInput) (*GetCandlesOutput, error) {
	r := &request{in: in, out: &GetCandlesOutput{PairID: in.PairID}}

	st := stateValidate
	for st != stateDone {
		next, err := u.step(ctx, st, r)
		if err != nil {
			return nil, err
		}
		slog.Debug("ohlc state transition", "from", st.String(), "to", next.String(), "pool", r.pool)
		st = next
	}
	return r.out, nil
}

func (u *ohlcUsecase) step(ctx context.Context, st state, r *request) (state, error) {
	switch st {
	case stateValidate:
		return u.validate(r)
	case stateCheckChainSupport:
		return u.checkChainSupport(r), nil
	case stateTryCandleProviders:
		return u.tryCandleProviders(ctx, r), nil
	case stateTryTradeSynthesis:
		return u.tryTradeSynthesis(ctx, r), nil
	case stateRespond:
		u.respond(r)
		return stateDone, nil
	}
	return stateDone, nil
}

func (u *ohlcUsecase) validate(r *request) (state, error) {
	r.pool = strings.TrimSpace(r.in.PoolAddress)
	if r.pool == "" {
		r.pool = strings.TrimSpace(r.in.PairID)
	}
	if r.pool == "" {
		return stateDone, fmt.Errorf("%w: pairId or poolAddress is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.in.Chain) == "" {
		return stateDone, fmt.Errorf("%w: chain is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.in.Timeframe) == "" {
		return stateDone, fmt.Errorf("%w: tf is required", ErrInvalidRequest)
	}
	tf, err := market.ParseTimeframe(strings.TrimSpace(r.in.Timeframe))
	if err != nil {
		return stateDone, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	r.tf = tf

	if p := strings.ToLower(strings.TrimSpace(r.in.Provider)); p != "" {
		if p != market.ProviderSynthetic && !u.hasCandleSource(p) {
			return stateDone, fmt.Errorf("%w: %w %q", ErrInvalidRequest, ErrUnknownProvider, r.in.Provider)
		}
		r.forced = p
	}

	r.chain = chains.Normalize(r.in.Chain)
	r.out.Chain = r.chain
	r.out.Timeframe = tf
	if r.out.PairID == "" {
		r.out.PairID = r.pool
	}
	return stateCheckChainSupport, nil
}

func (u *ohlcUsecase) checkChainSupport(r *request) state {
	if !chains.IsSupported(r.chain) {
		r.out.UnsupportedNetwork = true
		return stateRespond
	}
	if r.forced == market.ProviderSynthetic {
		return stateTryTradeSynthesis
	}
	return stateTryCandleProviders
}

// tryCandleProviders は優先度順に各プロバイダの時間足フォールバック列を試し、最初の非空結果で打ち切ります。
func (u *ohlcUsecase) tryCandleProviders(ctx context.Context, r *request) state {
	for _, src := range u.candleSources {
		name := src.Name()
		if r.forced != "" && r.forced != name {
			continue
		}
		network, ok := chains.ToProviderNetwork(r.chain, name)
		if !ok {
			continue
		}
		order := timeframes.FallbackOrder(r.tf, name)
		if order == nil {
			order = []market.Timeframe{r.tf}
		}
		for _, tf := range order {
			got := fallback.Do(ctx, u.timeout, &r.out.Record,
				market.Attempt{Provider: name, Kind: market.KindCandles, Timeframe: tf},
				func(ctx context.Context) ([]market.Candle, error) {
					return src.FetchCandles(ctx, network, r.pool, tf)
				},
				"network", network, "pool", r.pool)
			if len(got) > 0 {
				r.out.Candles = got
				r.out.Provider = name
				r.out.EffectiveTimeframe = tf
				return stateRespond
			}
		}
	}
	return stateTryTradeSynthesis
}

// tryTradeSynthesis は約定を取得し、要求された時間足の幅でローソク足を合成します。
func (u *ohlcUsecase) tryTradeSynthesis(ctx context.Context, r *request) state {
	width := r.tf.Seconds()
	for _, src := range u.tradeSources {
		name := src.Name()
		network, ok := chains.ToProviderNetwork(r.chain, name)
		if !ok {
			continue
		}
		trades := fallback.Do(ctx, u.timeout, &r.out.Record,
			market.Attempt{Provider: name, Kind: market.KindTrades},
			func(ctx context.Context) ([]market.Trade, error) {
				return src.FetchTrades(ctx, network, r.pool, u.tradeLimit)
			},
			"network", network, "pool", r.pool)
		if len(trades) == 0 {
			continue
		}
		built := candles.Build(trades, width)
		if len(built) == 0 {
			continue
		}
		r.out.Candles = built
		r.out.Provider = market.ProviderSynthetic
		r.out.EffectiveTimeframe = r.tf
		return stateRespond
	}
	return stateRespond
}

func (u *ohlcUsecase) respond(r *request) {
	out := r.out
	if out.Provider == "" {
		out.Provider = market.ProviderNone
		out.Candles = []market.Candle{}
		out.EffectiveTimeframe = r.tf
	}
	out.Record.Provider = out.Provider
	out.Record.Items = len(out.Candles)
	out.Record.EffectiveTimeframe = out.EffectiveTimeframe
	if out.Record.Attempts == nil {
		out.Record.Attempts = []market.Attempt{}
	}

	slog.Info("ohlc served",
		"chain", r.chain,
		"pool", r.pool,
		"tf", r.tf,
		"provider", out.Provider,
		"items", out.Record.Items,
		"effective_tf", out.EffectiveTimeframe,
		"tried", strings.Join(out.Record.Tried(), ","),
		"unsupported_network", out.UnsupportedNetwork,
	)
}

func (u *ohlcUsecase) hasCandleSource(name string) bool {
	for _, src := range u.candleSources {
		if src.Name() == name {
			return true
		}
	}
	return false
}
