// Package usecase は約定エンドポイントのプロバイダ・フォールバックを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"token_backend/internal/shared/chains"
	"token_backend/internal/shared/fallback"
	"token_backend/internal/shared/market"
)

const (
	// DefaultLimit はlimit未指定時の返却件数です。
	DefaultLimit = 100
	// MaxLimit は返却件数の上限です。
	MaxLimit = 300
	// maxWindow はwindowに指定できる最大期間です。
	maxWindow = 30 * 24 * time.Hour
)

// TradeSource は約定履歴を返すプロバイダを抽象化します。
type TradeSource interface {
	Name() string
	FetchTrades(ctx context.Context, network, pool string, limit int) ([]market.Trade, error)
}

// GetTradesInput は約定リクエストの生パラメータです。
type GetTradesInput struct {
	PairID      string
	PoolAddress string
	Chain       string
	Limit       string
	Window      string
	Provider    string
}

// GetTradesOutput は約定リクエストの結果です。
type GetTradesOutput struct {
	PairID             string
	Chain              string
	Trades             []market.Trade
	Provider           string
	Record             market.AttemptRecord
	UnsupportedNetwork bool
}

// tradesUsecase は約定エンドポイントのフォールバック・シーケンサです。
type tradesUsecase struct {
	sources []TradeSource
	timeout time.Duration
	now     func() time.Time
}

// NewTradesUsecase はtradesUsecaseの新しいインスタンスを生成します。sources は優先度順に渡します。
func NewTradesUsecase(sources []TradeSource, timeout time.Duration) *tradesUsecase {
	return &tradesUsecase{sources: sources, timeout: timeout, now: time.Now}
}

// WithClock はテスト用に現在時刻の取得関数を差し替えます。
func (u *tradesUsecase) WithClock(now func() time.Time) *tradesUsecase {
	u.now = now
	return u
}

// GetTrades は優先度順にプロバイダを試し、window 内の約定を新しい順に最大 limit 件返します。
// window で絞り込んだ結果が空のプロバイダは失敗と同様に扱い、次のプロバイダへ進みます。
func (u *tradesUsecase) GetTrades(ctx context.Context, in GetTradesInput) (*GetTradesOutput, error) {
	// validate
	pool := strings.TrimSpace(in.PoolAddress)
	if pool == "" {
		pool = strings.TrimSpace(in.PairID)
	}
	if pool == "" {
		return nil, fmt.Errorf("%w: pairId or poolAddress is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(in.Chain) == "" {
		return nil, fmt.Errorf("%w: chain is required", ErrInvalidRequest)
	}
	limit, err := parseLimit(in.Limit)
	if err != nil {
		return nil, err
	}
	window, err := ParseWindow(in.Window)
	if err != nil {
		return nil, err
	}
	forced := strings.ToLower(strings.TrimSpace(in.Provider))
	if forced != "" && !u.hasSource(forced) {
		return nil, fmt.Errorf("%w: %w %q", ErrInvalidRequest, ErrUnknownProvider, in.Provider)
	}

	chain := chains.Normalize(in.Chain)
	out := &GetTradesOutput{PairID: in.PairID, Chain: chain, Trades: []market.Trade{}, Provider: market.ProviderNone}
	if out.PairID == "" {
		out.PairID = pool
	}

	// check_chain_support
	if !chains.IsSupported(chain) {
		out.UnsupportedNetwork = true
		return u.respond(out, pool), nil
	}

	// try_trade_providers
	var cutoff int64
	if window > 0 {
		cutoff = u.now().Add(-window).Unix()
	}
	for _, src := range u.sources {
		name := src.Name()
		if forced != "" && forced != name {
			continue
		}
		network, ok := chains.ToProviderNetwork(chain, name)
		if !ok {
			continue
		}
		got := fallback.Do(ctx, u.timeout, &out.Record,
			market.Attempt{Provider: name, Kind: market.KindTrades},
			func(ctx context.Context) ([]market.Trade, error) {
				trades, err := src.FetchTrades(ctx, network, pool, limit)
				if err != nil {
					return nil, err
				}
				return filterWindow(trades, cutoff), nil
			},
			"network", network, "pool", pool)
		if len(got) == 0 {
			continue
		}
		sort.SliceStable(got, func(i, j int) bool { return got[i].Timestamp > got[j].Timestamp })
		if len(got) > limit {
			got = got[:limit]
		}
		out.Trades = got
		out.Provider = name
		break
	}
	return u.respond(out, pool), nil
}

func (u *tradesUsecase) respond(out *GetTradesOutput, pool string) *GetTradesOutput {
	out.Record.Provider = out.Provider
	out.Record.Items = len(out.Trades)
	if out.Record.Attempts == nil {
		out.Record.Attempts = []market.Attempt{}
	}
	slog.Info("trades served",
		"chain", out.Chain,
		"pool", pool,
		"provider", out.Provider,
		"items", out.Record.Items,
		"tried", strings.Join(out.Record.Tried(), ","),
	)
	return out
}

func (u *tradesUsecase) hasSource(name string) bool {
	for _, s := range u.sources {
		if s.Name() == name {
			return true
		}
	}
	return false
}

func parseLimit(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultLimit, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: limit must be a positive integer", ErrInvalidRequest)
	}
	if n > MaxLimit {
		n = MaxLimit
	}
	return n, nil
}

// ParseWindow は "5m", "1h", "24h", "7d" 形式の期間を解釈します。空文字は無制限（0）です。
func ParseWindow(s string) (time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" {
		return 0, nil
	}
	var d time.Duration
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid window %q", ErrInvalidRequest, s)
		}
		d = time.Duration(n) * 24 * time.Hour
	} else {
		var err error
		if d, err = time.ParseDuration(s); err != nil {
			return 0, fmt.Errorf("%w: invalid window %q", ErrInvalidRequest, s)
		}
	}
	if d <= 0 || d > maxWindow {
		return 0, fmt.Errorf("%w: window must be between 1s and 30d", ErrInvalidRequest)
	}
	return d, nil
}

func filterWindow(trades []market.Trade, cutoff int64) []market.Trade {
	if cutoff <= 0 {
		return trades
	}
	out := make([]market.Trade, 0, len(trades))
	for _, tr := range trades {
		if tr.Timestamp >= cutoff {
			out = append(out, tr)
		}
	}
	return out
}
