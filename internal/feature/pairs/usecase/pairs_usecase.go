// Package usecase はトークンのプール一覧エンドポイントを実装します。
//
// 一次プロバイダのプール一覧が空または失敗なら二次プロバイダへ切り替え、
// プールアドレスの欠けたエントリは別プロバイダの同一venueから補完し、
// トークンのメタデータは三次プロバイダから補完します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"token_backend/internal/shared/chains"
	"token_backend/internal/shared/fallback"
	"token_backend/internal/shared/market"
)

// PoolSource はトークンのプール一覧を返すプロバイダを抽象化します。
type PoolSource interface {
	Name() string
	FetchPools(ctx context.Context, network, token string) ([]market.PoolSummary, error)
}

// TokenSource はトークンのメタデータを返すプロバイダを抽象化します。
type TokenSource interface {
	Name() string
	FetchToken(ctx context.Context, network, address string) (market.TokenSnapshot, error)
}

// GetPairsInput はプール一覧リクエストの生パラメータです。
type GetPairsInput struct {
	Chain    string
	Address  string
	Provider string
}

// GetPairsOutput はプール一覧リクエストの結果です。
type GetPairsOutput struct {
	Token              market.TokenMeta
	Pools              []market.PoolSummary
	Provider           string
	Record             market.AttemptRecord
	UnsupportedNetwork bool
}

// pairsUsecase はプール一覧のフォールバック・シーケンサです。
type pairsUsecase struct {
	pools   []PoolSource
	meta    []TokenSource
	timeout time.Duration
}

// NewPairsUsecase はpairsUsecaseの新しいインスタンスを生成します。
// pools はプール一覧の優先度順、meta はメタデータ補完の優先度順です。
func NewPairsUsecase(pools []PoolSource, meta []TokenSource, timeout time.Duration) *pairsUsecase {
	return &pairsUsecase{pools: pools, meta: meta, timeout: timeout}
}

// GetPairs はトークンが上場しているプールの一覧とトークンのメタデータを返します。
func (u *pairsUsecase) GetPairs(ctx context.Context, in GetPairsInput) (*GetPairsOutput, error) {
	address := strings.TrimSpace(in.Address)
	if address == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(in.Chain) == "" {
		return nil, fmt.Errorf("%w: chain is required", ErrInvalidRequest)
	}
	forced := strings.ToLower(strings.TrimSpace(in.Provider))
	if forced != "" && u.poolSourceIndex(forced) < 0 {
		return nil, fmt.Errorf("%w: %w %q", ErrInvalidRequest, ErrUnknownProvider, in.Provider)
	}

	chain := chains.Normalize(in.Chain)
	out := &GetPairsOutput{
		Token:    market.TokenMeta{Address: address, Chain: chain},
		Pools:    []market.PoolSummary{},
		Provider: market.ProviderNone,
	}
	if !chains.IsSupported(chain) {
		out.UnsupportedNetwork = true
		return u.respond(out), nil
	}

	// 一次・二次プロバイダ
	primary := -1
	for i, src := range u.pools {
		if forced != "" && forced != src.Name() {
			continue
		}
		if got := u.fetchPools(ctx, out, src, chain, address); len(got) > 0 {
			out.Pools = got
			out.Provider = src.Name()
			primary = i
			break
		}
	}

	if primary >= 0 {
		out.Pools = u.backfillAddresses(ctx, out, primary, chain, address)
	}
	u.resolveToken(ctx, out, chain, address)
	return u.respond(out), nil
}

func (u *pairsUsecase) fetchPools(ctx context.Context, out *GetPairsOutput, src PoolSource, chain, address string) []market.PoolSummary {
	name := src.Name()
	network, ok := chains.ToProviderNetwork(chain, name)
	if !ok {
		return nil
	}
	got := fallback.Do(ctx, u.timeout, &out.Record,
		market.Attempt{Provider: name, Kind: market.KindPools},
		func(ctx context.Context) ([]market.PoolSummary, error) {
			return src.FetchPools(ctx, network, address)
		},
		"network", network, "token", address)
	for i := range got {
		got[i].Chain = chain
	}
	return got
}

// backfillAddresses はアドレスの欠けたプールを、他プロバイダの同一venueのプールから補完します。
// 補完できなかったプールは一覧から除きます。
func (u *pairsUsecase) backfillAddresses(ctx context.Context, out *GetPairsOutput, primary int, chain, address string) []market.PoolSummary {
	missing := 0
	for _, p := range out.Pools {
		if p.Address == "" {
			missing++
		}
	}
	if missing == 0 {
		return out.Pools
	}

	var secondary []market.PoolSummary
	for i, src := range u.pools {
		if i == primary {
			continue
		}
		if secondary = u.fetchPools(ctx, out, src, chain, address); len(secondary) > 0 {
			break
		}
	}

	kept := make([]market.PoolSummary, 0, len(out.Pools))
	for _, p := range out.Pools {
		if p.Address == "" {
			for _, s := range secondary {
				if s.Address != "" && p.SameVenue(s) {
					p = mergePool(p, s)
					break
				}
			}
		}
		if p.Address == "" {
			slog.Debug("dropping pool without address", "dex", p.Dex, "name", p.Name, "token", address)
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// resolveToken はプール一覧からトークンのシンボルを求め、欠けた項目をメタデータ・プロバイダから補完します。
func (u *pairsUsecase) resolveToken(ctx context.Context, out *GetPairsOutput, chain, address string) {
	for _, p := range out.Pools {
		switch {
		case strings.EqualFold(p.BaseAddress, address) && p.BaseSymbol != "":
			out.Token.Symbol = p.BaseSymbol
		case strings.EqualFold(p.QuoteAddress, address) && p.QuoteSymbol != "":
			out.Token.Symbol = p.QuoteSymbol
		default:
			continue
		}
		break
	}

	for _, src := range u.meta {
		if out.Token.Name != "" && out.Token.Symbol != "" && out.Token.Decimals != nil {
			return
		}
		name := src.Name()
		network, ok := chains.ToProviderNetwork(chain, name)
		if !ok {
			continue
		}
		got := fallback.Do(ctx, u.timeout, &out.Record,
			market.Attempt{Provider: name, Kind: market.KindToken},
			fallback.One(func(ctx context.Context) (market.TokenSnapshot, error) {
				return src.FetchToken(ctx, network, address)
			}, func(s market.TokenSnapshot) bool { return !s.Empty() }),
			"network", network, "token", address)
		if len(got) == 0 {
			continue
		}
		info := got[0].Info
		if out.Token.Name == "" {
			out.Token.Name = info.Name
		}
		if out.Token.Symbol == "" {
			out.Token.Symbol = info.Symbol
		}
		if out.Token.Decimals == nil {
			out.Token.Decimals = info.Decimals
		}
	}
}

func (u *pairsUsecase) respond(out *GetPairsOutput) *GetPairsOutput {
	out.Record.Provider = out.Provider
	out.Record.Items = len(out.Pools)
	if out.Record.Attempts == nil {
		out.Record.Attempts = []market.Attempt{}
	}
	slog.Info("pairs served",
		"chain", out.Token.Chain,
		"token", out.Token.Address,
		"provider", out.Provider,
		"items", out.Record.Items,
		"tried", strings.Join(out.Record.Tried(), ","),
	)
	return out
}

func (u *pairsUsecase) poolSourceIndex(name string) int {
	for i, s := range u.pools {
		if s.Name() == name {
			return i
		}
	}
	return -1
}

// mergePool は dst の欠けた項目を src で埋めます（先に値を持つ側を優先）。
func mergePool(dst, src market.PoolSummary) market.PoolSummary {
	if dst.Address == "" {
		dst.Address = src.Address
	}
	if dst.DexVersion == "" {
		dst.DexVersion = src.DexVersion
	}
	if dst.BaseAddress == "" {
		dst.BaseAddress = src.BaseAddress
	}
	if dst.QuoteAddress == "" {
		dst.QuoteAddress = src.QuoteAddress
	}
	if dst.PriceUSD == nil {
		dst.PriceUSD = src.PriceUSD
	}
	if dst.LiquidityUSD == nil {
		dst.LiquidityUSD = src.LiquidityUSD
	}
	if dst.Volume24hUSD == nil {
		dst.Volume24hUSD = src.Volume24hUSD
	}
	if dst.PriceChange24h == nil {
		dst.PriceChange24h = src.PriceChange24h
	}
	if dst.CreatedAt == 0 {
		dst.CreatedAt = src.CreatedAt
	}
	return dst
}
