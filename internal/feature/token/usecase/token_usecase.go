// Package usecase はトークン詳細エンドポイントを実装します。
//
// 各プロバイダのスナップショットを優先度順に取得し、項目ごとに最初に得られた値を採用して
// メタデータとKPIを組み立てます。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"token_backend/internal/shared/chains"
	"token_backend/internal/shared/fallback"
	"token_backend/internal/shared/market"
)

// TokenSource はトークンのスナップショットを返すプロバイダを抽象化します。
type TokenSource interface {
	Name() string
	FetchToken(ctx context.Context, network, address string) (market.TokenSnapshot, error)
}

// GetTokenInput はトークン詳細リクエストの生パラメータです。
type GetTokenInput struct {
	Chain   string
	Address string
}

// GetTokenOutput はトークン詳細リクエストの結果です。
type GetTokenOutput struct {
	Info     market.TokenInfo
	KPIs     market.TokenKPIs
	Pools    []market.PoolSummary
	Provider string
	// Sources は値を1つ以上提供したプロバイダ（優先度順）です。
	Sources            []string
	Record             market.AttemptRecord
	UnsupportedNetwork bool
}

// tokenUsecase はトークン詳細のマージ・シーケンサです。
type tokenUsecase struct {
	sources []TokenSource
	timeout time.Duration
}

// NewTokenUsecase はtokenUsecaseの新しいインスタンスを生成します。
func NewTokenUsecase(sources []TokenSource, timeout time.Duration) *tokenUsecase {
	return &tokenUsecase{sources: sources, timeout: timeout}
}

// GetToken はトークンのメタデータ・KPI・プール一覧を返します。
func (u *tokenUsecase) GetToken(ctx context.Context, in GetTokenInput) (*GetTokenOutput, error) {
	address := strings.TrimSpace(in.Address)
	if address == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(in.Chain) == "" {
		return nil, fmt.Errorf("%w: chain is required", ErrInvalidRequest)
	}

	chain := chains.Normalize(in.Chain)
	out := &GetTokenOutput{
		Info:     market.TokenInfo{Address: address, Chain: chain},
		Pools:    []market.PoolSummary{},
		Provider: market.ProviderNone,
		Sources:  []string{},
	}
	if !chains.IsSupported(chain) {
		out.UnsupportedNetwork = true
		return u.respond(out), nil
	}

	for _, src := range u.sources {
		if complete(out) {
			break
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
		if merge(out, got[0], chain) {
			out.Sources = append(out.Sources, name)
			if out.Provider == market.ProviderNone {
				out.Provider = name
			}
		}
	}

	deriveKPIs(&out.KPIs, out.Info.TotalSupply)
	return u.respond(out), nil
}

// merge は dst の欠けた項目だけを s で埋め、1項目でも埋めたかを返します。
func merge(dst *GetTokenOutput, s market.TokenSnapshot, chain string) bool {
	used := false
	str := func(d *string, v string) {
		if *d == "" && v != "" {
			*d = v
			used = true
		}
	}
	num := func(d **float64, v *float64) {
		if *d == nil && v != nil {
			*d = v
			used = true
		}
	}

	info := &dst.Info
	str(&info.Name, s.Info.Name)
	str(&info.Symbol, s.Info.Symbol)
	str(&info.ImageURL, s.Info.ImageURL)
	if info.Decimals == nil && s.Info.Decimals != nil {
		info.Decimals = s.Info.Decimals
		used = true
	}
	num(&info.TotalSupply, s.Info.TotalSupply)
	if info.Holders == nil && s.Info.Holders != nil {
		info.Holders = s.Info.Holders
		used = true
	}

	k := &dst.KPIs
	num(&k.PriceUSD, s.KPIs.PriceUSD)
	num(&k.MarketCapUSD, s.KPIs.MarketCapUSD)
	num(&k.FDVUSD, s.KPIs.FDVUSD)
	num(&k.PriceChange24h, s.KPIs.PriceChange24h)
	num(&k.Volume24hUSD, s.KPIs.Volume24hUSD)
	num(&k.LiquidityUSD, s.KPIs.LiquidityUSD)

	if len(dst.Pools) == 0 && len(s.Pools) > 0 {
		dst.Pools = make([]market.PoolSummary, len(s.Pools))
		for i, p := range s.Pools {
			p.Chain = chain
			dst.Pools[i] = p
		}
		used = true
	}
	return used
}

func complete(out *GetTokenOutput) bool {
	i, k := out.Info, out.KPIs
	return i.Name != "" && i.Symbol != "" && i.Decimals != nil && i.TotalSupply != nil && i.Holders != nil &&
		k.PriceUSD != nil && k.MarketCapUSD != nil && k.FDVUSD != nil && k.PriceChange24h != nil &&
		k.Volume24hUSD != nil && k.LiquidityUSD != nil && len(out.Pools) > 0
}

// deriveKPIs は時価総額とFDVが欠けている場合に price x supply で補います。
// 流通量が分からないため、時価総額も総供給量から算出します。
func deriveKPIs(k *market.TokenKPIs, supply *float64) {
	if k.PriceUSD == nil || supply == nil || *k.PriceUSD <= 0 || *supply <= 0 {
		return
	}
	v, _ := decimal.NewFromFloat(*k.PriceUSD).Mul(decimal.NewFromFloat(*supply)).Round(2).Float64()
	if k.FDVUSD == nil {
		fdv := v
		k.FDVUSD = &fdv
	}
	if k.MarketCapUSD == nil {
		mcap := v
		k.MarketCapUSD = &mcap
	}
}

func (u *tokenUsecase) respond(out *GetTokenOutput) *GetTokenOutput {
	out.Record.Provider = out.Provider
	out.Record.Items = len(out.Sources)
	if out.Record.Attempts == nil {
		out.Record.Attempts = []market.Attempt{}
	}
	slog.Info("token served",
		"chain", out.Info.Chain,
		"token", out.Info.Address,
		"provider", out.Provider,
		"sources", strings.Join(out.Sources, ","),
		"tried", strings.Join(out.Record.Tried(), ","),
	)
	return out
}
