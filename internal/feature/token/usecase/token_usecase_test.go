package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token_backend/internal/feature/token/usecase"
	"token_backend/internal/shared/market"
)

// mockTokenSource はTokenSourceインターフェースのモック実装です。
type mockTokenSource struct {
	name           string
	FetchTokenFunc func(ctx context.Context, network, address string) (market.TokenSnapshot, error)
	FetchCalls     int
	LastNetwork    string
}

func (m *mockTokenSource) Name() string { return m.name }

func (m *mockTokenSource) FetchToken(ctx context.Context, network, address string) (market.TokenSnapshot, error) {
	m.FetchCalls++
	m.LastNetwork = network
	if m.FetchTokenFunc != nil {
		return m.FetchTokenFunc(ctx, network, address)
	}
	return market.TokenSnapshot{}, nil
}

func ptr[T any](v T) *T { return &v }

func TestTokenUsecase_MergesFirstValueWins(t *testing.T) {
	t.Parallel()

	gecko := &mockTokenSource{name: market.ProviderGeckoTerminal, FetchTokenFunc: func(ctx context.Context, network, address string) (market.TokenSnapshot, error) {
		return market.TokenSnapshot{
			Info: market.TokenInfo{Name: "Pepe", Symbol: "PEPE", TotalSupply: ptr(1000.0)},
			KPIs: market.TokenKPIs{PriceUSD: ptr(2.0)},
		}, nil
	}}
	dex := &mockTokenSource{name: market.ProviderDexScreener, FetchTokenFunc: func(ctx context.Context, network, address string) (market.TokenSnapshot, error) {
		return market.TokenSnapshot{
			Info:  market.TokenInfo{Symbol: "OTHER"},
			KPIs:  market.TokenKPIs{PriceUSD: ptr(9.0), PriceChange24h: ptr(-3.5), Volume24hUSD: ptr(50.0)},
			Pools: []market.PoolSummary{{Address: "0xp1", Chain: network, Dex: "uniswap"}},
		}, nil
	}}
	goplus := &mockTokenSource{name: market.ProviderGoPlus, FetchTokenFunc: func(ctx context.Context, network, address string) (market.TokenSnapshot, error) {
		return market.TokenSnapshot{Info: market.TokenInfo{Holders: ptr(int64(42)), Decimals: ptr(18)}}, nil
	}}

	uc := usecase.NewTokenUsecase([]usecase.TokenSource{gecko, dex, goplus}, time.Second)
	out, err := uc.GetToken(context.Background(), usecase.GetTokenInput{Chain: "eth", Address: "0xabc"})
	require.NoError(t, err)

	assert.Equal(t, market.ProviderGeckoTerminal, out.Provider)
	assert.Equal(t, []string{"geckoterminal", "dexscreener", "goplus"}, out.Sources)
	assert.Equal(t, "PEPE", out.Info.Symbol)
	assert.Equal(t, "0xabc", out.Info.Address)
	assert.Equal(t, "ethereum", out.Info.Chain)
	assert.Equal(t, int64(42), *out.Info.Holders)
	assert.Equal(t, 18, *out.Info.Decimals)
	assert.Equal(t, 2.0, *out.KPIs.PriceUSD)
	assert.Equal(t, -3.5, *out.KPIs.PriceChange24h)
	assert.Equal(t, 2000.0, *out.KPIs.MarketCapUSD)
	assert.Equal(t, 2000.0, *out.KPIs.FDVUSD)
	require.Len(t, out.Pools, 1)
	assert.Equal(t, "ethereum", out.Pools[0].Chain)
	assert.Equal(t, "1", goplus.LastNetwork)
}

func TestTokenUsecase_FailuresAbsorbed(t *testing.T) {
	t.Parallel()

	gecko := &mockTokenSource{name: market.ProviderGeckoTerminal, FetchTokenFunc: func(ctx context.Context, network, address string) (market.TokenSnapshot, error) {
		return market.TokenSnapshot{}, errors.New("http 500")
	}}
	dex := &mockTokenSource{name: market.ProviderDexScreener, FetchTokenFunc: func(ctx context.Context, network, address string) (market.TokenSnapshot, error) {
		return market.TokenSnapshot{KPIs: market.TokenKPIs{PriceUSD: ptr(1.0), MarketCapUSD: ptr(77.0)}}, nil
	}}

	uc := usecase.NewTokenUsecase([]usecase.TokenSource{gecko, dex}, time.Second)
	out, err := uc.GetToken(context.Background(), usecase.GetTokenInput{Chain: "solana", Address: "So1"})
	require.NoError(t, err)

	assert.Equal(t, market.ProviderDexScreener, out.Provider)
	assert.Equal(t, 77.0, *out.KPIs.MarketCapUSD)
	assert.Nil(t, out.KPIs.FDVUSD)
	require.Len(t, out.Record.Attempts, 2)
	assert.Equal(t, "http 500", out.Record.Attempts[0].Error)
}

func TestTokenUsecase_Exhaustion(t *testing.T) {
	t.Parallel()

	gecko := &mockTokenSource{name: market.ProviderGeckoTerminal}
	uc := usecase.NewTokenUsecase([]usecase.TokenSource{gecko}, time.Second)

	out, err := uc.GetToken(context.Background(), usecase.GetTokenInput{Chain: "base", Address: "0xabc"})
	require.NoError(t, err)

	assert.Equal(t, market.ProviderNone, out.Provider)
	assert.Empty(t, out.Sources)
	assert.NotNil(t, out.Pools)
	assert.Equal(t, "empty", out.Record.Attempts[0].Error)
}

func TestTokenUsecase_StopsWhenComplete(t *testing.T) {
	t.Parallel()

	full := market.TokenSnapshot{
		Info: market.TokenInfo{Name: "A", Symbol: "A", Decimals: ptr(6), TotalSupply: ptr(1.0), Holders: ptr(int64(1))},
		KPIs: market.TokenKPIs{
			PriceUSD: ptr(1.0), MarketCapUSD: ptr(1.0), FDVUSD: ptr(1.0),
			PriceChange24h: ptr(0.0), Volume24hUSD: ptr(1.0), LiquidityUSD: ptr(1.0),
		},
		Pools: []market.PoolSummary{{Address: "0xp"}},
	}
	first := &mockTokenSource{name: market.ProviderDexScreener, FetchTokenFunc: func(ctx context.Context, network, address string) (market.TokenSnapshot, error) {
		return full, nil
	}}
	second := &mockTokenSource{name: market.ProviderGoPlus}

	uc := usecase.NewTokenUsecase([]usecase.TokenSource{first, second}, time.Second)
	_, err := uc.GetToken(context.Background(), usecase.GetTokenInput{Chain: "bsc", Address: "0xabc"})
	require.NoError(t, err)
	assert.Zero(t, second.FetchCalls)
}

func TestTokenUsecase_UnsupportedAndInvalid(t *testing.T) {
	t.Parallel()

	src := &mockTokenSource{name: market.ProviderGeckoTerminal}
	uc := usecase.NewTokenUsecase([]usecase.TokenSource{src}, time.Second)

	out, err := uc.GetToken(context.Background(), usecase.GetTokenInput{Chain: "tron", Address: "T1"})
	require.NoError(t, err)
	assert.True(t, out.UnsupportedNetwork)
	assert.Zero(t, src.FetchCalls)

	_, err = uc.GetToken(context.Background(), usecase.GetTokenInput{Chain: "eth"})
	assert.ErrorIs(t, err, usecase.ErrInvalidRequest)
	_, err = uc.GetToken(context.Background(), usecase.GetTokenInput{Address: "0xabc"})
	assert.ErrorIs(t, err, usecase.ErrInvalidRequest)
}
