package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token_backend/internal/feature/ohlc/usecase"
	"token_backend/internal/shared/market"
)

// ErrUpstream はモックが返す上流エラーです。
var ErrUpstream = errors.New("upstream down")

type candleCall struct {
	Network string
	Pool    string
	TF      market.Timeframe
}

// mockCandleSource はCandleSourceインターフェースのモック実装です。
type mockCandleSource struct {
	name             string
	FetchCandlesFunc func(ctx context.Context, network, pool string, tf market.Timeframe) ([]market.Candle, error)

	mu    sync.Mutex
	Calls []candleCall
}

func (m *mockCandleSource) Name() string { return m.name }

func (m *mockCandleSource) FetchCandles(ctx context.Context, network, pool string, tf market.Timeframe) ([]market.Candle, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, candleCall{network, pool, tf})
	m.mu.Unlock()
	if m.FetchCandlesFunc != nil {
		return m.FetchCandlesFunc(ctx, network, pool, tf)
	}
	return nil, nil
}

// mockTradeSource はTradeSourceインターフェースのモック実装です。
type mockTradeSource struct {
	name            string
	FetchTradesFunc func(ctx context.Context, network, pool string, limit int) ([]market.Trade, error)
	FetchCalls      int
}

func (m *mockTradeSource) Name() string { return m.name }

func (m *mockTradeSource) FetchTrades(ctx context.Context, network, pool string, limit int) ([]market.Trade, error) {
	m.FetchCalls++
	if m.FetchTradesFunc != nil {
		return m.FetchTradesFunc(ctx, network, pool, limit)
	}
	return nil, nil
}

func emptyCandles(ctx context.Context, network, pool string, tf market.Timeframe) ([]market.Candle, error) {
	return []market.Candle{}, nil
}

func failingCandles(ctx context.Context, network, pool string, tf market.Timeframe) ([]market.Candle, error) {
	return nil, ErrUpstream
}

func amount(v float64) *float64 { return &v }

func newSources() (*mockCandleSource, *mockCandleSource, *mockTradeSource, *mockTradeSource) {
	gecko := &mockCandleSource{name: market.ProviderGeckoTerminal}
	bird := &mockCandleSource{name: market.ProviderBirdeye}
	geckoTrades := &mockTradeSource{name: market.ProviderGeckoTerminal}
	birdTrades := &mockTradeSource{name: market.ProviderBirdeye}
	return gecko, bird, geckoTrades, birdTrades
}

func TestOHLCUsecase_Validation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input usecase.GetCandlesInput
	}{
		{"missing pool", usecase.GetCandlesInput{Chain: "ethereum", Timeframe: "1m"}},
		{"missing chain", usecase.GetCandlesInput{PairID: "0xpool", Timeframe: "1m"}},
		{"missing tf", usecase.GetCandlesInput{PairID: "0xpool", Chain: "ethereum"}},
		{"unknown tf", usecase.GetCandlesInput{PairID: "0xpool", Chain: "ethereum", Timeframe: "3m"}},
		{"unknown provider", usecase.GetCandlesInput{PairID: "0xpool", Chain: "ethereum", Timeframe: "1m", Provider: "coinbase"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			gecko, bird, gt, bt := newSources()
			uc := usecase.NewOHLCUsecase([]usecase.CandleSource{gecko, bird}, []usecase.TradeSource{gt, bt})

			out, err := uc.GetCandles(context.Background(), tc.input)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, usecase.ErrInvalidRequest)
			assert.Empty(t, gecko.Calls)
			assert.Zero(t, gt.FetchCalls)
		})
	}

	gecko, _, _, _ := newSources()
	uc := usecase.NewOHLCUsecase([]usecase.CandleSource{gecko}, nil)
	_, err := uc.GetCandles(context.Background(), usecase.GetCandlesInput{PairID: "p", Chain: "eth", Timeframe: "1m", Provider: "nope"})
	assert.ErrorIs(t, err, usecase.ErrUnknownProvider)
}

func TestOHLCUsecase_UnsupportedChainShortCircuits(t *testing.T) {
	t.Parallel()

	gecko, bird, gt, bt := newSources()
	uc := usecase.NewOHLCUsecase([]usecase.CandleSource{gecko, bird}, []usecase.TradeSource{gt, bt})

	out, err := uc.GetCandles(context.Background(), usecase.GetCandlesInput{PairID: "0xpool", Chain: "fantom", Timeframe: "1h"})
	require.NoError(t, err)

	assert.True(t, out.UnsupportedNetwork)
	assert.Equal(t, market.ProviderNone, out.Provider)
	assert.Empty(t, out.Candles)
	assert.NotNil(t, out.Candles)
	assert.Empty(t, out.Record.Attempts)

	assert.Empty(t, gecko.Calls)
	assert.Empty(t, bird.Calls)
	assert.Zero(t, gt.FetchCalls)
	assert.Zero(t, bt.FetchCalls)
}

func TestOHLCUsecase_PrimaryProviderWins(t *testing.T) {
	t.Parallel()

	want := []market.Candle{{Timestamp: 3600, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10}}
	gecko, bird, gt, bt := newSources()
	gecko.FetchCandlesFunc = func(ctx context.Context, network, pool string, tf market.Timeframe) ([]market.Candle, error) {
		return want, nil
	}
	uc := usecase.NewOHLCUsecase([]usecase.CandleSource{gecko, bird}, []usecase.TradeSource{gt, bt})

	out, err := uc.GetCandles(context.Background(), usecase.GetCandlesInput{PairID: "pair-1", PoolAddress: "0xpool", Chain: "eth", Timeframe: "1h"})
	require.NoError(t, err)

	assert.Equal(t, want, out.Candles)
	assert.Equal(t, market.ProviderGeckoTerminal, out.Provider)
	assert.Equal(t, market.TF1h, out.EffectiveTimeframe)
	assert.Equal(t, "pair-1", out.PairID)
	assert.Equal(t, "ethereum", out.Chain)
	assert.Equal(t, []candleCall{{"eth", "0xpool", market.TF1h}}, gecko.Calls)
	assert.Empty(t, bird.Calls)
	assert.Equal(t, []string{market.ProviderGeckoTerminal}, out.Record.Tried())
	assert.Equal(t, 1, out.Record.Items)
}

func TestOHLCUsecase_TimeframeFallbackThenSecondProvider(t *testing.T) {
	t.Parallel()

	gecko, bird, gt, bt := newSources()
	gecko.FetchCandlesFunc = func(ctx context.Context, network, pool string, tf market.Timeframe) ([]market.Candle, error) {
		if tf == market.TF15m {
			return nil, ErrUpstream
		}
		return []market.Candle{}, nil
	}
	bird.FetchCandlesFunc = func(ctx context.Context, network, pool string, tf market.Timeframe) ([]market.Candle, error) {
		if tf == market.TF5m {
			return []market.Candle{{Timestamp: 300, Open: 1, High: 1, Low: 1, Close: 1}}, nil
		}
		return nil, nil
	}
	uc := usecase.NewOHLCUsecase([]usecase.CandleSource{gecko, bird}, []usecase.TradeSource{gt, bt})

	out, err := uc.GetCandles(context.Background(), usecase.GetCandlesInput{PairID: "Pool111", Chain: "sol", Timeframe: "1m"})
	require.NoError(t, err)

	assert.Equal(t, market.ProviderBirdeye, out.Provider)
	assert.Equal(t, market.TF5m, out.EffectiveTimeframe)
	assert.Equal(t, market.TF1m, out.Timeframe)
	assert.Equal(t, []candleCall{
		{"solana", "Pool111", market.TF1m},
		{"solana", "Pool111", market.TF5m},
		{"solana", "Pool111", market.TF15m},
	}, gecko.Calls)
	assert.Equal(t, []candleCall{
		{"solana", "Pool111", market.TF1m},
		{"solana", "Pool111", market.TF5m},
	}, bird.Calls)
	assert.Zero(t, gt.FetchCalls)

	require.Len(t, out.Record.Attempts, 5)
	assert.Equal(t, "empty", out.Record.Attempts[0].Error)
	assert.Equal(t, ErrUpstream.Error(), out.Record.Attempts[2].Error)
	assert.Empty(t, out.Record.Attempts[4].Error)
	assert.Equal(t, []string{market.ProviderGeckoTerminal, market.ProviderBirdeye}, out.Record.Tried())
}

func TestOHLCUsecase_SyntheticFallback(t *testing.T) {
	t.Parallel()

	gecko, bird, gt, bt := newSources()
	gecko.FetchCandlesFunc = emptyCandles
	bird.FetchCandlesFunc = emptyCandles
	gt.FetchTradesFunc = func(ctx context.Context, network, pool string, limit int) ([]market.Trade, error) {
		assert.Equal(t, usecase.DefaultSynthesisTradeLimit, limit)
		return []market.Trade{
			{Timestamp: 1700000035, Side: market.Buy, Price: 2.5, AmountBase: amount(1)},
			{Timestamp: 1700000010, Side: market.Sell, Price: 2.5, AmountBase: amount(3)},
			{Timestamp: 1700000030, Side: market.Buy, Price: 2.5},
			{Timestamp: 1700000001, Side: market.Buy, Price: 2.5, AmountBase: amount(0.5)},
		}, nil
	}
	uc := usecase.NewOHLCUsecase([]usecase.CandleSource{gecko, bird}, []usecase.TradeSource{gt, bt})

	out, err := uc.GetCandles(context.Background(), usecase.GetCandlesInput{PairID: "0xpool", Chain: "base", Timeframe: "1m"})
	require.NoError(t, err)

	require.Len(t, out.Candles, 1)
	c := out.Candles[0]
	assert.Equal(t, market.ProviderSynthetic, out.Provider)
	assert.Equal(t, market.TF1m, out.EffectiveTimeframe)
	assert.Equal(t, int64(1699999980), c.Timestamp)
	assert.Equal(t, 2.5, c.Open)
	assert.Equal(t, 2.5, c.High)
	assert.Equal(t, 2.5, c.Low)
	assert.Equal(t, 2.5, c.Close)
	assert.Equal(t, 4.5, c.Volume)
	assert.Equal(t, 1, gt.FetchCalls)
	assert.Zero(t, bt.FetchCalls)
}

func TestOHLCUsecase_ExhaustionReturnsEmpty(t *testing.T) {
	t.Parallel()

	gecko, bird, gt, bt := newSources()
	gecko.FetchCandlesFunc = failingCandles
	bird.FetchCandlesFunc = emptyCandles
	gt.FetchTradesFunc = func(ctx context.Context, network, pool string, limit int) ([]market.Trade, error) {
		return nil, ErrUpstream
	}
	bt.FetchTradesFunc = func(ctx context.Context, network, pool string, limit int) ([]market.Trade, error) {
		return []market.Trade{}, nil
	}
	uc := usecase.NewOHLCUsecase([]usecase.CandleSource{gecko, bird}, []usecase.TradeSource{gt, bt})

	out, err := uc.GetCandles(context.Background(), usecase.GetCandlesInput{PairID: "0xpool", Chain: "ethereum", Timeframe: "4h"})
	require.NoError(t, err)

	assert.Equal(t, market.ProviderNone, out.Provider)
	assert.NotNil(t, out.Candles)
	assert.Empty(t, out.Candles)
	assert.Equal(t, market.TF4h, out.EffectiveTimeframe)
	assert.Equal(t, 1, gt.FetchCalls)
	assert.Equal(t, 1, bt.FetchCalls)
	// 3 gecko + 3 birdeye + 2 trade attempts
	assert.Len(t, out.Record.Attempts, 8)
	assert.Equal(t, market.ProviderNone, out.Record.Provider)
}

func TestOHLCUsecase_ForcedProvider(t *testing.T) {
	t.Parallel()

	gecko, bird, gt, bt := newSources()
	bird.FetchCandlesFunc = func(ctx context.Context, network, pool string, tf market.Timeframe) ([]market.Candle, error) {
		return []market.Candle{{Timestamp: 0, Open: 1, High: 1, Low: 1, Close: 1}}, nil
	}
	uc := usecase.NewOHLCUsecase([]usecase.CandleSource{gecko, bird}, []usecase.TradeSource{gt, bt})

	out, err := uc.GetCandles(context.Background(), usecase.GetCandlesInput{PairID: "0xpool", Chain: "bsc", Timeframe: "1d", Provider: "Birdeye"})
	require.NoError(t, err)

	assert.Equal(t, market.ProviderBirdeye, out.Provider)
	assert.Empty(t, gecko.Calls)
	assert.Equal(t, []candleCall{{"bsc", "0xpool", market.TF1d}}, bird.Calls)
}

func TestOHLCUsecase_ForcedSyntheticSkipsCandleProviders(t *testing.T) {
	t.Parallel()

	gecko, bird, gt, bt := newSources()
	bt.FetchTradesFunc = func(ctx context.Context, network, pool string, limit int) ([]market.Trade, error) {
		assert.Equal(t, "avalanche", network)
		return []market.Trade{{Timestamp: 1000, Side: market.Buy, Price: 3}}, nil
	}
	gt.FetchTradesFunc = func(ctx context.Context, network, pool string, limit int) ([]market.Trade, error) {
		return nil, ErrUpstream
	}
	uc := usecase.NewOHLCUsecase([]usecase.CandleSource{gecko, bird}, []usecase.TradeSource{gt, bt})

	out, err := uc.GetCandles(context.Background(), usecase.GetCandlesInput{PairID: "0xpool", Chain: "avax", Timeframe: "5m", Provider: "synthetic"})
	require.NoError(t, err)

	assert.Equal(t, market.ProviderSynthetic, out.Provider)
	assert.Equal(t, []market.Candle{{Timestamp: 900, Open: 3, High: 3, Low: 3, Close: 3}}, out.Candles)
	assert.Empty(t, gecko.Calls)
	assert.Empty(t, bird.Calls)
}

func TestOHLCUsecase_ProviderTimeoutIsAbsorbed(t *testing.T) {
	t.Parallel()

	gecko, bird, gt, bt := newSources()
	gecko.FetchCandlesFunc = func(ctx context.Context, network, pool string, tf market.Timeframe) ([]market.Candle, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	bird.FetchCandlesFunc = func(ctx context.Context, network, pool string, tf market.Timeframe) ([]market.Candle, error) {
		return []market.Candle{{Timestamp: 60, Open: 1, High: 1, Low: 1, Close: 1}}, nil
	}
	uc := usecase.NewOHLCUsecase([]usecase.CandleSource{gecko, bird}, []usecase.TradeSource{gt, bt},
		usecase.WithTimeout(10*time.Millisecond))

	start := time.Now()
	out, err := uc.GetCandles(context.Background(), usecase.GetCandlesInput{PairID: "0xpool", Chain: "arbitrum", Timeframe: "12h"})
	require.NoError(t, err)

	assert.Equal(t, market.ProviderBirdeye, out.Provider)
	assert.Len(t, gecko.Calls, 2)
	assert.Less(t, time.Since(start), time.Second)
}
