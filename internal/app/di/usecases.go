package di

import (
	"time"

	"github.com/redis/go-redis/v9"

	ohlchandler "token_backend/internal/feature/ohlc/transport/handler"
	ohlcusecase "token_backend/internal/feature/ohlc/usecase"
	pairshandler "token_backend/internal/feature/pairs/transport/handler"
	pairsusecase "token_backend/internal/feature/pairs/usecase"
	tokenhandler "token_backend/internal/feature/token/transport/handler"
	tokenusecase "token_backend/internal/feature/token/usecase"
	tradeshandler "token_backend/internal/feature/trades/transport/handler"
	tradesusecase "token_backend/internal/feature/trades/usecase"
	"token_backend/internal/platform/cache"
)

// Handlers groups the HTTP handlers of every data endpoint.
type Handlers struct {
	OHLC   *ohlchandler.OHLCHandler
	Trades *tradeshandler.TradesHandler
	Pairs  *pairshandler.PairsHandler
	Token  *tokenhandler.TokenHandler
}

// NewHandlers wires providers into the endpoint orchestrators in priority order.
// Candle and trade sources are wrapped with the Redis cache; a nil rdb disables caching.
func NewHandlers(p *Providers, rdb *redis.Client, cacheTTL, timeout time.Duration) *Handlers {
	candleSources := []ohlcusecase.CandleSource{
		cache.NewCachingCandleSource(rdb, cacheTTL, p.GeckoTerminal, "ohlc"),
	}
	tradeSources := []tradesusecase.TradeSource{
		cache.NewCachingTradeSource(rdb, cacheTTL, p.GeckoTerminal, "trades"),
	}
	if p.Birdeye != nil {
		candleSources = append(candleSources, cache.NewCachingCandleSource(rdb, cacheTTL, p.Birdeye, "ohlc"))
		tradeSources = append(tradeSources, cache.NewCachingTradeSource(rdb, cacheTTL, p.Birdeye, "trades"))
	}
	synthSources := make([]ohlcusecase.TradeSource, 0, len(tradeSources))
	for _, s := range tradeSources {
		synthSources = append(synthSources, s)
	}

	ohlcUC := ohlcusecase.NewOHLCUsecase(candleSources, synthSources, ohlcusecase.WithTimeout(timeout))
	tradesUC := tradesusecase.NewTradesUsecase(tradeSources, timeout)
	pairsUC := pairsusecase.NewPairsUsecase(
		[]pairsusecase.PoolSource{p.GeckoTerminal, p.DexScreener},
		[]pairsusecase.TokenSource{p.GoPlus},
		timeout,
	)
	tokenUC := tokenusecase.NewTokenUsecase(
		[]tokenusecase.TokenSource{p.GeckoTerminal, p.DexScreener, p.GoPlus},
		timeout,
	)

	return &Handlers{
		OHLC:   ohlchandler.NewOHLCHandler(ohlcUC),
		Trades: tradeshandler.NewTradesHandler(tradesUC),
		Pairs:  pairshandler.NewPairsHandler(pairsUC),
		Token:  tokenhandler.NewTokenHandler(tokenUC),
	}
}
