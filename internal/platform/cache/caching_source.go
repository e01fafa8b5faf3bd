// Package cache provides Redis-backed decorators for the provider source interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	ohlcusecase "token_backend/internal/feature/ohlc/usecase"
	tradesusecase "token_backend/internal/feature/trades/usecase"
	"token_backend/internal/shared/market"
)

// DefaultTTL is used when a decorator is constructed with a non-positive ttl.
const DefaultTTL = 30 * time.Second

var (
	_ ohlcusecase.CandleSource  = (*CachingCandleSource)(nil)
	_ ohlcusecase.TradeSource   = (*CachingTradeSource)(nil)
	_ tradesusecase.TradeSource = (*CachingTradeSource)(nil)
)

// CachingCandleSource decorates a CandleSource with Redis caching.
// Only non-empty results are stored, so a provider that has no data yet is asked again on the next request.
type CachingCandleSource struct {
	inner     ohlcusecase.CandleSource
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	now       func() time.Time
}

// NewCachingCandleSource decorates a CandleSource with Redis caching.
// If ttl is 0, it defaults to DefaultTTL. If namespace is empty, it uses "ohlc".
func NewCachingCandleSource(rdb *redis.Client, ttl time.Duration, inner ohlcusecase.CandleSource, namespace string) *CachingCandleSource {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if namespace == "" {
		namespace = "ohlc"
	}
	return &CachingCandleSource{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
		now:       time.Now,
	}
}

// Name returns the wrapped provider's identifier.
func (c *CachingCandleSource) Name() string { return c.inner.Name() }

// FetchCandles returns candles from the cache, falling back to the wrapped provider.
func (c *CachingCandleSource) FetchCandles(ctx context.Context, network, pool string, tf market.Timeframe) ([]market.Candle, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.FetchCandles(ctx, network, pool, tf)
	}

	key := cacheKey(c.namespace, c.inner.Name(), network, pool, tf.String())
	if out, ok := load[market.Candle](ctx, c.rdb, key); ok {
		return out, nil
	}

	out, err := c.inner.FetchCandles(ctx, network, pool, tf)
	if err != nil || len(out) == 0 {
		return out, err
	}

	// The last bar is still forming, so it must not outlive its bucket.
	ttl := c.ttl
	if until := TimeUntilNextBucket(c.now(), time.Duration(tf.Seconds())*time.Second); until > 0 && until < ttl {
		ttl = until
	}
	if ttl < time.Second {
		ttl = time.Second
	}
	store(ctx, c.rdb, key, out, ttl)
	return out, nil
}

// CachingTradeSource decorates a TradeSource with Redis caching.
type CachingTradeSource struct {
	inner     tradesusecase.TradeSource
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingTradeSource decorates a TradeSource with Redis caching.
// If ttl is 0, it defaults to DefaultTTL. If namespace is empty, it uses "trades".
func NewCachingTradeSource(rdb *redis.Client, ttl time.Duration, inner tradesusecase.TradeSource, namespace string) *CachingTradeSource {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if namespace == "" {
		namespace = "trades"
	}
	return &CachingTradeSource{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Name returns the wrapped provider's identifier.
func (c *CachingTradeSource) Name() string { return c.inner.Name() }

// FetchTrades returns trades from the cache, falling back to the wrapped provider.
func (c *CachingTradeSource) FetchTrades(ctx context.Context, network, pool string, limit int) ([]market.Trade, error) {
	if c.rdb == nil {
		return c.inner.FetchTrades(ctx, network, pool, limit)
	}

	key := cacheKey(c.namespace, c.inner.Name(), network, pool, fmt.Sprint(limit))
	if out, ok := load[market.Trade](ctx, c.rdb, key); ok {
		return out, nil
	}

	out, err := c.inner.FetchTrades(ctx, network, pool, limit)
	if err != nil || len(out) == 0 {
		return out, err
	}
	store(ctx, c.rdb, key, out, c.ttl)
	return out, nil
}

// load reads a cached slice. Corrupted or empty entries are deleted and reported as a miss.
func load[T any](ctx context.Context, rdb *redis.Client, key string) ([]T, bool) {
	b, err := rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return nil, false
	}
	var out []T
	if err := json.Unmarshal(b, &out); err == nil && len(out) > 0 {
		return out, true
	}
	// Delete corrupted cache entry
	_ = rdb.Del(ctx, key).Err()
	return nil, false
}

// store writes a slice to the cache (best effort).
func store[T any](ctx context.Context, rdb *redis.Client, key string, v []T, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := rdb.Set(ctx, key, b, ttl).Err(); err != nil {
		slog.Debug("cache store failed", "key", key, "error", err)
	}
}

// cacheKey generates a cache key for a specific provider query.
func cacheKey(namespace, provider, network, pool, variant string) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s",
		namespace,
		safe(provider),
		safe(network),
		safe(pool),
		safe(variant),
	)
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
