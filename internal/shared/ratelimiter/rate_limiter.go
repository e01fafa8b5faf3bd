// Package ratelimiter throttles outbound calls to a single upstream provider.
package ratelimiter

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"
)

// RateLimiterInterface は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	Wait(ctx context.Context) error
}

// RateLimiter は、1秒あたり perSecond 回・最大 burst 回までの呼び出しを許可するトークンバケットです。
type RateLimiter struct {
	name    string
	limiter *rate.Limiter
}

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。perSecond が0以下の場合は制限しません。
func NewRateLimiter(name string, perSecond float64, burst int) *RateLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{name: name, limiter: rate.NewLimiter(limit, burst)}
}

// Wait は呼び出しが許可されるまで待機します。
// ctx の期限までにトークンが得られない場合は、待たずに即座にエラーを返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil {
		return nil
	}
	if err := rl.limiter.Wait(ctx); err != nil {
		slog.Debug("rate limit wait aborted", "provider", rl.name, "error", err)
		return fmt.Errorf("%s rate limit: %w", rl.name, err)
	}
	return nil
}
