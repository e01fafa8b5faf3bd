// Package fallback runs single provider calls for the endpoint state machines.
//
// A call is always bounded by its own timeout and its outcome is recorded on the request's
// AttemptRecord. Errors and empty results are absorbed the same way: the caller gets nil and moves on
// to the next provider or timeframe.
package fallback

import (
	"context"
	"log/slog"
	"time"

	"token_backend/internal/shared/market"
)

// EmptyResult is the attempt error text recorded for a successful call that returned no items.
const EmptyResult = "empty"

// DefaultTimeout bounds a provider call when no timeout is configured.
const DefaultTimeout = 6 * time.Second

// Do calls fn under timeout and records a on rec. It returns the items only when fn succeeded with at
// least one item. logArgs are appended to the warning logged on failure.
func Do[T any](ctx context.Context, timeout time.Duration, rec *market.AttemptRecord, a market.Attempt,
	fn func(ctx context.Context) ([]T, error), logArgs ...any) []T {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	items, err := fn(callCtx)
	a.Items = len(items)

	switch {
	case err != nil:
		a.Items = 0
		a.Error = err.Error()
		args := []any{"provider", a.Provider, "kind", a.Kind, "error", err, "elapsed", time.Since(start)}
		if a.Timeframe != "" {
			args = append(args, "tf", a.Timeframe)
		}
		slog.Warn("provider call failed", append(args, logArgs...)...)
	case len(items) == 0:
		a.Error = EmptyResult
		slog.Debug("provider returned no items", append([]any{"provider", a.Provider, "kind", a.Kind, "tf", a.Timeframe}, logArgs...)...)
	}

	if rec != nil {
		rec.Add(a)
	}
	if a.Error != "" {
		return nil
	}
	return items
}

// One adapts a single-value fetch to Do. ok reports whether the value is usable.
func One[T any](fetch func(ctx context.Context) (T, error), ok func(T) bool) func(ctx context.Context) ([]T, error) {
	return func(ctx context.Context) ([]T, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if ok != nil && !ok(v) {
			return nil, nil
		}
		return []T{v}, nil
	}
}
