// Package server assembles the HTTP server from configuration and runs it until the context is cancelled.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"

	"token_backend/internal/app/config"
	"token_backend/internal/app/di"
	"token_backend/internal/app/router"
	infraredis "token_backend/internal/platform/redis"
)

// SetupLogger installs a JSON slog handler at the configured level as the default logger.
func SetupLogger(cfg *config.Config) {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
}

// NewEngine builds the gin engine with every provider and the optional Redis cache wired in.
func NewEngine(cfg *config.Config, rdb *redisv9.Client) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	h := di.NewHandlers(di.NewProviders(), rdb, cfg.CacheTTL, cfg.ProviderTimeout)
	return router.NewRouter(router.Options{
		CORSMaxAge:     cfg.CORSMaxAge,
		ResponseMaxAge: cfg.ResponseMaxAge,
		ResponseSWR:    cfg.ResponseSWR,
	}, h.OHLC, h.Trades, h.Pairs, h.Token)
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config) error {
	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("Failed to close Redis client", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           NewEngine(cfg, rdb),
		ReadHeaderTimeout: cfg.ProviderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "cache", rdb != nil)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
