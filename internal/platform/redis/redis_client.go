package redis

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"token_backend/internal/platform/env"
)

// ErrNotConfigured はREDIS_HOSTが未設定でキャッシュを使わないことを示します。
var ErrNotConfigured = errors.New("redis not configured")

// Config はRedis接続設定です。
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// LoadConfig は環境変数からRedis接続設定を読み込みます。
func LoadConfig() Config {
	return Config{
		Host:     env.String("REDIS_HOST", ""),
		Port:     env.String("REDIS_PORT", "6379"),
		Password: env.String("REDIS_PASSWORD", ""),
		DB:       env.Int("REDIS_DB", 0),
	}
}

// Addr は host:port 形式のアドレスを返します。
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NewRedisClient はRedisクライアントを生成し、接続を確認します。
// Hostが空の場合は ErrNotConfigured を返します。
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.Host == "" {
		return nil, ErrNotConfigured
	}
	addr := cfg.Addr()

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 接続確認
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", addr)
	return rdb, nil
}
