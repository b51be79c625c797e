// Package cache holds the Redis-backed read-through cache for event rows.
package cache

import (
	"context"
	"crypto/tls"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lorrc/event-board/internal/config"
)

// NewRedisClient connects to Redis. It returns nil when Redis is disabled
// or unreachable, and callers fall back to the database.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) *redis.Client {
	if !cfg.Enabled {
		return nil
	}

	var tlsConf *tls.Config
	if cfg.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(&redis.Options{
		Addr:      cfg.Addr,
		Password:  cfg.Password,
		DB:        cfg.DB,
		TLSConfig: tlsConf,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, event cache disabled", "addr", cfg.Addr, "error", err)
		_ = client.Close()
		return nil
	}

	logger.Info("redis connected", "addr", cfg.Addr)
	return client
}
