package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/vipride/booking-assistant/internal/config"
	"github.com/vipride/booking-assistant/internal/conversation"
	"github.com/vipride/booking-assistant/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildSessionStore picks the live session store named by SESSION_BACKEND.
func BuildSessionStore(cfg *appconfig.Config, redisClient *redis.Client, logger *logging.Logger) (conversation.SessionStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	switch cfg.SessionBackend {
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("bootstrap: session backend redis requires a reachable REDIS_ADDR")
		}
		logger.Info("using redis session store", "ttl", cfg.SessionTTL.String())
		return conversation.NewRedisSessionStore(redisClient, cfg.SessionTTL)
	case "", "memory":
		logger.Info("using in-memory session store")
		return conversation.NewMemorySessionStore(), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown session backend %q", cfg.SessionBackend)
	}
}

// BuildSnapshotStore returns the Postgres mirror, or nil when no database is configured.
func BuildSnapshotStore(sqlDB *sql.DB) conversation.SnapshotStore {
	if sqlDB == nil {
		return nil
	}
	return conversation.NewPostgresSnapshotStore(sqlDB)
}
