package cache

import (
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/salescrm/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Backend bundles the cache and, when Redis is in use, its client so other
// components (token blacklist) can share the connection
type Backend struct {
	Cache  Cache
	Client *redis.Client
	closer func() error
}

// Close releases the Redis connection or stops the in-memory purge loop
func (b *Backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer()
}

// IsRedis reports whether the backend talks to Redis
func (b *Backend) IsRedis() bool {
	return b.Client != nil
}

// NewBackend connects to Redis when enabled. When Redis is disabled or
// unreachable it falls back to an in-memory cache and logs a warning.
func NewBackend(cfg config.RedisConfig, logger *zap.Logger) *Backend {
	if cfg.Enabled {
		client, err := NewRedisClient(cfg)
		if err == nil {
			logger.Info("using Redis cache", zap.String("addr", cfg.Addr()))
			return &Backend{Cache: NewRedisCache(client, ""), Client: client, closer: client.Close}
		}
		logger.Warn("Redis unavailable, falling back to in-memory cache. "+
			"Cached dashboards and revoked tokens will not be shared between instances.",
			zap.Error(err),
		)
	}
	mem := NewInMemoryCache(5 * time.Minute)
	return &Backend{Cache: mem, closer: mem.Close}
}
