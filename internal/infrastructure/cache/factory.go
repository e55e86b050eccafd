package cache

import (
	"go.uber.org/zap"

	"github.com/reparto/backend/internal/domain/shared"
	"github.com/reparto/backend/internal/infrastructure/config"
)

// NewIdempotencyStore picks the store implementation for the deployment:
// Redis when a host is configured, in-memory otherwise. A Redis connection
// failure falls back to in-memory with a warning rather than refusing to
// start, since losing dedup across restarts is tolerable here.
func NewIdempotencyStore(cfg config.RedisConfig, logger *zap.Logger) shared.IdempotencyStore {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Host == "" {
		logger.Info("no redis host configured, using in-memory idempotency store")
		return NewInMemoryIdempotencyStore()
	}

	store, err := NewRedisIdempotencyStore(cfg)
	if err != nil {
		logger.Warn("redis unavailable, falling back to in-memory idempotency store",
			zap.String("host", cfg.Host),
			zap.Error(err),
		)
		return NewInMemoryIdempotencyStore()
	}

	logger.Info("using redis idempotency store", zap.String("host", cfg.Host))
	return store
}
