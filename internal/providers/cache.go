package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"provider-funnel/internal/common/database"
	"provider-funnel/internal/common/logger"
	"provider-funnel/internal/common/metrics"
	"provider-funnel/internal/models"

	"github.com/redis/go-redis/v9"
)

// CachedSource is a read-through Redis cache in front of another source.
// Cache failures fall back to the wrapped source.
type CachedSource struct {
	next   Source
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedSource(next Source, rdb *database.RedisClient, ttl time.Duration, log logger.Logger) *CachedSource {
	return &CachedSource{
		next:   next,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "provider-cache"}),
	}
}

func cacheKey(category string) string {
	return fmt.Sprintf("providers:%s", category)
}

func (s *CachedSource) Providers(ctx context.Context, category string) ([]models.Provider, error) {
	key := cacheKey(category)

	raw, err := s.redis.Get(ctx, key)
	switch {
	case err == nil:
		var list []models.Provider
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			metrics.ProviderCacheLookups.WithLabelValues("hit").Inc()
			return list, nil
		}
		metrics.ProviderCacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("discarding corrupt provider cache entry", map[string]interface{}{"key": key})
	case errors.Is(err, redis.Nil):
		metrics.ProviderCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.ProviderCacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("provider cache read failed", map[string]interface{}{"key": key, "error": err})
	}

	list, err := s.next.Providers(ctx, category)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(list); err == nil {
		if err := s.redis.Set(ctx, key, data, s.ttl); err != nil {
			s.logger.Warn("provider cache write failed", map[string]interface{}{"key": key, "error": err})
		}
	}
	return list, nil
}

// Invalidate drops the cached list for category.
func (s *CachedSource) Invalidate(ctx context.Context, category string) error {
	return s.redis.Del(ctx, cacheKey(category))
}
