package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/metrics"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/models"
)

// ErrCacheMiss is returned by Cache.Get for absent keys.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a byte cache with expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// =============================================
// REDIS CACHE
// =============================================

// RedisCache implements Cache on a Redis client.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return b, err
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// =============================================
// READ-THROUGH CACHED STORE
// =============================================

const cachePrefix = "dash:"

// CachedStore serves Store reads from a Cache and fills it on miss. Cache
// failures are logged and fall through to the backing store.
type CachedStore struct {
	next    Store
	cache   Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewCachedStore(next Store, cache Cache, ttl time.Duration, m *metrics.Metrics, logger *zap.Logger) *CachedStore {
	return &CachedStore{next: next, cache: cache, ttl: ttl, metrics: m, logger: logger}
}

func cacheKey(product, table string, parts ...string) string {
	return cachePrefix + product + ":" + table + ":" + strings.Join(parts, ":")
}

// Invalidate drops every cached entry of a product.
func (s *CachedStore) Invalidate(ctx context.Context, product string) error {
	prefix := cachePrefix
	if product != "" {
		prefix += product + ":"
	}
	if err := s.cache.DeletePrefix(ctx, prefix); err != nil {
		return fmt.Errorf("failed to invalidate cache for %s: %w", product, err)
	}
	return nil
}

// readThrough is generic over the row type, so it is a function and not a method.
func readThrough[T any](ctx context.Context, s *CachedStore, table, key string, load func() (T, error)) (T, error) {
	if b, err := s.cache.Get(ctx, key); err == nil {
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			s.metrics.RecordCacheLookup(table, true)
			return v, nil
		}
		s.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	} else if !errors.Is(err, ErrCacheMiss) {
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}
	s.metrics.RecordCacheLookup(table, false)

	v, err := load()
	if err != nil {
		return v, err
	}

	b, err := json.Marshal(v)
	if err != nil {
		return v, nil
	}
	if err := s.cache.Set(ctx, key, b, s.ttl); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

func (s *CachedStore) DailySummaries(ctx context.Context, product, start, end string) ([]models.DailySummary, error) {
	return readThrough(ctx, s, TableDailySummary, cacheKey(product, TableDailySummary, start, end), func() ([]models.DailySummary, error) {
		return s.next.DailySummaries(ctx, product, start, end)
	})
}

func (s *CachedStore) LatestDailySummaryDate(ctx context.Context, product string) (string, error) {
	return readThrough(ctx, s, TableDailySummary, cacheKey(product, TableDailySummary, "latest"), func() (string, error) {
		return s.next.LatestDailySummaryDate(ctx, product)
	})
}

func (s *CachedStore) AdCreatives(ctx context.Context, product, start, end string) ([]models.AdCreative, error) {
	return readThrough(ctx, s, TableAdCreatives, cacheKey(product, TableAdCreatives, start, end), func() ([]models.AdCreative, error) {
		return s.next.AdCreatives(ctx, product, start, end)
	})
}

func (s *CachedStore) UnattributedLeads(ctx context.Context, product, start, end string) ([]models.UnattributedLead, error) {
	return readThrough(ctx, s, TableUnattributedLeads, cacheKey(product, TableUnattributedLeads, start, end), func() ([]models.UnattributedLead, error) {
		return s.next.UnattributedLeads(ctx, product, start, end)
	})
}
