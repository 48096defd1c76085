package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pharmaguard/internal/evidence/registry"
	"pharmaguard/pkg/platform/sentinel"
)

const lookupKeyPrefix = "pharmaguard:ndc:"

// RedisCache shares registry lookups between replicas.
type RedisCache struct {
	client   *redis.Client
	cacheTTL time.Duration
}

// NewRedisCache constructs a Redis-backed lookup cache.
func NewRedisCache(client *redis.Client, cacheTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, cacheTTL: cacheTTL}
}

// SaveLookup stores the records found for code with the cache TTL.
func (c *RedisCache) SaveLookup(ctx context.Context, code string, records []registry.DrugRecord) error {
	if len(records) == 0 {
		return nil
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode registry lookup: %w", err)
	}
	return c.client.Set(ctx, lookupKeyPrefix+code, payload, c.cacheTTL).Err()
}

// FindLookup returns the cached records for code, or sentinel.ErrNotFound.
func (c *RedisCache) FindLookup(ctx context.Context, code string) ([]registry.DrugRecord, error) {
	payload, err := c.client.Get(ctx, lookupKeyPrefix+code).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var records []registry.DrugRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("decode registry lookup: %w", err)
	}
	return records, nil
}
