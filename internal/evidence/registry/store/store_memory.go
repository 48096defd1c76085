package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"pharmaguard/internal/evidence/registry"
	"pharmaguard/pkg/platform/sentinel"
)

type cachedLookup struct {
	records  []registry.DrugRecord
	storedAt time.Time
}

// InMemoryCache keeps registry lookups per NDC for a fixed TTL.
type InMemoryCache struct {
	mu       sync.RWMutex
	lookups  map[string]cachedLookup
	cacheTTL time.Duration
	now      func() time.Time
}

// NewInMemoryCache creates a new in-memory cache with the specified TTL.
func NewInMemoryCache(cacheTTL time.Duration) *InMemoryCache {
	return &InMemoryCache{
		lookups:  make(map[string]cachedLookup),
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// SaveLookup stores the records found for code. Empty results are ignored.
func (c *InMemoryCache) SaveLookup(_ context.Context, code string, records []registry.DrugRecord) error {
	if len(records) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookups[code] = cachedLookup{records: slices.Clone(records), storedAt: c.now()}
	return nil
}

// FindLookup returns the cached records for code, or sentinel.ErrNotFound
// when nothing fresh is cached.
func (c *InMemoryCache) FindLookup(_ context.Context, code string) ([]registry.DrugRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if cached, ok := c.lookups[code]; ok {
		if c.now().Sub(cached.storedAt) < c.cacheTTL {
			return slices.Clone(cached.records), nil
		}
	}
	return nil, sentinel.ErrNotFound
}
