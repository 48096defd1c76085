package bucket

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"pharmaguard/internal/ratelimit/models"
)

// slidingWindowScript runs the whole check in one atomic step, so replicas
// sharing a key never admit more than limit requests per window.
//
// KEYS[1] = bucket key
// ARGV[1] = now (unix ms)
// ARGV[2] = window (ms)
// ARGV[3] = limit
// ARGV[4] = unique member for this request
//
// Returns {allowed, count, oldest_ms}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call("ZREMRANGEBYSCORE", key, "-inf", now - window)
local count = redis.call("ZCARD", key)
local allowed = 0
if count < limit then
    redis.call("ZADD", key, now, ARGV[4])
    redis.call("PEXPIRE", key, window)
    count = count + 1
    allowed = 1
end

local oldest = now
local head = redis.call("ZRANGE", key, 0, 0, "WITHSCORES")
if head[2] then
    oldest = tonumber(head[2])
end
return {allowed, count, oldest}
`)

// RedisBucketStore implements ports.BucketStore on Redis sorted sets, one
// set per key scored by request time.
type RedisBucketStore struct {
	client *redis.Client
	now    func() time.Time
}

// RedisOption configures a RedisBucketStore.
type RedisOption func(*RedisBucketStore)

// WithRedisClock overrides the time source used to score requests.
func WithRedisClock(now func() time.Time) RedisOption {
	return func(s *RedisBucketStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewRedis constructs a Redis-backed bucket store.
func NewRedis(client *redis.Client, opts ...RedisOption) *RedisBucketStore {
	s := &RedisBucketStore{client: client, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow checks if a request is allowed and records it when it is.
func (s *RedisBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	now := s.now()
	res, err := slidingWindowScript.Run(ctx, s.client, []string{key},
		now.UnixMilli(), window.Milliseconds(), limit, uuid.NewString(),
	).Result()
	if err != nil {
		return nil, fmt.Errorf("redis sliding window: %w", err)
	}

	values, ok := res.([]any)
	if !ok || len(values) != 3 {
		return nil, fmt.Errorf("redis sliding window: unexpected reply %T", res)
	}
	allowed, _ := values[0].(int64)
	count, _ := values[1].(int64)
	oldest, _ := values[2].(int64)

	result := &models.RateLimitResult{
		Allowed:   allowed == 1,
		Limit:     limit,
		Remaining: max(limit-int(count), 0),
		ResetAt:   time.UnixMilli(oldest).Add(window),
	}
	return result.WithRetryAfter(now), nil
}

// Reset clears the rate limit counter for a key.
func (s *RedisBucketStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// GetCurrentCount returns the number of recorded requests for a key. Entries
// older than the window are only pruned by the next Allow, so the count can
// briefly overstate usage.
func (s *RedisBucketStore) GetCurrentCount(ctx context.Context, key string) (int, error) {
	n, err := s.client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
