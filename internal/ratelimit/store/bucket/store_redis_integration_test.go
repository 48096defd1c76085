//go:build integration

package bucket_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"pharmaguard/internal/ratelimit/store/bucket"
	"pharmaguard/pkg/testutil/containers"
)

type RedisBucketStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	now   time.Time
	mu    sync.Mutex
	store *bucket.RedisBucketStore
}

func TestRedisBucketStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisBucketStoreSuite))
}

func (s *RedisBucketStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = bucket.NewRedis(s.redis.Client, bucket.WithRedisClock(s.clock))
}

func (s *RedisBucketStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.setNow(time.Now().Truncate(time.Millisecond))
}

func (s *RedisBucketStoreSuite) clock() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *RedisBucketStoreSuite) setNow(t time.Time) {
	s.mu.Lock()
	s.now = t
	s.mu.Unlock()
}

func (s *RedisBucketStoreSuite) TestAllowUpToLimit() {
	ctx := context.Background()
	for i := range 3 {
		result, err := s.store.Allow(ctx, "ip:limit", 3, time.Minute)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(2-i, result.Remaining)
	}

	result, err := s.store.Allow(ctx, "ip:limit", 3, time.Minute)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Equal(0, result.Remaining)
	s.Equal(3, result.Limit)
	s.Equal(60, result.RetryAfter)

	count, err := s.store.GetCurrentCount(ctx, "ip:limit")
	s.Require().NoError(err)
	s.Equal(3, count)
}

func (s *RedisBucketStoreSuite) TestWindowSlides() {
	ctx := context.Background()
	start := s.clock()
	for range 2 {
		_, err := s.store.Allow(ctx, "ip:slide", 2, time.Minute)
		s.Require().NoError(err)
	}

	s.setNow(start.Add(time.Minute + time.Millisecond))
	result, err := s.store.Allow(ctx, "ip:slide", 2, time.Minute)
	s.Require().NoError(err)
	s.True(result.Allowed)
	s.Equal(1, result.Remaining)
}

func (s *RedisBucketStoreSuite) TestReset() {
	ctx := context.Background()
	_, err := s.store.Allow(ctx, "ip:reset", 1, time.Minute)
	s.Require().NoError(err)

	s.Require().NoError(s.store.Reset(ctx, "ip:reset"))

	result, err := s.store.Allow(ctx, "ip:reset", 1, time.Minute)
	s.Require().NoError(err)
	s.True(result.Allowed)
}

func (s *RedisBucketStoreSuite) TestConcurrentCallersShareLimit() {
	ctx := context.Background()
	var allowed atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			result, err := s.store.Allow(ctx, "ip:concurrent", 20, time.Minute)
			if err == nil && result.Allowed {
				allowed.Add(1)
			}
		})
	}
	wg.Wait()
	s.Equal(int32(20), allowed.Load())
}
