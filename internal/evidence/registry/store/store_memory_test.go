package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaguard/internal/evidence/registry"
	"pharmaguard/pkg/platform/sentinel"
)

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := NewInMemoryCache(5 * time.Minute)
	cache.now = func() time.Time { return now }

	records := []registry.DrugRecord{{BrandName: "Lipitor", LabelerName: "Pfizer", ProductNDC: "0071-0155"}}

	t.Run("miss before save", func(t *testing.T) {
		_, err := cache.FindLookup(ctx, "0071-0155-23")
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("hit within ttl", func(t *testing.T) {
		require.NoError(t, cache.SaveLookup(ctx, "0071-0155-23", records))
		now = now.Add(4 * time.Minute)
		got, err := cache.FindLookup(ctx, "0071-0155-23")
		require.NoError(t, err)
		assert.Equal(t, records, got)
	})

	t.Run("expired after ttl", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		_, err := cache.FindLookup(ctx, "0071-0155-23")
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("empty results are not cached", func(t *testing.T) {
		require.NoError(t, cache.SaveLookup(ctx, "9999-9999-99", nil))
		_, err := cache.FindLookup(ctx, "9999-9999-99")
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("callers cannot mutate cached records", func(t *testing.T) {
		require.NoError(t, cache.SaveLookup(ctx, "0002-1433-80", records))
		got, err := cache.FindLookup(ctx, "0002-1433-80")
		require.NoError(t, err)
		got[0].BrandName = "changed"

		again, err := cache.FindLookup(ctx, "0002-1433-80")
		require.NoError(t, err)
		assert.Equal(t, "Lipitor", again[0].BrandName)
	})
}
