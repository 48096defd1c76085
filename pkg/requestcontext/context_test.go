package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccessors_ZeroValues(t *testing.T) {
	ctx := context.Background()

	assert.True(t, Principal(ctx).IsZero())
	assert.Empty(t, RequestID(ctx))
	assert.Empty(t, ClientIP(ctx))
	assert.Empty(t, UserAgent(ctx))
	assert.WithinDuration(t, time.Now(), Now(ctx), time.Second)
}

func TestAccessors_RoundTrip(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ctx := context.Background()
	ctx = WithPrincipal(ctx, AuthPrincipal{Subject: "Pfizer", Role: "manufacturer"})
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithClientMetadata(ctx, "10.0.0.1", "curl/8")
	ctx = WithTime(ctx, fixed)

	assert.Equal(t, "Pfizer", Principal(ctx).Subject)
	assert.Equal(t, "manufacturer", Principal(ctx).Role)
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "10.0.0.1", ClientIP(ctx))
	assert.Equal(t, "curl/8", UserAgent(ctx))
	assert.Equal(t, fixed, Now(ctx))
}
