package middleware

import (
	"context"
	"log/slog"

	"pharmaguard/internal/ratelimit/metrics"
	"pharmaguard/internal/ratelimit/models"
	"pharmaguard/internal/ratelimit/ports"
	"pharmaguard/internal/ratelimit/store/bucket"
)

// Decision is the answer to one rate limit check.
type Decision struct {
	*models.RateLimitResult
	// Degraded is set when the in-memory fallback answered instead of the
	// primary store.
	Degraded bool
}

// Limiter applies a per-IP sliding window against a primary store and
// switches to an in-memory fallback while the primary keeps failing.
type Limiter struct {
	primary  ports.BucketStore
	fallback ports.BucketStore
	breaker  *CircuitBreaker
	limit    models.Limit
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// LimiterOption configures a Limiter.
type LimiterOption func(*Limiter)

// WithFallback replaces the in-memory fallback store. Passing nil disables
// the fallback so primary errors always reach the caller.
func WithFallback(store ports.BucketStore) LimiterOption {
	return func(l *Limiter) {
		l.fallback = store
	}
}

// WithBreakerThresholds sets how many consecutive failures open the circuit
// and how many consecutive successes close it again.
func WithBreakerThresholds(failures, successes int) LimiterOption {
	return func(l *Limiter) {
		l.breaker = newCircuitBreaker(failures, successes)
	}
}

func WithLimiterLogger(logger *slog.Logger) LimiterOption {
	return func(l *Limiter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func WithLimiterMetrics(m *metrics.Metrics) LimiterOption {
	return func(l *Limiter) {
		l.metrics = m
	}
}

// NewLimiter creates a Limiter enforcing limit against primary.
func NewLimiter(primary ports.BucketStore, limit models.Limit, opts ...LimiterOption) *Limiter {
	l := &Limiter{
		primary:  primary,
		fallback: bucket.New(),
		breaker:  newCircuitBreaker(0, 0),
		limit:    limit,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Limit returns the enforced budget.
func (l *Limiter) Limit() models.Limit {
	return l.limit
}

// CheckIP records one request for ip under scope.
func (l *Limiter) CheckIP(ctx context.Context, ip, scope string) (*Decision, error) {
	key := models.NewIPRateLimitKey(ip, scope)
	wasOpen := l.breaker.IsOpen()

	result, err := l.primary.Allow(ctx, key, l.limit.RequestsPerWindow, l.limit.Window)
	if err != nil {
		l.metrics.IncrementStoreErrors()
		open := l.breaker.RecordFailure()
		if open && !wasOpen {
			l.logger.Warn("rate limit store failing, using in-memory fallback", "error", err)
			l.metrics.SetFallbackActive(true)
		}
		if !open || l.fallback == nil {
			return nil, err
		}
		return l.fromFallback(ctx, key)
	}

	closed := l.breaker.RecordSuccess()
	if wasOpen && !closed && l.fallback != nil {
		// Answer from the fallback until the circuit closes.
		return l.fromFallback(ctx, key)
	}
	if wasOpen && closed {
		l.logger.Info("rate limit store recovered")
		l.metrics.SetFallbackActive(false)
	}
	return &Decision{RateLimitResult: result}, nil
}

func (l *Limiter) fromFallback(ctx context.Context, key string) (*Decision, error) {
	result, err := l.fallback.Allow(ctx, key, l.limit.RequestsPerWindow, l.limit.Window)
	if err != nil {
		return nil, err
	}
	return &Decision{RateLimitResult: result, Degraded: true}, nil
}
