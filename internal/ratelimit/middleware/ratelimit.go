package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"pharmaguard/internal/ratelimit/metrics"
	"pharmaguard/internal/ratelimit/models"
	"pharmaguard/internal/ratelimit/ports"
	dErrors "pharmaguard/pkg/domain-errors"
	"pharmaguard/pkg/platform/audit"
	"pharmaguard/pkg/platform/httputil"
	"pharmaguard/pkg/platform/middleware/metadata"
	"pharmaguard/pkg/platform/privacy"
	"pharmaguard/pkg/requestcontext"
)

const (
	headerLimit     = "X-RateLimit-Limit"
	headerRemaining = "X-RateLimit-Remaining"
	headerReset     = "X-RateLimit-Reset"
	headerStatus    = "X-RateLimit-Status"
	headerRetry     = "Retry-After"
)

// RateLimiter decides whether a client IP may proceed.
type RateLimiter interface {
	CheckIP(ctx context.Context, ip, scope string) (*Decision, error)
}

// Middleware enforces per-IP rate limits on HTTP routes.
type Middleware struct {
	limiter  RateLimiter
	logger   *slog.Logger
	auditor  ports.AuditPublisher
	metrics  *metrics.Metrics
	disabled bool
}

// Option configures a Middleware.
type Option func(*Middleware)

// WithDisabled turns the middleware into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// WithAuditPublisher emits a rate_limit_exceeded event for every rejection.
func WithAuditPublisher(p ports.AuditPublisher) Option {
	return func(m *Middleware) {
		m.auditor = p
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

// New creates rate limit middleware around limiter.
func New(limiter RateLimiter, logger *slog.Logger, opts ...Option) *Middleware {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Middleware{limiter: limiter, logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RateLimit returns middleware that counts each request against the client
// IP under scope. Limiter errors let the request through.
func (m *Middleware) RateLimit(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled || m.limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)
			if ip == "" {
				ip = metadata.ClientIPFromRequest(r, false)
			}

			decision, err := m.limiter.CheckIP(ctx, ip, scope)
			if err != nil {
				m.logger.ErrorContext(ctx, "rate limit check failed, allowing request",
					"error", err,
					"ip_prefix", privacy.AnonymizeIP(ip),
					"scope", scope,
				)
				m.metrics.IncrementDecision("failed_open")
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, decision)

			if !decision.Allowed {
				m.metrics.IncrementDecision("denied")
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"ip_prefix", privacy.AnonymizeIP(ip),
					"scope", scope,
					"limit", decision.Limit,
					"request_id", requestcontext.RequestID(ctx),
				)
				m.emitExceeded(ctx, ip, scope)
				writeRateLimitExceeded(w, decision.RateLimitResult)
				return
			}

			m.metrics.IncrementDecision("allowed")
			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) emitExceeded(ctx context.Context, ip, scope string) {
	if m.auditor == nil {
		return
	}
	event := audit.NewEvent(audit.EventRateLimitExceeded)
	event.Subject = privacy.AnonymizeIP(ip)
	event.Decision = "denied"
	event.Reason = scope
	event.RequestID = requestcontext.RequestID(ctx)
	if err := m.auditor.Emit(ctx, event); err != nil {
		m.logger.WarnContext(ctx, "failed to emit rate limit audit event", "error", err)
	}
}

func addRateLimitHeaders(w http.ResponseWriter, d *Decision) {
	if d == nil || d.RateLimitResult == nil {
		return
	}
	w.Header().Set(headerLimit, strconv.Itoa(d.Limit))
	w.Header().Set(headerRemaining, strconv.Itoa(d.Remaining))
	w.Header().Set(headerReset, strconv.FormatInt(d.ResetAt.Unix(), 10))
	if d.Degraded {
		w.Header().Set(headerStatus, "degraded")
	}
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set(headerRetry, strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, httputil.StatusFor(dErrors.CodeRateLimited), &models.RateLimitExceededResponse{
		Error:      string(dErrors.CodeRateLimited),
		Message:    "Too many requests from this IP address. Please try again later.",
		RetryAfter: result.RetryAfter,
	})
}
