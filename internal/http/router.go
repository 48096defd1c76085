// Package httpapi assembles the public HTTP surface.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	jwttoken "pharmaguard/internal/jwt_token"
	"pharmaguard/internal/platform/metrics"
	ratelimitmw "pharmaguard/internal/ratelimit/middleware"
	"pharmaguard/internal/verification/handler"
	"pharmaguard/pkg/platform/middleware/auth"
	"pharmaguard/pkg/platform/middleware/metadata"
	"pharmaguard/pkg/platform/middleware/request"
	"pharmaguard/pkg/platform/middleware/requesttime"
)

// Rate limit scopes. Bulk requests fan out to many verifications and are
// metered in their own bucket with a smaller budget.
const (
	RateLimitScope     = "verify"
	BulkRateLimitScope = "verify_bulk"
)

// Deps are the collaborators the router mounts. RateLimit and Metrics are
// optional. BulkRateLimit defaults to RateLimit when unset. Without a
// TokenValidator the batch endpoint is not mounted.
type Deps struct {
	Verification   *handler.Handler
	RateLimit      *ratelimitmw.Middleware
	BulkRateLimit  *ratelimitmw.Middleware
	TokenValidator auth.JWTValidator
	Metrics        *metrics.Metrics
	TrustProxy     bool
	Logger         *slog.Logger
}

// NewRouter wires all public endpoints.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(logger))
	r.Use(request.Logger(logger))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata(d.TrustProxy))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	d.Verification.RegisterProbes(r)

	r.Group(func(r chi.Router) {
		if d.RateLimit != nil {
			r.Use(d.RateLimit.RateLimit(RateLimitScope))
		}
		d.Verification.RegisterVerify(r)
	})

	bulkLimit := d.BulkRateLimit
	if bulkLimit == nil {
		bulkLimit = d.RateLimit
	}
	r.Group(func(r chi.Router) {
		if bulkLimit != nil {
			r.Use(bulkLimit.RateLimit(BulkRateLimitScope))
		}
		d.Verification.RegisterVerifyBulk(r)
	})

	if d.TokenValidator != nil {
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(d.TokenValidator, logger))
			r.Use(auth.RequireRole(jwttoken.RoleManufacturer, logger))
			d.Verification.RegisterBatches(r)
		})
	}

	return r
}
