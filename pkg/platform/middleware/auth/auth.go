package auth

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "pharmaguard/pkg/domain-errors"
	"pharmaguard/pkg/platform/httputil"
	"pharmaguard/pkg/requestcontext"
)

// JWTValidator defines the interface for validating JWT tokens
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator
type JWTClaims struct {
	Subject string
	Role    string
	JTI     string
}

// RequireAuth rejects requests without a valid bearer token and stores the
// authenticated principal in the request context.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(strings.TrimSpace(token))
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token"))
				return
			}

			ctx = requestcontext.WithPrincipal(ctx, requestcontext.AuthPrincipal{
				Subject: claims.Subject,
				Role:    claims.Role,
				TokenID: claims.JTI,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated principals without role. It must run
// after RequireAuth.
func RequireRole(role string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			principal := requestcontext.Principal(ctx)
			if principal.IsZero() {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
				return
			}
			if principal.Role != role {
				logger.WarnContext(ctx, "forbidden - role mismatch",
					"request_id", requestcontext.RequestID(ctx),
					"subject", principal.Subject,
					"role", principal.Role,
					"required_role", role,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, role+" role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
