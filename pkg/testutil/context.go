package testutil

import (
	"net/http"

	"pharmaguard/pkg/requestcontext"
)

// WithManufacturer authenticates req as a manufacturer, as the auth
// middleware would after validating a token for subject.
func WithManufacturer(req *http.Request, subject string) *http.Request {
	ctx := requestcontext.WithPrincipal(req.Context(), requestcontext.AuthPrincipal{
		Subject: subject,
		Role:    "manufacturer",
	})
	return req.WithContext(ctx)
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
