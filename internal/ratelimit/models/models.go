package models

import (
	"strings"
	"time"
)

// Limit is the sliding-window budget applied to one client.
type Limit struct {
	RequestsPerWindow int
	Window            time.Duration
}

// PerMinute returns a one-minute Limit of n requests.
func PerMinute(n int) Limit {
	return Limit{RequestsPerWindow: n, Window: time.Minute}
}

// Enabled reports whether the limit should be enforced at all.
func (l Limit) Enabled() bool {
	return l.RequestsPerWindow > 0 && l.Window > 0
}

// RateLimitResult represents the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// WithRetryAfter fills RetryAfter for a denied result, rounding up to at
// least one second.
func (r *RateLimitResult) WithRetryAfter(now time.Time) *RateLimitResult {
	if r == nil || r.Allowed {
		return r
	}
	wait := r.ResetAt.Sub(now)
	secs := int((wait + time.Second - 1) / time.Second)
	r.RetryAfter = max(secs, 1)
	return r
}

// RateLimitExceededResponse is the API response when rate limit is exceeded.
type RateLimitExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"` // seconds
}

const keyPrefix = "pharmaguard:rl"

// NewIPRateLimitKey builds the bucket key for a client IP and route scope.
func NewIPRateLimitKey(ip, scope string) string {
	return keyPrefix + ":ip:" + SanitizeKeySegment(ip) + ":" + SanitizeKeySegment(scope)
}

// SanitizeKeySegment escapes delimiter characters in rate limit key segments
// so a crafted identifier cannot address a neighbouring bucket. IPv6
// addresses are affected too and map to a stable form.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}
