package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "pharmaguard/pkg/domain-errors"
	"pharmaguard/pkg/requestcontext"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*JWTClaims, error) {
	return s.claims, s.err
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func protected(validator JWTValidator, role string) (http.Handler, *requestcontext.AuthPrincipal) {
	var seen requestcontext.AuthPrincipal
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.Principal(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	return RequireAuth(validator, discard)(RequireRole(role, discard)(final)), &seen
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body["error"]
}

func TestRequireAuth(t *testing.T) {
	valid := stubValidator{claims: &JWTClaims{Subject: "Pfizer Inc", Role: "manufacturer", JTI: "j1"}}

	t.Run("missing header", func(t *testing.T) {
		h, _ := protected(valid, "manufacturer")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, string(dErrors.CodeUnauthorized), errorCode(t, rr))
	})

	t.Run("invalid token", func(t *testing.T) {
		h, _ := protected(stubValidator{err: dErrors.New(dErrors.CodeUnauthorized, "invalid token")}, "manufacturer")
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("wrong role", func(t *testing.T) {
		h, _ := protected(stubValidator{claims: &JWTClaims{Subject: "someone", Role: "pharmacist"}}, "manufacturer")
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer tok")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, string(dErrors.CodeForbidden), errorCode(t, rr))
	})

	t.Run("valid token stores principal", func(t *testing.T) {
		h, seen := protected(valid, "manufacturer")
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer tok")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "Pfizer Inc", seen.Subject)
		assert.Equal(t, "j1", seen.TokenID)
	})
}

func TestRequireRole_WithoutAuth(t *testing.T) {
	h := RequireRole("manufacturer", discard)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
