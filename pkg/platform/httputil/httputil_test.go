package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "pharmaguard/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid input"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "bad_request" {
			t.Fatalf("expected error code bad_request, got %q", body["error"])
		}
		if body["error_description"] != "invalid input" {
			t.Fatalf("expected error_description to be returned for bad request")
		}
	})
}

func TestStatusFor(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeValidation:     http.StatusBadRequest,
		dErrors.CodeNotInitialized: http.StatusConflict,
		dErrors.CodeUnavailable:    http.StatusServiceUnavailable,
		dErrors.CodeRateLimited:    http.StatusTooManyRequests,
		dErrors.CodeForbidden:      http.StatusForbidden,
	}
	for code, want := range cases {
		if got := StatusFor(code); got != want {
			t.Fatalf("StatusFor(%s) = %d, want %d", code, got, want)
		}
	}
}

type sampleRequest struct {
	Identifier string `json:"identifier"`
}

func (r *sampleRequest) Validate() error {
	if r.Identifier == "" {
		return dErrors.New(dErrors.CodeValidation, "identifier is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"identifier":"68180-518-01"}`))
		w := httptest.NewRecorder()

		req, ok := DecodeAndPrepare[sampleRequest](w, r, nil, r.Context(), "req-1")
		if !ok {
			t.Fatalf("expected ok, got status %d", w.Code)
		}
		if req.Identifier != "68180-518-01" {
			t.Fatalf("unexpected identifier %q", req.Identifier)
		}
	})

	t.Run("validation failure", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"identifier":""}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[sampleRequest](w, r, nil, r.Context(), "req-2")
		if ok {
			t.Fatalf("expected validation failure")
		}
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"identifier":"x","extra":1}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[sampleRequest](w, r, nil, r.Context(), "req-3")
		if ok {
			t.Fatalf("expected decode failure")
		}
	})
}
