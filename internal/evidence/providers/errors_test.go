package providers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"pharmaguard/pkg/platform/sentinel"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		category  ErrorCategory
		transport bool
	}{
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), ErrorTimeout, true},
		{"unavailable", fmt.Errorf("status 502: %w", sentinel.ErrUnavailable), ErrorProviderOutage, true},
		{"bad payload", fmt.Errorf("decode: %w", sentinel.ErrBadResponse), ErrorBadData, true},
		{"not found", sentinel.ErrNotFound, ErrorNotFound, false},
		{"not configured", sentinel.ErrNotConfigured, ErrorNotConfigured, false},
		{"unknown", errors.New("boom"), ErrorInternal, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := Classify("fda", tt.err)
			assert.Equal(t, tt.category, pe.Category)
			assert.Equal(t, "fda", pe.ProviderID)
			assert.ErrorIs(t, pe, tt.err)
			assert.Equal(t, tt.transport, IsTransport(pe))
		})
	}

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, Classify("fda", nil))
		assert.False(t, IsTransport(nil))
	})

	t.Run("provider errors pass through", func(t *testing.T) {
		original := NewProviderError(ErrorTimeout, "ledger", "slow", nil)
		assert.Same(t, original, Classify("fda", fmt.Errorf("wrapped: %w", original)))
	})
}

func TestResultValidate(t *testing.T) {
	assert.NoError(t, Result{Confidence: 0.9, Source: SourcePrimary}.Validate())
	assert.Error(t, Result{Confidence: 1.2, Source: SourcePrimary}.Validate())
	assert.Error(t, Result{Confidence: -0.1, Source: SourceFallback}.Validate())
	assert.Error(t, Result{Confidence: 0.5}.Validate())
}

func TestResultEffective(t *testing.T) {
	assert.Equal(t, 0.9, Result{Valid: true, Confidence: 0.9}.Effective())
	assert.Equal(t, 0.0, Result{Valid: false, Confidence: 0.9}.Effective())
}
