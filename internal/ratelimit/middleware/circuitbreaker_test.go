package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker(t *testing.T) {
	t.Run("opens after consecutive failures", func(t *testing.T) {
		cb := newCircuitBreaker(3, 2)
		assert.False(t, cb.RecordFailure())
		assert.False(t, cb.RecordFailure())
		assert.True(t, cb.RecordFailure())
		assert.True(t, cb.IsOpen())
	})

	t.Run("success resets the failure streak", func(t *testing.T) {
		cb := newCircuitBreaker(2, 2)
		cb.RecordFailure()
		assert.True(t, cb.RecordSuccess())
		assert.False(t, cb.RecordFailure())
		assert.False(t, cb.IsOpen())
	})

	t.Run("closes after consecutive successes", func(t *testing.T) {
		cb := newCircuitBreaker(1, 2)
		cb.RecordFailure()
		assert.False(t, cb.RecordSuccess())
		assert.True(t, cb.IsOpen())
		assert.True(t, cb.RecordSuccess())
		assert.False(t, cb.IsOpen())
	})

	t.Run("failure while recovering restarts the count", func(t *testing.T) {
		cb := newCircuitBreaker(1, 2)
		cb.RecordFailure()
		cb.RecordSuccess()
		assert.True(t, cb.RecordFailure())
		assert.False(t, cb.RecordSuccess())
		assert.True(t, cb.IsOpen())
	})

	t.Run("non-positive thresholds use defaults", func(t *testing.T) {
		cb := newCircuitBreaker(0, -1)
		assert.Equal(t, defaultFailureThreshold, cb.failureThreshold)
		assert.Equal(t, defaultSuccessThreshold, cb.successThreshold)
	})
}
