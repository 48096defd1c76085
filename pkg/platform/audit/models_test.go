package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuditEvent_Category(t *testing.T) {
	assert.Equal(t, CategoryCompliance, EventBatchRegistered.Category())
	assert.Equal(t, CategorySecurity, EventBatchRegistrationFailed.Category())
	assert.Equal(t, CategorySecurity, EventRateLimitExceeded.Category())
	assert.Equal(t, CategoryOperations, EventVerificationCompleted.Category())
	assert.Equal(t, CategoryOperations, AuditEvent("something_else").Category())
}

func TestHashIdentifier(t *testing.T) {
	h := HashIdentifier("68180-518-01")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashIdentifier("68180-518-01"))
	assert.NotEqual(t, h, HashIdentifier("68180-518-02"))
	assert.NotContains(t, h, "68180")
}
