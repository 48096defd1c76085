package providers

import (
	"context"
	"errors"
	"fmt"

	"pharmaguard/pkg/platform/sentinel"
)

// ErrorCategory defines the normalized failure taxonomy
type ErrorCategory string

const (
	// ErrorTimeout indicates the provider took too long to respond
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the provider returned invalid/malformed data
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorProviderOutage indicates the provider is unavailable
	ErrorProviderOutage ErrorCategory = "provider_outage"

	// ErrorNotConfigured indicates the provider has no endpoint to call
	ErrorNotConfigured ErrorCategory = "not_configured"

	// ErrorNotFound indicates the requested record doesn't exist
	ErrorNotFound ErrorCategory = "not_found"

	// ErrorInternal indicates an unexpected internal error
	ErrorInternal ErrorCategory = "internal"
)

// ProviderError wraps primary-path failures with a normalized category.
type ProviderError struct {
	Category   ErrorCategory
	ProviderID string
	Message    string
	Underlying error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("provider %s [%s]: %s: %v", e.ProviderID, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("provider %s [%s]: %s", e.ProviderID, e.Category, e.Message)
}

// Unwrap supports error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

// NewProviderError creates a new normalized provider error
func NewProviderError(category ErrorCategory, providerID, message string, underlying error) *ProviderError {
	return &ProviderError{
		Category:   category,
		ProviderID: providerID,
		Message:    message,
		Underlying: underlying,
	}
}

// Classify wraps a client error in a ProviderError, deriving the category
// from context and sentinel errors. Existing ProviderErrors pass through.
func Classify(providerID string, err error) *ProviderError {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewProviderError(ErrorTimeout, providerID, "request timed out", err)
	case errors.Is(err, sentinel.ErrNotFound):
		return NewProviderError(ErrorNotFound, providerID, "record not found", err)
	case errors.Is(err, sentinel.ErrBadResponse):
		return NewProviderError(ErrorBadData, providerID, "malformed response", err)
	case errors.Is(err, sentinel.ErrNotConfigured):
		return NewProviderError(ErrorNotConfigured, providerID, "provider not configured", err)
	case errors.Is(err, sentinel.ErrUnavailable), errors.Is(err, context.Canceled):
		return NewProviderError(ErrorProviderOutage, providerID, "provider unavailable", err)
	default:
		return NewProviderError(ErrorInternal, providerID, "unexpected failure", err)
	}
}

// IsTransport reports whether err means the dependency could not give a
// definitive answer. Transport failures trip circuit breakers; a definitive
// not-found does not.
func IsTransport(err error) bool {
	switch GetCategory(err) {
	case ErrorTimeout, ErrorProviderOutage, ErrorBadData, ErrorInternal:
		return err != nil
	default:
		return false
	}
}

// GetCategory extracts the error category from an error
func GetCategory(err error) ErrorCategory {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ErrorInternal
}
