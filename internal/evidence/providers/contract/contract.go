// Package contract holds reusable checks every evidence provider must pass.
package contract

import (
	"context"
	"encoding/json"
	"testing"

	"pharmaguard/internal/evidence/providers"
)

// ContractTest defines a test case for provider contract validation
type ContractTest struct {
	Name           string
	Provider       providers.Provider
	Identifier     string
	ExpectedSource providers.Source
	ValidateFunc   func(result providers.Result) error
}

// ContractSuite is a collection of contract tests for a provider
type ContractSuite struct {
	ProviderName string
	Tests        []ContractTest
}

// Run executes all contract tests in the suite
func (s *ContractSuite) Run(t *testing.T) {
	t.Helper()
	for _, test := range s.Tests {
		t.Run(test.Name, func(t *testing.T) {
			if got := test.Provider.Name(); got != s.ProviderName {
				t.Errorf("expected provider name %s, got %s", s.ProviderName, got)
			}

			result := test.Provider.Fetch(context.Background(), test.Identifier)

			if err := result.Validate(); err != nil {
				t.Errorf("result violates invariants: %v", err)
			}

			if test.ExpectedSource != "" && result.Source != test.ExpectedSource {
				t.Errorf("expected source %s, got %s", test.ExpectedSource, result.Source)
			}

			if !result.Valid && result.Effective() != 0 {
				t.Errorf("invalid result contributes %f", result.Effective())
			}

			if test.ValidateFunc != nil {
				if err := test.ValidateFunc(result); err != nil {
					t.Errorf("custom validation failed: %v", err)
				}
			}
		})
	}
}

// SnapshotTest logs the JSON form of a provider result for review.
type SnapshotTest struct {
	Name       string
	Provider   providers.Provider
	Identifier string
}

// Run executes a snapshot test
func (st *SnapshotTest) Run(t *testing.T) {
	t.Helper()
	result := st.Provider.Fetch(context.Background(), st.Identifier)

	actualJSON, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal result: %v", err)
	}
	t.Logf("%s result snapshot:\n%s", st.Name, string(actualJSON))
}
