// Package e2e runs the Gherkin acceptance features in features/ against an
// in-process server backed by fake upstreams.
package e2e

import (
	"github.com/cucumber/godog"

	"pharmaguard/e2e/steps/batches"
	"pharmaguard/e2e/steps/common"
	"pharmaguard/e2e/steps/ratelimit"
	"pharmaguard/e2e/steps/verify"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Background setup, generic requests and assertions
	common.RegisterSteps(ctx, tc)

	verify.RegisterSteps(ctx, tc)
	batches.RegisterSteps(ctx, tc)
	ratelimit.RegisterSteps(ctx, tc)
}
