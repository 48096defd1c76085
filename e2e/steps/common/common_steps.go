package common

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Start(ctx context.Context, initialize bool) error
	SetLedgerConfigured(v bool)
	SetRateLimit(perMinute int)
	SetClientIP(ip string)
	GET(path string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetLastHeader(key string) string
}

// RegisterSteps registers background, request and assertion steps shared by
// every feature.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	// Background
	ctx.Step(`^no ledger contract is configured$`, steps.noLedgerContract)
	ctx.Step(`^the rate limit is (\d+) requests? per minute$`, steps.rateLimit)
	ctx.Step(`^requests come from IP "([^"]*)"$`, steps.clientIP)
	ctx.Step(`^the verification engine is running$`, steps.engineRunning)
	ctx.Step(`^the verification engine has not been initialized$`, steps.engineNotInitialized)

	// Requests
	ctx.Step(`^I GET "([^"]*)"$`, steps.get)

	// Assertions
	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.fieldShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be (true|false)$`, steps.boolFieldShouldBe)
	ctx.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, steps.headerShouldBe)
	ctx.Step(`^the response header "([^"]*)" should be present$`, steps.headerShouldBePresent)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) noLedgerContract(context.Context) error {
	s.tc.SetLedgerConfigured(false)
	return nil
}

func (s *commonSteps) rateLimit(_ context.Context, n int) error {
	s.tc.SetRateLimit(n)
	return nil
}

func (s *commonSteps) clientIP(_ context.Context, ip string) error {
	s.tc.SetClientIP(ip)
	return nil
}

func (s *commonSteps) engineRunning(ctx context.Context) error {
	return s.tc.Start(ctx, true)
}

func (s *commonSteps) engineNotInitialized(ctx context.Context) error {
	return s.tc.Start(ctx, false)
}

func (s *commonSteps) get(_ context.Context, path string) error {
	return s.tc.GET(path)
}

func (s *commonSteps) statusShouldBe(_ context.Context, want int) error {
	if got := s.tc.GetLastResponseStatus(); got != want {
		return fmt.Errorf("expected status %d, got %d: %s", want, got, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *commonSteps) fieldShouldBe(_ context.Context, field, want string) error {
	got, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if fmt.Sprint(got) != want {
		return fmt.Errorf("expected %s to be %q, got %q", field, want, fmt.Sprint(got))
	}
	return nil
}

func (s *commonSteps) boolFieldShouldBe(_ context.Context, field, want string) error {
	got, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	b, ok := got.(bool)
	if !ok {
		return fmt.Errorf("field %s is %T, not a boolean", field, got)
	}
	if fmt.Sprint(b) != want {
		return fmt.Errorf("expected %s to be %s, got %t", field, want, b)
	}
	return nil
}

func (s *commonSteps) headerShouldBe(_ context.Context, key, want string) error {
	if got := s.tc.GetLastHeader(key); got != want {
		return fmt.Errorf("expected header %s to be %q, got %q", key, want, got)
	}
	return nil
}

func (s *commonSteps) headerShouldBePresent(_ context.Context, key string) error {
	if s.tc.GetLastHeader(key) == "" {
		return fmt.Errorf("expected header %s to be set", key)
	}
	return nil
}
