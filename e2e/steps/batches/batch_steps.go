package batches

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"pharmaguard/pkg/platform/audit"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	IssueToken(subject, role string) (string, error)
	SetAccessToken(token string)
	AuditEvents(ctx context.Context, action string) ([]audit.Event, error)
}

// RegisterSteps registers batch registration step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &batchSteps{tc: tc}

	ctx.Step(`^I hold a "([^"]*)" token for "([^"]*)"$`, steps.holdToken)
	ctx.Step(`^I register batch "([^"]*)" for manufacturer "([^"]*)"$`, steps.registerBatch)
	ctx.Step(`^I register batch "([^"]*)" expiring "([^"]*)" before it was made "([^"]*)"$`, steps.registerBackdated)
	ctx.Step(`^the audit event "([^"]*)" should be emitted for subject "([^"]*)"$`, steps.auditEventEmitted)
	ctx.Step(`^the audit event "([^"]*)" should be emitted$`, steps.auditEventEmittedAny)
}

type batchSteps struct {
	tc TestContext
}

func (s *batchSteps) holdToken(_ context.Context, role, subject string) error {
	token, err := s.tc.IssueToken(subject, role)
	if err != nil {
		return err
	}
	s.tc.SetAccessToken(token)
	return nil
}

func batch(id, manufacturer, made, expires string) map[string]string {
	return map[string]string{
		"batchId":           id,
		"drugName":          "Aspirin",
		"manufacturer":      manufacturer,
		"ndcCode":           "68180-518-01",
		"manufacturingDate": made,
		"expiryDate":        expires,
	}
}

func (s *batchSteps) registerBatch(_ context.Context, id, manufacturer string) error {
	return s.tc.POST("/v1/batches", batch(id, manufacturer, "2025-01-15", "2027-01-15"))
}

func (s *batchSteps) registerBackdated(_ context.Context, id, expires, made string) error {
	return s.tc.POST("/v1/batches", batch(id, "Pfizer", made, expires))
}

func (s *batchSteps) auditEventEmitted(ctx context.Context, action, subject string) error {
	events, err := s.tc.AuditEvents(ctx, action)
	if err != nil {
		return err
	}
	for _, e := range events {
		if e.Subject == subject {
			return nil
		}
	}
	return fmt.Errorf("no %s audit event for subject %q among %d events", action, subject, len(events))
}

func (s *batchSteps) auditEventEmittedAny(ctx context.Context, action string) error {
	events, err := s.tc.AuditEvents(ctx, action)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return fmt.Errorf("no %s audit event emitted", action)
	}
	return nil
}
