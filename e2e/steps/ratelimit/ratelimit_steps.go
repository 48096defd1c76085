package ratelimit

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	SetClientIP(ip string)
	GetLastResponseStatus() int
}

// RegisterSteps registers rate-limiting step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^I send (\d+) verification requests from IP "([^"]*)"$`, steps.sendFromIP)
	ctx.Step(`^I send (\d+) bulk verification requests of (\d+) identifiers from IP "([^"]*)"$`, steps.sendBulkFromIP)
	ctx.Step(`^the first (\d+) should succeed$`, steps.firstShouldSucceed)
	ctx.Step(`^the remaining requests should return (\d+)$`, steps.remainingShouldReturn)
}

type ratelimitSteps struct {
	tc       TestContext
	statuses []int
}

func (s *ratelimitSteps) sendFromIP(_ context.Context, n int, ip string) error {
	s.tc.SetClientIP(ip)
	s.statuses = s.statuses[:0]
	for range n {
		if err := s.tc.POST("/v1/verify", map[string]string{"identifier": "68180-518-01"}); err != nil {
			return err
		}
		s.statuses = append(s.statuses, s.tc.GetLastResponseStatus())
	}
	return nil
}

func (s *ratelimitSteps) sendBulkFromIP(_ context.Context, n, size int, ip string) error {
	s.tc.SetClientIP(ip)
	s.statuses = s.statuses[:0]
	ids := make([]string, size)
	for i := range ids {
		ids[i] = fmt.Sprintf("68180-518-%02d", i%100)
	}
	for range n {
		if err := s.tc.POST("/v1/verify/bulk", map[string][]string{"identifiers": ids}); err != nil {
			return err
		}
		s.statuses = append(s.statuses, s.tc.GetLastResponseStatus())
	}
	return nil
}

func (s *ratelimitSteps) firstShouldSucceed(_ context.Context, n int) error {
	if n > len(s.statuses) {
		return fmt.Errorf("only %d requests were sent", len(s.statuses))
	}
	for i, status := range s.statuses[:n] {
		if status != 200 {
			return fmt.Errorf("request %d returned %d, want 200", i+1, status)
		}
	}
	return nil
}

func (s *ratelimitSteps) remainingShouldReturn(_ context.Context, want int) error {
	var succeeded int
	for _, status := range s.statuses {
		if status == 200 {
			succeeded++
			continue
		}
		if status != want {
			return fmt.Errorf("got status %d, want %d", status, want)
		}
	}
	if succeeded == len(s.statuses) {
		return fmt.Errorf("no request was limited")
	}
	return nil
}
