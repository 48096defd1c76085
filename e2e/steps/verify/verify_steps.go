package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
}

// RegisterSteps registers verification step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &verifySteps{tc: tc}

	ctx.Step(`^I verify identifier "([^"]*)"$`, steps.verifyIdentifier)
	ctx.Step(`^I verify identifiers "([^"]*)" in bulk$`, steps.verifyBulk)

	ctx.Step(`^the verdict should be "([^"]*)"$`, steps.verdictShouldBe)
	ctx.Step(`^the overall score should be ([0-9.]+)$`, steps.scoreShouldBe)
	ctx.Step(`^the report should be degraded$`, steps.reportDegraded)
	ctx.Step(`^the report should not be degraded$`, steps.reportNotDegraded)
	ctx.Step(`^the (registry|ledger) evidence should come from the (primary|fallback) source$`, steps.evidenceSource)
	ctx.Step(`^the bulk verdicts should be "([^"]*)"$`, steps.bulkVerdicts)
}

type report struct {
	Identifier   string  `json:"identifier"`
	Verdict      string  `json:"verdict"`
	OverallScore float64 `json:"overall_score"`
	Degraded     bool    `json:"degraded"`
	Providers    map[string]struct {
		Valid  bool   `json:"valid"`
		Source string `json:"source"`
	} `json:"providers"`
}

type verifySteps struct {
	tc TestContext
}

func (s *verifySteps) verifyIdentifier(_ context.Context, id string) error {
	return s.tc.POST("/v1/verify", map[string]string{"identifier": id})
}

func (s *verifySteps) verifyBulk(_ context.Context, ids string) error {
	return s.tc.POST("/v1/verify/bulk", map[string][]string{"identifiers": strings.Split(ids, ",")})
}

func (s *verifySteps) lastReport() (*report, error) {
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return nil, fmt.Errorf("verification failed with status %d: %s", status, s.tc.GetLastResponseBody())
	}
	var r report
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}

func (s *verifySteps) verdictShouldBe(_ context.Context, want string) error {
	r, err := s.lastReport()
	if err != nil {
		return err
	}
	if r.Verdict != want {
		return fmt.Errorf("expected verdict %s, got %s (score %.3f)", want, r.Verdict, r.OverallScore)
	}
	return nil
}

func (s *verifySteps) scoreShouldBe(_ context.Context, want float64) error {
	r, err := s.lastReport()
	if err != nil {
		return err
	}
	if math.Abs(r.OverallScore-want) > 1e-9 {
		return fmt.Errorf("expected score %.3f, got %.3f", want, r.OverallScore)
	}
	return nil
}

func (s *verifySteps) reportDegraded(context.Context) error {
	r, err := s.lastReport()
	if err != nil {
		return err
	}
	if !r.Degraded {
		return fmt.Errorf("expected a degraded report")
	}
	return nil
}

func (s *verifySteps) reportNotDegraded(context.Context) error {
	r, err := s.lastReport()
	if err != nil {
		return err
	}
	if r.Degraded {
		return fmt.Errorf("expected a non-degraded report")
	}
	return nil
}

func (s *verifySteps) evidenceSource(_ context.Context, provider, source string) error {
	r, err := s.lastReport()
	if err != nil {
		return err
	}
	p, ok := r.Providers[provider]
	if !ok {
		return fmt.Errorf("report has no %s evidence", provider)
	}
	if p.Source != source {
		return fmt.Errorf("expected %s source %s, got %s", provider, source, p.Source)
	}
	return nil
}

func (s *verifySteps) bulkVerdicts(_ context.Context, want string) error {
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("bulk verification failed with status %d: %s", status, s.tc.GetLastResponseBody())
	}
	var resp struct {
		Reports []report `json:"reports"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &resp); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	got := make([]string, 0, len(resp.Reports))
	for _, r := range resp.Reports {
		got = append(got, r.Verdict)
	}
	if strings.Join(got, ",") != want {
		return fmt.Errorf("expected verdicts %s, got %s", want, strings.Join(got, ","))
	}
	return nil
}
