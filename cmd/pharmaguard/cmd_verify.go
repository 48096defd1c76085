package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"pharmaguard/internal/verification"
	"pharmaguard/internal/verification/handler"
	"pharmaguard/pkg/platform/textutil"
)

type verifyOptions struct {
	jsonOutput bool
	delay      time.Duration
}

func newVerifyCommand(flags *globalFlags) *cobra.Command {
	opts := &verifyOptions{}
	cmd := &cobra.Command{
		Use:   "verify <identifier>...",
		Short: "Verify one or more batch identifiers",
		Long: `Verify one or more batch identifiers and print a report for each.

Identifiers are verified concurrently unless --delay is set, in which case
they run one at a time with the delay between them. The command exits with
status 1 when any identifier is classified UNSAFE.`,
		Example: `  pharmaguard verify 68180-518-01
  pharmaguard verify --json 68180-518-01 FAKE_COUNTERFEIT_001`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.Context(), flags, opts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print reports as JSON")
	cmd.Flags().DurationVar(&opts.delay, "delay", 0, "Pause between identifiers and verify them sequentially")

	return cmd
}

func runVerify(ctx context.Context, flags *globalFlags, opts *verifyOptions, ids []string, out, logOut io.Writer) error {
	a, err := flags.buildApp(ctx, logOut)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	a.Init(ctx)

	reports, err := verifyAll(ctx, a.Service, ids, opts.delay)
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		if err := writeJSONReports(out, reports); err != nil {
			return err
		}
	} else {
		for i, r := range reports {
			if i > 0 {
				fmt.Fprintln(out)
			}
			renderReport(out, r)
		}
	}

	var unsafe []string
	for _, r := range reports {
		if r.Verdict == verification.VerdictUnsafe {
			unsafe = append(unsafe, r.Identifier)
		}
	}
	if len(unsafe) > 0 {
		return &UnsafeVerdictError{Identifiers: textutil.Dedupe(unsafe)}
	}
	return nil
}

func verifyAll(ctx context.Context, svc *verification.Service, ids []string, delay time.Duration) ([]*verification.Report, error) {
	if delay <= 0 {
		return svc.VerifyMany(ctx, ids)
	}
	reports := make([]*verification.Report, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
		r, err := svc.Verify(ctx, id)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func writeJSONReports(w io.Writer, reports []*verification.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(reports) == 1 {
		return enc.Encode(handler.FromReport(reports[0]))
	}
	resp := make([]*handler.ReportResponse, 0, len(reports))
	for _, r := range reports {
		resp = append(resp, handler.FromReport(r))
	}
	return enc.Encode(resp)
}
