package main

import (
	"fmt"
	"io"
	"strings"

	"pharmaguard/internal/evidence/providers"
	"pharmaguard/internal/verification"
)

var (
	consumerTips = []string{
		"Check the expiration date on the packaging",
		"Verify the packaging is intact",
		"Store according to the label instructions",
	}
	consumerWarnings = []string{
		"Do not consume this medication",
		"Report it to a pharmacist or the FDA",
		"Contact poison control if already consumed: 1-800-222-1222",
	}
)

// renderReport writes a human-readable report for one verification.
func renderReport(w io.Writer, r *verification.Report) {
	fmt.Fprintf(w, "Identifier: %s\n", r.Identifier)
	fmt.Fprintf(w, "Verdict:    %s (score %.3f)\n", r.Verdict, r.OverallScore)
	if r.Degraded {
		fmt.Fprintln(w, "Mode:       degraded (ledger unavailable)")
	}
	fmt.Fprintf(w, "Guidance:   %s\n", r.Guidance)

	fmt.Fprintln(w, "\nEvidence:")
	renderProvider(w, providers.NameRegistry, r.Registry())
	renderProvider(w, providers.NameLedger, r.Ledger())
	fmt.Fprintf(w, "  %-9s confidence=%.2f score=%d manufacturer=%s\n",
		"analysis", r.Analysis.Confidence, r.Analysis.Score, r.Analysis.Manufacturer)
	for _, reason := range r.Analysis.Reasonings {
		fmt.Fprintf(w, "            - %s\n", reason)
	}

	switch r.Verdict {
	case verification.VerdictSafe:
		renderList(w, "Consumer tips:", "+", consumerTips)
	case verification.VerdictUnsafe:
		renderList(w, "Consumer warning:", "!", consumerWarnings)
	}
}

func renderProvider(w io.Writer, name string, res providers.Result) {
	fmt.Fprintf(w, "  %-9s valid=%t confidence=%.2f source=%s", name, res.Valid, res.Confidence, res.Source)
	var extra []string
	if res.DrugName != "" {
		extra = append(extra, "drug="+res.DrugName)
	}
	if res.Manufacturer != "" {
		extra = append(extra, "manufacturer="+res.Manufacturer)
	}
	if res.Reason != "" {
		extra = append(extra, "reason="+res.Reason)
	}
	if len(extra) > 0 {
		fmt.Fprintf(w, " %s", strings.Join(extra, " "))
	}
	fmt.Fprintln(w)
}

func renderList(w io.Writer, title, bullet string, items []string) {
	fmt.Fprintf(w, "\n%s\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  %s %s\n", bullet, item)
	}
}
