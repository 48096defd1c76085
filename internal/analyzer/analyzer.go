// Package analyzer scores a batch identifier against lexical patterns of
// known manufacturers and of known counterfeits. It performs no I/O.
package analyzer

import (
	"fmt"
	"math"
	"unicode/utf8"
)

// UnknownManufacturer is reported when no manufacturer family matches.
const UnknownManufacturer = "Unknown"

const (
	baseConfidence      = 0.5
	manufacturerBonus   = 0.3
	suspiciousPenalty   = 0.4
	lengthBonus         = 0.1
	compositionBonus    = 0.1
	structureBonus      = 0.2
	minIdentifierLength = 8
	maxIdentifierLength = 15
)

// Result is the outcome of a pattern analysis.
type Result struct {
	Confidence   float64  `json:"confidence"`
	Manufacturer string   `json:"manufacturer"`
	Reasonings   []string `json:"reasonings"`
	Score        int      `json:"score"`
}

// Analyze scores identifier. The same input always yields the same Result.
func Analyze(identifier string) Result {
	confidence := baseConfidence
	manufacturer := UnknownManufacturer
	reasonings := make([]string, 0, 5)

	for _, family := range manufacturerFamilies {
		if family.Pattern.MatchString(identifier) {
			confidence += manufacturerBonus
			manufacturer = family.Name
			reasonings = append(reasonings, fmt.Sprintf("matches %s NDC pattern", family.Name))
			break
		}
	}

	for _, pattern := range suspiciousPatterns {
		if pattern.MatchString(identifier) {
			confidence -= suspiciousPenalty
			reasonings = append(reasonings, "contains suspicious pattern")
			break
		}
	}

	if n := utf8.RuneCountInString(identifier); n >= minIdentifierLength && n <= maxIdentifierLength {
		confidence += lengthBonus
		reasonings = append(reasonings, "appropriate batch ID length")
	} else {
		reasonings = append(reasonings, "unusual batch ID length")
	}

	if letterPattern.MatchString(identifier) && digitPattern.MatchString(identifier) {
		confidence += compositionBonus
		reasonings = append(reasonings, "good character composition")
	}

	if ndcStructure.MatchString(identifier) {
		confidence += structureBonus
		reasonings = append(reasonings, "follows NDC hyphen structure")
	}

	confidence = clamp(confidence)

	return Result{
		Confidence:   confidence,
		Manufacturer: manufacturer,
		Reasonings:   reasonings,
		Score:        int(math.Round(confidence * 100)),
	}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
