package analyzer

import "regexp"

// manufacturerFamily ties a labeler-code pattern to the manufacturer it belongs to.
type manufacturerFamily struct {
	Name    string
	Pattern *regexp.Regexp
}

// manufacturerFamilies is evaluated in order; the first match wins.
var manufacturerFamilies = []manufacturerFamily{
	{Name: "Pfizer", Pattern: regexp.MustCompile(`^(68180|00069|00071|00525)-\d{3}-\d{2}$`)},
	{Name: "Johnson", Pattern: regexp.MustCompile(`^(50458|12830|57894)-\d{3}-\d{2}$`)},
	{Name: "Merck", Pattern: regexp.MustCompile(`^(00006|00056|54569)-\d{3}-\d{2}$`)},
	{Name: "Novartis", Pattern: regexp.MustCompile(`^(00078|00083|00363)-\d{3}-\d{2}$`)},
	{Name: "Roche", Pattern: regexp.MustCompile(`^(50242|00004|76439)-\d{3}-\d{2}$`)},
}

// suspiciousPatterns is evaluated in order; only the first match is penalised.
var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^FAKE`),
	regexp.MustCompile(`(?i)^TEST`),
	regexp.MustCompile(`(?i)^DEMO`),
	regexp.MustCompile(`(?i)^COUNTERFEIT`),
	regexp.MustCompile(`^[0-9]{20,}$`),
	regexp.MustCompile(`^[A-Z]{10,}$`),
	regexp.MustCompile(`\s`),
}

var (
	letterPattern = regexp.MustCompile(`[A-Za-z]`)
	digitPattern  = regexp.MustCompile(`[0-9]`)
	ndcStructure  = regexp.MustCompile(`^\d{4,5}-\d{3,4}-\d{1,2}$`)
)
