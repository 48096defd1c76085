package registry

import "regexp"

// codeLength is the number of leading characters used when an identifier
// carries no hyphenated NDC.
const codeLength = 11

var embeddedNDC = regexp.MustCompile(`(\d{4,5}-\d{3,4}-\d{1,2})`)

// ExtractCode normalizes an identifier to the NDC the registry is keyed by:
// the first hyphenated NDC found in it, else its first 11 characters.
func ExtractCode(identifier string) string {
	if m := embeddedNDC.FindStringSubmatch(identifier); m != nil {
		return m[1]
	}
	runes := []rune(identifier)
	if len(runes) > codeLength {
		return string(runes[:codeLength])
	}
	return identifier
}
