package registry

import (
	"strings"

	"pharmaguard/internal/evidence/providers"
)

// KnownCode is a registry entry available without network access.
type KnownCode struct {
	Code         string
	DrugName     string
	Manufacturer string
}

// DefaultKnownCodes is the local table consulted when the registry cannot answer.
var DefaultKnownCodes = []KnownCode{
	{Code: "68180-518", DrugName: "Pfizer Aspirin", Manufacturer: "Pfizer Inc"},
	{Code: "00069-001", DrugName: "Pfizer Viagra", Manufacturer: "Pfizer Inc"},
	{Code: "50458-220", DrugName: "Johnson Baby Powder", Manufacturer: "Johnson & Johnson"},
	{Code: "00006-007", DrugName: "Merck Vaccine", Manufacturer: "Merck & Co"},
}

const (
	confidenceFound        = 0.9
	confidenceNotFound     = 0.1
	confidenceFallbackHit  = 0.7
	confidenceFallbackMiss = 0.3

	reasonNotFound      = "not found in registry"
	reasonNotInFallback = "not in known NDC table"
)

// lookupFallback matches the identifier against the local table by substring.
func lookupFallback(table []KnownCode, identifier, code string) providers.Result {
	for _, known := range table {
		if strings.Contains(identifier, known.Code) {
			return providers.Result{
				Valid:        true,
				Confidence:   confidenceFallbackHit,
				DrugName:     known.DrugName,
				Manufacturer: known.Manufacturer,
				RegistryCode: code,
				Source:       providers.SourceFallback,
			}
		}
	}
	return providers.Result{
		Valid:        false,
		Confidence:   confidenceFallbackMiss,
		Reason:       reasonNotInFallback,
		RegistryCode: code,
		Source:       providers.SourceFallback,
	}
}
