package handler

import (
	"fmt"
	"strings"

	"pharmaguard/internal/verification"
	dErrors "pharmaguard/pkg/domain-errors"
)

// MaxBulkIdentifiers caps the identifiers accepted by one bulk request.
const MaxBulkIdentifiers = 50

const (
	maxIdentifierLength = 128
	maxFieldLength      = 256
)

// VerifyRequest is the HTTP request body for POST /v1/verify.
type VerifyRequest struct {
	Identifier string `json:"identifier"`
}

// Validate implements httputil.Validatable.
func (r *VerifyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return validateIdentifier("identifier", r.Identifier)
}

// BulkVerifyRequest is the HTTP request body for POST /v1/verify/bulk.
type BulkVerifyRequest struct {
	Identifiers []string `json:"identifiers"`
}

func (r *BulkVerifyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Identifiers) == 0 {
		return dErrors.New(dErrors.CodeValidation, "identifiers is required")
	}
	if len(r.Identifiers) > MaxBulkIdentifiers {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("at most %d identifiers per request", MaxBulkIdentifiers))
	}
	for i, id := range r.Identifiers {
		if err := validateIdentifier(fmt.Sprintf("identifiers[%d]", i), id); err != nil {
			return err
		}
	}
	return nil
}

func validateIdentifier(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return dErrors.New(dErrors.CodeValidation, field+" is required")
	}
	if len(value) > maxIdentifierLength {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("%s must be at most %d characters", field, maxIdentifierLength))
	}
	return nil
}

// RegisterBatchRequest is the HTTP request body for POST /v1/batches.
// Field-level rules live in the service; only size limits are checked here.
type RegisterBatchRequest struct {
	BatchID           string `json:"batchId"`
	DrugName          string `json:"drugName"`
	Manufacturer      string `json:"manufacturer"`
	NDCCode           string `json:"ndcCode"`
	ManufacturingDate string `json:"manufacturingDate"`
	ExpiryDate        string `json:"expiryDate"`
	QualityScore      *int   `json:"qualityScore,omitempty"`
}

func (r *RegisterBatchRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	for field, value := range map[string]string{
		"batchId":           r.BatchID,
		"drugName":          r.DrugName,
		"manufacturer":      r.Manufacturer,
		"ndcCode":           r.NDCCode,
		"manufacturingDate": r.ManufacturingDate,
		"expiryDate":        r.ExpiryDate,
	} {
		if len(value) > maxFieldLength {
			return dErrors.New(dErrors.CodeValidation,
				fmt.Sprintf("%s must be at most %d characters", field, maxFieldLength))
		}
	}
	return nil
}

// ToBatchInfo converts the request to the domain type.
func (r *RegisterBatchRequest) ToBatchInfo() verification.BatchInfo {
	return verification.BatchInfo{
		BatchID:           r.BatchID,
		DrugName:          r.DrugName,
		Manufacturer:      r.Manufacturer,
		NDCCode:           r.NDCCode,
		ManufacturingDate: r.ManufacturingDate,
		ExpiryDate:        r.ExpiryDate,
		QualityScore:      r.QualityScore,
	}
}
