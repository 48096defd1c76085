package verification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pharmaguard/internal/evidence/ledger"
	dErrors "pharmaguard/pkg/domain-errors"
	"pharmaguard/pkg/platform/audit"
	"pharmaguard/pkg/requestcontext"
)

const (
	defaultQualityScore = 100
	maxQualityScore     = 100
)

// Registration outcomes recorded in metrics.
const (
	outcomeRegistered     = "registered"
	outcomeRejected       = "rejected"
	outcomeNotInitialized = "not_initialized"
	outcomeFailed         = "failed"
	outcomeDenied         = "denied"
)

// RegisterBatch submits a new batch to the ledger. It requires a READY
// engine with a live ledger connection.
func (s *Service) RegisterBatch(ctx context.Context, info BatchInfo) (*Registration, error) {
	ctx, span := s.tracer.Start(ctx, "verification.RegisterBatch")
	defer span.End()

	state := s.State()
	if !state.Ready() || !state.LedgerConnected {
		s.metrics.IncrementRegistration(outcomeNotInitialized)
		err := dErrors.New(dErrors.CodeNotInitialized, "ledger connection not initialized")
		recordSpanError(span, err)
		return nil, err
	}

	if err := checkOwnership(ctx, info); err != nil {
		s.metrics.IncrementRegistration(outcomeDenied)
		event := audit.NewEvent(audit.EventBatchRegistrationDenied)
		event.Subject = info.Manufacturer
		event.ActorID = requestcontext.Principal(ctx).Subject
		event.Reason = err.Error()
		s.emitAudit(ctx, event)
		recordSpanError(span, err)
		return nil, err
	}

	witness, err := buildWitness(info)
	if err != nil {
		s.metrics.IncrementRegistration(outcomeRejected)
		s.emitRegistrationFailure(ctx, info, err)
		recordSpanError(span, err)
		return nil, err
	}
	if witness.ExpiryDate <= witness.ManufacturingDate {
		s.logger.WarnContext(ctx, "batch expiry is not after manufacturing date",
			"request_id", requestcontext.RequestID(ctx),
			"batch_id", info.BatchID,
		)
	}

	sub, err := s.conn.Submit(ctx, witness)
	if err != nil {
		s.metrics.IncrementRegistration(outcomeFailed)
		s.logger.ErrorContext(ctx, "batch registration failed",
			"request_id", requestcontext.RequestID(ctx),
			"batch_id", info.BatchID,
			"error", err,
		)
		wrapped := dErrors.Wrap(err, dErrors.CodeUnavailable, "ledger registration failed")
		s.emitRegistrationFailure(ctx, info, wrapped)
		recordSpanError(span, wrapped)
		return nil, wrapped
	}

	reg := &Registration{
		TransactionID: sub.TransactionID,
		BatchID:       witness.BatchID,
		SubmittedAt:   s.now(),
	}
	s.metrics.IncrementRegistration(outcomeRegistered)
	s.logger.InfoContext(ctx, "batch registered",
		"request_id", requestcontext.RequestID(ctx),
		"batch_id", reg.BatchID,
		"transaction_id", reg.TransactionID,
	)

	event := audit.NewEvent(audit.EventBatchRegistered)
	event.Subject = witness.Manufacturer
	event.SubjectIDHash = audit.HashIdentifier(witness.BatchID)
	event.Decision = reg.TransactionID
	event.ActorID = requestcontext.Principal(ctx).Subject
	s.emitAudit(ctx, event)

	return reg, nil
}

func (s *Service) emitRegistrationFailure(ctx context.Context, info BatchInfo, cause error) {
	event := audit.NewEvent(audit.EventBatchRegistrationFailed)
	event.Subject = info.Manufacturer
	if info.BatchID != "" {
		event.SubjectIDHash = audit.HashIdentifier(info.BatchID)
	}
	event.Reason = cause.Error()
	event.ActorID = requestcontext.Principal(ctx).Subject
	s.emitAudit(ctx, event)
}

// checkOwnership stops an authenticated manufacturer from registering
// batches under another manufacturer's name. Unauthenticated callers (the
// CLI) are not restricted.
func checkOwnership(ctx context.Context, info BatchInfo) error {
	principal := requestcontext.Principal(ctx)
	if principal.IsZero() || strings.TrimSpace(info.Manufacturer) == "" {
		return nil
	}
	if !strings.EqualFold(principal.Subject, strings.TrimSpace(info.Manufacturer)) {
		return dErrors.New(dErrors.CodeForbidden, "token subject does not match batch manufacturer")
	}
	return nil
}

// buildWitness validates info and converts it to the ledger payload.
func buildWitness(info BatchInfo) (ledger.BatchWitness, error) {
	required := []struct {
		field, value string
	}{
		{"batchId", info.BatchID},
		{"drugName", info.DrugName},
		{"manufacturer", info.Manufacturer},
		{"ndcCode", info.NDCCode},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return ledger.BatchWitness{}, dErrors.New(dErrors.CodeValidation, r.field+" is required")
		}
	}

	manufactured, err := ParseBatchDate(info.ManufacturingDate)
	if err != nil {
		return ledger.BatchWitness{}, dErrors.Wrap(err, dErrors.CodeValidation, "manufacturingDate is invalid")
	}
	expires, err := ParseBatchDate(info.ExpiryDate)
	if err != nil {
		return ledger.BatchWitness{}, dErrors.Wrap(err, dErrors.CodeValidation, "expiryDate is invalid")
	}

	quality := defaultQualityScore
	if info.QualityScore != nil {
		quality = *info.QualityScore
	}
	if quality < 0 || quality > maxQualityScore {
		return ledger.BatchWitness{}, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("qualityScore must be between 0 and %d", maxQualityScore))
	}

	return ledger.BatchWitness{
		BatchID:           strings.TrimSpace(info.BatchID),
		Manufacturer:      strings.TrimSpace(info.Manufacturer),
		DrugCode:          strings.TrimSpace(info.NDCCode),
		ManufacturingDate: manufactured.UnixMilli(),
		ExpiryDate:        expires.UnixMilli(),
		QualityScore:      quality,
	}, nil
}

// ParseBatchDate accepts YYYY-MM-DD (as UTC midnight) or RFC 3339.
func ParseBatchDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not YYYY-MM-DD or RFC 3339", value)
	}
	return t, nil
}
