package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pharmaguard/internal/verification"
	"pharmaguard/pkg/platform/httputil"
	"pharmaguard/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the interface for verification operations.
type Service interface {
	Verify(ctx context.Context, identifier string) (*verification.Report, error)
	VerifyMany(ctx context.Context, identifiers []string) ([]*verification.Report, error)
	RegisterBatch(ctx context.Context, info verification.BatchInfo) (*verification.Registration, error)
	State() verification.State
}

// Handler wires verification endpoints to the verification service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a verification handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterVerify mounts single-identifier verification.
func (h *Handler) RegisterVerify(r chi.Router) {
	r.Post("/v1/verify", h.HandleVerify)
}

// RegisterVerifyBulk mounts bulk verification. It is kept separate so the
// router can meter it under its own rate limit scope.
func (h *Handler) RegisterVerifyBulk(r chi.Router) {
	r.Post("/v1/verify/bulk", h.HandleVerifyBulk)
}

// RegisterBatches mounts the batch registration endpoint. Callers wrap r with
// manufacturer authentication.
func (h *Handler) RegisterBatches(r chi.Router) {
	r.Post("/v1/batches", h.HandleRegisterBatch)
}

// RegisterProbes mounts liveness and readiness probes.
func (h *Handler) RegisterProbes(r chi.Router) {
	r.Get("/healthz", h.HandleHealth)
	r.Get("/readyz", h.HandleReady)
}

// HandleVerify handles POST /v1/verify requests.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	report, err := h.service.Verify(ctx, req.Identifier)
	if err != nil {
		h.logger.WarnContext(ctx, "verification rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromReport(report))
}

// HandleVerifyBulk handles POST /v1/verify/bulk requests.
func (h *Handler) HandleVerifyBulk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[BulkVerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	reports, err := h.service.VerifyMany(ctx, req.Identifiers)
	if err != nil {
		h.logger.WarnContext(ctx, "bulk verification failed",
			"request_id", requestID,
			"count", len(req.Identifiers),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	resp := &BulkVerifyResponse{Reports: make([]*ReportResponse, 0, len(reports))}
	for _, report := range reports {
		resp.Reports = append(resp.Reports, FromReport(report))
	}

	h.logger.InfoContext(ctx, "bulk verification completed",
		"request_id", requestID,
		"count", len(reports),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleRegisterBatch handles POST /v1/batches requests.
func (h *Handler) HandleRegisterBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterBatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	reg, err := h.service.RegisterBatch(ctx, req.ToBatchInfo())
	if err != nil {
		h.logger.WarnContext(ctx, "batch registration failed",
			"request_id", requestID,
			"batch_id", req.BatchID,
			"subject", requestcontext.Principal(ctx).Subject,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromRegistration(reg))
}

// HandleHealth handles GET /healthz.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleReady handles GET /readyz. It answers 503 until Init has run;
// a degraded engine is still ready.
func (h *Handler) HandleReady(w http.ResponseWriter, _ *http.Request) {
	state := h.service.State()
	status := http.StatusOK
	if !state.Ready() {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, FromState(state))
}
