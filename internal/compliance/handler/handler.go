// Package handler wires compliance reporting endpoints to the compliance
// service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ponto/internal/checkin/models"
	"ponto/internal/compliance"
	id "ponto/pkg/domain"
	dErrors "ponto/pkg/domain-errors"
	"ponto/pkg/platform/httputil"
	"ponto/pkg/requestcontext"
)

// Service defines the interface for compliance reporting.
type Service interface {
	Fleet(ctx context.Context, institutionID id.InstitutionID, rng models.WindowRange) (*compliance.FleetSummary, error)
	Staff(ctx context.Context, institutionID id.InstitutionID, staffID id.StaffID, rng models.WindowRange) (*compliance.StaffSummary, error)
}

// Handler wires compliance endpoints to the compliance service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a compliance handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts compliance endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/attendance/compliance", h.HandleReport)
}

// HandleReport handles GET /attendance/compliance requests. Query parameters:
// range (week|month|all, default week), staff_id for a single-staff summary.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	institutionID := requestcontext.InstitutionID(ctx)
	if institutionID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	rng := models.WindowRange(r.URL.Query().Get("range"))

	if rawStaff := r.URL.Query().Get("staff_id"); rawStaff != "" {
		staffID, err := id.ParseStaffID(rawStaff)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		summary, err := h.service.Staff(ctx, institutionID, staffID, rng)
		if err != nil {
			h.logger.ErrorContext(ctx, "staff compliance report failed",
				"request_id", requestID,
				"institution_id", institutionID,
				"staff_id", staffID,
				"error", err,
			)
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, summary)
		return
	}

	summary, err := h.service.Fleet(ctx, institutionID, rng)
	if err != nil {
		h.logger.ErrorContext(ctx, "fleet compliance report failed",
			"request_id", requestID,
			"institution_id", institutionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}
