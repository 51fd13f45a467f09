// Package handler wires attendance endpoints to the checkin service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ponto/internal/checkin/models"
	"ponto/internal/checkin/service"
	"ponto/internal/proof"
	id "ponto/pkg/domain"
	dErrors "ponto/pkg/domain-errors"
	"ponto/pkg/platform/httputil"
	"ponto/pkg/requestcontext"
)

// Service defines the interface for checkin operations.
type Service interface {
	Record(ctx context.Context, req service.RecordRequest) (*models.CheckinEvent, error)
	History(ctx context.Context, institutionID id.InstitutionID, rng models.WindowRange, kinds ...models.CheckKind) ([]*models.CheckinEvent, error)
	StaffHistory(ctx context.Context, institutionID id.InstitutionID, staffID id.StaffID, rng models.WindowRange) ([]*models.CheckinEvent, error)
}

// Handler wires attendance endpoints to the checkin service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a checkin handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts attendance endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/attendance/checkins", h.HandleSubmit)
	r.Get("/attendance/checkins", h.HandleList)
}

// HandleSubmit handles POST /attendance/checkins requests.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	staffID := requestcontext.StaffID(ctx)
	institutionID := requestcontext.InstitutionID(ctx)
	if staffID.IsNil() || institutionID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	event, err := h.service.Record(ctx, service.RecordRequest{
		InstitutionID: institutionID,
		StaffID:       staffID,
		Kind:          req.ParsedKind(),
		Coordinate:    req.Coordinate,
		Proof: &proof.Artifact{
			Data:        req.Proof.Data,
			ContentType: req.Proof.ContentType,
		},
		AttemptID: req.ParsedAttemptID(),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "checkin submission failed",
			"request_id", requestID,
			"staff_id", staffID,
			"kind", req.Kind,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "checkin submitted",
		"request_id", requestID,
		"staff_id", staffID,
		"kind", event.Kind,
		"within_radius", event.WithinRadius,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromEvent(event))
}

// HandleList handles GET /attendance/checkins requests. Query parameters:
// range (week|month|all, default week), kind, staff_id.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	institutionID := requestcontext.InstitutionID(ctx)
	if institutionID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	rng := models.WindowRange(r.URL.Query().Get("range"))

	var (
		events []*models.CheckinEvent
		err    error
	)
	if rawStaff := r.URL.Query().Get("staff_id"); rawStaff != "" {
		var staffID id.StaffID
		staffID, err = id.ParseStaffID(rawStaff)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		events, err = h.service.StaffHistory(ctx, institutionID, staffID, rng)
	} else {
		var kinds []models.CheckKind
		if rawKind := r.URL.Query().Get("kind"); rawKind != "" {
			kind := models.CheckKind(rawKind)
			if !kind.Valid() {
				httputil.WriteError(w, dErrors.Newf(dErrors.CodeInvalidInput, "unknown kind %q", rawKind))
				return
			}
			kinds = append(kinds, kind)
		}
		events, err = h.service.History(ctx, institutionID, rng, kinds...)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "checkin listing failed",
			"request_id", requestID,
			"institution_id", institutionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromEvents(events))
}
