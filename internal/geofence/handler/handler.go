// Package handler wires geofence administration endpoints to the geofence
// service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ponto/internal/geofence/models"
	id "ponto/pkg/domain"
	dErrors "ponto/pkg/domain-errors"
	"ponto/pkg/platform/httputil"
	"ponto/pkg/requestcontext"
)

// Service defines the interface for geofence operations.
type Service interface {
	Get(ctx context.Context, institutionID id.InstitutionID) (*models.GeofenceConfig, error)
	Upsert(ctx context.Context, cfg *models.GeofenceConfig) (*models.GeofenceConfig, error)
}

// Handler wires geofence endpoints to the geofence service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a geofence handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts geofence endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/institutions/{institutionID}/geofence", h.HandleGet)
	r.Put("/institutions/{institutionID}/geofence", h.HandleUpsert)
}

// institutionFromPath parses the path institution and checks it against the
// authenticated one. Cross-institution access is forbidden, not not-found, so
// misconfigured clients see the real cause.
func institutionFromPath(r *http.Request) (id.InstitutionID, error) {
	institutionID, err := id.ParseInstitutionID(chi.URLParam(r, "institutionID"))
	if err != nil {
		return id.InstitutionID{}, err
	}
	authenticated := requestcontext.InstitutionID(r.Context())
	if authenticated.IsNil() {
		return id.InstitutionID{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if authenticated != institutionID {
		return id.InstitutionID{}, dErrors.New(dErrors.CodeForbidden, "institution mismatch")
	}
	return institutionID, nil
}

// HandleGet handles GET /institutions/{institutionID}/geofence requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	institutionID, err := institutionFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	cfg, err := h.service.Get(ctx, institutionID)
	if err != nil {
		h.logger.ErrorContext(ctx, "geofence fetch failed",
			"request_id", requestcontext.RequestID(ctx),
			"institution_id", institutionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if cfg == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no geofence configured"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromConfig(cfg))
}

// HandleUpsert handles PUT /institutions/{institutionID}/geofence requests.
func (h *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	institutionID, err := institutionFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpsertRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	saved, err := h.service.Upsert(ctx, &models.GeofenceConfig{
		InstitutionID: institutionID,
		Center:        req.Center(),
		RadiusMeters:  req.RadiusMeters,
		Enabled:       req.Enabled,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "geofence save failed",
			"request_id", requestID,
			"institution_id", institutionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "geofence saved",
		"request_id", requestID,
		"institution_id", institutionID,
		"radius_meters", saved.RadiusMeters,
		"enabled", saved.Enabled,
	)
	httputil.WriteJSON(w, http.StatusOK, FromConfig(saved))
}
