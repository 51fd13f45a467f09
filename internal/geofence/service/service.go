// Package service validates geofence configurations and evaluates check-in
// admissibility against them.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"ponto/internal/audit"
	"ponto/internal/geo"
	"ponto/internal/geofence/models"
	"ponto/internal/geofence/store"
	id "ponto/pkg/domain"
	dErrors "ponto/pkg/domain-errors"
	"ponto/pkg/requestcontext"
)

// AuditPublisher is the audit emission port.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store          store.ConfigStore
	auditPublisher AuditPublisher
	logger         *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = publisher }
}

func New(configStore store.ConfigStore, opts ...Option) (*Service, error) {
	if configStore == nil {
		return nil, fmt.Errorf("geofence config store is required")
	}
	svc := &Service{store: configStore}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Get returns the institution's config, or nil when none is set. Absence is
// an expected operating mode (enforcement disabled), never an error.
func (s *Service) Get(ctx context.Context, institutionID id.InstitutionID) (*models.GeofenceConfig, error) {
	if institutionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "institution_id is required")
	}
	cfg, err := s.store.Get(ctx, institutionID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load geofence config")
	}
	return cfg, nil
}

// Upsert validates and saves the institution's perimeter. Invalid input is
// rejected before any write; saves are last-writer-wins and a disable toggle
// keeps the stored center and radius.
func (s *Service) Upsert(ctx context.Context, cfg *models.GeofenceConfig) (*models.GeofenceConfig, error) {
	if cfg == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "geofence config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	saved := *cfg
	if saved.ID == (id.GeofenceID{}) {
		saved.ID = id.GeofenceID(uuid.New())
	}
	saved.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Upsert(ctx, &saved); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save geofence config")
	}

	if s.auditPublisher != nil {
		_ = s.auditPublisher.Emit(ctx, audit.Event{
			InstitutionID: saved.InstitutionID,
			Action:        audit.ActionGeofenceUpdated,
			Subject:       saved.InstitutionID.String(),
			Reason:        fmt.Sprintf("radius=%dm enabled=%t", saved.RadiusMeters, saved.Enabled),
		})
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "geofence config saved",
			"institution_id", saved.InstitutionID,
			"radius_meters", saved.RadiusMeters,
			"enabled", saved.Enabled,
		)
	}
	return &saved, nil
}

// Evaluate decides admissibility of a coordinate against a config and always
// records the distance for audit, regardless of the decision:
//   - no config on file: within, distance NaN (nothing to measure against)
//   - enforcement disabled: within, distance still computed
//   - enforcement enabled: within iff distance <= radius
func Evaluate(coordinate geo.Coordinate, cfg *models.GeofenceConfig) models.Evaluation {
	if cfg == nil {
		return models.Evaluation{DistanceMeters: math.NaN(), WithinRadius: true}
	}
	distance := geo.Distance(coordinate, cfg.Center)
	if !cfg.Enabled {
		return models.Evaluation{DistanceMeters: distance, WithinRadius: true}
	}
	return models.Evaluation{
		DistanceMeters: distance,
		WithinRadius:   distance <= float64(cfg.RadiusMeters),
	}
}

// EvaluateFor loads the institution's config and evaluates the coordinate
// against it.
func (s *Service) EvaluateFor(ctx context.Context, institutionID id.InstitutionID, coordinate geo.Coordinate) (models.Evaluation, error) {
	cfg, err := s.Get(ctx, institutionID)
	if err != nil {
		return models.Evaluation{}, err
	}
	return Evaluate(coordinate, cfg), nil
}
