package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ponto/internal/geo"
	"ponto/internal/geofence/models"
	id "ponto/pkg/domain"
)

// PostgresConfigStore persists geofence configs in PostgreSQL, one row per
// institution. Upserts are last-writer-wins via ON CONFLICT.
type PostgresConfigStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed config store.
func NewPostgres(db *sql.DB) *PostgresConfigStore {
	return &PostgresConfigStore{db: db}
}

func (s *PostgresConfigStore) Get(ctx context.Context, institutionID id.InstitutionID) (*models.GeofenceConfig, error) {
	query := `
		SELECT id, institution_id, latitude, longitude, radius_meters, enabled, updated_at
		FROM institution_geofence
		WHERE institution_id = $1
	`
	var (
		cfg      models.GeofenceConfig
		rawID    uuid.UUID
		rawInst  uuid.UUID
		lat, lng float64
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(institutionID)).Scan(
		&rawID, &rawInst, &lat, &lng, &cfg.RadiusMeters, &cfg.Enabled, &cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Absence means enforcement disabled, not a fault.
			return nil, nil
		}
		return nil, fmt.Errorf("get geofence config: %w", err)
	}
	cfg.ID = id.GeofenceID(rawID)
	cfg.InstitutionID = id.InstitutionID(rawInst)
	cfg.Center = geo.Coordinate{Latitude: lat, Longitude: lng}
	return &cfg, nil
}

func (s *PostgresConfigStore) Upsert(ctx context.Context, cfg *models.GeofenceConfig) error {
	if cfg == nil {
		return fmt.Errorf("geofence config is required")
	}
	query := `
		INSERT INTO institution_geofence (id, institution_id, latitude, longitude, radius_meters, enabled, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (institution_id) DO UPDATE SET
			latitude      = EXCLUDED.latitude,
			longitude     = EXCLUDED.longitude,
			radius_meters = EXCLUDED.radius_meters,
			enabled       = EXCLUDED.enabled,
			updated_at    = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(cfg.ID),
		uuid.UUID(cfg.InstitutionID),
		cfg.Center.Latitude,
		cfg.Center.Longitude,
		cfg.RadiusMeters,
		cfg.Enabled,
		cfg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert geofence config: %w", err)
	}
	return nil
}
