// Package models defines the geofence configuration and evaluation types.
package models

import (
	"time"

	"ponto/internal/geo"
	id "ponto/pkg/domain"
	dErrors "ponto/pkg/domain-errors"
)

// GeofenceConfig is an institution's allowed check-in perimeter. One row per
// institution with upsert semantics; disabling keeps the stored center and
// radius so the toggle is reversible.
type GeofenceConfig struct {
	ID            id.GeofenceID    `json:"id"`
	InstitutionID id.InstitutionID `json:"institution_id"`
	Center        geo.Coordinate   `json:"center"`
	RadiusMeters  int              `json:"radius_meters"`
	Enabled       bool             `json:"enabled"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Validate enforces the config invariants before any write.
func (c *GeofenceConfig) Validate() error {
	if c.InstitutionID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "institution_id is required")
	}
	if c.RadiusMeters <= 0 {
		return dErrors.Newf(dErrors.CodeInvalidInput, "radius_meters must be positive, got %d", c.RadiusMeters)
	}
	return c.Center.Validate()
}

// Evaluation is the admissibility decision for one coordinate against one
// config. DistanceMeters is always populated for audit, even when enforcement
// is off; it is NaN when no config exists at all.
type Evaluation struct {
	DistanceMeters float64 `json:"distance_meters"`
	WithinRadius   bool    `json:"within_radius"`
}
