// Package store persists geofence configurations.
package store

import (
	"context"

	"ponto/internal/geofence/models"
	id "ponto/pkg/domain"
)

// ConfigStore is the persistence port for geofence configurations.
// Get returns (nil, nil) when no config exists: absence is an expected
// operating mode meaning enforcement disabled, never an error.
// Upsert is last-writer-wins; concurrent coordinator edits are serialized at
// the storage layer, not reconciled.
type ConfigStore interface {
	Get(ctx context.Context, institutionID id.InstitutionID) (*models.GeofenceConfig, error)
	Upsert(ctx context.Context, cfg *models.GeofenceConfig) error
}
