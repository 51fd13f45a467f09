package handler

import (
	"time"

	"ponto/internal/geofence/models"
)

// ConfigResponse is the HTTP shape of an institution's geofence config.
type ConfigResponse struct {
	InstitutionID string    `json:"institution_id"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	RadiusMeters  int       `json:"radius_meters"`
	Enabled       bool      `json:"enabled"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FromConfig converts a domain config to its HTTP shape.
func FromConfig(cfg *models.GeofenceConfig) *ConfigResponse {
	return &ConfigResponse{
		InstitutionID: cfg.InstitutionID.String(),
		Latitude:      cfg.Center.Latitude,
		Longitude:     cfg.Center.Longitude,
		RadiusMeters:  cfg.RadiusMeters,
		Enabled:       cfg.Enabled,
		UpdatedAt:     cfg.UpdatedAt,
	}
}
