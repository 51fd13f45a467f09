package handler

import (
	"ponto/internal/geo"
	dErrors "ponto/pkg/domain-errors"
)

// UpsertRequest is the HTTP request body for PUT /institutions/{institutionID}/geofence.
type UpsertRequest struct {
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	RadiusMeters int      `json:"radius_meters"`
	Enabled      bool     `json:"enabled"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *UpsertRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Latitude == nil || r.Longitude == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "latitude and longitude are required")
	}
	return geo.Coordinate{Latitude: *r.Latitude, Longitude: *r.Longitude}.Validate()
}

// Center returns the validated perimeter center.
func (r *UpsertRequest) Center() geo.Coordinate {
	return geo.Coordinate{Latitude: *r.Latitude, Longitude: *r.Longitude}
}
