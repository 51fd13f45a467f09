package handler

import (
	"math"
	"time"

	"ponto/internal/checkin/models"
	"ponto/internal/geo"
)

// CheckinResponse is the HTTP shape of one ledger entry.
type CheckinResponse struct {
	ID            string         `json:"id"`
	InstitutionID string         `json:"institution_id"`
	StaffID       string         `json:"staff_id"`
	Kind          string         `json:"kind"`
	OccurredAt    time.Time      `json:"occurred_at"`
	Coordinate    geo.Coordinate `json:"coordinate"`
	// DistanceMeters is omitted when no geofence was on file to measure
	// against.
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
	WithinRadius   bool     `json:"within_radius"`
	ProofRef       string   `json:"proof_ref"`
}

// ListResponse is the HTTP response for GET /attendance/checkins.
type ListResponse struct {
	Checkins []*CheckinResponse `json:"checkins"`
	Count    int                `json:"count"`
}

// FromEvent converts a ledger entry to its HTTP shape.
func FromEvent(event *models.CheckinEvent) *CheckinResponse {
	resp := &CheckinResponse{
		ID:            event.ID.String(),
		InstitutionID: event.InstitutionID.String(),
		StaffID:       event.StaffID.String(),
		Kind:          string(event.Kind),
		OccurredAt:    event.OccurredAt,
		Coordinate:    event.Coordinate,
		WithinRadius:  event.WithinRadius,
		ProofRef:      event.ProofRef,
	}
	if !math.IsNaN(event.DistanceMeters) {
		distance := event.DistanceMeters
		resp.DistanceMeters = &distance
	}
	return resp
}

// FromEvents converts a slice of ledger entries.
func FromEvents(events []*models.CheckinEvent) *ListResponse {
	checkins := make([]*CheckinResponse, 0, len(events))
	for _, event := range events {
		checkins = append(checkins, FromEvent(event))
	}
	return &ListResponse{Checkins: checkins, Count: len(checkins)}
}
