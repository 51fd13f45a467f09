// Package audit captures structured operational events emitted from domain
// logic. The checkin ledger itself is the system of record; audit events are
// operational visibility on top of it (rejections, orphans, config edits).
package audit

import (
	"time"

	id "ponto/pkg/domain"
)

// Action names the audited operation.
type Action string

const (
	ActionCheckinCommitted       Action = "checkin_committed"
	ActionCheckinOutsideRadius   Action = "checkin_outside_radius"
	ActionCheckinRejected        Action = "checkin_rejected"
	ActionProofOrphaned          Action = "proof_orphaned"
	ActionGeofenceUpdated        Action = "geofence_updated"
	ActionSubmissionDeduplicated Action = "submission_deduplicated"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp     time.Time        `json:"timestamp"`
	InstitutionID id.InstitutionID `json:"institution_id"`
	StaffID       id.StaffID       `json:"staff_id"`
	Action        Action           `json:"action"`
	Subject       string           `json:"subject,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	RequestID     string           `json:"request_id,omitempty"`
	DeviceID      string           `json:"device_id,omitempty"`
}
