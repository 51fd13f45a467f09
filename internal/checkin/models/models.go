// Package models defines the attendance ledger types.
package models

import (
	"time"

	"ponto/internal/geo"
	id "ponto/pkg/domain"
	dErrors "ponto/pkg/domain-errors"
)

// CheckKind distinguishes the two work-session boundaries.
type CheckKind string

const (
	KindArrival   CheckKind = "arrival"
	KindDeparture CheckKind = "departure"
)

// Valid reports whether the kind is one of the two boundary kinds.
func (k CheckKind) Valid() bool {
	return k == KindArrival || k == KindDeparture
}

// SessionStatus values for the paired attendance row. Only the pending state
// is set here; the transition to a terminal state belongs to the external
// human-review workflow.
const StatusPendingValidation = "pending_validation"

// CheckinEvent is one append-only ledger entry. Immutable once committed;
// this core never updates or deletes committed events.
type CheckinEvent struct {
	ID             id.CheckinID     `json:"id"`
	InstitutionID  id.InstitutionID `json:"institution_id"`
	StaffID        id.StaffID       `json:"staff_id"`
	Kind           CheckKind        `json:"kind"`
	OccurredAt     time.Time        `json:"occurred_at"`
	Coordinate     geo.Coordinate   `json:"coordinate"`
	DistanceMeters float64          `json:"distance_meters"`
	WithinRadius   bool             `json:"within_radius"`
	// ProofRef resolves to a previously-uploaded artifact. The commit
	// protocol guarantees the upload succeeded before the event exists.
	ProofRef string `json:"proof_ref"`
}

// AttendanceSession is the paired day view over two checkin events for one
// staff member. Status is owned by the external review workflow.
type AttendanceSession struct {
	ID            id.AttendanceSessionID `json:"id"`
	InstitutionID id.InstitutionID       `json:"institution_id"`
	StaffID       id.StaffID             `json:"staff_id"`
	Day           string                 `json:"day"` // YYYY-MM-DD in the institution's clock

	ArrivalTime      *time.Time      `json:"arrival_time,omitempty"`
	ArrivalPhotoPath string          `json:"arrival_photo_path,omitempty"`
	ArrivalCoords    *geo.Coordinate `json:"arrival_coords,omitempty"`

	DepartureTime      *time.Time      `json:"departure_time,omitempty"`
	DeparturePhotoPath string          `json:"departure_photo_path,omitempty"`
	DepartureCoords    *geo.Coordinate `json:"departure_coords,omitempty"`

	Status string `json:"status"`
}

// Window bounds a ledger read. A zero Since means unbounded history; Limit
// caps the slice as a deliberate completeness/cost trade-off documented to
// callers of the compliance aggregation.
type Window struct {
	Since time.Time
	Limit int
}

// WindowRange is the named compliance window selected by reporting callers.
type WindowRange string

const (
	RangeWeek  WindowRange = "week"
	RangeMonth WindowRange = "month"
	RangeAll   WindowRange = "all"
)

// DefaultWindowLimit caps ledger reads for aggregation.
const DefaultWindowLimit = 200

// WindowFor translates a named range into a concrete Window anchored at now.
func WindowFor(r WindowRange, now time.Time) (Window, error) {
	switch r {
	case RangeWeek, "":
		return Window{Since: now.AddDate(0, 0, -7), Limit: DefaultWindowLimit}, nil
	case RangeMonth:
		return Window{Since: now.AddDate(0, -1, 0), Limit: DefaultWindowLimit}, nil
	case RangeAll:
		return Window{Limit: DefaultWindowLimit}, nil
	default:
		return Window{}, dErrors.Newf(dErrors.CodeInvalidInput, "unknown range %q", r)
	}
}
