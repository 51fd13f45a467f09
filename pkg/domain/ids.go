// Package domain defines the typed identifiers shared across ponto.
//
// IDs are distinct types over uuid.UUID so an InstitutionID can never be
// passed where a StaffID is expected. Parsing enforces the trust-boundary
// invariant that IDs are valid, non-empty, non-nil UUIDs.
package domain

import (
	"fmt"

	"github.com/google/uuid"

	dErrors "ponto/pkg/domain-errors"
)

type (
	// InstitutionID identifies an institution (school) tenant.
	InstitutionID uuid.UUID
	// StaffID identifies a staff member recording work-session boundaries.
	StaffID uuid.UUID
	// CheckinID identifies a single committed ledger entry.
	CheckinID uuid.UUID
	// AttendanceSessionID identifies a paired arrival/departure row.
	AttendanceSessionID uuid.UUID
	// GeofenceID identifies an institution's geofence configuration row.
	GeofenceID uuid.UUID
	// AttemptID is the client-generated idempotency token for one
	// submission attempt.
	AttemptID uuid.UUID
)

func (id InstitutionID) String() string       { return uuid.UUID(id).String() }
func (id StaffID) String() string             { return uuid.UUID(id).String() }
func (id CheckinID) String() string           { return uuid.UUID(id).String() }
func (id AttendanceSessionID) String() string { return uuid.UUID(id).String() }
func (id GeofenceID) String() string          { return uuid.UUID(id).String() }
func (id AttemptID) String() string           { return uuid.UUID(id).String() }

func (id InstitutionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id StaffID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id CheckinID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id AttemptID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }

// NewCheckinID generates a fresh ledger entry identifier.
func NewCheckinID() CheckinID { return CheckinID(uuid.New()) }

// NewAttemptID generates a fresh submission attempt token.
func NewAttemptID() AttemptID { return AttemptID(uuid.New()) }

// NewAttendanceSessionID generates a fresh paired-row identifier.
func NewAttendanceSessionID() AttendanceSessionID { return AttendanceSessionID(uuid.New()) }

// parseUUID is the shared trust-boundary parser for all typed IDs.
func parseUUID(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s is required", kind))
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, fmt.Sprintf("invalid %s", kind))
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s must not be the nil UUID", kind))
	}
	return parsed, nil
}

// ParseInstitutionID parses and validates an institution ID string.
func ParseInstitutionID(raw string) (InstitutionID, error) {
	parsed, err := parseUUID(raw, "institution_id")
	if err != nil {
		return InstitutionID{}, err
	}
	return InstitutionID(parsed), nil
}

// ParseStaffID parses and validates a staff ID string.
func ParseStaffID(raw string) (StaffID, error) {
	parsed, err := parseUUID(raw, "staff_id")
	if err != nil {
		return StaffID{}, err
	}
	return StaffID(parsed), nil
}

// ParseCheckinID parses and validates a checkin ID string.
func ParseCheckinID(raw string) (CheckinID, error) {
	parsed, err := parseUUID(raw, "checkin_id")
	if err != nil {
		return CheckinID{}, err
	}
	return CheckinID(parsed), nil
}

// ParseAttemptID parses and validates a submission attempt token.
func ParseAttemptID(raw string) (AttemptID, error) {
	parsed, err := parseUUID(raw, "attempt_id")
	if err != nil {
		return AttemptID{}, err
	}
	return AttemptID(parsed), nil
}
