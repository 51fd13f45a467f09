// Package store persists the attendance ledger: append-only checkin events,
// the paired session rows, and submission attempt reservations.
package store

import (
	"context"

	"ponto/internal/checkin/models"
	id "ponto/pkg/domain"
)

// EventStore is the append-only ledger port. There are deliberately no
// update or delete operations: committed events are immutable.
type EventStore interface {
	Append(ctx context.Context, event *models.CheckinEvent) error
	// ListByInstitution returns events inside the window, newest first.
	// An optional kind filter narrows to arrivals or departures.
	ListByInstitution(ctx context.Context, institutionID id.InstitutionID, window models.Window, kinds ...models.CheckKind) ([]*models.CheckinEvent, error)
	ListByStaff(ctx context.Context, institutionID id.InstitutionID, staffID id.StaffID, window models.Window) ([]*models.CheckinEvent, error)
}

// SessionStore persists the paired arrival/departure day rows.
type SessionStore interface {
	GetByStaffDay(ctx context.Context, institutionID id.InstitutionID, staffID id.StaffID, day string) (*models.AttendanceSession, error)
	Upsert(ctx context.Context, session *models.AttendanceSession) error
}

// AttemptStore reserves client-generated idempotency tokens before any
// upload starts. A second reservation of the same token must fail with
// sentinel.ErrAlreadyUsed so rapid double-submission cannot upload twice.
// Reservations outlive only committed submissions: a failed one is released
// so the client can retry with the same token.
type AttemptStore interface {
	Reserve(ctx context.Context, attemptID id.AttemptID) error
	// Release frees a reservation whose submission did not commit. Releasing
	// an unknown token is a no-op.
	Release(ctx context.Context, attemptID id.AttemptID) error
}
