package audit

import "context"

// Store is the append-only persistence port for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByStaff(ctx context.Context, staffID string) ([]Event, error)
}
