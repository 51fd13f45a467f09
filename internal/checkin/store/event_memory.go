package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"ponto/internal/checkin/models"
	id "ponto/pkg/domain"
)

// InMemoryEventStore implements EventStore for tests and storage-less runs.
type InMemoryEventStore struct {
	mu     sync.RWMutex
	events []*models.CheckinEvent
}

// NewInMemoryEvents creates a new in-memory ledger.
func NewInMemoryEvents() *InMemoryEventStore {
	return &InMemoryEventStore{}
}

func (s *InMemoryEventStore) Append(_ context.Context, event *models.CheckinEvent) error {
	if event == nil {
		return fmt.Errorf("checkin event is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *event
	s.events = append(s.events, &copied)
	return nil
}

func (s *InMemoryEventStore) ListByInstitution(_ context.Context, institutionID id.InstitutionID, window models.Window, kinds ...models.CheckKind) ([]*models.CheckinEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.CheckinEvent
	for _, event := range s.events {
		if event.InstitutionID != institutionID {
			continue
		}
		if !window.Since.IsZero() && event.OccurredAt.Before(window.Since) {
			continue
		}
		if len(kinds) > 0 && !slices.Contains(kinds, event.Kind) {
			continue
		}
		copied := *event
		matched = append(matched, &copied)
	}

	slices.SortFunc(matched, func(a, b *models.CheckinEvent) int {
		return b.OccurredAt.Compare(a.OccurredAt)
	})
	if window.Limit > 0 && len(matched) > window.Limit {
		matched = matched[:window.Limit]
	}
	return matched, nil
}

func (s *InMemoryEventStore) ListByStaff(_ context.Context, institutionID id.InstitutionID, staffID id.StaffID, window models.Window) ([]*models.CheckinEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Filter by staff before applying the window limit, so a quiet staff
	// member's history survives a busy institution's volume.
	var matched []*models.CheckinEvent
	for _, event := range s.events {
		if event.InstitutionID != institutionID || event.StaffID != staffID {
			continue
		}
		if !window.Since.IsZero() && event.OccurredAt.Before(window.Since) {
			continue
		}
		copied := *event
		matched = append(matched, &copied)
	}

	slices.SortFunc(matched, func(a, b *models.CheckinEvent) int {
		return b.OccurredAt.Compare(a.OccurredAt)
	})
	if window.Limit > 0 && len(matched) > window.Limit {
		matched = matched[:window.Limit]
	}
	return matched, nil
}

// Len reports the number of committed events. Tests use it to assert the
// zero-writes-on-upload-failure invariant.
func (s *InMemoryEventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
