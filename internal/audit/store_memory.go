package audit

import (
	"context"
	"sync"
)

// InMemoryStore keeps audit events in memory, keyed by staff.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := event.StaffID.String()
	s.events[key] = append(s.events[key], event)
	return nil
}

func (s *InMemoryStore) ListByStaff(_ context.Context, staffID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[staffID]...), nil
}

// ListAll returns all events across staff members.
func (s *InMemoryStore) ListAll(_ context.Context) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []Event
	for _, staffEvents := range s.events {
		all = append(all, staffEvents...)
	}
	return all, nil
}
