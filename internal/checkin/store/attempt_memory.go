package store

import (
	"context"
	"sync"

	id "ponto/pkg/domain"
	"ponto/pkg/platform/sentinel"
)

// InMemoryAttemptStore tracks reserved submission attempt tokens.
type InMemoryAttemptStore struct {
	mu       sync.Mutex
	reserved map[id.AttemptID]struct{}
}

// NewInMemoryAttempts creates a new in-memory attempt registry.
func NewInMemoryAttempts() *InMemoryAttemptStore {
	return &InMemoryAttemptStore{reserved: make(map[id.AttemptID]struct{})}
}

func (s *InMemoryAttemptStore) Reserve(_ context.Context, attemptID id.AttemptID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.reserved[attemptID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.reserved[attemptID] = struct{}{}
	return nil
}

func (s *InMemoryAttemptStore) Release(_ context.Context, attemptID id.AttemptID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reserved, attemptID)
	return nil
}
