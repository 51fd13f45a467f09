package store

import (
	"context"
	"fmt"
	"sync"

	"ponto/internal/checkin/models"
	id "ponto/pkg/domain"
)

type sessionKey struct {
	institutionID id.InstitutionID
	staffID       id.StaffID
	day           string
}

// InMemorySessionStore implements SessionStore with a map keyed by
// staff and day.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[sessionKey]models.AttendanceSession
}

// NewInMemorySessions creates a new in-memory session store.
func NewInMemorySessions() *InMemorySessionStore {
	return &InMemorySessionStore{
		sessions: make(map[sessionKey]models.AttendanceSession),
	}
}

func (s *InMemorySessionStore) GetByStaffDay(_ context.Context, institutionID id.InstitutionID, staffID id.StaffID, day string) (*models.AttendanceSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if session, exists := s.sessions[sessionKey{institutionID, staffID, day}]; exists {
		copied := session
		return &copied, nil
	}
	return nil, nil
}

func (s *InMemorySessionStore) Upsert(_ context.Context, session *models.AttendanceSession) error {
	if session == nil {
		return fmt.Errorf("attendance session is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionKey{session.InstitutionID, session.StaffID, session.Day}] = *session
	return nil
}
