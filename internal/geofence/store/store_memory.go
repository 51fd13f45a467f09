package store

import (
	"context"
	"fmt"
	"sync"

	"ponto/internal/geofence/models"
	id "ponto/pkg/domain"
)

// InMemoryConfigStore implements ConfigStore with a map, one entry per
// institution.
type InMemoryConfigStore struct {
	mu      sync.RWMutex
	configs map[id.InstitutionID]models.GeofenceConfig
}

// NewInMemory creates a new in-memory config store.
func NewInMemory() *InMemoryConfigStore {
	return &InMemoryConfigStore{
		configs: make(map[id.InstitutionID]models.GeofenceConfig),
	}
}

func (s *InMemoryConfigStore) Get(_ context.Context, institutionID id.InstitutionID) (*models.GeofenceConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cfg, exists := s.configs[institutionID]; exists {
		copied := cfg
		return &copied, nil
	}
	return nil, nil
}

func (s *InMemoryConfigStore) Upsert(_ context.Context, cfg *models.GeofenceConfig) error {
	if cfg == nil {
		return fmt.Errorf("geofence config is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[cfg.InstitutionID] = *cfg
	return nil
}
