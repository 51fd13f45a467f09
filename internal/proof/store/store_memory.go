package store

import (
	"context"
	"fmt"
	"sync"

	"ponto/pkg/platform/sentinel"
)

// InMemoryObjectStore keeps artifacts in a map. Used in tests and when no
// durable storage is configured.
type InMemoryObjectStore struct {
	mu      sync.RWMutex
	objects map[string]Object
	baseURL string
}

// NewInMemory constructs an in-memory object store. baseURL prefixes the
// public handles it hands out.
func NewInMemory(baseURL string) *InMemoryObjectStore {
	return &InMemoryObjectStore{
		objects: make(map[string]Object),
		baseURL: baseURL,
	}
}

func (s *InMemoryObjectStore) Put(_ context.Context, obj Object) error {
	if obj.Path == "" {
		return fmt.Errorf("object path is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := obj
	stored.Data = append([]byte(nil), obj.Data...)
	s.objects[obj.Path] = stored
	return nil
}

func (s *InMemoryObjectStore) Get(_ context.Context, path string) (*Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[path]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := obj
	copied.Data = append([]byte(nil), obj.Data...)
	return &copied, nil
}

func (s *InMemoryObjectStore) URL(path string) string {
	return s.baseURL + "/" + path
}

// Len reports the number of stored objects. Tests use it to assert orphan
// behavior after simulated persist failures.
func (s *InMemoryObjectStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
