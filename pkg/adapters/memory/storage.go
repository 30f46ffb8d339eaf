package memory

import (
	"context"
	"sync"
)

// Storage implements ports.Storage in memory.
// Safe for concurrent use.
type Storage struct {
	data map[string]string
	mu   sync.RWMutex
}

// NewStorage creates a new in-memory key/value storage.
func NewStorage() *Storage {
	return &Storage{
		data: make(map[string]string),
	}
}

// GetItem returns the value stored under key.
func (s *Storage) GetItem(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	return val, ok, nil
}

// SetItem stores value under key.
func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// RemoveItem deletes key.
func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
