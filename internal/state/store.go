package state

import (
	"context"
	"encoding/json"
	"sync"
)

// Store persists opaque JSON blobs under string keys. Implementations must
// be safe for concurrent use.
type Store interface {
	Read(ctx context.Context, keys []string) (map[string]json.RawMessage, error)
	Write(ctx context.Context, changes map[string]json.RawMessage) error
	Delete(ctx context.Context, keys []string) error
}

// MemoryStore keeps state in a mutex-guarded map. It is the default backend
// and loses everything on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]json.RawMessage)}
}

func (s *MemoryStore) Read(ctx context.Context, keys []string) (map[string]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]json.RawMessage, len(keys))
	for _, key := range keys {
		if value, ok := s.data[key]; ok {
			result[key] = value
		}
	}
	return result, nil
}

func (s *MemoryStore) Write(ctx context.Context, changes map[string]json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range changes {
		s.data[key] = value
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}
