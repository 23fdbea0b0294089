package inmem

import (
	"sync"

	"github.com/compliedu/backend/core"
)

// Store is an in-memory core.KeyValueStore, used in tests and as a throwaway
// dev backend.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ core.KeyValueStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	if !ok {
		return nil, core.ErrKeyNotFound
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (s *Store) Set(key string, value []byte) error {
	val := make([]byte, len(value))
	copy(val, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = val
	return nil
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
