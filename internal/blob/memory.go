package blob

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory implements Store backed by process memory. Intended for tests.
type Memory struct {
	mu   sync.RWMutex
	objs map[string][]byte
}

// NewMemory returns an in-memory store.
func NewMemory() *Memory { return &Memory{objs: make(map[string][]byte)} }

// Driver returns the memory driver identifier.
func (s *Memory) Driver() Driver { return DriverMemory }

// Put stores a copy of data under key.
func (s *Memory) Put(_ context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	s.mu.Lock()
	s.objs[key] = cp
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the object stored under key.
func (s *Memory) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	data, ok := s.objs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotExist, key)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Exists reports whether key is stored.
func (s *Memory) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	_, ok := s.objs[key]
	s.mu.RUnlock()
	return ok, nil
}

// List returns stored keys with the given prefix, ascending.
func (s *Memory) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	keys := make([]string, 0, len(s.objs))
	for k := range s.objs {
		if prefix == "" || len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	s.mu.RUnlock()
	sort.Strings(keys)
	return keys, nil
}
