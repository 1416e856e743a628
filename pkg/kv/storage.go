package kv

import (
	"context"
	"errors"
	"maps"
	"sync"
)

var (
	// ErrUnavailable is returned by storages that have no backing store.
	ErrUnavailable = errors.New("kv: storage unavailable")
	// ErrKeyRequired indicates an empty key.
	ErrKeyRequired = errors.New("kv: key is required")
)

// Storage reads and writes string values under string keys.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// NoopStorage models an environment without persistent storage. Reads find
// nothing and writes are discarded.
type NoopStorage struct{}

func (NoopStorage) Get(context.Context, string) (string, bool, error) { return "", false, nil }

func (NoopStorage) Set(context.Context, string, string) error { return nil }

func (NoopStorage) Delete(context.Context, string) error { return nil }

// MemoryStorage is a map-backed Storage for tests and headless hosts.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage returns a MemoryStorage seeded with a copy of initial.
func NewMemoryStorage(initial map[string]string) *MemoryStorage {
	values := make(map[string]string, len(initial))
	maps.Copy(values, initial)
	return &MemoryStorage{values: values}
}

func (s *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrKeyRequired
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *MemoryStorage) Set(_ context.Context, key, value string) error {
	if key == "" {
		return ErrKeyRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = map[string]string{}
	}
	s.values[key] = value
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Snapshot returns a copy of the stored values.
func (s *MemoryStorage) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}
