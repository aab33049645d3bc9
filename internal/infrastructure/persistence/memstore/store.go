// Package memstore provides an in-process KeyValueStore used when no
// Redis instance is configured, and in tests.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/platewise/v1/internal/ports/outbound"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// Store is a mutex-guarded map with per-key TTLs, checked lazily on Get.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewStore creates an empty in-process store.
func NewStore() *Store {
	return &Store{entries: make(map[string]entry)}
}

// Set writes a value with the given TTL. A zero TTL means no expiry.
func (s *Store) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

// Get reads a value, returning ErrKeyNotFound for absent or expired keys.
func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return "", outbound.ErrKeyNotFound
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return "", outbound.ErrKeyNotFound
	}
	return e.value, nil
}
