// Package cache provides the response-cache stores the transport layer uses
// to avoid re-issuing identical read requests against the Intelligence
// Server. Two implementations are provided: an in-process store for single
// client processes, and a Redis-backed store for sharing cached responses
// between processes.
package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// Common errors returned by cache operations.
var (
	// ErrMiss is returned when a requested key does not exist or has expired.
	ErrMiss = errors.New("cache: miss")

	// ErrInvalidKey is returned when a key is empty.
	ErrInvalidKey = errors.New("cache: invalid key")
)

// Store is a byte-value cache with per-entry expiry.
//
// All implementations are safe for concurrent use.
type Store interface {
	// Get retrieves a cached value by key.
	// Returns ErrMiss if the key does not exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value under the given key. A non-zero ttl bounds the
	// entry's lifetime; a zero ttl stores it without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a single key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error

	// Invalidate removes every key starting with the given prefix. The
	// transport uses this to drop cached reads after a write to the same
	// resource path.
	Invalidate(ctx context.Context, prefix string) error

	// Close releases any resources held by the store.
	Close() error
}

// MemoryStore is an in-process Store backed by a map.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value   []byte
	expires time.Time // zero means no expiry
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

// Get retrieves a cached value by key.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}

	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrMiss
	}
	if !entry.expires.IsZero() && time.Now().After(entry.expires) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, ErrMiss
	}

	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, nil
}

// Set stores a value under the given key.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}

	entry := memoryEntry{value: make([]byte, len(value))}
	copy(entry.value, value)
	if ttl > 0 {
		entry.expires = time.Now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

// Delete removes a single key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Invalidate removes every key starting with the given prefix.
func (s *MemoryStore) Invalidate(_ context.Context, prefix string) error {
	s.mu.Lock()
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
	return nil
}

// Close releases the store's entries.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.entries = make(map[string]memoryEntry)
	s.mu.Unlock()
	return nil
}
