// Package cache persists per-folder scan results between runs.
//
// Entries never expire: a folder measured once is trusted until its entry
// is deleted, either by the watcher or by removing the cache files.
package cache

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	// ErrMiss is returned by Get when the key has no entry.
	ErrMiss = errors.New("cache miss")
	// ErrCorrupt is returned by Get when the stored entry can't be decoded.
	ErrCorrupt = errors.New("cache entry corrupt")
)

// Store is a string-keyed value store.
type Store[V any] interface {
	Get(key string) (V, error)
	Put(key string, value V) error
	Contains(key string) bool
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}

// Memory is an in-process Store.
type Memory[V any] struct {
	mu      sync.Mutex
	entries map[string]V
}

// NewMemory returns an empty in-memory store.
func NewMemory[V any]() *Memory[V] {
	return &Memory[V]{entries: make(map[string]V)}
}

func (m *Memory[V]) Get(key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	if !ok {
		var zero V
		return zero, ErrMiss
	}
	return v, nil
}

func (m *Memory[V]) Put(key string, value V) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *Memory[V]) Contains(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

func (m *Memory[V]) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Len returns the number of entries.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
