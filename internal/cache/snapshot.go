package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// Snapshot keeps every entry in one JSON file. The file is read on first
// use and rewritten by Flush.
type Snapshot[V any] struct {
	path string

	mu      sync.Mutex
	entries map[string]V
	loaded  bool
	dirty   bool
	// discarded is returned by the next Get after an undecodable file was
	// moved aside.
	discarded error
}

// NewSnapshot returns a store backed by the JSON file at path.
func NewSnapshot[V any](path string) *Snapshot[V] {
	return &Snapshot[V]{path: path}
}

// ensureLoadedLocked reads the file once. A missing or empty file starts an
// empty store; an undecodable one is moved to <path>.corrupt and the next
// Get reports it with ErrCorrupt.
func (s *Snapshot[V]) ensureLoadedLocked() error {
	if s.loaded {
		return nil
	}
	s.entries = make(map[string]V)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.loaded = true
			return nil
		}
		return errors.Wrap(err, "read snapshot")
	}
	if len(data) == 0 {
		s.loaded = true
		return nil
	}
	var entries map[string]V
	if err := json.Unmarshal(data, &entries); err != nil || entries == nil {
		s.discarded = errors.Wrapf(ErrCorrupt, "snapshot %s discarded", s.path)
		if err := os.Rename(s.path, s.path+".corrupt"); err != nil {
			s.discarded = errors.Wrapf(ErrCorrupt, "snapshot %s discarded, cannot move it aside: %v", s.path, err)
		}
		s.loaded = true
		return nil
	}
	s.entries = entries
	s.loaded = true
	return nil
}

func (s *Snapshot[V]) Get(key string) (V, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero V
	if err := s.ensureLoadedLocked(); err != nil {
		return zero, err
	}
	if err := s.discarded; err != nil {
		s.discarded = nil
		return zero, err
	}
	v, ok := s.entries[key]
	if !ok {
		return zero, ErrMiss
	}
	return v, nil
}

func (s *Snapshot[V]) Put(key string, value V) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(); err != nil {
		return err
	}
	s.entries[key] = value
	s.dirty = true
	return nil
}

func (s *Snapshot[V]) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(); err != nil {
		return false
	}
	_, ok := s.entries[key]
	return ok
}

func (s *Snapshot[V]) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(); err != nil {
		return err
	}
	if _, ok := s.entries[key]; ok {
		delete(s.entries, key)
		s.dirty = true
	}
	return nil
}

// Flush writes pending entries through a temp file and rename.
func (s *Snapshot[V]) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "create snapshot dir")
	}
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode snapshot")
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "write snapshot")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "replace snapshot")
	}
	s.dirty = false
	return nil
}
