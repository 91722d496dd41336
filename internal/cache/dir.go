package cache

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// Dir stores one gob file per key, named by the key's hash. Safe for
// concurrent use as long as no two goroutines write the same key.
type Dir[V any] struct {
	root string
}

// dirEntry records its key so hash collisions read as corrupt, not as
// another folder's data.
type dirEntry[V any] struct {
	Key   string
	Value V
}

// NewDir returns a store rooted at dir, creating it if needed.
func NewDir[V any](dir string) (*Dir[V], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create cache dir")
	}
	return &Dir[V]{root: dir}, nil
}

func (d *Dir[V]) pathFor(key string) string {
	return filepath.Join(d.root, fmt.Sprintf("%016x.cache", xxhash.Sum64String(key)))
}

func (d *Dir[V]) Get(key string) (V, error) {
	var zero V
	file, err := os.Open(d.pathFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return zero, ErrMiss
		}
		return zero, errors.Wrap(err, "open cache entry")
	}
	defer file.Close()

	var entry dirEntry[V]
	if err := gob.NewDecoder(file).Decode(&entry); err != nil {
		return zero, errors.Wrapf(ErrCorrupt, "%s: %v", key, err)
	}
	if entry.Key != key {
		return zero, errors.Wrapf(ErrCorrupt, "%s: entry belongs to %s", key, entry.Key)
	}
	return entry.Value, nil
}

func (d *Dir[V]) Put(key string, value V) error {
	path := d.pathFor(key)
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return errors.Wrap(err, "create cache entry")
	}
	if err := gob.NewEncoder(file).Encode(dirEntry[V]{Key: key, Value: value}); err != nil {
		file.Close()
		os.Remove(tmp)
		return errors.Wrap(err, "encode cache entry")
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "close cache entry")
	}
	return errors.Wrap(os.Rename(tmp, path), "replace cache entry")
}

func (d *Dir[V]) Contains(key string) bool {
	_, err := os.Stat(d.pathFor(key))
	return err == nil
}

func (d *Dir[V]) Delete(key string) error {
	if err := os.Remove(d.pathFor(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove cache entry")
	}
	return nil
}
