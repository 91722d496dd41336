package scan

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/forzadb/carcompare/internal/cache"
)

// Flusher is implemented by stores that buffer writes.
type Flusher interface {
	Flush() error
}

// Scanner measures folders through the caches.
type Scanner struct {
	sizes    cache.Store[int64]
	listings cache.Store[[]FileInfo]
	workers  int
	progress *Progress
	log      *slog.Logger
}

// NewScanner wires the caches and the pool. progress may be nil.
func NewScanner(sizes cache.Store[int64], listings cache.Store[[]FileInfo], workers int, progress *Progress, log *slog.Logger) *Scanner {
	if workers < 1 {
		workers = DefaultWorkers()
	}
	return &Scanner{
		sizes:    sizes,
		listings: listings,
		workers:  workers,
		progress: progress,
		log:      log,
	}
}

// Sizes returns the byte size of each folder. Cached sizes are reused;
// the rest are walked and stored. Folders that fail are logged and omitted.
func (s *Scanner) Sizes(ctx context.Context, paths []string) map[string]int64 {
	out := make(map[string]int64, len(paths))
	var misses []string
	for _, path := range paths {
		size, err := s.sizes.Get(path)
		switch {
		case err == nil:
			s.log.Debug("using cached size", "path", path, "bytes", size)
			out[path] = size
			s.progress.folderDone(path)
		case errors.Is(err, cache.ErrMiss):
			misses = append(misses, path)
		default:
			s.log.Warn("unreadable cached size, rescanning", "path", path, "error", err)
			misses = append(misses, path)
		}
	}

	measured := Collect(ctx, misses, s.workers, func(ctx context.Context, path string) (int64, error) {
		size, err := DirSize(ctx, path, s.progress)
		if err != nil {
			return 0, err
		}
		s.progress.folderDone(path)
		if err := s.sizes.Put(path, size); err != nil {
			s.log.Warn("cannot cache size", "path", path, "error", err)
		}
		return size, nil
	}, func(path string, err error) {
		s.log.Error("cannot measure folder", "path", path, "error", err)
	})
	for path, size := range measured {
		out[path] = size
	}

	s.flush(s.sizes)
	return out
}

// Listings returns the file listing of each folder, cache-through like
// Sizes. A corrupt cached listing is rebuilt.
func (s *Scanner) Listings(ctx context.Context, paths []string) map[string][]FileInfo {
	out := make(map[string][]FileInfo, len(paths))
	var misses []string
	for _, path := range paths {
		files, err := s.listings.Get(path)
		switch {
		case err == nil:
			s.log.Debug("using cached file list", "path", path, "files", len(files))
			out[path] = files
			s.progress.folderDone(path)
		case errors.Is(err, cache.ErrMiss):
			misses = append(misses, path)
		default:
			s.log.Warn("unreadable cached file list, rescanning", "path", path, "error", err)
			misses = append(misses, path)
		}
	}

	listed := Collect(ctx, misses, s.workers, func(ctx context.Context, path string) ([]FileInfo, error) {
		files, err := ListFiles(ctx, path, s.progress)
		if err != nil {
			return nil, err
		}
		s.progress.folderDone(path)
		if err := s.listings.Put(path, files); err != nil {
			s.log.Warn("cannot cache file list", "path", path, "error", err)
		}
		return files, nil
	}, func(path string, err error) {
		s.log.Error("cannot list folder", "path", path, "error", err)
	})
	for path, files := range listed {
		out[path] = files
	}

	s.flush(s.listings)
	return out
}

// Invalidate drops cached results for paths so the next scan measures
// them again.
func (s *Scanner) Invalidate(paths []string) {
	for _, path := range paths {
		if err := s.sizes.Delete(path); err != nil {
			s.log.Warn("cannot drop cached size", "path", path, "error", err)
		}
		if err := s.listings.Delete(path); err != nil {
			s.log.Warn("cannot drop cached file list", "path", path, "error", err)
		}
		s.log.Debug("cache invalidated", "path", path)
	}
	s.flush(s.sizes)
	s.flush(s.listings)
}

func (s *Scanner) flush(store any) {
	f, ok := store.(Flusher)
	if !ok {
		return
	}
	if err := f.Flush(); err != nil {
		s.log.Warn("cannot write cache", "error", err)
	}
}
