package scan

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"

	"github.com/forzadb/carcompare/internal/cache"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// carFolder builds a folder with 3 files totalling 350 bytes.
func carFolder(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "ab_gt3_2020")
	writeFile(t, filepath.Join(dir, "body.dds"), 100)
	writeFile(t, filepath.Join(dir, "wheels", "front.dds"), 200)
	writeFile(t, filepath.Join(dir, "wheels", "rear.dds"), 50)
	return dir
}

func TestDirSize(t *testing.T) {
	dir := carFolder(t)
	var p Progress
	size, err := DirSize(context.Background(), dir, &p)
	if err != nil {
		t.Fatalf("DirSize: %v", err)
	}
	if size != 350 {
		t.Errorf("size = %d, want 350", size)
	}
	snap := p.Snapshot()
	if snap.Files != 3 || snap.Bytes != 350 || snap.Dirs != 2 {
		t.Errorf("progress = %+v, want 3 files, 350 bytes, 2 dirs", snap)
	}
}

func TestDirSize_MissingRoot(t *testing.T) {
	if _, err := DirSize(context.Background(), filepath.Join(t.TempDir(), "nope"), nil); err == nil {
		t.Error("missing root should be an error")
	}
}

func TestDirSize_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := DirSize(ctx, carFolder(t), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestListFiles(t *testing.T) {
	files, err := ListFiles(context.Background(), carFolder(t), nil)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	want := []FileInfo{
		{RelPath: "body.dds", Size: 100},
		{RelPath: "wheels/front.dds", Size: 200},
		{RelPath: "wheels/rear.dds", Size: 50},
	}
	if len(files) != len(want) {
		t.Fatalf("got %+v, want %+v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("file %d = %+v, want %+v", i, files[i], want[i])
		}
	}
}

func TestCollect(t *testing.T) {
	keys := []string{"a", "bad", "c", "d"}
	var failed []string
	var running, peak atomic.Int64

	got := Collect(context.Background(), keys, 2, func(_ context.Context, k string) (int, error) {
		n := running.Add(1)
		defer running.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		if k == "bad" {
			return 0, errors.New("boom")
		}
		return len(k), nil
	}, func(k string, err error) {
		failed = append(failed, k)
	})

	if len(got) != 3 || got["a"] != 1 || got["c"] != 1 {
		t.Errorf("Collect = %v", got)
	}
	if _, ok := got["bad"]; ok {
		t.Error("failed key present in result")
	}
	if len(failed) != 1 || failed[0] != "bad" {
		t.Errorf("onErr keys = %v", failed)
	}
	if peak.Load() > 2 {
		t.Errorf("peak concurrency %d exceeds limit 2", peak.Load())
	}
}

func TestCollect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var calls, reported atomic.Int64

	got := Collect(ctx, []string{"a", "b", "c", "d"}, 1, func(ctx context.Context, k string) (int, error) {
		calls.Add(1)
		cancel()
		return 0, ctx.Err()
	}, func(string, error) {
		reported.Add(1)
	})

	if len(got) != 0 {
		t.Errorf("Collect = %v, want nothing", got)
	}
	if calls.Load() != 1 {
		t.Errorf("fn ran %d times after cancellation, want 1", calls.Load())
	}
	if reported.Load() != 0 {
		t.Errorf("onErr called %d times for cancelled work", reported.Load())
	}
}

func TestDefaultWorkers(t *testing.T) {
	n := DefaultWorkers()
	if n < minWorkers || n > maxWorkers {
		t.Errorf("DefaultWorkers() = %d, outside [%d, %d]", n, minWorkers, maxWorkers)
	}
}

func TestScanner_SizesCacheThrough(t *testing.T) {
	dir := carFolder(t)
	missing := filepath.Join(t.TempDir(), "gone")
	sizes := cache.NewMemory[int64]()
	if err := sizes.Put("/cached/folder", 42); err != nil {
		t.Fatal(err)
	}

	var p Progress
	s := NewScanner(sizes, cache.NewMemory[[]FileInfo](), 4, &p, quietLogger())
	got := s.Sizes(context.Background(), []string{dir, "/cached/folder", missing})

	if got[dir] != 350 {
		t.Errorf("walked size = %d, want 350", got[dir])
	}
	if got["/cached/folder"] != 42 {
		t.Errorf("cached size = %d, want 42 (cache hits must not re-walk)", got["/cached/folder"])
	}
	if _, ok := got[missing]; ok {
		t.Error("failed folder should be omitted")
	}
	if v, err := sizes.Get(dir); err != nil || v != 350 {
		t.Errorf("walked size not cached: %d, %v", v, err)
	}
	if p.Snapshot().Folders != 2 {
		t.Errorf("folders done = %d, want 2", p.Snapshot().Folders)
	}
}

func TestScanner_ListingsServedFromCache(t *testing.T) {
	dir := carFolder(t)
	store, err := cache.NewDir[[]FileInfo](t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := NewScanner(cache.NewMemory[int64](), store, 2, nil, quietLogger())

	first := s.Listings(context.Background(), []string{dir})
	if len(first[dir]) != 3 {
		t.Fatalf("first listing = %+v", first[dir])
	}

	// A second scanner over the same store must serve from cache even if
	// the folder has since changed.
	writeFile(t, filepath.Join(dir, "extra.dds"), 1)
	again := NewScanner(cache.NewMemory[int64](), store, 2, nil, quietLogger()).Listings(context.Background(), []string{dir})
	if len(again[dir]) != 3 {
		t.Errorf("cached listing not reused: %+v", again[dir])
	}
}

func TestScanner_CorruptSnapshotLogged(t *testing.T) {
	dir := carFolder(t)
	other := carFolder(t)
	path := filepath.Join(t.TempDir(), "sizes.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	s := NewScanner(cache.NewSnapshot[int64](path), cache.NewMemory[[]FileInfo](), 2, nil, log)
	got := s.Sizes(context.Background(), []string{dir, other})

	if got[dir] != 350 || got[other] != 350 {
		t.Errorf("sizes = %v, want both rescanned at 350", got)
	}
	if n := strings.Count(buf.String(), "unreadable cached size"); n != 1 {
		t.Errorf("discarded snapshot logged %d times, want 1:\n%s", n, buf.String())
	}
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("want a warning, got:\n%s", buf.String())
	}
}

func TestScanner_SnapshotFlushed(t *testing.T) {
	dir := carFolder(t)
	path := filepath.Join(t.TempDir(), "sizes.json")
	s := NewScanner(cache.NewSnapshot[int64](path), cache.NewMemory[[]FileInfo](), 2, nil, quietLogger())
	s.Sizes(context.Background(), []string{dir})

	reopened := cache.NewSnapshot[int64](path)
	if v, err := reopened.Get(dir); err != nil || v != 350 {
		t.Errorf("size not persisted: %d, %v", v, err)
	}
}

// corruptStore reports every entry as corrupt until it is rewritten.
type corruptStore struct {
	*cache.Memory[[]FileInfo]
}

func (c corruptStore) Get(key string) ([]FileInfo, error) {
	if files, err := c.Memory.Get(key); err == nil {
		return files, nil
	}
	return nil, cache.ErrCorrupt
}

func TestScanner_ListingsRebuildCorrupt(t *testing.T) {
	dir := carFolder(t)
	store := corruptStore{cache.NewMemory[[]FileInfo]()}
	s := NewScanner(cache.NewMemory[int64](), store, 2, nil, quietLogger())

	got := s.Listings(context.Background(), []string{dir})
	if len(got[dir]) != 3 {
		t.Errorf("corrupt entry not rebuilt: %+v", got[dir])
	}
	if !store.Contains(dir) {
		t.Error("rebuilt listing not stored")
	}
}

func TestScanner_Invalidate(t *testing.T) {
	dir := carFolder(t)
	sizes := cache.NewMemory[int64]()
	s := NewScanner(sizes, cache.NewMemory[[]FileInfo](), 2, nil, quietLogger())
	s.Sizes(context.Background(), []string{dir})

	writeFile(t, filepath.Join(dir, "extra.dds"), 50)
	if got := s.Sizes(context.Background(), []string{dir}); got[dir] != 350 {
		t.Fatalf("cached size = %d, want stale 350", got[dir])
	}
	s.Invalidate([]string{dir, "/never/scanned"})
	if got := s.Sizes(context.Background(), []string{dir}); got[dir] != 400 {
		t.Errorf("size after Invalidate = %d, want 400", got[dir])
	}
}
