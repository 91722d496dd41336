// Package scan measures vehicle folders: total size and per-file listings,
// fanned out over a bounded worker pool and cached between runs.
package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// FileInfo is one file inside a vehicle folder.
type FileInfo struct {
	RelPath string // Slash-separated, relative to the folder.
	Size    int64
}

// DirSize sums the sizes of all regular files under root. Unreadable
// entries below root are skipped; an unreadable root is an error.
func DirSize(ctx context.Context, root string, p *Progress) (int64, error) {
	var total int64
	err := walk(ctx, root, p, func(_ string, size int64) {
		total += size
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ListFiles returns every regular file under root with its size, sorted by
// relative path.
func ListFiles(ctx context.Context, root string, p *Progress) ([]FileInfo, error) {
	var files []FileInfo
	err := walk(ctx, root, p, func(path string, size int64) {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		files = append(files, FileInfo{RelPath: filepath.ToSlash(rel), Size: size})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

func walk(ctx context.Context, root string, p *Progress, visit func(path string, size int64)) error {
	info, err := os.Stat(root)
	if err != nil {
		return errors.Wrap(err, "stat folder")
	}
	if !info.IsDir() {
		return errors.Errorf("%s is not a directory", root)
	}

	b := &batch{p: p}
	defer b.flush()

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			b.dir()
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil
		}
		visit(path, fi.Size())
		b.file(fi.Size())
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "walk %s", root)
	}
	return nil
}
