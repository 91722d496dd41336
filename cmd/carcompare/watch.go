package main

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// rebuildFunc regenerates the report. changed lists the folders whose
// events triggered it.
type rebuildFunc func(ctx context.Context, changed []string) error

// watchRoots calls rebuild after the game roots have been quiet for
// debounce following a change. Roots that can't be watched are logged and
// skipped. It returns when ctx is done.
func watchRoots(ctx context.Context, roots []string, debounce time.Duration, log *slog.Logger, rebuild rebuildFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create file watcher")
	}
	defer w.Close()

	watched := 0
	for _, root := range roots {
		if err := w.Add(root); err != nil {
			log.Warn("cannot watch game folder", "path", root, "error", err)
			continue
		}
		watched++
		log.Info("watching for changes", "path", root)
	}
	if watched == 0 {
		return errors.New("no game folder could be watched")
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	changed := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Write) {
				continue
			}
			log.Debug("change detected", "path", event.Name, "op", event.Op.String())
			changed[event.Name] = true
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error("file watcher error", "error", err)

		case <-timer.C:
			paths := make([]string, 0, len(changed))
			for p := range changed {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(changed)

			log.Info("rebuilding report", "changes", len(paths))
			if err := rebuild(ctx, paths); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Error("rebuild failed", "error", err)
			}
		}
	}
}
