package scan

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Worker pool sizing for I/O-bound walks.
const (
	minWorkers    = 8
	maxWorkers    = 64
	cpuMultiplier = 2
)

// DefaultWorkers sizes the pool from the CPU count.
func DefaultWorkers() int {
	n := runtime.NumCPU() * cpuMultiplier
	if n < minWorkers {
		n = minWorkers
	}
	if n > maxWorkers {
		n = maxWorkers
	}
	return n
}

// Collect runs fn for every key on at most workers goroutines and gathers
// the results. A key whose fn fails is passed to onErr (if set) and left out
// of the result; the other tasks keep running. Completion order does not
// affect the result. Once ctx is done, remaining keys are skipped and
// failures are no longer reported.
func Collect[K comparable, V any](ctx context.Context, keys []K, workers int, fn func(context.Context, K) (V, error), onErr func(K, error)) map[K]V {
	if workers < 1 {
		workers = 1
	}
	var (
		mu  sync.Mutex
		out = make(map[K]V, len(keys))
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, key := range keys {
		if ctx.Err() != nil {
			break
		}
		key := key
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			v, err := fn(ctx, key)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if onErr != nil && ctx.Err() == nil {
					onErr(key, err)
				}
				return nil
			}
			out[key] = v
			return nil
		})
	}
	_ = g.Wait()
	return out
}
