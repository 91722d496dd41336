package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/forzadb/carcompare/internal/aggregate"
	"github.com/forzadb/carcompare/internal/cache"
	"github.com/forzadb/carcompare/internal/catalog"
	"github.com/forzadb/carcompare/internal/config"
	"github.com/forzadb/carcompare/internal/discover"
	"github.com/forzadb/carcompare/internal/display"
	"github.com/forzadb/carcompare/internal/naming"
	"github.com/forzadb/carcompare/internal/report"
	"github.com/forzadb/carcompare/internal/scan"
)

// app holds everything that survives between report generations.
type app struct {
	cfg      config.Config
	tables   *catalog.Tables
	parser   *naming.Parser
	filter   *aggregate.Filter
	sizes    *cache.Snapshot[int64]
	listings *cache.Dir[[]scan.FileInfo]
	progress *scan.Progress
}

// stageFunc is told when a run enters a stage and how many folders it
// covers (0 when not folder based).
type stageFunc func(stage string, folders int)

func newApp(cfg config.Config, tables *catalog.Tables) (*app, error) {
	filter, err := aggregate.NewFilter(tables.Excluded())
	if err != nil {
		return nil, errors.Wrap(err, "excluded patterns")
	}
	listings, err := cache.NewDir[[]scan.FileInfo](filepath.Join(cfg.CacheDir, listCacheDir))
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:      cfg,
		tables:   tables,
		parser:   naming.NewParser(tables),
		filter:   filter,
		sizes:    cache.NewSnapshot[int64](filepath.Join(cfg.CacheDir, sizeCacheFile)),
		listings: listings,
		progress: &scan.Progress{},
	}, nil
}

func (a *app) scanner(log *slog.Logger) *scan.Scanner {
	return scan.NewScanner(a.sizes, a.listings, a.cfg.Workers, a.progress, log)
}

// invalidate drops cached results for changed folders.
func (a *app) invalidate(paths []string, log *slog.Logger) {
	a.scanner(log).Invalidate(paths)
}

// generate runs one discover, aggregate, scan and report pass. Per-folder
// failures are logged; only cancellation and report write errors fail it.
func (a *app) generate(ctx context.Context, log *slog.Logger, stage stageFunc) error {
	start := time.Now()
	if stage == nil {
		stage = func(string, int) {}
	}

	stage(stageDiscover, 0)
	entries := discover.Discover(a.tables.Games(), log)
	groups := aggregate.Aggregate(a.parser, a.filter, entries)
	paths := occurrencePaths(groups)
	log.Info("vehicles found", "folders", len(entries), "eligible", len(paths), "vehicles", len(groups))

	s := a.scanner(log)

	a.progress.Reset()
	stage(stageSizes, len(paths))
	sizes := s.Sizes(ctx, paths)
	if err := ctx.Err(); err != nil {
		return err
	}

	a.progress.Reset()
	stage(stageListings, len(paths))
	listings := s.Listings(ctx, paths)
	if err := ctx.Err(); err != nil {
		return err
	}

	stage(stageReport, 0)
	totals := aggregate.Summarize(groups, sizes)
	w := report.NewWriter(a.cfg.Output, a.cfg.DetailsDir, a.tables, a.parser, log)
	if err := w.Write(report.Input{
		Groups:   groups,
		Sizes:    sizes,
		Listings: listings,
		Totals:   totals,
	}); err != nil {
		return err
	}

	log.Info("done",
		"cars", totals.Cars,
		"unique", totals.UniqueCars,
		"total", display.HumanizeBytes(totals.TotalBytes),
		"unique_size", display.HumanizeBytes(totals.UniqueBytes),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

func occurrencePaths(groups []aggregate.Group) []string {
	var paths []string
	for _, g := range groups {
		for _, o := range g.Occurrences {
			paths = append(paths, o.Path())
		}
	}
	return paths
}
