// Command carcompare scans the vehicle folders of several Forza installs,
// groups them by parsed identity and writes an HTML comparison report.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/forzadb/carcompare/internal/catalog"
	"github.com/forzadb/carcompare/internal/config"
	"github.com/forzadb/carcompare/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Parse(args, os.Stdout)
	switch {
	case errors.Is(err, config.ErrHelp), errors.Is(err, config.ErrVersion):
		return exitOK
	case err != nil:
		fmt.Fprintf(os.Stderr, "carcompare: %v\n", err)
		return exitUsage
	}

	// Color is decided against the real stderr even when logs are routed
	// through the progress view.
	color := config.ColorNever
	if logging.UseColor(os.Stderr, cfg.Color) {
		color = config.ColorAlways
	}
	newLogger := func(w io.Writer) *slog.Logger {
		return logging.New(w, cfg.Verbose, color)
	}
	log := newLogger(os.Stderr)

	tables, err := catalog.Load(cfg.Tables)
	if err != nil {
		log.Error("cannot load lookup tables", "path", cfg.Tables, "error", err)
		return exitFailed
	}
	a, err := newApp(cfg, tables)
	if err != nil {
		log.Error("cannot set up", "error", err)
		return exitFailed
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interactive := !cfg.NoProgress && !cfg.Watch && logging.IsTerminal(os.Stderr)
	if interactive {
		err = generateWithProgress(ctx, a, newLogger)
	} else {
		err = a.generate(ctx, log, func(stage string, folders int) {
			log.Debug(stage, "folders", folders)
		})
	}
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			log.Warn("interrupted")
		} else {
			log.Error("report generation failed", "error", err)
		}
		return exitFailed
	}

	if !cfg.Watch {
		return exitOK
	}

	roots := make([]string, 0, len(tables.Games()))
	for _, g := range tables.Games() {
		roots = append(roots, g.Path)
	}
	err = watchRoots(ctx, roots, cfg.Debounce, log, func(ctx context.Context, changed []string) error {
		a.invalidate(changed, log)
		return a.generate(ctx, log, nil)
	})
	if err != nil {
		log.Error("watch stopped", "error", err)
		return exitFailed
	}
	return exitOK
}
