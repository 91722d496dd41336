// Package logging builds the process logger: log/slog with a tint console
// handler, colored only when the output can show it.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"

	"github.com/forzadb/carcompare/internal/config"
)

// New returns a logger writing to w at INFO, or DEBUG when verbose.
func New(w io.Writer, verbose bool, mode config.ColorMode) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    !UseColor(w, mode),
	}))
}

// UseColor resolves mode for w. In auto mode w must be a terminal, NO_COLOR
// must be unset and TERM must not be "dumb" (https://no-color.org).
func UseColor(w io.Writer, mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return IsTerminal(w) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether w is a file attached to a TTY.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
