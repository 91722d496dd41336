// Package config holds runtime configuration: defaults, CLI and environment
// parsing, and validation.
package config

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/pkg/errors"
)

// Version is stamped at build time with -ldflags "-X ...config.Version=...".
var Version = "dev"

// ErrHelp is returned by Parse after --help has been written.
var ErrHelp = arg.ErrHelp

// ErrVersion is returned by Parse after --version has been written.
var ErrVersion = arg.ErrVersion

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Colors when stderr is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig] and
// then by flags and CARCOMPARE_* environment variables in [Parse].
type Config struct {
	// Inputs.
	Tables string `arg:"--tables,env:CARCOMPARE_TABLES" placeholder:"FILE" help:"YAML lookup tables; the embedded defaults when empty"`

	// Outputs. DetailsDir is relative to Output and also used in page links.
	Output     string `arg:"-o,--output,env:CARCOMPARE_OUTPUT" placeholder:"DIR" help:"directory the report page is written to"`
	DetailsDir string `arg:"--details-dir,env:CARCOMPARE_DETAILS_DIR" placeholder:"NAME" help:"subdirectory of --output for detail fragments"`
	CacheDir   string `arg:"--cache-dir,env:CARCOMPARE_CACHE_DIR" placeholder:"DIR" help:"folder size and file list caches"`

	// Scanning.
	Workers int `arg:"-j,--workers,env:CARCOMPARE_WORKERS" help:"concurrent folder scans; 0 picks from the CPU count"`

	// Watch mode.
	Watch    bool          `arg:"-w,--watch,env:CARCOMPARE_WATCH" help:"regenerate the report when a game folder changes"`
	Debounce time.Duration `arg:"--debounce,env:CARCOMPARE_DEBOUNCE" help:"quiet period before a watch rebuild"`

	// Display and logging.
	Verbose    bool      `arg:"-v,--verbose,env:CARCOMPARE_VERBOSE" help:"debug logging"`
	Color      ColorMode `arg:"--color,env:CARCOMPARE_COLOR" placeholder:"MODE" help:"auto, always or never"`
	NoProgress bool      `arg:"--no-progress,env:CARCOMPARE_NO_PROGRESS" help:"disable the interactive progress view"`
}

// DefaultConfig returns the settings used before flags are applied.
func DefaultConfig() Config {
	return Config{
		Output:     ".",
		DetailsDir: "car_details",
		CacheDir:   ".carcompare",
		Workers:    0,
		Debounce:   2 * time.Second,
		Color:      ColorAuto,
	}
}

// Description is shown at the top of --help.
func (Config) Description() string {
	return "carcompare compares vehicle folders across Forza installs and writes an HTML report."
}

// Version is shown by --version.
func (Config) Version() string {
	return "carcompare " + Version
}

// Parse applies args and the environment over DefaultConfig and validates
// the result. Help and version output go to out, followed by ErrHelp or
// ErrVersion.
func Parse(args []string, out io.Writer) (Config, error) {
	cfg := DefaultConfig()
	p, err := arg.NewParser(arg.Config{Program: "carcompare"}, &cfg)
	if err != nil {
		return cfg, errors.Wrap(err, "build flag parser")
	}
	switch err := p.Parse(args); {
	case errors.Is(err, arg.ErrHelp):
		p.WriteHelp(out)
		return cfg, ErrHelp
	case errors.Is(err, arg.ErrVersion):
		io.WriteString(out, cfg.Version()+"\n")
		return cfg, ErrVersion
	case err != nil:
		p.WriteUsage(out)
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks enums, numeric ranges and the output layout.
func (c *Config) Validate() error {
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return errors.Errorf("invalid color mode %q (use auto, always or never)", c.Color)
	}
	if c.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Watch && c.Debounce <= 0 {
		return errors.Errorf("debounce must be positive, got %s", c.Debounce)
	}
	if strings.TrimSpace(c.Output) == "" {
		return errors.New("output directory must not be empty")
	}
	if c.CacheDir == "" {
		return errors.New("cache directory must not be empty")
	}
	d := filepath.Clean(c.DetailsDir)
	if c.DetailsDir == "" || filepath.IsAbs(d) || d == "." || strings.HasPrefix(d, "..") {
		return errors.Errorf("details dir %q must be a subdirectory of the output directory", c.DetailsDir)
	}
	return nil
}
