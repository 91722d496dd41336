// Package catalog holds the static lookup tables the scanner and parser run
// against: game root folders, manufacturer codes and logos, variant display
// names and logos, per-name overrides and the excluded subfolder list.
//
// Tables are loaded once at startup, either from the embedded defaults or
// from a user supplied YAML file, and are read-only afterwards.
package catalog

import (
	_ "embed"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultTables []byte

// Game is one game install folder scanned for vehicle directories.
type Game struct {
	Path  string `yaml:"path"`
	Name  string `yaml:"name"`
	Code  string `yaml:"code"`  // Suffix for detail fragment file names.
	Image string `yaml:"image"` // Basename (without extension) doubles as the filter id.
}

// Manufacturer maps a folder-name code to its display name and logo.
type Manufacturer struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
	Logo string `yaml:"logo"`
}

// Override replaces positional parsing for a directory name.
type Override struct {
	Manufacturer string `yaml:"manufacturer"`
	Model        string `yaml:"model"`
	Year         string `yaml:"year"`
	Variant      string `yaml:"variant"`
	RaceNumber   string `yaml:"race_number"`
}

// file is the on-disk YAML shape.
type file struct {
	Games         []Game              `yaml:"games"`
	Manufacturers []Manufacturer      `yaml:"manufacturers"`
	LogoAliases   map[string]string   `yaml:"logo_aliases"`
	Variants      map[string]string   `yaml:"variants"`
	VariantLogos  map[string]string   `yaml:"variant_logos"`
	Overrides     map[string]Override `yaml:"overrides"`
	Excluded      []string            `yaml:"excluded"`
}

// Tables is the immutable, validated form of the lookup data.
type Tables struct {
	games         []Game
	gameByPath    map[string]Game
	manufacturers []Manufacturer
	names         map[string]string
	logos         map[string]string
	variants      map[string]string
	variantLogos  map[string]string
	overrides     map[string]Override
	excluded      []string
}

// Default returns the tables compiled into the binary.
func Default() (*Tables, error) {
	t, err := Parse(defaultTables)
	if err != nil {
		return nil, errors.Wrap(err, "embedded tables")
	}
	return t, nil
}

// Load reads tables from a YAML file. An empty path selects [Default].
func Load(path string) (*Tables, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read tables")
	}
	t, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "tables %s", path)
	}
	return t, nil
}

// Parse decodes and validates YAML table data.
func Parse(data []byte) (*Tables, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "decode yaml")
	}
	return build(f)
}

func build(f file) (*Tables, error) {
	t := &Tables{
		gameByPath:   make(map[string]Game, len(f.Games)),
		names:        make(map[string]string, len(f.Manufacturers)),
		logos:        make(map[string]string, len(f.Manufacturers)+len(f.LogoAliases)),
		variants:     make(map[string]string, len(f.Variants)),
		variantLogos: make(map[string]string, len(f.VariantLogos)),
		overrides:    make(map[string]Override, len(f.Overrides)),
	}

	for i, g := range f.Games {
		if g.Path == "" {
			return nil, errors.Errorf("game %d: empty path", i)
		}
		if _, dup := t.gameByPath[g.Path]; dup {
			return nil, errors.Errorf("game %q listed twice", g.Path)
		}
		t.gameByPath[g.Path] = g
		t.games = append(t.games, g)
	}

	for _, m := range f.Manufacturers {
		code := strings.ToLower(m.Code)
		if code == "" {
			return nil, errors.Errorf("manufacturer %q: empty code", m.Name)
		}
		if _, dup := t.names[code]; dup {
			return nil, errors.Errorf("manufacturer code %q listed twice", code)
		}
		m.Code = code
		t.names[code] = m.Name
		if m.Logo != "" {
			t.logos[code] = m.Logo
		}
		t.manufacturers = append(t.manufacturers, m)
	}
	for key, logo := range f.LogoAliases {
		t.logos[strings.ToLower(key)] = logo
	}

	for raw, name := range f.Variants {
		t.variants[raw] = name
	}
	for variant, logo := range f.VariantLogos {
		t.variantLogos[variant] = logo
	}
	for name, o := range f.Overrides {
		t.overrides[strings.ToLower(name)] = o
	}
	for _, name := range f.Excluded {
		t.excluded = append(t.excluded, strings.ToLower(name))
	}
	return t, nil
}

// Games returns the game roots in table order.
func (t *Tables) Games() []Game {
	return append([]Game(nil), t.games...)
}

// Game looks up a game by its root path.
func (t *Tables) Game(path string) (Game, bool) {
	g, ok := t.gameByPath[path]
	return g, ok
}

// ManufacturerName resolves a lowercase manufacturer code.
func (t *Tables) ManufacturerName(code string) (string, bool) {
	name, ok := t.names[code]
	return name, ok
}

// ManufacturerLogo resolves a logo by lowercase code or alias.
func (t *Tables) ManufacturerLogo(key string) (string, bool) {
	logo, ok := t.logos[key]
	return logo, ok
}

// ManufacturerNames returns the distinct manufacturer display names in table order.
func (t *Tables) ManufacturerNames() []string {
	seen := make(map[string]bool, len(t.manufacturers))
	names := make([]string, 0, len(t.manufacturers))
	for _, m := range t.manufacturers {
		if m.Name == "" || seen[m.Name] {
			continue
		}
		seen[m.Name] = true
		names = append(names, m.Name)
	}
	return names
}

// VariantName maps a title-cased raw variant to its display form.
func (t *Tables) VariantName(raw string) (string, bool) {
	name, ok := t.variants[raw]
	return name, ok
}

// VariantLogo maps a variant display name to a logo path.
func (t *Tables) VariantLogo(variant string) (string, bool) {
	logo, ok := t.variantLogos[variant]
	return logo, ok
}

// Override looks up an override by lowercase directory name.
func (t *Tables) Override(name string) (Override, bool) {
	o, ok := t.overrides[name]
	return o, ok
}

// Excluded returns the lowercase excluded subfolder patterns.
func (t *Tables) Excluded() []string {
	return append([]string(nil), t.excluded...)
}
