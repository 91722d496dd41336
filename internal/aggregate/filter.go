package aggregate

import (
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"

	"github.com/forzadb/carcompare/internal/naming"
)

// Vehicle directories start with a two or three letter manufacturer code.
var reVehiclePrefix = regexp.MustCompile(`^[a-z]{2,3}_`)

// Filter rejects non-vehicle subfolders before they reach the parser.
type Filter struct {
	excluded []string
}

// NewFilter builds a filter from lowercase excluded-folder patterns. Plain
// names match themselves; glob syntax ("tex*", "{driver,shared}") is
// accepted too.
func NewFilter(patterns []string) (*Filter, error) {
	f := &Filter{}
	for _, p := range patterns {
		p = strings.ToLower(p)
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Errorf("invalid excluded pattern %q", p)
		}
		f.excluded = append(f.excluded, p)
	}
	return f, nil
}

// Eligible reports whether a raw directory name looks like a vehicle.
func (f *Filter) Eligible(name string) bool {
	norm := naming.Normalize(name)
	for _, p := range f.excluded {
		if ok, _ := doublestar.Match(p, norm); ok {
			return false
		}
	}
	return reVehiclePrefix.MatchString(norm)
}
