// Package aggregate groups discovered vehicle directories by parsed
// identity and derives the per-group classification and size totals.
package aggregate

import (
	"path/filepath"

	"github.com/forzadb/carcompare/internal/naming"
)

// RawEntry is one vehicle directory found under a game root.
type RawEntry struct {
	Root string // Game root folder the directory was found in.
	Name string // Directory name, case preserved.
}

// Path returns the full path of the vehicle directory.
func (e RawEntry) Path() string {
	return filepath.Join(e.Root, e.Name)
}

// Group is an identity and the directories that produced it, in discovery order.
type Group struct {
	Identity    naming.Identity
	Occurrences []RawEntry
}

// First returns the first occurrence, which display code treats as canonical.
func (g Group) First() RawEntry {
	return g.Occurrences[0]
}

// Class derives the classification from the occurrence count.
func (g Group) Class() Class {
	return Classify(len(g.Occurrences))
}

// Parser is the identity function the aggregator folds with.
type Parser interface {
	Parse(raw string) naming.Identity
}

// Aggregator folds RawEntries into Groups. Not safe for concurrent use.
type Aggregator struct {
	parser Parser
	filter *Filter
	groups []*Group
	index  map[naming.Identity]*Group
}

// New returns an empty aggregator.
func New(parser Parser, filter *Filter) *Aggregator {
	return &Aggregator{
		parser: parser,
		filter: filter,
		index:  make(map[naming.Identity]*Group),
	}
}

// Add folds one entry. It returns false when the entry is filtered out or
// the same (root, name) pair was already recorded.
func (a *Aggregator) Add(e RawEntry) bool {
	if a.filter != nil && !a.filter.Eligible(e.Name) {
		return false
	}
	id := a.parser.Parse(naming.Normalize(e.Name))

	g, ok := a.index[id]
	if !ok {
		g = &Group{Identity: id}
		a.index[id] = g
		a.groups = append(a.groups, g)
	}
	for _, o := range g.Occurrences {
		if o == e {
			return false
		}
	}
	g.Occurrences = append(g.Occurrences, e)
	return true
}

// Groups returns the groups in first-seen order. The returned slices are
// copies; later Adds don't affect them.
func (a *Aggregator) Groups() []Group {
	out := make([]Group, len(a.groups))
	for i, g := range a.groups {
		out[i] = Group{
			Identity:    g.Identity,
			Occurrences: append([]RawEntry(nil), g.Occurrences...),
		}
	}
	return out
}

// Aggregate folds entries in order and returns the resulting groups.
func Aggregate(parser Parser, filter *Filter, entries []RawEntry) []Group {
	a := New(parser, filter)
	for _, e := range entries {
		a.Add(e)
	}
	return a.Groups()
}
