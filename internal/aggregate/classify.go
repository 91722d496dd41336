package aggregate

// Class is a group's duplication class.
type Class int

const (
	Unique          Class = iota // Found in one place.
	Duplicated                   // Found twice.
	MultiDuplicated              // Found three or more times.
)

// Classify maps an occurrence count to a Class.
func Classify(n int) Class {
	switch {
	case n > 2:
		return MultiDuplicated
	case n == 2:
		return Duplicated
	default:
		return Unique
	}
}

func (c Class) String() string {
	switch c {
	case Duplicated:
		return "Duplicated"
	case MultiDuplicated:
		return "Duplicated in > 2 games"
	default:
		return "Unique"
	}
}

// Totals summarizes the grouping for the report header.
type Totals struct {
	Cars        int   // Every occurrence.
	UniqueCars  int   // Occurrences in single-occurrence groups.
	TotalBytes  int64 // Size of every occurrence.
	UniqueBytes int64 // Size of single-occurrence groups only.
}

// Summarize adds up counts and sizes. sizes is keyed by RawEntry.Path;
// missing entries count as zero bytes.
func Summarize(groups []Group, sizes map[string]int64) Totals {
	var t Totals
	for _, g := range groups {
		unique := len(g.Occurrences) == 1
		t.Cars += len(g.Occurrences)
		for _, o := range g.Occurrences {
			size := sizes[o.Path()]
			t.TotalBytes += size
			if unique {
				t.UniqueCars++
				t.UniqueBytes += size
			}
		}
	}
	return t
}
