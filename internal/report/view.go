package report

import (
	"bytes"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/forzadb/carcompare/internal/aggregate"
	"github.com/forzadb/carcompare/internal/display"
	"github.com/forzadb/carcompare/internal/naming"
	"github.com/forzadb/carcompare/internal/scan"
)

type pageView struct {
	Cars       int
	UniqueCars int
	TotalSize  string
	UniqueSize string
	Games      []gameFilter
	Rows       []rowView
	// Autocomplete is the manufacturer list URL, relative to the page.
	Autocomplete string
}

type gameFilter struct {
	ID    string
	Name  string
	Image string
}

type rowView struct {
	RowClass         string
	GameIDs          string
	Manufacturer     string
	ManufacturerLogo string
	RaceNumber       string
	Model            string
	Year             string
	Variant          string
	VariantLogo      string
	InternalName     string
	BadgeClass       string
	ClassLabel       string
	First            occurrenceView
	Occurrences      []occurrenceView
}

type occurrenceView struct {
	Name      string
	Path      string
	GameName  string
	GameImage string
	Size      string
	Details   string
}

type detailsView struct {
	Name      string
	GameName  string
	GameImage string
	Path      string
	Files     []fileView
}

type fileView struct {
	Path string
	Size string
}

var (
	rowClasses = map[aggregate.Class]string{
		aggregate.Unique:          "unique-row",
		aggregate.Duplicated:      "duplicate-row",
		aggregate.MultiDuplicated: "multi-duplicate-row",
	}
	badgeClasses = map[aggregate.Class]string{
		aggregate.Unique:          "badge badge-success",
		aggregate.Duplicated:      "badge badge-warning",
		aggregate.MultiDuplicated: "badge badge-danger",
	}
)

func (w *Writer) pageView(in Input, names map[string]string) pageView {
	v := pageView{
		Cars:         in.Totals.Cars,
		UniqueCars:   in.Totals.UniqueCars,
		TotalSize:    display.MB(in.Totals.TotalBytes),
		UniqueSize:   display.MB(in.Totals.UniqueBytes),
		Autocomplete: path.Join(filepath.ToSlash(w.details), AutocompleteFile),
	}
	for _, g := range w.games.Games() {
		g = w.game(g.Path)
		v.Games = append(v.Games, gameFilter{ID: gameID(g), Name: g.Name, Image: g.Image})
	}
	for _, g := range sortedGroups(in.Groups) {
		v.Rows = append(v.Rows, w.rowView(g, in.Sizes, names))
	}
	return v
}

func (w *Writer) rowView(g aggregate.Group, sizes map[string]int64, names map[string]string) rowView {
	class := g.Class()
	pr := w.presenter.Present(g.Identity)
	r := rowView{
		RowClass:         rowClasses[class],
		Manufacturer:     g.Identity.Manufacturer,
		ManufacturerLogo: pr.ManufacturerLogo,
		RaceNumber:       g.Identity.RaceNumber,
		Model:            g.Identity.Model,
		Year:             g.Identity.Year,
		Variant:          g.Identity.Variant,
		InternalName:     naming.StripQualitySuffix(g.First().Name),
		BadgeClass:       badgeClasses[class],
		ClassLabel:       class.String(),
	}
	if strings.HasSuffix(pr.VariantDisplay, ".png") {
		r.VariantLogo = pr.VariantDisplay
	}

	var ids []string
	seen := make(map[string]bool)
	for _, o := range g.Occurrences {
		game := w.game(o.Root)
		id := gameID(game)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
		r.Occurrences = append(r.Occurrences, occurrenceView{
			Name:      o.Name,
			Path:      o.Path(),
			GameName:  game.Name,
			GameImage: game.Image,
			Size:      display.MB(sizes[o.Path()]),
			Details:   path.Join(filepath.ToSlash(w.details), names[o.Path()]),
		})
	}
	r.GameIDs = strings.Join(ids, " ")
	r.First = r.Occurrences[0]
	return r
}

// validListing rejects listings with an empty path or a negative size.
func validListing(files []scan.FileInfo) bool {
	for _, f := range files {
		if f.RelPath == "" || f.Size < 0 {
			return false
		}
	}
	return true
}

// writeDetails renders one occurrence's fragment to file. A missing or
// malformed listing still produces a fragment, with a placeholder row.
func (w *Writer) writeDetails(file string, o aggregate.RawEntry, listings map[string][]scan.FileInfo) error {
	game := w.game(o.Root)
	v := detailsView{Name: o.Name, GameName: game.Name, GameImage: game.Image, Path: o.Path()}

	files, ok := listings[o.Path()]
	switch {
	case !ok:
		w.log.Warn("no file list, writing placeholder", "path", o.Path())
	case !validListing(files):
		w.log.Warn("malformed file list, writing placeholder", "path", o.Path())
	default:
		for _, f := range files {
			v.Files = append(v.Files, fileView{Path: f.RelPath, Size: display.MB(f.Size)})
		}
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "detail.html.tmpl", v); err != nil {
		return errors.Wrapf(err, "render details for %s", o.Path())
	}
	return writeFileAtomic(file, buf.Bytes())
}
