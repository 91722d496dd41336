// Package report renders the vehicle table page, the per-folder detail
// fragments it loads on demand, and the manufacturer autocomplete data.
package report

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"github.com/forzadb/carcompare/internal/aggregate"
	"github.com/forzadb/carcompare/internal/catalog"
	"github.com/forzadb/carcompare/internal/naming"
	"github.com/forzadb/carcompare/internal/scan"
)

// Output layout. The page sits in the output directory, fragments and the
// autocomplete file in a subdirectory of it.
const (
	PageFile          = "car_subfolders.html"
	DefaultDetailsDir = "car_details"
	AutocompleteFile  = "autocomplete_data.json"
)

const (
	unknownGameImage = "_images/unknown.png"
	unknownGameName  = "Unknown Game"
	unknownGameCode  = "unknown"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Games is the game lookup the report needs.
type Games interface {
	Games() []catalog.Game
	Game(path string) (catalog.Game, bool)
	ManufacturerNames() []string
}

// Presenter resolves logos and variant display for an identity.
type Presenter interface {
	Present(id naming.Identity) naming.Presentation
}

// Input is everything one report is rendered from.
type Input struct {
	Groups   []aggregate.Group
	Sizes    map[string]int64
	Listings map[string][]scan.FileInfo
	Totals   aggregate.Totals
}

// Writer renders reports into a directory.
type Writer struct {
	dir       string
	details   string
	games     Games
	presenter Presenter
	log       *slog.Logger
}

// NewWriter returns a writer that puts the page in dir and the fragments
// in dir/details. An empty details uses DefaultDetailsDir.
func NewWriter(dir, details string, games Games, presenter Presenter, log *slog.Logger) *Writer {
	if details == "" {
		details = DefaultDetailsDir
	}
	return &Writer{dir: dir, details: details, games: games, presenter: presenter, log: log}
}

// PagePath is where Write puts the main page.
func (w *Writer) PagePath() string {
	return filepath.Join(w.dir, PageFile)
}

// Write emits the detail fragments, the autocomplete file and the page.
// Fragment failures are logged and skipped; failing to write the page or
// the autocomplete file is returned.
func (w *Writer) Write(in Input) error {
	detailsDir := filepath.Join(w.dir, w.details)
	if err := os.MkdirAll(detailsDir, 0o755); err != nil {
		return errors.Wrap(err, "create details dir")
	}

	names := w.detailsNames(in.Groups)
	written := 0
	total := countOccurrences(in.Groups)
	for _, g := range in.Groups {
		for _, o := range g.Occurrences {
			if err := w.writeDetails(filepath.Join(detailsDir, names[o.Path()]), o, in.Listings); err != nil {
				w.log.Error("cannot write details", "path", o.Path(), "error", err)
				continue
			}
			written++
			w.log.Debug("details written", "n", written, "of", total, "path", o.Path())
		}
	}

	if err := writeAutocomplete(filepath.Join(detailsDir, AutocompleteFile), w.games.ManufacturerNames()); err != nil {
		return err
	}
	w.log.Info("autocomplete data written", "path", filepath.Join(detailsDir, AutocompleteFile))

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "page.html.tmpl", w.pageView(in, names)); err != nil {
		return errors.Wrap(err, "render page")
	}
	if err := writeFileAtomic(w.PagePath(), buf.Bytes()); err != nil {
		return err
	}
	w.log.Info("report written", "path", w.PagePath(), "vehicles", len(in.Groups), "details", written)
	return nil
}

func (w *Writer) game(root string) catalog.Game {
	g, ok := w.games.Game(root)
	if !ok {
		g = catalog.Game{Path: root}
	}
	if g.Name == "" {
		g.Name = unknownGameName
	}
	if g.Code == "" {
		g.Code = unknownGameCode
	}
	if g.Image == "" {
		g.Image = unknownGameImage
	}
	return g
}

// gameID is the filter id: the game image's basename without extension.
func gameID(g catalog.Game) string {
	base := path.Base(filepath.ToSlash(g.Image))
	return strings.TrimSuffix(base, path.Ext(base))
}

var detailsNameReplacer = strings.NewReplacer(" ", "_", ".", "_")

// DetailsFileName is the fragment file name for a folder in a game.
func DetailsFileName(name, gameCode string) string {
	return detailsNameReplacer.Replace(name) + "_" + gameCode + ".html"
}

// detailsNames assigns each occurrence its fragment file name. A folder
// whose name is already taken, ignoring case, gets a hash of its full path
// appended so it doesn't overwrite the earlier fragment.
func (w *Writer) detailsNames(groups []aggregate.Group) map[string]string {
	names := make(map[string]string)
	taken := make(map[string]bool)
	for _, g := range groups {
		for _, o := range g.Occurrences {
			if _, ok := names[o.Path()]; ok {
				continue
			}
			code := w.game(o.Root).Code
			name := DetailsFileName(o.Name, code)
			if taken[strings.ToLower(name)] {
				name = DetailsFileName(o.Name+"_"+pathHash(o.Path()), code)
				w.log.Warn("details file name taken, using hashed name", "path", o.Path(), "file", name)
			}
			taken[strings.ToLower(name)] = true
			names[o.Path()] = name
		}
	}
	return names
}

func pathHash(p string) string {
	return fmt.Sprintf("%08x", uint32(xxhash.Sum64String(p)))
}

func countOccurrences(groups []aggregate.Group) int {
	n := 0
	for _, g := range groups {
		n += len(g.Occurrences)
	}
	return n
}

// sortedGroups orders groups by the lowercased first occurrence name,
// keeping first-seen order between equal names.
func sortedGroups(groups []aggregate.Group) []aggregate.Group {
	out := append([]aggregate.Group(nil), groups...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].First().Name) < strings.ToLower(out[j].First().Name)
	})
	return out
}

func writeAutocomplete(path string, manufacturers []string) error {
	if manufacturers == nil {
		manufacturers = []string{}
	}
	data, err := json.Marshal(struct {
		Manufacturers []string `json:"manufacturers"`
	}{manufacturers})
	if err != nil {
		return errors.Wrap(err, "encode autocomplete")
	}
	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, "replace %s", path)
	}
	return nil
}
