// Package discover enumerates vehicle directories under the game roots.
package discover

import (
	"log/slog"
	"os"

	"github.com/forzadb/carcompare/internal/aggregate"
	"github.com/forzadb/carcompare/internal/catalog"
)

// Discover lists the immediate subdirectories of every game root, in table
// order and then by name. A root that is missing or unreadable is logged
// and skipped; the remaining roots are still scanned.
func Discover(games []catalog.Game, log *slog.Logger) []aggregate.RawEntry {
	var entries []aggregate.RawEntry
	for _, g := range games {
		children, err := os.ReadDir(g.Path)
		if err != nil {
			log.Warn("game folder not found or not accessible", "game", g.Name, "path", g.Path, "error", err)
			continue
		}
		n := 0
		for _, child := range children {
			if !isDir(g.Path, child) {
				continue
			}
			entries = append(entries, aggregate.RawEntry{Root: g.Path, Name: child.Name()})
			n++
		}
		log.Debug("game folder listed", "game", g.Name, "dirs", n)
	}
	return entries
}

// isDir follows symlinks so linked car folders count.
func isDir(root string, d os.DirEntry) bool {
	if d.IsDir() {
		return true
	}
	if d.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(aggregate.RawEntry{Root: root, Name: d.Name()}.Path())
	return err == nil && info.IsDir()
}
