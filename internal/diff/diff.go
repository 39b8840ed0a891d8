// Package diff implements the two-snapshot export-surface comparison of
// §4.4 "diff": load a baseline and a current persistence store, compute set
// differences over files, exports, and edges, and classify each change.
package diff

import (
	"context"
	"fmt"
	"sort"

	"github.com/codestatik/statik/internal/model"
	"github.com/codestatik/statik/internal/store"
)

// Classification is the change category assigned to each diffed export.
type Classification uint8

const (
	ClassificationSafe Classification = iota
	ClassificationExpanding
	ClassificationBreaking
	ClassificationRestructuring
)

func (c Classification) String() string {
	switch c {
	case ClassificationSafe:
		return "safe"
	case ClassificationExpanding:
		return "expanding"
	case ClassificationBreaking:
		return "breaking"
	case ClassificationRestructuring:
		return "restructuring"
	default:
		return "unknown"
	}
}

// Change is one classified export-surface difference between two snapshots.
type Change struct {
	Classification Classification
	Path           string // the export's owning file path in the relevant snapshot
	Name           string
	Kind           model.SymbolKind
	MovedTo        string // set only for Restructuring
}

// exportKey is the identity §4.4 diffs exports on: (file_path, name, kind).
type exportKey struct {
	path string
	name string
	kind model.SymbolKind
}

type snapshot struct {
	files      map[string]model.File
	exports    map[exportKey]model.Export
	importedBy map[exportKey][]string // files importing this export by name, old side only
}

// Run computes the diff between baseline and current stores.
func Run(ctx context.Context, baseline, current store.Store) ([]Change, error) {
	oldSnap, err := loadSnapshot(ctx, baseline)
	if err != nil {
		return nil, fmt.Errorf("diff: load baseline: %w", err)
	}
	newSnap, err := loadSnapshot(ctx, current)
	if err != nil {
		return nil, fmt.Errorf("diff: load current: %w", err)
	}

	var changes []Change

	for key, oldExp := range oldSnap.exports {
		if _, stillThere := newSnap.exports[key]; stillThere {
			continue
		}
		// removed on this path+name+kind: either genuinely gone, or moved to
		// another file (Restructuring) if the same name+kind now lives
		// elsewhere and didn't exist there before.
		if movedPath, ok := findMove(oldSnap, newSnap, key); ok {
			changes = append(changes, Change{
				Classification: ClassificationRestructuring,
				Path:           key.path,
				Name:           key.name,
				Kind:           key.kind,
				MovedTo:        movedPath,
			})
			continue
		}

		if len(oldSnap.importedBy[key]) > 0 {
			changes = append(changes, Change{
				Classification: ClassificationBreaking,
				Path:           key.path,
				Name:           key.name,
				Kind:           key.kind,
			})
		} else {
			changes = append(changes, Change{
				Classification: ClassificationSafe,
				Path:           key.path,
				Name:           key.name,
				Kind:           key.kind,
			})
		}
		_ = oldExp
	}

	for key := range newSnap.exports {
		if _, existed := oldSnap.exports[key]; existed {
			continue
		}
		moved := false
		for oldKey := range oldSnap.exports {
			if oldKey.name != key.name || oldKey.kind != key.kind || oldKey.path == key.path {
				continue
			}
			if _, stillThere := newSnap.exports[oldKey]; !stillThere {
				moved = true
				break
			}
		}
		if moved {
			continue // already emitted as Restructuring from the old side
		}
		changes = append(changes, Change{
			Classification: ClassificationExpanding,
			Path:           key.path,
			Name:           key.name,
			Kind:           key.kind,
		})
	}

	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Classification != changes[j].Classification {
			return changes[i].Classification < changes[j].Classification
		}
		if changes[i].Path != changes[j].Path {
			return changes[i].Path < changes[j].Path
		}
		return changes[i].Name < changes[j].Name
	})
	return changes, nil
}

// findMove reports whether an export with the same name+kind that existed
// in oldSnap under a different path now exists in newSnap under a new path
// (and did not already exist there in oldSnap) — a file move/rename.
func findMove(oldSnap, newSnap *snapshot, key exportKey) (string, bool) {
	for newKey := range newSnap.exports {
		if newKey.name != key.name || newKey.kind != key.kind || newKey.path == key.path {
			continue
		}
		if _, existedBefore := oldSnap.exports[newKey]; existedBefore {
			continue
		}
		return newKey.path, true
	}
	return "", false
}

func loadSnapshot(ctx context.Context, s store.Store) (*snapshot, error) {
	files, err := s.AllFiles(ctx)
	if err != nil {
		return nil, err
	}
	exportsAll, err := s.AllExports(ctx)
	if err != nil {
		return nil, err
	}
	importsAll, err := s.AllImports(ctx)
	if err != nil {
		return nil, err
	}
	symbolsAll, err := s.AllSymbols(ctx)
	if err != nil {
		return nil, err
	}

	snap := &snapshot{
		files:      make(map[string]model.File, len(files)),
		exports:    make(map[exportKey]model.Export, len(exportsAll)),
		importedBy: make(map[exportKey][]string),
	}
	byID := make(map[model.FileID]model.File, len(files))
	for _, f := range files {
		snap.files[f.Path] = f
		byID[f.ID] = f
	}
	kindBySymbol := make(map[model.SymbolID]model.SymbolKind, len(symbolsAll))
	for _, sym := range symbolsAll {
		kindBySymbol[sym.ID] = sym.Kind
	}
	for _, e := range exportsAll {
		f, ok := byID[e.FileID]
		if !ok {
			continue
		}
		// a re-export carries no Symbol of its own; fall back to Function
		// as a neutral default kind rather than failing the diff.
		kind := model.SymbolKindFunction
		if e.Symbol != nil {
			if k, ok := kindBySymbol[*e.Symbol]; ok {
				kind = k
			}
		}
		snap.exports[exportKey{path: f.Path, name: e.Name, kind: kind}] = e
	}
	for _, imp := range importsAll {
		f, ok := byID[imp.FileID]
		if !ok {
			continue
		}
		for _, n := range imp.Names {
			if n.Name == "" {
				continue
			}
			// the import's target is resolved at graph-build time, not
			// here; importedBy is keyed loosely by name for the Breaking
			// classification's "still has importers" check.
			for k := range snap.exports {
				if k.name == n.Name {
					snap.importedBy[k] = append(snap.importedBy[k], f.Path)
				}
			}
		}
	}
	return snap, nil
}
