package analysis

import (
	"context"
	"fmt"
	"sort"

	"github.com/codestatik/statik/internal/model"
	"github.com/codestatik/statik/internal/store"
)

// DeadFile is a file unreached from any entry point (§4.4 "Scope files").
type DeadFile struct {
	File model.FileID
	Path string
}

// DeadFiles seeds a BFS from every entry point over every edge, mod
// declaration edges included; any file neither reached nor itself an entry
// point is dead.
func DeadFiles(g *model.FileGraph) []DeadFile {
	reached := make(map[model.FileID]bool)
	var queue []model.FileID
	for id, role := range g.EntryRole {
		if role != model.EntryPointRoleNone {
			reached[id] = true
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		// mod edges participate in reachability unconditionally (§4.3 Entry
		// points / §3 invariant 4 scopes the is_mod_declaration exclusion to
		// cycle detection only).
		for _, e := range g.Out[cur] {
			if !reached[e.Target] {
				reached[e.Target] = true
				queue = append(queue, e.Target)
			}
		}
	}

	var dead []DeadFile
	for id, f := range g.Files {
		if reached[id] {
			continue
		}
		if role, ok := g.EntryRole[id]; ok && role != model.EntryPointRoleNone {
			continue
		}
		dead = append(dead, DeadFile{File: id, Path: f.Path})
	}
	sort.Slice(dead, func(i, j int) bool { return dead[i].Path < dead[j].Path })
	return dead
}

// DeadExport is an export with no live consumer (§4.4 "Scope exports").
type DeadExport struct {
	File model.FileID
	Path string
	Name string
	Line int
}

// exportKey uniquely identifies an export within the live-set fixed point.
type exportKey struct {
	file model.FileID
	name string
}

// DeadExports computes the live-export fixed point described in §4.4: start
// from every entry-point file's exports (always live) plus every export
// that some other file imports by name; repeatedly expand through wildcard
// re-export and namespace-import chains until no new export becomes live;
// anything never marked live, on a non-entry-point file, is reported dead.
func DeadExports(ctx context.Context, s store.Store, g *model.FileGraph) ([]DeadExport, error) {
	allExports, err := s.AllExports(ctx)
	if err != nil {
		return nil, fmt.Errorf("analysis: load exports: %w", err)
	}
	allImports, err := s.AllImports(ctx)
	if err != nil {
		return nil, fmt.Errorf("analysis: load imports: %w", err)
	}

	exportsByFile := make(map[model.FileID][]model.Export)
	for _, e := range allExports {
		exportsByFile[e.FileID] = append(exportsByFile[e.FileID], e)
	}

	live := make(map[exportKey]bool)
	// liveNamesByFile mirrors live, grouped by file, so the wildcard
	// propagation pass below doesn't need to scan the whole live set per
	// round looking for keys on one file.
	liveNamesByFile := make(map[model.FileID]map[string]bool)

	markLive := func(key exportKey) bool {
		if live[key] {
			return false
		}
		live[key] = true
		if liveNamesByFile[key.file] == nil {
			liveNamesByFile[key.file] = make(map[string]bool)
		}
		liveNamesByFile[key.file][key.name] = true
		return true
	}

	markAll := func(fileID model.FileID) {
		for _, e := range exportsByFile[fileID] {
			markLive(exportKey{fileID, e.Name})
		}
	}

	// entry-point exports are always live.
	for id, role := range g.EntryRole {
		if role != model.EntryPointRoleNone {
			markAll(id)
		}
	}

	// direct named/default imports of an export mark it live; a namespace
	// import conservatively marks every export of the target file live
	// (documented recall loss, zero false positives, §4.4).
	for _, imp := range allImports {
		edgeTargets := targetFilesOf(g, imp)
		for _, target := range edgeTargets {
			if isWildcardImport(imp) {
				markAll(target)
				continue
			}
			for _, n := range imp.Names {
				if n.Kind == model.ImportedNameSideEffectOnly {
					continue
				}
				markLive(exportKey{target, n.Name})
			}
		}
	}

	// Precompute, per file, the names it declares itself (as opposed to
	// names that only reach it through a wildcard re-export) plus its named
	// and wildcard re-export targets — this shape doesn't change as `live`
	// grows, only the fixed-point loop below does.
	declaredNames := make(map[model.FileID]map[string]bool)
	wildcardTargets := make(map[model.FileID][]model.FileID)
	type namedReexport struct {
		name   string
		target model.FileID
	}
	namedReexports := make(map[model.FileID][]namedReexport)

	for fileID, exps := range exportsByFile {
		names := make(map[string]bool)
		for _, e := range exps {
			if !e.IsReexport || e.ReexportSource == "" {
				names[e.Name] = true
				continue
			}
			targetID, ok := resolveReexportTarget(g, fileID, e.Line)
			if !ok {
				names[e.Name] = true
				continue
			}
			if e.Name == model.WildcardExportName {
				wildcardTargets[fileID] = append(wildcardTargets[fileID], targetID)
				continue
			}
			names[e.Name] = true
			namedReexports[fileID] = append(namedReexports[fileID], namedReexport{name: e.Name, target: targetID})
		}
		declaredNames[fileID] = names
	}

	// fixed-point expansion through re-export chains (`export { foo } from`,
	// `export * from`, `pub use x::*`): a name live on a barrel file must
	// also be live at whatever it re-exports from, even when — as with a
	// wildcard re-export — the barrel never declares that name itself (§8.1).
	for {
		changed := false

		for fileID, reexports := range namedReexports {
			for _, nr := range reexports {
				if live[exportKey{fileID, nr.name}] && markLive(exportKey{nr.target, nr.name}) {
					changed = true
				}
			}
		}

		for fileID, targets := range wildcardTargets {
			wholeFileLive := live[exportKey{fileID, model.WildcardExportName}]
			for _, targetID := range targets {
				if wholeFileLive {
					if !allExportsLive(live, targetID, exportsByFile[targetID]) {
						markAll(targetID)
						changed = true
					}
					continue
				}
				for name := range liveNamesByFile[fileID] {
					if name == model.WildcardExportName || declaredNames[fileID][name] {
						continue
					}
					if markLive(exportKey{targetID, name}) {
						changed = true
					}
				}
			}
		}

		if !changed {
			break
		}
	}

	var dead []DeadExport
	for fileID, exps := range exportsByFile {
		if role, ok := g.EntryRole[fileID]; ok && role != model.EntryPointRoleNone {
			continue
		}
		f := g.Files[fileID]
		if f == nil {
			continue
		}
		for _, e := range exps {
			if live[exportKey{fileID, e.Name}] {
				continue
			}
			dead = append(dead, DeadExport{File: fileID, Path: f.Path, Name: e.Name, Line: e.Line})
		}
	}
	sort.Slice(dead, func(i, j int) bool {
		if dead[i].Path != dead[j].Path {
			return dead[i].Path < dead[j].Path
		}
		return dead[i].Name < dead[j].Name
	})
	return dead, nil
}

func exportAnyLive(live map[exportKey]bool, fileID model.FileID, exps []model.Export) bool {
	for _, e := range exps {
		if live[exportKey{fileID, e.Name}] {
			return true
		}
	}
	return false
}

func allExportsLive(live map[exportKey]bool, fileID model.FileID, exps []model.Export) bool {
	for _, e := range exps {
		if !live[exportKey{fileID, e.Name}] {
			return false
		}
	}
	return len(exps) > 0
}

// targetFilesOf returns the resolved target file(s) of an import record by
// matching it against the graph edges the builder already produced for that
// same (source file, line) pair — the graph is the single source of truth
// for "what did this specifier resolve to".
func targetFilesOf(g *model.FileGraph, imp model.Import) []model.FileID {
	var out []model.FileID
	for _, e := range g.Out[imp.FileID] {
		if e.Line == imp.Line {
			out = append(out, e.Target)
		}
	}
	return out
}

// resolveReexportTarget finds the file a re-export specifier resolves to by
// matching it against the graph edge the builder produced for the same
// (source file, line) pair.
func resolveReexportTarget(g *model.FileGraph, fileID model.FileID, line int) (model.FileID, bool) {
	for _, e := range g.Out[fileID] {
		if e.Line == line && e.Resolution.IsResolved() {
			return e.Target, true
		}
	}
	return 0, false
}

// DeadSymbol is a declared, non-exported symbol with no incoming references
// other than its own declaration (§4.4 "Scope symbols").
type DeadSymbol struct {
	Symbol model.SymbolID
	File   model.FileID
	Name   string
	Line   int
}

// DeadSymbols finds every non-exported symbol with zero incoming references.
func DeadSymbols(ctx context.Context, s store.Store) ([]DeadSymbol, error) {
	allSymbols, err := s.AllSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("analysis: load symbols: %w", err)
	}
	allExports, err := s.AllExports(ctx)
	if err != nil {
		return nil, fmt.Errorf("analysis: load exports: %w", err)
	}
	allRefs, err := s.AllReferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("analysis: load references: %w", err)
	}

	exported := make(map[model.SymbolID]bool)
	for _, e := range allExports {
		if e.Symbol != nil {
			exported[*e.Symbol] = true
		}
	}

	refCount := make(map[model.SymbolID]int)
	for _, r := range allRefs {
		if !r.Target.Resolved() {
			continue
		}
		refCount[r.Target.Symbol]++
	}

	var dead []DeadSymbol
	for _, sym := range allSymbols {
		if exported[sym.ID] {
			continue
		}
		if refCount[sym.ID] > 0 {
			continue
		}
		dead = append(dead, DeadSymbol{Symbol: sym.ID, File: sym.FileID, Name: sym.Name, Line: sym.Position.Line})
	}
	sort.Slice(dead, func(i, j int) bool {
		if dead[i].File != dead[j].File {
			return dead[i].File < dead[j].File
		}
		return dead[i].Line < dead[j].Line
	})
	return dead, nil
}
