package analysis

import (
	"context"
	"fmt"
	"sort"

	"github.com/codestatik/statik/internal/model"
	"github.com/codestatik/statik/internal/store"
)

// SymbolQuery filters the symbol table lookups behind `symbols`/`references`/
// `callers` (§4.4).
type SymbolQuery struct {
	File model.FileID // 0 means "every file"
	Name string       // "" means "any name"
	Kind *model.SymbolKind
}

// Symbols looks up the symbol table by file/name/kind.
func Symbols(ctx context.Context, s store.Store, q SymbolQuery) ([]model.Symbol, error) {
	var all []model.Symbol
	var err error
	if q.File != 0 {
		all, err = s.Symbols(ctx, q.File)
	} else {
		all, err = s.AllSymbols(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("analysis: load symbols: %w", err)
	}

	var out []model.Symbol
	for _, sym := range all {
		if q.Name != "" && sym.Name != q.Name && sym.QualifiedName != q.Name {
			continue
		}
		if q.Kind != nil && sym.Kind != *q.Kind {
			continue
		}
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FileID != out[j].FileID {
			return out[i].FileID < out[j].FileID
		}
		return out[i].Position.Line < out[j].Position.Line
	})
	return out, nil
}

// References returns every Reference whose target matches symbolID (by id)
// or name (for unresolved targets), per §4.4.
func References(ctx context.Context, s store.Store, symbolID model.SymbolID, name string) ([]model.Reference, error) {
	var refs []model.Reference
	if !symbolID.IsZero() {
		all, err := s.AllReferences(ctx)
		if err != nil {
			return nil, fmt.Errorf("analysis: load references: %w", err)
		}
		for _, r := range all {
			if r.Target.Resolved() && r.Target.Symbol == symbolID {
				refs = append(refs, r)
			}
		}
	} else if name != "" {
		byName, err := s.ReferencesByTargetName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("analysis: load references by target name: %w", err)
		}
		refs = byName
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].FileID != refs[j].FileID {
			return refs[i].FileID < refs[j].FileID
		}
		return refs[i].Line < refs[j].Line
	})
	return refs, nil
}

// Callers is References filtered to call-kind references (§4.4).
func Callers(ctx context.Context, s store.Store, symbolID model.SymbolID, name string) ([]model.Reference, error) {
	refs, err := References(ctx, s, symbolID, name)
	if err != nil {
		return nil, err
	}
	var out []model.Reference
	for _, r := range refs {
		if r.Kind == model.ReferenceKindCall {
			out = append(out, r)
		}
	}
	return out, nil
}
