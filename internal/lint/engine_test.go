package lint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codestatik/statik/internal/model"
	"github.com/codestatik/statik/internal/store"
)

// noopStore is a store.Store stand-in for rule kinds that never touch
// persisted exports (every test in this file uses Boundary/LayerHierarchy
// rules, neither of which calls into the store).
type noopStore struct{}

func (noopStore) ReplaceFile(ctx context.Context, rec store.FileRecords) error { return nil }
func (noopStore) DeleteFile(ctx context.Context, id model.FileID) error        { return nil }
func (noopStore) GetFile(ctx context.Context, id model.FileID) (model.File, bool, error) {
	return model.File{}, false, nil
}
func (noopStore) FileByPath(ctx context.Context, path string) (model.File, bool, error) {
	return model.File{}, false, nil
}
func (noopStore) AllFiles(ctx context.Context) ([]model.File, error) { return nil, nil }
func (noopStore) FileCount(ctx context.Context) (int, error)         { return 0, nil }
func (noopStore) Symbols(ctx context.Context, id model.FileID) ([]model.Symbol, error) {
	return nil, nil
}
func (noopStore) AllSymbols(ctx context.Context) ([]model.Symbol, error) { return nil, nil }
func (noopStore) Imports(ctx context.Context, id model.FileID) ([]model.Import, error) {
	return nil, nil
}
func (noopStore) AllImports(ctx context.Context) ([]model.Import, error) { return nil, nil }
func (noopStore) Exports(ctx context.Context, id model.FileID) ([]model.Export, error) {
	return nil, nil
}
func (noopStore) AllExports(ctx context.Context) ([]model.Export, error) { return nil, nil }
func (noopStore) ReferencesBySource(ctx context.Context, id model.SymbolID) ([]model.Reference, error) {
	return nil, nil
}
func (noopStore) ReferencesByTargetName(ctx context.Context, name string) ([]model.Reference, error) {
	return nil, nil
}
func (noopStore) AllReferences(ctx context.Context) ([]model.Reference, error) { return nil, nil }
func (noopStore) Suppressions(ctx context.Context, id model.FileID) ([]model.Suppression, error) {
	return nil, nil
}
func (noopStore) Close() error { return nil }

func addFileEdge(g *model.FileGraph, srcPath, tgtPath string, src, tgt model.FileID) {
	g.AddFile(&model.File{ID: src, Path: srcPath, Language: model.LanguageTSJS})
	g.AddFile(&model.File{ID: tgt, Path: tgtPath, Language: model.LanguageTSJS})
	g.AddEdge(model.Edge{Source: src, Target: tgt, Line: 1, Resolution: model.Resolved(tgt)})
}

// TestLintLayerHierarchyScenario is scenario 4 (§8): a data-layer file
// importing a presentation-layer file violates the declared layer order.
func TestLintLayerHierarchyScenario(t *testing.T) {
	g := model.NewFileGraph()
	addFileEdge(g, "src/db/x.ts", "src/ui/button.ts", 1, 2)

	rule := Rule{
		ID:       "layer-order",
		Severity: SeverityError,
		Kind:     KindLayerHierarchy,
		Layers: []LayerDef{
			{Name: "presentation", Pattern: []string{"src/ui/**"}},
			{Name: "service", Pattern: []string{"src/services/**"}},
			{Name: "data", Pattern: []string{"src/db/**"}},
		},
	}

	result, err := Run(context.Background(), noopStore{}, g, []Rule{rule}, nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, result.Violations, 1)
	v := result.Violations[0]
	require.Equal(t, "layer-order", v.RuleID)
	require.Equal(t, "src/db/x.ts", v.Source)
	require.Equal(t, "src/ui/button.ts", v.Target)
}

// TestLintBaselineSuppression is scenario 5 (§8): freezing a baseline from
// an initial violation set suppresses those exact violations on a later
// run; only a newly introduced violation is reported, and the exit code
// reflects that one surviving error.
func TestLintBaselineSuppression(t *testing.T) {
	rule := Rule{ID: "no-denied", Severity: SeverityError, Kind: KindBoundary, From: []string{"src/**"}, Deny: []string{"denied/**"}}

	g1 := model.NewFileGraph()
	addFileEdge(g1, "src/a.ts", "denied/a.ts", 1, 2)
	addFileEdge(g1, "src/b.ts", "denied/b.ts", 3, 4)
	addFileEdge(g1, "src/c.ts", "denied/c.ts", 5, 6)

	first, err := Run(context.Background(), noopStore{}, g1, []Rule{rule}, nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, first.Violations, 3)

	baseline := &Baseline{Version: 1}
	baseline.FreezeFrom(first.Violations, "2026-07-30T00:00:00Z")
	require.Len(t, baseline.Entries, 3)

	g2 := model.NewFileGraph()
	addFileEdge(g2, "src/a.ts", "denied/a.ts", 1, 2)
	addFileEdge(g2, "src/b.ts", "denied/b.ts", 3, 4)
	addFileEdge(g2, "src/c.ts", "denied/c.ts", 5, 6)
	addFileEdge(g2, "src/d.ts", "denied/d.ts", 7, 8)

	second, err := Run(context.Background(), noopStore{}, g2, []Rule{rule}, nil, nil, baseline)
	require.NoError(t, err)
	require.Len(t, second.Violations, 1)
	require.Equal(t, "src/d.ts", second.Violations[0].Source)
	require.Equal(t, 1, second.ExitCode())
}
