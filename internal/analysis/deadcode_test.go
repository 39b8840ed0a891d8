package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codestatik/statik/internal/model"
	"github.com/codestatik/statik/internal/store"
)

// fakeStore is a minimal store.Store stand-in exercising only the exports
// and imports DeadExports reads; every other method is unused by the tests
// in this file.
type fakeStore struct {
	exports []model.Export
	imports []model.Import
}

func (f *fakeStore) ReplaceFile(ctx context.Context, rec store.FileRecords) error { return nil }
func (f *fakeStore) DeleteFile(ctx context.Context, id model.FileID) error        { return nil }
func (f *fakeStore) GetFile(ctx context.Context, id model.FileID) (model.File, bool, error) {
	return model.File{}, false, nil
}
func (f *fakeStore) FileByPath(ctx context.Context, path string) (model.File, bool, error) {
	return model.File{}, false, nil
}
func (f *fakeStore) AllFiles(ctx context.Context) ([]model.File, error) { return nil, nil }
func (f *fakeStore) FileCount(ctx context.Context) (int, error)         { return 0, nil }
func (f *fakeStore) Symbols(ctx context.Context, id model.FileID) ([]model.Symbol, error) {
	return nil, nil
}
func (f *fakeStore) AllSymbols(ctx context.Context) ([]model.Symbol, error) { return nil, nil }
func (f *fakeStore) Imports(ctx context.Context, id model.FileID) ([]model.Import, error) {
	var out []model.Import
	for _, imp := range f.imports {
		if imp.FileID == id {
			out = append(out, imp)
		}
	}
	return out, nil
}
func (f *fakeStore) AllImports(ctx context.Context) ([]model.Import, error) { return f.imports, nil }
func (f *fakeStore) Exports(ctx context.Context, id model.FileID) ([]model.Export, error) {
	var out []model.Export
	for _, e := range f.exports {
		if e.FileID == id {
			out = append(out, e)
		}
	}
	return out, nil
}
func (f *fakeStore) AllExports(ctx context.Context) ([]model.Export, error) { return f.exports, nil }
func (f *fakeStore) ReferencesBySource(ctx context.Context, id model.SymbolID) ([]model.Reference, error) {
	return nil, nil
}
func (f *fakeStore) ReferencesByTargetName(ctx context.Context, name string) ([]model.Reference, error) {
	return nil, nil
}
func (f *fakeStore) AllReferences(ctx context.Context) ([]model.Reference, error) { return nil, nil }
func (f *fakeStore) Suppressions(ctx context.Context, id model.FileID) ([]model.Suppression, error) {
	return nil, nil
}
func (f *fakeStore) Close() error { return nil }

// TestDeadExportsWildcardReexportChain is scenario 1 (§8): main.ts imports
// `foo` by name from a barrel that only re-exports via wildcard; foo's real
// declaration in a.ts must not be reported dead even though the barrel never
// declares "foo" itself.
func TestDeadExportsWildcardReexportChain(t *testing.T) {
	g := model.NewFileGraph()
	a := model.FileID(1)
	barrel := model.FileID(2)
	main := model.FileID(3)
	g.AddFile(&model.File{ID: a, Path: "a.ts", Language: model.LanguageTSJS})
	g.AddFile(&model.File{ID: barrel, Path: "barrel.ts", Language: model.LanguageTSJS})
	g.AddFile(&model.File{ID: main, Path: "main.ts", Language: model.LanguageTSJS})
	g.EntryRole[main] = model.EntryPointRoleConfigured

	// barrel.ts: export * from './a' -> one edge barrel -> a at line 1.
	g.AddEdge(model.Edge{Source: barrel, Target: a, IsWildcard: true, Line: 1, Resolution: model.Resolved(a)})
	// main.ts: import { foo } from './barrel' -> one edge main -> barrel at line 1.
	g.AddEdge(model.Edge{Source: main, Target: barrel, ImportedNames: []model.ImportedName{{Kind: model.ImportedNameNamed, Name: "foo"}}, Line: 1, Resolution: model.Resolved(barrel)})

	s := &fakeStore{
		exports: []model.Export{
			{FileID: a, Name: "foo", Line: 1},
			{FileID: barrel, Name: model.WildcardExportName, IsReexport: true, ReexportSource: "./a", Line: 1},
		},
		imports: []model.Import{
			{FileID: barrel, Specifier: "./a", Names: []model.ImportedName{{Kind: model.ImportedNameWildcard}}, Line: 1},
			{FileID: main, Specifier: "./barrel", Names: []model.ImportedName{{Kind: model.ImportedNameNamed, Name: "foo"}}, Line: 1},
		},
	}

	dead, err := DeadExports(context.Background(), s, g)
	require.NoError(t, err)
	for _, d := range dead {
		require.NotEqual(t, "a.ts", d.Path, "foo in a.ts must not be reported dead")
	}
}
