package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codestatik/statik/internal/model"
)

// TestRustResolverRelativeModulePathSiblingFallback guards the Finding-4
// fix: a bare leading segment that is not crate/self/super/the crate
// name/a declared dependency/std must still resolve against a sibling
// module before being declared an external crate.
func TestRustResolverRelativeModulePathSiblingFallback(t *testing.T) {
	util := model.FileID(1)
	caller := model.FileID(2)
	idx := NewIndex([]model.File{
		{ID: util, Path: "src/util.rs", Language: model.LanguageRust},
		{ID: caller, Path: "src/lib.rs", Language: model.LanguageRust},
	})
	idx.CrateRoot = "src"

	r := NewRustResolver()
	from := model.File{ID: caller, Path: "src/lib.rs", Language: model.LanguageRust}
	imp := model.Import{FileID: caller, Specifier: "util::helper", Line: 1}

	res := r.Resolve(from, imp, idx)
	require.Len(t, res, 1)
	require.True(t, res[0].IsResolved())
	require.Equal(t, util, res[0].FileID)
}

// TestRustResolverRelativeModulePathAncestorFallback resolves against an
// ancestor directory's module, not just an immediate sibling.
func TestRustResolverRelativeModulePathAncestorFallback(t *testing.T) {
	shared := model.FileID(1)
	caller := model.FileID(2)
	idx := NewIndex([]model.File{
		{ID: shared, Path: "src/shared.rs", Language: model.LanguageRust},
		{ID: caller, Path: "src/api/handlers.rs", Language: model.LanguageRust},
	})
	idx.CrateRoot = "src"

	r := NewRustResolver()
	from := model.File{ID: caller, Path: "src/api/handlers.rs", Language: model.LanguageRust}
	imp := model.Import{FileID: caller, Specifier: "shared::Thing", Line: 1}

	res := r.Resolve(from, imp, idx)
	require.Len(t, res, 1)
	require.True(t, res[0].IsResolved())
	require.Equal(t, shared, res[0].FileID)
}

// TestRustResolverUnknownRootStillExternalCrate confirms the fallback chain
// doesn't swallow genuine external crates: no sibling/ancestor/crate-root
// module matches "serde", so it must still be Unresolved(ExternalCrate).
func TestRustResolverUnknownRootStillExternalCrate(t *testing.T) {
	caller := model.FileID(1)
	idx := NewIndex([]model.File{
		{ID: caller, Path: "src/lib.rs", Language: model.LanguageRust},
	})
	idx.CrateRoot = "src"

	r := NewRustResolver()
	from := model.File{ID: caller, Path: "src/lib.rs", Language: model.LanguageRust}
	imp := model.Import{FileID: caller, Specifier: "serde::Deserialize", Line: 1}

	res := r.Resolve(from, imp, idx)
	require.Len(t, res, 1)
	require.False(t, res[0].IsResolved())
	require.Equal(t, model.UnresolvedReasonExternalCrate, res[0].Reason)
}
