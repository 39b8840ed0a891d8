package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codestatik/statik/internal/model"
)

// TestTSJSResolverDynamicImportUnresolved is scenario 2 (§8): a dynamic
// import built from a non-literal expression (`await import('./' + n)`) is
// extracted with an empty specifier; the resolver must report it
// Unresolved(DynamicPath) rather than ever producing a resolved edge.
func TestTSJSResolverDynamicImportUnresolved(t *testing.T) {
	idx := NewIndex([]model.File{{ID: 1, Path: "index.ts"}})
	r := NewTSJSResolver()

	from := model.File{ID: 1, Path: "index.ts"}
	imp := model.Import{FileID: 1, Specifier: "", IsDynamic: true, Line: 1}

	resolutions := r.Resolve(from, imp, idx)
	require.Len(t, resolutions, 1)
	require.False(t, resolutions[0].IsResolved())
	require.Equal(t, model.ResolutionKindUnresolved, resolutions[0].Kind)
	require.Equal(t, model.UnresolvedReasonDynamicPath, resolutions[0].Reason)
}

// TestTSJSResolverBareSpecifierIsExternal guards the Finding-1 fix: a bare
// specifier with no tsconfig paths/baseUrl match is External(package name),
// never Unresolved — npm-package imports must not show up as unresolved.
func TestTSJSResolverBareSpecifierIsExternal(t *testing.T) {
	idx := NewIndex([]model.File{{ID: 1, Path: "index.ts"}})
	r := NewTSJSResolver()

	from := model.File{ID: 1, Path: "index.ts"}
	imp := model.Import{FileID: 1, Specifier: "react", Line: 1}

	res := r.Resolve(from, imp, idx)
	require.Len(t, res, 1)
	require.Equal(t, model.ResolutionKindExternal, res[0].Kind)
	require.Equal(t, "react", res[0].External)
}

func TestTSJSResolverScopedBareSpecifierIsExternal(t *testing.T) {
	idx := NewIndex([]model.File{{ID: 1, Path: "index.ts"}})
	r := NewTSJSResolver()

	from := model.File{ID: 1, Path: "index.ts"}
	imp := model.Import{FileID: 1, Specifier: "@scope/pkg/sub", Line: 1}

	res := r.Resolve(from, imp, idx)
	require.Len(t, res, 1)
	require.Equal(t, model.ResolutionKindExternal, res[0].Kind)
	require.Equal(t, "@scope/pkg", res[0].External)
}
