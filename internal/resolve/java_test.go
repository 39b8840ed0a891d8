package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codestatik/statik/internal/model"
)

// TestJavaResolverWildcardImportFansOutPerClass is scenario 6 (§8):
// `import com.example.*;` in a file under a different package must resolve
// to one Resolution per class file found in the target package directory.
func TestJavaResolverWildcardImportFansOutPerClass(t *testing.T) {
	a := model.FileID(1)
	b := model.FileID(2)
	c := model.FileID(3)
	idx := NewIndex([]model.File{
		{ID: a, Path: "src/main/java/com/example/A.java", Language: model.LanguageJava},
		{ID: b, Path: "src/main/java/com/example/B.java", Language: model.LanguageJava},
		{ID: c, Path: "src/main/java/com/other/C.java", Language: model.LanguageJava},
	})
	idx.SourceRoots = []string{"src/main/java"}

	r := NewJavaResolver()
	from := model.File{ID: c, Path: "src/main/java/com/other/C.java", Language: model.LanguageJava}
	imp := model.Import{FileID: c, Specifier: "com.example", Names: []model.ImportedName{{Kind: model.ImportedNameWildcard}}, Line: 1}

	resolutions := r.Resolve(from, imp, idx)
	require.Len(t, resolutions, 2)

	var targets []model.FileID
	for _, res := range resolutions {
		require.True(t, res.IsResolved())
		targets = append(targets, res.FileID)
	}
	require.ElementsMatch(t, []model.FileID{a, b}, targets)
}

// TestJavaResolverJDKImportExternalUsesTopSegment guards the smaller-item
// fix: an External resolution for a JDK import carries only the top-level
// package segment, not the full dotted specifier.
func TestJavaResolverJDKImportExternalUsesTopSegment(t *testing.T) {
	idx := NewIndex(nil)
	r := NewJavaResolver()
	from := model.File{ID: 1, Path: "src/main/java/com/example/A.java", Language: model.LanguageJava}
	imp := model.Import{FileID: 1, Specifier: "java.util.List", Line: 1}

	res := r.Resolve(from, imp, idx)
	require.Len(t, res, 1)
	require.Equal(t, model.ResolutionKindExternal, res[0].Kind)
	require.Equal(t, "java", res[0].External)
}
