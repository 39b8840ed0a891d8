package resolve

import (
	"strings"

	"github.com/codestatik/statik/internal/model"
)

// JavaResolver implements the Java resolution algorithm of §4.2, grounded on
// the teacher's CSharpResolver: an import's package name is mapped onto a
// directory path the same way a C# namespace is mapped onto a candidate
// directory, tried against each configured source root in turn.
type JavaResolver struct{}

func NewJavaResolver() *JavaResolver { return &JavaResolver{} }

func (r *JavaResolver) Language() model.Language { return model.LanguageJava }

func (r *JavaResolver) Resolve(from model.File, imp model.Import, idx *Index) []model.Resolution {
	specifier := imp.Specifier
	if specifier == "" {
		return []model.Resolution{model.Unresolved(model.UnresolvedReasonUnsupportedSyntax)}
	}

	if isJDKPackage(specifier) {
		return []model.Resolution{model.External(topSegment(specifier))}
	}

	isWildcard := len(imp.Names) == 1 && imp.Names[0].Kind == model.ImportedNameWildcard
	pkgPath, simpleName := splitJavaImport(specifier, isWildcard)

	roots := idx.SourceRoots
	if len(roots) == 0 {
		roots = []string{""}
	}

	// §4.2: a wildcard import "enumerates .java files in a/b/ under any
	// matching source root → one resolution per file" — this is the one
	// case where the resolver fans out into multiple Resolved variants
	// rather than collapsing to a single ResolvedWithCaveat (scenario 6).
	if isWildcard {
		var out []model.Resolution
		for _, root := range roots {
			dir := joinRel(root, strings.ReplaceAll(pkgPath, ".", "/"))
			for _, id := range idx.byPathPrefixMatch(dir) {
				out = append(out, model.Resolved(id))
			}
		}
		if len(out) == 0 {
			return []model.Resolution{model.Unresolved(model.UnresolvedReasonClasspath)}
		}
		return out
	}

	var matches []model.FileID
	for _, root := range roots {
		dir := joinRel(root, strings.ReplaceAll(pkgPath, ".", "/"))
		if id, ok := idx.lookup(joinRel(dir, simpleName+".java")); ok {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return []model.Resolution{model.Unresolved(model.UnresolvedReasonClasspath)}
	case 1:
		return []model.Resolution{model.Resolved(matches[0])}
	default:
		return []model.Resolution{model.ResolvedWithCaveat(matches[0], model.CaveatAmbiguousIndex)}
	}
}

// splitJavaImport splits "com.acme.util.Widget" into package path
// "com.acme.util" and simple name "Widget"; for a wildcard import
// ("com.acme.util.*", already stripped of the trailing ".*" by the
// extractor leaving specifier "com.acme.util") the whole specifier is the
// package path.
func splitJavaImport(specifier string, isWildcard bool) (pkgPath, simpleName string) {
	if isWildcard {
		return specifier, ""
	}
	idx := strings.LastIndex(specifier, ".")
	if idx < 0 {
		return "", specifier
	}
	return specifier[:idx], specifier[idx+1:]
}

// topSegment returns the first dotted segment of a package/class specifier
// (§4.2: External carries the top-level package segment, not the full
// dotted name), e.g. "java.util.List" -> "java".
func topSegment(specifier string) string {
	if i := strings.Index(specifier, "."); i >= 0 {
		return specifier[:i]
	}
	return specifier
}

func isJDKPackage(specifier string) bool {
	for _, prefix := range []string{"java.", "javax.", "jakarta.", "sun.", "jdk."} {
		if strings.HasPrefix(specifier, prefix) {
			return true
		}
	}
	return false
}

// byPathPrefixMatch returns every indexed .java file directly inside dir
// (files in its subdirectories are not included).
func (idx *Index) byPathPrefixMatch(dir string) map[string]model.FileID {
	out := make(map[string]model.FileID)
	prefix := dir + "/"
	for p, id := range idx.byPath {
		if strings.HasPrefix(p, prefix) && strings.HasSuffix(p, ".java") && !strings.Contains(p[len(prefix):], "/") {
			out[p] = id
		}
	}
	return out
}
