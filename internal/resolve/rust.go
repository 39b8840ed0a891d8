package resolve

import (
	"strings"

	"github.com/codestatik/statik/internal/model"
)

// RustResolver implements the Rust resolution algorithm of §4.2, grounded
// structurally on the teacher's GoResolver: a `crate`/`self`/`super`-rooted
// path plays the role Go's module-name-prefixed import path plays, and
// "mod foo;" declarations (already tagged IsModDeclaration by the
// extractor) resolve the same way a relative Go import resolves to a
// sibling file or directory.
type RustResolver struct{}

func NewRustResolver() *RustResolver { return &RustResolver{} }

func (r *RustResolver) Language() model.Language { return model.LanguageRust }

func (r *RustResolver) Resolve(from model.File, imp model.Import, idx *Index) []model.Resolution {
	return []model.Resolution{r.resolveOne(from, imp, idx)}
}

func (r *RustResolver) resolveOne(from model.File, imp model.Import, idx *Index) model.Resolution {
	if imp.IsModDeclaration {
		return r.resolveModDeclaration(from, imp, idx)
	}

	specifier := imp.Specifier
	if specifier == "" {
		return model.Unresolved(model.UnresolvedReasonUnsupportedSyntax)
	}

	segments := strings.Split(specifier, "::")
	root := segments[0]

	switch root {
	case "crate":
		return r.resolveCrateRooted(segments[1:], idx)
	case "self", "super":
		return r.resolveRelativeToModule(from, segments, idx)
	default:
		if idx.CrateName != "" && root == idx.CrateName {
			return r.resolveCrateRooted(segments[1:], idx)
		}
		if idx.Dependencies[root] || isStdCrate(root) {
			return model.External(root)
		}
		// Not a known root keyword, the crate's own name, a declared
		// dependency, or std: §4.2 still requires trying it as a relative
		// module path (sibling module, then ancestor modules, then the
		// crate root) before giving up and calling it an external crate —
		// `use foo::bar` where `foo` is a local module declared with `mod
		// foo;` somewhere up the tree is ordinary, import-free Rust.
		if res, ok := r.resolveModulePath(from, root, idx); ok {
			return res
		}
		return model.Unresolved(model.UnresolvedReasonExternalCrate)
	}
}

// resolveModulePath implements the fallback chain for a bare leading segment
// that isn't crate/self/super/the crate name/a dependency/std: `use
// foo::bar` names a module `foo` (the rest of the path addresses an item
// inside it, not further path components) and tries it in order as a
// sibling module of the importing file's directory, then walking up through
// each ancestor directory, then finally rooted at the crate's src/
// directory (idx.CrateRoot) — the same three places a sibling `mod foo;`
// declaration, one declared further up the module tree, or one declared at
// the crate root would each put foo.rs / foo/mod.rs.
func (r *RustResolver) resolveModulePath(from model.File, root string, idx *Index) (model.Resolution, bool) {
	for dir := dirOf(from.Path); ; dir = dirOf(dir) {
		for _, candidate := range []string{
			joinRel(dir, root+".rs"),
			joinRel(dir, root+"/mod.rs"),
		} {
			if id, ok := idx.lookup(candidate); ok {
				return model.Resolved(id), true
			}
		}
		if dir == "" {
			break
		}
	}

	if idx.CrateRoot != "" {
		for _, candidate := range []string{
			joinRel(idx.CrateRoot, root+".rs"),
			joinRel(idx.CrateRoot, root+"/mod.rs"),
		} {
			if id, ok := idx.lookup(candidate); ok {
				return model.Resolved(id), true
			}
		}
	}

	return model.Resolution{}, false
}

// resolveModDeclaration resolves `mod foo;` to either a sibling "foo.rs" or
// a "foo/mod.rs" (the pre-2018 convention kept alongside the 2018+
// sibling-file convention, same as the teacher trying multiple extensions
// before giving up).
func (r *RustResolver) resolveModDeclaration(from model.File, imp model.Import, idx *Index) model.Resolution {
	dir := dirOf(from.Path)
	stem := strings.TrimSuffix(from.Path[len(dir):], ".rs")
	stem = strings.TrimPrefix(stem, "/")
	isModuleFile := stem == "mod" || stem == "lib" || stem == "main"

	candidates := []string{
		joinRel(dir, imp.Specifier+".rs"),
		joinRel(dir, imp.Specifier+"/mod.rs"),
	}
	if !isModuleFile {
		// a non-mod.rs file's submodules live under <stem>/ (2018 edition
		// convention), e.g. foo.rs declaring `mod bar;` looks for foo/bar.rs.
		candidates = append([]string{
			joinRel(joinRel(dir, trimRsSuffix(from.Path, dir)), imp.Specifier+".rs"),
		}, candidates...)
	}

	for _, c := range candidates {
		if id, ok := idx.lookup(c); ok {
			return model.Resolved(id)
		}
	}
	return model.Unresolved(model.UnresolvedReasonFileNotFound)
}

func trimRsSuffix(fullPath, dir string) string {
	base := strings.TrimPrefix(fullPath, dir)
	base = strings.TrimPrefix(base, "/")
	return strings.TrimSuffix(base, ".rs")
}

func (r *RustResolver) resolveCrateRooted(segments []string, idx *Index) model.Resolution {
	if idx.CrateRoot == "" || len(segments) == 0 {
		if idx.CrateRoot == "" {
			return model.Unresolved(model.UnresolvedReasonAmbiguousModule)
		}
	}
	rel := strings.Join(segments, "/")
	for _, candidate := range []string{
		joinRel(idx.CrateRoot, rel+".rs"),
		joinRel(idx.CrateRoot, rel+"/mod.rs"),
		joinRel(idx.CrateRoot, rel+"/lib.rs"),
	} {
		if id, ok := idx.lookup(candidate); ok {
			return model.Resolved(id)
		}
	}
	return model.Unresolved(model.UnresolvedReasonFileNotFound)
}

func (r *RustResolver) resolveRelativeToModule(from model.File, segments []string, idx *Index) model.Resolution {
	dir := dirOf(from.Path)
	if segments[0] == "super" {
		dir = dirOf(dir)
		segments = segments[1:]
	} else {
		segments = segments[1:] // drop "self"
	}
	rel := strings.Join(segments, "/")
	if rel == "" {
		return model.Unresolved(model.UnresolvedReasonAmbiguousModule)
	}
	for _, candidate := range []string{
		joinRel(dir, rel+".rs"),
		joinRel(dir, rel+"/mod.rs"),
	} {
		if id, ok := idx.lookup(candidate); ok {
			return model.Resolved(id)
		}
	}
	return model.Unresolved(model.UnresolvedReasonFileNotFound)
}

func isStdCrate(name string) bool {
	switch name {
	case "std", "core", "alloc", "proc_macro", "test":
		return true
	default:
		return false
	}
}
