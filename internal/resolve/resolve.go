// Package resolve implements the per-language import resolution algorithms
// from §4.2: given an import specifier and the file that wrote it, produce
// one or more Resolutions, each one of Resolved / ResolvedWithCaveat /
// External / Unresolved.
// Resolvers never touch the filesystem directly — construction of the
// FileGraph happens after every file in the project has already been parsed
// and persisted, so resolution is done entirely against the already-known
// set of project file paths (mirroring the teacher's fileRegistry pattern in
// JSResolver, generalized from a live os.Stat check to an in-memory index).
package resolve

import (
	"path"
	"strings"

	"github.com/codestatik/statik/internal/model"
)

// Index is the project-wide file-path index resolvers consult. It is built
// once per index run from the persisted file set plus per-language project
// metadata (tsconfig paths, Java source roots, Cargo package names).
type Index struct {
	byPath map[string]model.FileID

	// TSJS
	BaseURL string
	Paths   map[string][]string // tsconfig "paths" mapping, pattern -> targets

	// Java
	SourceRoots []string // project-relative source roots, e.g. "src/main/java"

	// Rust
	CrateName    string            // this crate's own package name ([rust] crate_name)
	Dependencies map[string]bool   // external crate names declared as dependencies
	CrateRoot    string            // project-relative path to the crate's src/ dir
}

// NewIndex builds an Index from the known project files.
func NewIndex(files []model.File) *Index {
	idx := &Index{byPath: make(map[string]model.FileID, len(files))}
	for _, f := range files {
		idx.byPath[f.Path] = f.ID
	}
	return idx
}

func (idx *Index) lookup(p string) (model.FileID, bool) {
	id, ok := idx.byPath[path.Clean(p)]
	return id, ok
}

// Resolver is the per-language resolution contract (§4.2). A resolver may
// return more than one Resolution for a single specifier — the graph
// builder expands each into its own edge (§4.3), which is how a Java
// wildcard import becomes one edge per class file in the target package.
type Resolver interface {
	Language() model.Language
	Resolve(from model.File, imp model.Import, idx *Index) []model.Resolution
}

// tsExtensions is the candidate suffix list tried against a bare specifier
// in list order, starting with the specifier exactly as written, mirroring
// the teacher's extensions slice in tryResolveFile.
var tsExtensions = []string{"", ".ts", ".tsx", ".d.ts", ".js", ".jsx", ".mjs", ".cjs", ".json"}

var tsIndexFiles = []string{"index.ts", "index.tsx", "index.js", "index.jsx", "index.d.ts"}

func joinRel(dir, rel string) string {
	return path.Clean(path.Join(dir, rel))
}

func dirOf(p string) string {
	d := path.Dir(p)
	if d == "." {
		return ""
	}
	return d
}
