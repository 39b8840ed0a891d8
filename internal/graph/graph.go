// Package graph assembles the transient FileGraph from persisted records by
// joining them through the per-language resolvers (§4.3), mirroring the
// teacher's SymbolLinkerEngine.LinkSymbols wiring pattern generalized from a
// single in-memory engine to a store-backed, single-pass build.
package graph

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/codestatik/statik/internal/model"
	"github.com/codestatik/statik/internal/resolve"
	"github.com/codestatik/statik/internal/store"
)

// ProjectContext carries the read-only per-language configuration resolvers
// consult (§4.2): tsconfig paths, Java source roots, Rust crate metadata,
// plus the configured source-set/entry-point overrides from §6.
type ProjectContext struct {
	TSConfigBaseURL string
	TSConfigPaths   map[string][]string

	JavaSourceRoots []string

	RustCrateName    string
	RustCrateRoot    string
	RustDependencies map[string]bool

	SourceSets           []model.SourceSet
	ExtraEntryPatterns   []string
	ExtraEntryAnnotation []string
}

// Builder constructs a FileGraph from a Store.
type Builder struct {
	store     store.Store
	resolvers map[model.Language]resolve.Resolver
	ctx       ProjectContext
}

func NewBuilder(s store.Store, ctx ProjectContext) *Builder {
	b := &Builder{
		store: s,
		ctx:   ctx,
		resolvers: map[model.Language]resolve.Resolver{
			model.LanguageTSJS: resolve.NewTSJSResolver(),
			model.LanguageJava: resolve.NewJavaResolver(),
			model.LanguageRust: resolve.NewRustResolver(),
		},
	}
	return b
}

// Build loads every persisted file/import record, resolves each import, and
// assembles the FileGraph (§4.3).
func (b *Builder) Build(ctx context.Context) (*model.FileGraph, error) {
	files, err := b.store.AllFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("graph: load files: %w", err)
	}

	idx := resolve.NewIndex(files)
	idx.BaseURL = b.ctx.TSConfigBaseURL
	idx.Paths = b.ctx.TSConfigPaths
	idx.SourceRoots = b.ctx.JavaSourceRoots
	idx.CrateName = b.ctx.RustCrateName
	idx.CrateRoot = b.ctx.RustCrateRoot
	idx.Dependencies = b.ctx.RustDependencies

	g := model.NewFileGraph()
	byPath := make(map[string]model.FileID, len(files))
	for i := range files {
		f := files[i]
		g.AddFile(&f)
		byPath[f.Path] = f.ID
	}

	explicitJavaNames := make(map[model.FileID]map[string]bool)

	for _, f := range files {
		resolver, ok := b.resolvers[f.Language]
		if !ok {
			continue
		}
		imports, err := b.store.Imports(ctx, f.ID)
		if err != nil {
			return nil, fmt.Errorf("graph: load imports for %s: %w", f.Path, err)
		}
		if f.Language == model.LanguageJava {
			names := make(map[string]bool, len(imports))
			for _, imp := range imports {
				if i := strings.LastIndex(imp.Specifier, "."); i >= 0 {
					names[imp.Specifier[i+1:]] = true
				} else {
					names[imp.Specifier] = true
				}
			}
			explicitJavaNames[f.ID] = names
		}
		for _, imp := range imports {
			resolutions := resolver.Resolve(f, imp, idx)
			g.TotalDeps[f.ID]++
			for _, res := range resolutions {
				if res.Kind == model.ResolutionKindExternal {
					g.ExternalDeps[f.ID]++
				}
				if !res.IsResolved() {
					g.UnresolvedFiles[f.ID] = true
					continue
				}
				g.AddEdge(model.Edge{
					Source:           f.ID,
					Target:           res.FileID,
					ImportedNames:    imp.Names,
					IsWildcard:       isWildcardImport(imp),
					IsTypeOnly:       imp.IsTypeOnly,
					IsModDeclaration: imp.IsModDeclaration,
					Line:             imp.Line,
					Resolution:       res,
				})
			}
		}
	}

	if err := b.injectJavaSamePackageEdges(ctx, g, files, explicitJavaNames); err != nil {
		return nil, fmt.Errorf("graph: same-package java edges: %w", err)
	}

	b.classifyEntryPoints(g, files)
	if err := b.classifyAnnotatedEntryPoints(ctx, g, files); err != nil {
		return nil, fmt.Errorf("graph: annotated entry points: %w", err)
	}
	return g, nil
}

// injectJavaSamePackageEdges implements §4.1's "secondary scanner" over Java
// files: a same-package class reference never needs an explicit import (the
// compiler resolves it implicitly against every other class declared in the
// same directory/package), so without this pass those references would
// never become FileGraph edges at all. For each Java file, every
// ReferenceKindTypeUsage target name not already covered by an explicit
// import (explicitJavaNames) is matched against the top-level type names
// declared by every other file in the same package (directory); a match
// synthesizes a Resolved edge exactly as if the class had been imported.
func (b *Builder) injectJavaSamePackageEdges(ctx context.Context, g *model.FileGraph, files []model.File, explicitJavaNames map[model.FileID]map[string]bool) error {
	packageClasses := make(map[string]map[string]model.FileID)
	for _, f := range files {
		if f.Language != model.LanguageJava {
			continue
		}
		symbols, err := b.store.Symbols(ctx, f.ID)
		if err != nil {
			return fmt.Errorf("load symbols for %s: %w", f.Path, err)
		}
		dir := path.Dir(f.Path)
		for _, sym := range symbols {
			if sym.Parent != nil || !isJavaTypeKind(sym.Kind) {
				continue
			}
			if packageClasses[dir] == nil {
				packageClasses[dir] = make(map[string]model.FileID)
			}
			packageClasses[dir][sym.Name] = f.ID
		}
	}

	allRefs, err := b.store.AllReferences(ctx)
	if err != nil {
		return fmt.Errorf("load references: %w", err)
	}
	refsByFile := make(map[model.FileID][]model.Reference, len(files))
	for _, r := range allRefs {
		if r.Kind == model.ReferenceKindTypeUsage {
			refsByFile[r.FileID] = append(refsByFile[r.FileID], r)
		}
	}

	for _, f := range files {
		if f.Language != model.LanguageJava {
			continue
		}
		classes := packageClasses[path.Dir(f.Path)]
		if len(classes) == 0 {
			continue
		}
		explicit := explicitJavaNames[f.ID]
		targets := make(map[model.FileID][]model.ImportedName)
		lines := make(map[model.FileID]int)
		for _, r := range refsByFile[f.ID] {
			name := r.Target.Name
			if explicit[name] {
				continue
			}
			targetID, ok := classes[name]
			if !ok || targetID == f.ID {
				continue
			}
			targets[targetID] = append(targets[targetID], model.ImportedName{Kind: model.ImportedNameNamed, Name: name})
			if lines[targetID] == 0 || r.Line < lines[targetID] {
				lines[targetID] = r.Line
			}
		}
		for targetID, names := range targets {
			g.TotalDeps[f.ID]++
			g.AddEdge(model.Edge{
				Source:        f.ID,
				Target:        targetID,
				ImportedNames: dedupeImportedNames(names),
				Line:          lines[targetID],
				Resolution:    model.Resolved(targetID),
			})
		}
	}
	return nil
}

func dedupeImportedNames(names []model.ImportedName) []model.ImportedName {
	seen := make(map[string]bool, len(names))
	var out []model.ImportedName
	for _, n := range names {
		if seen[n.Name] {
			continue
		}
		seen[n.Name] = true
		out = append(out, n)
	}
	return out
}

func isWildcardImport(imp model.Import) bool {
	for _, n := range imp.Names {
		if n.Kind == model.ImportedNameWildcard {
			return true
		}
	}
	return false
}

// conventionalEntryPatterns are the built-in per-language conventions named
// in §4.3, compiled once.
var conventionalEntryPatterns = []struct {
	lang model.Language
	re   *regexp.Regexp
}{
	{model.LanguageTSJS, regexp.MustCompile(`(^|/)(index|main)\.(ts|tsx|js|jsx|mjs|cjs)$`)},
	{model.LanguageTSJS, regexp.MustCompile(`\.(test|spec)\.`)},
	{model.LanguageJava, regexp.MustCompile(`(^|/)(Test[^/]*|[^/]*Test|[^/]*IT|Application)\.java$`)},
	{model.LanguageRust, regexp.MustCompile(`(^|/)(main|lib|build)\.rs$`)},
	{model.LanguageRust, regexp.MustCompile(`(^|/)(src/bin|tests|examples|benches)/`)},
}

var defaultEntryAnnotations = map[string]bool{
	"SpringBootApplication": true,
	"Test":                  true,
	"ParameterizedTest":     true,
	"RepeatedTest":          true,
	"Component":             true,
	"Service":               true,
	"Repository":            true,
	"Controller":            true,
	"RestController":        true,
	"Configuration":         true,
	"Bean":                  true,
	"Endpoint":              true,
	"WebServlet":            true,
}

func (b *Builder) classifyEntryPoints(g *model.FileGraph, files []model.File) {
	sourceSetRole := make(map[string]model.EntryPointRole, len(b.ctx.SourceSets))
	for _, ss := range b.ctx.SourceSets {
		sourceSetRole[ss.Name] = ss.Role
	}

	annotations := make(map[string]bool, len(defaultEntryAnnotations))
	for k := range defaultEntryAnnotations {
		annotations[k] = true
	}
	for _, a := range b.ctx.ExtraEntryAnnotation {
		annotations[a] = true
	}

	for _, f := range files {
		if role, ok := sourceSetRole[f.SourceSet]; ok && role == model.EntryPointRoleConfigured {
			g.EntryRole[f.ID] = model.EntryPointRoleConfigured
			continue
		}
		if matchesAny(f.Path, b.ctx.ExtraEntryPatterns) {
			g.EntryRole[f.ID] = model.EntryPointRoleConventional
			continue
		}
		if matchesConventional(f.Path, f.Language) {
			g.EntryRole[f.ID] = model.EntryPointRoleConventional
			continue
		}
	}
}

// classifyAnnotatedEntryPoints tags EntryPointRoleAnnotated for every Java
// file with a top-level type carrying an entry-point annotation. The
// extractor records annotations on a type as ReferenceKindTypeUsage
// references sourced from that type's symbol (only the extractor sees the
// raw annotation nodes), so this pass re-reads those references rather than
// re-parsing anything.
func (b *Builder) classifyAnnotatedEntryPoints(ctx context.Context, g *model.FileGraph, files []model.File) error {
	for _, f := range files {
		if f.Language != model.LanguageJava || g.IsEntryPoint(f.ID) {
			continue
		}
		symbols, err := b.store.Symbols(ctx, f.ID)
		if err != nil {
			return fmt.Errorf("load symbols for %s: %w", f.Path, err)
		}
		for _, sym := range symbols {
			if sym.Parent != nil || !isJavaTypeKind(sym.Kind) {
				continue
			}
			refs, err := b.store.ReferencesBySource(ctx, sym.ID)
			if err != nil {
				return fmt.Errorf("load references for %s: %w", f.Path, err)
			}
			var names []string
			for _, r := range refs {
				if r.Kind == model.ReferenceKindTypeUsage {
					names = append(names, r.Target.Name)
				}
			}
			if HasEntryAnnotation(names, b.ctx.ExtraEntryAnnotation) {
				g.EntryRole[f.ID] = model.EntryPointRoleAnnotated
				break
			}
		}
	}
	return nil
}

func isJavaTypeKind(k model.SymbolKind) bool {
	switch k {
	case model.SymbolKindClass, model.SymbolKindInterface, model.SymbolKindRecord, model.SymbolKindEnum, model.SymbolKindAnnotation:
		return true
	default:
		return false
	}
}

func matchesAny(p string, patterns []string) bool {
	for _, pat := range patterns {
		if ok, _ := path.Match(pat, p); ok {
			return true
		}
	}
	return false
}

func matchesConventional(p string, lang model.Language) bool {
	for _, c := range conventionalEntryPatterns {
		if c.lang != lang {
			continue
		}
		if c.re.MatchString(p) {
			return true
		}
	}
	return false
}

// HasEntryAnnotation reports whether a Java file's annotations (already
// recorded as type-usage references on its top-level type symbols) include
// any configured entry-point annotation; used by
// Builder.classifyAnnotatedEntryPoints to tag EntryPointRoleAnnotated while
// the graph is built.
func HasEntryAnnotation(annotationNames []string, configured []string) bool {
	set := make(map[string]bool, len(defaultEntryAnnotations)+len(configured))
	for k := range defaultEntryAnnotations {
		set[k] = true
	}
	for _, a := range configured {
		set[a] = true
	}
	for _, n := range annotationNames {
		n = strings.TrimPrefix(n, "@")
		if set[n] {
			return true
		}
	}
	return false
}
