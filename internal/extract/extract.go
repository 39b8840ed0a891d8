// Package extract implements the per-language parser contract from §4.1:
// parse(file_id, source_bytes, path) -> ParseResult. Extractors are
// stateless and re-entrant per call; they never touch the filesystem or the
// persistence layer.
package extract

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codestatik/statik/internal/model"
)

// Extractor is the parser contract for one language.
type Extractor interface {
	Language() model.Language
	Extract(relPath string, content []byte, tree *sitter.Tree) model.ParseResult
}

// builder accumulates a ParseResult while walking a tree, assigning
// SymbolIDs as declarations are discovered (mirrors the teacher's
// SymbolTableBuilder, generalized to the deterministic hash-based SymbolID
// from internal/model instead of a per-run local counter).
type builder struct {
	relPath  string
	result   model.ParseResult
	byQName  map[string]model.SymbolID // qualified name -> id, for intra-file resolution
}

func newBuilder(relPath string) *builder {
	return &builder{relPath: relPath, byQName: make(map[string]model.SymbolID)}
}

// addSymbol records a declaration and returns its SymbolID.
func (b *builder) addSymbol(name, qualifiedName string, kind model.SymbolKind, pos model.Position, parent *model.SymbolID, vis model.Visibility, signature string) model.SymbolID {
	id := model.NewSymbolID(b.relPath, kind, qualifiedName)
	b.result.Symbols = append(b.result.Symbols, model.Symbol{
		ID:            id,
		Name:          name,
		QualifiedName: qualifiedName,
		Kind:          kind,
		Position:      pos,
		Parent:        parent,
		Visibility:    vis,
		Signature:     signature,
	})
	b.byQName[qualifiedName] = id
	return id
}

// resolveIntraFile looks up a name against symbols declared so far in the
// same file (§4.1: "Intra-file references whose target is also declared in
// the file are resolved to concrete SymbolIDs during parsing").
func (b *builder) resolveIntraFile(name string) (model.SymbolID, bool) {
	if id, ok := b.byQName[name]; ok {
		return id, true
	}
	// fall back to a simple-name match against any declared symbol, since
	// callers frequently reference by simple name rather than full
	// qualified path.
	for qn, id := range b.byQName {
		if qn == name || suffixAfterDot(qn) == name {
			return id, true
		}
	}
	return model.SymbolID{}, false
}

func suffixAfterDot(qualified string) string {
	last := -1
	for i := 0; i < len(qualified); i++ {
		if qualified[i] == '.' {
			last = i
		}
	}
	if last == -1 {
		return qualified
	}
	return qualified[last+1:]
}

func (b *builder) addReference(source model.SymbolID, targetName string, kind model.ReferenceKind, line int) {
	target := model.ReferenceTarget{Name: targetName}
	if id, ok := b.resolveIntraFile(targetName); ok {
		target = model.ReferenceTarget{Symbol: id}
	}
	b.result.References = append(b.result.References, model.Reference{
		Source: source,
		Target: target,
		Kind:   kind,
		Line:   line,
	})
}

func (b *builder) addImport(imp model.Import) {
	b.result.Imports = append(b.result.Imports, imp)
}

func (b *builder) addExport(exp model.Export) {
	b.result.Exports = append(b.result.Exports, exp)
}

func (b *builder) addSuppression(line int, ruleID string) {
	b.result.Suppressions = append(b.result.Suppressions, model.Suppression{Line: line, RuleID: ruleID})
}

func (b *builder) build() model.ParseResult {
	return b.result
}

// --- shared tree-sitter node helpers, grounded on the teacher's AST
// traversal conventions (GetNodeText/GetNodeLocation/FindChildByType) ---

func nodeText(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start > uint(len(content)) || end > uint(len(content)) || start > end {
		return ""
	}
	return string(content[start:end])
}

func nodePosition(node *sitter.Node) model.Position {
	if node == nil {
		return model.Position{}
	}
	p := node.StartPosition()
	return model.Position{
		Line:   int(p.Row) + 1,
		Column: int(p.Column) + 1,
		Offset: int(node.StartByte()),
	}
}

func childByType(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if c := node.Child(i); c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

func childrenByType(node *sitter.Node, kind string) []*sitter.Node {
	if node == nil {
		return nil
	}
	var out []*sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		if c := node.Child(i); c != nil && c.Kind() == kind {
			out = append(out, c)
		}
	}
	return out
}

// walk depth-first traverses node, calling visit on every descendant
// (including node itself). Returning false from visit skips that node's
// children but traversal continues with siblings.
func walk(node *sitter.Node, visit func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visit(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		walk(node.Child(i), visit)
	}
}

func fieldChild(node *sitter.Node, field string) *sitter.Node {
	if node == nil {
		return nil
	}
	return node.ChildByFieldName(field)
}
