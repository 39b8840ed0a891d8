package extract

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codestatik/statik/internal/model"
)

// RustExtractor implements the Rust specifics of §4.1, grounded structurally
// on the Go extractor's package/import handling: a Rust module tree plays
// the same structural role Go's package/import system does for the teacher.
type RustExtractor struct{}

func NewRustExtractor() *RustExtractor { return &RustExtractor{} }

func (e *RustExtractor) Language() model.Language { return model.LanguageRust }

func (e *RustExtractor) Extract(relPath string, content []byte, tree *sitter.Tree) model.ParseResult {
	b := newBuilder(relPath)
	if tree == nil {
		return b.build()
	}
	root := tree.RootNode()
	if root == nil {
		return b.build()
	}

	e.extractSuppressions(root, content, b)
	e.extractUses(root, content, b)

	ctx := &rustContext{qualifier: nil}
	for i := uint(0); i < root.ChildCount(); i++ {
		e.extractDeclarations(root.Child(i), content, b, ctx)
	}

	return b.build()
}

type rustContext struct {
	qualifier []string
	enclosing *model.SymbolID
}

func (c *rustContext) push(name string) []string {
	return append(append([]string{}, c.qualifier...), name)
}

func (e *RustExtractor) extractSuppressions(root *sitter.Node, content []byte, b *builder) {
	walk(root, func(n *sitter.Node) bool {
		if n.Kind() != "line_comment" && n.Kind() != "block_comment" {
			return true
		}
		text := nodeText(n, content)
		rule, ok := parseSuppressionComment(text)
		if !ok {
			return true
		}
		b.addSuppression(int(n.StartPosition().Row)+2, rule)
		return true
	})
}

// --- use declarations / extern crate / mod declarations ---

func (e *RustExtractor) extractUses(root *sitter.Node, content []byte, b *builder) {
	walk(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "use_declaration":
			e.extractUseDeclaration(n, content, b)
		case "extern_crate_declaration":
			e.extractExternCrate(n, content, b)
		case "mod_item":
			e.extractModDeclaration(n, content, b)
		}
		return true
	})
}

func (e *RustExtractor) extractUseDeclaration(n *sitter.Node, content []byte, b *builder) {
	line := int(n.StartPosition().Row) + 1
	isPub := hasRustPub(n, content)

	var names []model.ImportedName
	var basePath string

	tree := childByType(n, "use_wildcard")
	if tree != nil {
		if pathNode := childByType(tree, "scoped_identifier"); pathNode != nil {
			basePath = nodeText(pathNode, content)
		} else if pathNode := childByType(tree, "identifier"); pathNode != nil {
			basePath = nodeText(pathNode, content)
		}
		names = append(names, model.ImportedName{Kind: model.ImportedNameWildcard, Name: model.WildcardExportName})
		b.addImport(model.Import{Specifier: basePath, Names: names, Line: line})
		if isPub {
			b.addExport(model.Export{Name: model.WildcardExportName, IsReexport: true, ReexportSource: basePath, Line: line})
		}
		return
	}

	if group := childByType(n, "use_list"); group != nil {
		prefix := ""
		if scoped := childByType(n, "scoped_use_list"); scoped != nil {
			if pathNode := fieldChild(scoped, "path"); pathNode != nil {
				prefix = nodeText(pathNode, content)
			}
			group = childByType(scoped, "use_list")
		}
		for i := uint(0); i < group.ChildCount(); i++ {
			c := group.Child(i)
			if c == nil {
				continue
			}
			name, alias := rustUseLeaf(c, content)
			if name == "" {
				continue
			}
			local := name
			if alias != "" {
				local = alias
			}
			names = append(names, model.ImportedName{Kind: model.ImportedNameNamed, Name: local})
			specifier := name
			if prefix != "" {
				specifier = prefix + "::" + name
			}
			b.addImport(model.Import{Specifier: specifier, Names: []model.ImportedName{{Kind: model.ImportedNameNamed, Name: local}}, Line: line})
			if isPub {
				b.addExport(model.Export{Name: local, IsReexport: true, ReexportSource: specifier, Line: line})
			}
		}
		return
	}

	// simple or aliased single-path use: `use a::b::C;` / `use a::b::C as D;`
	var pathNode *sitter.Node
	var aliasNode *sitter.Node
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "scoped_identifier", "identifier":
			pathNode = c
		case "use_as_clause":
			if p := fieldChild(c, "path"); p != nil {
				pathNode = p
			}
			if a := fieldChild(c, "alias"); a != nil {
				aliasNode = a
			}
		}
	}
	if pathNode == nil {
		return
	}
	specifier := nodeText(pathNode, content)
	name := specifier
	if idx := strings.LastIndex(specifier, "::"); idx >= 0 {
		name = specifier[idx+2:]
	}
	local := name
	if aliasNode != nil {
		local = nodeText(aliasNode, content)
	}
	b.addImport(model.Import{Specifier: specifier, Names: []model.ImportedName{{Kind: model.ImportedNameNamed, Name: local}}, Line: line})
	if isPub {
		b.addExport(model.Export{Name: local, IsReexport: true, ReexportSource: specifier, Line: line})
	}
}

func rustUseLeaf(n *sitter.Node, content []byte) (name, alias string) {
	switch n.Kind() {
	case "identifier", "self":
		return nodeText(n, content), ""
	case "use_as_clause":
		p := fieldChild(n, "path")
		a := fieldChild(n, "alias")
		if p == nil {
			return "", ""
		}
		if a != nil {
			return nodeText(p, content), nodeText(a, content)
		}
		return nodeText(p, content), ""
	}
	return "", ""
}

func (e *RustExtractor) extractExternCrate(n *sitter.Node, content []byte, b *builder) {
	line := int(n.StartPosition().Row) + 1
	ident := childByType(n, "identifier")
	if ident == nil {
		return
	}
	specifier := nodeText(ident, content)
	b.addImport(model.Import{Specifier: specifier, Line: line,
		Names: []model.ImportedName{{Kind: model.ImportedNameSideEffectOnly}}})
}

func (e *RustExtractor) extractModDeclaration(n *sitter.Node, content []byte, b *builder) {
	if childByType(n, "declaration_list") != nil {
		return // inline `mod foo { ... }` is a declaration, not an import edge
	}
	line := int(n.StartPosition().Row) + 1
	ident := childByType(n, "identifier")
	if ident == nil {
		return
	}
	b.addImport(model.Import{
		Specifier:        nodeText(ident, content),
		IsModDeclaration: true,
		Line:             line,
		Names:            []model.ImportedName{{Kind: model.ImportedNameSideEffectOnly}},
	})
}

func hasRustPub(n *sitter.Node, content []byte) bool {
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c != nil && c.Kind() == "visibility_modifier" {
			return true
		}
	}
	_ = content
	return false
}

// --- declarations ---

func (e *RustExtractor) extractDeclarations(n *sitter.Node, content []byte, b *builder, ctx *rustContext) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "function_item":
		e.declareFunction(n, content, b, ctx)
		return
	case "struct_item":
		e.declareStruct(n, content, b, ctx)
		return
	case "enum_item":
		e.declareEnum(n, content, b, ctx)
		return
	case "trait_item":
		e.declareTrait(n, content, b, ctx)
		return
	case "type_item":
		e.declareSimple(n, content, b, ctx, model.SymbolKindTypeAlias)
		return
	case "const_item":
		e.declareSimple(n, content, b, ctx, model.SymbolKindConstant)
		return
	case "static_item":
		e.declareSimple(n, content, b, ctx, model.SymbolKindVariable)
		return
	case "macro_definition":
		e.declareSimple(n, content, b, ctx, model.SymbolKindMacro)
		return
	case "impl_item":
		e.extractImpl(n, content, b, ctx)
		return
	case "mod_item":
		e.extractModBody(n, content, b, ctx)
		return
	}

	for i := uint(0); i < n.ChildCount(); i++ {
		e.extractDeclarations(n.Child(i), content, b, ctx)
	}
}

func rustVisibility(n *sitter.Node) model.Visibility {
	if hasRustPub(n, nil) {
		return model.VisibilityPublic
	}
	return model.VisibilityPrivate
}

func rustName(n *sitter.Node, content []byte) string {
	if ident := fieldChild(n, "name"); ident != nil {
		return nodeText(ident, content)
	}
	if ident := childByType(n, "identifier"); ident != nil {
		return nodeText(ident, content)
	}
	if ident := childByType(n, "type_identifier"); ident != nil {
		return nodeText(ident, content)
	}
	return ""
}

func (e *RustExtractor) declareFunction(n *sitter.Node, content []byte, b *builder, ctx *rustContext) {
	name := rustName(n, content)
	if name == "" {
		name = "anonymous"
	}
	qn := qualifiedName(ctx.push(name))
	params := fieldChild(n, "parameters")
	sig := nodeText(params, content)
	if ret := fieldChild(n, "return_type"); ret != nil {
		sig += " -> " + nodeText(ret, content)
	}
	id := b.addSymbol(name, qn, model.SymbolKindFunction, nodePosition(n), ctx.enclosing, rustVisibility(n), sig)
	e.extractCallsAndTypes(n, content, b, id)
}

func (e *RustExtractor) declareStruct(n *sitter.Node, content []byte, b *builder, ctx *rustContext) {
	name := rustName(n, content)
	if name == "" {
		return
	}
	qn := qualifiedName(ctx.push(name))
	b.addSymbol(name, qn, model.SymbolKindStruct, nodePosition(n), ctx.enclosing, rustVisibility(n), "")
}

func (e *RustExtractor) declareTrait(n *sitter.Node, content []byte, b *builder, ctx *rustContext) {
	name := rustName(n, content)
	if name == "" {
		return
	}
	qn := qualifiedName(ctx.push(name))
	id := b.addSymbol(name, qn, model.SymbolKindTrait, nodePosition(n), ctx.enclosing, rustVisibility(n), "")

	inner := &rustContext{qualifier: ctx.push(name), enclosing: &id}
	if body := childByType(n, "declaration_list"); body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			e.extractDeclarations(body.Child(i), content, b, inner)
		}
	}
}

func (e *RustExtractor) declareSimple(n *sitter.Node, content []byte, b *builder, ctx *rustContext, kind model.SymbolKind) {
	name := rustName(n, content)
	if name == "" {
		return
	}
	qn := qualifiedName(ctx.push(name))
	b.addSymbol(name, qn, kind, nodePosition(n), ctx.enclosing, rustVisibility(n), "")
}

func (e *RustExtractor) declareEnum(n *sitter.Node, content []byte, b *builder, ctx *rustContext) {
	name := rustName(n, content)
	if name == "" {
		return
	}
	enumQN := ctx.push(name)
	id := b.addSymbol(name, qualifiedName(enumQN), model.SymbolKindEnum, nodePosition(n), ctx.enclosing, rustVisibility(n), "")

	if body := childByType(n, "enum_variant_list"); body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			variant := body.Child(i)
			if variant == nil || variant.Kind() != "enum_variant" {
				continue
			}
			ident := childByType(variant, "identifier")
			if ident == nil {
				continue
			}
			vname := nodeText(ident, content)
			b.addSymbol(vname, qualifiedName(append(append([]string{}, enumQN...), vname)), model.SymbolKindEnumVariant, nodePosition(variant), &id, model.VisibilityPublic, "")
		}
	}
}

// extractImpl handles `impl Type { ... }` and `impl Trait for Type { ... }`;
// the latter is recorded as an inheritance reference from the type's own
// declared symbol, the closest Rust analogue to a class implementing an
// interface.
func (e *RustExtractor) extractImpl(n *sitter.Node, content []byte, b *builder, ctx *rustContext) {
	typeNode := fieldChild(n, "type")
	traitNode := fieldChild(n, "trait")
	typeName := ""
	if typeNode != nil {
		typeName = nodeText(typeNode, content)
	}

	if traitNode != nil && typeName != "" {
		if id, ok := b.resolveIntraFile(typeName); ok {
			b.addReference(id, nodeText(traitNode, content), model.ReferenceKindInheritance, int(n.StartPosition().Row)+1)
		}
	}

	var enclosing *model.SymbolID
	var qual []string
	if typeName != "" {
		if id, ok := b.resolveIntraFile(typeName); ok {
			enclosing = &id
			qual = []string{typeName}
		}
	}
	inner := &rustContext{qualifier: qual, enclosing: enclosing}
	if body := childByType(n, "declaration_list"); body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			e.extractDeclarations(body.Child(i), content, b, inner)
		}
	}
}

func (e *RustExtractor) extractModBody(n *sitter.Node, content []byte, b *builder, ctx *rustContext) {
	name := rustName(n, content)
	body := childByType(n, "declaration_list")
	if body == nil {
		return // external `mod foo;` handled as an import in extractUses
	}
	qn := ctx.push(name)
	id := b.addSymbol(name, qualifiedName(qn), model.SymbolKindModule, nodePosition(n), ctx.enclosing, rustVisibility(n), "")
	inner := &rustContext{qualifier: qn, enclosing: &id}
	for i := uint(0); i < body.ChildCount(); i++ {
		e.extractDeclarations(body.Child(i), content, b, inner)
	}
}

func (e *RustExtractor) extractCallsAndTypes(n *sitter.Node, content []byte, b *builder, owner model.SymbolID) {
	walk(n, func(c *sitter.Node) bool {
		switch c.Kind() {
		case "call_expression":
			if fn := fieldChild(c, "function"); fn != nil {
				b.addReference(owner, rustCallTargetName(fn, content), model.ReferenceKindCall, int(c.StartPosition().Row)+1)
			}
		case "method_call_expression":
			if name := fieldChild(c, "name"); name != nil {
				b.addReference(owner, nodeText(name, content), model.ReferenceKindCall, int(c.StartPosition().Row)+1)
			}
		case "struct_expression":
			if t := childByType(c, "type_identifier"); t != nil {
				b.addReference(owner, nodeText(t, content), model.ReferenceKindTypeUsage, int(c.StartPosition().Row)+1)
			}
		case "type_identifier":
			b.addReference(owner, nodeText(c, content), model.ReferenceKindTypeUsage, int(c.StartPosition().Row)+1)
		}
		return true
	})
}

func rustCallTargetName(fn *sitter.Node, content []byte) string {
	switch fn.Kind() {
	case "field_expression":
		if field := fieldChild(fn, "field"); field != nil {
			return nodeText(field, content)
		}
	case "scoped_identifier":
		if name := fieldChild(fn, "name"); name != nil {
			return nodeText(name, content)
		}
	}
	return nodeText(fn, content)
}
