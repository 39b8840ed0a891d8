package extract

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codestatik/statik/internal/model"
)

// TSJSExtractor implements the TypeScript/JavaScript specifics of §4.1.
type TSJSExtractor struct{}

func NewTSJSExtractor() *TSJSExtractor { return &TSJSExtractor{} }

func (e *TSJSExtractor) Language() model.Language { return model.LanguageTSJS }

func (e *TSJSExtractor) Extract(relPath string, content []byte, tree *sitter.Tree) model.ParseResult {
	b := newBuilder(relPath)
	if tree == nil {
		return b.build()
	}
	root := tree.RootNode()
	if root == nil {
		return b.build()
	}

	e.extractSuppressions(root, content, b)
	e.extractImports(root, content, b)
	// declarations must run before exports so exported declarations resolve
	// to a concrete SymbolID rather than a bare name.
	ctx := &tsjsContext{qualifier: nil}
	e.extractDeclarations(root, content, b, ctx)
	e.extractExports(root, content, b)
	e.extractReferences(root, content, b)

	return b.build()
}

// tsjsContext tracks the enclosing qualified-name chain (§4.1: "the dotted
// chain from the file-level root through all enclosing symbols").
type tsjsContext struct {
	qualifier []string
	enclosing *model.SymbolID
}

func (c *tsjsContext) push(name string) []string {
	return append(append([]string{}, c.qualifier...), name)
}

func qualifiedName(parts []string) string {
	return strings.Join(parts, ".")
}

// --- suppressions ---

func (e *TSJSExtractor) extractSuppressions(root *sitter.Node, content []byte, b *builder) {
	walk(root, func(n *sitter.Node) bool {
		if n.Kind() != "comment" {
			return true
		}
		text := nodeText(n, content)
		rule, ok := parseSuppressionComment(text)
		if !ok {
			return true
		}
		b.addSuppression(int(n.StartPosition().Row)+2, rule) // following line, 1-indexed
		return true
	})
}

// parseSuppressionComment recognizes `statik-ignore[rule-id]` or bare
// `statik-ignore` inside a line or block comment (§4.1).
func parseSuppressionComment(text string) (string, bool) {
	idx := strings.Index(text, "statik-ignore")
	if idx < 0 {
		return "", false
	}
	rest := text[idx+len("statik-ignore"):]
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end > 0 {
			return strings.TrimSpace(rest[1:end]), true
		}
	}
	return "", true
}

// --- imports ---

func (e *TSJSExtractor) extractImports(root *sitter.Node, content []byte, b *builder) {
	walk(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "import_statement":
			e.extractImportStatement(n, content, b)
		case "call_expression":
			e.extractDynamicOrRequireImport(n, content, b)
		}
		return true
	})
}

func stringLiteralValue(n *sitter.Node, content []byte) (string, bool) {
	if n == nil {
		return "", false
	}
	text := nodeText(n, content)
	if len(text) < 2 {
		return "", false
	}
	return text[1 : len(text)-1], true
}

func (e *TSJSExtractor) extractImportStatement(n *sitter.Node, content []byte, b *builder) {
	line := int(n.StartPosition().Row) + 1
	sourceNode := childByType(n, "string")
	specifier, _ := stringLiteralValue(sourceNode, content)

	isTypeOnly := false
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c != nil && c.Kind() == "import" {
			if i+1 < n.ChildCount() {
				if next := n.Child(i + 1); next != nil && nodeText(next, content) == "type" {
					isTypeOnly = true
				}
			}
		}
	}

	clause := childByType(n, "import_clause")
	if clause == nil {
		// side-effect-only import: `import "side"`
		b.addImport(model.Import{Specifier: specifier, IsTypeOnly: isTypeOnly, Line: line,
			Names: []model.ImportedName{{Kind: model.ImportedNameSideEffectOnly}}})
		return
	}

	var names []model.ImportedName

	if def := childByType(clause, "identifier"); def != nil {
		names = append(names, model.ImportedName{Kind: model.ImportedNameDefault, Name: nodeText(def, content)})
	}

	if named := childByType(clause, "named_imports"); named != nil {
		for i := uint(0); i < named.ChildCount(); i++ {
			spec := named.Child(i)
			if spec == nil || spec.Kind() != "import_specifier" {
				continue
			}
			idents := childrenByType(spec, "identifier")
			if len(idents) == 0 {
				continue
			}
			name := nodeText(idents[0], content)
			names = append(names, model.ImportedName{Kind: model.ImportedNameNamed, Name: name})
		}
	}

	if ns := childByType(clause, "namespace_import"); ns != nil {
		if ident := childByType(ns, "identifier"); ident != nil {
			names = append(names, model.ImportedName{Kind: model.ImportedNameNamespace, Name: nodeText(ident, content)})
		}
	}

	b.addImport(model.Import{Specifier: specifier, Names: names, IsTypeOnly: isTypeOnly, Line: line})
}

// extractDynamicOrRequireImport handles `import("literal")`, `import("expr")`
// (unresolved, DynamicPath) and CommonJS `require(...)`.
func (e *TSJSExtractor) extractDynamicOrRequireImport(n *sitter.Node, content []byte, b *builder) {
	fn := fieldChild(n, "function")
	if fn == nil {
		return
	}
	name := nodeText(fn, content)
	if name != "import" && name != "require" {
		return
	}
	args := fieldChild(n, "arguments")
	if args == nil {
		return
	}
	var literalArg *sitter.Node
	for i := uint(0); i < args.ChildCount(); i++ {
		if c := args.Child(i); c != nil && c.Kind() == "string" {
			literalArg = c
			break
		}
	}
	line := int(n.StartPosition().Row) + 1
	if literalArg != nil {
		specifier, _ := stringLiteralValue(literalArg, content)
		b.addImport(model.Import{Specifier: specifier, IsDynamic: name == "import", Line: line,
			Names: []model.ImportedName{{Kind: model.ImportedNameSideEffectOnly}}})
		return
	}
	if name == "import" {
		// import("expr") with a non-literal argument: unresolved DynamicPath (§4.1).
		b.addImport(model.Import{Specifier: "", IsDynamic: true, Line: line})
	}
}

// --- exports ---

func (e *TSJSExtractor) extractExports(root *sitter.Node, content []byte, b *builder) {
	walk(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "export_statement":
			e.extractExportStatement(n, content, b)
		}
		return true
	})
}

func (e *TSJSExtractor) extractExportStatement(n *sitter.Node, content []byte, b *builder) {
	line := int(n.StartPosition().Row) + 1
	isTypeOnly := false
	isWildcard := false
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		if nodeText(c, content) == "type" {
			isTypeOnly = true
		}
		if c.Kind() == "*" {
			isWildcard = true
		}
	}

	sourceNode := childByType(n, "string")
	reexportSource, hasSource := stringLiteralValue(sourceNode, content)

	if isWildcard {
		b.addExport(model.Export{Name: model.WildcardExportName, IsReexport: true, ReexportSource: reexportSource, IsTypeOnly: isTypeOnly, Line: line})
		// A re-export needs an Import record too, same as the teacher's Rust
		// extractor pairs `pub use x::*` with both addImport and addExport —
		// otherwise the graph builder (which only ever walks Import records
		// into edges) never produces the edge the re-export chain travels on.
		b.addImport(model.Import{Specifier: reexportSource, IsTypeOnly: isTypeOnly, Line: line,
			Names: []model.ImportedName{{Kind: model.ImportedNameWildcard}}})
		return
	}

	if clause := childByType(n, "export_clause"); clause != nil {
		var reexportNames []model.ImportedName
		for i := uint(0); i < clause.ChildCount(); i++ {
			spec := clause.Child(i)
			if spec == nil || spec.Kind() != "export_specifier" {
				continue
			}
			idents := childrenByType(spec, "identifier")
			if len(idents) == 0 {
				continue
			}
			localName := nodeText(idents[0], content)
			exportedName := localName
			if len(idents) > 1 {
				exportedName = nodeText(idents[len(idents)-1], content)
			}
			exp := model.Export{Name: exportedName, IsTypeOnly: isTypeOnly, Line: line}
			if hasSource {
				exp.IsReexport = true
				exp.ReexportSource = reexportSource
				reexportNames = append(reexportNames, model.ImportedName{Kind: model.ImportedNameNamed, Name: localName})
			} else if id, ok := b.resolveIntraFile(localName); ok {
				exp.Symbol = &id
			}
			b.addExport(exp)
		}
		if hasSource && len(reexportNames) > 0 {
			b.addImport(model.Import{Specifier: reexportSource, Names: reexportNames, IsTypeOnly: isTypeOnly, Line: line})
		}
		return
	}

	// export default / export declaration
	var declName string
	isDefault := false
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "default":
			isDefault = true
		case "function_declaration", "class_declaration", "interface_declaration",
			"type_alias_declaration", "enum_declaration":
			if ident := childByType(c, "identifier"); ident != nil {
				declName = nodeText(ident, content)
			} else if ident := childByType(c, "type_identifier"); ident != nil {
				declName = nodeText(ident, content)
			}
		case "lexical_declaration", "variable_declaration":
			if decl := childByType(c, "variable_declarator"); decl != nil {
				if ident := fieldChild(decl, "name"); ident != nil {
					declName = nodeText(ident, content)
				}
			}
		case "identifier":
			declName = nodeText(c, content)
		}
	}

	name := declName
	if isDefault {
		name = "default"
	}
	if name == "" {
		return
	}
	exp := model.Export{Name: name, IsTypeOnly: isTypeOnly, Line: line}
	if declName != "" {
		if id, ok := b.resolveIntraFile(declName); ok {
			exp.Symbol = &id
		}
	}
	b.addExport(exp)
}

// --- declarations (symbols) ---

func (e *TSJSExtractor) extractDeclarations(n *sitter.Node, content []byte, b *builder, ctx *tsjsContext) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "function_declaration", "function_expression", "generator_function_declaration":
		e.declareFunction(n, content, b, ctx)
	case "class_declaration":
		e.declareClass(n, content, b, ctx)
	case "interface_declaration":
		e.declareSimple(n, content, b, ctx, model.SymbolKindInterface, "type_identifier")
	case "type_alias_declaration":
		e.declareSimple(n, content, b, ctx, model.SymbolKindTypeAlias, "type_identifier")
	case "enum_declaration":
		e.declareEnum(n, content, b, ctx)
	case "variable_declarator":
		e.declareVariableOrArrow(n, content, b, ctx)
	case "method_definition":
		e.declareMethod(n, content, b, ctx)
	}

	for i := uint(0); i < n.ChildCount(); i++ {
		e.extractDeclarations(n.Child(i), content, b, ctx)
	}
}

func isExportedNode(n *sitter.Node) bool {
	parent := n.Parent()
	return parent != nil && parent.Kind() == "export_statement"
}

func visibilityOf(n *sitter.Node) model.Visibility {
	if isExportedNode(n) {
		return model.VisibilityPublic
	}
	return model.VisibilityPrivate
}

func funcSignature(n *sitter.Node, content []byte) string {
	params := fieldChild(n, "parameters")
	ret := fieldChild(n, "return_type")
	sig := nodeText(params, content)
	if ret != nil {
		sig += nodeText(ret, content)
	}
	return sig
}

func (e *TSJSExtractor) declareFunction(n *sitter.Node, content []byte, b *builder, ctx *tsjsContext) {
	nameNode := fieldChild(n, "name")
	name := "anonymous"
	if nameNode != nil {
		name = nodeText(nameNode, content)
	}
	qn := qualifiedName(ctx.push(name))
	id := b.addSymbol(name, qn, model.SymbolKindFunction, nodePosition(n), ctx.enclosing, visibilityOf(n), funcSignature(n, content))
	e.extractHeritageAndCalls(n, content, b, id)
}

func (e *TSJSExtractor) declareMethod(n *sitter.Node, content []byte, b *builder, ctx *tsjsContext) {
	nameNode := fieldChild(n, "name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, content)
	qn := qualifiedName(ctx.push(name))
	id := b.addSymbol(name, qn, model.SymbolKindMethod, nodePosition(n), ctx.enclosing, visibilityOf(n), funcSignature(n, content))
	e.extractHeritageAndCalls(n, content, b, id)
}

func (e *TSJSExtractor) declareClass(n *sitter.Node, content []byte, b *builder, ctx *tsjsContext) {
	nameNode := fieldChild(n, "name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, content)
	qn := qualifiedName(ctx.push(name))
	id := b.addSymbol(name, qn, model.SymbolKindClass, nodePosition(n), ctx.enclosing, visibilityOf(n), "")
	e.extractHeritageAndCalls(n, content, b, id)

	inner := &tsjsContext{qualifier: ctx.push(name), enclosing: &id}
	if body := fieldChild(n, "body"); body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			e.extractDeclarations(body.Child(i), content, b, inner)
		}
	}
}

func (e *TSJSExtractor) declareSimple(n *sitter.Node, content []byte, b *builder, ctx *tsjsContext, kind model.SymbolKind, nameKind string) {
	nameNode := childByType(n, nameKind)
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, content)
	qn := qualifiedName(ctx.push(name))
	b.addSymbol(name, qn, kind, nodePosition(n), ctx.enclosing, visibilityOf(n), "")
}

func (e *TSJSExtractor) declareEnum(n *sitter.Node, content []byte, b *builder, ctx *tsjsContext) {
	nameNode := childByType(n, "identifier")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, content)
	enumQN := ctx.push(name)
	id := b.addSymbol(name, qualifiedName(enumQN), model.SymbolKindEnum, nodePosition(n), ctx.enclosing, visibilityOf(n), "")

	if body := childByType(n, "enum_body"); body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			member := body.Child(i)
			if member == nil || member.Kind() != "property_identifier" {
				continue
			}
			mname := nodeText(member, content)
			b.addSymbol(mname, qualifiedName(append(append([]string{}, enumQN...), mname)), model.SymbolKindEnumVariant, nodePosition(member), &id, model.VisibilityPublic, "")
		}
	}
}

func (e *TSJSExtractor) declareVariableOrArrow(n *sitter.Node, content []byte, b *builder, ctx *tsjsContext) {
	nameNode := fieldChild(n, "name")
	valueNode := fieldChild(n, "value")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, content)

	// §4.1: "Arrow functions assigned to variables count as functions."
	if valueNode != nil && (valueNode.Kind() == "arrow_function" || valueNode.Kind() == "function_expression" || valueNode.Kind() == "generator_function") {
		qn := qualifiedName(ctx.push(name))
		vis := model.VisibilityPrivate
		if decl := n.Parent(); decl != nil && isExportedNode(decl) {
			vis = model.VisibilityPublic
		}
		id := b.addSymbol(name, qn, model.SymbolKindFunction, nodePosition(n), ctx.enclosing, vis, funcSignature(valueNode, content))
		e.extractHeritageAndCalls(valueNode, content, b, id)
		return
	}

	qn := qualifiedName(ctx.push(name))
	vis := model.VisibilityPrivate
	if decl := n.Parent(); decl != nil && isExportedNode(decl) {
		vis = model.VisibilityPublic
	}
	b.addSymbol(name, qn, model.SymbolKindVariable, nodePosition(n), ctx.enclosing, vis, "")
}

// extractHeritageAndCalls walks a declaration's subtree for heritage clauses
// (extends/implements -> inheritance references), call expressions and type
// mentions, attributing them to source symbol `owner`.
func (e *TSJSExtractor) extractHeritageAndCalls(n *sitter.Node, content []byte, b *builder, owner model.SymbolID) {
	if heritage := childByType(n, "class_heritage"); heritage != nil {
		walk(heritage, func(h *sitter.Node) bool {
			if h.Kind() == "identifier" || h.Kind() == "type_identifier" {
				b.addReference(owner, nodeText(h, content), model.ReferenceKindInheritance, int(h.StartPosition().Row)+1)
			}
			return true
		})
	}

	walk(n, func(c *sitter.Node) bool {
		switch c.Kind() {
		case "call_expression":
			if fn := fieldChild(c, "function"); fn != nil {
				b.addReference(owner, callTargetName(fn, content), model.ReferenceKindCall, int(c.StartPosition().Row)+1)
			}
		case "type_annotation", "type_identifier":
			if c.Kind() == "type_identifier" {
				b.addReference(owner, nodeText(c, content), model.ReferenceKindTypeUsage, int(c.StartPosition().Row)+1)
			}
		case "new_expression":
			if ctor := fieldChild(c, "constructor"); ctor != nil {
				b.addReference(owner, nodeText(ctor, content), model.ReferenceKindTypeUsage, int(c.StartPosition().Row)+1)
			}
		}
		return true
	})
}

func callTargetName(fn *sitter.Node, content []byte) string {
	if fn.Kind() == "member_expression" {
		if prop := fieldChild(fn, "property"); prop != nil {
			return nodeText(prop, content)
		}
	}
	return nodeText(fn, content)
}

// --- dangling references outside any declared symbol (module-level calls) ---

func (e *TSJSExtractor) extractReferences(root *sitter.Node, content []byte, b *builder) {
	// Top-level call expressions not already attributed to an enclosing
	// declaration are attributed to a zero (module-scope) source symbol.
	walk(root, func(n *sitter.Node) bool {
		if n.Kind() != "call_expression" {
			return true
		}
		if enclosedByDeclaration(n) {
			return true
		}
		if fn := fieldChild(n, "function"); fn != nil {
			b.addReference(model.SymbolID{}, callTargetName(fn, content), model.ReferenceKindCall, int(n.StartPosition().Row)+1)
		}
		return true
	})
}

func enclosedByDeclaration(n *sitter.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Kind() {
		case "function_declaration", "function_expression", "arrow_function",
			"method_definition", "generator_function_declaration", "class_declaration":
			return true
		}
	}
	return false
}
