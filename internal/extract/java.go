package extract

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codestatik/statik/internal/model"
)

// JavaExtractor implements the Java specifics of §4.1, grounded on the
// namespace/source-root shaped resolution the teacher uses for C#: a
// package declaration plays the role of C#'s namespace. Each type's
// visibility is recorded on its Symbol; the Java extractor emits no Export
// records, so no Java type is listed as an export.
type JavaExtractor struct{}

func NewJavaExtractor() *JavaExtractor { return &JavaExtractor{} }

func (e *JavaExtractor) Language() model.Language { return model.LanguageJava }

func (e *JavaExtractor) Extract(relPath string, content []byte, tree *sitter.Tree) model.ParseResult {
	b := newBuilder(relPath)
	if tree == nil {
		return b.build()
	}
	root := tree.RootNode()
	if root == nil {
		return b.build()
	}

	e.extractSuppressions(root, content, b)
	pkg := e.extractPackage(root, content)
	e.extractImports(root, content, b)

	ctx := &javaContext{qualifier: nil, pkg: pkg}
	for i := uint(0); i < root.ChildCount(); i++ {
		e.extractDeclarations(root.Child(i), content, b, ctx)
	}

	e.extractTypeReferences(root, content, b)

	return b.build()
}

type javaContext struct {
	qualifier []string
	enclosing *model.SymbolID
	pkg       string
}

func (c *javaContext) push(name string) []string {
	return append(append([]string{}, c.qualifier...), name)
}

func (e *JavaExtractor) extractSuppressions(root *sitter.Node, content []byte, b *builder) {
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

func (e *JavaExtractor) extractPackage(root *sitter.Node, content []byte) string {
	decl := childByType(root, "package_declaration")
	if decl == nil {
		return ""
	}
	if scoped := childByType(decl, "scoped_identifier"); scoped != nil {
		return nodeText(scoped, content)
	}
	if ident := childByType(decl, "identifier"); ident != nil {
		return nodeText(ident, content)
	}
	return ""
}

// --- imports ---

func (e *JavaExtractor) extractImports(root *sitter.Node, content []byte, b *builder) {
	walk(root, func(n *sitter.Node) bool {
		if n.Kind() != "import_declaration" {
			return true
		}
		line := int(n.StartPosition().Row) + 1
		isStatic := false
		isWildcard := false
		var pathParts []string

		for i := uint(0); i < n.ChildCount(); i++ {
			c := n.Child(i)
			if c == nil {
				continue
			}
			switch c.Kind() {
			case "static":
				isStatic = true
			case "asterisk":
				isWildcard = true
			case "scoped_identifier", "identifier":
				pathParts = append(pathParts, nodeText(c, content))
			}
		}
		specifier := strings.Join(pathParts, "")
		nameKind := model.ImportedNameNamed
		name := specifier
		if idx := strings.LastIndex(specifier, "."); idx >= 0 {
			name = specifier[idx+1:]
		}
		if isWildcard {
			nameKind = model.ImportedNameWildcard
			name = model.WildcardExportName
		}
		b.addImport(model.Import{
			Specifier:  specifier,
			IsTypeOnly: isStatic, // IsTypeOnly is set for `import static` declarations
			Line:       line,
			Names:      []model.ImportedName{{Kind: nameKind, Name: name}},
		})
		return true
	})
}

// --- declarations ---

func (e *JavaExtractor) extractDeclarations(n *sitter.Node, content []byte, b *builder, ctx *javaContext) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "class_declaration":
		e.declareClass(n, content, b, ctx, model.SymbolKindClass)
		return
	case "interface_declaration":
		e.declareClass(n, content, b, ctx, model.SymbolKindInterface)
		return
	case "record_declaration":
		e.declareClass(n, content, b, ctx, model.SymbolKindRecord)
		return
	case "annotation_type_declaration":
		e.declareClass(n, content, b, ctx, model.SymbolKindAnnotation)
		return
	case "enum_declaration":
		e.declareEnum(n, content, b, ctx)
		return
	}

	for i := uint(0); i < n.ChildCount(); i++ {
		e.extractDeclarations(n.Child(i), content, b, ctx)
	}
}

func javaModifiers(n *sitter.Node, content []byte) []string {
	mods := childByType(n, "modifiers")
	if mods == nil {
		return nil
	}
	var out []string
	for i := uint(0); i < mods.ChildCount(); i++ {
		c := mods.Child(i)
		if c == nil {
			continue
		}
		out = append(out, nodeText(c, content))
	}
	return out
}

func hasModifier(mods []string, name string) bool {
	for _, m := range mods {
		if m == name {
			return true
		}
	}
	return false
}

// javaVisibility maps Java modifiers to §3 Visibility: explicit
// public/protected/private as named, default (package) access otherwise.
func javaVisibility(mods []string) model.Visibility {
	switch {
	case hasModifier(mods, "public"):
		return model.VisibilityPublic
	case hasModifier(mods, "protected"):
		return model.VisibilityProtected
	case hasModifier(mods, "private"):
		return model.VisibilityPrivate
	default:
		return model.VisibilityPackagePrivate
	}
}

func (e *JavaExtractor) declareClass(n *sitter.Node, content []byte, b *builder, ctx *javaContext, kind model.SymbolKind) {
	nameNode := childByType(n, "identifier")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, content)
	mods := javaModifiers(n, content)
	vis := javaVisibility(mods)
	// visibility comes from the modifiers alone: an unmarked type stays
	// package-private, and nothing is inferred from the file name.
	qn := qualifiedName(ctx.push(name))
	id := b.addSymbol(name, qn, kind, nodePosition(n), ctx.enclosing, vis, "")

	if hasModifier(mods, "static") && hasModifier(mods, "final") {
		// marker kept for completeness; static final nested types are not
		// re-tagged as constants (that applies to fields only, see below).
	}

	if heritage := childByType(n, "superclass"); heritage != nil {
		walk(heritage, func(h *sitter.Node) bool {
			if h.Kind() == "type_identifier" {
				b.addReference(id, nodeText(h, content), model.ReferenceKindInheritance, int(h.StartPosition().Row)+1)
			}
			return true
		})
	}
	if impl := childByType(n, "super_interfaces"); impl != nil {
		walk(impl, func(h *sitter.Node) bool {
			if h.Kind() == "type_identifier" {
				b.addReference(id, nodeText(h, content), model.ReferenceKindInheritance, int(h.StartPosition().Row)+1)
			}
			return true
		})
	}
	if annotated := annotationsOf(n, content); len(annotated) > 0 {
		for _, a := range annotated {
			b.addReference(id, a.name, model.ReferenceKindTypeUsage, a.line)
		}
	}

	inner := &javaContext{qualifier: ctx.push(name), enclosing: &id, pkg: ctx.pkg}
	body := childByType(n, "class_body")
	if body == nil {
		body = childByType(n, "interface_body")
	}
	if body == nil {
		body = childByType(n, "annotation_type_body")
	}
	if body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			e.extractMember(body.Child(i), content, b, inner)
		}
	}
}

func (e *JavaExtractor) declareEnum(n *sitter.Node, content []byte, b *builder, ctx *javaContext) {
	nameNode := childByType(n, "identifier")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, content)
	mods := javaModifiers(n, content)
	vis := javaVisibility(mods)
	enumQN := ctx.push(name)
	id := b.addSymbol(name, qualifiedName(enumQN), model.SymbolKindEnum, nodePosition(n), ctx.enclosing, vis, "")

	if body := childByType(n, "enum_body"); body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			c := body.Child(i)
			if c == nil || c.Kind() != "enum_constant" {
				continue
			}
			ident := childByType(c, "identifier")
			if ident == nil {
				continue
			}
			mname := nodeText(ident, content)
			b.addSymbol(mname, qualifiedName(append(append([]string{}, enumQN...), mname)), model.SymbolKindEnumVariant, nodePosition(c), &id, model.VisibilityPublic, "")
		}
	}
}

func (e *JavaExtractor) extractMember(n *sitter.Node, content []byte, b *builder, ctx *javaContext) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "method_declaration":
		e.declareMethod(n, content, b, ctx)
	case "constructor_declaration":
		e.declareConstructor(n, content, b, ctx)
	case "field_declaration":
		e.declareField(n, content, b, ctx)
	case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration", "annotation_type_declaration":
		e.extractDeclarations(n, content, b, ctx)
	}
}

func javaSignature(n *sitter.Node, content []byte) string {
	params := childByType(n, "formal_parameters")
	ret := fieldChild(n, "type")
	sig := nodeText(params, content)
	if ret != nil {
		sig += " " + nodeText(ret, content)
	}
	return sig
}

func (e *JavaExtractor) declareMethod(n *sitter.Node, content []byte, b *builder, ctx *javaContext) {
	nameNode := childByType(n, "identifier")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, content)
	mods := javaModifiers(n, content)
	vis := javaVisibility(mods)
	qn := qualifiedName(ctx.push(name))
	id := b.addSymbol(name, qn, model.SymbolKindMethod, nodePosition(n), ctx.enclosing, vis, javaSignature(n, content))
	e.extractCallsAndTypes(n, content, b, id)
}

func (e *JavaExtractor) declareConstructor(n *sitter.Node, content []byte, b *builder, ctx *javaContext) {
	nameNode := childByType(n, "identifier")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, content)
	mods := javaModifiers(n, content)
	vis := javaVisibility(mods)
	qn := qualifiedName(ctx.push(name))
	id := b.addSymbol(name, qn, model.SymbolKindMethod, nodePosition(n), ctx.enclosing, vis, javaSignature(n, content))
	e.extractCallsAndTypes(n, content, b, id)
}

func (e *JavaExtractor) declareField(n *sitter.Node, content []byte, b *builder, ctx *javaContext) {
	mods := javaModifiers(n, content)
	vis := javaVisibility(mods)
	kind := model.SymbolKindVariable
	if hasModifier(mods, "static") && hasModifier(mods, "final") {
		kind = model.SymbolKindConstant
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil || c.Kind() != "variable_declarator" {
			continue
		}
		nameNode := fieldChild(c, "name")
		if nameNode == nil {
			continue
		}
		name := nodeText(nameNode, content)
		qn := qualifiedName(ctx.push(name))
		b.addSymbol(name, qn, kind, nodePosition(c), ctx.enclosing, vis, "")
	}
}

type annotationRef struct {
	name string
	line int
}

func annotationsOf(n *sitter.Node, content []byte) []annotationRef {
	mods := childByType(n, "modifiers")
	if mods == nil {
		return nil
	}
	var out []annotationRef
	for i := uint(0); i < mods.ChildCount(); i++ {
		c := mods.Child(i)
		if c == nil {
			continue
		}
		if c.Kind() != "annotation" && c.Kind() != "marker_annotation" {
			continue
		}
		if ident := childByType(c, "identifier"); ident != nil {
			out = append(out, annotationRef{name: nodeText(ident, content), line: int(c.StartPosition().Row) + 1})
		}
	}
	return out
}

func (e *JavaExtractor) extractCallsAndTypes(n *sitter.Node, content []byte, b *builder, owner model.SymbolID) {
	walk(n, func(c *sitter.Node) bool {
		switch c.Kind() {
		case "method_invocation":
			if name := fieldChild(c, "name"); name != nil {
				b.addReference(owner, nodeText(name, content), model.ReferenceKindCall, int(c.StartPosition().Row)+1)
			}
		case "object_creation_expression":
			if t := fieldChild(c, "type"); t != nil {
				b.addReference(owner, nodeText(t, content), model.ReferenceKindTypeUsage, int(c.StartPosition().Row)+1)
			}
		case "type_identifier":
			b.addReference(owner, nodeText(c, content), model.ReferenceKindTypeUsage, int(c.StartPosition().Row)+1)
		}
		return true
	})
}

// extractTypeReferences records a further type-usage reference, with no
// source symbol, for each type named in a `throws` clause. Type mentions
// inside method and constructor declarations are already recorded by
// extractCallsAndTypes via its "type_identifier" case; field declaration
// types are recorded by neither pass.
func (e *JavaExtractor) extractTypeReferences(root *sitter.Node, content []byte, b *builder) {
	walk(root, func(n *sitter.Node) bool {
		if n.Kind() != "throws" {
			return true
		}
		walk(n, func(t *sitter.Node) bool {
			if t.Kind() == "type_identifier" {
				b.addReference(model.SymbolID{}, nodeText(t, content), model.ReferenceKindTypeUsage, int(t.StartPosition().Row)+1)
			}
			return true
		})
		return true
	})
}
