// Package langsupport sets up one tree-sitter grammar per supported
// language and hands out a fresh, thread-local *sitter.Parser per call
// (§5: parser state is not shareable, one parser instance per worker).
package langsupport

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/codestatik/statik/internal/model"
)

// languages caches the compiled *sitter.Language for each grammar; these are
// process-local read-only after construction (§5).
var languages = struct {
	tsx        *sitter.Language
	typescript *sitter.Language
	javascript *sitter.Language
	java       *sitter.Language
	rust       *sitter.Language
}{
	tsx:        sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
	typescript: sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
	javascript: sitter.NewLanguage(tree_sitter_javascript.Language()),
	java:       sitter.NewLanguage(tree_sitter_java.Language()),
	rust:       sitter.NewLanguage(tree_sitter_rust.Language()),
}

// NewParser returns a fresh parser configured for the language appropriate
// to ext (the file extension, including the leading dot). Callers must not
// share the returned parser across goroutines.
func NewParser(lang model.Language, ext string) (*sitter.Parser, error) {
	p := sitter.NewParser()
	language := languageFor(lang, ext)
	if language == nil {
		return nil, errUnsupportedLanguage(lang)
	}
	if err := p.SetLanguage(language); err != nil {
		return nil, err
	}
	return p, nil
}

func languageFor(lang model.Language, ext string) *sitter.Language {
	switch lang {
	case model.LanguageTSJS:
		if ext == ".tsx" {
			return languages.tsx
		}
		if ext == ".ts" || ext == ".mts" || ext == ".cts" {
			return languages.typescript
		}
		return languages.javascript
	case model.LanguageJava:
		return languages.java
	case model.LanguageRust:
		return languages.rust
	default:
		return nil
	}
}

type errUnsupportedLanguage model.Language

func (e errUnsupportedLanguage) Error() string {
	return "langsupport: unsupported language: " + model.Language(e).String()
}

// Parse is a convenience wrapper around NewParser + Parser.Parse for callers
// that don't need to reuse the parser across multiple files.
func Parse(lang model.Language, ext string, source []byte) (*sitter.Tree, error) {
	p, err := NewParser(lang, ext)
	if err != nil {
		return nil, err
	}
	defer p.Close()
	tree := p.Parse(source, nil)
	return tree, nil
}
