package model

// Fingerprint is the content fingerprint used to detect whether a file
// changed since the last index run (§3). The indexer always reads the file
// and computes the hash; a file counts as unchanged only when mtime, size
// and hash all match the stored record.
type Fingerprint struct {
	ModTime int64  `json:"mtime"`
	Size    int64  `json:"size"`
	Hash    uint64 `json:"hash"`
}

// Equal reports whether two fingerprints describe the same content.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.ModTime == other.ModTime && f.Size == other.Size && f.Hash == other.Hash
}

// File is the persisted file record (§3).
type File struct {
	ID          FileID      `json:"id"`
	Path        string      `json:"path"` // always project-relative
	Language    Language    `json:"language"`
	Fingerprint Fingerprint `json:"fingerprint"`
	SourceSet   string      `json:"source_set"`
	Unparsed    bool        `json:"unparsed,omitempty"`
}

// Position is a 1-indexed line/column location, with a byte offset kept for
// tooling that wants it.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

// Symbol is a single declaration extracted from a file (§3).
type Symbol struct {
	ID            SymbolID    `json:"id"`
	FileID        FileID      `json:"file_id"`
	Name          string      `json:"name"`
	QualifiedName string      `json:"qualified_name"`
	Kind          SymbolKind  `json:"kind"`
	Position      Position    `json:"position"`
	Parent        *SymbolID   `json:"parent,omitempty"`
	Visibility    Visibility  `json:"visibility"`
	Signature     string      `json:"signature,omitempty"`
}

// ImportedName is the sum type for a single name brought in by an import
// (§3). Kind discriminates which field is meaningful.
type ImportedName struct {
	Kind ImportedNameKind `json:"kind"`
	Name string           `json:"name,omitempty"` // Named / Namespace local name
}

// Import is a single import statement/declaration (§3).
type Import struct {
	FileID          FileID         `json:"file_id"`
	Specifier       string         `json:"specifier"` // as written in source
	Names           []ImportedName `json:"names"`
	IsTypeOnly      bool           `json:"is_type_only"`
	IsDynamic       bool           `json:"is_dynamic"`
	IsModDeclaration bool          `json:"is_mod_declaration"` // Rust `mod foo;`
	Line            int            `json:"line"`
}

// Export is a single export/re-export declaration (§3).
type Export struct {
	FileID          FileID    `json:"file_id"`
	Symbol          *SymbolID `json:"symbol,omitempty"`
	Name            string    `json:"name"` // WildcardExportName for `export *`
	IsReexport      bool      `json:"is_reexport"`
	ReexportSource  string    `json:"reexport_source,omitempty"`
	IsTypeOnly      bool      `json:"is_type_only"`
	Line            int       `json:"line"`
}

// ReferenceTarget is either a resolved SymbolID or an unresolved name.
type ReferenceTarget struct {
	Symbol SymbolID `json:"symbol,omitempty"`
	Name   string   `json:"name,omitempty"`
}

// Resolved reports whether the target carries a concrete SymbolID.
func (t ReferenceTarget) Resolved() bool {
	return !t.Symbol.IsZero()
}

// Reference is a use of a symbol from some source location (§3).
type Reference struct {
	FileID FileID          `json:"file_id"`
	Source SymbolID        `json:"source,omitempty"` // zero if intra-file source couldn't be resolved either
	Target ReferenceTarget `json:"target"`
	Kind   ReferenceKind   `json:"kind"`
	Line   int             `json:"line"`
}

// Suppression is an inline `statik-ignore[rule-id]` comment attached to a
// following source line (§4.1, §4.5).
type Suppression struct {
	FileID FileID   `json:"file_id"`
	Line   int      `json:"line"` // the suppressed line, not the comment's line
	RuleID string   `json:"rule_id,omitempty"` // empty means "all rules"
}

// Resolution is the outcome of resolving one import specifier (§3). Exactly
// one of the "variant" groups is meaningful, discriminated by Kind.
type Resolution struct {
	Kind     ResolutionKind   `json:"kind"`
	FileID   FileID           `json:"file_id,omitempty"`
	Caveat   ResolutionCaveat `json:"caveat,omitempty"`
	External string           `json:"external,omitempty"`
	Reason   UnresolvedReason `json:"reason,omitempty"`
}

// ResolutionKind discriminates the Resolution sum type.
type ResolutionKind uint8

const (
	ResolutionKindResolved ResolutionKind = iota
	ResolutionKindResolvedWithCaveat
	ResolutionKindExternal
	ResolutionKindUnresolved
)

// Resolved builds a Resolved(FileID) variant.
func Resolved(id FileID) Resolution {
	return Resolution{Kind: ResolutionKindResolved, FileID: id}
}

// ResolvedWithCaveat builds a ResolvedWithCaveat(FileID, caveat) variant.
func ResolvedWithCaveat(id FileID, caveat ResolutionCaveat) Resolution {
	return Resolution{Kind: ResolutionKindResolvedWithCaveat, FileID: id, Caveat: caveat}
}

// External builds an External(name) variant.
func External(name string) Resolution {
	return Resolution{Kind: ResolutionKindExternal, External: name}
}

// Unresolved builds an Unresolved(reason) variant.
func Unresolved(reason UnresolvedReason) Resolution {
	return Resolution{Kind: ResolutionKindUnresolved, Reason: reason}
}

// IsResolved reports whether the resolution names a concrete in-project file.
func (r Resolution) IsResolved() bool {
	return r.Kind == ResolutionKindResolved || r.Kind == ResolutionKindResolvedWithCaveat
}

// ParseResult is the parser contract's output (§4.1): everything extracted
// from one file, nothing touching the filesystem or persistence.
type ParseResult struct {
	Symbols      []Symbol
	References   []Reference
	Imports      []Import
	Exports      []Export
	Suppressions []Suppression
}
