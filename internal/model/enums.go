package model

// Language identifies one of the three supported source languages.
type Language uint8

const (
	LanguageUnknown Language = iota
	LanguageTSJS
	LanguageJava
	LanguageRust
)

func (l Language) String() string {
	switch l {
	case LanguageTSJS:
		return "tsjs"
	case LanguageJava:
		return "java"
	case LanguageRust:
		return "rust"
	default:
		return "unknown"
	}
}

// LanguageForExt maps a file extension (including the leading dot) to its
// Language, or LanguageUnknown if the extension is not supported.
func LanguageForExt(ext string) Language {
	switch ext {
	case ".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs", ".mts", ".cts":
		return LanguageTSJS
	case ".java":
		return LanguageJava
	case ".rs":
		return LanguageRust
	default:
		return LanguageUnknown
	}
}

// SymbolKind enumerates the declaration kinds produced by §3.
type SymbolKind uint8

const (
	SymbolKindFunction SymbolKind = iota
	SymbolKindMethod
	SymbolKindClass
	SymbolKindStruct
	SymbolKindEnum
	SymbolKindEnumVariant
	SymbolKindInterface
	SymbolKindTrait
	SymbolKindTypeAlias
	SymbolKindVariable
	SymbolKindConstant
	SymbolKindModule
	SymbolKindAnnotation
	SymbolKindPackage
	SymbolKindRecord
	SymbolKindMacro
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolKindFunction:
		return "function"
	case SymbolKindMethod:
		return "method"
	case SymbolKindClass:
		return "class"
	case SymbolKindStruct:
		return "struct"
	case SymbolKindEnum:
		return "enum"
	case SymbolKindEnumVariant:
		return "enum-variant"
	case SymbolKindInterface:
		return "interface"
	case SymbolKindTrait:
		return "trait"
	case SymbolKindTypeAlias:
		return "type-alias"
	case SymbolKindVariable:
		return "variable"
	case SymbolKindConstant:
		return "constant"
	case SymbolKindModule:
		return "module"
	case SymbolKindAnnotation:
		return "annotation"
	case SymbolKindPackage:
		return "package"
	case SymbolKindRecord:
		return "record"
	case SymbolKindMacro:
		return "macro"
	default:
		return "unknown"
	}
}

// Visibility is the access level of a symbol (§3).
type Visibility uint8

const (
	VisibilityPublic Visibility = iota
	VisibilityProtected
	VisibilityPrivate
	VisibilityPackagePrivate
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityProtected:
		return "protected"
	case VisibilityPrivate:
		return "private"
	case VisibilityPackagePrivate:
		return "package-private"
	default:
		return "unknown"
	}
}

// ReferenceKind enumerates the reference kinds produced by §3.
type ReferenceKind uint8

const (
	ReferenceKindCall ReferenceKind = iota
	ReferenceKindTypeUsage
	ReferenceKindInheritance
	ReferenceKindFieldAccess
	ReferenceKindAssignment
	ReferenceKindImport
	ReferenceKindExport
)

func (r ReferenceKind) String() string {
	switch r {
	case ReferenceKindCall:
		return "call"
	case ReferenceKindTypeUsage:
		return "type-usage"
	case ReferenceKindInheritance:
		return "inheritance"
	case ReferenceKindFieldAccess:
		return "field-access"
	case ReferenceKindAssignment:
		return "assignment"
	case ReferenceKindImport:
		return "import"
	case ReferenceKindExport:
		return "export"
	default:
		return "unknown"
	}
}

// ImportedNameKind discriminates the ImportedName sum type (§3).
type ImportedNameKind uint8

const (
	ImportedNameNamed ImportedNameKind = iota
	ImportedNameDefault
	ImportedNameNamespace
	ImportedNameWildcard
	ImportedNameSideEffectOnly
)

// WildcardExportName is the sentinel exported name used for wildcard
// re-exports (`export * from`, `pub use x::*`, `import pkg.*`).
const WildcardExportName = "*"

// UnresolvedReason enumerates why a resolver could not resolve a specifier
// (§3 Resolution sum type).
type UnresolvedReason uint8

const (
	UnresolvedReasonNone UnresolvedReason = iota
	UnresolvedReasonDynamicPath
	UnresolvedReasonFileNotFound
	UnresolvedReasonUnsupportedSyntax
	UnresolvedReasonNodeModules
	UnresolvedReasonClasspath
	UnresolvedReasonExternalCrate
	UnresolvedReasonAmbiguousModule
)

func (r UnresolvedReason) String() string {
	switch r {
	case UnresolvedReasonDynamicPath:
		return "dynamic-path"
	case UnresolvedReasonFileNotFound:
		return "file-not-found"
	case UnresolvedReasonUnsupportedSyntax:
		return "unsupported-syntax"
	case UnresolvedReasonNodeModules:
		return "node-modules"
	case UnresolvedReasonClasspath:
		return "classpath"
	case UnresolvedReasonExternalCrate:
		return "external-crate"
	case UnresolvedReasonAmbiguousModule:
		return "ambiguous-module"
	default:
		return "none"
	}
}

// ResolutionCaveat enumerates the ResolvedWithCaveat reasons.
type ResolutionCaveat uint8

const (
	CaveatNone ResolutionCaveat = iota
	CaveatAmbiguousIndex
)

// EntryPointRole tags why a file is treated as an entry point (§4.3).
type EntryPointRole uint8

const (
	EntryPointRoleNone EntryPointRole = iota
	EntryPointRoleConfigured
	EntryPointRoleConventional
	EntryPointRoleAnnotated
)

// Confidence is a monotone-decreasing scale; see §3 invariant 6 and §4.5.
type Confidence uint8

const (
	ConfidenceCertain Confidence = iota
	ConfidenceHigh
	ConfidenceMedium
	ConfidenceLow
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceCertain:
		return "certain"
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	default:
		return "unknown"
	}
}

// Lower moves confidence the given number of steps toward Low, saturating at Low. Confidence
// only ever decreases (§3 invariant 6).
func (c Confidence) Lower(steps int) Confidence {
	v := int(c) + steps
	if v > int(ConfidenceLow) {
		v = int(ConfidenceLow)
	}
	return Confidence(v)
}

// Min returns the lower (less confident) of two confidence values.
func Min(a, b Confidence) Confidence {
	if a > b {
		return a
	}
	return b
}
