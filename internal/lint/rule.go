// Package lint implements the architectural lint engine of §4.5: thirteen
// rule kinds evaluated over a built FileGraph, a suppression stack, and
// confidence-aware violation reporting.
package lint

import "github.com/codestatik/statik/internal/model"

// Severity is a rule's violation level.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// ParseSeverity parses a config string into a Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	case "info":
		return SeverityInfo, true
	default:
		return 0, false
	}
}

// Kind discriminates the thirteen rule evaluator contracts of §4.5.
type Kind uint8

const (
	KindBoundary Kind = iota
	KindLayerHierarchy
	KindContainment
	KindImportRestriction
	KindFanLimit
	KindTagBoundary
	KindCyclePolicy
	KindStability
	KindNamingBoundary
	KindRestrictedConsumer
	KindExportLimit
	KindCouplingWeight
	KindCohesion
)

// Rule is one configured lint rule (§4.5, §6 `[[rules]]`).
type Rule struct {
	ID            string
	Severity      Severity
	Description   string
	Rationale     string
	FixDirection  string
	Kind          Kind

	// Boundary
	From   []string
	Deny   []string
	Except []string

	// Layer hierarchy
	Layers []LayerDef

	// Containment
	Module    []string
	PublicAPI []string

	// Import restriction / Restricted consumer
	Target           []string
	RequireTypeOnly  bool
	ForbiddenNames   []string
	AllowedNames     []string
	AllowedConsumers []string

	// Fan limit / Stability / Naming boundary / Export limit / Cohesion
	Pattern         []string
	MaxFanOut       int
	MaxFanIn        int
	MaxInstability  float64
	MustMatch       string
	MaxExports      int
	MaxExternalRatio float64

	// Tag boundary
	FromTag   []string
	DenyTags  []string
	ExceptTags []string

	// Cycle policy
	MaxCycleLength int

	// Coupling weight
	MaxDistinctNames int
}

// LayerDef names one layer and the glob patterns assigned to it, in
// ascending order (§4.5 Layer hierarchy: "layers are ordered").
type LayerDef struct {
	Name    string
	Pattern []string
}

// Violation is one confirmed rule breach, prior to suppression filtering.
type Violation struct {
	RuleID      string
	Severity    Severity
	Description string
	Source      string // project-relative path
	Target      string // project-relative path, empty for file-scoped rules
	Line        int
	Confidence  model.Confidence
	Detail      string
}
