// Package config loads the TOML project configuration of §6: lint rules,
// tags, source sets, and entry-point overrides.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	statikerrors "github.com/codestatik/statik/internal/errors"
	"github.com/codestatik/statik/internal/graph"
	"github.com/codestatik/statik/internal/lint"
	"github.com/codestatik/statik/internal/model"
)

// Config is the root `statik.toml` document (§6).
type Config struct {
	Rules       []RuleDecl              `toml:"rules"`
	Tags        map[string][]string     `toml:"tags"`
	Scope       map[string]ScopeDecl    `toml:"scope"`
	EntryPoints EntryPointsDecl         `toml:"entry_points"`
	TSConfig    TSConfigDecl            `toml:"tsconfig"`
	Java        JavaDecl                `toml:"java"`
	Rust        RustDecl                `toml:"rust"`
}

// RuleDecl is one `[[rules]]` table: common fields plus exactly one
// rule-type-specific sub-table (§4.5, §6).
type RuleDecl struct {
	ID           string `toml:"id"`
	Severity     string `toml:"severity"`
	Description  string `toml:"description"`
	Rationale    string `toml:"rationale"`
	FixDirection string `toml:"fix_direction"`

	Boundary          *BoundaryDecl          `toml:"boundary"`
	LayerHierarchy    *LayerHierarchyDecl    `toml:"layer_hierarchy"`
	Containment       *ContainmentDecl       `toml:"containment"`
	ImportRestriction *ImportRestrictionDecl `toml:"import_restriction"`
	FanLimit          *FanLimitDecl          `toml:"fan_limit"`
	TagBoundary       *TagBoundaryDecl       `toml:"tag_boundary"`
	CyclePolicy       *CyclePolicyDecl       `toml:"cycle_policy"`
	Stability         *StabilityDecl         `toml:"stability"`
	NamingBoundary    *NamingBoundaryDecl    `toml:"naming_boundary"`
	RestrictedConsumer *RestrictedConsumerDecl `toml:"restricted_consumer"`
	ExportLimit       *ExportLimitDecl       `toml:"export_limit"`
	CouplingWeight    *CouplingWeightDecl    `toml:"coupling_weight"`
	Cohesion          *CohesionDecl          `toml:"cohesion"`
}

type BoundaryDecl struct {
	From   []string `toml:"from"`
	Deny   []string `toml:"deny"`
	Except []string `toml:"except"`
}

type LayerHierarchyDecl struct {
	Layers []LayerDecl `toml:"layers"`
}

type LayerDecl struct {
	Name    string   `toml:"name"`
	Pattern []string `toml:"pattern"`
}

type ContainmentDecl struct {
	Module    []string `toml:"module"`
	PublicAPI []string `toml:"public_api"`
}

type ImportRestrictionDecl struct {
	Target          []string `toml:"target"`
	RequireTypeOnly bool     `toml:"require_type_only"`
	ForbiddenNames  []string `toml:"forbidden_names"`
	AllowedNames    []string `toml:"allowed_names"`
}

type FanLimitDecl struct {
	Pattern   []string `toml:"pattern"`
	MaxFanOut int      `toml:"max_fan_out"`
	MaxFanIn  int      `toml:"max_fan_in"`
}

type TagBoundaryDecl struct {
	FromTag    []string `toml:"from_tag"`
	DenyTags   []string `toml:"deny_tags"`
	ExceptTags []string `toml:"except_tags"`
}

type CyclePolicyDecl struct {
	MaxCycleLength int `toml:"max_cycle_length"`
}

type StabilityDecl struct {
	Pattern        []string `toml:"pattern"`
	MaxInstability float64  `toml:"max_instability"`
}

type NamingBoundaryDecl struct {
	Pattern   []string `toml:"pattern"`
	MustMatch string   `toml:"must_match"`
}

type RestrictedConsumerDecl struct {
	Target           []string `toml:"target"`
	AllowedConsumers []string `toml:"allowed_consumers"`
}

type ExportLimitDecl struct {
	Pattern    []string `toml:"pattern"`
	MaxExports int      `toml:"max_exports"`
}

type CouplingWeightDecl struct {
	MaxDistinctNames int `toml:"max_distinct_names"`
}

type CohesionDecl struct {
	Pattern          []string `toml:"pattern"`
	MaxExternalRatio float64  `toml:"max_external_ratio"`
}

// ScopeDecl is one `[scope.<name>]` table (§6).
type ScopeDecl struct {
	Include     []string `toml:"include"`
	Exclude     []string `toml:"exclude"`
	Role        string   `toml:"role"`
	Lint        *bool    `toml:"lint"`
	Analysis    *bool    `toml:"analysis"`
	SourceRoots []string `toml:"source_roots"`
}

// EntryPointsDecl is `[entry_points]` (§6).
type EntryPointsDecl struct {
	Patterns    []string `toml:"patterns"`
	Annotations []string `toml:"annotations"`
}

// TSConfigDecl supplies the resolver's tsconfig paths/baseUrl context (§4.2).
type TSConfigDecl struct {
	BaseURL string              `toml:"base_url"`
	Paths   map[string][]string `toml:"paths"`
}

// JavaDecl supplies the resolver's source-root context (§4.2).
type JavaDecl struct {
	SourceRoots []string `toml:"source_roots"`
}

// RustDecl supplies the resolver's crate context (§4.2).
type RustDecl struct {
	CrateName    string   `toml:"crate_name"`
	CrateRoot    string   `toml:"crate_root"`
	Dependencies []string `toml:"dependencies"`
}

// Load reads and validates a statik.toml file. Validation failures are
// reported as ConfigInvalid (§7: fatal before any work).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, statikerrors.NewConfigInvalidError(path, "", 0, err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, statikerrors.NewConfigInvalidError(path, "", 0, err)
	}
	if err := cfg.Validate(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every `[[rules]]` entry names exactly one rule-type
// sub-table and every referenced severity/kind is recognized (§6, §7).
func (c *Config) Validate(path string) error {
	for i, r := range c.Rules {
		if r.ID == "" {
			return statikerrors.NewConfigInvalidError(path, fmt.Sprintf("rules[%d].id", i), 0, fmt.Errorf("rule id required"))
		}
		if _, ok := lint.ParseSeverity(r.Severity); !ok {
			return statikerrors.NewConfigInvalidError(path, fmt.Sprintf("rules[%d].severity", i), 0, fmt.Errorf("unknown severity %q", r.Severity))
		}
		if count(r) != 1 {
			return statikerrors.NewConfigInvalidError(path, fmt.Sprintf("rules[%d]", i), 0, fmt.Errorf("rule must name exactly one rule-type sub-table, got %d", count(r)))
		}
	}
	return nil
}

func count(r RuleDecl) int {
	n := 0
	for _, set := range []bool{
		r.Boundary != nil, r.LayerHierarchy != nil, r.Containment != nil,
		r.ImportRestriction != nil, r.FanLimit != nil, r.TagBoundary != nil,
		r.CyclePolicy != nil, r.Stability != nil, r.NamingBoundary != nil,
		r.RestrictedConsumer != nil, r.ExportLimit != nil, r.CouplingWeight != nil,
		r.Cohesion != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// LintRules converts the TOML rule declarations into the lint engine's
// Rule type.
func (c *Config) LintRules() []lint.Rule {
	out := make([]lint.Rule, 0, len(c.Rules))
	for _, r := range c.Rules {
		sev, _ := lint.ParseSeverity(r.Severity)
		rule := lint.Rule{
			ID: r.ID, Severity: sev, Description: r.Description,
			Rationale: r.Rationale, FixDirection: r.FixDirection,
		}
		switch {
		case r.Boundary != nil:
			rule.Kind = lint.KindBoundary
			rule.From, rule.Deny, rule.Except = r.Boundary.From, r.Boundary.Deny, r.Boundary.Except
		case r.LayerHierarchy != nil:
			rule.Kind = lint.KindLayerHierarchy
			for _, l := range r.LayerHierarchy.Layers {
				rule.Layers = append(rule.Layers, lint.LayerDef{Name: l.Name, Pattern: l.Pattern})
			}
		case r.Containment != nil:
			rule.Kind = lint.KindContainment
			rule.Module, rule.PublicAPI = r.Containment.Module, r.Containment.PublicAPI
		case r.ImportRestriction != nil:
			rule.Kind = lint.KindImportRestriction
			rule.Target = r.ImportRestriction.Target
			rule.RequireTypeOnly = r.ImportRestriction.RequireTypeOnly
			rule.ForbiddenNames = r.ImportRestriction.ForbiddenNames
			rule.AllowedNames = r.ImportRestriction.AllowedNames
		case r.FanLimit != nil:
			rule.Kind = lint.KindFanLimit
			rule.Pattern = r.FanLimit.Pattern
			rule.MaxFanOut, rule.MaxFanIn = r.FanLimit.MaxFanOut, r.FanLimit.MaxFanIn
		case r.TagBoundary != nil:
			rule.Kind = lint.KindTagBoundary
			rule.FromTag, rule.DenyTags, rule.ExceptTags = r.TagBoundary.FromTag, r.TagBoundary.DenyTags, r.TagBoundary.ExceptTags
		case r.CyclePolicy != nil:
			rule.Kind = lint.KindCyclePolicy
			rule.MaxCycleLength = r.CyclePolicy.MaxCycleLength
		case r.Stability != nil:
			rule.Kind = lint.KindStability
			rule.Pattern = r.Stability.Pattern
			rule.MaxInstability = r.Stability.MaxInstability
		case r.NamingBoundary != nil:
			rule.Kind = lint.KindNamingBoundary
			rule.Pattern = r.NamingBoundary.Pattern
			rule.MustMatch = r.NamingBoundary.MustMatch
		case r.RestrictedConsumer != nil:
			rule.Kind = lint.KindRestrictedConsumer
			rule.Target, rule.AllowedConsumers = r.RestrictedConsumer.Target, r.RestrictedConsumer.AllowedConsumers
		case r.ExportLimit != nil:
			rule.Kind = lint.KindExportLimit
			rule.Pattern = r.ExportLimit.Pattern
			rule.MaxExports = r.ExportLimit.MaxExports
		case r.CouplingWeight != nil:
			rule.Kind = lint.KindCouplingWeight
			rule.MaxDistinctNames = r.CouplingWeight.MaxDistinctNames
		case r.Cohesion != nil:
			rule.Kind = lint.KindCohesion
			rule.Pattern = r.Cohesion.Pattern
			rule.MaxExternalRatio = r.Cohesion.MaxExternalRatio
		}
		out = append(out, rule)
	}
	return out
}

// SourceSets converts `[scope.<name>]` tables into model.SourceSet values.
func (c *Config) SourceSets() []model.SourceSet {
	out := make([]model.SourceSet, 0, len(c.Scope))
	for name, s := range c.Scope {
		ss := model.SourceSet{
			Name: name, Include: s.Include, Exclude: s.Exclude,
			Lint: true, Analysis: true, SourceRoots: s.SourceRoots,
		}
		if s.Lint != nil {
			ss.Lint = *s.Lint
		}
		if s.Analysis != nil {
			ss.Analysis = *s.Analysis
		}
		switch s.Role {
		case "configured":
			ss.Role = model.EntryPointRoleConfigured
		case "conventional":
			ss.Role = model.EntryPointRoleConventional
		case "annotated":
			ss.Role = model.EntryPointRoleAnnotated
		default:
			ss.Role = model.EntryPointRoleNone
		}
		out = append(out, ss)
	}
	return out
}

// ProjectContext builds the graph builder's ProjectContext from this
// config's per-language sections and entry-point overrides (§4.1, §4.2).
func (c *Config) ProjectContext() graph.ProjectContext {
	deps := make(map[string]bool, len(c.Rust.Dependencies))
	for _, d := range c.Rust.Dependencies {
		deps[d] = true
	}
	return graph.ProjectContext{
		TSConfigBaseURL:      c.TSConfig.BaseURL,
		TSConfigPaths:        c.TSConfig.Paths,
		JavaSourceRoots:      c.Java.SourceRoots,
		RustCrateName:        c.Rust.CrateName,
		RustCrateRoot:        c.Rust.CrateRoot,
		RustDependencies:     deps,
		SourceSets:           c.SourceSets(),
		ExtraEntryPatterns:   c.EntryPoints.Patterns,
		ExtraEntryAnnotation: c.EntryPoints.Annotations,
	}
}
