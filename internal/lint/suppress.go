package lint

import "github.com/codestatik/statik/internal/model"

// inlineKey identifies a suppressed line within one file.
type inlineKey struct {
	file model.FileID
	line int
}

// Suppressor applies the three-tier suppression stack of §4.5: inline
// comment, source-set lint=false, then baseline membership. Each tier that
// matches skips the remaining tiers (the violation is suppressed either
// way; tiers are checked in order only to short-circuit cheaply).
type Suppressor struct {
	inline      map[inlineKey]map[string]bool // rule id -> true; empty map means "suppress all"
	lintDisabled map[string]bool              // file path -> true when its source set has lint=false
	baseline    *Baseline
}

// NewSuppressor builds a Suppressor from persisted inline suppressions,
// the resolved source-set-per-file lint flag, and an optional baseline.
func NewSuppressor(suppressions []model.Suppression, filePaths map[model.FileID]string, lintDisabledFiles map[string]bool, baseline *Baseline) *Suppressor {
	s := &Suppressor{
		inline:       make(map[inlineKey]map[string]bool),
		lintDisabled: lintDisabledFiles,
		baseline:     baseline,
	}
	for _, sup := range suppressions {
		k := inlineKey{file: sup.FileID, line: sup.Line}
		set, ok := s.inline[k]
		if !ok {
			set = make(map[string]bool)
			s.inline[k] = set
		}
		if sup.RuleID != "" {
			set[sup.RuleID] = true
		}
		// an empty RuleID means "suppress all"; leaving the set empty (no
		// keys) is itself the sentinel Suppressed checks for below.
	}
	if s.lintDisabled == nil {
		s.lintDisabled = make(map[string]bool)
	}
	if s.baseline == nil {
		s.baseline = &Baseline{Version: 1}
	}
	return s
}

// Suppressed reports whether v is covered by any tier of the stack.
func (s *Suppressor) Suppressed(v Violation, sourceFileID model.FileID) bool {
	if set, ok := s.inline[inlineKey{file: sourceFileID, line: v.Line}]; ok {
		if len(set) == 0 || set[v.RuleID] {
			return true
		}
	}
	if s.lintDisabled[v.Source] {
		return true
	}
	if s.baseline.contains(v.RuleID, v.Source, v.Target) {
		return true
	}
	return false
}
