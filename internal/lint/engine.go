package lint

import (
	"context"
	"fmt"
	"path"
	"sort"

	"github.com/codestatik/statik/internal/analysis"
	"github.com/codestatik/statik/internal/model"
	"github.com/codestatik/statik/internal/store"
)

// Result is a completed lint run: the surviving violations plus the summary
// line data named in §4.5 ("Summary line counts errors/warnings/infos and
// number of rules evaluated").
type Result struct {
	Violations     []Violation
	RulesEvaluated int
	Errors         int
	Warnings       int
	Infos          int
	Confidence     model.Confidence
}

// ExitCode implements §4.5's exit-code contract: 1 iff any error-severity
// violation survived suppression.
func (r Result) ExitCode() int {
	if r.Errors > 0 {
		return 1
	}
	return 0
}

type candidate struct {
	Violation
	sourceFileID model.FileID
	caveatSteps  int
}

// Run evaluates every rule over g, applies the suppression stack, scores
// confidence, and sorts the survivors per §4.5.
func Run(ctx context.Context, s store.Store, g *model.FileGraph, rules []Rule, tags map[string][]string, sourceSets []model.SourceSet, baseline *Baseline) (Result, error) {
	allSuppressions, err := allSuppressionsFrom(ctx, s, g)
	if err != nil {
		return Result{}, err
	}

	filePaths := make(map[model.FileID]string, len(g.Files))
	for id, f := range g.Files {
		filePaths[id] = f.Path
	}

	lintDisabled := make(map[string]bool)
	ssLint := make(map[string]bool, len(sourceSets))
	for _, ss := range sourceSets {
		ssLint[ss.Name] = ss.Lint
	}
	for _, f := range g.Files {
		if lint, ok := ssLint[f.SourceSet]; ok && !lint {
			lintDisabled[f.Path] = true
		}
	}

	suppressor := NewSuppressor(allSuppressions, filePaths, lintDisabled, baseline)
	tagger := NewTagger(tags)
	regexes := newRegexCache()

	var cycles []analysis.Cycle
	var cyclesComputed bool

	var all []candidate
	for _, r := range rules {
		var produced []candidate
		var evalErr error
		switch r.Kind {
		case KindBoundary:
			produced = evalBoundary(g, r)
		case KindLayerHierarchy:
			produced = evalLayerHierarchy(g, r)
		case KindContainment:
			produced = evalContainment(g, r)
		case KindImportRestriction:
			produced = evalImportRestriction(g, r)
		case KindFanLimit:
			produced = evalFanLimit(g, r)
		case KindTagBoundary:
			produced = evalTagBoundary(g, r, tagger)
		case KindCyclePolicy:
			if !cyclesComputed {
				cycles = analysis.DetectCycles(g)
				cyclesComputed = true
			}
			produced = evalCyclePolicy(cycles, r)
		case KindStability:
			produced = evalStability(g, r)
		case KindNamingBoundary:
			produced, evalErr = evalNamingBoundary(g, r, regexes)
		case KindRestrictedConsumer:
			produced = evalRestrictedConsumer(g, r)
		case KindExportLimit:
			produced, evalErr = evalExportLimit(ctx, s, g, r)
		case KindCouplingWeight:
			produced = evalCouplingWeight(g, r)
		case KindCohesion:
			produced = evalCohesion(g, r)
		default:
			evalErr = fmt.Errorf("lint: unknown rule kind for rule %q", r.ID)
		}
		if evalErr != nil {
			return Result{}, evalErr
		}
		for i := range produced {
			produced[i].RuleID = r.ID
			produced[i].Severity = r.Severity
			if produced[i].Description == "" {
				produced[i].Description = r.Description
			}
		}
		all = append(all, produced...)
	}

	result := Result{RulesEvaluated: len(rules)}
	minConfidence := model.ConfidenceCertain
	for _, c := range all {
		if suppressor.Suppressed(c.Violation, c.sourceFileID) {
			continue
		}
		v := c.Violation
		v.Confidence = confidenceFor(g, c.sourceFileID, v.Target, filePaths, c.caveatSteps)
		minConfidence = model.Min(minConfidence, v.Confidence)
		result.Violations = append(result.Violations, v)
		switch v.Severity {
		case SeverityError:
			result.Errors++
		case SeverityWarning:
			result.Warnings++
		default:
			result.Infos++
		}
	}
	result.Confidence = model.Min(minConfidence, unresolvedFloor(g))

	sort.Slice(result.Violations, func(i, j int) bool {
		a, b := result.Violations[i], result.Violations[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity // severity desc
		}
		if a.RuleID != b.RuleID {
			return a.RuleID < b.RuleID
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Line < b.Line
	})
	return result, nil
}

func allSuppressionsFrom(ctx context.Context, s store.Store, g *model.FileGraph) ([]model.Suppression, error) {
	var out []model.Suppression
	for id := range g.Files {
		sup, err := s.Suppressions(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("lint: load suppressions: %w", err)
		}
		out = append(out, sup...)
	}
	return out, nil
}

// confidenceFor applies §4.5's scoring: one step down for a
// ResolvedWithCaveat edge, two steps down if either endpoint file had any
// unresolved import.
func confidenceFor(g *model.FileGraph, source model.FileID, targetPath string, filePaths map[model.FileID]string, caveatSteps int) model.Confidence {
	c := model.ConfidenceCertain
	steps := caveatSteps
	targetUnresolved := false
	for id, p := range filePaths {
		if p == targetPath && g.UnresolvedFiles[id] {
			targetUnresolved = true
			break
		}
	}
	if g.UnresolvedFiles[source] || targetUnresolved {
		steps += 2
	}
	return c.Lower(steps)
}

// unresolvedFloor computes the graph-wide confidence floor from the ratio
// of files with at least one unresolved import (§4.5: "floored by the
// ratio of unresolved imports in the graph").
func unresolvedFloor(g *model.FileGraph) model.Confidence {
	if len(g.Files) == 0 {
		return model.ConfidenceCertain
	}
	ratio := float64(len(g.UnresolvedFiles)) / float64(len(g.Files))
	switch {
	case ratio == 0:
		return model.ConfidenceCertain
	case ratio <= 0.1:
		return model.ConfidenceHigh
	case ratio <= 0.3:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

func filesMatching(g *model.FileGraph, m *Matcher) []*model.File {
	var out []*model.File
	for _, f := range g.Files {
		if m.Match(f.Path) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func caveatStepsOf(e model.Edge) int {
	if e.Resolution.Kind == model.ResolutionKindResolvedWithCaveat {
		return 1
	}
	return 0
}

func pathOf(g *model.FileGraph, id model.FileID) string {
	if f := g.Files[id]; f != nil {
		return f.Path
	}
	return ""
}

// --- Boundary ---

func evalBoundary(g *model.FileGraph, r Rule) []candidate {
	from := NewMatcher(r.From)
	deny := NewMatcher(r.Deny)
	except := NewMatcher(r.Except)
	var out []candidate
	forEachEdge(g, func(srcPath string, e model.Edge) {
		tgtPath := pathOf(g, e.Target)
		if !from.Match(srcPath) || !deny.Match(tgtPath) || except.Match(tgtPath) {
			return
		}
		out = append(out, candidate{
			Violation: Violation{
				Source: srcPath, Target: tgtPath, Line: e.Line,
				Detail: fmt.Sprintf("%s imports denied target %s", srcPath, tgtPath),
			},
			sourceFileID: e.Source, caveatSteps: caveatStepsOf(e),
		})
	})
	return out
}

// --- Layer hierarchy ---

func evalLayerHierarchy(g *model.FileGraph, r Rule) []candidate {
	matchers := make([]*Matcher, len(r.Layers))
	for i, l := range r.Layers {
		matchers[i] = NewMatcher(l.Pattern)
	}
	layerOf := func(p string) int {
		for i, m := range matchers {
			if m.Match(p) {
				return i
			}
		}
		return -1
	}
	var out []candidate
	forEachEdge(g, func(srcPath string, e model.Edge) {
		tgtPath := pathOf(g, e.Target)
		sl, tl := layerOf(srcPath), layerOf(tgtPath)
		if sl < 0 || tl < 0 {
			return
		}
		if sl > tl {
			out = append(out, candidate{
				Violation: Violation{
					Source: srcPath, Target: tgtPath, Line: e.Line,
					Detail: fmt.Sprintf("%s (layer %s) imports %s (layer %s)", srcPath, r.Layers[sl].Name, tgtPath, r.Layers[tl].Name),
				},
				sourceFileID: e.Source, caveatSteps: caveatStepsOf(e),
			})
		}
	})
	return out
}

// --- Containment ---

func evalContainment(g *model.FileGraph, r Rule) []candidate {
	module := NewMatcher(r.Module)
	publicAPI := NewMatcher(r.PublicAPI)
	var out []candidate
	forEachEdge(g, func(srcPath string, e model.Edge) {
		tgtPath := pathOf(g, e.Target)
		if !module.Match(tgtPath) || module.Match(srcPath) || publicAPI.Match(tgtPath) {
			return
		}
		out = append(out, candidate{
			Violation: Violation{
				Source: srcPath, Target: tgtPath, Line: e.Line,
				Detail: fmt.Sprintf("%s reaches into %s from outside its module", srcPath, tgtPath),
			},
			sourceFileID: e.Source, caveatSteps: caveatStepsOf(e),
		})
	})
	return out
}

// --- Import restriction ---

func evalImportRestriction(g *model.FileGraph, r Rule) []candidate {
	target := NewMatcher(r.Target)
	forbidden := make(map[string]bool, len(r.ForbiddenNames))
	for _, n := range r.ForbiddenNames {
		forbidden[n] = true
	}
	allowed := make(map[string]bool, len(r.AllowedNames))
	for _, n := range r.AllowedNames {
		allowed[n] = true
	}
	var out []candidate
	forEachEdge(g, func(srcPath string, e model.Edge) {
		tgtPath := pathOf(g, e.Target)
		if !target.Match(tgtPath) {
			return
		}
		if r.RequireTypeOnly && !e.IsTypeOnly {
			out = append(out, candidate{Violation: Violation{
				Source: srcPath, Target: tgtPath, Line: e.Line,
				Detail: fmt.Sprintf("%s imports %s at runtime but it must be type-only", srcPath, tgtPath),
			}, sourceFileID: e.Source, caveatSteps: caveatStepsOf(e)})
		}
		for _, n := range e.ImportedNames {
			if forbidden[n.Name] {
				out = append(out, candidate{Violation: Violation{
					Source: srcPath, Target: tgtPath, Line: e.Line,
					Detail: fmt.Sprintf("%s imports forbidden name %q from %s", srcPath, n.Name, tgtPath),
				}, sourceFileID: e.Source, caveatSteps: caveatStepsOf(e)})
			}
			if len(allowed) > 0 && !allowed[n.Name] {
				out = append(out, candidate{Violation: Violation{
					Source: srcPath, Target: tgtPath, Line: e.Line,
					Detail: fmt.Sprintf("%s imports name %q from %s, not in the allowed list", srcPath, n.Name, tgtPath),
				}, sourceFileID: e.Source, caveatSteps: caveatStepsOf(e)})
			}
		}
	})
	return out
}

// --- Fan limit ---

func evalFanLimit(g *model.FileGraph, r Rule) []candidate {
	m := NewMatcher(r.Pattern)
	var out []candidate
	for _, f := range filesMatching(g, m) {
		fanOut := len(g.Out[f.ID])
		fanIn := len(g.In[f.ID])
		if r.MaxFanOut > 0 && fanOut > r.MaxFanOut {
			out = append(out, candidate{Violation: Violation{
				Source: f.Path,
				Detail: fmt.Sprintf("%s has fan-out %d exceeding limit %d", f.Path, fanOut, r.MaxFanOut),
			}, sourceFileID: f.ID})
		}
		if r.MaxFanIn > 0 && fanIn > r.MaxFanIn {
			out = append(out, candidate{Violation: Violation{
				Source: f.Path,
				Detail: fmt.Sprintf("%s has fan-in %d exceeding limit %d", f.Path, fanIn, r.MaxFanIn),
			}, sourceFileID: f.ID})
		}
	}
	return out
}

// --- Tag boundary ---

func evalTagBoundary(g *model.FileGraph, r Rule, tagger *Tagger) []candidate {
	var out []candidate
	forEachEdge(g, func(srcPath string, e model.Edge) {
		tgtPath := pathOf(g, e.Target)
		srcTags := tagger.TagsOf(srcPath)
		tgtTags := tagger.TagsOf(tgtPath)
		if !intersectsList(srcTags, r.FromTag) || !intersectsList(tgtTags, r.DenyTags) {
			return
		}
		if intersectsList(srcTags, r.ExceptTags) || intersectsList(tgtTags, r.ExceptTags) {
			return
		}
		out = append(out, candidate{Violation: Violation{
			Source: srcPath, Target: tgtPath, Line: e.Line,
			Detail: fmt.Sprintf("%s crosses a denied tag boundary into %s", srcPath, tgtPath),
		}, sourceFileID: e.Source, caveatSteps: caveatStepsOf(e)})
	})
	return out
}

// --- Cycle policy ---

func evalCyclePolicy(cycles []analysis.Cycle, r Rule) []candidate {
	var out []candidate
	for _, c := range cycles {
		if r.MaxCycleLength > 0 && len(c.Files) > r.MaxCycleLength {
			out = append(out, candidate{Violation: Violation{
				Source: c.Files[0],
				Detail: fmt.Sprintf("cycle of length %d exceeds limit %d: %v", len(c.Files), r.MaxCycleLength, c.Files),
			}})
		}
	}
	return out
}

// --- Stability ---

func evalStability(g *model.FileGraph, r Rule) []candidate {
	m := NewMatcher(r.Pattern)
	var out []candidate
	for _, f := range filesMatching(g, m) {
		fanOut := len(g.Out[f.ID])
		fanIn := len(g.In[f.ID])
		total := fanIn + fanOut
		if total == 0 {
			continue
		}
		instability := float64(fanOut) / float64(total)
		if instability > r.MaxInstability {
			out = append(out, candidate{Violation: Violation{
				Source: f.Path,
				Detail: fmt.Sprintf("%s has instability %.2f exceeding limit %.2f", f.Path, instability, r.MaxInstability),
			}, sourceFileID: f.ID})
		}
	}
	return out
}

// --- Naming boundary ---

func evalNamingBoundary(g *model.FileGraph, r Rule, regexes *regexCache) ([]candidate, error) {
	m := NewMatcher(r.Pattern)
	re, err := regexes.compile(r.MustMatch)
	if err != nil {
		return nil, fmt.Errorf("lint: rule %q: compile must_match: %w", r.ID, err)
	}
	var out []candidate
	for _, f := range filesMatching(g, m) {
		if !re.MatchString(f.Path) {
			out = append(out, candidate{Violation: Violation{
				Source: f.Path,
				Detail: fmt.Sprintf("%s does not match required naming pattern %q", f.Path, r.MustMatch),
			}, sourceFileID: f.ID})
		}
	}
	return out, nil
}

// --- Restricted consumer ---

func evalRestrictedConsumer(g *model.FileGraph, r Rule) []candidate {
	target := NewMatcher(r.Target)
	allowed := NewMatcher(r.AllowedConsumers)
	var out []candidate
	forEachEdge(g, func(srcPath string, e model.Edge) {
		tgtPath := pathOf(g, e.Target)
		if !target.Match(tgtPath) || allowed.Match(srcPath) {
			return
		}
		out = append(out, candidate{Violation: Violation{
			Source: srcPath, Target: tgtPath, Line: e.Line,
			Detail: fmt.Sprintf("%s is not an allowed consumer of %s", srcPath, tgtPath),
		}, sourceFileID: e.Source, caveatSteps: caveatStepsOf(e)})
	})
	return out
}

// --- Export limit ---

func evalExportLimit(ctx context.Context, s store.Store, g *model.FileGraph, r Rule) ([]candidate, error) {
	m := NewMatcher(r.Pattern)
	var out []candidate
	for _, f := range filesMatching(g, m) {
		exports, err := s.Exports(ctx, f.ID)
		if err != nil {
			return nil, fmt.Errorf("lint: rule %q: load exports: %w", r.ID, err)
		}
		if r.MaxExports > 0 && len(exports) > r.MaxExports {
			out = append(out, candidate{Violation: Violation{
				Source: f.Path,
				Detail: fmt.Sprintf("%s exports %d symbols exceeding limit %d", f.Path, len(exports), r.MaxExports),
			}, sourceFileID: f.ID})
		}
	}
	return out, nil
}

// --- Coupling weight ---

func evalCouplingWeight(g *model.FileGraph, r Rule) []candidate {
	var out []candidate
	forEachEdge(g, func(srcPath string, e model.Edge) {
		if r.MaxDistinctNames <= 0 || len(e.ImportedNames) <= r.MaxDistinctNames {
			return
		}
		tgtPath := pathOf(g, e.Target)
		out = append(out, candidate{Violation: Violation{
			Source: srcPath, Target: tgtPath, Line: e.Line,
			Detail: fmt.Sprintf("%s imports %d distinct names from %s exceeding limit %d", srcPath, len(e.ImportedNames), tgtPath, r.MaxDistinctNames),
		}, sourceFileID: e.Source, caveatSteps: caveatStepsOf(e)})
	})
	return out
}

// --- Cohesion ---

func evalCohesion(g *model.FileGraph, r Rule) []candidate {
	m := NewMatcher(r.Pattern)
	byDir := make(map[string][]*model.File)
	for _, f := range filesMatching(g, m) {
		dir := path.Dir(f.Path)
		byDir[dir] = append(byDir[dir], f)
	}
	var dirs []string
	for d := range byDir {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	var out []candidate
	for _, dir := range dirs {
		var external, total int
		for _, f := range byDir[dir] {
			external += g.ExternalDeps[f.ID]
			total += g.TotalDeps[f.ID]
		}
		if total == 0 {
			continue
		}
		ratio := float64(external) / float64(total)
		if ratio > r.MaxExternalRatio {
			out = append(out, candidate{Violation: Violation{
				Source: dir,
				Detail: fmt.Sprintf("directory %s has external-dependency ratio %.2f exceeding limit %.2f", dir, ratio, r.MaxExternalRatio),
			}})
		}
	}
	return out
}

func forEachEdge(g *model.FileGraph, fn func(srcPath string, e model.Edge)) {
	var ids []model.FileID
	for id := range g.Out {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		srcPath := pathOf(g, id)
		edges := append([]model.Edge(nil), g.Out[id]...)
		sort.Slice(edges, func(i, j int) bool { return edges[i].Line < edges[j].Line })
		for _, e := range edges {
			fn(srcPath, e)
		}
	}
}
