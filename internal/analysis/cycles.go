package analysis

import (
	"sort"

	"github.com/codestatik/statik/internal/model"
)

// Cycle is one strongly-connected cluster of size ≥ 2, or a self-loop,
// reported as the minimum-lexicographic rotation of its node path (§4.4).
type Cycle struct {
	Files []string // project-relative paths, in cycle order
}

// DetectCycles runs Tarjan's SCC algorithm over the file graph, excluding
// is_mod_declaration edges (§3 invariant 4, §4.4), and reports every SCC of
// size ≥ 2 plus any self-loop. The teacher's dependency tracker only ever
// implements a DFS-with-recursion-stack cycle probe bounded by a max depth
// (internal/analysis/dependency_tracker.go: findCycles) — that approach
// cannot guarantee finding every cycle in a graph with shared sub-paths, so
// this is a from-scratch Tarjan implementation, generalizing the teacher's
// visited/stack bookkeeping idiom to proper SCC decomposition.
func DetectCycles(g *model.FileGraph) []Cycle {
	t := &tarjan{
		g:       g,
		index:   make(map[model.FileID]int),
		lowlink: make(map[model.FileID]int),
		onStack: make(map[model.FileID]bool),
	}

	ids := make([]model.FileID, 0, len(g.Files))
	for id := range g.Files {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if _, seen := t.index[id]; !seen {
			t.strongconnect(id)
		}
	}

	var cycles []Cycle
	for _, scc := range t.sccs {
		if len(scc) >= 2 || isSelfLoop(g, scc) {
			cycles = append(cycles, Cycle{Files: rotateToMinimum(pathsOf(g, scc))})
		}
	}

	sort.Slice(cycles, func(i, j int) bool {
		if len(cycles[i].Files) != len(cycles[j].Files) {
			return len(cycles[i].Files) < len(cycles[j].Files)
		}
		for k := range cycles[i].Files {
			if cycles[i].Files[k] != cycles[j].Files[k] {
				return cycles[i].Files[k] < cycles[j].Files[k]
			}
		}
		return false
	})
	return cycles
}

type tarjan struct {
	g        *model.FileGraph
	index    map[model.FileID]int
	lowlink  map[model.FileID]int
	onStack  map[model.FileID]bool
	stack    []model.FileID
	counter  int
	sccs     [][]model.FileID
}

func (t *tarjan) strongconnect(v model.FileID) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, e := range dependencyEdges(t.g, v) {
		w := e.Target
		if _, seen := t.index[w]; !seen {
			t.strongconnect(w)
			t.lowlink[v] = min(t.lowlink[v], t.lowlink[w])
		} else if t.onStack[w] {
			t.lowlink[v] = min(t.lowlink[v], t.index[w])
		}
	}

	if t.lowlink[v] == t.index[v] {
		var scc []model.FileID
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		// the stack pops in reverse discovery order; restore edge direction
		for i, j := 0, len(scc)-1; i < j; i, j = i+1, j-1 {
			scc[i], scc[j] = scc[j], scc[i]
		}
		t.sccs = append(t.sccs, scc)
	}
}

// dependencyEdges returns the outgoing edges that count for cycle detection:
// is_mod_declaration edges never count (§3 invariant 4).
func dependencyEdges(g *model.FileGraph, id model.FileID) []model.Edge {
	var out []model.Edge
	for _, e := range g.Out[id] {
		if e.IsModDeclaration {
			continue
		}
		out = append(out, e)
	}
	return out
}

func isSelfLoop(g *model.FileGraph, scc []model.FileID) bool {
	if len(scc) != 1 {
		return false
	}
	id := scc[0]
	for _, e := range dependencyEdges(g, id) {
		if e.Target == id {
			return true
		}
	}
	return false
}

func pathsOf(g *model.FileGraph, scc []model.FileID) []string {
	out := make([]string, 0, len(scc))
	for _, id := range scc {
		if f := g.Files[id]; f != nil {
			out = append(out, f.Path)
		}
	}
	return out
}

// rotateToMinimum returns the lexicographically smallest rotation of a
// node-path slice (§4.4: "output as the minimum-lexicographic rotation").
func rotateToMinimum(paths []string) []string {
	if len(paths) <= 1 {
		return paths
	}
	best := paths
	for i := 1; i < len(paths); i++ {
		candidate := append(append([]string{}, paths[i:]...), paths[:i]...)
		if lexLess(candidate, best) {
			best = candidate
		}
	}
	return best
}

func lexLess(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
