// Package analysis implements the graph analyses of §4.4: dependency walk,
// cycle detection, dead code, impact, and symbol-level queries. Every
// analysis runs single-threaded over an already-built, read-only FileGraph
// (§5), grounded structurally on the teacher's FunctionDependencyTracker BFS
// traversal pattern in internal/analysis/dependency_tracker.go, generalized
// from symbol-level call graphs to the file-level import graph.
package analysis

import (
	"context"
	"sort"

	"github.com/codestatik/statik/internal/model"
)

// Direction selects which adjacency list a dependency walk follows.
type Direction uint8

const (
	DirectionOut Direction = iota
	DirectionIn
	DirectionBoth
)

// DepsOptions configures a dependency walk (§4.4 "deps").
type DepsOptions struct {
	Direction   Direction
	MaxDepth    int // 0 means unbounded
	RuntimeOnly bool
}

// DepsNode is one file reached by the walk, at the depth it was first seen.
type DepsNode struct {
	File  model.FileID
	Path  string
	Depth int
}

// DependencyWalk performs a BFS from root in the configured direction,
// always including is_mod_declaration edges, and including is_type_only
// edges unless RuntimeOnly is set (§4.4).
func DependencyWalk(ctx context.Context, g *model.FileGraph, root model.FileID, opts DepsOptions) ([]DepsNode, error) {
	visited := map[model.FileID]int{root: 0}
	queue := []model.FileID{root}
	var out []DepsNode

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cur := queue[0]
		queue = queue[1:]
		depth := visited[cur]

		if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
			continue
		}

		for _, next := range neighbors(g, cur, opts) {
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = depth + 1
			queue = append(queue, next)
		}
	}

	for id, depth := range visited {
		if id == root {
			continue
		}
		f := g.Files[id]
		path := ""
		if f != nil {
			path = f.Path
		}
		out = append(out, DepsNode{File: id, Path: path, Depth: depth})
	}
	sortDepsNodes(out)
	return out, nil
}

func neighbors(g *model.FileGraph, id model.FileID, opts DepsOptions) []model.FileID {
	var edges []model.Edge
	switch opts.Direction {
	case DirectionOut:
		edges = g.Out[id]
	case DirectionIn:
		edges = g.In[id]
	case DirectionBoth:
		edges = append(append([]model.Edge{}, g.Out[id]...), g.In[id]...)
	}

	var out []model.FileID
	for _, e := range edges {
		if !e.IsModDeclaration && opts.RuntimeOnly && e.IsTypeOnly {
			continue
		}
		other := e.Target
		if opts.Direction == DirectionIn || (opts.Direction == DirectionBoth && e.Target == id) {
			other = e.Source
		}
		out = append(out, other)
	}
	return out
}

// sortDepsNodes applies a deterministic order: nodes are grouped by depth,
// shallowest first, and ordered by path within each depth.
func sortDepsNodes(nodes []DepsNode) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Depth != nodes[j].Depth {
			return nodes[i].Depth < nodes[j].Depth
		}
		return nodes[i].Path < nodes[j].Path
	})
}
