package analysis

import (
	"sort"

	"github.com/codestatik/statik/internal/model"
)

// ImpactNode is one file reachable by walking incoming edges backward from
// a target file (§4.4 "impact").
type ImpactNode struct {
	File  model.FileID
	Path  string
	Depth int
}

// Impact performs a reverse BFS on incoming edges from target, grouped by
// depth, capped at maxDepth (0 = unbounded).
func Impact(g *model.FileGraph, target model.FileID, maxDepth int) []ImpactNode {
	visited := map[model.FileID]int{target: 0}
	queue := []model.FileID{target}
	var out []ImpactNode

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		depth := visited[cur]
		if maxDepth > 0 && depth >= maxDepth {
			continue
		}
		for _, e := range g.In[cur] {
			if _, seen := visited[e.Source]; seen {
				continue
			}
			visited[e.Source] = depth + 1
			queue = append(queue, e.Source)
		}
	}

	for id, depth := range visited {
		if id == target {
			continue
		}
		f := g.Files[id]
		path := ""
		if f != nil {
			path = f.Path
		}
		out = append(out, ImpactNode{File: id, Path: path, Depth: depth})
	}
	sortDepsNodesByImpact(out)
	return out
}

func sortDepsNodesByImpact(nodes []ImpactNode) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Depth != nodes[j].Depth {
			return nodes[i].Depth < nodes[j].Depth
		}
		return nodes[i].Path < nodes[j].Path
	})
}
