package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codestatik/statik/internal/model"
)

func fileGraphWithFiles(paths ...string) (*model.FileGraph, []model.FileID) {
	g := model.NewFileGraph()
	ids := make([]model.FileID, len(paths))
	for i, p := range paths {
		id := model.FileID(i + 1)
		ids[i] = id
		g.AddFile(&model.File{ID: id, Path: p, Language: model.LanguageTSJS})
	}
	return g, ids
}

func addEdge(g *model.FileGraph, from, to model.FileID, modDecl bool) {
	g.AddEdge(model.Edge{Source: from, Target: to, IsModDeclaration: modDecl, Resolution: model.Resolution{Kind: model.ResolutionKindResolved, FileID: to}})
}

func TestDetectCyclesFindsDirectCycle(t *testing.T) {
	g, ids := fileGraphWithFiles("a.ts", "b.ts")
	addEdge(g, ids[0], ids[1], false)
	addEdge(g, ids[1], ids[0], false)

	cycles := DetectCycles(g)
	require.Len(t, cycles, 1)
	require.Len(t, cycles[0].Files, 2)
}

func TestDetectCyclesFindsSelfLoop(t *testing.T) {
	g, ids := fileGraphWithFiles("a.ts")
	addEdge(g, ids[0], ids[0], false)

	cycles := DetectCycles(g)
	require.Len(t, cycles, 1)
	require.Equal(t, []string{"a.ts"}, cycles[0].Files)
}

func TestDetectCyclesIgnoresModDeclarationEdges(t *testing.T) {
	g, ids := fileGraphWithFiles("a.ts", "b.ts")
	addEdge(g, ids[0], ids[1], true)
	addEdge(g, ids[1], ids[0], true)

	require.Empty(t, DetectCycles(g))
}

func TestDetectCyclesNoFalsePositiveOnAcyclicGraph(t *testing.T) {
	g, ids := fileGraphWithFiles("a.ts", "b.ts", "c.ts")
	addEdge(g, ids[0], ids[1], false)
	addEdge(g, ids[1], ids[2], false)

	require.Empty(t, DetectCycles(g))
}
