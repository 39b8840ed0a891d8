package model

// Edge is one directed import relation from Source to Target (GLOSSARY:
// "Edge (in FileGraph)").
type Edge struct {
	Source           FileID
	Target           FileID
	ImportedNames    []ImportedName // nil/empty means wildcard
	IsWildcard       bool
	IsTypeOnly       bool
	IsModDeclaration bool
	Line             int
	Resolution       Resolution
}

// FileGraph is the transient, read-only-after-build adjacency structure
// joining persisted file/import/export records through resolvers (§3, §4.3).
type FileGraph struct {
	Out map[FileID][]Edge
	In  map[FileID][]Edge

	Files     map[FileID]*File
	EntryRole map[FileID]EntryPointRole

	// UnresolvedFiles marks files with at least one import that failed to
	// resolve; used by the lint engine's confidence scoring (§4.5).
	UnresolvedFiles map[FileID]bool

	// ExternalDeps and TotalDeps count, per file, import statements that
	// resolved outside the project and import statements overall; used by
	// the Cohesion lint rule (§4.5).
	ExternalDeps map[FileID]int
	TotalDeps    map[FileID]int
}

// NewFileGraph builds an empty FileGraph ready for AddEdge/AddFile calls.
func NewFileGraph() *FileGraph {
	return &FileGraph{
		Out:             make(map[FileID][]Edge),
		In:              make(map[FileID][]Edge),
		Files:           make(map[FileID]*File),
		EntryRole:       make(map[FileID]EntryPointRole),
		UnresolvedFiles: make(map[FileID]bool),
		ExternalDeps:    make(map[FileID]int),
		TotalDeps:       make(map[FileID]int),
	}
}

// AddFile registers a file record with the graph.
func (g *FileGraph) AddFile(f *File) {
	g.Files[f.ID] = f
}

// AddEdge records a directed edge in both the outgoing and incoming
// adjacency lists.
func (g *FileGraph) AddEdge(e Edge) {
	g.Out[e.Source] = append(g.Out[e.Source], e)
	g.In[e.Target] = append(g.In[e.Target], e)
}

// IsEntryPoint reports whether a file is classified as an entry point.
func (g *FileGraph) IsEntryPoint(id FileID) bool {
	role, ok := g.EntryRole[id]
	return ok && role != EntryPointRoleNone
}

// SourceSet is a named group of files sharing lint/analysis/role policy
// (§3 invariant 5, GLOSSARY).
type SourceSet struct {
	Name        string
	Include     []string
	Exclude     []string
	Role        EntryPointRole
	Lint        bool
	Analysis    bool
	SourceRoots []string // Java-specific
}

// DefaultSourceSet is assigned to every file when no configuration names a
// source set matching it (§3 invariant 5).
const DefaultSourceSet = "default"
