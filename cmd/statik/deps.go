package main

import (
	"fmt"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/codestatik/statik/internal/analysis"
	"github.com/codestatik/statik/internal/cliformat"
)

var depsCommand = &cli.Command{
	Name:  "deps",
	Usage: "walk the dependency graph from a file, or between two path sets with --between (§4.4 deps)",
	ArgsUsage: "[path]",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "direction", Value: "out", Usage: "out, in, or both"},
	},
	Action: func(c *cli.Context) error {
		rt, cleanup, err := setup(c, true)
		if err != nil {
			return err
		}
		defer cleanup()

		dir, err := parseDirection(c.String("direction"))
		if err != nil {
			return err
		}
		opts := analysis.DepsOptions{Direction: dir, MaxDepth: rt.maxDepth, RuntimeOnly: rt.runtimeOnly}

		between := c.StringSlice("between")
		columns := []string{"path", "depth"}
		var rows [][]string
		var records []any

		switch {
		case len(between) == 2:
			rows, records, err = depsBetween(rt, opts, between[0], between[1])
		case len(between) != 0:
			err = fmt.Errorf("--between takes exactly two globs")
		case c.NArg() >= 1:
			rows, records, err = depsFrom(rt, opts, c.Args().First())
		default:
			err = fmt.Errorf("usage: statik deps <path> (or --between <from-glob> <to-glob>)")
		}
		if err != nil {
			return err
		}

		return rt.write(cliformat.Grid{Columns: columns, Rows: rows, Records: records})
	},
}

func depsFrom(rt *runtime, opts analysis.DepsOptions, path string) ([][]string, []any, error) {
	root, err := rt.fileByPath("deps", path)
	if err != nil {
		return nil, nil, err
	}
	nodes, err := analysis.DependencyWalk(rt.ctx, rt.graph, root, opts)
	if err != nil {
		return nil, nil, err
	}
	var rows [][]string
	var records []any
	for _, n := range nodes {
		rows = append(rows, []string{rt.displayPath(n.Path), fmt.Sprint(n.Depth)})
		records = append(records, map[string]any{"path": n.Path, "depth": n.Depth})
	}
	return rows, records, nil
}

// depsBetween walks out from every file matching fromGlob and reports every
// reached file matching toGlob, deduplicated by path and kept at its
// shallowest depth (§6 `--between`).
func depsBetween(rt *runtime, opts analysis.DepsOptions, fromGlob, toGlob string) ([][]string, []any, error) {
	best := make(map[string]int)
	for id, f := range rt.graph.Files {
		if !globMatch(fromGlob, f.Path) {
			continue
		}
		nodes, err := analysis.DependencyWalk(rt.ctx, rt.graph, id, opts)
		if err != nil {
			return nil, nil, err
		}
		for _, n := range nodes {
			if !globMatch(toGlob, n.Path) {
				continue
			}
			if d, ok := best[n.Path]; !ok || n.Depth < d {
				best[n.Path] = n.Depth
			}
		}
	}
	paths := make([]string, 0, len(best))
	for path := range best {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var rows [][]string
	var records []any
	for _, path := range paths {
		depth := best[path]
		rows = append(rows, []string{rt.displayPath(path), fmt.Sprint(depth)})
		records = append(records, map[string]any{"path": path, "depth": depth})
	}
	return rows, records, nil
}

func parseDirection(s string) (analysis.Direction, error) {
	switch s {
	case "out", "":
		return analysis.DirectionOut, nil
	case "in":
		return analysis.DirectionIn, nil
	case "both":
		return analysis.DirectionBoth, nil
	default:
		return 0, fmt.Errorf("unknown --direction %q (want out, in or both)", s)
	}
}
