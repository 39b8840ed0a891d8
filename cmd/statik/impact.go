package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/codestatik/statik/internal/analysis"
	"github.com/codestatik/statik/internal/cliformat"
)

var impactCommand = &cli.Command{
	Name:      "impact",
	Usage:     "reverse BFS: who would a change to this file affect (§4.4 impact)",
	ArgsUsage: "<path>",
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return fmt.Errorf("usage: statik impact <path>")
		}
		rt, cleanup, err := setup(c, true)
		if err != nil {
			return err
		}
		defer cleanup()

		target, err := rt.fileByPath("impact", c.Args().First())
		if err != nil {
			return err
		}

		nodes := analysis.Impact(rt.graph, target, rt.maxDepth)

		columns := []string{"path", "depth"}
		var rows [][]string
		var records []any
		for _, n := range nodes {
			rows = append(rows, []string{rt.displayPath(n.Path), fmt.Sprint(n.Depth)})
			records = append(records, map[string]any{"path": n.Path, "depth": n.Depth})
		}

		return rt.write(cliformat.Grid{Columns: columns, Rows: rows, Records: records})
	},
}
