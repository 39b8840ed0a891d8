package main

import (
	"fmt"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/codestatik/statik/internal/cliformat"
	"github.com/codestatik/statik/internal/model"
)

var exportsCommand = &cli.Command{
	Name:      "exports",
	Usage:     "list export records for a file, or every file (§3 export record)",
	ArgsUsage: "[path]",
	Action: func(c *cli.Context) error {
		rt, cleanup, err := setup(c, true)
		if err != nil {
			return err
		}
		defer cleanup()

		var all []model.Export
		if c.NArg() >= 1 {
			path := c.Args().First()
			id, err := rt.fileByPath("exports", path)
			if err != nil {
				return err
			}
			all, err = rt.store.Exports(rt.ctx, id)
			if err != nil {
				return err
			}
		} else {
			all, err = rt.store.AllExports(rt.ctx)
			if err != nil {
				return err
			}
		}

		pathOf := func(e model.Export) string {
			if f := rt.graph.Files[e.FileID]; f != nil {
				return f.Path
			}
			return ""
		}
		sort.SliceStable(all, func(i, j int) bool {
			pi, pj := pathOf(all[i]), pathOf(all[j])
			if pi != pj {
				return pi < pj
			}
			return all[i].Name < all[j].Name
		})

		columns := []string{"path", "name", "is_reexport", "reexport_source", "is_type_only", "line"}
		var rows [][]string
		var records []any
		for _, e := range all {
			path := pathOf(e)
			rows = append(rows, []string{
				rt.displayPath(path), e.Name, fmt.Sprint(e.IsReexport), e.ReexportSource,
				fmt.Sprint(e.IsTypeOnly), fmt.Sprint(e.Line),
			})
			records = append(records, map[string]any{
				"path": path, "name": e.Name, "is_reexport": e.IsReexport,
				"reexport_source": e.ReexportSource, "is_type_only": e.IsTypeOnly, "line": e.Line,
			})
		}

		return rt.write(cliformat.Grid{Columns: columns, Rows: rows, Records: records})
	},
}
