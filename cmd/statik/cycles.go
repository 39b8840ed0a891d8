package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/codestatik/statik/internal/analysis"
	"github.com/codestatik/statik/internal/cliformat"
)

var cyclesCommand = &cli.Command{
	Name:  "cycles",
	Usage: "detect circular dependencies via Tarjan SCC (§4.4 cycles)",
	Action: func(c *cli.Context) error {
		rt, cleanup, err := setup(c, true)
		if err != nil {
			return err
		}
		defer cleanup()

		cycles := analysis.DetectCycles(rt.graph)

		columns := []string{"length", "cycle"}
		var rows [][]string
		var records []any
		for _, cy := range cycles {
			displayed := make([]string, len(cy.Files))
			for i, p := range cy.Files {
				displayed[i] = rt.displayPath(p)
			}
			rows = append(rows, []string{fmt.Sprint(len(cy.Files)), strings.Join(displayed, " -> ")})
			records = append(records, map[string]any{"length": len(cy.Files), "files": cy.Files})
		}

		return rt.write(cliformat.Grid{Columns: columns, Rows: rows, Records: records})
	},
}
