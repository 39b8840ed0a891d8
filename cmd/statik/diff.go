package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/codestatik/statik/internal/cliformat"
	"github.com/codestatik/statik/internal/diff"
	"github.com/codestatik/statik/internal/store"
)

var diffCommand = &cli.Command{
	Name:      "diff",
	Usage:     "compare the export surface of the current index against a baseline snapshot (§4.4 diff)",
	ArgsUsage: "--baseline <path>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "baseline", Required: true, Usage: "path to a previously captured .statik/index.db snapshot"},
		&cli.BoolFlag{Name: "ci", Usage: "exit non-zero if any breaking change is found"},
	},
	Action: func(c *cli.Context) error {
		rt, cleanup, err := setup(c, false)
		if err != nil {
			return err
		}
		defer cleanup()

		baselineStore, err := store.Open(c.String("baseline"))
		if err != nil {
			return fmt.Errorf("diff: opening baseline store: %w", err)
		}
		defer baselineStore.Close()

		changes, err := diff.Run(rt.ctx, baselineStore, rt.store)
		if err != nil {
			return err
		}

		columns := []string{"classification", "path", "name", "kind", "moved_to"}
		var rows [][]string
		var records []any
		breaking := false
		for _, ch := range changes {
			if ch.Classification == diff.ClassificationBreaking {
				breaking = true
			}
			rows = append(rows, []string{
				ch.Classification.String(), rt.displayPath(ch.Path), ch.Name, ch.Kind.String(), rt.displayPath(ch.MovedTo),
			})
			records = append(records, map[string]any{
				"classification": ch.Classification.String(), "path": ch.Path, "name": ch.Name,
				"kind": ch.Kind.String(), "moved_to": ch.MovedTo,
			})
		}

		if err := rt.write(cliformat.Grid{Columns: columns, Rows: rows, Records: records}); err != nil {
			return err
		}

		if c.Bool("ci") && breaking {
			return cli.Exit("", 1)
		}
		return nil
	},
}
