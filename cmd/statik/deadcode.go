package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/codestatik/statik/internal/analysis"
	"github.com/codestatik/statik/internal/cliformat"
)

var deadCodeCommand = &cli.Command{
	Name:  "dead-code",
	Usage: "find unreached files, dead exports, or dead symbols (§4.4 dead-code)",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "scope", Value: "files", Usage: "files, exports, or symbols"},
	},
	Action: func(c *cli.Context) error {
		rt, cleanup, err := setup(c, true)
		if err != nil {
			return err
		}
		defer cleanup()

		switch c.String("scope") {
		case "files":
			return deadFiles(rt)
		case "exports":
			return deadExports(rt)
		case "symbols":
			return deadSymbols(rt)
		default:
			return fmt.Errorf("unknown --scope %q (want files, exports or symbols)", c.String("scope"))
		}
	},
}

func deadFiles(rt *runtime) error {
	files := analysis.DeadFiles(rt.graph)
	columns := []string{"path"}
	var rows [][]string
	var records []any
	for _, f := range files {
		rows = append(rows, []string{rt.displayPath(f.Path)})
		records = append(records, map[string]any{"path": f.Path})
	}
	return rt.write(cliformat.Grid{Columns: columns, Rows: rows, Records: records})
}

func deadExports(rt *runtime) error {
	exports, err := analysis.DeadExports(rt.ctx, rt.store, rt.graph)
	if err != nil {
		return err
	}
	columns := []string{"path", "name", "line"}
	var rows [][]string
	var records []any
	for _, e := range exports {
		rows = append(rows, []string{rt.displayPath(e.Path), e.Name, fmt.Sprint(e.Line)})
		records = append(records, map[string]any{"path": e.Path, "name": e.Name, "line": e.Line})
	}
	return rt.write(cliformat.Grid{Columns: columns, Rows: rows, Records: records})
}

func deadSymbols(rt *runtime) error {
	symbols, err := analysis.DeadSymbols(rt.ctx, rt.store)
	if err != nil {
		return err
	}
	columns := []string{"path", "name", "line"}
	var rows [][]string
	var records []any
	for _, s := range symbols {
		path := ""
		if f := rt.graph.Files[s.File]; f != nil {
			path = f.Path
		}
		rows = append(rows, []string{rt.displayPath(path), s.Name, fmt.Sprint(s.Line)})
		records = append(records, map[string]any{"path": path, "name": s.Name, "line": s.Line})
	}
	return rt.write(cliformat.Grid{Columns: columns, Rows: rows, Records: records})
}
