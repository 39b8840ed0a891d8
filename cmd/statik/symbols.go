package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/codestatik/statik/internal/analysis"
	"github.com/codestatik/statik/internal/cliformat"
	"github.com/codestatik/statik/internal/model"
)

var symbolsCommand = &cli.Command{
	Name:      "symbols",
	Usage:     "list symbols, optionally scoped to a file or filtered by kind (§4.4 symbols)",
	ArgsUsage: "[path]",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "filter by name or qualified name"},
		&cli.StringFlag{Name: "kind", Usage: "filter by symbol kind (function, class, struct, ...)"},
	},
	Action: func(c *cli.Context) error {
		rt, cleanup, err := setup(c, true)
		if err != nil {
			return err
		}
		defer cleanup()

		q := analysis.SymbolQuery{Name: c.String("name")}
		if c.NArg() >= 1 {
			fileID, err := rt.fileByPath("symbols", c.Args().First())
			if err != nil {
				return err
			}
			q.File = fileID
		}
		if k := c.String("kind"); k != "" {
			kind, err := parseSymbolKind(k)
			if err != nil {
				return err
			}
			q.Kind = &kind
		}

		symbols, err := analysis.Symbols(rt.ctx, rt.store, q)
		if err != nil {
			return err
		}

		columns := []string{"path", "name", "kind", "line", "visibility"}
		var rows [][]string
		var records []any
		for _, s := range symbols {
			path := ""
			if f := rt.graph.Files[s.FileID]; f != nil {
				path = f.Path
			}
			rows = append(rows, []string{
				rt.displayPath(path), s.Name, s.Kind.String(), fmt.Sprint(s.Position.Line), s.Visibility.String(),
			})
			records = append(records, map[string]any{
				"path": path, "name": s.Name, "qualified_name": s.QualifiedName,
				"kind": s.Kind.String(), "line": s.Position.Line, "visibility": s.Visibility.String(),
			})
		}

		return rt.write(cliformat.Grid{Columns: columns, Rows: rows, Records: records})
	},
}

var referencesCommand = &cli.Command{
	Name:      "references",
	Usage:     "find every use of a symbol by name (§4.4 references)",
	ArgsUsage: "<name>",
	Action: func(c *cli.Context) error {
		return runReferenceQuery(c, false)
	},
}

var callersCommand = &cli.Command{
	Name:      "callers",
	Usage:     "find every call-kind reference to a symbol by name (§4.4 callers)",
	ArgsUsage: "<name>",
	Action: func(c *cli.Context) error {
		return runReferenceQuery(c, true)
	},
}

func runReferenceQuery(c *cli.Context, callsOnly bool) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: statik %s <name>", c.Command.Name)
	}
	rt, cleanup, err := setup(c, true)
	if err != nil {
		return err
	}
	defer cleanup()

	name := c.Args().First()
	var refs []model.Reference
	if callsOnly {
		refs, err = analysis.Callers(rt.ctx, rt.store, model.SymbolID{}, name)
	} else {
		refs, err = analysis.References(rt.ctx, rt.store, model.SymbolID{}, name)
	}
	if err != nil {
		return err
	}

	columns := []string{"path", "line", "kind", "target"}
	var rows [][]string
	var records []any
	for _, r := range refs {
		path := ""
		if f := rt.graph.Files[r.FileID]; f != nil {
			path = f.Path
		}
		target := r.Target.Name
		if r.Target.Resolved() {
			target = r.Target.Symbol.String()
		}
		rows = append(rows, []string{rt.displayPath(path), fmt.Sprint(r.Line), r.Kind.String(), target})
		records = append(records, map[string]any{
			"path": path, "line": r.Line, "kind": r.Kind.String(), "target": target,
		})
	}

	return rt.write(cliformat.Grid{Columns: columns, Rows: rows, Records: records})
}

func parseSymbolKind(s string) (model.SymbolKind, error) {
	kinds := []model.SymbolKind{
		model.SymbolKindFunction, model.SymbolKindMethod, model.SymbolKindClass, model.SymbolKindStruct,
		model.SymbolKindEnum, model.SymbolKindEnumVariant, model.SymbolKindInterface, model.SymbolKindTrait,
		model.SymbolKindTypeAlias, model.SymbolKindVariable, model.SymbolKindConstant, model.SymbolKindModule,
		model.SymbolKindAnnotation, model.SymbolKindPackage, model.SymbolKindRecord, model.SymbolKindMacro,
	}
	for _, k := range kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown symbol kind %q", s)
}
