package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/codestatik/statik/internal/analysis"
	"github.com/codestatik/statik/internal/cliformat"
	"github.com/codestatik/statik/internal/model"
)

var summaryCommand = &cli.Command{
	Name:  "summary",
	Usage: "aggregate counts over the current index: files, symbols, edges, entry points",
	Action: func(c *cli.Context) error {
		rt, cleanup, err := setup(c, true)
		if err != nil {
			return err
		}
		defer cleanup()

		perLang := map[model.Language]int{}
		entryPoints := 0
		for id, f := range rt.graph.Files {
			perLang[f.Language]++
			if rt.graph.IsEntryPoint(id) {
				entryPoints++
			}
		}

		symbols, err := rt.store.AllSymbols(rt.ctx)
		if err != nil {
			return err
		}

		totalEdges := 0
		for _, edges := range rt.graph.Out {
			totalEdges += len(edges)
		}
		unresolvedFiles := len(rt.graph.UnresolvedFiles)
		totalFiles := len(rt.graph.Files)
		unresolvedRatio := 0.0
		if totalFiles > 0 {
			unresolvedRatio = float64(unresolvedFiles) / float64(totalFiles)
		}

		cycles := analysis.DetectCycles(rt.graph)

		columns := []string{"metric", "value"}
		rows := [][]string{
			{"files_total", fmt.Sprint(totalFiles)},
			{"files_tsjs", fmt.Sprint(perLang[model.LanguageTSJS])},
			{"files_java", fmt.Sprint(perLang[model.LanguageJava])},
			{"files_rust", fmt.Sprint(perLang[model.LanguageRust])},
			{"symbols_total", fmt.Sprint(len(symbols))},
			{"edges_total", fmt.Sprint(totalEdges)},
			{"entry_points", fmt.Sprint(entryPoints)},
			{"cycles", fmt.Sprint(len(cycles))},
			{"unresolved_import_ratio", fmt.Sprintf("%.4f", unresolvedRatio)},
		}
		records := []any{
			map[string]any{"metric": "files_total", "value": totalFiles},
			map[string]any{"metric": "files_tsjs", "value": perLang[model.LanguageTSJS]},
			map[string]any{"metric": "files_java", "value": perLang[model.LanguageJava]},
			map[string]any{"metric": "files_rust", "value": perLang[model.LanguageRust]},
			map[string]any{"metric": "symbols_total", "value": len(symbols)},
			map[string]any{"metric": "edges_total", "value": totalEdges},
			map[string]any{"metric": "entry_points", "value": entryPoints},
			map[string]any{"metric": "cycles", "value": len(cycles)},
			map[string]any{"metric": "unresolved_import_ratio", "value": unresolvedRatio},
		}

		return cliformat.Write(os.Stdout, rt.format, cliformat.Grid{Columns: columns, Rows: rows, Records: records}, false, rt.jq)
	},
}
