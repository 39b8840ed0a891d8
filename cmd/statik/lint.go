package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/codestatik/statik/internal/cliformat"
	"github.com/codestatik/statik/internal/lint"
)

var lintCommand = &cli.Command{
	Name:  "lint",
	Usage: "evaluate architectural rules over the current index (§4.5)",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "freeze", Usage: "record the current violation set as the accepted baseline"},
	},
	Action: func(c *cli.Context) error {
		rt, cleanup, err := setup(c, true)
		if err != nil {
			return err
		}
		defer cleanup()

		baselinePath := filepath.Join(rt.root, ".statik", "lint-baseline.json")
		baseline, err := lint.LoadBaseline(baselinePath)
		if err != nil {
			return err
		}

		rules := rt.config.LintRules()
		tags := rt.config.Tags
		sourceSets := rt.config.SourceSets()

		result, err := lint.Run(rt.ctx, rt.store, rt.graph, rules, tags, sourceSets, baseline)
		if err != nil {
			return err
		}

		if c.Bool("freeze") {
			baseline.FreezeFrom(result.Violations, time.Now().UTC().Format(time.RFC3339))
			if err := baseline.Save(baselinePath); err != nil {
				return err
			}
		}

		columns := []string{"severity", "rule_id", "source", "target", "line", "confidence", "description"}
		var rows [][]string
		var records []any
		for _, v := range result.Violations {
			rows = append(rows, []string{
				v.Severity.String(), v.RuleID, rt.displayPath(v.Source), rt.displayPath(v.Target),
				fmt.Sprint(v.Line), v.Confidence.String(), v.Description,
			})
			records = append(records, map[string]any{
				"severity": v.Severity.String(), "rule_id": v.RuleID, "source": v.Source,
				"target": v.Target, "line": v.Line, "confidence": v.Confidence.String(),
				"description": v.Description, "detail": v.Detail,
			})
		}

		if err := rt.write(cliformat.Grid{Columns: columns, Rows: rows, Records: records}); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%d rules evaluated, %d errors, %d warnings, %d infos\n",
			result.RulesEvaluated, result.Errors, result.Warnings, result.Infos)

		if code := result.ExitCode(); code != 0 {
			return cli.Exit("", code)
		}
		return nil
	},
}
