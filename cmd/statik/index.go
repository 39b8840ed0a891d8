package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/codestatik/statik/internal/cliformat"
	"github.com/codestatik/statik/internal/config"
	statikerrors "github.com/codestatik/statik/internal/errors"
	"github.com/codestatik/statik/internal/indexpipeline"
	"github.com/codestatik/statik/internal/store"
)

var indexCommand = &cli.Command{
	Name:  "index",
	Usage: "discover and (re)index every source file under --root",
	Action: func(c *cli.Context) error {
		root, err := filepath.Abs(c.String("root"))
		if err != nil {
			return fmt.Errorf("resolve root: %w", err)
		}
		format, err := cliformat.Parse(c.String("format"))
		if err != nil {
			return err
		}

		configPath := c.String("config")
		if configPath == "" {
			configPath = filepath.Join(root, ".statik.toml")
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(filepath.Join(root, ".statik"), 0o755); err != nil {
			return statikerrors.NewPersistenceIOError("create .statik directory", err)
		}
		s, err := store.Open(filepath.Join(root, ".statik", "index.db"))
		if err != nil {
			return statikerrors.NewPersistenceIOError("open index", err)
		}
		defer s.Close()

		pipe := indexpipeline.New(s, indexpipeline.Options{
			Root:       root,
			Discovery:  discoveryOptionsFrom(c, root),
			SourceSets: cfg.SourceSets(),
		})
		result, err := pipe.Run(c.Context)
		if err != nil {
			return err
		}

		columns := []string{"metric", "value"}
		metrics := []struct {
			name  string
			value int
		}{
			{"files_scanned", result.FilesScanned},
			{"files_indexed", result.FilesIndexed},
			{"files_skipped", result.FilesSkipped},
			{"files_unparsed", result.FilesUnparsed},
		}
		var rows [][]string
		var records []any
		for _, m := range metrics {
			rows = append(rows, []string{m.name, fmt.Sprint(m.value)})
			records = append(records, map[string]any{"metric": m.name, "value": m.value})
		}

		return cliformat.Write(os.Stdout, format, cliformat.Grid{Columns: columns, Rows: rows, Records: records}, false, c.String("jq"))
	},
}
