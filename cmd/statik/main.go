// Command statik is the CLI front-end over the extraction/resolution/graph/
// lint engine (§1, §6): it wires file discovery, the indexing pipeline, and
// every read-only analysis command behind one `urfave/cli/v2` app, following
// the teacher's `cmd/lci` shape of one loadConfigWithOverrides-style setup
// helper shared by every command action.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v2"

	"github.com/codestatik/statik/internal/cliformat"
	"github.com/codestatik/statik/internal/config"
	"github.com/codestatik/statik/internal/discovery"
	statikerrors "github.com/codestatik/statik/internal/errors"
	"github.com/codestatik/statik/internal/graph"
	"github.com/codestatik/statik/internal/indexpipeline"
	"github.com/codestatik/statik/internal/model"
	"github.com/codestatik/statik/internal/store"
)

func main() {
	app := &cli.App{
		Name:                   "statik",
		Usage:                  "multi-language static analysis index and architectural lint engine",
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Value: ".", Usage: "project root directory"},
			&cli.StringFlag{Name: "config", Value: "", Usage: "config file path (default <root>/.statik.toml)"},
			&cli.StringFlag{Name: "format", Value: "text", Usage: "output format: text, json, compact, csv"},
			&cli.BoolFlag{Name: "no-index", Usage: "skip reindexing before running the command"},
			&cli.StringSliceFlag{Name: "include", Usage: "include files matching glob (repeatable)"},
			&cli.StringSliceFlag{Name: "exclude", Usage: "exclude files matching glob (repeatable)"},
			&cli.StringFlag{Name: "lang", Usage: "restrict discovery to one language: tsjs, java, rust"},
			&cli.IntFlag{Name: "max-depth", Usage: "cap traversal depth (deps, impact); 0 = unbounded"},
			&cli.BoolFlag{Name: "runtime-only", Usage: "exclude is_type_only edges from traversal"},
			&cli.StringFlag{Name: "path-filter", Usage: "keep only rows whose path matches this glob"},
			&cli.BoolFlag{Name: "count", Usage: "print only the row count"},
			&cli.IntFlag{Name: "limit", Usage: "cap the number of rows printed; 0 = unlimited"},
			&cli.StringFlag{Name: "sort", Usage: "sort rows by: path, confidence, name, depth"},
			&cli.BoolFlag{Name: "reverse", Usage: "reverse the row order"},
			&cli.StringFlag{Name: "jq", Usage: "project JSON output: \".\" or \".[].field\""},
			&cli.StringSliceFlag{Name: "between", Usage: "deps: restrict to paths between <from-glob> and <to-glob>"},
			&cli.BoolFlag{Name: "absolute-paths", Usage: "print absolute instead of project-relative paths"},
		},
		Commands: []*cli.Command{
			indexCommand,
			depsCommand,
			exportsCommand,
			deadCodeCommand,
			cyclesCommand,
			impactCommand,
			summaryCommand,
			lintCommand,
			diffCommand,
			symbolsCommand,
			referencesCommand,
			callersCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "statik: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor implements §6's exit code contract: 1 for any error, including
// a lint run that found error-severity violations or a diff --ci that found
// breaking changes (those commands return a *cli.ExitCoder directly and
// never reach this path with a nil error).
func exitCodeFor(err error) int {
	if coder, ok := err.(cli.ExitCoder); ok {
		return coder.ExitCode()
	}
	return 1
}

// runtime bundles everything a command action needs after setup: the open
// store, the built file graph, loaded config, and the parsed global flags
// that shape output (§6).
type runtime struct {
	ctx    context.Context
	store  store.Store
	graph  *model.FileGraph
	config *config.Config
	root   string

	format      cliformat.Format
	pathFilter  string
	count       bool
	limit       int
	sort        string
	reverse     bool
	jq          string
	absPaths    bool
	maxDepth    int
	runtimeOnly bool
}

// setup loads config, reindexes unless --no-index, opens the store, and
// builds the FileGraph — the single entry point every analysis command
// action calls before doing its own work.
func setup(c *cli.Context, buildGraph bool) (*runtime, func(), error) {
	root, err := filepath.Abs(c.String("root"))
	if err != nil {
		return nil, nil, fmt.Errorf("resolve root: %w", err)
	}

	format, err := cliformat.Parse(c.String("format"))
	if err != nil {
		return nil, nil, err
	}

	configPath := c.String("config")
	if configPath == "" {
		configPath = filepath.Join(root, ".statik.toml")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	statikDir := filepath.Join(root, ".statik")
	if err := os.MkdirAll(statikDir, 0o755); err != nil {
		return nil, nil, statikerrors.NewPersistenceIOError("create .statik directory", err)
	}
	dbPath := filepath.Join(statikDir, "index.db")
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, statikerrors.NewPersistenceIOError("open index", err)
	}
	cleanup := func() {
		if cerr := s.Close(); cerr != nil {
			slog.Error("close index", "error", cerr)
		}
	}

	if !c.Bool("no-index") {
		pipe := indexpipeline.New(s, indexpipeline.Options{
			Root: root,
			Discovery: discoveryOptionsFrom(c, root),
			SourceSets: cfg.SourceSets(),
		})
		if _, err := pipe.Run(c.Context); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	rt := &runtime{
		ctx:         c.Context,
		store:       s,
		config:      cfg,
		root:        root,
		format:      format,
		pathFilter:  c.String("path-filter"),
		count:       c.Bool("count"),
		limit:       c.Int("limit"),
		sort:        c.String("sort"),
		reverse:     c.Bool("reverse"),
		jq:          c.String("jq"),
		absPaths:    c.Bool("absolute-paths"),
		maxDepth:    c.Int("max-depth"),
		runtimeOnly: c.Bool("runtime-only"),
	}

	if buildGraph {
		b := graph.NewBuilder(s, cfg.ProjectContext())
		g, err := b.Build(c.Context)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		rt.graph = g
	}

	return rt, cleanup, nil
}

// displayPath converts a project-relative path for output per
// --absolute-paths (§6: "Output paths are project-relative by default").
func (rt *runtime) displayPath(p string) string {
	if !rt.absPaths || p == "" {
		return p
	}
	return filepath.Join(rt.root, filepath.FromSlash(p))
}

// write finishes off a command: filters by --path-filter, sorts, limits,
// then renders per --format/--count/--jq (§6).
func (rt *runtime) write(g cliformat.Grid) error {
	g.FilterPath(rt.pathFilter, globMatch)
	g.Sort(rt.sort, rt.reverse)
	g.Limit(rt.limit)
	return cliformat.Write(os.Stdout, rt.format, g, rt.count, rt.jq)
}

// discoveryOptionsFrom merges --include/--exclude/--lang into discovery
// options for the indexing pass (§6).
func discoveryOptionsFrom(c *cli.Context, root string) discovery.Options {
	return discovery.Options{
		Root:     root,
		Include:  c.StringSlice("include"),
		Exclude:  c.StringSlice("exclude"),
		Language: c.String("lang"),
	}
}

func globMatch(pattern, path string) bool {
	ok, err := doublestar.Match(pattern, path)
	return err == nil && ok
}

// fileByPath looks up a file by its CLI-supplied path argument, returning
// statikerrors.FileNotFoundInIndexError on a miss (§7).
func (rt *runtime) fileByPath(command, path string) (model.FileID, error) {
	f, ok, err := rt.store.FileByPath(rt.ctx, path)
	if err != nil {
		return 0, statikerrors.NewPersistenceIOError("lookup file "+path, err)
	}
	if !ok {
		return 0, statikerrors.NewFileNotFoundInIndexError(command, path)
	}
	return f.ID, nil
}
