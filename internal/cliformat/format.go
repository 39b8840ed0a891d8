// Package cliformat renders analysis results in the four output encodings
// named in §6 (text/json/compact/csv) over one shared column/row grid, plus
// the minimal `--jq` projection described there. Every statik command builds
// one of these grids rather than hand-rolling its own printf formatting, so
// the four encodings stay in lockstep across commands.
package cliformat

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
)

// Format is one of the four encodings named in §6.
type Format string

const (
	Text    Format = "text"
	JSON    Format = "json"
	Compact Format = "compact"
	CSV     Format = "csv"
)

// Parse validates a `--format` flag value.
func Parse(s string) (Format, error) {
	switch Format(s) {
	case Text, JSON, Compact, CSV:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json, compact or csv)", s)
	}
}

// Grid is one command's result as a rectangular table: Columns names each
// field, Rows holds the already-stringified cells in the same order, and
// Records holds the corresponding JSON-marshalable value for each row so
// JSON output keeps real types (numbers, nested objects) instead of strings.
type Grid struct {
	Columns []string
	Rows    [][]string
	Records []any
}

// SortKey maps the `--sort` flag's four field names to a column index, or -1
// if this grid doesn't carry that field.
func (g Grid) SortKey(name string) int {
	for i, c := range g.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Sort reorders Rows/Records in place by the named column, numerically where
// the column looks numeric, lexicographically otherwise; ties keep original
// relative order (stable sort), and rows are always reversed, never
// re-sorted, when reverse is true but key is "" (a plain --reverse with no
// --sort).
func (g *Grid) Sort(key string, reverse bool) {
	if key != "" {
		idx := g.SortKey(key)
		if idx >= 0 {
			order := make([]int, len(g.Rows))
			for i := range order {
				order[i] = i
			}
			less := func(i, j int) bool {
				a, b := g.Rows[order[i]][idx], g.Rows[order[j]][idx]
				if an, aerr := strconv.Atoi(a); aerr == nil {
					if bn, berr := strconv.Atoi(b); berr == nil {
						return an < bn
					}
				}
				return a < b
			}
			sort.SliceStable(order, less)
			g.reorder(order)
		}
	}
	if reverse {
		g.reverse()
	}
}

func (g *Grid) reorder(order []int) {
	rows := make([][]string, len(order))
	var records []any
	if g.Records != nil {
		records = make([]any, len(order))
	}
	for i, idx := range order {
		rows[i] = g.Rows[idx]
		if records != nil {
			records[i] = g.Records[idx]
		}
	}
	g.Rows, g.Records = rows, records
}

func (g *Grid) reverse() {
	for i, j := 0, len(g.Rows)-1; i < j; i, j = i+1, j-1 {
		g.Rows[i], g.Rows[j] = g.Rows[j], g.Rows[i]
		if g.Records != nil {
			g.Records[i], g.Records[j] = g.Records[j], g.Records[i]
		}
	}
}

// FilterPath drops every row whose column named "path" (or "source" if there
// is no "path" column) doesn't match glob (§6 `--path-filter`).
func (g *Grid) FilterPath(glob string, matches func(pattern, path string) bool) {
	if glob == "" {
		return
	}
	idx := g.SortKey("path")
	if idx < 0 {
		idx = g.SortKey("source")
	}
	if idx < 0 {
		return
	}
	g.filter(func(row []string) bool { return matches(glob, row[idx]) })
}

func (g *Grid) filter(keep func(row []string) bool) {
	var rows [][]string
	var records []any
	for i, row := range g.Rows {
		if !keep(row) {
			continue
		}
		rows = append(rows, row)
		if g.Records != nil {
			records = append(records, g.Records[i])
		}
	}
	g.Rows, g.Records = rows, records
}

// Limit truncates to the first n rows; n<=0 means unlimited.
func (g *Grid) Limit(n int) {
	if n <= 0 || len(g.Rows) <= n {
		return
	}
	g.Rows = g.Rows[:n]
	if g.Records != nil {
		g.Records = g.Records[:n]
	}
}

// Write renders the grid per format. count, when true, prints only the row
// count (§6 `--count`) instead of the rows themselves. jqExpr, when
// non-empty, is applied before anything else is rendered and only affects
// JSON output: it supports the two shapes statik's own output ever needs,
// `.` (the whole record array) and `.[].<field>` (project one field out of
// every record) — a deliberately small subset of jq, since no jq evaluator
// library is available to this build and the full jq grammar is well beyond
// what `--count`/`--limit`/`--sort` already cover.
func Write(w io.Writer, format Format, g Grid, count bool, jqExpr string) error {
	if count {
		return writeCount(w, format, len(g.Rows))
	}
	switch format {
	case JSON:
		return writeJSON(w, g, jqExpr)
	case CSV:
		return writeCSV(w, g)
	case Compact:
		return writeCompact(w, g)
	default:
		return writeText(w, g)
	}
}

func writeCount(w io.Writer, format Format, n int) error {
	if format == JSON {
		return json.NewEncoder(w).Encode(map[string]int{"count": n})
	}
	_, err := fmt.Fprintln(w, n)
	return err
}

func writeJSON(w io.Writer, g Grid, jqExpr string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	records := g.Records
	if records == nil {
		records = make([]any, len(g.Rows))
		for i, row := range g.Rows {
			m := make(map[string]string, len(g.Columns))
			for j, c := range g.Columns {
				if j < len(row) {
					m[c] = row[j]
				}
			}
			records[i] = m
		}
	}

	switch {
	case jqExpr == "" || jqExpr == ".":
		return enc.Encode(records)
	case strings.HasPrefix(jqExpr, ".[].") :
		field := strings.TrimPrefix(jqExpr, ".[].")
		out := make([]any, 0, len(records))
		for _, r := range records {
			m, ok := r.(map[string]any)
			if !ok {
				b, _ := json.Marshal(r)
				_ = json.Unmarshal(b, &m)
			}
			out = append(out, m[field])
		}
		return enc.Encode(out)
	default:
		return fmt.Errorf("unsupported --jq expression %q (only \".\" and \".[].field\" are supported)", jqExpr)
	}
}

func writeCSV(w io.Writer, g Grid) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(g.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(g.Rows); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func writeCompact(w io.Writer, g Grid) error {
	for _, row := range g.Rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, "|")); err != nil {
			return err
		}
	}
	return nil
}

func writeText(w io.Writer, g Grid) error {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(g.Columns, "\t"))
	for _, row := range g.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
