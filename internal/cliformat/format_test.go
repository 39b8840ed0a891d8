package cliformat

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleGrid() Grid {
	return Grid{
		Columns: []string{"path", "depth"},
		Rows: [][]string{
			{"src/b.ts", "2"},
			{"src/a.ts", "10"},
			{"src/c.ts", "1"},
		},
		Records: []any{
			map[string]any{"path": "src/b.ts", "depth": 2},
			map[string]any{"path": "src/a.ts", "depth": 10},
			map[string]any{"path": "src/c.ts", "depth": 1},
		},
	}
}

func TestParse(t *testing.T) {
	for _, f := range []string{"text", "json", "compact", "csv"} {
		got, err := Parse(f)
		require.NoError(t, err)
		require.Equal(t, Format(f), got)
	}
	_, err := Parse("yaml")
	require.Error(t, err)
}

func TestGridSortLexicographic(t *testing.T) {
	g := sampleGrid()
	g.Sort("path", false)
	require.Equal(t, []string{"src/a.ts", "src/b.ts", "src/c.ts"}, []string{g.Rows[0][0], g.Rows[1][0], g.Rows[2][0]})
}

func TestGridSortNumeric(t *testing.T) {
	g := sampleGrid()
	g.Sort("depth", false)
	require.Equal(t, []string{"1", "2", "10"}, []string{g.Rows[0][1], g.Rows[1][1], g.Rows[2][1]})
}

func TestGridSortReverseOnly(t *testing.T) {
	g := sampleGrid()
	original := append([][]string(nil), g.Rows...)
	g.Sort("", true)
	require.Equal(t, original[2], g.Rows[0])
	require.Equal(t, original[0], g.Rows[2])
}

func TestGridSortKeepsRecordsInSync(t *testing.T) {
	g := sampleGrid()
	g.Sort("path", false)
	for i, row := range g.Rows {
		rec := g.Records[i].(map[string]any)
		require.Equal(t, row[0], rec["path"])
	}
}

func TestGridFilterPath(t *testing.T) {
	g := sampleGrid()
	g.FilterPath("src/a.ts", func(pattern, path string) bool { return pattern == path })
	require.Len(t, g.Rows, 1)
	require.Equal(t, "src/a.ts", g.Rows[0][0])
}

func TestGridFilterPathEmptyGlobIsNoop(t *testing.T) {
	g := sampleGrid()
	g.FilterPath("", func(string, string) bool { return false })
	require.Len(t, g.Rows, 3)
}

func TestGridLimit(t *testing.T) {
	g := sampleGrid()
	g.Limit(2)
	require.Len(t, g.Rows, 2)
	require.Len(t, g.Records, 2)
}

func TestGridLimitZeroIsUnbounded(t *testing.T) {
	g := sampleGrid()
	g.Limit(0)
	require.Len(t, g.Rows, 3)
}

func TestWriteCount(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Text, sampleGrid(), true, ""))
	require.Equal(t, "3\n", buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, JSON, sampleGrid(), true, ""))
	var m map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	require.Equal(t, 3, m["count"])
}

func TestWriteJSONDot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, sampleGrid(), false, "."))
	var records []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 3)
}

func TestWriteJSONFieldProjection(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, sampleGrid(), false, ".[].path"))
	var paths []string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &paths))
	require.Equal(t, []string{"src/b.ts", "src/a.ts", "src/c.ts"}, paths)
}

func TestWriteJSONUnsupportedExpression(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, JSON, sampleGrid(), false, ".foo | select(.bar)")
	require.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, CSV, sampleGrid(), false, ""))
	require.Contains(t, buf.String(), "path,depth\n")
	require.Contains(t, buf.String(), "src/b.ts,2\n")
}

func TestWriteCompact(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Compact, sampleGrid(), false, ""))
	require.Contains(t, buf.String(), "src/b.ts|2\n")
}

func TestWriteTextHasHeaderRow(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Text, sampleGrid(), false, ""))
	require.Contains(t, buf.String(), "path")
	require.Contains(t, buf.String(), "depth")
}
