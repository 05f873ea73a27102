package report_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/uilogstat/pkg/report"
)

func sampleSet() *report.TableSet {
	return &report.TableSet{
		Created: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		RunID:   "run-1",
		Source:  "session.log",
		Tables: []report.Table{
			{
				Name:      "Total_Users_Per_Document",
				AxisTitle: "USERS",
				Rows: [][]report.Cell{
					{report.Text(""), report.Text("Documents")},
					{report.Num(1), report.Num(3)},
					{report.Num(2), report.Num(1)},
				},
			},
			{
				Name:         "Sub_Command_Transitions",
				HeatMap:      true,
				RotateHeader: true,
				Rows: [][]report.Cell{
					{report.Text(""), report.Text("A"), report.Text("B")},
					{report.Text("B"), report.Num(10), report.Num(0)},
					{report.Text("A"), report.Num(0), report.Num(5)},
				},
			},
		},
	}
}

func TestCell_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "3", report.Num(3).String())
	assert.Equal(t, "0.333", report.Num(1.0/3).String())
	assert.Equal(t, "abc", report.Text("abc").String())
}

func TestTable_Accessors(t *testing.T) {
	t.Parallel()

	set := sampleSet()

	tbl, ok := set.Table("Sub_Command_Transitions")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B"}, tbl.Labels())
	assert.Equal(t, []string{"B", "A"}, tbl.RowLabels())
	assert.InDelta(t, 10.0, tbl.MaxValue(), 1e-9)

	_, ok = set.Table("missing")
	assert.False(t, ok)

	empty := report.Table{Name: "empty"}
	assert.Nil(t, empty.Header())
	assert.Nil(t, empty.Body())
	assert.Zero(t, empty.MaxValue())
}

func TestHeatScale_Continuous(t *testing.T) {
	t.Parallel()

	scale := report.HeatScale{Mode: report.HeatContinuous}

	assert.Equal(t, report.RGB{R: 255}, scale.Color(10, 10))
	assert.Equal(t, report.RGB{G: 255}, scale.Color(0, 10))
	assert.Equal(t, report.Neutral, scale.Color(3, 0))
	assert.Equal(t, "#ff0000", scale.Color(10, 10).Hex())
}

func TestHeatScale_Bands(t *testing.T) {
	t.Parallel()

	scale := report.HeatScale{Mode: report.HeatBands}

	assert.Equal(t, report.Neutral, scale.Color(0, 100))

	low := scale.Color(1, 100)
	high := scale.Color(1000, 100)
	assert.NotEqual(t, low, high)
	assert.Equal(t, scale.Color(2, 100), scale.Color(5, 100))
}

func TestTextSink(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	sink := &report.TextSink{W: &buf, NoColor: true}
	require.NoError(t, sink.Write(context.Background(), sampleSet()))

	out := buf.String()
	assert.Contains(t, out, "Total_Users_Per_Document")
	assert.Contains(t, out, "USERS")
	assert.Contains(t, out, "Documents")
	assert.NotContains(t, out, "\x1b[")
}

func TestTextSink_HeatColors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	sink := &report.TextSink{W: &buf}
	require.NoError(t, sink.Write(context.Background(), sampleSet()))

	assert.Contains(t, buf.String(), "\x1b[")
}

func TestJSONSink(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	sink := &report.JSONSink{W: &buf}
	require.NoError(t, sink.Write(context.Background(), sampleSet()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])

	tables, ok := decoded["tables"].([]any)
	require.True(t, ok)
	require.Len(t, tables, 2)
}

func TestValidateJSON_Rejects(t *testing.T) {
	t.Parallel()

	err := report.ValidateJSON([]byte(`{"created":"2024-01-01T00:00:00Z","run_id":"","source":"x","tables":[]}`))
	require.ErrorIs(t, err, report.ErrSchemaViolation)

	err = report.ValidateJSON([]byte(`{"created":"2024-01-01T00:00:00Z","run_id":"r","source":"x",` +
		`"tables":[{"name":"t","rows":[[true]]}]}`))
	require.ErrorIs(t, err, report.ErrSchemaViolation)
}

func TestYAMLSink(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	sink := &report.YAMLSink{W: &buf}
	require.NoError(t, sink.Write(context.Background(), sampleSet()))

	out := buf.String()
	assert.Contains(t, out, "run_id: run-1")
	assert.Contains(t, out, "name: Sub_Command_Transitions")
	assert.Contains(t, out, "heat_map: true")
}

func TestPlotSink(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	sink := &report.PlotSink{W: &buf}
	require.NoError(t, sink.Write(context.Background(), sampleSet()))

	out := buf.String()
	assert.True(t, strings.Contains(out, "<html") || strings.Contains(out, "<!DOCTYPE"))
	assert.Contains(t, out, "Total_Users_Per_Document")
	assert.Contains(t, out, "heatmap")
}

func TestSQLiteSink(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "report.db")
	sink := &report.SQLiteSink{Path: path}

	require.NoError(t, sink.Write(context.Background(), sampleSet()))

	db, err := report.OpenDB(path)
	require.NoError(t, err)

	defer db.Close()

	var runs int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&runs))
	assert.Equal(t, 1, runs)

	var num float64
	require.NoError(t, db.QueryRow(`
		SELECT c.num_value FROM report_cells c
		JOIN report_tables t ON t.id = c.table_id
		WHERE t.name = 'Sub_Command_Transitions' AND c.row_idx = 1 AND c.col_idx = 1`).Scan(&num))
	assert.InDelta(t, 10.0, num, 1e-9)

	var label string
	require.NoError(t, db.QueryRow(`
		SELECT c.text_value FROM report_cells c
		JOIN report_tables t ON t.id = c.table_id
		WHERE t.name = 'Sub_Command_Transitions' AND c.row_idx = 2 AND c.col_idx = 0`).Scan(&label))
	assert.Equal(t, "A", label)
}

func TestNewSink(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	for _, format := range []string{report.FormatText, report.FormatJSON, report.FormatYAML, report.FormatPlot} {
		sink, err := report.NewSink(format, &buf, report.SinkOptions{})
		require.NoError(t, err, format)
		assert.NotNil(t, sink)
	}

	_, err := report.NewSink(report.FormatSQLite, &buf, report.SinkOptions{})
	require.ErrorIs(t, err, report.ErrMissingPath)

	_, err = report.NewSink("xml", &buf, report.SinkOptions{})
	require.ErrorIs(t, err, report.ErrUnknownFormat)
}
