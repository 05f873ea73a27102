// Package report defines the named-table contract between the aggregator and
// the report sinks, and the sinks themselves.
package report

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Cell is a numeric or textual table cell.
type Cell struct {
	Text     string
	Number   float64
	IsNumber bool
}

// Num returns a numeric cell.
func Num[T ~int | ~int64 | ~float64](v T) Cell {
	return Cell{Number: float64(v), IsNumber: true}
}

// Text returns a string cell.
func Text(s string) Cell {
	return Cell{Text: s}
}

// decimals kept when formatting non-integral numbers.
const cellPrecision = 1000

// String formats the cell for display.
func (c Cell) String() string {
	if !c.IsNumber {
		return c.Text
	}

	return strconv.FormatFloat(math.Round(c.Number*cellPrecision)/cellPrecision, 'f', -1, 64)
}

// Value returns the cell as float64 or string.
func (c Cell) Value() any {
	if c.IsNumber {
		return c.Number
	}

	return c.Text
}

// MarshalJSON encodes the cell as a JSON number or string.
func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Value())
}

// MarshalYAML encodes the cell as a YAML number or string.
func (c Cell) MarshalYAML() (any, error) {
	return c.Value(), nil
}

// Table is one named result table. The first row is the header row and the
// first column holds row labels.
type Table struct {
	Name         string   `json:"name"                    yaml:"name"`
	AxisTitle    string   `json:"axis_title,omitempty"    yaml:"axis_title,omitempty"`
	Rows         [][]Cell `json:"rows"                    yaml:"rows"`
	HeatMap      bool     `json:"heat_map,omitempty"      yaml:"heat_map,omitempty"`
	LogScale     bool     `json:"log_scale,omitempty"     yaml:"log_scale,omitempty"`
	RotateHeader bool     `json:"rotate_header,omitempty" yaml:"rotate_header,omitempty"`
}

// Header returns the header row, nil for an empty table.
func (t *Table) Header() []Cell {
	if len(t.Rows) == 0 {
		return nil
	}

	return t.Rows[0]
}

// Body returns all rows but the header.
func (t *Table) Body() [][]Cell {
	if len(t.Rows) < 2 {
		return nil
	}

	return t.Rows[1:]
}

// MaxValue returns the largest numeric body cell outside the label column.
func (t *Table) MaxValue() float64 {
	maxValue := 0.0

	for _, row := range t.Body() {
		for _, c := range row[min(1, len(row)):] {
			if c.IsNumber {
				maxValue = max(maxValue, c.Number)
			}
		}
	}

	return maxValue
}

// Labels returns the header cells after the label column as strings.
func (t *Table) Labels() []string {
	header := t.Header()
	if len(header) < 2 {
		return nil
	}

	out := make([]string, 0, len(header)-1)
	for _, c := range header[1:] {
		out = append(out, c.String())
	}

	return out
}

// RowLabels returns the first column of the body as strings.
func (t *Table) RowLabels() []string {
	body := t.Body()
	out := make([]string, 0, len(body))

	for _, row := range body {
		if len(row) == 0 {
			out = append(out, "")

			continue
		}

		out = append(out, row[0].String())
	}

	return out
}

// TableSet is everything one run hands to a sink.
type TableSet struct {
	Created time.Time `json:"created" yaml:"created"`
	RunID   string    `json:"run_id"  yaml:"run_id"`
	Source  string    `json:"source"  yaml:"source"`
	Tables  []Table   `json:"tables"  yaml:"tables"`
}

// Table returns the table with the given name.
func (s *TableSet) Table(name string) (*Table, bool) {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i], true
		}
	}

	return nil, false
}

// Sink renders or persists a finished TableSet.
type Sink interface {
	Write(ctx context.Context, set *TableSet) error
}
