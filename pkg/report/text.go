package report

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TextSink renders every table as a terminal table.
type TextSink struct {
	W       io.Writer
	Heat    HeatScale
	NoColor bool
}

// Write implements Sink.
func (s *TextSink) Write(_ context.Context, set *TableSet) error {
	for i := range set.Tables {
		out := s.render(&set.Tables[i])

		_, err := fmt.Fprintf(s.W, "%s\n\n", out)
		if err != nil {
			return fmt.Errorf("write table %s: %w", set.Tables[i].Name, err)
		}
	}

	return nil
}

func (s *TextSink) render(t *Table) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.SetTitle(t.Name)

	header := t.Header()
	if len(header) > 0 {
		row := make(table.Row, len(header))
		for i, c := range header {
			row[i] = c.String()
		}

		if row[0] == "" {
			row[0] = t.AxisTitle
		}

		tbl.AppendHeader(row)
	}

	maxValue := t.MaxValue()

	for _, cells := range t.Body() {
		row := make(table.Row, len(cells))

		for i, c := range cells {
			row[i] = s.cell(t, c, i, maxValue)
		}

		tbl.AppendRow(row)
	}

	configs := make([]table.ColumnConfig, 0, len(header))
	for i := 1; i < len(header); i++ {
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight})
	}

	tbl.SetColumnConfigs(configs)

	return tbl.Render()
}

func (s *TextSink) cell(t *Table, c Cell, col int, maxValue float64) string {
	if !t.HeatMap || s.NoColor || col == 0 || !c.IsNumber {
		return c.String()
	}

	rgb := s.Heat.Color(c.Number, maxValue)
	painter := color.BgRGB(int(rgb.R), int(rgb.G), int(rgb.B)).AddRGB(0, 0, 0)
	painter.EnableColor()

	return painter.Sprint(c.String())
}
