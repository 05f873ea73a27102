package report

import (
	"context"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Plot layout.
const (
	plotWidth        = "100%"
	plotHeight       = "500px"
	heatMapHeight    = "700px"
	fullZoomPct      = 100
	rotatedLabelDeg  = 45
	themeDark        = "dark"
	pageTitle        = "UI log statistics"
	heatSeriesName   = "Count"
	logAxisType      = "log"
	categoryAxisType = "category"
)

// PlotSink renders the table set as an interactive HTML page: one bar chart
// per table, heat-mapped tables as heatmaps.
type PlotSink struct {
	W     io.Writer
	Theme string
	Heat  HeatScale
}

// Write implements Sink.
func (s *PlotSink) Write(_ context.Context, set *TableSet) error {
	page := components.NewPage()
	page.PageTitle = pageTitle

	for i := range set.Tables {
		t := &set.Tables[i]
		if len(t.Body()) == 0 {
			continue
		}

		if t.HeatMap {
			page.AddCharts(s.heatMap(t))

			continue
		}

		page.AddCharts(s.bar(t))
	}

	err := page.Render(s.W)
	if err != nil {
		return fmt.Errorf("render plot page: %w", err)
	}

	return nil
}

func (s *PlotSink) init(height string) opts.Initialization {
	init := opts.Initialization{Width: plotWidth, Height: height}
	if s.Theme == themeDark {
		init.Theme = themeDark
	}

	return init
}

func (s *PlotSink) bar(t *Table) *charts.Bar {
	bar := charts.NewBar()

	xAxis := opts.XAxis{Name: t.AxisTitle, AxisLabel: &opts.AxisLabel{Interval: "0"}}
	if t.RotateHeader {
		xAxis.AxisLabel.Rotate = rotatedLabelDeg
	}

	yAxis := opts.YAxis{}
	if t.LogScale {
		yAxis.Type = logAxisType
	}

	bar.SetGlobalOptions(
		charts.WithInitializationOpts(s.init(plotHeight)),
		charts.WithTitleOpts(opts.Title{Title: t.Name}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: fullZoomPct}),
		charts.WithXAxisOpts(xAxis),
		charts.WithYAxisOpts(yAxis),
	)

	bar.SetXAxis(t.RowLabels())

	for col, name := range t.Labels() {
		data := make([]opts.BarData, 0, len(t.Body()))

		for _, row := range t.Body() {
			idx := col + 1
			if idx >= len(row) || !row[idx].IsNumber {
				data = append(data, opts.BarData{Value: "-"})

				continue
			}

			data = append(data, opts.BarData{Value: row[idx].Number})
		}

		bar.AddSeries(name, data)
	}

	return bar
}

func (s *PlotSink) heatMap(t *Table) *charts.HeatMap {
	cols := t.Labels()
	rows := t.RowLabels()
	maxValue := t.MaxValue()

	xAxis := opts.XAxis{
		Type:      categoryAxisType,
		Data:      cols,
		SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		AxisLabel: &opts.AxisLabel{Interval: "0"},
	}
	if t.RotateHeader {
		xAxis.AxisLabel.Rotate = rotatedLabelDeg
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(s.init(heatMapHeight)),
		charts.WithTitleOpts(opts.Title{Title: t.Name, Subtitle: t.AxisTitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(xAxis),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      categoryAxisType,
			Data:      rows,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxValue),
			InRange: &opts.VisualMapInRange{Color: []string{
				s.Heat.Color(0, maxValue).Hex(),
				s.Heat.Color(maxValue/2, maxValue).Hex(),
				s.Heat.Color(maxValue, maxValue).Hex(),
			}},
		}),
	)

	data := make([]opts.HeatMapData, 0, len(rows)*len(cols))

	for y, row := range t.Body() {
		for x := range cols {
			idx := x + 1
			if idx >= len(row) || !row[idx].IsNumber {
				continue
			}

			data = append(data, opts.HeatMapData{Value: []any{x, y, row[idx].Number}})
		}
	}

	hm.AddSeries(heatSeriesName, data)

	return hm
}
