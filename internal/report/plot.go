package report

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	chartWidth  = "100%"
	chartHeight = "500px"
	xAxisRotate = 45

	colorGood = "#91cc75"
	colorFair = "#fac858"
	colorPoor = "#ee6666"
)

// encodePlot renders an HTML page with per-class LCOM and TCC bar charts.
func encodePlot(r *Report) ([]byte, error) {
	labels := plotLabels(r.Rows)

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Class metrics: %s", r.Repo)
	page.AddCharts(lcomChart(labels, r.Rows), tccChart(labels, r.Rows))

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("rendering plot: %w", err)
	}
	return buf.Bytes(), nil
}

// plotLabels names bars by class, qualifying names that occur more than once.
func plotLabels(rows []Row) []string {
	seen := make(map[string]int, len(rows))
	for _, row := range rows {
		seen[row.Class]++
	}
	labels := make([]string, len(rows))
	for i, row := range rows {
		labels[i] = row.Class
		if seen[row.Class] > 1 {
			labels[i] = row.Class + " (" + row.Filename + ")"
		}
	}
	return labels
}

func newBar(title, subtitle, yName string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: xAxisRotate, Interval: "0"},
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
	)
	return bar
}

func lcomChart(labels []string, rows []Row) *charts.Bar {
	bar := newBar("LCOM", "Lack of cohesion: disjoint minus shared method pairs", "LCOM")
	data := make([]opts.BarData, len(rows))
	for i, row := range rows {
		data[i] = opts.BarData{Value: row.LCOM}
	}
	bar.SetXAxis(labels).AddSeries("LCOM", data)
	return bar
}

func tccChart(labels []string, rows []Row) *charts.Bar {
	bar := newBar("TCC", "Tight class cohesion: share of method pairs using a common attribute", "TCC")
	data := make([]opts.BarData, len(rows))
	for i, row := range rows {
		data[i] = opts.BarData{
			Value:     row.TCC,
			ItemStyle: &opts.ItemStyle{Color: tccColor(row.TCC)},
		}
	}
	bar.SetXAxis(labels).AddSeries("TCC", data)
	return bar
}

func tccColor(v float64) string {
	switch {
	case v >= tccHigh:
		return colorGood
	case v >= tccMedium:
		return colorFair
	default:
		return colorPoor
	}
}
