package util

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"occupancy-forecaster/models"
)

// PlotPredictionCurve renders curve as an HTML line chart into w.
func PlotPredictionCurve(curve models.PredictionCurve, title string, w io.Writer) error {
	keys := curve.Keys()
	points := make([]opts.LineData, 0, len(keys))
	for _, key := range keys {
		points = append(points, opts.LineData{Value: curve[key]})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Theme:     types.ThemeWesteros,
			Width:     "1000px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		// Occupancy is a percentage.
		charts.WithYAxisOpts(opts.YAxis{Name: "occupancy %", Min: 0, Max: 100}),
	)

	line.SetXAxis(keys).AddSeries("forecast", points,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
	)

	return line.Render(w)
}
