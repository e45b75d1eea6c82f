package http

import (
	"bytes"
	"fmt"
	"math"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/measurelab/scaletab/internal/scaling"
)

// GET /tables/{tableID}/charts/impact — bar chart of the performance-level
// distribution, rendered as a standalone HTML page.
func ImpactChartHandler(store scaling.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := fetchTable(w, r, store)
		if !ok {
			return
		}
		rows, err := rec.Table.Impact()
		if err != nil {
			http.Error(w, "impact: "+err.Error(), http.StatusUnprocessableEntity)
			return
		}

		bar := ImpactChart(rec.Name, rows)
		var buf bytes.Buffer
		if err := bar.Render(&buf); err != nil {
			http.Error(w, "render chart: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	}
}

// ImpactChart builds the impact bar chart; the CLI reuses it for file output.
func ImpactChart(name string, rows []scaling.ImpactRow) *charts.Bar {
	x := make([]string, 0, len(rows))
	y := make([]opts.BarData, 0, len(rows))
	for _, ir := range rows {
		x = append(x, ir.Label)
		y = append(y, opts.BarData{Value: ir.Percent})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Impact Data", Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Performance-Level Impact", Subtitle: name}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "% of examinees"}),
	)
	bar.SetXAxis(x).
		AddSeries("impact", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

// GET /tables/{tableID}/charts/scale — line chart of raw score against the
// rounded scale score. Rows with non-finite scale scores (extreme raw scores
// with infinite measures) are skipped.
func ScaleChartHandler(store scaling.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := fetchTable(w, r, store)
		if !ok {
			return
		}

		x := make([]string, 0, len(rec.Table.Rows))
		y := make([]opts.LineData, 0, len(rec.Table.Rows))
		for _, row := range rec.Table.Rows {
			v := float64(row.Rounded)
			if math.IsInf(v, 0) || math.IsNaN(v) {
				continue
			}
			x = append(x, fmt.Sprintf("%d", row.RawScore))
			y = append(y, opts.LineData{Value: v})
		}

		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{PageTitle: "Scale Scores", Width: "900px", Height: "600px"}),
			charts.WithTitleOpts(opts.Title{
				Title:    "Raw Score to Scale Score",
				Subtitle: fmt.Sprintf("%s (slope=%.4f intercept=%.4f)", rec.Name, rec.Table.Constants.Slope, rec.Table.Constants.Intercept),
			}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
			charts.WithXAxisOpts(opts.XAxis{Name: "raw score"}),
			charts.WithYAxisOpts(opts.YAxis{Name: "scale score"}),
		)
		line.SetXAxis(x).AddSeries("scale score", y)

		var buf bytes.Buffer
		if err := line.Render(&buf); err != nil {
			http.Error(w, "render chart: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	}
}
