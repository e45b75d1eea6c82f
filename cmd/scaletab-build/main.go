// scaletab-build runs the scaling computation offline: read a calibration
// score table from CSV, build the raw-score-to-scale-score table, and print
// it with the impact summary. No server, no database.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"text/tabwriter"

	api "github.com/measurelab/scaletab/internal/api/http"
	"github.com/measurelab/scaletab/internal/rasch"
	"github.com/measurelab/scaletab/internal/scaling"
)

func main() {
	var (
		input       = flag.String("input", "", "calibration score table CSV (required)")
		approaching = flag.Int("approaching-cut", 0, "approaching raw-score cut (required)")
		proficient  = flag.Int("proficient-cut", 0, "proficient raw-score cut (required)")
		advanced    = flag.Int("advanced-cut", 0, "advanced raw-score cut (required)")
		appScale    = flag.Float64("approaching-scale", 0, "approaching scale-score anchor (required)")
		profScale   = flag.Float64("proficient-scale", 0, "proficient scale-score anchor (required)")
		impactChart = flag.String("impact-chart", "", "optional path for an impact chart HTML file")
	)
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("open input: %v", err)
	}
	src, err := rasch.ParseCSV(f)
	f.Close()
	if err != nil {
		log.Fatalf("parse input: %v", err)
	}

	cuts := scaling.Cuts{Approaching: *approaching, Proficient: *proficient, Advanced: *advanced}
	anchors := scaling.Anchors{Approaching: *appScale, Proficient: *profScale}

	table, err := scaling.Build(src, cuts, anchors)
	if err != nil {
		log.Fatalf("build table: %v", err)
	}

	fmt.Printf("slope=%.6f intercept=%.6f advanced anchor=%.0f\n\n",
		table.Constants.Slope, table.Constants.Intercept, table.AdvancedAnchor)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "raw\tfreq\tcum\tmeasure\tSE\tscale\tscale SE\trounded\trounded SE\tlevel\tlabel\tpctile")
	for _, row := range table.Rows {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\t%.0f\n",
			row.RawScore, row.Frequency, row.CumulativeFrequency,
			ff(float64(row.Measure)), ff(float64(row.StdErr)),
			ff(float64(row.ScaleScore)), ff(float64(row.ScaleScoreSE)),
			ff(float64(row.Rounded)), ff(float64(row.RoundedSE)),
			row.Level, row.Label, row.Percentile)
	}
	tw.Flush()

	impact, err := table.Impact()
	if err != nil {
		log.Fatalf("impact: %v", err)
	}
	fmt.Println("\nimpact data:")
	for _, ir := range impact {
		fmt.Printf("  %-24s %6d  %6.2f%%\n", ir.Label, ir.Count, ir.Percent)
	}

	band, err := table.CutAlignedBand()
	if err != nil {
		log.Printf("cut-aligned target band unavailable: %v", err)
	} else {
		fmt.Printf("\ncut-aligned target band: [%.4f, %.4f] (center %.4f, half-width %.4f)\n",
			band.Low, band.High, band.Center, band.HalfWidth)
	}

	if *impactChart != "" {
		out, err := os.Create(*impactChart)
		if err != nil {
			log.Fatalf("create chart file: %v", err)
		}
		defer out.Close()
		if err := api.ImpactChart(*input, impact).Render(out); err != nil {
			log.Fatalf("render chart: %v", err)
		}
	}
}

func ff(v float64) string {
	if math.IsInf(v, 1) {
		return "Inf"
	}
	if math.IsInf(v, -1) {
		return "-Inf"
	}
	return fmt.Sprintf("%.4f", v)
}
