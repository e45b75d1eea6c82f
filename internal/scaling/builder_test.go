package scaling

import (
	"errors"
	"math"
	"testing"

	"github.com/measurelab/scaletab/internal/rasch"
)

// linearTable builds raw scores 10..24 with measures -1.0 + 0.3 per step, so
// raw 20 sits at measure 2.0. Every raw score has two examinees.
func linearTable(t *testing.T) *rasch.Table {
	t.Helper()
	pts := make([]rasch.ScorePoint, 0, 15)
	for k := 0; k <= 14; k++ {
		pts = append(pts, rasch.ScorePoint{
			RawScore:  10 + k,
			Frequency: 2,
			Measure:   rasch.Float(-1.0 + 0.3*float64(k)),
			StdErr:    rasch.Float(0.35),
		})
	}
	tbl, err := rasch.NewTable(pts)
	if err != nil {
		t.Fatalf("build source table: %v", err)
	}
	return tbl
}

var (
	testCuts    = Cuts{Approaching: 12, Proficient: 20, Advanced: 22}
	testAnchors = Anchors{Approaching: 80, Proficient: 100}
)

func TestBuildLinearMeasures(t *testing.T) {
	src := linearTable(t)
	table, err := Build(src, testCuts, testAnchors)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mApp, mProf := -0.4, 2.0
	wantSlope := (100.0 - 80.0) / (mProf - mApp)
	if math.Abs(table.Constants.Slope-wantSlope) > 1e-9 {
		t.Fatalf("slope = %v, want %v", table.Constants.Slope, wantSlope)
	}

	// anchor reproduction at the two anchored cuts, before integer rounding
	row12, _ := table.Row(12)
	if math.Abs(float64(row12.ScaleScore)-80) > 1e-6 {
		t.Fatalf("scale score at approaching cut = %v, want 80", row12.ScaleScore)
	}
	row20, _ := table.Row(20)
	if math.Abs(float64(row20.ScaleScore)-100) > 1e-6 {
		t.Fatalf("scale score at proficient cut = %v, want 100", row20.ScaleScore)
	}

	// monotonicity of the unrounded transform
	for i := 1; i < len(table.Rows); i++ {
		if !(float64(table.Rows[i].ScaleScore) > float64(table.Rows[i-1].ScaleScore)) {
			t.Fatalf("scale score not increasing at raw %d", table.Rows[i].RawScore)
		}
	}

	// levels are a non-decreasing step function with full coverage
	for i, row := range table.Rows {
		if row.Level < LevelBelowProficient || row.Level > LevelAdvancedProficient {
			t.Fatalf("raw %d: level %d out of range", row.RawScore, row.Level)
		}
		if row.Label == "" {
			t.Fatalf("raw %d: missing label", row.RawScore)
		}
		if i > 0 && row.Level < table.Rows[i-1].Level {
			t.Fatalf("level decreased at raw %d", row.RawScore)
		}
	}

	// percentile bounds; maximum raw score reaches exactly 100
	for _, row := range table.Rows {
		if row.Percentile < 0 || row.Percentile > 100 {
			t.Fatalf("raw %d: percentile %v out of bounds", row.RawScore, row.Percentile)
		}
	}
	last := table.Rows[len(table.Rows)-1]
	if last.Percentile != 100 {
		t.Fatalf("percentile at max raw = %v, want 100", last.Percentile)
	}
}

func TestBuildAdvancedOverride(t *testing.T) {
	pts := []rasch.ScorePoint{
		{RawScore: 0, Frequency: 1, Measure: -0.5, StdErr: 0.6},
		{RawScore: 1, Frequency: 3, Measure: 0.0, StdErr: 0.5},
		{RawScore: 2, Frequency: 5, Measure: 1.0, StdErr: 0.5},
		{RawScore: 3, Frequency: 2, Measure: 1.23, StdErr: 0.55},
		{RawScore: 4, Frequency: 1, Measure: 1.8, StdErr: 0.7},
	}
	src, err := rasch.NewTable(pts)
	if err != nil {
		t.Fatalf("source table: %v", err)
	}
	// slope 20, intercept 80: extrapolated advanced = 20*1.23+80 = 104.6 -> 105
	table, err := Build(src, Cuts{Approaching: 1, Proficient: 2, Advanced: 3}, Anchors{Approaching: 80, Proficient: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.AdvancedAnchor != 105 {
		t.Fatalf("advanced anchor = %v, want 105", table.AdvancedAnchor)
	}
	row3, _ := table.Row(3)
	// whole-point override, not the 104.6 bulk value
	if float64(row3.ScaleScore) != 105 {
		t.Fatalf("scale score at advanced cut = %v, want the extrapolated 105", row3.ScaleScore)
	}
	if row3.Level != LevelAdvancedProficient {
		t.Fatalf("advanced cut classified as %d", row3.Level)
	}
}

func TestBuildDegenerateCuts(t *testing.T) {
	src := linearTable(t)
	_, err := Build(src, Cuts{Approaching: 12, Proficient: 12, Advanced: 22}, testAnchors)
	var dse *DegenerateScaleError
	if !errors.As(err, &dse) {
		t.Fatalf("expected DegenerateScaleError, got %v", err)
	}
	if dse.ApproachingCut != 12 || dse.ProficientCut != 12 {
		t.Fatalf("error carries cuts %d/%d", dse.ApproachingCut, dse.ProficientCut)
	}
}

func TestBuildAnchorOrderViolation(t *testing.T) {
	pts := []rasch.ScorePoint{
		{RawScore: 0, Frequency: 1, Measure: 0.0, StdErr: 0.5},
		{RawScore: 1, Frequency: 1, Measure: 1.0, StdErr: 0.5},
		{RawScore: 2, Frequency: 1, Measure: 1.01, StdErr: 0.5},
	}
	src, err := rasch.NewTable(pts)
	if err != nil {
		t.Fatalf("source table: %v", err)
	}
	// extrapolated advanced = 20*1.01+80 = 100.2 -> 100, not above proficient
	_, err = Build(src, Cuts{Approaching: 0, Proficient: 1, Advanced: 2}, Anchors{Approaching: 80, Proficient: 100})
	var ive *InvariantViolationError
	if !errors.As(err, &ive) {
		t.Fatalf("expected InvariantViolationError, got %v", err)
	}
}

func TestBuildEmptyDistribution(t *testing.T) {
	pts := make([]rasch.ScorePoint, 0, 15)
	for k := 0; k <= 14; k++ {
		pts = append(pts, rasch.ScorePoint{
			RawScore: 10 + k,
			Measure:  rasch.Float(-1.0 + 0.3*float64(k)),
			StdErr:   0.35,
		})
	}
	src, err := rasch.NewTable(pts)
	if err != nil {
		t.Fatalf("source table: %v", err)
	}
	table, err := Build(src, testCuts, testAnchors)
	var ede *EmptyDistributionError
	if !errors.As(err, &ede) {
		t.Fatalf("expected EmptyDistributionError, got %v", err)
	}
	if table == nil {
		t.Fatalf("transform columns should still be reported")
	}
	row12, _ := table.Row(12)
	if math.Abs(float64(row12.ScaleScore)-80) > 1e-6 {
		t.Fatalf("transform columns wrong under empty distribution: %v", row12.ScaleScore)
	}
	for _, row := range table.Rows {
		if row.Percentile != 0 {
			t.Fatalf("percentile defined for empty distribution at raw %d", row.RawScore)
		}
	}
}

func TestBuildExtremeMeasures(t *testing.T) {
	pts := []rasch.ScorePoint{
		{RawScore: 0, Frequency: 1, Measure: rasch.Float(math.Inf(-1)), StdErr: rasch.Float(math.Inf(1))},
		{RawScore: 1, Frequency: 2, Measure: -1.0, StdErr: 0.8},
		{RawScore: 2, Frequency: 4, Measure: 0.0, StdErr: 0.6},
		{RawScore: 3, Frequency: 4, Measure: 1.0, StdErr: 0.6},
		{RawScore: 4, Frequency: 2, Measure: 2.0, StdErr: 0.8},
		{RawScore: 5, Frequency: 1, Measure: rasch.Float(math.Inf(1)), StdErr: rasch.Float(math.Inf(1))},
	}
	src, err := rasch.NewTable(pts)
	if err != nil {
		t.Fatalf("source table: %v", err)
	}
	table, err := Build(src, Cuts{Approaching: 2, Proficient: 3, Advanced: 4}, Anchors{Approaching: 80, Proficient: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bottom, _ := table.Row(0)
	if !math.IsInf(float64(bottom.ScaleScore), -1) || bottom.Level != LevelBelowProficient {
		t.Fatalf("bottom extreme: scale %v level %d", bottom.ScaleScore, bottom.Level)
	}
	top, _ := table.Row(5)
	if !math.IsInf(float64(top.ScaleScore), 1) || top.Level != LevelAdvancedProficient {
		t.Fatalf("top extreme: scale %v level %d", top.ScaleScore, top.Level)
	}
	if top.Percentile != 100 {
		t.Fatalf("top extreme percentile = %v", top.Percentile)
	}
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	cases := []struct {
		in     float64
		places int
		want   float64
	}{
		{0.5, 0, 1},
		{1.5, 0, 2},
		{2.5, 0, 3},
		{-0.5, 0, -1},
		{-2.5, 0, -3},
		{2.25, 1, 2.3},
		{-2.25, 1, -2.3},
	}
	for _, c := range cases {
		if got := roundTo(c.in, c.places); got != c.want {
			t.Fatalf("roundTo(%v, %d) = %v, want %v", c.in, c.places, got, c.want)
		}
	}
	if !math.IsInf(roundTo(math.Inf(1), 0), 1) {
		t.Fatalf("roundTo should pass +Inf through")
	}
}
