package scaling

import (
	"fmt"
	"math"

	"github.com/measurelab/scaletab/internal/rasch"
)

// Build constructs the raw-score-to-scale-score table from a validated Rasch
// table, the three standard-setting cuts and the two policy anchors.
//
// The transform is anchored by linear interpolation between the approaching
// and proficient cuts. The advanced cut's scale score is then set by
// extrapolation and rounded to whole points; that whole-point value overrides
// the 4-decimal bulk transform at that one raw score. Standard-setting
// practice treats the advanced anchor as policy-set, so the precision loss is
// deliberate.
//
// When the total frequency is zero, Build returns the table with zero
// percentiles together with an *EmptyDistributionError: the transform columns
// are still valid, the population columns are not.
func Build(src *rasch.Table, cuts Cuts, anchors Anchors) (*Table, error) {
	app, ok := src.Point(cuts.Approaching)
	if !ok {
		return nil, fmt.Errorf("scaling: approaching cut %d not in score table", cuts.Approaching)
	}
	prof, ok := src.Point(cuts.Proficient)
	if !ok {
		return nil, fmt.Errorf("scaling: proficient cut %d not in score table", cuts.Proficient)
	}
	adv, ok := src.Point(cuts.Advanced)
	if !ok {
		return nil, fmt.Errorf("scaling: advanced cut %d not in score table", cuts.Advanced)
	}
	if !(anchors.Approaching < anchors.Proficient) {
		return nil, fmt.Errorf("scaling: anchors must increase: approaching %g, proficient %g",
			anchors.Approaching, anchors.Proficient)
	}

	mApp := float64(app.Measure)
	mProf := float64(prof.Measure)
	// Equal cut raw scores collapse to the same measure, so this check also
	// covers cuts.Approaching == cuts.Proficient.
	if mProf == mApp {
		return nil, &DegenerateScaleError{
			ApproachingCut: cuts.Approaching,
			ProficientCut:  cuts.Proficient,
			Measure:        mApp,
		}
	}
	if !(cuts.Approaching < cuts.Proficient && cuts.Proficient < cuts.Advanced) {
		return nil, fmt.Errorf("scaling: cuts must increase: %d, %d, %d",
			cuts.Approaching, cuts.Proficient, cuts.Advanced)
	}
	if !isFinite(mApp) || !isFinite(mProf) {
		return nil, fmt.Errorf("scaling: anchored cuts must have finite measures")
	}

	slope := (anchors.Proficient - anchors.Approaching) / (mProf - mApp)
	intercept := anchors.Proficient - slope*mProf
	consts := Constants{Slope: slope, Intercept: intercept}

	advAnchor := roundTo(slope*float64(adv.Measure)+intercept, 0)
	if !(anchors.Proficient < advAnchor) {
		return nil, &InvariantViolationError{
			Approaching: anchors.Approaching,
			Proficient:  anchors.Proficient,
			Advanced:    advAnchor,
		}
	}

	rows := make([]Row, 0, len(src.Points))
	for _, p := range src.Points {
		ss := roundTo(slope*float64(p.Measure)+intercept, 4)
		if p.RawScore == cuts.Advanced {
			ss = advAnchor
		}
		sse := roundTo(slope*float64(p.StdErr), 4)
		rounded := roundTo(ss, 0)
		lvl := classify(rounded, anchors, advAnchor)
		rows = append(rows, Row{
			RawScore:            p.RawScore,
			Frequency:           p.Frequency,
			CumulativeFrequency: p.CumulativeFrequency,
			Measure:             p.Measure,
			StdErr:              p.StdErr,
			ScaleScore:          rasch.Float(ss),
			ScaleScoreSE:        rasch.Float(sse),
			Rounded:             rasch.Float(rounded),
			RoundedSE:           rasch.Float(roundTo(sse, 0)),
			Level:               lvl,
			Label:               lvl.Label(),
		})
	}

	table := &Table{
		Constants:      consts,
		Cuts:           cuts,
		Anchors:        anchors,
		AdvancedAnchor: advAnchor,
		Rows:           rows,
	}

	total := table.TotalFrequency()
	if total == 0 {
		return table, &EmptyDistributionError{}
	}
	for i := range rows {
		rows[i].Percentile = roundTo(float64(rows[i].CumulativeFrequency)/float64(total)*100, 0)
	}
	return table, nil
}

// classify places a rounded scale score into the four-level taxonomy using
// half-open intervals against the scale-score anchors. Anchor ordering is
// validated before any row is classified, so the switch is total.
func classify(score float64, anchors Anchors, advanced float64) Level {
	switch {
	case score < anchors.Approaching:
		return LevelBelowProficient
	case score < anchors.Proficient:
		return LevelApproachingProficient
	case score < advanced:
		return LevelProficient
	default:
		return LevelAdvancedProficient
	}
}

// roundTo rounds half away from zero at the given number of decimal places,
// matching math.Round. The host R convention of round-half-to-even is NOT
// reproduced; the chosen mode is pinned by TestRoundHalfAwayFromZero.
// Non-finite values pass through unchanged.
func roundTo(x float64, places int) float64 {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return x
	}
	pow := math.Pow(10, float64(places))
	return math.Round(x*pow) / pow
}

func isFinite(x float64) bool {
	return !math.IsInf(x, 0) && !math.IsNaN(x)
}
