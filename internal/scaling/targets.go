package scaling

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Band is a symmetric logit interval used when assembling future forms: item
// difficulties inside the band keep the form aligned with its target.
type Band struct {
	Center    float64 `json:"center"`
	HalfWidth float64 `json:"half_width"`
	Low       float64 `json:"low"`
	High      float64 `json:"high"`
}

// halfWidthAt measures half the logit gap between the rows one raw-score step
// either side of raw. Both neighbours must exist; the extreme raw scores have
// no usable band.
func (t *Table) halfWidthAt(raw int) (float64, error) {
	lower, ok := t.Row(raw - 1)
	if !ok {
		return 0, fmt.Errorf("scaling: raw score %d has no lower neighbour for band estimation", raw)
	}
	upper, ok := t.Row(raw + 1)
	if !ok {
		return 0, fmt.Errorf("scaling: raw score %d has no upper neighbour for band estimation", raw)
	}
	lo, hi := float64(lower.Measure), float64(upper.Measure)
	if !isFinite(lo) || !isFinite(hi) {
		return 0, fmt.Errorf("scaling: neighbours of raw score %d have non-finite measures", raw)
	}
	return (hi - lo) / 2, nil
}

// PoolBand targets future-form difficulty at the current item pool: the band
// is centered on the mean item difficulty and sized by the measure gap around
// the table row nearest that mean.
func (t *Table) PoolBand(itemMeasures []float64) (Band, error) {
	if len(itemMeasures) == 0 {
		return Band{}, fmt.Errorf("scaling: no item measures supplied")
	}
	mean := stat.Mean(itemMeasures, nil)
	if !isFinite(mean) {
		return Band{}, fmt.Errorf("scaling: item measures have non-finite mean")
	}

	nearest, found := 0, false
	best := math.Inf(1)
	for _, r := range t.Rows {
		m := float64(r.Measure)
		if !isFinite(m) {
			continue
		}
		if d := math.Abs(m - mean); d < best {
			best, nearest, found = d, r.RawScore, true
		}
	}
	if !found {
		return Band{}, fmt.Errorf("scaling: no finite measures in table")
	}

	half, err := t.halfWidthAt(nearest)
	if err != nil {
		return Band{}, err
	}
	return Band{Center: mean, HalfWidth: half, Low: mean - half, High: mean + half}, nil
}

// CutAlignedBand targets future-form difficulty at the standard-setting cuts
// instead of the item pool: the half-width is the average of the per-cut
// half-widths and the band is centered on the mean cut measure.
func (t *Table) CutAlignedBand() (Band, error) {
	cutScores := []int{t.Cuts.Approaching, t.Cuts.Proficient, t.Cuts.Advanced}
	measures := make([]float64, 0, len(cutScores))
	halves := make([]float64, 0, len(cutScores))
	for _, raw := range cutScores {
		row, ok := t.Row(raw)
		if !ok {
			return Band{}, fmt.Errorf("scaling: cut %d not in table", raw)
		}
		half, err := t.halfWidthAt(raw)
		if err != nil {
			return Band{}, err
		}
		measures = append(measures, float64(row.Measure))
		halves = append(halves, half)
	}
	center := stat.Mean(measures, nil)
	half := stat.Mean(halves, nil)
	return Band{Center: center, HalfWidth: half, Low: center - half, High: center + half}, nil
}
