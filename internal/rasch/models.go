package rasch

import (
	"fmt"
	"math"
	"sort"
)

// ScorePoint is one row of a Rasch calibration score table: an attainable raw
// score with its examinee frequency and latent-ability estimate in logits.
// Calibration tools report the extreme raw scores (minimum and maximum
// obtainable) with infinite measures unless an extreme-score correction is
// applied; both forms are accepted here.
type ScorePoint struct {
	RawScore            int   `json:"raw_score"`
	Frequency           int   `json:"frequency"`
	CumulativeFrequency int   `json:"cumulative_frequency"`
	Measure             Float `json:"measure"` // logits
	StdErr              Float `json:"std_err"` // logits; Inf at the extremes
}

// Table is a validated raw-score table: one point per integer raw score,
// contiguous from minimum to maximum, with strictly increasing measures.
type Table struct {
	Points []ScorePoint `json:"points"`
}

// NewTable validates and normalizes calibration output. Points may arrive in
// any order. Cumulative frequencies are recomputed as a prefix sum over
// ascending raw score; if the input carried its own cumulative column it must
// agree with the recomputed values.
func NewTable(points []ScorePoint) (*Table, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("rasch: score table is empty")
	}
	pts := make([]ScorePoint, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool { return pts[i].RawScore < pts[j].RawScore })

	hadCumulative := false
	for _, p := range pts {
		if p.CumulativeFrequency != 0 {
			hadCumulative = true
			break
		}
	}

	cum := 0
	for i := range pts {
		p := pts[i]
		if i > 0 {
			prev := pts[i-1]
			if p.RawScore == prev.RawScore {
				return nil, fmt.Errorf("rasch: duplicate raw score %d", p.RawScore)
			}
			if p.RawScore != prev.RawScore+1 {
				return nil, fmt.Errorf("rasch: raw scores not contiguous: gap between %d and %d", prev.RawScore, p.RawScore)
			}
			if !(float64(p.Measure) > float64(prev.Measure)) {
				return nil, fmt.Errorf("rasch: measure not strictly increasing at raw score %d", p.RawScore)
			}
		}
		if math.IsNaN(float64(p.Measure)) {
			return nil, fmt.Errorf("rasch: measure is NaN at raw score %d", p.RawScore)
		}
		if p.Frequency < 0 {
			return nil, fmt.Errorf("rasch: negative frequency at raw score %d", p.RawScore)
		}
		if float64(p.StdErr) < 0 {
			return nil, fmt.Errorf("rasch: negative standard error at raw score %d", p.RawScore)
		}
		cum += p.Frequency
		if hadCumulative && p.CumulativeFrequency != cum {
			return nil, fmt.Errorf("rasch: cumulative frequency mismatch at raw score %d: have %d, want %d", p.RawScore, p.CumulativeFrequency, cum)
		}
		pts[i].CumulativeFrequency = cum
	}
	return &Table{Points: pts}, nil
}

// Min returns the lowest attainable raw score.
func (t *Table) Min() int { return t.Points[0].RawScore }

// Max returns the highest attainable raw score.
func (t *Table) Max() int { return t.Points[len(t.Points)-1].RawScore }

// TotalFrequency is the examinee count across all raw scores.
func (t *Table) TotalFrequency() int {
	return t.Points[len(t.Points)-1].CumulativeFrequency
}

// Point looks up the row for a raw score. The contiguity invariant makes the
// lookup a bounds-checked offset rather than a search.
func (t *Table) Point(raw int) (ScorePoint, bool) {
	if raw < t.Min() || raw > t.Max() {
		return ScorePoint{}, false
	}
	return t.Points[raw-t.Min()], true
}
