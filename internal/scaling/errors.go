package scaling

import "fmt"

// DegenerateScaleError reports that the two anchored cuts share a single
// ability estimate, so no linear transform exists. This is a data-quality
// failure in the calibration, not something to recover from.
type DegenerateScaleError struct {
	ApproachingCut int
	ProficientCut  int
	Measure        float64
}

func (e *DegenerateScaleError) Error() string {
	return fmt.Sprintf("scaling: cuts %d and %d map to the same measure %g; transform is degenerate",
		e.ApproachingCut, e.ProficientCut, e.Measure)
}

// InvariantViolationError reports that the three scale-score anchors are not
// strictly increasing after the advanced cut is extrapolated. It indicates a
// policy or configuration error upstream.
type InvariantViolationError struct {
	Approaching float64
	Proficient  float64
	Advanced    float64
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("scaling: anchors not strictly increasing: %g, %g, %g (extrapolated)",
		e.Approaching, e.Proficient, e.Advanced)
}

// EmptyDistributionError reports a zero total frequency. Percentiles and
// impact data are undefined for an empty population; the transform itself is
// still well-defined.
type EmptyDistributionError struct{}

func (e *EmptyDistributionError) Error() string {
	return "scaling: total frequency is zero; percentiles undefined"
}
