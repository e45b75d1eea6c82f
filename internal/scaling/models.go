package scaling

import "github.com/measurelab/scaletab/internal/rasch"

// Cuts are the standard-setting raw-score cuts. Each must exist in the Rasch
// table; approaching and proficient anchor the linear transform, advanced is
// placed by extrapolation.
type Cuts struct {
	Approaching int `json:"approaching"`
	Proficient  int `json:"proficient"`
	Advanced    int `json:"advanced"`
}

// Anchors are the policy-chosen scale scores for the two anchored cuts.
type Anchors struct {
	Approaching float64 `json:"approaching"`
	Proficient  float64 `json:"proficient"`
}

// Constants hold the linear transform scaleScore = Slope*measure + Intercept.
type Constants struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// Level is the ordinal performance classification, 1 through 4.
type Level int

const (
	LevelBelowProficient Level = iota + 1
	LevelApproachingProficient
	LevelProficient
	LevelAdvancedProficient
)

var levelLabels = [...]string{
	"Below Proficient",
	"Approaching Proficient",
	"Proficient",
	"Advanced Proficient",
}

func (l Level) Label() string {
	if l < LevelBelowProficient || l > LevelAdvancedProficient {
		return ""
	}
	return levelLabels[l-1]
}

// Levels returns the fixed four-level taxonomy in reporting order.
func Levels() []Level {
	return []Level{LevelBelowProficient, LevelApproachingProficient, LevelProficient, LevelAdvancedProficient}
}

// Row is one line of the published lookup table: the source score point plus
// its derived scale scores, classification and percentile. Scale-score fields
// stay rasch.Float so extreme raw scores with infinite measures carry ±Inf
// through instead of corrupting an integer conversion.
type Row struct {
	RawScore            int         `json:"raw_score"`
	Frequency           int         `json:"frequency"`
	CumulativeFrequency int         `json:"cumulative_frequency"`
	Measure             rasch.Float `json:"measure"`
	StdErr              rasch.Float `json:"std_err"`

	ScaleScore   rasch.Float `json:"scale_score"`    // 4 decimals; whole points at the advanced cut
	ScaleScoreSE rasch.Float `json:"scale_score_se"` // 4 decimals
	Rounded      rasch.Float `json:"rounded_scale_score"`
	RoundedSE    rasch.Float `json:"rounded_scale_score_se"`

	Level      Level   `json:"performance_level"`
	Label      string  `json:"performance_label"`
	Percentile float64 `json:"percentile"`
}

// Table is the complete raw-score-to-scale-score table. It is built once and
// never mutated afterwards.
type Table struct {
	Constants Constants `json:"constants"`
	Cuts      Cuts      `json:"cuts"`
	Anchors   Anchors   `json:"anchors"`
	// AdvancedAnchor is the extrapolated scale score at the advanced cut,
	// already rounded to whole points.
	AdvancedAnchor float64 `json:"advanced_anchor"`
	Rows           []Row   `json:"rows"`
}

// Row looks up the output row for a raw score, keyed by raw score rather than
// slice position.
func (t *Table) Row(raw int) (Row, bool) {
	if len(t.Rows) == 0 {
		return Row{}, false
	}
	min := t.Rows[0].RawScore
	if raw < min || raw > t.Rows[len(t.Rows)-1].RawScore {
		return Row{}, false
	}
	return t.Rows[raw-min], true
}

// TotalFrequency is the examinee count behind the table.
func (t *Table) TotalFrequency() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return t.Rows[len(t.Rows)-1].CumulativeFrequency
}
