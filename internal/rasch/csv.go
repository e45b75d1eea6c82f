package rasch

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Column names vary by calibration tool (Winsteps score tables, jMetrik
// exports, hand-built spreadsheets). Each alias maps to one of the canonical
// columns; matching is case-insensitive.
var headerAliases = map[string]string{
	"raw_score": "raw_score",
	"rawscore":  "raw_score",
	"raw":       "raw_score",
	"score":     "raw_score",

	"frequency": "frequency",
	"freq":      "frequency",
	"count":     "frequency",

	"measure": "measure",
	"logit":   "measure",
	"theta":   "measure",

	"std_err": "std_err",
	"stderr":  "std_err",
	"se":      "std_err",
	"s.e.":    "std_err",
	"error":   "std_err",

	"cumulative_frequency": "cumulative",
	"cumulative":           "cumulative",
	"cum_freq":             "cumulative",
	"cumfreq":              "cumulative",
}

// ParseCSV reads a calibration score table. Raw score, frequency, measure and
// standard error columns are required; a cumulative-frequency column is
// optional (it is recomputed and cross-checked by NewTable either way).
// Measures of "Inf"/"-Inf" are accepted for the extreme raw scores.
func ParseCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("rasch: read csv header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if canon, ok := headerAliases[key]; ok {
			if _, dup := cols[canon]; dup {
				return nil, fmt.Errorf("rasch: duplicate column %q in csv header", canon)
			}
			cols[canon] = i
		}
	}
	for _, required := range []string{"raw_score", "frequency", "measure", "std_err"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("rasch: csv header is missing a %s column", required)
		}
	}

	var points []ScorePoint
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("rasch: read csv line %d: %w", line, err)
		}
		p, err := parseRecord(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("rasch: csv line %d: %w", line, err)
		}
		points = append(points, p)
	}
	return NewTable(points)
}

func parseRecord(rec []string, cols map[string]int) (ScorePoint, error) {
	var p ScorePoint

	raw, err := intField(rec, cols["raw_score"], "raw score")
	if err != nil {
		return p, err
	}
	freq, err := intField(rec, cols["frequency"], "frequency")
	if err != nil {
		return p, err
	}
	measure, err := floatField(rec, cols["measure"], "measure")
	if err != nil {
		return p, err
	}
	se, err := floatField(rec, cols["std_err"], "standard error")
	if err != nil {
		return p, err
	}
	p = ScorePoint{RawScore: raw, Frequency: freq, Measure: Float(measure), StdErr: Float(se)}

	if idx, ok := cols["cumulative"]; ok {
		cum, err := intField(rec, idx, "cumulative frequency")
		if err != nil {
			return p, err
		}
		p.CumulativeFrequency = cum
	}
	return p, nil
}

func intField(rec []string, idx int, name string) (int, error) {
	if idx >= len(rec) {
		return 0, fmt.Errorf("missing %s field", name)
	}
	v, err := strconv.Atoi(strings.TrimSpace(rec[idx]))
	if err != nil {
		return 0, fmt.Errorf("bad %s %q", name, rec[idx])
	}
	return v, nil
}

func floatField(rec []string, idx int, name string) (float64, error) {
	if idx >= len(rec) {
		return 0, fmt.Errorf("missing %s field", name)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(rec[idx]), 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s %q", name, rec[idx])
	}
	return v, nil
}
