package scaling

// ImpactRow is the frequency-weighted share of examinees in one performance
// level.
type ImpactRow struct {
	Level   Level   `json:"level"`
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"` // of total frequency, 2 decimals
}

// Impact groups the table by performance level and reports each level's share
// of the population. Rows follow the fixed four-level taxonomy order, levels
// with no examinees included. Because each percentage is rounded
// independently, the four shares sum to 100 only within rounding tolerance.
func (t *Table) Impact() ([]ImpactRow, error) {
	total := 0
	counts := map[Level]int{}
	for _, r := range t.Rows {
		total += r.Frequency
		counts[r.Level] += r.Frequency
	}
	if total == 0 {
		return nil, &EmptyDistributionError{}
	}
	out := make([]ImpactRow, 0, 4)
	for _, lvl := range Levels() {
		n := counts[lvl]
		out = append(out, ImpactRow{
			Level:   lvl,
			Label:   lvl.Label(),
			Count:   n,
			Percent: roundTo(float64(n)/float64(total)*100, 2),
		})
	}
	return out, nil
}
