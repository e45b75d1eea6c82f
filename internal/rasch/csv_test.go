package rasch

import (
	"math"
	"strings"
	"testing"
)

const sampleCSV = `Score,Count,Measure,S.E.
0,1,-Inf,Inf
1,4,-2.10,0.95
2,10,-1.05,0.78
3,6,0.12,0.74
4,3,1.33,0.81
5,2,Inf,Inf
`

func TestParseCSV(t *testing.T) {
	tbl, err := ParseCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tbl.Min() != 0 || tbl.Max() != 5 {
		t.Fatalf("range = [%d, %d], want [0, 5]", tbl.Min(), tbl.Max())
	}
	if tbl.TotalFrequency() != 26 {
		t.Fatalf("total frequency = %d, want 26", tbl.TotalFrequency())
	}
	p, ok := tbl.Point(2)
	if !ok {
		t.Fatalf("point 2 missing")
	}
	if p.Frequency != 10 || p.CumulativeFrequency != 15 {
		t.Fatalf("point 2 = %+v", p)
	}
	if float64(p.Measure) != -1.05 {
		t.Fatalf("point 2 measure = %v", p.Measure)
	}
	bottom, _ := tbl.Point(0)
	if !math.IsInf(float64(bottom.Measure), -1) {
		t.Fatalf("extreme low measure = %v, want -Inf", bottom.Measure)
	}
	top, _ := tbl.Point(5)
	if !math.IsInf(float64(top.Measure), 1) || !math.IsInf(float64(top.StdErr), 1) {
		t.Fatalf("extreme high = %+v", top)
	}
}

func TestParseCSVHeaderAliases(t *testing.T) {
	in := "raw_score,frequency,logit,se,cum_freq\n1,2,-0.5,0.6,2\n2,3,0.5,0.6,5\n"
	tbl, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tbl.TotalFrequency() != 5 {
		t.Fatalf("total = %d", tbl.TotalFrequency())
	}
}

func TestParseCSVMissingColumn(t *testing.T) {
	in := "score,count,measure\n1,2,-0.5\n"
	if _, err := ParseCSV(strings.NewReader(in)); err == nil || !strings.Contains(err.Error(), "std_err") {
		t.Fatalf("expected missing-column error, got %v", err)
	}
}

func TestParseCSVCumulativeMismatch(t *testing.T) {
	in := "score,count,measure,se,cum_freq\n1,2,-0.5,0.6,2\n2,3,0.5,0.6,4\n"
	if _, err := ParseCSV(strings.NewReader(in)); err == nil || !strings.Contains(err.Error(), "cumulative") {
		t.Fatalf("expected cumulative mismatch error, got %v", err)
	}
}
