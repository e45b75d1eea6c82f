package scaling

import (
	"math"
	"strings"
	"testing"
)

func builtLinearTable(t *testing.T) *Table {
	t.Helper()
	table, err := Build(linearTable(t), testCuts, testAnchors)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return table
}

func TestPoolBand(t *testing.T) {
	table := builtLinearTable(t)

	// mean difficulty 0.5 sits exactly on raw 15; neighbours are 0.3 apart
	band, err := table.PoolBand([]float64{0.2, 0.5, 0.8})
	if err != nil {
		t.Fatalf("pool band: %v", err)
	}
	if math.Abs(band.Center-0.5) > 1e-9 {
		t.Fatalf("center = %v, want 0.5", band.Center)
	}
	if math.Abs(band.HalfWidth-0.3) > 1e-9 {
		t.Fatalf("half-width = %v, want 0.3", band.HalfWidth)
	}
	if math.Abs(band.Low-0.2) > 1e-9 || math.Abs(band.High-0.8) > 1e-9 {
		t.Fatalf("band = [%v, %v], want [0.2, 0.8]", band.Low, band.High)
	}
}

func TestPoolBandBoundary(t *testing.T) {
	table := builtLinearTable(t)

	// mean far below the table snaps to the minimum raw score, which has no
	// lower neighbour
	_, err := table.PoolBand([]float64{-10})
	if err == nil || !strings.Contains(err.Error(), "neighbour") {
		t.Fatalf("expected boundary error, got %v", err)
	}

	_, err = table.PoolBand(nil)
	if err == nil {
		t.Fatalf("expected error for empty item set")
	}
}

func TestCutAlignedBand(t *testing.T) {
	table := builtLinearTable(t)

	band, err := table.CutAlignedBand()
	if err != nil {
		t.Fatalf("cut band: %v", err)
	}
	// cut measures -0.4, 2.0, 2.6; uniform spacing keeps every half-width 0.3
	wantCenter := (-0.4 + 2.0 + 2.6) / 3
	if math.Abs(band.Center-wantCenter) > 1e-9 {
		t.Fatalf("center = %v, want %v", band.Center, wantCenter)
	}
	if math.Abs(band.HalfWidth-0.3) > 1e-9 {
		t.Fatalf("half-width = %v, want 0.3", band.HalfWidth)
	}
}

func TestCutAlignedBandAtTableEdge(t *testing.T) {
	// advanced cut at the maximum raw score has no upper neighbour
	src := linearTable(t)
	table, err := Build(src, Cuts{Approaching: 12, Proficient: 20, Advanced: 24}, testAnchors)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := table.CutAlignedBand(); err == nil {
		t.Fatalf("expected boundary error for cut at table edge")
	}
}
