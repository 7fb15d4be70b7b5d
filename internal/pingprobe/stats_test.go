package pingprobe

import (
	"math"
	"testing"
)

func TestComputeStatsAllLost(t *testing.T) {
	stats := computeStats([]*float64{nil, nil, nil})
	if stats.Min != nil || stats.Mean != nil {
		t.Errorf("expected all-nil stats for zero received samples, got %+v", stats)
	}
}

func TestComputeStatsBasic(t *testing.T) {
	samples := []*float64{ptr(1), ptr(2), ptr(3), ptr(4), nil}
	stats := computeStats(samples)
	if stats.Min == nil || *stats.Min != 1 {
		t.Errorf("Min = %v, want 1", stats.Min)
	}
	if stats.Max == nil || *stats.Max != 4 {
		t.Errorf("Max = %v, want 4", stats.Max)
	}
	if stats.Mean == nil || *stats.Mean != 2.5 {
		t.Errorf("Mean = %v, want 2.5", stats.Mean)
	}
	if stats.P50 == nil || math.Abs(*stats.P50-2.5) > 1e-9 {
		t.Errorf("P50 = %v, want 2.5", stats.P50)
	}
}

func TestPercentileSingleValue(t *testing.T) {
	if got := percentile([]float64{7}, 90); got != 7 {
		t.Errorf("percentile of single value = %v, want 7", got)
	}
}

func TestPercentileInterpolates(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}
	got := percentile(sorted, 50)
	want := 25.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("P50 = %v, want %v", got, want)
	}
}
