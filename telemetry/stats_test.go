package telemetry

import (
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/pthm-cable/scatter/sampling"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeStats(t *testing.T) {
	values := []float64{1.0, 0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.2, 0.1}
	mean, p10, p50, p90 := ComputeStats(values)

	if math.Abs(mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", mean)
	}
	if math.Abs(p10-0.19) > 0.01 {
		t.Errorf("p10 = %v, want ~0.19", p10)
	}
	if math.Abs(p50-0.55) > 0.01 {
		t.Errorf("p50 = %v, want ~0.55", p50)
	}
	if math.Abs(p90-0.91) > 0.01 {
		t.Errorf("p90 = %v, want ~0.91", p90)
	}
	// Input order is left alone
	if values[0] != 1.0 {
		t.Error("ComputeStats sorted its input")
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	mean, p10, p50, p90 := ComputeStats([]float64{})

	if mean != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestNewRunRecord(t *testing.T) {
	stats := sampling.Stats{
		Strategy:           sampling.StrategyHDT,
		Duration:           1500 * time.Microsecond,
		Accepted:           42,
		Iterations:         100,
		Subdivisions:       7,
		PrecisionExhausted: 1,
		BaseLength:         0.5,
	}
	r := NewRunRecord("abc", 3, 99, stats)

	if r.RunID != "abc" || r.Index != 3 || r.Seed != 99 {
		t.Errorf("identity fields = %q %d %d", r.RunID, r.Index, r.Seed)
	}
	if r.Strategy != "hdt" || r.DurationUS != 1500 || r.Points != 42 {
		t.Errorf("summary fields = %q %d %d", r.Strategy, r.DurationUS, r.Points)
	}
	if r.Subdivisions != 7 || r.PrecisionExhausted != 1 || r.BaseLength != 0.5 {
		t.Error("hdt fields not copied")
	}

	v := r.LogValue()
	if v.Kind() != slog.KindGroup {
		t.Fatalf("LogValue kind = %v, want group", v.Kind())
	}
	found := false
	for _, a := range v.Group() {
		if a.Key == "subdivisions" {
			found = true
		}
	}
	if !found {
		t.Error("hdt record should log subdivisions")
	}
}
