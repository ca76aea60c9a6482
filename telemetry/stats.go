package telemetry

import (
	"log/slog"
	"sort"

	"github.com/pthm-cable/scatter/sampling"
)

// RunRecord holds the outcome of one sampling run, one row of runs.csv.
type RunRecord struct {
	RunID    string `csv:"run_id"`
	Index    int    `csv:"run"`
	Seed     int64  `csv:"seed"`
	Strategy string `csv:"strategy"`

	DurationUS int64   `csv:"duration_us"`
	Points     int     `csv:"points"`
	Density    float64 `csv:"density"` // points per unit area

	// Hierarchical dart throwing
	Iterations         int     `csv:"iterations"`
	CoveredSquares     int     `csv:"covered_squares"`
	RejectedDarts      int     `csv:"rejected_darts"`
	Subdivisions       int     `csv:"subdivisions"`
	PrecisionExhausted int     `csv:"precision_exhausted"`
	DeepestLevel       int     `csv:"deepest_level"`
	BaseLength         float64 `csv:"base_length"`

	// Nearest-neighbour spacing
	SpacingMin  float64 `csv:"nn_min"`
	SpacingMean float64 `csv:"nn_mean"`
	SpacingStd  float64 `csv:"nn_std"`
	SpacingP10  float64 `csv:"nn_p10"`
	SpacingP50  float64 `csv:"nn_p50"`
	SpacingP90  float64 `csv:"nn_p90"`
}

// NewRunRecord fills the sampler fields of a record. Density and spacing
// are left to the caller.
func NewRunRecord(runID string, index int, seed int64, stats sampling.Stats) RunRecord {
	return RunRecord{
		RunID:              runID,
		Index:              index,
		Seed:               seed,
		Strategy:           string(stats.Strategy),
		DurationUS:         stats.Duration.Microseconds(),
		Points:             stats.Accepted,
		Iterations:         stats.Iterations,
		CoveredSquares:     stats.CoveredSquares,
		RejectedDarts:      stats.RejectedDarts,
		Subdivisions:       stats.Subdivisions,
		PrecisionExhausted: stats.PrecisionExhausted,
		DeepestLevel:       stats.DeepestLevel,
		BaseLength:         stats.BaseLength,
	}
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeStats calculates mean and percentiles of values.
func ComputeStats(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (r RunRecord) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("run_id", r.RunID),
		slog.Int("run", r.Index),
		slog.Int64("seed", r.Seed),
		slog.String("strategy", r.Strategy),
		slog.Int64("duration_us", r.DurationUS),
		slog.Int("points", r.Points),
		slog.Float64("density", r.Density),
	}
	if r.Strategy == string(sampling.StrategyHDT) {
		attrs = append(attrs,
			slog.Int("iterations", r.Iterations),
			slog.Int("subdivisions", r.Subdivisions),
			slog.Int("precision_exhausted", r.PrecisionExhausted),
			slog.Int("deepest_level", r.DeepestLevel),
		)
	}
	attrs = append(attrs,
		slog.Float64("nn_min", r.SpacingMin),
		slog.Float64("nn_mean", r.SpacingMean),
		slog.Float64("nn_p50", r.SpacingP50),
	)
	return slog.GroupValue(attrs...)
}

// LogStats logs the run record using slog.
func (r RunRecord) LogStats() {
	slog.Info("run", "stats", r)
}
