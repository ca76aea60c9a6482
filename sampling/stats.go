package sampling

import (
	"log/slog"
	"time"
)

// Stats describes how a sampling run went. Fields that do not apply to a
// strategy stay zero.
type Stats struct {
	Strategy Strategy
	Duration time.Duration

	Accepted int

	// Hierarchical dart throwing.
	Iterations         int     // squares dequeued
	Retries            int     // level selections that found no square
	CoveredSquares     int     // dequeued squares discarded by the coverage test
	RejectedDarts      int     // darts too close to an accepted point
	Subdivisions       int     // rejected squares split into children
	ChildrenQueued     int     // children enqueued on the next level
	ChildrenCovered    int     // children discarded by the coverage test
	PrecisionExhausted int     // rejected squares dropped at the deepest level
	DeepestLevel       int     // finest level any square was enqueued on
	BaseLength         float64 // side of a level-0 square
	BaseSquares        int     // level-0 squares in the initial tiling
	GridDims           int     // acceleration grid cells per axis
	RemainingArea      float64 // active area left when the loop stopped

	// Jittered grid.
	Candidates int // interior grid points that were offered a draw
}

// LogValue implements slog.LogValuer for structured logging.
func (s Stats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("strategy", string(s.Strategy)),
		slog.Int64("duration_us", s.Duration.Microseconds()),
		slog.Int("accepted", s.Accepted),
	}

	switch s.Strategy {
	case StrategyHDT:
		attrs = append(attrs,
			slog.Int("iterations", s.Iterations),
			slog.Int("retries", s.Retries),
			slog.Int("covered_squares", s.CoveredSquares),
			slog.Int("rejected_darts", s.RejectedDarts),
			slog.Int("subdivisions", s.Subdivisions),
			slog.Int("children_queued", s.ChildrenQueued),
			slog.Int("children_covered", s.ChildrenCovered),
			slog.Int("precision_exhausted", s.PrecisionExhausted),
			slog.Int("deepest_level", s.DeepestLevel),
			slog.Float64("base_length", s.BaseLength),
			slog.Int("base_squares", s.BaseSquares),
			slog.Int("grid_dims", s.GridDims),
			slog.Float64("remaining_area", s.RemainingArea),
		)
	case StrategyBasic:
		attrs = append(attrs, slog.Int("candidates", s.Candidates))
	}

	return slog.GroupValue(attrs...)
}
