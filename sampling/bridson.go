package sampling

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/fogleman/poissondisc"

	"github.com/pthm-cable/scatter/geom"
)

// DefaultBridsonAttempts is the number of candidates tried around an active
// point before it is retired.
const DefaultBridsonAttempts = 30

// Bridson samples with Bridson's annulus-growing algorithm. It is not
// maximal like HDT but serves as a reference blue-noise distribution.
type Bridson struct {
	Bounds       geom.Bounds
	Radius       float64
	Attempts     int
	MaxGridCells int
}

// Sample runs the sampler to completion.
func (b *Bridson) Sample(ctx context.Context, rng *rand.Rand) (res Result, err error) {
	start := time.Now()
	defer func() { record(StrategyBridson, start, &res, err) }()

	if err := validateDomain(b.Bounds); err != nil {
		return Result{}, err
	}
	if err := validateRadius(b.Radius); err != nil {
		return Result{}, err
	}

	limit := b.MaxGridCells
	if limit <= 0 {
		limit = DefaultMaxGridCells
	}
	// The background grid uses cells of radius/sqrt(2)
	cellSize := b.Radius / math.Sqrt2
	cells := math.Ceil(b.Bounds.Width()/cellSize) * math.Ceil(b.Bounds.Height()/cellSize)
	if cells > float64(limit) {
		return Result{}, newRadiusTooSmallError(b.Radius, "grid cells", cells, float64(limit))
	}

	if err := canceled(ctx); err != nil {
		return Result{}, err
	}

	attempts := b.Attempts
	if attempts <= 0 {
		attempts = DefaultBridsonAttempts
	}

	samples := poissondisc.Sample(b.Bounds.XMin, b.Bounds.ZMin, b.Bounds.XMax, b.Bounds.ZMax, b.Radius, attempts, ensureRand(rng))

	points := make([]geom.Point, len(samples))
	for i, p := range samples {
		points[i] = geom.Point{X: p.X, Z: p.Y}
	}

	res = Result{
		Points: points,
		Stats:  Stats{Strategy: StrategyBridson, Accepted: len(points)},
	}
	slog.Debug("bridson sampling finished", "stats", res.Stats)
	return res, nil
}
