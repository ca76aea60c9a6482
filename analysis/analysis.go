// Package analysis measures point sets produced by the samplers: spacing
// statistics and checks of the separation and containment guarantees.
package analysis

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/quadtree"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/scatter/geom"
	"github.com/pthm-cable/scatter/telemetry"
)

func toOrb(p geom.Point) orb.Point {
	return orb.Point{p.X, p.Z}
}

// NearestNeighbours returns, for every point, the distance to the closest
// other point. It returns nil for fewer than two points.
func NearestNeighbours(points []geom.Point) []float64 {
	if len(points) < 2 {
		return nil
	}

	mp := make(orb.MultiPoint, len(points))
	for i, p := range points {
		mp[i] = toOrb(p)
	}

	qt := quadtree.New(mp.Bound().Pad(1))
	for _, p := range mp {
		if err := qt.Add(p); err != nil {
			// Unreachable, the bound is built from the points
			panic(err)
		}
	}

	dists := make([]float64, len(mp))
	buf := make([]orb.Pointer, 0, 2)
	for i, p := range mp {
		// The query point itself is one of the two results
		buf = qt.KNearest(buf[:0], p, 2)
		for _, q := range buf {
			dists[i] = max(dists[i], planar.Distance(p, q.Point()))
		}
	}
	return dists
}

// SpacingStats summarizes nearest-neighbour distances of a point set.
type SpacingStats struct {
	Count  int     `csv:"count" json:"count"`
	Min    float64 `csv:"nn_min" json:"nn_min"`
	Mean   float64 `csv:"nn_mean" json:"nn_mean"`
	StdDev float64 `csv:"nn_std" json:"nn_std"`
	P10    float64 `csv:"nn_p10" json:"nn_p10"`
	P50    float64 `csv:"nn_p50" json:"nn_p50"`
	P90    float64 `csv:"nn_p90" json:"nn_p90"`
}

// Spacing computes nearest-neighbour statistics. Everything except Count is
// zero for fewer than two points.
func Spacing(points []geom.Point) SpacingStats {
	s := SpacingStats{Count: len(points)}
	dists := NearestNeighbours(points)
	if len(dists) == 0 {
		return s
	}

	s.Mean, s.StdDev = stat.MeanStdDev(dists, nil)

	sort.Float64s(dists)
	s.Min = dists[0]
	s.P10 = telemetry.Percentile(dists, 0.10)
	s.P50 = telemetry.Percentile(dists, 0.50)
	s.P90 = telemetry.Percentile(dists, 0.90)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s SpacingStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("count", s.Count),
		slog.Float64("nn_min", s.Min),
		slog.Float64("nn_mean", s.Mean),
		slog.Float64("nn_std", s.StdDev),
		slog.Float64("nn_p10", s.P10),
		slog.Float64("nn_p50", s.P50),
		slog.Float64("nn_p90", s.P90),
	)
}

// CheckSeparation returns an error naming the first pair of points closer
// than radius-tolerance.
func CheckSeparation(points []geom.Point, radius, tolerance float64) error {
	if len(points) < 2 {
		return nil
	}

	mp := make(orb.MultiPoint, len(points))
	for i, p := range points {
		mp[i] = toOrb(p)
	}
	qt := quadtree.New(mp.Bound().Pad(radius))
	for i := range mp {
		if err := qt.Add(indexedPoint{mp[i], i}); err != nil {
			return fmt.Errorf("indexing point %d: %w", i, err)
		}
	}

	limit := radius - tolerance
	for i, p := range mp {
		around := orb.Bound{Min: p, Max: p}.Pad(radius)
		for _, q := range qt.InBound(nil, around) {
			j := q.(indexedPoint).index
			if j <= i {
				continue
			}
			if d := planar.Distance(p, q.Point()); d < limit {
				return fmt.Errorf("points %d %v and %d %v are %g apart, want at least %g", i, points[i], j, points[j], d, limit)
			}
		}
	}
	return nil
}

type indexedPoint struct {
	p     orb.Point
	index int
}

func (ip indexedPoint) Point() orb.Point { return ip.p }

// CheckContainment returns an error naming the first point outside bounds
// grown by margin.
func CheckContainment(points []geom.Point, bounds geom.Bounds, margin float64) error {
	b := bounds.Expand(margin)
	ob := orb.Bound{Min: toOrb(b.Min()), Max: toOrb(b.Max())}
	for i, p := range points {
		if !ob.Contains(toOrb(p)) {
			return fmt.Errorf("point %d %v outside %v", i, p, b)
		}
	}
	return nil
}

// Density returns the number of points per unit area of bounds.
func Density(points []geom.Point, bounds geom.Bounds) float64 {
	area := bounds.Area()
	if area <= 0 {
		return 0
	}
	return float64(len(points)) / area
}
