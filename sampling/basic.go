package sampling

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"

	"github.com/pthm-cable/scatter/geom"
)

// DefaultBasicSeed is the seed BasicGridSampleSeeded callers use to get the
// same output on every run.
const DefaultBasicSeed int64 = 0

// Basic is a jittered-grid sampler: every interior point of a regular grid
// is kept with a fixed probability and nudged by up to half a cell. It gives
// no minimum separation guarantee.
type Basic struct {
	Bounds      geom.Bounds
	Resolution  int
	Probability float64
}

// BasicGridSample samples [xMin, xMax] x [zMin, zMax] with a jittered grid
// whose longer side has resolution subdivisions.
func BasicGridSample(rng *rand.Rand, xMin, zMin, xMax, zMax float64, resolution int, probability float64) ([]geom.Point, error) {
	b := &Basic{
		Bounds:      geom.NewBounds(xMin, xMax, zMin, zMax),
		Resolution:  resolution,
		Probability: probability,
	}
	res, err := b.Sample(context.Background(), rng)
	if err != nil {
		return nil, err
	}
	return res.Points, nil
}

// BasicGridSampleSeeded is BasicGridSample with a random source of its own
// seeded with seed, so equal arguments always give equal output.
func BasicGridSampleSeeded(seed int64, xMin, zMin, xMax, zMax float64, resolution int, probability float64) ([]geom.Point, error) {
	return BasicGridSample(rand.New(rand.NewSource(seed)), xMin, zMin, xMax, zMax, resolution, probability)
}

// BasicGridDims returns the number of grid subdivisions along x and z and
// the cell size. The longer side gets resolution subdivisions and the
// shorter side proportionally fewer, so cells are square.
func BasicGridDims(bounds geom.Bounds, resolution int) (dimX, dimZ int, delta float64) {
	sizeX := bounds.Width()
	sizeZ := bounds.Height()

	if sizeX >= sizeZ {
		dimX = resolution
		dimZ = int((sizeZ / sizeX) * float64(dimX))
		delta = sizeX / float64(resolution)
	} else {
		dimZ = resolution
		dimX = int((sizeX / sizeZ) * float64(dimZ))
		delta = sizeZ / float64(resolution)
	}
	return dimX, dimZ, delta
}

// BasicGridCapacity returns the number of interior grid points, an upper
// bound on the size of a basic sample.
func BasicGridCapacity(bounds geom.Bounds, resolution int) int {
	dimX, dimZ, _ := BasicGridDims(bounds, resolution)
	return max(dimX-1, 0) * max(dimZ-1, 0)
}

func (b *Basic) validate() error {
	if err := validateDomain(b.Bounds); err != nil {
		return err
	}
	if b.Resolution < 2 {
		return errors.New("grid resolution must be at least 2").
			WithType(ErrTypeInvalidResolution).
			WithTag("resolution", b.Resolution)
	}
	if !(b.Probability >= 0 && b.Probability <= 1) {
		return errors.New("probability must lie in [0, 1]").
			WithType(ErrTypeInvalidProbability).
			WithTag("probability", b.Probability)
	}
	return nil
}

// Sample runs the sampler to completion.
func (b *Basic) Sample(ctx context.Context, rng *rand.Rand) (res Result, err error) {
	start := time.Now()
	defer func() { record(StrategyBasic, start, &res, err) }()

	if err := b.validate(); err != nil {
		return Result{}, err
	}
	if err := canceled(ctx); err != nil {
		return Result{}, err
	}
	rng = ensureRand(rng)

	dimX, dimZ, delta := BasicGridDims(b.Bounds, b.Resolution)

	// Open grid of candidate positions, the max boundary excluded
	xValues := make([]float64, dimX)
	for i := range xValues {
		xValues[i] = geom.Lerp(b.Bounds.XMin, b.Bounds.XMax, float64(i)/float64(dimX))
	}
	zValues := make([]float64, dimZ)
	for j := range zValues {
		zValues[j] = geom.Lerp(b.Bounds.ZMin, b.Bounds.ZMax, float64(j)/float64(dimZ))
	}

	deltaHalf := delta * 0.5
	stats := Stats{Strategy: StrategyBasic}
	points := make([]geom.Point, 0, int(math.Ceil(float64(BasicGridCapacity(b.Bounds, b.Resolution))*b.Probability)))

	for j := 1; j < dimZ; j++ {
		for i := 1; i < dimX; i++ {
			stats.Candidates++
			if rng.Float64() >= b.Probability {
				continue
			}
			// Jitter to break up the regular pattern
			points = append(points, geom.Point{
				X: xValues[i] + geom.RandomIn(rng, -deltaHalf, deltaHalf),
				Z: zValues[j] + geom.RandomIn(rng, -deltaHalf, deltaHalf),
			})
		}
	}

	stats.Accepted = len(points)
	res = Result{Points: points, Stats: stats}
	slog.Debug("basic sampling finished", "stats", res.Stats)
	return res, nil
}
