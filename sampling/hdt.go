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

const (
	// DefaultMaxLevels bounds the quadtree depth. A square on the last level
	// is baseLength/2^15 wide, far above float64 resolution for any domain
	// the grid limits accept.
	DefaultMaxLevels = 16

	// DefaultMaxBaseSquares caps the level-0 tiling.
	DefaultMaxBaseSquares = 4_000_000

	// DefaultMaxGridCells caps the acceleration grid.
	DefaultMaxGridCells = 16_000_000

	maxLevelsLimit = 48

	// areaEpsilon is the fraction of the initial active area left at which
	// the domain counts as resolved.
	areaEpsilon = 1e-7

	// selectionScale keeps the level draw strictly below the total area.
	selectionScale = 0.999999

	cancelCheckInterval = 1024

	columnTolerance = 1e-9
)

// HDT is a hierarchical dart throwing Poisson-disc sampler. It keeps the
// unresolved part of the domain as a quadtree of candidate squares, throws
// one dart per dequeued square and subdivides squares whose dart was too
// close to an accepted point.
type HDT struct {
	Bounds         geom.Bounds
	Radius         float64
	MaxLevels      int
	MaxBaseSquares int
	MaxGridCells   int

	// observe, when set, is called after every dequeued square.
	observe func(hdtStep)
}

// hdtStep is the ledger movement caused by one dequeued square.
type hdtStep struct {
	Level      int
	Before     float64
	After      float64
	Covered    bool
	Accepted   bool
	Subdivided bool
	ChildArea  float64
	Ledger     float64 // sum of the per-level areas after the step
}

// HDTOption configures an HDT sampler.
type HDTOption func(*HDT)

// WithMaxLevels sets the number of refinement levels. Zero keeps the
// default.
func WithMaxLevels(n int) HDTOption {
	return func(h *HDT) {
		if n != 0 {
			h.MaxLevels = n
		}
	}
}

// WithMaxBaseSquares caps the number of level-0 squares. Zero keeps the
// default.
func WithMaxBaseSquares(n int) HDTOption {
	return func(h *HDT) {
		if n > 0 {
			h.MaxBaseSquares = n
		}
	}
}

// WithMaxGridCells caps the number of acceleration grid cells. Zero keeps
// the default.
func WithMaxGridCells(n int) HDTOption {
	return func(h *HDT) {
		if n > 0 {
			h.MaxGridCells = n
		}
	}
}

// NewHDT creates a sampler over bounds with the given disc radius.
func NewHDT(bounds geom.Bounds, radius float64, opts ...HDTOption) *HDT {
	h := &HDT{
		Bounds:         bounds,
		Radius:         radius,
		MaxLevels:      DefaultMaxLevels,
		MaxBaseSquares: DefaultMaxBaseSquares,
		MaxGridCells:   DefaultMaxGridCells,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HDTPoissonDiscSample returns a maximal Poisson-disc point set over
// [xMin, xMax] x [zMin, zMax] where no two points are closer than radius.
func HDTPoissonDiscSample(rng *rand.Rand, xMin, xMax, zMin, zMax, radius float64) ([]geom.Point, error) {
	res, err := NewHDT(geom.NewBounds(xMin, xMax, zMin, zMax), radius).
		Sample(context.Background(), rng)
	if err != nil {
		return nil, err
	}
	return res.Points, nil
}

// hdtLayout holds the tiling derived from the domain and the radius.
type hdtLayout struct {
	side       float64 // side of the bounding square
	baseLength float64
	numColumns int // base squares per axis of the bounding square
	cols, rows int // base squares actually tiled along x and z
	gridDims   int
}

// BaseLength returns the side of a level-0 square for the sampler's domain
// and radius. Output points lie at most this far outside the domain.
func (h *HDT) BaseLength() (float64, error) {
	l, err := h.layout()
	if err != nil {
		return 0, err
	}
	return l.baseLength, nil
}

func (h *HDT) layout() (hdtLayout, error) {
	if err := validateDomain(h.Bounds); err != nil {
		return hdtLayout{}, err
	}
	if err := validateRadius(h.Radius); err != nil {
		return hdtLayout{}, err
	}
	if h.MaxLevels < 1 || h.MaxLevels > maxLevelsLimit {
		return hdtLayout{}, errors.New("refinement levels out of range").
			WithType(ErrTypeInvalidMaxLevels).
			WithTag("max_levels", h.MaxLevels).
			WithTag("limit", maxLevelsLimit)
	}

	side := h.Bounds.Side()
	cells := math.Floor(side/h.Radius) + 1
	if cells*cells > float64(h.MaxGridCells) {
		return hdtLayout{}, newRadiusTooSmallError(h.Radius, "grid cells", cells*cells, float64(h.MaxGridCells))
	}

	baseLength := side / math.Ceil(side*math.Sqrt2/h.Radius)
	numColumns := int(math.Floor(side/baseLength + columnTolerance))
	if numColumns < 1 {
		return hdtLayout{}, errors.New("disc radius leaves no base square").
			WithType(ErrTypeInvalidRadius).
			WithTag("radius", h.Radius).
			WithTag("side", side)
	}

	// Tile only the columns and rows that reach into the rectangle.
	cols := min(max(int(math.Ceil(h.Bounds.Width()/baseLength-columnTolerance)), 1), numColumns)
	rows := min(max(int(math.Ceil(h.Bounds.Height()/baseLength-columnTolerance)), 1), numColumns)
	if squares := float64(cols) * float64(rows); squares > float64(h.MaxBaseSquares) {
		return hdtLayout{}, newRadiusTooSmallError(h.Radius, "base squares", squares, float64(h.MaxBaseSquares))
	}

	return hdtLayout{
		side:       side,
		baseLength: baseLength,
		numColumns: numColumns,
		cols:       cols,
		rows:       rows,
		gridDims:   gridDims(side, h.Radius),
	}, nil
}

// Sample runs the sampler to completion.
func (h *HDT) Sample(ctx context.Context, rng *rand.Rand) (res Result, err error) {
	start := time.Now()
	defer func() { record(StrategyHDT, start, &res, err) }()

	l, err := h.layout()
	if err != nil {
		return Result{}, err
	}
	rng = ensureRand(rng)

	origin := h.Bounds.Min()
	grid := NewAccelerationGrid(origin, l.side, h.Radius)
	active := newActiveLists(h.MaxLevels, l.baseLength)
	for i := 0; i < l.cols; i++ {
		for j := 0; j < l.rows; j++ {
			active.push(Square{
				X: origin.X + l.baseLength*float64(i),
				Z: origin.Z + l.baseLength*float64(j),
			})
		}
	}

	stats := Stats{
		Strategy:    StrategyHDT,
		BaseLength:  l.baseLength,
		BaseSquares: l.cols * l.rows,
		GridDims:    grid.Dims(),
	}
	var points []geom.Point

	eps := areaEpsilon * active.total
	for active.total > eps {
		if stats.Iterations%cancelCheckInterval == 0 {
			if err := canceled(ctx); err != nil {
				return Result{}, err
			}
		}

		// Pick a level with probability proportional to its active area
		level, ok := active.selectLevel(rng.Float64() * active.total * selectionScale)
		if !ok {
			stats.Retries++
			continue
		}

		before := active.total
		sq := active.popRandom(level, rng)
		stats.Iterations++
		step := hdtStep{Level: level, Before: before}

		side := active.side(level)
		if grid.Covers(sq.Center(side), side) {
			stats.CoveredSquares++
			step.Covered = true
			h.emit(step, active)
			continue
		}

		// Throw a dart
		dart := geom.Point{
			X: sq.X + rng.Float64()*side,
			Z: sq.Z + rng.Float64()*side,
		}
		if !grid.AnyWithin(dart) {
			grid.Insert(dart)
			points = append(points, dart)
			step.Accepted = true
			h.emit(step, active)
			continue
		}
		stats.RejectedDarts++

		if level+1 >= active.maxLevels() {
			stats.PrecisionExhausted++
			h.emit(step, active)
			continue
		}

		stats.Subdivisions++
		step.Subdivided = true
		childSide := side * 0.5
		for _, child := range sq.Children(childSide) {
			if grid.Covers(child.Center(childSide), childSide) {
				stats.ChildrenCovered++
				continue
			}
			active.push(child)
			stats.ChildrenQueued++
			step.ChildArea += childSide * childSide
			stats.DeepestLevel = max(stats.DeepestLevel, child.Level)
		}
		h.emit(step, active)
	}

	stats.Accepted = len(points)
	stats.RemainingArea = active.total
	instrumentPrecisionExhausted(stats.PrecisionExhausted)

	if stats.PrecisionExhausted > 0 {
		slog.Warn("squares reached the deepest refinement level",
			"dropped", stats.PrecisionExhausted,
			"max_levels", h.MaxLevels,
			"radius", h.Radius,
		)
	}

	res = Result{Points: points, Stats: stats}
	slog.Debug("hdt sampling finished", "stats", res.Stats)
	return res, nil
}

func (h *HDT) emit(step hdtStep, active *activeLists) {
	if h.observe == nil {
		return
	}
	step.After = active.total
	for _, v := range active.area {
		step.Ledger += v
	}
	h.observe(step)
}
