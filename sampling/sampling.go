// Package sampling generates well-distributed 2D seed points over a
// rectangular domain on the xz-plane.
//
// Three strategies are available: hierarchical dart throwing (a maximal
// Poisson-disc sampler driven by a quadtree of candidate squares), a
// jittered grid thinned by a probability, and Bridson's algorithm as a
// reference blue-noise generator. Every run owns its random source and its
// working structures; nothing is shared between runs.
package sampling

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"

	"github.com/pthm-cable/scatter/geom"
)

// Strategy names a sampling algorithm.
type Strategy string

const (
	StrategyHDT     Strategy = "hdt"
	StrategyBasic   Strategy = "basic"
	StrategyBridson Strategy = "bridson"
)

// Strategies lists every supported strategy.
var Strategies = []Strategy{StrategyHDT, StrategyBasic, StrategyBridson}

// ParseStrategy maps a strategy name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Strategies {
		if s == known {
			return s, nil
		}
	}
	return "", errors.Newf("unknown sampling strategy %q", name).
		WithType(ErrTypeUnknownStrategy).
		WithTag("strategy", name)
}

// Result is the outcome of one sampling run. Points are in acceptance order.
type Result struct {
	Points []geom.Point
	Stats  Stats
}

// Sampler produces a point set. Implementations validate their parameters
// before any sampling work and run to completion unless ctx is canceled.
type Sampler interface {
	Sample(ctx context.Context, rng *rand.Rand) (Result, error)
}

// Params configures a run of any strategy. Only the fields used by the
// selected strategy are read.
type Params struct {
	Strategy Strategy
	Bounds   geom.Bounds

	// hdt and bridson
	Radius float64

	// hdt
	MaxLevels      int
	MaxBaseSquares int
	MaxGridCells   int

	// basic
	Resolution  int
	Probability float64

	// bridson
	Attempts int
}

// New builds the sampler selected by p.Strategy.
func New(p Params) (Sampler, error) {
	switch p.Strategy {
	case StrategyHDT:
		return NewHDT(p.Bounds, p.Radius,
			WithMaxLevels(p.MaxLevels),
			WithMaxBaseSquares(p.MaxBaseSquares),
			WithMaxGridCells(p.MaxGridCells),
		), nil
	case StrategyBasic:
		return &Basic{
			Bounds:      p.Bounds,
			Resolution:  p.Resolution,
			Probability: p.Probability,
		}, nil
	case StrategyBridson:
		return &Bridson{
			Bounds:       p.Bounds,
			Radius:       p.Radius,
			Attempts:     p.Attempts,
			MaxGridCells: p.MaxGridCells,
		}, nil
	default:
		_, err := ParseStrategy(string(p.Strategy))
		return nil, err
	}
}

// Run builds the sampler selected by p and runs it once.
func Run(ctx context.Context, rng *rand.Rand, p Params) (Result, error) {
	s, err := New(p)
	if err != nil {
		return Result{}, err
	}
	return s.Sample(ctx, rng)
}

// NewRand returns a random source seeded with seed, or with the current time
// when seed is 0.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func ensureRand(rng *rand.Rand) *rand.Rand {
	if rng == nil {
		return NewRand(0)
	}
	return rng
}

func canceled(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return newCanceledError(err)
	}
	return nil
}
