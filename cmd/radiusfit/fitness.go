package main

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"github.com/pthm-cable/scatter/config"
	"github.com/pthm-cable/scatter/sampling"
)

// FitnessEvaluator samples with candidate settings and scores how far the
// point count lands from the target.
type FitnessEvaluator struct {
	params     *ParamVector
	target     int
	seeds      []int64
	baseConfig *config.Config

	mu         sync.Mutex
	lastPoints float64 // mean point count from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, target int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		target:     target,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastPoints returns the mean point count of the most recent evaluation.
func (fe *FitnessEvaluator) LastPoints() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastPoints
}

// Evaluate computes fitness for a raw parameter vector (lower = better):
// the squared relative error of the point count, averaged over seeds.
// Settings the sampler rejects score +Inf.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	p := cfg.Params()

	counts := make([]int, len(fe.seeds))
	errs := make([]error, len(fe.seeds))
	var wg sync.WaitGroup

	// Runs own their random source and state, so seeds run in parallel
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			res, err := sampling.Run(context.Background(), rand.New(rand.NewSource(s)), p)
			counts[idx] = len(res.Points)
			errs[idx] = err
		}(i, seed)
	}
	wg.Wait()

	var total, sum float64
	for i, n := range counts {
		if errs[i] != nil {
			return math.Inf(1)
		}
		rel := (float64(n) - float64(fe.target)) / float64(fe.target)
		total += rel * rel
		sum += float64(n)
	}

	fe.mu.Lock()
	fe.lastPoints = sum / float64(len(counts))
	fe.mu.Unlock()

	return total / float64(len(counts))
}

// copyConfig returns a shallow copy of the base config; every field the
// parameters touch is a value.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}
