// Package main searches the sampler setting that produces a requested
// number of points.
package main

import (
	"math"

	"github.com/pthm-cable/scatter/config"
	"github.com/pthm-cable/scatter/sampling"
)

// A maximal Poisson-disc set covers roughly this fraction of the plane
// with discs of radius r/2.
const packingDensity = 0.55

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the parameters that control the point count of
// the configured strategy: the disc radius for hdt and bridson, the keep
// probability for basic.
func NewParamVector(cfg *config.Config, target int) *ParamVector {
	if cfg.Derived.Strategy == sampling.StrategyBasic {
		capacity := sampling.BasicGridCapacity(cfg.Derived.Bounds, cfg.Basic.Resolution)
		guess := 1.0
		if capacity > 0 {
			guess = math.Min(float64(target)/float64(capacity), 1)
		}
		return &ParamVector{Specs: []ParamSpec{
			{Name: "probability", Path: "basic.probability", Min: 0, Max: 1, Default: guess},
		}}
	}

	guess := EstimateRadius(cfg.Derived.Bounds.Area(), target)
	return &ParamVector{Specs: []ParamSpec{
		{Name: "radius", Path: "sampler.radius", Min: guess * 0.25, Max: guess * 4, Default: guess},
	}}
}

// EstimateRadius returns the disc radius at which a maximal sample of the
// given area holds about target points.
func EstimateRadius(area float64, target int) float64 {
	if target < 1 {
		target = 1
	}
	// target * pi * (r/2)^2 = packingDensity * area
	return 2 * math.Sqrt(packingDensity*area/(float64(target)*math.Pi))
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = math.Min(math.Max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	for i, spec := range pv.Specs {
		switch spec.Path {
		case "sampler.radius":
			cfg.Sampler.Radius = clamped[i]
		case "basic.probability":
			cfg.Basic.Probability = clamped[i]
		}
	}
}
