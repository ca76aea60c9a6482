// Package config provides configuration loading and access for the sampler
// CLI and tools.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/scatter/geom"
	"github.com/pthm-cable/scatter/sampling"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all sampling configuration parameters.
type Config struct {
	Domain    DomainConfig    `yaml:"domain"`
	Sampler   SamplerConfig   `yaml:"sampler"`
	HDT       HDTConfig       `yaml:"hdt"`
	Basic     BasicConfig     `yaml:"basic"`
	Bridson   BridsonConfig   `yaml:"bridson"`
	Output    OutputConfig    `yaml:"output"`
	Preview   PreviewConfig   `yaml:"preview"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// DomainConfig is the rectangle on the xz-plane to sample.
type DomainConfig struct {
	XMin float64 `yaml:"x_min"`
	XMax float64 `yaml:"x_max"`
	ZMin float64 `yaml:"z_min"`
	ZMax float64 `yaml:"z_max"`
}

// SamplerConfig selects the strategy and the run schedule.
type SamplerConfig struct {
	Strategy string  `yaml:"strategy"` // hdt, basic or bridson
	Radius   float64 `yaml:"radius"`   // minimum separation for hdt and bridson
	Seed     int64   `yaml:"seed"`     // 0 = time based
	Runs     int     `yaml:"runs"`     // consecutive runs, seeds seed, seed+1, ...
}

// HDTConfig holds hierarchical dart throwing limits.
type HDTConfig struct {
	MaxLevels      int `yaml:"max_levels"`
	MaxBaseSquares int `yaml:"max_base_squares"`
	MaxGridCells   int `yaml:"max_grid_cells"`
}

// BasicConfig holds jittered grid parameters.
type BasicConfig struct {
	Resolution  int     `yaml:"resolution"`  // subdivisions along the longer side
	Probability float64 `yaml:"probability"` // chance each interior grid point is kept
}

// BridsonConfig holds parameters of the Bridson baseline.
type BridsonConfig struct {
	Attempts int `yaml:"attempts"` // candidates tried per active point
}

// OutputConfig controls what the CLI writes.
type OutputConfig struct {
	Dir      string `yaml:"dir"`      // empty disables file output
	Points   bool   `yaml:"points"`   // write points.csv
	Manifest bool   `yaml:"manifest"` // write manifest.json
	Metrics  bool   `yaml:"metrics"`  // write metrics.prom
}

// PreviewConfig controls the rendered previews.
type PreviewConfig struct {
	SVG         bool    `yaml:"svg"`
	PNG         bool    `yaml:"png"`
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	Margin      float64 `yaml:"margin"`       // pixels around the domain
	Zoom        float64 `yaml:"zoom"`         // multiple of the zoom that fits the domain
	PointSize   float64 `yaml:"point_size"`   // dot radius in pixels
	ShowRadius  bool    `yaml:"show_radius"`  // draw the disc of half the radius around points
	Background  string  `yaml:"background"`   // hex colors
	PointColor  string  `yaml:"point_color"`
	DomainColor string  `yaml:"domain_color"`
}

// TelemetryConfig controls run statistics and bookmarks.
type TelemetryConfig struct {
	LogStats        bool    `yaml:"log_stats"`
	PerfWindow      int     `yaml:"perf_window"`      // runs averaged by the perf collector
	BookmarkHistory int     `yaml:"bookmark_history"` // runs kept to detect outliers
	OutlierSigma    float64 `yaml:"outlier_sigma"`    // point count deviation that flags a run
	SlowFactor      float64 `yaml:"slow_factor"`      // duration multiple of the average that flags a run
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Bounds   geom.Bounds
	Side     float64 // side of the bounding square
	Strategy sampling.Strategy
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate checks the settings the samplers do not check themselves.
func (c *Config) Validate() error {
	if _, err := sampling.ParseStrategy(c.Sampler.Strategy); err != nil {
		return fmt.Errorf("sampler.strategy: %w", err)
	}
	if c.Sampler.Runs < 1 {
		return fmt.Errorf("sampler.runs must be at least 1, got %d", c.Sampler.Runs)
	}
	if c.Preview.Width < 1 || c.Preview.Height < 1 {
		return fmt.Errorf("preview size must be positive, got %dx%d", c.Preview.Width, c.Preview.Height)
	}
	if c.Preview.Margin < 0 || 2*c.Preview.Margin >= float64(min(c.Preview.Width, c.Preview.Height)) {
		return fmt.Errorf("preview.margin %v does not fit a %dx%d preview", c.Preview.Margin, c.Preview.Width, c.Preview.Height)
	}
	if !(c.Preview.Zoom > 0) {
		return fmt.Errorf("preview.zoom must be positive, got %v", c.Preview.Zoom)
	}
	if c.Telemetry.PerfWindow < 1 {
		return fmt.Errorf("telemetry.perf_window must be at least 1, got %d", c.Telemetry.PerfWindow)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Bounds = geom.NewBounds(c.Domain.XMin, c.Domain.XMax, c.Domain.ZMin, c.Domain.ZMax)
	c.Derived.Side = c.Derived.Bounds.Side()
	// Validate has already accepted the name
	c.Derived.Strategy, _ = sampling.ParseStrategy(c.Sampler.Strategy)
}

// SetStrategy overrides the configured strategy, e.g. from a command line
// flag.
func (c *Config) SetStrategy(name string) error {
	s, err := sampling.ParseStrategy(name)
	if err != nil {
		return err
	}
	c.Sampler.Strategy = string(s)
	c.Derived.Strategy = s
	return nil
}

// Params returns the sampler parameters for the configured strategy.
func (c *Config) Params() sampling.Params {
	return sampling.Params{
		Strategy:       c.Derived.Strategy,
		Bounds:         c.Derived.Bounds,
		Radius:         c.Sampler.Radius,
		MaxLevels:      c.HDT.MaxLevels,
		MaxBaseSquares: c.HDT.MaxBaseSquares,
		MaxGridCells:   c.HDT.MaxGridCells,
		Resolution:     c.Basic.Resolution,
		Probability:    c.Basic.Probability,
		Attempts:       c.Bridson.Attempts,
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
