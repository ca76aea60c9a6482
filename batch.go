package main

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pthm-cable/scatter/analysis"
	"github.com/pthm-cable/scatter/camera"
	"github.com/pthm-cable/scatter/config"
	"github.com/pthm-cable/scatter/geom"
	"github.com/pthm-cable/scatter/renderer"
	"github.com/pthm-cable/scatter/sampling"
	"github.com/pthm-cable/scatter/telemetry"
)

const separationTolerance = 1e-6

// batch holds the state shared by the runs of one invocation.
type batch struct {
	cfg      *config.Config
	params   sampling.Params
	output   *telemetry.OutputManager
	perf     *telemetry.PerfCollector
	detector *telemetry.BookmarkDetector
	manifest *telemetry.Manifest
	counts   []float64
}

// runBatch runs the configured number of sampling runs with consecutive
// seeds and writes every output the config asks for.
func runBatch(ctx context.Context, cfg *config.Config) error {
	output, err := telemetry.NewOutputManager(cfg.Output.Dir, cfg.Output.Points)
	if err != nil {
		return err
	}
	defer output.Close()

	if err := output.WriteConfig(cfg); err != nil {
		return err
	}

	b := &batch{
		cfg:      cfg,
		params:   cfg.Params(),
		output:   output,
		perf:     telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		detector: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistory, cfg.Telemetry.OutlierSigma, cfg.Telemetry.SlowFactor),
		manifest: telemetry.NewManifest(string(cfg.Derived.Strategy), cfg.Derived.Bounds),
	}
	b.manifest.Radius = cfg.Sampler.Radius
	if cfg.Derived.Strategy == sampling.StrategyBasic {
		b.manifest.Radius = 0
		b.manifest.Resolution = cfg.Basic.Resolution
		b.manifest.Probability = cfg.Basic.Probability
	}

	for i := 0; i < cfg.Sampler.Runs; i++ {
		last := i == cfg.Sampler.Runs-1
		if err := b.run(ctx, i, last); err != nil {
			return err
		}
	}

	return b.finish()
}

func (b *batch) run(ctx context.Context, index int, last bool) error {
	seed := b.cfg.Sampler.Seed + int64(index)

	b.perf.StartRun()
	b.perf.StartPhase(telemetry.PhaseSample)
	res, err := sampling.Run(ctx, rand.New(rand.NewSource(seed)), b.params)
	if err != nil {
		slog.Error("run failed", "run", index, "seed", seed)
		return err
	}

	b.perf.StartPhase(telemetry.PhaseAnalyze)
	rec := telemetry.NewRunRecord(uuid.NewString(), index, seed, res.Stats)
	rec.Density = analysis.Density(res.Points, b.params.Bounds)
	withSpacing(&rec, analysis.Spacing(res.Points))
	b.counts = append(b.counts, float64(rec.Points))

	bookmarks := b.detector.Check(rec)
	if bm, ok := b.verify(rec, res); !ok {
		bookmarks = append(bookmarks, bm)
	}

	b.perf.StartPhase(telemetry.PhaseWrite)
	if err := b.output.WritePoints(rec.RunID, index, res.Points); err != nil {
		return err
	}
	if err := b.output.WriteRun(rec); err != nil {
		return err
	}
	for _, bm := range bookmarks {
		bm.LogBookmark()
		if err := b.output.WriteBookmark(bm); err != nil {
			return err
		}
	}
	b.manifest.AddRun(rec)

	if last {
		b.perf.StartPhase(telemetry.PhaseRender)
		if err := b.preview(res.Points); err != nil {
			return err
		}
	}
	b.perf.EndRun(len(res.Points))

	if b.cfg.Telemetry.LogStats {
		rec.LogStats()
	}
	return nil
}

// verify re-checks the guarantees of the strategies that make them.
func (b *batch) verify(rec telemetry.RunRecord, res sampling.Result) (telemetry.Bookmark, bool) {
	var err error
	switch b.params.Strategy {
	case sampling.StrategyHDT:
		if err = analysis.CheckSeparation(res.Points, b.params.Radius, separationTolerance); err == nil {
			err = analysis.CheckContainment(res.Points, b.params.Bounds, res.Stats.BaseLength)
		}
	case sampling.StrategyBridson:
		err = analysis.CheckSeparation(res.Points, b.params.Radius, separationTolerance)
	}
	if err == nil {
		return telemetry.Bookmark{}, true
	}
	return telemetry.Bookmark{
		Type:        telemetry.BookmarkSeparationViolation,
		Run:         rec.Index,
		RunID:       rec.RunID,
		Description: err.Error(),
	}, false
}

func (b *batch) preview(points []geom.Point) error {
	p := b.cfg.Preview
	if !p.SVG && !p.PNG {
		return nil
	}
	if b.output == nil {
		slog.Warn("previews need an output directory, skipping")
		return nil
	}

	cam := camera.New(float64(p.Width), float64(p.Height), b.params.Bounds, p.Margin)
	cam.SetZoom(p.Zoom)
	radius := b.params.Radius
	if b.params.Strategy == sampling.StrategyBasic {
		radius = 0
	}
	style := renderer.StyleFromConfig(p, radius)

	if p.SVG {
		if err := writeSVGFile(b.output.Path("preview.svg"), cam, points, style); err != nil {
			return err
		}
		b.output.Track("preview.svg")
	}
	if p.PNG {
		if err := renderer.WritePNG(b.output.Path("preview.png"), cam, points, style); err != nil {
			return err
		}
		b.output.Track("preview.png")
	}
	return nil
}

func (b *batch) finish() error {
	perfStats := b.perf.Stats()
	if err := b.output.WritePerf(perfStats, b.cfg.Sampler.Runs); err != nil {
		return err
	}
	if b.cfg.Telemetry.LogStats {
		perfStats.LogStats()
	}

	mean, p10, p50, p90 := telemetry.ComputeStats(b.counts)
	slog.Info("sampling finished",
		"runs", b.cfg.Sampler.Runs,
		"points_mean", mean,
		"points_p10", p10,
		"points_p50", p50,
		"points_p90", p90,
		"perf", perfStats,
	)

	if b.cfg.Output.Metrics {
		if err := b.output.WriteMetrics(prometheus.DefaultGatherer); err != nil {
			return err
		}
	}
	if b.cfg.Output.Manifest {
		if err := b.output.WriteManifest(b.manifest); err != nil {
			return err
		}
	}
	return nil
}

func withSpacing(rec *telemetry.RunRecord, s analysis.SpacingStats) {
	rec.SpacingMin = s.Min
	rec.SpacingMean = s.Mean
	rec.SpacingStd = s.StdDev
	rec.SpacingP10 = s.P10
	rec.SpacingP50 = s.P50
	rec.SpacingP90 = s.P90
}
