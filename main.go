package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"

	"github.com/pthm-cable/scatter/config"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	strategy := flag.String("strategy", "", "Sampling strategy: hdt, basic or bridson (empty = use config)")
	seed := flag.Int64("seed", 0, "RNG seed of the first run (0 = use config, time-based if that is 0 too)")
	runs := flag.Int("runs", 0, "Number of runs (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, manifest and previews")
	logStats := flag.Bool("log-stats", false, "Output per-run stats via slog")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn or error")
	writeSVG := flag.Bool("svg", false, "Write preview.svg of the last run")
	writePNG := flag.Bool("png", false, "Write preview.png of the last run")

	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		slog.Error("invalid log level", "level", *logLevel, "error", err)
		os.Exit(1)
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Command line overrides
	if *strategy != "" {
		if err := cfg.SetStrategy(*strategy); err != nil {
			slog.Error("invalid strategy", "error", err)
			os.Exit(1)
		}
	}
	if *seed != 0 {
		cfg.Sampler.Seed = *seed
	}
	if cfg.Sampler.Seed == 0 {
		cfg.Sampler.Seed = time.Now().UnixNano()
	}
	if *runs > 0 {
		cfg.Sampler.Runs = *runs
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *logStats {
		cfg.Telemetry.LogStats = true
	}
	if *writeSVG {
		cfg.Preview.SVG = true
	}
	if *writePNG {
		cfg.Preview.PNG = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("starting sampling",
		"strategy", cfg.Derived.Strategy,
		"seed", cfg.Sampler.Seed,
		"runs", cfg.Sampler.Runs,
		"bounds", cfg.Derived.Bounds,
		"output_dir", cfg.Output.Dir,
	)

	if err := runBatch(ctx, cfg); err != nil {
		slog.Error("sampling failed",
			"error", err,
			"error_type", errors.Type(err),
		)
		os.Exit(1)
	}
}
