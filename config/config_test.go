package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/scatter/sampling"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, sampling.StrategyHDT, cfg.Derived.Strategy)
	require.Equal(t, 100.0, cfg.Derived.Side)
	require.Equal(t, 16, cfg.HDT.MaxLevels)
	require.Equal(t, 1, cfg.Sampler.Runs)

	p := cfg.Params()
	require.Equal(t, cfg.Derived.Bounds, p.Bounds)
	require.Equal(t, cfg.Sampler.Radius, p.Radius)
	require.Equal(t, cfg.Basic.Resolution, p.Resolution)
}

func TestLoadOverlaysUserFile(t *testing.T) {
	path := writeFile(t, `
domain:
  x_max: 40
  z_min: -10
sampler:
  strategy: basic
basic:
  probability: 0.25
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, sampling.StrategyBasic, cfg.Derived.Strategy)
	require.Equal(t, 0.0, cfg.Derived.Bounds.XMin)
	require.Equal(t, 40.0, cfg.Derived.Bounds.XMax)
	require.Equal(t, -10.0, cfg.Derived.Bounds.ZMin)
	require.Equal(t, 110.0, cfg.Derived.Side)
	require.Equal(t, 0.25, cfg.Basic.Probability)
	// Untouched keys keep their defaults
	require.Equal(t, 50, cfg.Basic.Resolution)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown strategy", "sampler:\n  strategy: lloyd\n"},
		{"no runs", "sampler:\n  runs: 0\n"},
		{"empty preview", "preview:\n  width: 0\n"},
		{"margin too wide", "preview:\n  width: 100\n  height: 100\n  margin: 50\n"},
		{"malformed", "sampler: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			require.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestSetStrategy(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.NoError(t, cfg.SetStrategy("Bridson"))
	require.Equal(t, sampling.StrategyBridson, cfg.Params().Strategy)
	require.Equal(t, "bridson", cfg.Sampler.Strategy)

	require.Error(t, cfg.SetStrategy("nope"))
	require.Equal(t, sampling.StrategyBridson, cfg.Derived.Strategy)
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Sampler.Radius = 0.75
	cfg.Sampler.Seed = 12

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 0.75, loaded.Sampler.Radius)
	require.Equal(t, int64(12), loaded.Sampler.Seed)
	require.Equal(t, cfg.Derived, loaded.Derived)
}

func TestCfgAfterInit(t *testing.T) {
	require.NoError(t, Init(""))
	require.Equal(t, sampling.StrategyHDT, Cfg().Derived.Strategy)
}
