package sampling

import (
	"context"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/scatter/geom"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want Strategy
		err  bool
	}{
		{"hdt", StrategyHDT, false},
		{" HDT ", StrategyHDT, false},
		{"basic", StrategyBasic, false},
		{"Bridson", StrategyBridson, false},
		{"poisson", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if tt.err {
				require.True(t, errors.IsType(err, ErrTypeUnknownStrategy))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRunDispatchesOnStrategy(t *testing.T) {
	base := Params{
		Bounds:      geom.NewBounds(0, 4, 0, 3),
		Radius:      0.5,
		Resolution:  12,
		Probability: 0.5,
	}

	for _, strategy := range Strategies {
		t.Run(string(strategy), func(t *testing.T) {
			p := base
			p.Strategy = strategy

			res, err := Run(context.Background(), rand.New(rand.NewSource(1)), p)
			require.NoError(t, err)
			require.Equal(t, strategy, res.Stats.Strategy)
			require.Equal(t, len(res.Points), res.Stats.Accepted)
			require.NotEmpty(t, res.Points)
		})
	}
}

func TestNewUnknownStrategy(t *testing.T) {
	s, err := New(Params{Strategy: "lloyd"})
	require.Nil(t, s)
	require.True(t, errors.IsType(err, ErrTypeUnknownStrategy))
}

func TestRunUpdatesMetrics(t *testing.T) {
	labels := prometheus.Labels{strategyLabel: string(StrategyHDT)}
	runs := testutil.ToFloat64(samplingRuns.With(labels))
	points := testutil.ToFloat64(samplingPoints.With(labels))

	res, err := Run(context.Background(), rand.New(rand.NewSource(2)), Params{
		Strategy: StrategyHDT,
		Bounds:   geom.NewBounds(0, 2, 0, 2),
		Radius:   0.4,
	})
	require.NoError(t, err)
	require.Equal(t, runs+1, testutil.ToFloat64(samplingRuns.With(labels)))
	require.Equal(t, points+float64(len(res.Points)), testutil.ToFloat64(samplingPoints.With(labels)))

	errLabels := prometheus.Labels{strategyLabel: string(StrategyHDT), errTypeLabel: ErrTypeInvalidRadius}
	failures := testutil.ToFloat64(samplingErrors.With(errLabels))

	_, err = Run(context.Background(), nil, Params{
		Strategy: StrategyHDT,
		Bounds:   geom.NewBounds(0, 2, 0, 2),
		Radius:   -1,
	})
	require.Error(t, err)
	require.Equal(t, failures+1, testutil.ToFloat64(samplingErrors.With(errLabels)))
}

func TestNewRandIsSeeded(t *testing.T) {
	a := NewRand(99)
	b := NewRand(99)
	for i := 0; i < 10; i++ {
		require.Equal(t, a.Int63(), b.Int63())
	}
	require.NotNil(t, NewRand(0))
}

func TestStatsLogValue(t *testing.T) {
	v := Stats{Strategy: StrategyBasic, Accepted: 3, Candidates: 9}.LogValue()
	require.Equal(t, slog.KindGroup, v.Kind())

	keys := map[string]bool{}
	for _, a := range v.Group() {
		keys[a.Key] = true
	}
	require.True(t, keys["candidates"])
	require.False(t, keys["iterations"])
}
