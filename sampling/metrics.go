package sampling

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	strategyLabel = "strategy"
	errTypeLabel  = "error_type"
)

var (
	samplingRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scatter_sampling_runs",
		Help: "The number of completed sampling runs.",
	}, []string{strategyLabel})

	samplingErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scatter_sampling_errors",
		Help: "The sampling runs that failed before producing points.",
	}, []string{strategyLabel, errTypeLabel})

	samplingPoints = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scatter_sampling_points",
		Help: "The number of accepted sample points.",
	}, []string{strategyLabel})

	samplingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "scatter_sampling_duration",
		Help: "The time to complete a sampling run.",
	}, []string{strategyLabel})

	hdtPrecisionExhausted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scatter_hdt_precision_exhausted_squares",
		Help: "The number of squares dropped after reaching the deepest refinement level.",
	})
)

func instrumentRun(strategy Strategy, start time.Time, points int) {
	labels := prometheus.Labels{strategyLabel: string(strategy)}
	samplingRuns.With(labels).Inc()
	samplingPoints.With(labels).Add(float64(points))
	samplingDuration.With(labels).Observe(time.Since(start).Seconds())
}

func instrumentError(strategy Strategy, err error) {
	samplingErrors.
		With(prometheus.Labels{
			strategyLabel: string(strategy),
			errTypeLabel:  errors.Type(err),
		}).
		Inc()
}

func instrumentPrecisionExhausted(squares int) {
	if squares > 0 {
		hdtPrecisionExhausted.Add(float64(squares))
	}
}

// record finishes a sampling run: it stamps the duration on the result and
// updates the package collectors.
func record(strategy Strategy, start time.Time, res *Result, err error) {
	if err != nil {
		instrumentError(strategy, err)
		return
	}
	res.Stats.Strategy = strategy
	res.Stats.Duration = time.Since(start)
	instrumentRun(strategy, start, len(res.Points))
}
