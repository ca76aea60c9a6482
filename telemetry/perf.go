package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one sampling run.
const (
	PhaseSample  = "sample"
	PhaseAnalyze = "analyze"
	PhaseRender  = "render"
	PhaseWrite   = "write"
)

var phases = []string{PhaseSample, PhaseAnalyze, PhaseRender, PhaseWrite}

// PerfSample holds timing data for a single run.
type PerfSample struct {
	RunDuration time.Duration
	Phases      map[string]time.Duration
	Points      int
}

// PerfCollector tracks performance metrics over a rolling window of runs.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	runStart      time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a new performance collector averaging over the
// last windowSize runs.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 32
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartRun begins timing a new run.
func (p *PerfCollector) StartRun() {
	p.runStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase, ending the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndRun finishes timing the current run, which produced points points, and
// records the sample.
func (p *PerfCollector) EndRun(points int) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		RunDuration: now.Sub(p.runStart),
		Phases:      p.currentPhases,
		Points:      points,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgRunDuration time.Duration
	MinRunDuration time.Duration
	MaxRunDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total run time
	PhasePct map[string]float64

	RunsPerSecond float64

	// Sampler throughput, over the sample phase only
	AvgPoints       float64
	PointsPerSecond float64
	NanosPerPoint   float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var total time.Duration
	var minRun, maxRun time.Duration
	var points int
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.RunDuration
		points += s.Points

		if i == 0 || s.RunDuration < minRun {
			minRun = s.RunDuration
		}
		if s.RunDuration > maxRun {
			maxRun = s.RunDuration
		}

		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avg := total / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	var runsPerSec float64
	if avg > 0 {
		runsPerSec = float64(time.Second) / float64(avg)
	}

	var pointsPerSec, nanosPerPoint float64
	if sampleTime := phaseSum[PhaseSample]; sampleTime > 0 && points > 0 {
		pointsPerSec = float64(points) / sampleTime.Seconds()
		nanosPerPoint = float64(sampleTime.Nanoseconds()) / float64(points)
	}

	return PerfStats{
		AvgRunDuration:  avg,
		MinRunDuration:  minRun,
		MaxRunDuration:  maxRun,
		PhaseAvg:        phaseAvg,
		PhasePct:        phasePct,
		RunsPerSecond:   runsPerSec,
		AvgPoints:       float64(points) / float64(p.sampleCount),
		PointsPerSecond: pointsPerSec,
		NanosPerPoint:   nanosPerPoint,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_run_us", s.AvgRunDuration.Microseconds(),
		"min_run_us", s.MinRunDuration.Microseconds(),
		"max_run_us", s.MaxRunDuration.Microseconds(),
		"runs_per_sec", s.RunsPerSecond,
		"avg_points", s.AvgPoints,
		"points_per_sec", int64(s.PointsPerSecond),
	}

	for _, phase := range phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", float64(int(pct*10))/10.0)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_run_us", s.AvgRunDuration.Microseconds()),
		slog.Int64("min_run_us", s.MinRunDuration.Microseconds()),
		slog.Int64("max_run_us", s.MaxRunDuration.Microseconds()),
		slog.Float64("runs_per_sec", s.RunsPerSecond),
		slog.Float64("avg_points", s.AvgPoints),
		slog.Float64("points_per_sec", s.PointsPerSecond),
		slog.Float64("ns_per_point", s.NanosPerPoint),
	}

	for _, phase := range phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Runs       int     `csv:"runs"`
	AvgRunUS   int64   `csv:"avg_run_us"`
	MinRunUS   int64   `csv:"min_run_us"`
	MaxRunUS   int64   `csv:"max_run_us"`
	RunsPerSec float64 `csv:"runs_per_sec"`
	AvgPoints  float64 `csv:"avg_points"`
	PointsSec  float64 `csv:"points_per_sec"`
	NsPerPoint float64 `csv:"ns_per_point"`
	SamplePct  float64 `csv:"sample_pct"`
	AnalyzePct float64 `csv:"analyze_pct"`
	RenderPct  float64 `csv:"render_pct"`
	WritePct   float64 `csv:"write_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(runs int) PerfStatsCSV {
	return PerfStatsCSV{
		Runs:       runs,
		AvgRunUS:   s.AvgRunDuration.Microseconds(),
		MinRunUS:   s.MinRunDuration.Microseconds(),
		MaxRunUS:   s.MaxRunDuration.Microseconds(),
		RunsPerSec: s.RunsPerSecond,
		AvgPoints:  s.AvgPoints,
		PointsSec:  s.PointsPerSecond,
		NsPerPoint: s.NanosPerPoint,
		SamplePct:  s.PhasePct[PhaseSample],
		AnalyzePct: s.PhasePct[PhaseAnalyze],
		RenderPct:  s.PhasePct[PhaseRender],
		WritePct:   s.PhasePct[PhaseWrite],
	}
}
