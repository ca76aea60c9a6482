package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pthm-cable/scatter/config"
	"github.com/pthm-cable/scatter/geom"
)

// Output file names.
const (
	PointsFile    = "points.csv"
	RunsFile      = "runs.csv"
	PerfFile      = "perf.csv"
	BookmarksFile = "bookmarks.csv"
	ConfigFile    = "config.yaml"
	MetricsFile   = "metrics.prom"
)

// PointRecord is one row of points.csv.
type PointRecord struct {
	RunID string  `csv:"run_id"`
	Run   int     `csv:"run"`
	Index int     `csv:"index"`
	X     float64 `csv:"x"`
	Z     float64 `csv:"z"`
}

// OutputManager handles structured batch output with CSV logging.
type OutputManager struct {
	dir          string
	pointsFile   *os.File
	runsFile     *os.File
	perfFile     *os.File
	bookmarkFile *os.File

	// Track if headers have been written
	pointsHeaderWritten   bool
	runsHeaderWritten     bool
	perfHeaderWritten     bool
	bookmarkHeaderWritten bool

	written []string
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled). points.csv is only created
// when withPoints is set.
func NewOutputManager(dir string, withPoints bool) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	var err error
	if withPoints {
		if om.pointsFile, err = om.create(PointsFile); err != nil {
			return nil, err
		}
	}
	if om.runsFile, err = om.create(RunsFile); err != nil {
		om.Close()
		return nil, err
	}
	if om.perfFile, err = om.create(PerfFile); err != nil {
		om.Close()
		return nil, err
	}
	if om.bookmarkFile, err = om.create(BookmarksFile); err != nil {
		om.Close()
		return nil, err
	}

	return om, nil
}

func (om *OutputManager) create(name string) (*os.File, error) {
	f, err := os.Create(filepath.Join(om.dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	om.written = append(om.written, name)
	return f, nil
}

// writeCSV appends records to f, with a header row on the first write.
func writeCSV[T any](f *os.File, headerWritten *bool, records []T, what string) error {
	if !*headerWritten {
		if err := gocsv.Marshal(records, f); err != nil {
			return fmt.Errorf("writing %s: %w", what, err)
		}
		*headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, f); err != nil {
		return fmt.Errorf("writing %s: %w", what, err)
	}
	return nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	if err := cfg.WriteYAML(om.Path(ConfigFile)); err != nil {
		return err
	}
	om.written = append(om.written, ConfigFile)
	return nil
}

// WritePoints appends the points of one run to points.csv.
func (om *OutputManager) WritePoints(runID string, run int, points []geom.Point) error {
	if om == nil || om.pointsFile == nil || len(points) == 0 {
		return nil
	}

	records := make([]PointRecord, len(points))
	for i, p := range points {
		records[i] = PointRecord{RunID: runID, Run: run, Index: i, X: p.X, Z: p.Z}
	}
	return writeCSV(om.pointsFile, &om.pointsHeaderWritten, records, "points")
}

// WriteRun writes a run record to runs.csv.
func (om *OutputManager) WriteRun(r RunRecord) error {
	if om == nil {
		return nil
	}
	return writeCSV(om.runsFile, &om.runsHeaderWritten, []RunRecord{r}, "run")
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, runs int) error {
	if om == nil {
		return nil
	}
	return writeCSV(om.perfFile, &om.perfHeaderWritten, []PerfStatsCSV{stats.ToCSV(runs)}, "perf")
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return writeCSV(om.bookmarkFile, &om.bookmarkHeaderWritten, []Bookmark{b}, "bookmark")
}

// WriteMetrics dumps the registered Prometheus collectors in text format.
func (om *OutputManager) WriteMetrics(g prometheus.Gatherer) error {
	if om == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(om.Path(MetricsFile), g); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	om.written = append(om.written, MetricsFile)
	return nil
}

// WriteManifest saves m into the output directory, listing every file
// written so far.
func (om *OutputManager) WriteManifest(m *Manifest) error {
	if om == nil {
		return nil
	}
	m.Files = append([]string(nil), om.written...)
	if _, err := SaveManifest(m, om.dir); err != nil {
		return err
	}
	om.written = append(om.written, ManifestName)
	return nil
}

// Track records a file written into the directory by someone else, such as
// a preview.
func (om *OutputManager) Track(name string) {
	if om == nil {
		return
	}
	om.written = append(om.written, name)
}

// Path returns the path of name inside the output directory.
func (om *OutputManager) Path(name string) string {
	if om == nil {
		return ""
	}
	return filepath.Join(om.dir, name)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, f := range []*os.File{om.pointsFile, om.runsFile, om.perfFile, om.bookmarkFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
