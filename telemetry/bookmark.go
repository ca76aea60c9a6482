package telemetry

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkPrecisionExhausted  BookmarkType = "precision_exhausted"
	BookmarkSparseRun           BookmarkType = "sparse_run"
	BookmarkDenseRun            BookmarkType = "dense_run"
	BookmarkSlowRun             BookmarkType = "slow_run"
	BookmarkSeparationViolation BookmarkType = "separation_violation"
)

// Bookmark flags a run worth a closer look.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Run         int          `csv:"run"`
	RunID       string       `csv:"run_id"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Warn("bookmark",
		"type", string(b.Type),
		"run", b.Run,
		"run_id", b.RunID,
		"description", b.Description,
	)
}

// BookmarkDetector compares each run against the runs before it.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []RunRecord
	historySize int
	historyIdx  int
	historyFull bool

	sigma      float64 // point count deviation, in standard deviations
	slowFactor float64 // duration multiple of the rolling average
}

// NewBookmarkDetector creates a detector with the given history size and
// thresholds. Non-positive thresholds fall back to 3.
func NewBookmarkDetector(historySize int, sigma, slowFactor float64) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	if sigma <= 0 {
		sigma = 3
	}
	if slowFactor <= 0 {
		slowFactor = 3
	}
	return &BookmarkDetector{
		history:     make([]RunRecord, historySize),
		historySize: historySize,
		sigma:       sigma,
		slowFactor:  slowFactor,
	}
}

// Check analyzes the latest run and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(r RunRecord) []Bookmark {
	var bookmarks []Bookmark

	if r.PrecisionExhausted > 0 {
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkPrecisionExhausted,
			Run:         r.Index,
			RunID:       r.RunID,
			Description: fmt.Sprintf("%d squares dropped at the deepest level", r.PrecisionExhausted),
		})
	}
	if b := bd.checkPointCount(r); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkSlowRun(r); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(r)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(r RunRecord) {
	bd.history[bd.historyIdx] = r
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []RunRecord {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkPointCount(r RunRecord) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	counts := make([]float64, len(history))
	for i, h := range history {
		counts[i] = float64(h.Points)
	}
	mean, std := stat.MeanStdDev(counts, nil)
	// Identical counts give no spread to compare against
	if std == 0 || math.IsNaN(std) {
		return nil
	}

	z := (float64(r.Points) - mean) / std
	switch {
	case z < -bd.sigma:
		return &Bookmark{
			Type:        BookmarkSparseRun,
			Run:         r.Index,
			RunID:       r.RunID,
			Description: fmt.Sprintf("%d points is %.1f sigma below the average %.1f", r.Points, -z, mean),
		}
	case z > bd.sigma:
		return &Bookmark{
			Type:        BookmarkDenseRun,
			Run:         r.Index,
			RunID:       r.RunID,
			Description: fmt.Sprintf("%d points is %.1f sigma above the average %.1f", r.Points, z, mean),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSlowRun(r RunRecord) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int64
	for _, h := range history {
		total += h.DurationUS
	}
	avg := float64(total) / float64(len(history))
	if avg <= 0 {
		return nil
	}

	if float64(r.DurationUS) > avg*bd.slowFactor {
		return &Bookmark{
			Type:        BookmarkSlowRun,
			Run:         r.Index,
			RunID:       r.RunID,
			Description: fmt.Sprintf("Run took %dus, %.1fx the average %.0fus", r.DurationUS, float64(r.DurationUS)/avg, avg),
		}
	}
	return nil
}
