package telemetry

import (
	"testing"
)

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_PrecisionExhausted(t *testing.T) {
	bd := NewBookmarkDetector(10, 3, 3)

	bookmarks := bd.Check(RunRecord{Index: 0, Points: 100, PrecisionExhausted: 2})
	if !hasBookmark(bookmarks, BookmarkPrecisionExhausted) {
		t.Error("expected precision_exhausted bookmark on the first run")
	}
}

func TestBookmarkDetector_SparseAndDense(t *testing.T) {
	bd := NewBookmarkDetector(10, 3, 3)

	for i, n := range []int{100, 102, 98, 101, 99} {
		if got := bd.Check(RunRecord{Index: i, Points: n, DurationUS: 1000}); len(got) != 0 {
			t.Fatalf("unexpected bookmarks in steady history: %v", got)
		}
	}

	if !hasBookmark(bd.Check(RunRecord{Index: 5, Points: 60, DurationUS: 1000}), BookmarkSparseRun) {
		t.Error("expected sparse_run bookmark")
	}
	if !hasBookmark(bd.Check(RunRecord{Index: 6, Points: 200, DurationUS: 1000}), BookmarkDenseRun) {
		t.Error("expected dense_run bookmark")
	}
}

func TestBookmarkDetector_SlowRun(t *testing.T) {
	bd := NewBookmarkDetector(10, 3, 3)

	for i := 0; i < 4; i++ {
		bd.Check(RunRecord{Index: i, Points: 50, DurationUS: 1000})
	}

	bookmarks := bd.Check(RunRecord{Index: 4, Points: 50, DurationUS: 5000})
	if !hasBookmark(bookmarks, BookmarkSlowRun) {
		t.Error("expected slow_run bookmark")
	}
	if hasBookmark(bookmarks, BookmarkSparseRun) || hasBookmark(bookmarks, BookmarkDenseRun) {
		t.Error("identical point counts should not flag a count outlier")
	}
}

func TestBookmarkDetector_NeedsHistory(t *testing.T) {
	bd := NewBookmarkDetector(10, 3, 3)

	bd.Check(RunRecord{Index: 0, Points: 10, DurationUS: 10})
	bookmarks := bd.Check(RunRecord{Index: 1, Points: 1000, DurationUS: 100000})
	if len(bookmarks) != 0 {
		t.Errorf("expected no bookmarks before history builds up, got %v", bookmarks)
	}
}

func TestBookmarkDetector_HistoryWraps(t *testing.T) {
	bd := NewBookmarkDetector(3, 3, 3)

	for i := 0; i < 7; i++ {
		bd.Check(RunRecord{Index: i, Points: 10 + i})
	}
	if !bd.historyFull {
		t.Fatal("expected history to be full")
	}
	if got := len(bd.getHistory()); got != 3 {
		t.Errorf("history length = %d, want 3", got)
	}
}
