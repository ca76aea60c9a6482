package camera

import (
	"math"
	"testing"

	"github.com/pthm-cable/scatter/geom"
)

func TestNewFitsDomain(t *testing.T) {
	cam := New(800, 600, geom.NewBounds(0, 200, 0, 100), 20)

	if cam.X != 100 || cam.Z != 50 {
		t.Errorf("expected camera at (100, 50), got (%f, %f)", cam.X, cam.Z)
	}
	// Width is the tighter axis: (800-40)/200
	if math.Abs(cam.Zoom-3.8) > 1e-9 {
		t.Errorf("expected zoom 3.8, got %f", cam.Zoom)
	}

	sx, _ := cam.WorldToScreen(geom.Point{X: 0, Z: 50})
	if math.Abs(sx-20) > 1e-9 {
		t.Errorf("expected domain edge at the margin, got x=%f", sx)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1280, 720, geom.NewBounds(-10, 10, -5, 5), 0)

	sx, sy := cam.WorldToScreen(geom.Point{X: 0, Z: 0})
	if math.Abs(sx-640) > 0.01 || math.Abs(sy-360) > 0.01 {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}

	// z grows down the screen
	_, below := cam.WorldToScreen(geom.Point{X: 0, Z: 4})
	if below <= sy {
		t.Errorf("expected larger z lower on screen, got %f <= %f", below, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, geom.NewBounds(3, 40, -2, 11), 10)

	testCases := []struct{ sx, sy float64 }{
		{640, 360},  // center
		{100, 100},  // top-left
		{1200, 600}, // near bottom-right
	}

	for _, tc := range testCases {
		p := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(p)
		if math.Abs(sx-tc.sx) > 1e-9 || math.Abs(sy-tc.sy) > 1e-9 {
			t.Errorf("roundtrip failed: (%f,%f) -> %v -> (%f,%f)", tc.sx, tc.sy, p, sx, sy)
		}
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(400, 400, geom.NewBounds(0, 10, 0, 10), 0)
	fit := cam.FitZoom()

	cam.SetZoom(1000)
	if math.Abs(cam.Zoom-fit*cam.MaxZoom) > 1e-9 {
		t.Errorf("expected zoom clamped to max, got %f", cam.Zoom)
	}

	cam.SetZoom(0.001)
	if math.Abs(cam.Zoom-fit*cam.MinZoom) > 1e-9 {
		t.Errorf("expected zoom clamped to min, got %f", cam.Zoom)
	}

	cam.Reset()
	cam.ZoomBy(2)
	if math.Abs(cam.Zoom-2*fit) > 1e-9 {
		t.Errorf("expected zoom doubled, got %f", cam.Zoom)
	}
	if got := cam.Scale(1.5); math.Abs(got-3*fit) > 1e-9 {
		t.Errorf("Scale(1.5) = %f, want %f", got, 3*fit)
	}
}

func TestVisibility(t *testing.T) {
	cam := New(400, 400, geom.NewBounds(0, 10, 0, 10), 0)
	cam.ZoomBy(4)
	cam.LookAt(geom.Point{X: 2, Z: 2})

	vis := cam.VisibleWorldBounds()
	if math.Abs(vis.Width()-2.5) > 1e-9 || !vis.Contains(geom.Point{X: 2, Z: 2}) {
		t.Errorf("visible bounds = %+v", vis)
	}

	if !cam.IsVisible(geom.Point{X: 2.5, Z: 2.5}, 0) {
		t.Error("expected nearby point visible")
	}
	if cam.IsVisible(geom.Point{X: 8, Z: 8}, 0.5) {
		t.Error("expected far point culled")
	}
	if !cam.IsVisible(geom.Point{X: 3.3, Z: 2}, 0.1) {
		t.Error("expected circle overlapping the edge visible")
	}
}
