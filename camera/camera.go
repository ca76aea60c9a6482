// Package camera maps the sampling domain onto a raster or vector viewport.
package camera

import (
	"math"

	"github.com/pthm-cable/scatter/geom"
)

// Camera controls the viewport onto the xz-plane. Screen x follows world x
// and screen y follows world z.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Z float64

	// Zoom in pixels per world unit
	Zoom float64

	// Viewport dimensions in pixels
	ViewportW, ViewportH float64

	// Bounds is the framed domain and Margin the pixels kept around it
	Bounds geom.Bounds
	Margin float64

	// Zoom constraints, as multiples of the fitted zoom
	MinZoom, MaxZoom float64
}

// New creates a camera that frames bounds inside the viewport with margin
// pixels on the tighter axis. The aspect ratio of the domain is kept.
func New(viewportW, viewportH float64, bounds geom.Bounds, margin float64) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		Bounds:    bounds,
		Margin:    margin,
		MinZoom:   0.25,
		MaxZoom:   64,
	}
	c.Reset()
	return c
}

// FitZoom returns the zoom at which the whole domain fits the viewport.
func (c *Camera) FitZoom() float64 {
	w := c.Bounds.Width()
	h := c.Bounds.Height()
	if w <= 0 || h <= 0 {
		return 1
	}
	zx := (c.ViewportW - 2*c.Margin) / w
	zz := (c.ViewportH - 2*c.Margin) / h
	return math.Max(math.Min(zx, zz), math.SmallestNonzeroFloat64)
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(p geom.Point) (sx, sy float64) {
	sx = c.ViewportW/2 + (p.X-c.X)*c.Zoom
	sy = c.ViewportH/2 + (p.Z-c.Z)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) geom.Point {
	return geom.Point{
		X: c.X + (sx-c.ViewportW/2)/c.Zoom,
		Z: c.Z + (sy-c.ViewportH/2)/c.Zoom,
	}
}

// Scale converts a world length to pixels.
func (c *Camera) Scale(d float64) float64 {
	return d * c.Zoom
}

// IsVisible returns true if a circle at p with given world radius could be
// visible on screen (conservative check for culling).
func (c *Camera) IsVisible(p geom.Point, radius float64) bool {
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return math.Abs(p.X-c.X) <= halfW && math.Abs(p.Z-c.Z) <= halfH
}

// LookAt centers the camera on p.
func (c *Camera) LookAt(p geom.Point) {
	c.X = p.X
	c.Z = p.Z
}

// SetZoom sets the zoom as a multiple of the fitted zoom, clamped to
// min/max.
func (c *Camera) SetZoom(factor float64) {
	c.Zoom = c.FitZoom() * clamp(factor, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom / c.FitZoom() * factor)
}

// Reset centers the domain and fits it to the viewport.
func (c *Camera) Reset() {
	c.X = (c.Bounds.XMin + c.Bounds.XMax) / 2
	c.Z = (c.Bounds.ZMin + c.Bounds.ZMax) / 2
	c.Zoom = c.FitZoom()
}

// VisibleWorldBounds returns the world rectangle covered by the viewport.
func (c *Camera) VisibleWorldBounds() geom.Bounds {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	return geom.NewBounds(c.X-halfW, c.X+halfW, c.Z-halfH, c.Z+halfH)
}

// clamp restricts a value to a range.
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
