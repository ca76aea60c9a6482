// Package geom provides the planar primitives shared by the samplers:
// points on the xz-plane, axis-aligned bounds and distance helpers.
package geom

import (
	"math"
	"math/rand"
)

// Point is a location on the horizontal xz-plane.
type Point struct {
	X float64 `csv:"x" json:"x"`
	Z float64 `csv:"z" json:"z"`
}

func (a Point) Add(b Point) Point { return Point{a.X + b.X, a.Z + b.Z} }
func (a Point) Sub(b Point) Point { return Point{a.X - b.X, a.Z - b.Z} }
func (a Point) Mul(s float64) Point { return Point{a.X * s, a.Z * s} }
func (a Point) Len2() float64 { return a.X*a.X + a.Z*a.Z }
func (a Point) Len() float64 { return math.Sqrt(a.Len2()) }
func (a Point) Eq(b Point) bool { return a.X == b.X && a.Z == b.Z }

// Bounds is an axis-aligned rectangle on the xz-plane.
type Bounds struct {
	XMin float64 `yaml:"x_min" json:"x_min"`
	XMax float64 `yaml:"x_max" json:"x_max"`
	ZMin float64 `yaml:"z_min" json:"z_min"`
	ZMax float64 `yaml:"z_max" json:"z_max"`
}

// NewBounds returns the rectangle spanning [xMin, xMax] x [zMin, zMax].
func NewBounds(xMin, xMax, zMin, zMax float64) Bounds {
	return Bounds{XMin: xMin, XMax: xMax, ZMin: zMin, ZMax: zMax}
}

func (b Bounds) Width() float64 { return b.XMax - b.XMin }
func (b Bounds) Height() float64 { return b.ZMax - b.ZMin }
func (b Bounds) Area() float64 { return b.Width() * b.Height() }
func (b Bounds) Min() Point { return Point{b.XMin, b.ZMin} }
func (b Bounds) Max() Point { return Point{b.XMax, b.ZMax} }

// Side returns the side length of the smallest square anchored at the
// min corner that contains the rectangle.
func (b Bounds) Side() float64 {
	return math.Max(b.Width(), b.Height())
}

// Empty reports whether the rectangle has no interior. NaN extents count as
// empty.
func (b Bounds) Empty() bool {
	return !(b.XMax > b.XMin) || !(b.ZMax > b.ZMin)
}

// Contains reports whether p lies inside the rectangle, edges included.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.XMin && p.X <= b.XMax && p.Z >= b.ZMin && p.Z <= b.ZMax
}

// Expand grows the rectangle by margin on every side.
func (b Bounds) Expand(margin float64) Bounds {
	return Bounds{
		XMin: b.XMin - margin,
		XMax: b.XMax + margin,
		ZMin: b.ZMin - margin,
		ZMax: b.ZMax + margin,
	}
}

// Distance returns the euclidean distance between two points.
func Distance(p1, p2 Point) float64 {
	dx := p2.X - p1.X
	dz := p2.Z - p1.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// FarthestCornerDistance returns the distance from p to the corner of the
// axis-aligned square (centered at c, side length side) that lies farthest
// from p.
func FarthestCornerDistance(p, c Point, side float64) float64 {
	a := math.Abs(c.X-p.X) + side*0.5
	b := math.Abs(c.Z-p.Z) + side*0.5
	return math.Sqrt(a*a + b*b)
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

// RandomIn returns a value uniformly sampled from [min, max).
func RandomIn(rng *rand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}
