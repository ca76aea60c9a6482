package sampling

import (
	"github.com/pthm-cable/scatter/geom"
)

// AccelerationGrid buckets accepted points into square cells whose side
// equals the disc radius. Any point closer than the radius to a query lies
// in the 3x3 block of cells around the query's cell.
type AccelerationGrid struct {
	origin    geom.Point
	radius    float64
	invRadius float64
	dims      int
	cells     [][]geom.Point // flat grid of point lists, row-major
	count     int
}

// NewAccelerationGrid creates a grid covering the square of the given side
// anchored at origin.
func NewAccelerationGrid(origin geom.Point, side, radius float64) *AccelerationGrid {
	dims := gridDims(side, radius)

	// Cells start empty; most stay at zero or one point.
	return &AccelerationGrid{
		origin:    origin,
		radius:    radius,
		invRadius: 1 / radius,
		dims:      dims,
		cells:     make([][]geom.Point, dims*dims),
	}
}

func gridDims(side, radius float64) int {
	return int(side/radius) + 1
}

// Dims returns the number of cells per axis.
func (g *AccelerationGrid) Dims() int {
	return g.dims
}

// Len returns the number of inserted points.
func (g *AccelerationGrid) Len() int {
	return g.count
}

// Insert adds a point to the cell that contains it.
func (g *AccelerationGrid) Insert(p geom.Point) {
	col, row := g.cellCoords(p)
	idx := row*g.dims + col
	g.cells[idx] = append(g.cells[idx], p)
	g.count++
}

// AnyWithin reports whether an inserted point lies closer than the radius
// to p.
func (g *AccelerationGrid) AnyWithin(p geom.Point) bool {
	return g.anyWithinRadius(p, 0)
}

// Covers reports whether the disc of an inserted point contains the whole
// axis-aligned square of the given side centered at center.
func (g *AccelerationGrid) Covers(center geom.Point, side float64) bool {
	return g.anyWithinRadius(center, side)
}

// anyWithinRadius scans the 3x3 neighbourhood of the cell holding center.
// With side == 0 it tests point distance, otherwise the distance to the
// farthest corner of the square.
func (g *AccelerationGrid) anyWithinRadius(center geom.Point, side float64) bool {
	col, row := g.cellCoords(center)

	for dr := -1; dr <= 1; dr++ {
		r := row + dr
		if r < 0 || r >= g.dims {
			continue
		}
		for dc := -1; dc <= 1; dc++ {
			c := col + dc
			if c < 0 || c >= g.dims {
				continue
			}

			for _, p := range g.cells[r*g.dims+c] {
				if side > 0 {
					if geom.FarthestCornerDistance(p, center, side) < g.radius {
						return true
					}
				} else if geom.Distance(p, center) < g.radius {
					return true
				}
			}
		}
	}

	return false
}

// cellCoords returns the column and row holding p.
func (g *AccelerationGrid) cellCoords(p geom.Point) (col, row int) {
	col = clampCell(int((p.X-g.origin.X)*g.invRadius), g.dims)
	row = clampCell(int((p.Z-g.origin.Z)*g.invRadius), g.dims)
	return col, row
}

func clampCell(i, dims int) int {
	if i < 0 {
		return 0
	}
	if i >= dims {
		return dims - 1
	}
	return i
}
