package sampling

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/scatter/geom"
)

// Square is a pending candidate region identified by its min corner and its
// refinement level. Its side is derived from the level.
type Square struct {
	X, Z  float64
	Level int
}

// Center returns the center of the square given its side length.
func (s Square) Center(side float64) geom.Point {
	return geom.Point{X: s.X + side*0.5, Z: s.Z + side*0.5}
}

// Children splits the square into the 2x2 squares of the next level.
func (s Square) Children(childSide float64) [4]Square {
	next := s.Level + 1
	return [4]Square{
		{X: s.X, Z: s.Z, Level: next},
		{X: s.X + childSide, Z: s.Z, Level: next},
		{X: s.X, Z: s.Z + childSide, Level: next},
		{X: s.X + childSide, Z: s.Z + childSide, Level: next},
	}
}

// activeLists holds the pending squares of every refinement level together
// with the area ledger: the summed area per level and in total.
type activeLists struct {
	levels [][]Square
	sides  []float64
	area   []float64
	total  float64
}

func newActiveLists(maxLevels int, baseLength float64) *activeLists {
	a := &activeLists{
		levels: make([][]Square, maxLevels),
		sides:  make([]float64, maxLevels),
		area:   make([]float64, maxLevels),
	}
	for i := range a.sides {
		a.sides[i] = baseLength / math.Pow(2, float64(i))
	}
	return a
}

// maxLevels returns the number of refinement levels.
func (a *activeLists) maxLevels() int {
	return len(a.levels)
}

// side returns the side length of a square on the given level.
func (a *activeLists) side(level int) float64 {
	return a.sides[level]
}

// len returns the number of pending squares over all levels.
func (a *activeLists) len() int {
	n := 0
	for _, l := range a.levels {
		n += len(l)
	}
	return n
}

// push enqueues a square on its level and books its area.
func (a *activeLists) push(sq Square) {
	side := a.sides[sq.Level]
	sqArea := side * side
	a.levels[sq.Level] = append(a.levels[sq.Level], sq)
	a.area[sq.Level] += sqArea
	a.total += sqArea
}

// selectLevel returns the first non-empty level whose cumulative area range
// contains u. It reports false when u falls past the last range, which only
// happens after floating-point drift; the ledger is resynchronised then.
func (a *activeLists) selectLevel(u float64) (int, bool) {
	var cumulative float64
	for i, l := range a.levels {
		cumulative += a.area[i]
		if u < cumulative && len(l) > 0 {
			return i, true
		}
	}
	a.resync()
	return 0, false
}

// popRandom removes a uniformly chosen square from the given level and
// releases its area from the ledger.
func (a *activeLists) popRandom(level int, rng *rand.Rand) Square {
	l := a.levels[level]
	idx := rng.Intn(len(l))
	sq := l[idx]

	// Swap with last, then pop
	last := len(l) - 1
	l[idx] = l[last]
	a.levels[level] = l[:last]

	side := a.sides[level]
	sqArea := side * side
	a.area[level] = math.Max(a.area[level]-sqArea, 0)
	a.total = math.Max(a.total-sqArea, 0)

	if last == 0 {
		// Drop the rounding residue of an exhausted level.
		a.area[level] = 0
		a.resync()
	}

	return sq
}

// resync recomputes the total from the per-level areas.
func (a *activeLists) resync() {
	var total float64
	for _, v := range a.area {
		total += v
	}
	a.total = total
}
