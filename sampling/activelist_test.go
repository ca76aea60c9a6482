package sampling

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func ledgerSum(a *activeLists) float64 {
	var sum float64
	for _, v := range a.area {
		sum += v
	}
	return sum
}

func TestSquareChildrenTileParent(t *testing.T) {
	parent := Square{X: 2, Z: 3, Level: 1}
	children := parent.Children(0.5)

	want := []Square{
		{X: 2, Z: 3, Level: 2},
		{X: 2.5, Z: 3, Level: 2},
		{X: 2, Z: 3.5, Level: 2},
		{X: 2.5, Z: 3.5, Level: 2},
	}
	require.ElementsMatch(t, want, children[:])

	c := parent.Center(1)
	require.InDelta(t, 2.5, c.X, 1e-12)
	require.InDelta(t, 3.5, c.Z, 1e-12)
}

func TestActiveListsSides(t *testing.T) {
	a := newActiveLists(4, 2)
	require.Equal(t, 4, a.maxLevels())
	require.Equal(t, 2.0, a.side(0))
	require.Equal(t, 1.0, a.side(1))
	require.Equal(t, 0.5, a.side(2))
	require.Equal(t, 0.25, a.side(3))
}

func TestActiveListsLedger(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	a := newActiveLists(8, 1)

	for i := 0; i < 10; i++ {
		a.push(Square{X: float64(i), Level: 0})
	}
	for i := 0; i < 40; i++ {
		a.push(Square{X: float64(i), Level: 2})
	}
	require.Equal(t, 50, a.len())
	require.InDelta(t, 10+40.0/16, a.total, 1e-12)
	require.InDelta(t, ledgerSum(a), a.total, 1e-12)

	for a.len() > 0 {
		level := 0
		if len(a.levels[0]) == 0 {
			level = 2
		}
		a.popRandom(level, rng)
		require.InDelta(t, ledgerSum(a), a.total, 1e-9)
		require.GreaterOrEqual(t, a.total, 0.0)
	}

	require.Zero(t, a.total)
	for _, v := range a.area {
		require.Zero(t, v)
	}
}

func TestActiveListsPopRemovesExactlyOne(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	a := newActiveLists(2, 1)
	for i := 0; i < 5; i++ {
		a.push(Square{X: float64(i)})
	}

	seen := map[float64]bool{}
	for i := 0; i < 5; i++ {
		sq := a.popRandom(0, rng)
		require.False(t, seen[sq.X], "square popped twice")
		seen[sq.X] = true
	}
	require.Len(t, seen, 5)
	require.Empty(t, a.levels[0])
}

func TestActiveListsSelectLevelFollowsArea(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	a := newActiveLists(4, 1)

	// Level 0 holds area 3, level 2 holds area 1
	for i := 0; i < 3; i++ {
		a.push(Square{X: float64(i)})
	}
	for i := 0; i < 16; i++ {
		a.push(Square{X: float64(i), Level: 2})
	}

	const draws = 20000
	counts := map[int]int{}
	for i := 0; i < draws; i++ {
		level, ok := a.selectLevel(rng.Float64() * a.total * selectionScale)
		require.True(t, ok)
		counts[level]++
	}

	require.Zero(t, counts[1])
	require.Zero(t, counts[3])
	require.InDelta(t, 0.75, float64(counts[0])/draws, 0.02)
	require.InDelta(t, 0.25, float64(counts[2])/draws, 0.02)
}

func TestActiveListsSelectLevelPastRangeResyncs(t *testing.T) {
	a := newActiveLists(2, 1)
	a.push(Square{})
	a.total += 0.5 // simulated drift

	_, ok := a.selectLevel(1.2)
	require.False(t, ok)
	require.Equal(t, 1.0, a.total)

	level, ok := a.selectLevel(0.9)
	require.True(t, ok)
	require.Zero(t, level)
}

func TestActiveListsEmptyLevelHasNoResidue(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := newActiveLists(3, 0.1)
	for i := 0; i < 7; i++ {
		a.push(Square{X: float64(i), Level: 1})
	}
	for i := 0; i < 7; i++ {
		a.popRandom(1, rng)
	}
	require.Equal(t, 0.0, a.area[1])
	require.False(t, math.Signbit(a.total))
	require.Zero(t, a.total)
}
