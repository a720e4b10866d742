package solver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreshSolverClicksSettledCells(t *testing.T) {
	s := New(4, 4, 2)

	// with only the total-mines constraint the uniform density estimate
	// is already feasible, so nothing moves and the stability shortcut
	// picks the first unclicked cell in column order
	reveal, flag, err := s.Decide()
	require.NoError(t, err)
	assert.Equal(t, []Point{{0, 0}}, reveal)
	assert.Empty(t, flag)

	reveal, flag, err = s.Decide()
	require.NoError(t, err)
	assert.Equal(t, []Point{{0, 1}}, reveal)
	assert.Empty(t, flag)
}

func TestDecideNeverRepeatsACell(t *testing.T) {
	s := New(3, 3, 1)

	seen := make(map[Point]bool)
	for round := 0; round < 6; round++ {
		reveal, _, err := s.Decide()
		require.NoError(t, err)
		for _, p := range reveal {
			assert.Falsef(t, seen[p], "round %d revealed %v twice", round, p)
			seen[p] = true
		}
	}
}

func TestForcedMineGetsFlagged(t *testing.T) {
	// 3x3 with the single mine at 2:2; disclosing every safe cell's
	// count pins the mine estimate to one
	s := New(3, 3, 1)

	counts := [3][3]int{
		{0, 0, 0},
		{0, 1, 1},
		{0, 1, -1},
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if counts[y][x] >= 0 {
				s.AddConstraint(x, y, counts[y][x])
			}
		}
	}

	reveal, flag, err := s.Decide()
	require.NoError(t, err)

	require.Equal(t, []Point{{2, 2}}, flag)
	assert.InDelta(t, 1.0, s.Estimate(2, 2), Epsilon)
	assert.NotContains(t, reveal, Point{2, 2})

	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if x == 2 && y == 2 {
				continue
			}
			assert.InDeltaf(t, 0.0, s.Estimate(x, y), Epsilon,
				"safe cell %d:%d kept mass", x, y)
		}
	}
}

func TestKnownCount(t *testing.T) {
	s := New(3, 3, 1)

	assert.Equal(t, -1, s.KnownCount(1, 1))
	s.AddConstraint(1, 1, 1)
	assert.Equal(t, 1, s.KnownCount(1, 1))
}

func TestInconsistentLog(t *testing.T) {
	tests := []struct {
		name string
		feed func(s *Solver)
	}{
		{
			// eight neighbors cannot hold nine mines
			name: "count exceeds neighborhood",
			feed: func(s *Solver) { s.AddConstraint(1, 1, 9) },
		},
		{
			// a zero count on the center empties the whole board,
			// contradicting the total-mines constraint
			name: "zero count starves total",
			feed: func(s *Solver) {
				s.AddConstraint(1, 1, 0)
				for _, p := range []Point{{0, 0}, {1, 0}, {2, 0}, {0, 1}, {2, 1}, {0, 2}, {1, 2}, {2, 2}} {
					s.AddConstraint(p.X, p.Y, 0)
				}
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := New(3, 3, 1)
			test.feed(s)
			_, _, err := s.Decide()
			require.ErrorIs(t, err, ErrInconsistent)
		})
	}
}

func TestConstraintSkipsClickedNeighbors(t *testing.T) {
	s := New(3, 3, 1)

	// first decide clicks 0:0, so a later constraint on 1:1 must not
	// count it among the unknown neighbors
	_, _, err := s.Decide()
	require.NoError(t, err)

	s.AddConstraint(1, 1, 1)
	last := s.constraints[len(s.constraints)-2]
	assert.Len(t, last.cells, 7)
	assert.NotContains(t, last.cells, 0)
}

func TestOutOfBoundsPanics(t *testing.T) {
	s := New(3, 3, 1)

	for _, f := range []func(){
		func() { s.Estimate(3, 0) },
		func() { s.KnownCount(0, -1) },
		func() { s.AddConstraint(0, 3, 1) },
	} {
		assert.Panics(t, f)
	}
}

func TestEstimatesStayInUnitBox(t *testing.T) {
	s := New(5, 5, 5)
	s.AddConstraint(2, 2, 3)
	s.AddConstraint(0, 0, 1)

	_, _, err := s.Decide()
	require.NoError(t, err)

	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			est := s.Estimate(x, y)
			assert.Truef(t, est >= 0 && est <= 1,
				"estimate %s out of [0, 1]", fmt.Sprintf("%g @ %d:%d", est, x, y))
		}
	}
}
