// Iterative linear-relaxation solver for mine-detection boards.
//
// Each cell carries a continuous estimate in [0, 1] of being a mine.
// Revealed neighbor counts accumulate as linear equality constraints,
// and every round the solver finds a feasible point of the relaxed
// system to pick cells worth revealing or flagging. The "settled value
// implies safe" shortcut below is a heuristic inherited from the
// relaxation, not a soundness proof.

package solver

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

const (
	// Epsilon is the comparison tolerance for stability, minimality
	// and near-one classification of estimates.
	Epsilon = 1e-6

	// convergence tolerance and iteration budget of one relaxation
	// solve; ridge keeps the Gram matrix invertible when the log
	// accumulates redundant constraints
	solveTol  = 1e-9
	ridge     = 1e-10
	solveMaxI = 2000
)

// ErrInconsistent reports that the accumulated constraint log has no
// feasible relaxed solution. Under correct orchestration this is
// unreachable; it is fatal to the game instance either way.
var ErrInconsistent = errors.New("constraint set is infeasible")

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// constraint is one linear equality: the estimates over cells sum to
// sum. The log is append-only for the lifetime of one board; problem
// size grows monotonically with every reveal.
type constraint struct {
	cells []int
	sum   float64
}

type Solver struct {
	width, height int
	mineCount     int
	ncells        int

	estimate []float64
	prev     []float64

	constraints []constraint
	known       []int

	clicked set[int]
	flagged set[int]
}

// New builds a solver for a width x height board holding mineCount
// mines. The solver never observes the board itself; all information
// arrives through AddConstraint.
func New(width, height, mineCount int) *Solver {
	n := width * height
	density := float64(mineCount) / float64(n)

	s := &Solver{
		width:     width,
		height:    height,
		mineCount: mineCount,
		ncells:    n,
		estimate:  make([]float64, n),
		prev:      make([]float64, n),
		known:     make([]int, n),
		clicked:   make(set[int]),
		flagged:   make(set[int]),
	}
	for i := 0; i < n; i++ {
		s.estimate[i] = density
		s.prev[i] = density
		s.known[i] = -1
	}

	total := constraint{cells: make([]int, n), sum: float64(mineCount)}
	for i := range total.cells {
		total.cells[i] = i
	}
	s.constraints = append(s.constraints, total)

	return s
}

func (s *Solver) validatePoint(x, y int) bool {
	return 0 <= x && x < s.width && 0 <= y && y < s.height
}

// Estimate returns the current relaxed mine probability of cell x:y.
func (s *Solver) Estimate(x, y int) float64 {
	if !s.validatePoint(x, y) {
		panic(AssertionError{fmt.Sprintf("cell %d:%d out of %dx%d solver", x, y, s.width, s.height)})
	}
	return s.estimate[y*s.width+x]
}

// KnownCount returns the disclosed neighbor-mine count of cell x:y, or
// -1 when the cell has not been revealed to the solver.
func (s *Solver) KnownCount(x, y int) int {
	if !s.validatePoint(x, y) {
		panic(AssertionError{fmt.Sprintf("cell %d:%d out of %dx%d solver", x, y, s.width, s.height)})
	}
	return s.known[y*s.width+x]
}

// AddConstraint records that the revealed cell x:y reported mineCount
// mined neighbors. It appends two equalities to the log: the estimates
// of the cell's not-yet-clicked neighbors sum to mineCount, and the
// cell's own estimate is zero.
func (s *Solver) AddConstraint(x, y, mineCount int) {
	if !s.validatePoint(x, y) {
		panic(AssertionError{fmt.Sprintf("cell %d:%d out of %dx%d solver", x, y, s.width, s.height)})
	}

	Log.WithFields(logrus.Fields{
		"x": x, "y": y, "mine_count": mineCount,
	}).Trace("adding constraint")

	var neighbors []int
	for nx := x - 1; nx <= x+1; nx++ {
		for ny := y - 1; ny <= y+1; ny++ {
			if !s.validatePoint(nx, ny) || (nx == x && ny == y) {
				continue
			}
			i := ny*s.width + nx
			if _, ok := s.clicked[i]; ok {
				continue
			}
			neighbors = append(neighbors, i)
		}
	}

	i := y*s.width + x
	s.constraints = append(s.constraints,
		constraint{cells: neighbors, sum: float64(mineCount)},
		constraint{cells: []int{i}, sum: 0},
	)
	s.known[i] = mineCount
}

// Decide re-solves the relaxation and extracts this round's decisions.
//
// A cell whose estimate did not move since the previous solve (within
// Epsilon) is treated as settled/unconstrained and returned alone as a
// reveal; this is the stability heuristic, a proxy for "likely safe"
// rather than a guarantee. Otherwise every undecided cell tied (within
// Epsilon) for the minimum estimate is revealed, and every cell with an
// estimate within Epsilon of one is flagged. Cells returned once are
// never reconsidered.
func (s *Solver) Decide() (reveal, flag []Point, err error) {
	x, err := s.solve()
	if err != nil {
		return nil, nil, err
	}
	s.estimate = x
	defer func() { copy(s.prev, x) }()

	minEst := 1.0
	for i := 0; i < s.width; i++ {
		for j := 0; j < s.height; j++ {
			k := j*s.width + i
			if _, done := s.clicked[k]; !done {
				if math.Abs(x[k]-s.prev[k]) < Epsilon {
					s.clicked[k] = void{}
					return []Point{{i, j}}, nil, nil
				}
				if x[k] < minEst {
					minEst = x[k]
					reveal = []Point{{i, j}}
					continue
				}
				if math.Abs(x[k]-minEst) < Epsilon {
					reveal = append(reveal, Point{i, j})
					continue
				}
			}
			if _, done := s.flagged[k]; !done {
				if math.Abs(x[k]-1) < Epsilon {
					flag = append(flag, Point{i, j})
				}
			}
		}
	}

	for _, p := range reveal {
		s.clicked[p.Y*s.width+p.X] = void{}
	}
	for _, p := range flag {
		s.flagged[p.Y*s.width+p.X] = void{}
	}

	return reveal, flag, nil
}

// solve finds a point satisfying every logged equality within the
// [0, 1] box by alternating projections: a minimum-norm correction onto
// the affine constraint set, then a clamp onto the box. Iterations are
// warm-started from the previous solution, so coordinates no constraint
// touches keep their old values exactly - the behavior the stability
// heuristic in Decide depends on.
func (s *Solver) solve() ([]float64, error) {
	m := len(s.constraints)
	n := s.ncells

	a := mat.NewDense(m, n, nil)
	b := mat.NewVecDense(m, nil)
	for row, c := range s.constraints {
		for _, i := range c.cells {
			a.Set(row, i, 1)
		}
		b.SetVec(row, c.sum)
	}

	// Gram matrix of the constraint rows, ridged so duplicate or
	// dependent rows stay factorizable.
	var gram mat.Dense
	gram.Mul(a, a.T())
	sym := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			sym.SetSym(i, j, gram.At(i, j))
		}
		sym.SetSym(i, i, gram.At(i, i)+ridge)
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, fmt.Errorf("%w: constraint gram matrix is not positive definite", ErrInconsistent)
	}

	// warm start from the previous solution
	warm := make([]float64, n)
	copy(warm, s.prev)
	x := mat.NewVecDense(n, warm)

	var (
		r = mat.NewVecDense(m, nil)
		y = mat.NewVecDense(m, nil)
		d = mat.NewVecDense(n, nil)
	)

	residual := func() float64 {
		r.MulVec(a, x)
		r.SubVec(r, b)
		worst := 0.0
		for i := 0; i < m; i++ {
			if v := math.Abs(r.AtVec(i)); v > worst {
				worst = v
			}
		}
		return worst
	}

	for iter := 0; iter < solveMaxI; iter++ {
		if residual() < solveTol {
			break
		}
		if err := chol.SolveVecTo(y, r); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInconsistent, err)
		}
		d.MulVec(a.T(), y)
		for i := 0; i < n; i++ {
			v := x.AtVec(i) - d.AtVec(i)
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			x.SetVec(i, v)
		}
	}

	if worst := residual(); worst > Epsilon {
		return nil, fmt.Errorf("%w: residual %.3g after %d projections", ErrInconsistent, worst, solveMaxI)
	}

	// x writes through to warm
	return warm, nil
}
