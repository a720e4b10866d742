package board

import (
	"fmt"
	"math/rand/v2"

	"github.com/gammazero/deque"
	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// cornerZone is the side length of the mine-free square kept at each
// board corner. It guarantees a safe deterministic first click.
const cornerZone = 2

type Params struct {
	Width     int `json:"width" schema:"width,required"`
	Height    int `json:"height" schema:"height,required"`
	MineCount int `json:"mine_count" schema:"mine_count,required"`
}

func (p Params) Validate() error {
	if p.Width < 3 || p.Height < 3 {
		return fmt.Errorf("board must be at least 3x3, got %dx%d", p.Width, p.Height)
	}
	if p.MineCount < 1 {
		return fmt.Errorf("mine count must be positive, got %d", p.MineCount)
	}
	eligible := p.Width*p.Height - 4*cornerZone*cornerZone
	if p.MineCount > eligible {
		return fmt.Errorf(
			"mine count %d exceeds %d cells eligible on a %dx%d board",
			p.MineCount, eligible, p.Width, p.Height,
		)
	}
	return nil
}

func (p Params) ValidatePoint(x, y int) bool {
	return 0 <= x && x < p.Width && 0 <= y && y < p.Height
}

func (p Params) inCornerZone(x, y int) bool {
	return (x < cornerZone || x >= p.Width-cornerZone) &&
		(y < cornerZone || y >= p.Height-cornerZone)
}

// neighborRing is the fixed 8-neighbor enumeration order used by both
// mine counting and cascade expansion.
var neighborRing = [8][2]int{
	{+1, 0}, {+1, +1}, {0, +1}, {-1, +1},
	{-1, 0}, {-1, -1}, {0, -1}, {+1, -1},
}

// Cell is one revealed square. Count is the number of mined neighbors,
// or -1 when the revealed square itself was a mine.
type Cell struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Count int `json:"count"`
}

type Board struct {
	Params
	mines          []bool
	revealed       []bool
	flagged        []bool
	counts         []int8
	remainingSafe  int
	flagsRemaining int
	lost           bool
}

// New places MineCount mines using r, skipping the four corner zones,
// and precomputes neighbor mine counts.
func New(params Params, r *rand.Rand) (*Board, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	n := params.Width * params.Height
	b := &Board{
		Params:         params,
		mines:          make([]bool, n),
		revealed:       make([]bool, n),
		flagged:        make([]bool, n),
		counts:         make([]int8, n),
		remainingSafe:  n - params.MineCount,
		flagsRemaining: params.MineCount,
	}

	candidates := make([]int, n)
	for i := range candidates {
		candidates[i] = i
	}
	r.Shuffle(n, func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	placed := 0
	for _, i := range candidates {
		if placed == params.MineCount {
			break
		}
		if params.inCornerZone(i%params.Width, i/params.Width) {
			continue
		}
		b.mines[i] = true
		placed++
	}
	if placed != params.MineCount {
		// unreachable when params validate
		return nil, fmt.Errorf("could only place %d of %d mines", placed, params.MineCount)
	}

	b.computeCounts()

	Log.WithFields(logrus.Fields{
		"width":      params.Width,
		"height":     params.Height,
		"mine_count": params.MineCount,
	}).Debug("created board")

	return b, nil
}

// FromMines builds a board over an explicit mine layout. The layout is
// not required to honor the corner zones; callers replaying or testing
// known positions own that guarantee.
func FromMines(params Params, mines []bool) (*Board, error) {
	n := params.Width * params.Height
	if len(mines) != n {
		return nil, fmt.Errorf("mine grid has %d cells, board wants %d", len(mines), n)
	}
	placed := 0
	for _, m := range mines {
		if m {
			placed++
		}
	}
	if placed != params.MineCount {
		return nil, fmt.Errorf("mine grid holds %d mines, params want %d", placed, params.MineCount)
	}
	b := &Board{
		Params:         params,
		mines:          append([]bool(nil), mines...),
		revealed:       make([]bool, n),
		flagged:        make([]bool, n),
		counts:         make([]int8, n),
		remainingSafe:  n - params.MineCount,
		flagsRemaining: params.MineCount,
	}
	b.computeCounts()
	return b, nil
}

func (b *Board) computeCounts() {
	for i, mined := range b.mines {
		if !mined {
			continue
		}
		x, y := i%b.Width, i/b.Width
		for _, d := range neighborRing {
			nx, ny := x+d[0], y+d[1]
			if b.ValidatePoint(nx, ny) {
				b.counts[ny*b.Width+nx]++
			}
		}
	}
}

func (b *Board) index(x, y int) int {
	if !b.ValidatePoint(x, y) {
		panic(AssertionError{fmt.Sprintf("cell %d:%d out of %dx%d board", x, y, b.Width, b.Height)})
	}
	return y*b.Width + x
}

func (b *Board) MineAt(x, y int) bool       { return b.mines[b.index(x, y)] }
func (b *Board) NeighborCount(x, y int) int { return int(b.counts[b.index(x, y)]) }
func (b *Board) RevealedAt(x, y int) bool   { return b.revealed[b.index(x, y)] }
func (b *Board) FlaggedAt(x, y int) bool    { return b.flagged[b.index(x, y)] }

func (b *Board) Lost() bool          { return b.lost }
func (b *Board) HasWon() bool        { return b.remainingSafe == 0 }
func (b *Board) RemainingSafe() int  { return b.remainingSafe }
func (b *Board) FlagsRemaining() int { return b.flagsRemaining }

// Reveal opens the cell at x:y and returns every cell exposed by it,
// cascading through zero-count regions. Revealing a mine returns the
// single sentinel cell with Count == -1 and makes the board terminal.
// Already revealed or flagged cells, and any call after a loss, return
// nil.
//
// The cascade is an explicit worklist rather than recursion: each cell
// is marked revealed before its neighbors are expanded, so shared
// neighbors of adjacent zero cells are processed exactly once and call
// depth stays constant on large empty regions.
func (b *Board) Reveal(x, y int) []Cell {
	i := b.index(x, y)
	if b.lost || b.revealed[i] || b.flagged[i] {
		return nil
	}
	if b.mines[i] {
		b.lost = true
		return []Cell{{x, y, -1}}
	}

	b.revealed[i] = true
	b.remainingSafe--

	var (
		out      []Cell
		worklist deque.Deque[int]
	)
	worklist.PushBack(i)
	for worklist.Len() > 0 {
		j := worklist.PopFront()
		jx, jy := j%b.Width, j/b.Width
		count := int(b.counts[j])
		out = append(out, Cell{jx, jy, count})
		if count != 0 {
			continue
		}
		for _, d := range neighborRing {
			nx, ny := jx+d[0], jy+d[1]
			if !b.ValidatePoint(nx, ny) {
				continue
			}
			k := ny*b.Width + nx
			// mines are never auto-revealed by a cascade
			if b.revealed[k] || b.flagged[k] || b.mines[k] {
				continue
			}
			b.revealed[k] = true
			b.remainingSafe--
			worklist.PushBack(k)
		}
	}
	return out
}

// Flag toggles the flag on the cell at x:y. Flagging is a no-op on
// revealed cells and on a lost board. FlagsRemaining may go negative
// when the player over-flags; it is not clamped.
func (b *Board) Flag(x, y int) {
	i := b.index(x, y)
	if b.lost || b.revealed[i] {
		return
	}
	b.flagged[i] = !b.flagged[i]
	if b.flagged[i] {
		b.flagsRemaining--
	} else {
		b.flagsRemaining++
	}
}
