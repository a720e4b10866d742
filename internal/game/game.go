// Round loop coupling the board to the constraint solver: ask the
// solver for decisions, apply them to the board, feed every revealed
// count back as a constraint, stop on win, loss or cancellation.

package game

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ameranis/lpsweep/internal/board"
	"github.com/ameranis/lpsweep/internal/solver"
)

var Log = logrus.New()

type Params struct {
	board.Params
	Seed uint64 `json:"seed"`
}

// Round records everything one decide/apply cycle did to the board.
type Round struct {
	N              int            `json:"n"`
	Revealed       []board.Cell   `json:"revealed"`
	Flagged        []solver.Point `json:"flagged"`
	FlagsRemaining int            `json:"flags_remaining"`
	RemainingSafe  int            `json:"remaining_safe"`
}

type Outcome struct {
	Won      bool          `json:"won"`
	Lost     bool          `json:"lost"`
	Rounds   int           `json:"rounds"`
	Duration time.Duration `json:"-"`
}

type Game struct {
	Params
	board   *board.Board
	solver  *solver.Solver
	rounds  int
	trace   []Round
	started time.Time
}

// New constructs a fresh board/solver pair. Both live exactly as long
// as this game; a restart means constructing a new Game.
func New(params Params) (*Game, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game params: %w", err)
	}
	r := rand.New(rand.NewPCG(params.Seed, params.Seed))
	b, err := board.New(params.Params, r)
	if err != nil {
		return nil, err
	}
	return &Game{
		Params:  params,
		board:   b,
		solver:  solver.New(params.Width, params.Height, params.MineCount),
		started: time.Now(),
	}, nil
}

func (g *Game) Board() *board.Board { return g.board }
func (g *Game) Trace() []Round      { return g.trace }
func (g *Game) Rounds() int         { return g.rounds }

func (g *Game) Done() bool {
	return g.board.Lost() || g.board.HasWon()
}

func (g *Game) Outcome() *Outcome {
	return &Outcome{
		Won:      g.board.HasWon(),
		Lost:     g.board.Lost(),
		Rounds:   g.rounds,
		Duration: time.Since(g.started),
	}
}

// Step runs one round. Every reveal triple the board returns is fed
// back to the solver, except the loss sentinel (count == -1), which
// ends the round and leaves the board terminal. A solver error is an
// inference inconsistency and is fatal to this game instance.
func (g *Game) Step() (*Round, error) {
	reveal, flag, err := g.solver.Decide()
	if err != nil {
		return nil, fmt.Errorf("round %d: %w", g.rounds+1, err)
	}

	round := Round{N: g.rounds + 1}

	for _, p := range reveal {
		for _, c := range g.board.Reveal(p.X, p.Y) {
			round.Revealed = append(round.Revealed, c)
			if c.Count < 0 {
				break
			}
			g.solver.AddConstraint(c.X, c.Y, c.Count)
		}
		if g.board.Lost() {
			break
		}
	}

	if !g.board.Lost() {
		for _, p := range flag {
			g.board.Flag(p.X, p.Y)
			round.Flagged = append(round.Flagged, p)
		}
	}

	round.FlagsRemaining = g.board.FlagsRemaining()
	round.RemainingSafe = g.board.RemainingSafe()

	g.rounds++
	g.trace = append(g.trace, round)

	Log.WithFields(logrus.Fields{
		"round":          round.N,
		"revealed":       len(round.Revealed),
		"flagged":        len(round.Flagged),
		"remaining_safe": round.RemainingSafe,
	}).Debug("completed round")

	return &round, nil
}

// Play steps until the game is won, lost, the context is canceled or
// maxRounds is exhausted (0 means unbounded).
func (g *Game) Play(ctx context.Context, maxRounds int) (*Outcome, error) {
	for !g.Done() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if maxRounds > 0 && g.rounds >= maxRounds {
			return nil, fmt.Errorf("game not settled after %d rounds", maxRounds)
		}
		if _, err := g.Step(); err != nil {
			return nil, err
		}
	}
	return g.Outcome(), nil
}
