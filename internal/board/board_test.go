package board

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{"beginner", Params{9, 9, 10}, false},
		{"expert", Params{30, 16, 99}, false},
		{"minimal", Params{5, 5, 1}, false},
		{"thinnest viable", Params{3, 6, 2}, false},
		{"3x3 corner zones cover the board", Params{3, 3, 1}, true},
		{"too narrow", Params{2, 9, 1}, true},
		{"too short", Params{9, 2, 1}, true},
		{"no mines", Params{9, 9, 0}, true},
		{"negative mines", Params{9, 9, -4}, true},
		{"corner zones leave no room", Params{4, 4, 1}, true},
		{"too many mines", Params{9, 9, 66}, true},
		{"max mines", Params{9, 9, 65}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.params.Validate()
			if test.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMinePlacement(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{"9x9(10)", Params{9, 9, 10}},
		{"16x16(40)", Params{16, 16, 40}},
		{"30x16(99)", Params{30, 16, 99}},
		{"5x5(9)", Params{5, 5, 9}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			for seed := uint64(1); seed <= 20; seed++ {
				r := rand.New(rand.NewPCG(seed, seed))
				b, err := New(test.params, r)
				require.NoError(t, err)

				placed := 0
				for y := 0; y < test.params.Height; y++ {
					for x := 0; x < test.params.Width; x++ {
						if b.MineAt(x, y) {
							placed++
							assert.Falsef(t, test.params.inCornerZone(x, y),
								"seed %d put a mine in the corner zone at %d:%d", seed, x, y)
						}
					}
				}
				assert.Equal(t, test.params.MineCount, placed)
			}
		})
	}
}

func TestPlacementIsSeedDeterministic(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{"5x5(1)", Params{5, 5, 1}},
		{"16x16(40)", Params{16, 16, 40}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			first, err := New(test.params, rand.New(rand.NewPCG(7, 7)))
			require.NoError(t, err)
			second, err := New(test.params, rand.New(rand.NewPCG(7, 7)))
			require.NoError(t, err)

			for y := 0; y < test.params.Height; y++ {
				for x := 0; x < test.params.Width; x++ {
					assert.Equal(t, first.MineAt(x, y), second.MineAt(x, y))
				}
			}
		})
	}
}

func TestNeighborCounts(t *testing.T) {
	params := Params{9, 9, 20}
	b, err := New(params, rand.New(rand.NewPCG(3, 3)))
	require.NoError(t, err)

	for y := 0; y < params.Height; y++ {
		for x := 0; x < params.Width; x++ {
			want := 0
			for _, d := range neighborRing {
				nx, ny := x+d[0], y+d[1]
				if params.ValidatePoint(nx, ny) && b.MineAt(nx, ny) {
					want++
				}
			}
			assert.Equalf(t, want, b.NeighborCount(x, y), "count mismatch at %d:%d", x, y)
		}
	}
}

// mineGrid builds a layout from row strings, '*' marking mines.
func mineGrid(t *testing.T, params Params, rows []string) *Board {
	t.Helper()
	mines := make([]bool, params.Width*params.Height)
	for y, row := range rows {
		for x, c := range row {
			mines[y*params.Width+x] = c == '*'
		}
	}
	b, err := FromMines(params, mines)
	require.NoError(t, err)
	return b
}

func TestRevealCascade(t *testing.T) {
	// single mine in a corner, so revealing the opposite corner must
	// cascade through the whole zero region and stop at the count-1
	// border without touching the mine
	b := mineGrid(t, Params{5, 5, 1}, []string{
		".....",
		".....",
		".....",
		".....",
		"....*",
	})

	out := b.Reveal(0, 0)
	assert.Len(t, out, 24)
	assert.False(t, b.Lost())
	assert.True(t, b.HasWon())
	assert.Equal(t, 0, b.RemainingSafe())

	assert.False(t, b.RevealedAt(4, 4), "cascade must never open a mine")
	for _, c := range out {
		assert.Equal(t, b.NeighborCount(c.X, c.Y), c.Count)
	}
}

func TestRevealStopsAtNumbers(t *testing.T) {
	b := mineGrid(t, Params{5, 5, 2}, []string{
		"....*",
		".....",
		".....",
		".....",
		"....*",
	})

	// (0,2) sits in the zero region; the cascade opens everything
	// except the two mines and leaves nothing else to reveal
	out := b.Reveal(0, 2)
	assert.Len(t, out, 23)
	assert.True(t, b.HasWon())
}

func TestRevealMine(t *testing.T) {
	b := mineGrid(t, Params{5, 5, 1}, []string{
		".....",
		".....",
		"..*..",
		".....",
		".....",
	})

	out := b.Reveal(2, 2)
	require.Len(t, out, 1)
	assert.Equal(t, Cell{2, 2, -1}, out[0])
	assert.True(t, b.Lost())
	assert.False(t, b.HasWon())

	assert.Nil(t, b.Reveal(0, 0), "a lost board accepts no further reveals")

	flags := b.FlagsRemaining()
	b.Flag(0, 0)
	assert.False(t, b.FlaggedAt(0, 0), "a lost board accepts no further flags")
	assert.Equal(t, flags, b.FlagsRemaining())
}

func TestRevealSkipsFlaggedAndRevealed(t *testing.T) {
	b := mineGrid(t, Params{5, 5, 1}, []string{
		"*....",
		".....",
		".....",
		".....",
		".....",
	})

	b.Flag(3, 3)
	assert.Nil(t, b.Reveal(3, 3))

	out := b.Reveal(4, 4)
	assert.NotEmpty(t, out)
	assert.Nil(t, b.Reveal(4, 4), "revealing an open cell is a no-op")
	assert.False(t, b.RevealedAt(3, 3), "cascade must not open flagged cells")
}

func TestFlag(t *testing.T) {
	b := mineGrid(t, Params{5, 5, 2}, []string{
		"*...*",
		".....",
		".....",
		".....",
		".....",
	})

	assert.Equal(t, 2, b.FlagsRemaining())

	b.Flag(0, 0)
	assert.True(t, b.FlaggedAt(0, 0))
	assert.Equal(t, 1, b.FlagsRemaining())

	b.Flag(0, 0)
	assert.False(t, b.FlaggedAt(0, 0))
	assert.Equal(t, 2, b.FlagsRemaining())

	b.Reveal(2, 2)
	b.Flag(2, 2)
	assert.False(t, b.FlaggedAt(2, 2), "flagging a revealed cell is a no-op")
}

func TestFromMinesRejectsBadLayouts(t *testing.T) {
	params := Params{5, 5, 2}

	_, err := FromMines(params, make([]bool, 7))
	assert.Error(t, err)

	_, err = FromMines(params, make([]bool, 25))
	assert.Error(t, err, "layout mine total must match params")
}

func TestIndexPanicsOutOfBounds(t *testing.T) {
	b := mineGrid(t, Params{5, 5, 1}, []string{
		"....*",
		".....",
		".....",
		".....",
		".....",
	})

	assert.PanicsWithValue(t,
		AssertionError{"cell 5:0 out of 5x5 board"},
		func() { b.Reveal(5, 0) },
	)
}
