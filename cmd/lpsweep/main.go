// Command lpsweep plays batches of solver games locally and reports
// how many it won.
package main

import (
	"context"
	"flag"
	"hash/maphash"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ameranis/lpsweep/internal/board"
	"github.com/ameranis/lpsweep/internal/game"
	"github.com/ameranis/lpsweep/internal/solver"
)

var log = logrus.New()

var (
	width     = flag.Int("width", 10, "board width")
	height    = flag.Int("height", 10, "board height")
	mineCount = flag.Int("mines", 10, "mine count")
	seed      = flag.Uint64("seed", 0, "seed of the first game (random when omitted)")
	games     = flag.Int("games", 1, "number of games to play")
	maxRounds = flag.Int("max-rounds", 0, "abort a game after this many rounds (0 = unbounded)")
	verbose   = flag.Bool("v", false, "log every round")
)

func playOne(ctx context.Context, params game.Params) (*game.Outcome, error) {
	g, err := game.New(params)
	if err != nil {
		return nil, err
	}
	for !g.Done() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if *maxRounds > 0 && g.Rounds() >= *maxRounds {
			log.Warnf("seed %d: giving up after %d rounds", params.Seed, *maxRounds)
			return g.Outcome(), nil
		}
		round, err := g.Step()
		if err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{
			"seed":           params.Seed,
			"round":          round.N,
			"revealed":       len(round.Revealed),
			"flagged":        len(round.Flagged),
			"remaining_safe": round.RemainingSafe,
		}).Debug("round complete")
	}
	return g.Outcome(), nil
}

func main() {
	flag.Parse()

	log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
		game.Log = log
		board.Log = log
		solver.Log = log
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	firstSeed := *seed
	if firstSeed == 0 {
		firstSeed = new(maphash.Hash).Sum64()
	}

	won := 0
	for i := 0; i < *games; i++ {
		params := game.Params{
			Params: board.Params{
				Width:     *width,
				Height:    *height,
				MineCount: *mineCount,
			},
			Seed: firstSeed + uint64(i),
		}

		outcome, err := playOne(ctx, params)
		if err != nil {
			log.Fatalf("seed %d: %s", params.Seed, err)
		}
		if outcome.Won {
			won++
		}

		log.WithFields(logrus.Fields{
			"seed":     params.Seed,
			"won":      outcome.Won,
			"lost":     outcome.Lost,
			"rounds":   outcome.Rounds,
			"duration": outcome.Duration.Round(time.Millisecond).String(),
		}).Info("game over")
	}

	log.Infof("won %d of %d games", won, *games)
}
