package repository

import (
	"bytes"
	"context"
	"encoding/gob"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ameranis/lpsweep/internal/game"
)

type SolverRun struct {
	SolverRunId int64
	PlayerId    *int64
	Params      game.Params
	Won, Lost   bool
	Rounds      int
	Trace       []game.Round
	StartedAt   time.Time
	EndedAt     time.Time
}

func (pg *Postgres) CreateSolverRun(
	ctx context.Context, playerId *int64, run *SolverRun,
) (*SolverRun, error) {
	var traceBuf bytes.Buffer
	if err := gob.NewEncoder(&traceBuf).Encode(run.Trace); err != nil {
		return nil, err
	}
	var solverRunId int64
	if err := pg.db.QueryRow(ctx, `
		INSERT INTO solver_run (
			player_id, width, height, mine_count, seed,
			won, lost, rounds, trace, started_at, ended_at
		)
		VALUES (
			@player_id, @width, @height, @mine_count, @seed,
			@won, @lost, @rounds, @trace, @started_at, @ended_at
		)
		RETURNING solver_run_id;`,
		pgx.NamedArgs{
			"player_id":  playerId,
			"width":      run.Params.Width,
			"height":     run.Params.Height,
			"mine_count": run.Params.MineCount,
			"seed":       int64(run.Params.Seed),
			"won":        run.Won,
			"lost":       run.Lost,
			"rounds":     run.Rounds,
			"trace":      traceBuf.Bytes(),
			"started_at": run.StartedAt,
			"ended_at":   run.EndedAt,
		}).Scan(&solverRunId); err != nil {
		return nil, err
	}
	run.SolverRunId = solverRunId
	run.PlayerId = playerId
	return run, nil
}

func (pg *Postgres) GetSolverRun(
	ctx context.Context, solverRunId int64,
) (*SolverRun, error) {
	var (
		run      = SolverRun{SolverRunId: solverRunId}
		seed     int64
		traceBuf []byte
		endedAt  pgtype.Timestamptz
	)
	if err := pg.db.QueryRow(ctx, `
		SELECT player_id, width, height, mine_count, seed,
			won, lost, rounds, trace, started_at, ended_at
		FROM solver_run
		WHERE solver_run_id = $1;`,
		solverRunId).Scan(
		&run.PlayerId, &run.Params.Width, &run.Params.Height,
		&run.Params.MineCount, &seed,
		&run.Won, &run.Lost, &run.Rounds, &traceBuf,
		&run.StartedAt, &endedAt,
	); err != nil {
		return nil, err
	}
	run.Params.Seed = uint64(seed)
	run.EndedAt = endedAt.Time
	if err := gob.NewDecoder(bytes.NewBuffer(traceBuf)).Decode(&run.Trace); err != nil {
		return nil, err
	}
	return &run, nil
}
