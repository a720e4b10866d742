package handlers

import (
	"strconv"

	"github.com/ameranis/lpsweep/internal/game"
	"github.com/ameranis/lpsweep/internal/repository"
)

type CreateRunDTO struct {
	Width     int     `schema:"width,required"`
	Height    int     `schema:"height,required"`
	MineCount int     `schema:"mine_count,required"`
	Seed      *uint64 `schema:"seed"`
}

type RunDTO struct {
	RunId     string       `json:"run_id"`
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	MineCount int          `json:"mine_count"`
	Seed      string       `json:"seed"`
	Won       bool         `json:"won"`
	Lost      bool         `json:"lost"`
	Rounds    int          `json:"rounds"`
	Trace     []game.Round `json:"trace,omitempty"`
	StartedAt int64        `json:"started_at"`
	EndedAt   int64        `json:"ended_at"`
}

func NewRunDTO(run *repository.SolverRun, withTrace bool) *RunDTO {
	dto := &RunDTO{
		RunId:     strconv.FormatInt(run.SolverRunId, 10),
		Width:     run.Params.Width,
		Height:    run.Params.Height,
		MineCount: run.Params.MineCount,
		Seed:      strconv.FormatUint(run.Params.Seed, 10),
		Won:       run.Won,
		Lost:      run.Lost,
		Rounds:    run.Rounds,
		StartedAt: run.StartedAt.UnixMilli(),
		EndedAt:   run.EndedAt.UnixMilli(),
	}
	if withTrace {
		dto.Trace = run.Trace
	}
	return dto
}
