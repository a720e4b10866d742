package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ameranis/lpsweep/internal/board"
)

// RunRecord is one leaderboard row: a won run and how long the solver
// took on it.
type RunRecord struct {
	SolverRunId string  `db:"solver_run_id" json:"run_id"`
	Username    *string `db:"username" json:"username"`
	Width       int     `db:"width" json:"width"`
	Height      int     `db:"height" json:"height"`
	MineCount   int     `db:"mine_count" json:"mine_count"`
	Rounds      int     `db:"rounds" json:"rounds"`
	Playtime    float64 `db:"playtime" json:"playtime"`
}

type RunRecordFilters struct {
	username    *string
	boardParams *board.Params
}

func (f RunRecordFilters) WhereClause() (string, pgx.NamedArgs) {
	args := pgx.NamedArgs{}
	whereClauses := []string{}
	if f.username != nil {
		args["username"] = f.username
		whereClauses = append(whereClauses, "username = @username")
	}
	if f.boardParams != nil {
		args["width"] = f.boardParams.Width
		args["height"] = f.boardParams.Height
		args["mineCount"] = f.boardParams.MineCount
		whereClauses = append(
			whereClauses,
			"width = @width",
			"height = @height",
			"mine_count = @mineCount",
		)
	}

	if len(whereClauses) == 0 {
		return "", args
	}
	return strings.Join(whereClauses, " and "), args
}

type RunRecordsOption = func(*RunRecordFilters) error

func RunRecordsForPlayer(username string) RunRecordsOption {
	return func(f *RunRecordFilters) error {
		f.username = &username
		return nil
	}
}

func RunRecordsForBoard(boardParams *board.Params) RunRecordsOption {
	return func(f *RunRecordFilters) error {
		f.boardParams = boardParams
		return nil
	}
}

func (pg *Postgres) GetRunRecords(
	ctx context.Context, options ...RunRecordsOption,
) ([]RunRecord, error) {
	filters := &RunRecordFilters{}
	for _, op := range options {
		err := op(filters)
		if err != nil {
			return nil, err
		}
	}

	sql := `
	select
		solver_run_id::text solver_run_id
		, username
		, width
		, height
		, mine_count
		, rounds
		, (
			extract('epoch' from ended_at) - extract('epoch' from started_at)
		) * 1000 playtime
	from solver_run
		left outer join player using (player_id)
	where
		won = true
		and lost = false`

	whereClause, args := filters.WhereClause()
	if whereClause != "" {
		sql += " and " + whereClause
	}

	sql += " order by playtime"

	rows, err := pg.db.Query(ctx, sql, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[RunRecord])
}
