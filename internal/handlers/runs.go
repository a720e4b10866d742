package handlers

import (
	"errors"
	"hash/maphash"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ameranis/lpsweep/internal/board"
	"github.com/ameranis/lpsweep/internal/config"
	"github.com/ameranis/lpsweep/internal/game"
	"github.com/ameranis/lpsweep/internal/middleware"
	"github.com/ameranis/lpsweep/internal/repository"
	"github.com/ameranis/lpsweep/internal/solver"
)

// CreateRun plays a full solver game synchronously and persists its
// trace. An unseeded request gets a random seed so the run can still be
// replayed later.
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var dto CreateRunDTO
	if err := h.dec.Decode(&dto, r.URL.Query()); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		h.sendJSONOrLog(w, wrapError(err))
		return
	}

	seed := new(maphash.Hash).Sum64()
	if dto.Seed != nil {
		seed = *dto.Seed
	}
	params := game.Params{
		Params: board.Params{
			Width:     dto.Width,
			Height:    dto.Height,
			MineCount: dto.MineCount,
		},
		Seed: seed,
	}

	g, err := game.New(params)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		h.sendJSONOrLog(w, wrapError(err))
		return
	}

	startedAt := time.Now().UTC()
	outcome, err := g.Play(r.Context(), h.maxRounds)
	if errors.Is(err, solver.ErrInconsistent) {
		w.WriteHeader(http.StatusInternalServerError)
		h.log.Error("solver rejected its own constraint log: ", err)
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.log.Error("unable to finish run: ", err)
		return
	}

	var playerId *int64
	if claims, ok := r.Context().Value(middleware.CtxPlayerClaims).(*config.PlayerClaims); ok {
		playerId = &claims.PlayerId
	}

	run := &repository.SolverRun{
		Params:    params,
		Won:       outcome.Won,
		Lost:      outcome.Lost,
		Rounds:    outcome.Rounds,
		Trace:     g.Trace(),
		StartedAt: startedAt,
		EndedAt:   startedAt.Add(outcome.Duration),
	}
	run, err = h.pg.CreateSolverRun(r.Context(), playerId, run)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.log.Error("unable to persist run: ", err)
		return
	}

	h.sendJSONOrLog(w, NewRunDTO(run, false))
}

func (h *Handler) FetchRun(w http.ResponseWriter, r *http.Request) {
	runId, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	run, err := h.pg.GetSolverRun(r.Context(), runId)
	if errors.Is(err, pgx.ErrNoRows) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.log.Error("unable to fetch run from db: ", err)
		return
	}

	h.sendJSONOrLog(w, NewRunDTO(run, true))
}

func (h *Handler) Records(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	options := []repository.RunRecordsOption{}

	if username := query.Get("username"); username != "" {
		options = append(options, repository.RunRecordsForPlayer(username))
	}

	if query.Has("width") || query.Has("height") || query.Has("mine_count") {
		var boardParams board.Params
		if err := h.dec.Decode(&boardParams, query); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			h.sendJSONOrLog(w, wrapError(err))
			return
		}
		options = append(options, repository.RunRecordsForBoard(&boardParams))
	}

	records, err := h.pg.GetRunRecords(r.Context(), options...)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.log.Error("unable to fetch run records: ", err)
		return
	}

	h.sendJSONOrLog(w, records)
}
