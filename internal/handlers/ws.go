package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5"
)

// roundReplayInterval paces trace playback so a client can render the
// run as it happened instead of receiving one burst.
const roundReplayInterval = 250 * time.Millisecond

// WatchRun replays a stored run over a websocket, one round per
// message, preceded by the run header.
func (h *Handler) WatchRun(w http.ResponseWriter, r *http.Request) {
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

	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("upgrade: ", err)
		return
	}
	defer c.Close()

	if err := c.WriteJSON(NewRunDTO(run, false)); err != nil {
		h.log.Error("write: ", err)
		return
	}

	ticker := time.NewTicker(roundReplayInterval)
	defer ticker.Stop()

	for _, round := range run.Trace {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
		if err := c.WriteJSON(round); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				h.log.Warn("write: ", err)
			}
			return
		}
	}

	_ = c.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replay complete"),
	)
}
