package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ameranis/lpsweep/internal/config"
	"github.com/ameranis/lpsweep/internal/repository"
)

type Handler struct {
	log       *logrus.Logger
	pg        *repository.Postgres
	cookies   *config.Cookies
	dec       *schema.Decoder
	upgrader  websocket.Upgrader
	maxRounds int
}

func New(
	log *logrus.Logger,
	pg *repository.Postgres,
	cookies *config.Cookies,
	maxRounds int,
) *Handler {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)

	return &Handler{
		log:       log,
		pg:        pg,
		cookies:   cookies,
		dec:       dec,
		maxRounds: maxRounds,
	}
}

func sendJSON(w http.ResponseWriter, v any) (int, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	w.Header().Add("Content-Type", "application/json")
	return w.Write(payload)
}

func (h *Handler) sendJSONOrLog(w http.ResponseWriter, v any) {
	if _, err := sendJSON(w, v); err != nil {
		h.log.WithFields(logrus.Fields{
			"response": v,
			"error":    err,
		}).Error("unable to send response")
	}
}

func wrapError(err error) map[string]string {
	return map[string]string{
		"error": err.Error(),
	}
}
