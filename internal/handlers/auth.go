package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/ameranis/lpsweep/internal/config"
	"github.com/ameranis/lpsweep/internal/middleware"
)

type PlayerInfo struct {
	PlayerId int64  `json:"player_id"`
	Username string `json:"username"`
}

type Status struct {
	LoggedIn bool        `json:"logged_in"`
	Player   *PlayerInfo `json:"player,omitempty"`
}

var (
	ErrBadAuthBody        = fmt.Errorf("request body must contain url-encoded username and password")
	ErrBadPasswordTooLong = fmt.Errorf("password too long")
	ErrUsernameTaken      = fmt.Errorf("username taken")
)

// Status may be called purely for the side effect of the auth
// middleware clearing expired cookies.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	var status *Status
	claims, ok := r.Context().Value(middleware.CtxPlayerClaims).(*config.PlayerClaims)
	if ok {
		status = &Status{
			LoggedIn: true,
			Player:   &PlayerInfo{claims.PlayerId, claims.Username},
		}
		h.log.Debug("refresh cookies")
		token, err := h.cookies.CreatePlayerToken(claims.PlayerId, claims.Username)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			h.log.Error("unable to tokenize checked claim: ", err)
			return
		}
		if err = h.cookies.Set(w, token); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			h.log.Error("unable to refresh cookies: ", err)
			return
		}
	} else {
		status = &Status{LoggedIn: false, Player: nil}
		h.log.Debug("could not parse cookies - clear cookies")
		h.cookies.Clear(w)
	}

	h.sendJSONOrLog(w, status)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" || password == "" {
		w.WriteHeader(http.StatusBadRequest)
		h.sendJSONOrLog(w, wrapError(ErrBadAuthBody))
		return
	}

	passwordBytes := []byte(password)
	if len(passwordBytes) > 72 {
		w.WriteHeader(http.StatusBadRequest)
		h.sendJSONOrLog(w, wrapError(ErrBadPasswordTooLong))
		return
	}

	hash, err := bcrypt.GenerateFromPassword(passwordBytes, bcrypt.MinCost)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.log.Error("unable to hash password: ", err)
		return
	}

	player, err := h.pg.CreatePlayer(r.Context(), username, hash)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) &&
		pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		w.WriteHeader(http.StatusConflict)
		h.sendJSONOrLog(w, wrapError(ErrUsernameTaken))
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.log.Error("unable to insert player: ", err)
		return
	}

	token, err := h.cookies.CreatePlayerToken(player.PlayerId, player.Username)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.log.Error("unable to sign jwt token: ", err)
		return
	}
	if err = h.cookies.Set(w, token); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.log.Error("unable to set cookies: ", err)
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" || password == "" {
		w.WriteHeader(http.StatusBadRequest)
		h.sendJSONOrLog(w, wrapError(ErrBadAuthBody))
		return
	}

	player, err := h.pg.GetPlayer(r.Context(), username)
	if errors.Is(err, pgx.ErrNoRows) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.log.Error("unable to fetch player: ", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword(
		player.PasswordHash, []byte(password),
	); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	token, err := h.cookies.CreatePlayerToken(player.PlayerId, player.Username)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.log.Error("unable to sign jwt token: ", err)
		return
	}
	if err = h.cookies.Set(w, token); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.log.Error("unable to set cookies: ", err)
	}
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
}
