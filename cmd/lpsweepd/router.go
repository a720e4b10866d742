package main

import (
	"net/http"

	"github.com/ameranis/lpsweep/internal/config"
	"github.com/ameranis/lpsweep/internal/handlers"
	"github.com/ameranis/lpsweep/internal/middleware"
)

func buildHandler(h *handlers.Handler, cookies *config.Cookies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/register", h.Register)
	mux.HandleFunc("POST /v1/login", h.Login)
	mux.HandleFunc("POST /v1/logout", h.Logout)

	mux.HandleFunc("GET /v1/status", h.Status)
	mux.HandleFunc("GET /v1/records", h.Records)

	mux.HandleFunc("POST /v1/runs", h.CreateRun)
	mux.HandleFunc("GET /v1/runs/{id}", h.FetchRun)

	mux.HandleFunc("/v1/runs/{id}/watch", h.WatchRun)

	return middleware.Wrap(mux,
		middleware.Cors(),
		middleware.Auth(cookies),
		middleware.Logging(log),
	)
}
