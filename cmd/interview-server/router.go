package main

import (
	"expvar"
	"net/http"

	"hirewire/internal/app/session"
	"hirewire/internal/app/sweep"
	"hirewire/internal/config"
	"hirewire/internal/ledger"
	"hirewire/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func newRouter(st *store.Store, led *ledger.Ledger, sessions *session.Service, sweeper *sweep.Service, cfg config.ServerConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(apiLogMiddleware()).Get("/healthz", healthHandler(st))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiLogMiddleware())

		r.Post("/sessions", createSessionHandler(sessions))
		r.Get("/sessions/{session_id}", getSessionHandler(sessions))
		r.Post("/sessions/{session_id}/join", joinSessionHandler(sessions))
		r.Post("/sessions/{session_id}/start", startSessionHandler(sessions))
		r.Post("/sessions/{session_id}/heartbeat", heartbeatHandler(sessions))
		r.Post("/sessions/{session_id}/complete", completeSessionHandler(sessions))
		r.Post("/sessions/{session_id}/cancel", cancelSessionHandler(sessions))

		r.Get("/companies/{company_id}/balance", balanceHandler(led))

		r.Group(func(r chi.Router) {
			r.Use(adminAuthMiddleware(cfg.AdminAPIKey))
			r.Get("/admin/sessions", listSessionsHandler(st))
			r.Get("/admin/ledger", ledgerHandler(st))
			r.Post("/admin/topup", topupHandler(st))
			r.Put("/admin/interviews/{interview_id}/duration", setDurationHandler(st))
			r.Post("/admin/sweeps/run", runSweepsHandler(sweeper))
			r.Get("/admin/debug/vars", expvar.Handler().ServeHTTP)
		})
	})
	return r
}

func healthHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			writeJSON(w, map[string]any{"ok": false, "db": "down"})
			return
		}
		writeJSON(w, map[string]any{"ok": true, "db": "up"})
	}
}
