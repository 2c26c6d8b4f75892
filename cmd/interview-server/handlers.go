package main

import (
	"encoding/json"
	"net/http"

	"hirewire/internal/app/session"

	"github.com/go-chi/chi/v5"
)

func createSessionHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req session.CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		v, err := svc.Create(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(v)
	}
}

func getSessionHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := svc.Get(r.Context(), chi.URLParam(r, "session_id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, v)
	}
}

func joinSessionHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req session.JoinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		v, err := svc.Join(r.Context(), chi.URLParam(r, "session_id"), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, v)
	}
}

func startSessionHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := svc.Start(r.Context(), chi.URLParam(r, "session_id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, v)
	}
}

func heartbeatHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id"`
		}
		// The body is optional; a bare heartbeat still bills.
		_ = json.NewDecoder(r.Body).Decode(&req)
		res, err := svc.Heartbeat(r.Context(), chi.URLParam(r, "session_id"), req.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, res)
	}
}

func completeSessionHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := svc.Complete(r.Context(), chi.URLParam(r, "session_id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, v)
	}
}

func cancelSessionHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := svc.Cancel(r.Context(), chi.URLParam(r, "session_id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, v)
	}
}
