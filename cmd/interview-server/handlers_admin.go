package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"hirewire/internal/app/sweep"
	"hirewire/internal/ledger"
	"hirewire/internal/store"

	"github.com/go-chi/chi/v5"
)

func balanceHandler(led *ledger.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID := chi.URLParam(r, "company_id")
		bal, err := led.Balance(r.Context(), companyID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeHTTPError(w, http.StatusNotFound, "account_not_found")
				return
			}
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, map[string]any{"company_id": companyID, "balance": bal})
	}
}

func listSessionsHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := parsePagination(r)
		items, err := st.ListSessions(r.Context(), r.URL.Query().Get("company_id"), limit, offset)
		if err != nil {
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, map[string]any{
			"items":  items,
			"limit":  limit,
			"offset": offset,
		})
	}
}

func ledgerHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := parsePagination(r)
		var from, to *time.Time
		if v := r.URL.Query().Get("from"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				from = &t
			}
		}
		if v := r.URL.Query().Get("to"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				to = &t
			}
		}
		items, err := st.ListLedgerEntries(r.Context(), r.URL.Query().Get("company_id"), from, to, limit, offset)
		if err != nil {
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, map[string]any{
			"items":  items,
			"limit":  limit,
			"offset": offset,
		})
	}
}

func topupHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			CompanyID string `json:"company_id"`
			Amount    int64  `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if body.CompanyID == "" || body.Amount <= 0 {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if err := st.EnsureAccount(r.Context(), body.CompanyID, 0); err != nil {
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		bal, err := st.Credit(r.Context(), body.CompanyID, body.Amount, "topup_credit", "topup", store.NewID(), "admin topup")
		if err != nil {
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, map[string]any{"ok": true, "balance": bal})
	}
}

// setDurationHandler extends or shortens a planned interview. Running
// sessions pick the new cap up on their next heartbeat.
func setDurationHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			DurationMinutes int `json:"duration_minutes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if body.DurationMinutes <= 0 {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		id := chi.URLParam(r, "interview_id")
		if err := st.SetInterviewDuration(r.Context(), id, body.DurationMinutes); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeHTTPError(w, http.StatusNotFound, "interview_not_found")
				return
			}
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, map[string]any{"ok": true, "interview_id": id, "duration_minutes": body.DurationMinutes})
	}
}

func runSweepsHandler(sweeper *sweep.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		abandoned, err := sweeper.SweepAbandoned(r.Context())
		if err != nil {
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		waiting, err := sweeper.SweepWaitingRoom(r.Context())
		if err != nil {
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		missed, err := sweeper.SweepMissed(r.Context())
		if err != nil {
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, map[string]any{
			"abandoned": abandoned,
			"waiting":   waiting,
			"missed":    missed,
		})
	}
}
