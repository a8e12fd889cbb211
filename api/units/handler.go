// Package units exposes the read-only monitoring API: latest unit statuses,
// per-unit detail, the fleet health report and the prediction audit log.
package units

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gridsentry/upswatch/core/model"
	"github.com/gridsentry/upswatch/core/monitor/logging"
	"github.com/gridsentry/upswatch/core/unitstatus"
)

// Reporter supplies the latest fleet health report.
type Reporter interface {
	Latest() (model.HealthReport, bool)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// NewStatusHandler serves GET /api/units and GET /api/units/{id}. The list
// accepts a ?state= filter.
func NewStatusHandler(store unitstatus.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/units"), "/")
		if id == "" {
			f := unitstatus.Filter{State: model.Status(r.URL.Query().Get("state"))}
			writeJSON(w, store.List(f))
			return
		}
		st, ok := store.Get(id)
		if !ok {
			http.Error(w, "unknown unit", http.StatusNotFound)
			return
		}
		writeJSON(w, st)
	})
}

// NewHealthHandler serves GET /api/fleet/health. Before the first completed
// cycle it answers 404.
func NewHealthHandler(rep Reporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		hr, ok := rep.Latest()
		if !ok {
			http.Error(w, "no report yet", http.StatusNotFound)
			return
		}
		writeJSON(w, hr)
	})
}

// NewLogHandler serves GET /api/units/logs over the prediction audit log.
// Requests must include "Bearer <token>" when token is non-empty.
func NewLogHandler(store logging.LogStore, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		q := logging.Query{}
		if s := r.URL.Query().Get("start"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.Start = t
			}
		}
		if s := r.URL.Query().Get("end"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.End = t
			}
		}
		q.UnitID = r.URL.Query().Get("unit_id")
		if k := r.URL.Query().Get("kind"); k != "" {
			q.Kind = logging.Kind(k)
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, records)
	})
}
