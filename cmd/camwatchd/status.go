package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"camwatch/lib/registry"
	"camwatch/lib/runlog"
)

type runStatus struct {
	Time     time.Time `json:"time"`
	Strategy string    `json:"strategy"`
	Seen     int       `json:"seen"`
	New      int       `json:"new"`
	Ok       bool      `json:"ok"`
	Error    string    `json:"error,omitempty"`
}

type statusResponse struct {
	TotalTracked int        `json:"total_cameras_tracked"`
	LastUpdated  *time.Time `json:"last_updated"`
	LastRun      *runStatus `json:"last_run"`
}

func newStatusMux(store registry.Store, runs runlog.Store) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/status", func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := store.Load(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "status: load registry", "err", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		res := statusResponse{
			TotalTracked: snapshot.TotalTracked,
			LastUpdated:  snapshot.LastUpdated,
		}

		last, found, err := runs.Last(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "status: load last run", "err", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if found {
			res.LastRun = &runStatus{
				Time:     last.Time,
				Strategy: last.Strategy,
				Seen:     last.SeenCount,
				New:      last.NewCount,
				Ok:       last.Ok(),
				Error:    last.Err,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(res)
	})
	return mux
}
