package server

import (
	"net/http"
	"strconv"

	"github.com/ayusman/mudra/internal/store"
)

// handleEvents handles /api/events. GET returns the most recent
// interaction events, newest first; a limit query parameter caps the
// count. DELETE prunes history down to the keep parameter.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = n
		}
		if limit > 500 {
			limit = 500
		}

		events, err := s.config.Store.Events().Recent(limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list events")
			return
		}
		if events == nil {
			events = []store.Event{}
		}
		writeJSON(w, http.StatusOK, struct {
			Events []store.Event `json:"events"`
		}{Events: events})

	case http.MethodDelete:
		keep := 1000
		if raw := r.URL.Query().Get("keep"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "keep must be a non-negative integer")
				return
			}
			keep = n
		}
		if err := s.config.Store.Events().Prune(keep); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to prune events")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
