package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// handleStageFocus handles /api/stage/focus. POST focuses the named model,
// DELETE clears focus.
func (s *Server) handleStageFocus(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			Model string `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Model == "" {
			writeError(w, http.StatusBadRequest, "model is required")
			return
		}
		if err := s.config.App.FocusModel(req.Model); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"focused": req.Model})

	case http.MethodDelete:
		s.config.App.ClearFocus()
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleStageReset handles POST /api/stage/reset. With a model name the
// one model snaps home; without, the whole stage resets.
func (s *Server) handleStageReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Model string `json:"model"`
	}
	// An empty body means reset everything.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Model == "" {
		s.config.App.ResetAllModels()
		writeJSON(w, http.StatusOK, map[string]string{"reset": "all"})
		return
	}

	if err := s.config.App.ResetModel(req.Model); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reset": req.Model})
}

// handleStageLayout handles POST /api/stage/layout and lays the models out
// fresh from the user's current position.
func (s *Server) handleStageLayout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.config.App.Relayout()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStageSound handles /api/stage/sound. GET reports the sound
// channel, POST adjusts it; absent fields keep their value.
func (s *Server) handleStageSound(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.config.App.State().Sound)

	case http.MethodPost:
		var req struct {
			Enabled *bool    `json:"enabled"`
			Volume  *float64 `json:"volume"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled != nil {
			s.config.App.SetSoundEnabled(*req.Enabled)
		}
		if req.Volume != nil {
			s.config.App.SetSoundVolume(*req.Volume)
		}
		writeJSON(w, http.StatusOK, s.config.App.State().Sound)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
