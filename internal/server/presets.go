package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/store"
)

type presetModelResponse struct {
	ModelName string     `json:"modelName"`
	Slot      int        `json:"slot"`
	Position  [3]float64 `json:"position"`
	Rotation  [4]float64 `json:"rotation"` // w, x, y, z
	Scale     float64    `json:"scale"`
}

type presetResponse struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Models    []presetModelResponse `json:"models"`
	CreatedAt time.Time             `json:"createdAt"`
}

func toPresetResponse(p *store.Preset) presetResponse {
	resp := presetResponse{
		ID:        p.ID,
		Name:      p.Name,
		Models:    make([]presetModelResponse, 0, len(p.Models)),
		CreatedAt: p.CreatedAt,
	}
	for _, m := range p.Models {
		resp.Models = append(resp.Models, presetModelResponse{
			ModelName: m.ModelName,
			Slot:      m.Slot,
			Position:  [3]float64{m.Position.X(), m.Position.Y(), m.Position.Z()},
			Rotation:  [4]float64{m.Rotation.W, m.Rotation.X(), m.Rotation.Y(), m.Rotation.Z()},
			Scale:     m.Scale,
		})
	}
	return resp
}

// handlePresets handles /api/presets. GET lists the saved arrangements,
// POST captures the current one under a new name.
func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		presets, err := s.config.Store.Presets().List()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list presets")
			return
		}
		response := struct {
			Presets []presetResponse `json:"presets"`
		}{Presets: make([]presetResponse, 0, len(presets))}
		for _, p := range presets {
			response.Presets = append(response.Presets, toPresetResponse(p))
		}
		writeJSON(w, http.StatusOK, response)

	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		if err := s.config.App.SavePreset(req.Name); err != nil {
			if errors.Is(err, app.ErrNoModels) {
				writeError(w, http.StatusBadRequest, "No models on stage")
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to save preset")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"name": req.Name})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handlePresetItem handles /api/presets/{name} and the apply subresource.
// GET returns the stored transforms, POST /api/presets/{name}/apply moves
// the stage to them, DELETE removes the preset.
func (s *Server) handlePresetItem(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/presets/")
	name, sub, _ := strings.Cut(path, "/")
	if name == "" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	if sub == "apply" {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := s.config.App.ApplyPreset(name); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Preset not found")
				return
			}
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"applied": name})
		return
	}
	if sub != "" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		preset, err := s.config.Store.Presets().GetByName(name)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Preset not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to get preset")
			return
		}
		writeJSON(w, http.StatusOK, toPresetResponse(preset))

	case http.MethodDelete:
		preset, err := s.config.Store.Presets().GetByName(name)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Preset not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to get preset")
			return
		}
		if err := s.config.Store.Presets().Delete(preset.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to delete preset")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
