package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// TrainHandler computes a gesture template server-side from the recorded
// samples, so clients never have to average clouds or resample paths
// themselves. Training replaces any existing template and the recognizer
// picks it up through the reload callback.
type TrainHandler struct {
	store   *store.Store
	trainer *gesture.Trainer
	reload  func() error
}

// NewTrainHandler creates a new TrainHandler. reload may be nil.
func NewTrainHandler(s *store.Store, reload func() error) *TrainHandler {
	return &TrainHandler{store: s, trainer: gesture.NewTrainer(), reload: reload}
}

// ServeHTTP implements the http.Handler interface.
// Expected paths: /api/gestures/{id}/train
func (h *TrainHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/gestures/")
	parts := strings.Split(path, "/")

	if len(parts) != 2 || parts[1] != "train" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.train(w, r, parts[0])
}

// train handles POST /api/gestures/{id}/train.
func (h *TrainHandler) train(w http.ResponseWriter, r *http.Request, gestureID string) {
	g, err := h.store.Gestures().GetByID(gestureID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Gesture not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to verify gesture")
		return
	}

	samples, err := h.store.Samples().GetByGestureID(gestureID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load samples")
		return
	}
	if len(samples) == 0 {
		writeError(w, http.StatusBadRequest, "No samples recorded")
		return
	}

	raw := make([]json.RawMessage, len(samples))
	for i, s := range samples {
		raw[i] = s.Data
	}

	body := templateBody{}
	switch g.Type {
	case store.GestureTypeDynamic:
		path, err := h.trainer.TrainDynamic(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Training failed: "+err.Error())
			return
		}
		stored := make([]store.PathPoint, 0, len(path))
		for _, p := range path {
			stored = append(stored, store.PathPoint{X: p.X, Y: p.Y, Z: p.Z, TimestampMS: p.Timestamp})
			body.Path = append(body.Path, templatePathPoint{X: p.X, Y: p.Y, Z: p.Z, T: p.Timestamp})
		}
		if err := h.store.Gestures().SaveTemplate(gestureID, nil, stored); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save template")
			return
		}
	default:
		joints, err := h.trainer.TrainStatic(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Training failed: "+err.Error())
			return
		}
		for _, j := range joints {
			body.Joints = append(body.Joints, [3]float64{j.X(), j.Y(), j.Z()})
		}
		if err := h.store.Gestures().SaveTemplate(gestureID, joints, nil); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save template")
			return
		}
	}

	if h.reload != nil {
		if err := h.reload(); err != nil {
			writeError(w, http.StatusInternalServerError, "Template trained but reload failed")
			return
		}
	}

	writeJSON(w, http.StatusOK, body)
}
