package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ayusman/mudra/internal/store"
)

// TemplateHandler handles HTTP requests for gesture template data, the
// averaged joints or motion path computed from training samples. When a
// reload function is set it runs after every save, so the recognizer picks
// new templates up without a restart.
type TemplateHandler struct {
	store  *store.Store
	reload func() error
}

// NewTemplateHandler creates a new TemplateHandler. reload may be nil.
func NewTemplateHandler(s *store.Store, reload func() error) *TemplateHandler {
	return &TemplateHandler{store: s, reload: reload}
}

// ServeHTTP implements the http.Handler interface.
// Expected paths: /api/gestures/{id}/template
func (h *TemplateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/gestures/")
	parts := strings.Split(path, "/")

	if len(parts) != 2 || parts[1] != "template" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	gestureID := parts[0]

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, gestureID)
	case http.MethodPut:
		h.put(w, r, gestureID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type templatePathPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	T int64   `json:"t"`
}

type templateBody struct {
	Joints [][3]float64        `json:"joints,omitempty"`
	Path   []templatePathPoint `json:"path,omitempty"`
}

// get handles GET /api/gestures/{id}/template and returns the stored
// template data.
func (h *TemplateHandler) get(w http.ResponseWriter, r *http.Request, gestureID string) {
	if _, err := h.store.Gestures().GetByID(gestureID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Gesture not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to verify gesture")
		return
	}

	joints, err := h.store.Gestures().Joints(gestureID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load joints")
		return
	}
	path, err := h.store.Gestures().Path(gestureID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load path")
		return
	}

	body := templateBody{}
	for _, j := range joints {
		body.Joints = append(body.Joints, [3]float64{j.X(), j.Y(), j.Z()})
	}
	for _, p := range path {
		body.Path = append(body.Path, templatePathPoint{X: p.X, Y: p.Y, Z: p.Z, T: p.TimestampMS})
	}

	writeJSON(w, http.StatusOK, body)
}

// put handles PUT /api/gestures/{id}/template and replaces the template
// data. Static gestures carry joints, dynamic ones a path.
func (h *TemplateHandler) put(w http.ResponseWriter, r *http.Request, gestureID string) {
	gesture, err := h.store.Gestures().GetByID(gestureID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Gesture not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to verify gesture")
		return
	}

	var body templateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	switch gesture.Type {
	case store.GestureTypeStatic:
		if len(body.Joints) == 0 {
			writeError(w, http.StatusBadRequest, "Static gesture template requires joints")
			return
		}
	case store.GestureTypeDynamic:
		if len(body.Path) == 0 {
			writeError(w, http.StatusBadRequest, "Dynamic gesture template requires a path")
			return
		}
	}

	joints := make([]mgl64.Vec3, 0, len(body.Joints))
	for _, j := range body.Joints {
		joints = append(joints, mgl64.Vec3{j[0], j[1], j[2]})
	}
	path := make([]store.PathPoint, 0, len(body.Path))
	for _, p := range body.Path {
		path = append(path, store.PathPoint{X: p.X, Y: p.Y, Z: p.Z, TimestampMS: p.T})
	}

	if err := h.store.Gestures().SaveTemplate(gestureID, joints, path); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save template")
		return
	}

	if h.reload != nil {
		if err := h.reload(); err != nil {
			writeError(w, http.StatusInternalServerError, "Template saved but reload failed")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
