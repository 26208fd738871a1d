package app

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hand"
)

// ModelState is one placed model's transform and interaction flags as
// reported over the API.
type ModelState struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Position mgl64.Vec3 `json:"position"`
	Rotation [4]float64 `json:"rotation"` // w, x, y, z
	Scale    float64    `json:"scale"`
	Focused  bool       `json:"focused"`
	Hovered  bool       `json:"hovered"`
	Snapping bool       `json:"snapping"`
	HeldBy   string     `json:"heldBy,omitempty"`
}

// SoundState reports the ambient sound controls.
type SoundState struct {
	Enabled   bool    `json:"enabled"`
	Volume    float64 `json:"volume"`
	Playing   bool    `json:"playing"`
	HasSource bool    `json:"hasSource"`
}

// PanelState is the control panel's pose and drawn size for the host to
// render.
type PanelState struct {
	Position mgl64.Vec3 `json:"position"`
	Rotation [4]float64 `json:"rotation"` // w, x, y, z
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
}

// State is a full snapshot of the app for clients: tracking flag, both
// hands' recognized state, every placed model, the panel pose, the stage
// spotlight and the ambient sound.
type State struct {
	Enabled   bool            `json:"enabled"`
	Hands     []gesture.State `json:"hands"`
	Models    []ModelState    `json:"models"`
	Panel     PanelState      `json:"panel"`
	Spotlight mgl64.Vec3      `json:"spotlight"`
	Sound     SoundState      `json:"sound"`
	Timestamp int64           `json:"timestamp"`
}

// State snapshots the app under the read lock. Safe to call from any
// goroutine.
func (a *App) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()

	st := State{
		Enabled:   a.enabled,
		Hands:     make([]gesture.State, 0, 2),
		Timestamp: time.Now().UnixMilli(),
	}

	heldBy := make(map[uuid.UUID]string, 2)
	for _, side := range []hand.Side{hand.Left, hand.Right} {
		hs := a.recognizer.Last(side)
		hs.Side = side
		st.Hands = append(st.Hands, hs)
		if id := a.engine.Held(side); id != uuid.Nil {
			heldBy[id] = string(side)
		}
	}

	focused := a.engine.Focused()
	hovered := a.engine.Hovered()
	models := a.engine.Models()
	st.Models = make([]ModelState, 0, len(models))
	for _, m := range models {
		st.Models = append(st.Models, ModelState{
			ID:       m.ID,
			Name:     m.Name,
			Position: m.Position,
			Rotation: [4]float64{m.Rotation.W, m.Rotation.X(), m.Rotation.Y(), m.Rotation.Z()},
			Scale:    m.Scale.X(),
			Focused:  m.ID == focused,
			Hovered:  m.ID == hovered,
			Snapping: a.engine.Snapping(m.ID),
			HeldBy:   heldBy[m.ID],
		})
	}

	panel := a.engine.PanelPlacement()
	st.Panel = PanelState{
		Position: panel.Position,
		Rotation: [4]float64{panel.Rotation.W, panel.Rotation.X(), panel.Rotation.Y(), panel.Rotation.Z()},
		Width:    panel.Width,
		Height:   panel.Height,
	}
	st.Spotlight = a.engine.Spotlight()

	snd := a.engine.Sound()
	st.Sound = SoundState{
		Enabled:   snd.Enabled(),
		Volume:    snd.Volume(),
		Playing:   snd.Playing(),
		HasSource: snd.HasSource(),
	}
	return st
}
