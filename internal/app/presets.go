package app

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/store"
)

// ErrNoStore is returned by persistence operations when the app runs
// without a store.
var ErrNoStore = errors.New("no store configured")

// ErrNoModels is returned by SavePreset when the stage is empty.
var ErrNoModels = errors.New("no models on stage")

// SavePreset captures every placed model's current transform under the
// given name.
func (a *App) SavePreset(name string) error {
	if a.store == nil {
		return ErrNoStore
	}

	a.mu.RLock()
	preset := &store.Preset{ID: uuid.NewString(), Name: name}
	for i, m := range a.engine.Models() {
		preset.Models = append(preset.Models, store.PresetModel{
			ModelName: m.Name,
			Slot:      i,
			Position:  m.Position,
			Rotation:  m.Rotation,
			Scale:     m.Scale.X(),
		})
	}
	a.mu.RUnlock()

	if len(preset.Models) == 0 {
		return ErrNoModels
	}
	if err := a.store.Presets().Create(preset); err != nil {
		return fmt.Errorf("saving preset %q: %w", name, err)
	}
	a.appendEvent("stage", "", "preset-saved:"+name, nil)
	return nil
}

// ApplyPreset moves the models named by the preset to their stored
// transforms and makes those transforms the new baselines, so reset and
// snap-back return to the preset arrangement. Models the preset names that
// are not on stage are skipped with a warning.
func (a *App) ApplyPreset(name string) error {
	if a.store == nil {
		return ErrNoStore
	}
	preset, err := a.store.Presets().GetByName(name)
	if err != nil {
		return fmt.Errorf("loading preset %q: %w", name, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	applied := 0
	for _, pm := range preset.Models {
		id, ok := a.modelIDs[pm.ModelName]
		if !ok {
			a.log.Warn().
				Str("model", pm.ModelName).
				Str("preset", name).
				Msg("preset names a model not on stage")
			continue
		}
		if !a.engine.ResetModel(id) {
			continue
		}
		node, ok := a.engine.Owner(id)
		if !ok {
			continue
		}
		node.Position = pm.Position
		node.Rotation = pm.Rotation
		node.Scale = mgl64.Vec3{pm.Scale, pm.Scale, pm.Scale}
		a.engine.Rebaseline(id)
		applied++
	}
	if applied == 0 {
		return fmt.Errorf("preset %q matches no stage model", name)
	}
	a.appendEvent("stage", "", "preset:"+name, nil)
	return nil
}
