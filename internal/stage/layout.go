package stage

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/scene"
)

// Placement is a computed pose for the control panel, along with the
// panel's configured drawn size.
type Placement struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Width    float64
	Height   float64
}

// flattenForward projects a gaze direction onto the horizontal plane. A
// gaze pointing straight up or down has no horizontal component and falls
// back to the default heading.
func flattenForward(forward mgl64.Vec3) mgl64.Vec3 {
	flat := mgl64.Vec3{forward.X(), 0, forward.Z()}
	if flat.Len() < 1e-9 {
		return mgl64.Vec3{0, 0, -1}
	}
	return flat.Normalize()
}

// rightOf returns the horizontal right-hand direction for a flattened
// forward, in a Y-up right-handed space.
func rightOf(forward mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{-forward.Z(), 0, forward.X()}
}

// yawToward returns the yaw-only rotation turning +Z toward dir. Identity
// when dir has no horizontal component.
func yawToward(dir mgl64.Vec3) mgl64.Quat {
	flat := mgl64.Vec3{dir.X(), 0, dir.Z()}
	if flat.Len() < 1e-9 {
		return mgl64.QuatIdent()
	}
	yaw := math.Atan2(flat.X(), flat.Z())
	return mgl64.QuatRotate(yaw, mgl64.Vec3{0, 1, 0})
}

// PanelPlacement computes where the control panel belongs for the current
// user pose: ahead along the flattened gaze at the configured distance,
// shifted to the configured side and a comfortable height, turned back
// toward the user and tilted for readability. It reads state but changes
// nothing.
func (e *Engine) PanelPlacement() Placement {
	side := -e.cfg.PanelSideOffset
	if e.cfg.PanelSide == "right" {
		side = e.cfg.PanelSideOffset
	}
	pos := e.head.
		Add(e.flatForward.Mul(e.cfg.PanelDistance)).
		Add(rightOf(e.flatForward).Mul(side))
	pos[1] = e.head.Y() + e.cfg.PanelHeightOffset

	rot := yawToward(e.flatForward.Mul(-1))
	if e.cfg.PanelTilt != 0 {
		tilt := mgl64.QuatRotate(mgl64.DegToRad(-e.cfg.PanelTilt), mgl64.Vec3{1, 0, 0})
		rot = rot.Mul(tilt).Normalize()
	}

	return Placement{
		Position: pos,
		Rotation: rot,
		Width:    e.cfg.PanelWidth,
		Height:   e.cfg.PanelHeight,
	}
}

// LayoutPanel applies the current panel placement to the given node.
func (e *Engine) LayoutPanel(panel *scene.Node) {
	if panel == nil {
		return
	}
	placement := e.PanelPlacement()
	panel.Position = placement.Position
	panel.Rotation = placement.Rotation
}

// LayoutStage places the given models on the stage, replacing whatever was
// placed before. One model sits at the center, two to four fan out on an
// arc toward the user, five or more fill a two-row grid. Each model is
// scaled to a common size, recentered over its slot, dropped onto the
// stage floor and turned to face the user. An empty list clears the stage.
func (e *Engine) LayoutStage(models []*scene.Node) {
	// Interactions refer to the outgoing arrangement; cancel them while
	// the old registry is still intact.
	e.dropHolds()
	e.snaps = make(map[uuid.UUID]*snapAnim)
	e.ClearHover()
	e.ClearFocus()

	e.placed = e.placed[:0]
	e.byRoot = make(map[uuid.UUID]*placedModel)
	e.owners = make(map[uuid.UUID]uuid.UUID)

	if len(models) == 0 {
		e.log.Info().Msg("stage cleared")
		return
	}

	slots := e.slotPositions(len(models))
	for i, model := range models {
		if model == nil {
			e.log.Warn().Int("slot", i).Msg("skipping nil model")
			continue
		}
		if _, dup := e.byRoot[model.ID]; dup {
			e.log.Warn().Str("model", model.Name).Msg("skipping duplicate model")
			continue
		}

		e.placeAt(model, slots[i])

		p := &placedModel{
			node: model,
			baseline: Baseline{
				Position: model.Position,
				Rotation: model.Rotation,
				Scale:    model.Scale,
			},
		}
		e.placed = append(e.placed, p)
		e.byRoot[model.ID] = p
		model.Traverse(func(n *scene.Node) {
			e.owners[n.ID] = model.ID
		})
	}

	e.log.Info().
		Int("models", len(e.placed)).
		Str("strategy", strategyName(len(models))).
		Msg("stage laid out")
}

func strategyName(n int) string {
	switch {
	case n == 1:
		return "single"
	case n <= 4:
		return "arc"
	default:
		return "grid"
	}
}

// slotPositions computes the world-space slot for each of n models.
func (e *Engine) slotPositions(n int) []mgl64.Vec3 {
	switch {
	case n == 1:
		return []mgl64.Vec3{e.origin}
	case n <= 4:
		return e.arcSlots(n)
	default:
		return e.gridSlots(n)
	}
}

// towardUser is the horizontal direction from the stage origin to the
// user. With the user straight above the origin it falls back to the gaze
// direction, which puts models where the user is looking.
func (e *Engine) towardUser() mgl64.Vec3 {
	d := e.head.Sub(e.origin)
	flat := mgl64.Vec3{d.X(), 0, d.Z()}
	if flat.Len() < 1e-9 {
		return e.flatForward
	}
	return flat.Normalize()
}

// arcSlots fans n slots across the configured angle at the arc radius, on
// the user's side of the stage.
func (e *Engine) arcSlots(n int) []mgl64.Vec3 {
	toward := e.towardUser()
	total := mgl64.DegToRad(e.cfg.ArcAngle)
	step := total / float64(n-1)
	start := -total / 2

	slots := make([]mgl64.Vec3, n)
	for i := range slots {
		angle := start + float64(i)*step
		dir := mgl64.QuatRotate(angle, mgl64.Vec3{0, 1, 0}).Rotate(toward)
		slots[i] = e.origin.Add(dir.Mul(e.cfg.ArcRadius))
	}
	return slots
}

// gridSlots fills two rows, front row first, centered on the stage origin
// and facing the user.
func (e *Engine) gridSlots(n int) []mgl64.Vec3 {
	toward := e.towardUser()
	right := rightOf(toward)
	spacing := e.cfg.NormalizedObjectSize + e.cfg.ModelSpacing
	cols := (n + 1) / 2

	slots := make([]mgl64.Vec3, 0, n)
	for i := 0; i < n; i++ {
		row := i / cols
		col := i % cols
		x := (float64(col) - float64(cols-1)/2) * spacing
		z := spacing / 2
		if row == 1 {
			z = -spacing / 2
		}
		slots = append(slots, e.origin.Add(right.Mul(x)).Add(toward.Mul(z)))
	}
	return slots
}

// placeAt normalizes the model and sets its slot transform: uniform scale
// to the target size, yaw to face the user, horizontal recenter over the
// slot and vertical drop onto the stage floor.
func (e *Engine) placeAt(model *scene.Node, slot mgl64.Vec3) {
	model.Position = mgl64.Vec3{}
	model.Rotation = mgl64.QuatIdent()
	model.Scale = mgl64.Vec3{1, 1, 1}

	raw := model.WorldBounds()
	if raw.IsEmpty() || raw.MaxDimension() == 0 {
		e.log.Warn().Str("model", model.Name).Msg("model has no geometry, placing unscaled")
	} else {
		s := e.cfg.NormalizedObjectSize / raw.MaxDimension()
		model.Scale = mgl64.Vec3{s, s, s}
	}

	model.Rotation = yawToward(e.head.Sub(slot))

	// The rotated, scaled bounds decide the final offset: the box center
	// lands on the slot and the box bottom on the floor.
	model.Position = mgl64.Vec3{slot.X(), e.origin.Y(), slot.Z()}
	if bounds := model.WorldBounds(); !bounds.IsEmpty() {
		center := bounds.Center()
		model.Position = mgl64.Vec3{
			slot.X() - center.X(),
			e.origin.Y() - bounds.Min.Y(),
			slot.Z() - center.Z(),
		}
	}
}
