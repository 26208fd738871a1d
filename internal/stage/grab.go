package stage

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/scene"
)

// grabState ties one controller to the model it holds. The offset and
// rotations recorded at grab time keep the model from jumping into the
// hand: it follows from wherever it was.
type grabState struct {
	modelID       uuid.UUID
	offset        mgl64.Vec3 // model position relative to the controller at grab
	ctrlStartInv  mgl64.Quat // inverse controller rotation at grab
	modelStartRot mgl64.Quat
}

// StartGrab begins moving the model owning the given node with the
// controller on the given side. It refuses, returning false, when the node
// is not on stage, the side already holds a model, or the model is held by
// the other side. Grabbing a model mid-snap cancels the snap. The held
// model's surfaces carry the grab highlight until it is let go.
func (e *Engine) StartGrab(side hand.Side, nodeID uuid.UUID, ctrl Pose) bool {
	root, ok := e.Owner(nodeID)
	if !ok {
		e.log.Warn().Str("node", nodeID.String()).Msg("grab target not on stage")
		return false
	}
	if _, busy := e.holds[side]; busy {
		return false
	}
	for _, h := range e.holds {
		if h.modelID == root.ID {
			return false
		}
	}

	delete(e.snaps, root.ID)
	if e.hoverID == root.ID {
		e.ClearHover()
	}

	e.holds[side] = &grabState{
		modelID:       root.ID,
		offset:        root.Position.Sub(ctrl.Position),
		ctrlStartInv:  ctrl.Rotation.Inverse(),
		modelStartRot: root.Rotation,
	}
	root.EachSurface(func(s *scene.Surface) {
		s.SetGlow(grabColor, grabIntensity)
	})
	e.log.Debug().Str("side", string(side)).Str("model", root.Name).Msg("grab started")
	return true
}

// UpdateGrab eases the held model toward the pose implied by the
// controller's movement since the grab began. Position and rotation close
// a fraction of the remaining gap each frame, which smooths tracking
// jitter. No-op when the side holds nothing.
func (e *Engine) UpdateGrab(side hand.Side, ctrl Pose) {
	h, ok := e.holds[side]
	if !ok {
		return
	}
	p, ok := e.byRoot[h.modelID]
	if !ok {
		delete(e.holds, side)
		return
	}

	delta := ctrl.Rotation.Mul(h.ctrlStartInv).Normalize()
	target := ctrl.Position.Add(delta.Rotate(h.offset))

	node := p.node
	node.Position = lerpVec3(node.Position, target, e.cfg.GrabPosLerp)
	node.Rotation = mgl64.QuatSlerp(node.Rotation, delta.Mul(h.modelStartRot).Normalize(), e.cfg.GrabRotSlerp)
}

// ReleaseGrab lets go of whatever the side holds and returns the released
// model's root ID, or uuid.Nil when nothing was held. The grab highlight
// comes off, restoring the surfaces exactly as they were. A model dropped
// outside the stage bound animates back to the nearest point inside, at
// its layout height.
func (e *Engine) ReleaseGrab(side hand.Side) uuid.UUID {
	h, ok := e.holds[side]
	if !ok {
		return uuid.Nil
	}
	delete(e.holds, side)
	p, ok := e.byRoot[h.modelID]
	if !ok {
		return uuid.Nil
	}

	p.node.EachSurface(func(s *scene.Surface) {
		s.ClearGlow()
	})
	e.maybeSnapBack(p)
	e.log.Debug().Str("side", string(side)).Str("model", p.node.Name).Msg("grab released")
	return h.modelID
}

// dropHolds cancels every grab at once, restoring each held model's
// highlight. Used when the whole stage changes under the holds.
func (e *Engine) dropHolds() {
	for _, h := range e.holds {
		if p, ok := e.byRoot[h.modelID]; ok {
			p.node.EachSurface(func(s *scene.Surface) {
				s.ClearGlow()
			})
		}
	}
	e.holds = make(map[hand.Side]*grabState)
}

// Holding reports whether the side currently holds a model.
func (e *Engine) Holding(side hand.Side) bool {
	_, ok := e.holds[side]
	return ok
}

// Held returns the root ID of the model held by the side, or uuid.Nil.
func (e *Engine) Held(side hand.Side) uuid.UUID {
	if h, ok := e.holds[side]; ok {
		return h.modelID
	}
	return uuid.Nil
}

// maybeSnapBack starts a snap animation when the model's horizontal
// distance from the stage origin exceeds the stage bound minus the margin.
func (e *Engine) maybeSnapBack(p *placedModel) {
	limit := e.cfg.Radius() - e.cfg.SnapMargin
	if limit <= 0 {
		return
	}
	offset := p.node.Position.Sub(e.origin)
	horiz := mgl64.Vec3{offset.X(), 0, offset.Z()}
	dist := horiz.Len()
	if dist <= limit {
		return
	}

	dir := horiz.Mul(1 / dist)
	target := e.origin.Add(dir.Mul(limit))
	target[1] = p.baseline.Position.Y()

	e.snaps[p.node.ID] = &snapAnim{
		from:     p.node.Position,
		to:       target,
		duration: e.cfg.SnapDuration,
	}
	e.log.Debug().
		Str("model", p.node.Name).
		Float64("overshoot", dist-limit).
		Msg("snapping back onto stage")
}

// snapAnim eases a model from where it was dropped back to an in-bounds
// position.
type snapAnim struct {
	from     mgl64.Vec3
	to       mgl64.Vec3
	elapsed  float64
	duration float64
}

// step advances the clock and reports whether the animation has finished.
func (a *snapAnim) step(dt float64) bool {
	a.elapsed += dt
	return a.elapsed >= a.duration
}

// at returns the position for the current time, eased so the motion starts
// fast and settles gently.
func (a *snapAnim) at() mgl64.Vec3 {
	if a.duration <= 0 {
		return a.to
	}
	t := mgl64.Clamp(a.elapsed/a.duration, 0, 1)
	eased := 1 - math.Pow(1-t, 3)
	return a.from.Add(a.to.Sub(a.from).Mul(eased))
}

func lerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
