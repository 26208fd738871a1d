package stage

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/audio"
	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/scene"
)

// Pose is a tracked pose in world space.
type Pose struct {
	Position mgl64.Vec3 `json:"position"`
	Rotation mgl64.Quat `json:"rotation"`
}

// Baseline is the transform a model was given at layout time, restored by
// the reset operations.
type Baseline struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

type placedModel struct {
	node     *scene.Node
	baseline Baseline
}

// Hover highlight applied to a model's surfaces while a ray rests on it.
var hoverColor = mgl64.Vec3{0.3, 0.5, 1.0}

const hoverIntensity = 0.8

// Grab highlight, warmer and brighter than hover so a held model reads as
// held.
var grabColor = mgl64.Vec3{1.0, 0.8, 0.2}

const grabIntensity = 1.2

// defaultHeadHeight stands in for the user's eye level until the first
// pose update arrives.
const defaultHeadHeight = 1.6

// Engine holds the stage state and implements every stage operation. It is
// frame driven and not safe for concurrent use: the frame loop owns it, and
// anything else must synchronize access on the outside.
type Engine struct {
	cfg Config
	log zerolog.Logger

	head        mgl64.Vec3
	flatForward mgl64.Vec3
	poseKnown   bool

	// origin is the stage center; the floor is at origin's height.
	origin mgl64.Vec3

	placed []*placedModel
	byRoot map[uuid.UUID]*placedModel
	// owners resolves any node in a placed subtree to its root, so a ray
	// hit deep inside a model finds the thing to move in one lookup.
	owners map[uuid.UUID]uuid.UUID

	holds map[hand.Side]*grabState
	snaps map[uuid.UUID]*snapAnim

	focusID uuid.UUID
	hoverID uuid.UUID

	sound *Sound

	frame uint64
}

// New returns an Engine with no models placed. The audio device may be nil
// when the host has no audio output; the sound channel then logs and
// ignores playback requests.
func New(cfg Config, device audio.Device, log zerolog.Logger) *Engine {
	log = log.With().Str("component", "stage").Logger()
	return &Engine{
		cfg:         cfg,
		log:         log,
		head:        mgl64.Vec3{0, defaultHeadHeight, 0},
		flatForward: mgl64.Vec3{0, 0, -1},
		byRoot:      make(map[uuid.UUID]*placedModel),
		owners:      make(map[uuid.UUID]uuid.UUID),
		holds:       make(map[hand.Side]*grabState),
		snaps:       make(map[uuid.UUID]*snapAnim),
		sound:       newSound(device, log),
	}
}

// UpdateUserPose records the user's head position and gaze for this frame.
// The forward vector is flattened onto the horizontal plane; a forward
// pointing straight up or down falls back to the default heading.
func (e *Engine) UpdateUserPose(head, forward mgl64.Vec3) {
	e.frame++
	e.head = head
	e.flatForward = flattenForward(forward)
	e.poseKnown = true

	if stride := e.cfg.DebugLogStride; stride > 0 && e.frame%uint64(stride) == 0 {
		e.log.Debug().
			Uint64("frame", e.frame).
			Floats64("head", e.head[:]).
			Floats64("forward", e.flatForward[:]).
			Msg("user pose")
	}
}

// Head returns the last recorded head position and whether any pose has
// been recorded at all.
func (e *Engine) Head() (mgl64.Vec3, bool) {
	return e.head, e.poseKnown
}

// Forward returns the flattened gaze direction.
func (e *Engine) Forward() mgl64.Vec3 {
	return e.flatForward
}

// SetOrigin moves the stage center. The floor sits at the origin's height.
func (e *Engine) SetOrigin(origin mgl64.Vec3) {
	e.origin = origin
}

// CenterStage moves the stage center in front of the user: ahead along the
// flattened gaze at the stage distance, shifted by the stage offset, with
// the floor at the configured height. Models already placed do not move;
// call LayoutStage afterwards to arrange them around the new center.
func (e *Engine) CenterStage() {
	origin := e.head.
		Add(e.flatForward.Mul(e.cfg.StageDistance)).
		Add(rightOf(e.flatForward).Mul(e.cfg.StageOffset))
	origin[1] = e.cfg.FloorHeight
	e.origin = origin
}

// Origin returns the stage center.
func (e *Engine) Origin() mgl64.Vec3 {
	return e.origin
}

// Spotlight returns the point above the stage center where the host should
// hang its light. It follows the stage origin.
func (e *Engine) Spotlight() mgl64.Vec3 {
	return e.origin.Add(mgl64.Vec3{0, e.cfg.SpotlightHeight, 0})
}

// Sound returns the engine's ambient sound channel.
func (e *Engine) Sound() *Sound {
	return e.sound
}

// Models returns the placed model roots in layout order.
func (e *Engine) Models() []*scene.Node {
	out := make([]*scene.Node, len(e.placed))
	for i, p := range e.placed {
		out[i] = p.node
	}
	return out
}

// Owner resolves any node ID inside a placed model to the model's root.
// The second result is false for nodes that are not part of a placed model.
func (e *Engine) Owner(id uuid.UUID) (*scene.Node, bool) {
	rootID, ok := e.owners[id]
	if !ok {
		return nil, false
	}
	p, ok := e.byRoot[rootID]
	if !ok {
		return nil, false
	}
	return p.node, true
}

// Baseline returns the recorded layout transform for the model owning the
// given node.
func (e *Engine) Baseline(id uuid.UUID) (Baseline, bool) {
	rootID, ok := e.owners[id]
	if !ok {
		return Baseline{}, false
	}
	p, ok := e.byRoot[rootID]
	if !ok {
		return Baseline{}, false
	}
	return p.baseline, true
}

// Rebaseline makes the model's current transform the pose that reset and
// snap-back return it to. Returns false when the node is not part of a
// placed model.
func (e *Engine) Rebaseline(id uuid.UUID) bool {
	rootID, ok := e.owners[id]
	if !ok {
		return false
	}
	p, ok := e.byRoot[rootID]
	if !ok {
		return false
	}
	p.baseline = Baseline{
		Position: p.node.Position,
		Rotation: p.node.Rotation,
		Scale:    p.node.Scale,
	}
	return true
}

// FocusModel fades every model except the owner of the given node down to
// the focus opacity. Focusing the already focused model is a no-op.
// Returns false when the node is not part of a placed model.
func (e *Engine) FocusModel(id uuid.UUID) bool {
	root, ok := e.Owner(id)
	if !ok {
		e.log.Warn().Str("node", id.String()).Msg("focus target not on stage")
		return false
	}
	if e.focusID == root.ID {
		return true
	}
	e.ClearFocus()
	for _, p := range e.placed {
		if p.node.ID == root.ID {
			continue
		}
		p.node.EachSurface(func(s *scene.Surface) {
			s.Fade(e.cfg.FocusOpacity)
		})
	}
	e.focusID = root.ID
	e.log.Debug().Str("model", root.Name).Msg("focused")
	return true
}

// ClearFocus restores every faded surface. Safe to call with no focus set.
func (e *Engine) ClearFocus() {
	if e.focusID == uuid.Nil {
		return
	}
	for _, p := range e.placed {
		p.node.EachSurface(func(s *scene.Surface) {
			s.Unfade()
		})
	}
	e.focusID = uuid.Nil
}

// Focused returns the root ID of the focused model, or uuid.Nil.
func (e *Engine) Focused() uuid.UUID {
	return e.focusID
}

// SetHover glows the surfaces of the model owning the given node, clearing
// any previous hover. Returns false when the node is not on stage or the
// model is held; the grab highlight owns a held model's surfaces.
func (e *Engine) SetHover(id uuid.UUID) bool {
	root, ok := e.Owner(id)
	if !ok {
		return false
	}
	if e.hoverID == root.ID {
		return true
	}
	e.ClearHover()
	for _, h := range e.holds {
		if h.modelID == root.ID {
			return false
		}
	}
	root.EachSurface(func(s *scene.Surface) {
		s.SetGlow(hoverColor, hoverIntensity)
	})
	e.hoverID = root.ID
	return true
}

// ClearHover removes the hover glow. Safe to call with no hover set.
func (e *Engine) ClearHover() {
	if e.hoverID == uuid.Nil {
		return
	}
	if p, ok := e.byRoot[e.hoverID]; ok {
		p.node.EachSurface(func(s *scene.Surface) {
			s.ClearGlow()
		})
	}
	e.hoverID = uuid.Nil
}

// Hovered returns the root ID of the hovered model, or uuid.Nil.
func (e *Engine) Hovered() uuid.UUID {
	return e.hoverID
}

// ResetModel puts the model owning the given node back at its layout
// transform, cancelling any grab or snap affecting it. Returns false when
// the node is not on stage.
func (e *Engine) ResetModel(id uuid.UUID) bool {
	rootID, ok := e.owners[id]
	if !ok {
		e.log.Warn().Str("node", id.String()).Msg("reset target not on stage")
		return false
	}
	p, ok := e.byRoot[rootID]
	if !ok {
		return false
	}

	for side, hold := range e.holds {
		if hold.modelID == rootID {
			delete(e.holds, side)
			p.node.EachSurface(func(s *scene.Surface) {
				s.ClearGlow()
			})
		}
	}
	delete(e.snaps, rootID)
	if e.hoverID == rootID {
		e.ClearHover()
	}
	if e.focusID == rootID {
		e.ClearFocus()
	}

	p.node.Position = p.baseline.Position
	p.node.Rotation = p.baseline.Rotation
	p.node.Scale = p.baseline.Scale
	e.log.Debug().Str("model", p.node.Name).Msg("reset")
	return true
}

// ResetAllModels restores every placed model and clears focus, hover and
// all in-flight grabs and snaps.
func (e *Engine) ResetAllModels() {
	e.dropHolds()
	e.snaps = make(map[uuid.UUID]*snapAnim)
	e.ClearHover()
	e.ClearFocus()
	for _, p := range e.placed {
		p.node.Position = p.baseline.Position
		p.node.Rotation = p.baseline.Rotation
		p.node.Scale = p.baseline.Scale
	}
	e.log.Debug().Int("models", len(e.placed)).Msg("reset all")
}

// Advance steps time-based state, currently the snap-back animations, by
// dt seconds. Call once per frame.
func (e *Engine) Advance(dt float64) {
	if dt <= 0 || len(e.snaps) == 0 {
		return
	}
	for id, anim := range e.snaps {
		p, ok := e.byRoot[id]
		if !ok {
			delete(e.snaps, id)
			continue
		}
		done := anim.step(dt)
		p.node.Position = anim.at()
		if done {
			delete(e.snaps, id)
			e.log.Debug().Str("model", p.node.Name).Msg("snap finished")
		}
	}
}

// Snapping reports whether the model owning the given node is currently
// animating back onto the stage.
func (e *Engine) Snapping(id uuid.UUID) bool {
	rootID, ok := e.owners[id]
	if !ok {
		return false
	}
	_, snapping := e.snaps[rootID]
	return snapping
}
