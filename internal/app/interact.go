package app

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/stage"
)

// applyHand turns one hand's recognized state into stage interaction: pinch
// and grab move models, pointing hovers them, anything else lets go. Gesture
// changes are edge-triggered into the event log and plugin actions. Callers
// hold a.mu.
func (a *App) applyHand(st gesture.State, snap hand.Snapshot) {
	side := st.Side
	key := string(side)

	if !st.Tracked {
		a.endHold(side)
		a.endHover(side)
		a.lastKind[key] = gesture.KindNone
		return
	}

	switch st.Kind {
	case gesture.KindPinch, gesture.KindGrab:
		a.endHover(side)
		pose := controllerPose(st, snap)
		if a.engine.Holding(side) {
			a.engine.UpdateGrab(side, pose)
		} else if id, ok := a.engine.Pick(st.Ray.Origin, st.Ray.Direction); ok {
			if a.engine.StartGrab(side, id, pose) {
				if owner, ok := a.engine.Owner(id); ok {
					a.appendEvent("stage", key, "grab:"+owner.Name, nil)
				}
			}
		}
	case gesture.KindPoint:
		a.endHold(side)
		if id, ok := a.engine.Pick(st.Ray.Origin, st.Ray.Direction); ok {
			if a.engine.SetHover(id) {
				a.hoverSide = key
			}
		} else {
			a.endHover(side)
		}
	default:
		a.endHold(side)
		a.endHover(side)
	}

	if st.Kind != a.lastKind[key] && st.Kind != gesture.KindNone {
		a.appendEvent("gesture", key, string(st.Kind), nil)
		a.dispatchActions(string(st.Kind), side)
	}
	a.lastKind[key] = st.Kind
}

// endHold releases whatever the side holds and records the release, plus a
// snap-back event when the drop landed out of bounds.
func (a *App) endHold(side hand.Side) {
	if !a.engine.Holding(side) {
		return
	}
	id := a.engine.ReleaseGrab(side)
	owner, ok := a.engine.Owner(id)
	if !ok {
		return
	}
	key := string(side)
	a.appendEvent("stage", key, "release:"+owner.Name, nil)
	if a.engine.Snapping(id) {
		a.appendEvent("stage", key, "snapback:"+owner.Name, nil)
	}
}

// endHover clears the stage hover if this side owns it. The stage has one
// hover slot, so the other hand's hover survives.
func (a *App) endHover(side hand.Side) {
	if a.hoverSide == string(side) {
		a.engine.ClearHover()
		a.hoverSide = ""
	}
}

// controllerPose derives the grab controller transform from the hand. The
// pinch point anchors pinches, the palm center anchors whole-hand grabs, and
// the palm plane gives an orientation that follows wrist rotation.
func controllerPose(st gesture.State, snap hand.Snapshot) stage.Pose {
	pose := stage.Pose{Position: st.PinchPoint, Rotation: mgl64.QuatIdent()}

	wrist, ok := snap[hand.Wrist]
	if !ok {
		return pose
	}
	middle, ok := snap[hand.MiddleProximal]
	if !ok {
		return pose
	}

	if st.Kind == gesture.KindGrab {
		pose.Position = wrist.Position.Add(middle.Position).Mul(0.5)
	}

	index, okIndex := snap[hand.IndexProximal]
	pinky, okPinky := snap[hand.PinkyProximal]
	if !okIndex || !okPinky {
		return pose
	}

	up := middle.Position.Sub(wrist.Position)
	normal := pinky.Position.Sub(wrist.Position).Cross(index.Position.Sub(wrist.Position))
	if up.Len() == 0 || normal.Len() == 0 {
		return pose
	}
	pose.Rotation = mgl64.QuatLookAtV(mgl64.Vec3{}, normal.Normalize(), up.Normalize())
	return pose
}

// matchCustom runs the trained matchers for one hand. Static poses
// edge-trigger on the best match; dynamic gestures accumulate a pinch-point
// trail and fire once the buffered path matches a template. Callers hold
// a.mu.
func (a *App) matchCustom(now time.Time, st gesture.State, snap hand.Snapshot) {
	key := string(st.Side)

	if !st.Tracked {
		delete(a.lastStatic, key)
		delete(a.trails, key)
		return
	}

	if matches := a.staticMatcher.Match(snap); len(matches) > 0 {
		name := matches[0].Template.Name
		if a.lastStatic[key] != name {
			a.lastStatic[key] = name
			a.appendEvent("custom-gesture", key, name, nil)
			a.dispatchActions(name, st.Side)
		}
	} else {
		delete(a.lastStatic, key)
	}

	trail := append(a.trails[key], gesture.PathPoint{
		X:         st.PinchPoint.X(),
		Y:         st.PinchPoint.Y(),
		Z:         st.PinchPoint.Z(),
		Timestamp: now.UnixMilli(),
	})
	if len(trail) > PathBufferSize {
		trail = trail[len(trail)-PathBufferSize:]
	}
	if len(trail) >= minPathPoints {
		if matches := a.dynamicMatcher.Match(trail); len(matches) > 0 {
			name := matches[0].Template.Name
			a.appendEvent("custom-gesture", key, name, nil)
			a.dispatchActions(name, st.Side)
			trail = trail[:0]
		}
	}
	a.trails[key] = trail
}
