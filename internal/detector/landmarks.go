// Package detector turns camera frames into hand joint snapshots. The
// production implementation shells out to a MediaPipe helper process that
// reports 21 image-space landmarks per hand; this package maps those onto
// the 25-joint hand model the recognizer consumes.
package detector

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ayusman/mudra/internal/hand"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is one landmark in MediaPipe image space: x and y are normalized
// to [0,1] across the frame with y growing downward, z is wrist-relative
// depth where smaller values sit closer to the camera.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks is one detected hand as the MediaPipe helper reports it.
// Coordinates are raw camera image space; the handedness label is already
// corrected to the user's frame by the helper.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Conversion constants for placing a camera-tracked hand in world space.
// MediaPipe reports no absolute scale, so the mapping pins the wrist to
// middle-knuckle span to a nominal palm size and anchors the hand at a
// fixed height and distance in front of the user.
const (
	palmSpanMeters   = 0.08
	handHeightMeters = 1.2
	handDepthMeters  = 0.5
	frameSpanMeters  = 0.6

	// Fraction of the wrist-to-knuckle segment where the synthesized
	// finger metacarpal joints are placed.
	metacarpalLerp = 0.25

	jointRadiusMeters = 0.01
	wristRadiusMeters = 0.02
)

// Landmarks below the palm-span threshold are degenerate detections, usually
// a hand collapsing at the frame edge.
const minPalmSpan = 1e-6

// landmarkJoints maps each directly reported landmark to its joint name.
// The four finger metacarpals have no MediaPipe counterpart and are
// synthesized between the wrist and the knuckle.
var landmarkJoints = [NumLandmarks]hand.Joint{
	Wrist:     hand.Wrist,
	ThumbCMC:  hand.ThumbMetacarpal,
	ThumbMCP:  hand.ThumbProximal,
	ThumbIP:   hand.ThumbDistal,
	ThumbTip:  hand.ThumbTip,
	IndexMCP:  hand.IndexProximal,
	IndexPIP:  hand.IndexIntermediate,
	IndexDIP:  hand.IndexDistal,
	IndexTip:  hand.IndexTip,
	MiddleMCP: hand.MiddleProximal,
	MiddlePIP: hand.MiddleIntermediate,
	MiddleDIP: hand.MiddleDistal,
	MiddleTip: hand.MiddleTip,
	RingMCP:   hand.RingProximal,
	RingPIP:   hand.RingIntermediate,
	RingDIP:   hand.RingDistal,
	RingTip:   hand.RingTip,
	PinkyMCP:  hand.PinkyProximal,
	PinkyPIP:  hand.PinkyIntermediate,
	PinkyDIP:  hand.PinkyDistal,
	PinkyTip:  hand.PinkyTip,
}

var synthesizedMetacarpals = map[hand.Joint]int{
	hand.IndexMetacarpal:  IndexMCP,
	hand.MiddleMetacarpal: MiddleMCP,
	hand.RingMetacarpal:   RingMCP,
	hand.PinkyMetacarpal:  PinkyMCP,
}

// Side maps the reported handedness label onto a hand side.
func (h *HandLandmarks) Side() hand.Side {
	if strings.EqualFold(h.Handedness, "left") {
		return hand.Left
	}
	return hand.Right
}

// Snapshot converts the landmarks into the 25-joint world-space model. The
// second return is false when the detection is degenerate (zero palm span)
// and no usable snapshot can be built.
//
// Image space maps to world space as follows: x is mirrored so the user's
// right appears at +X, y is flipped so up is +Y, and depth grows toward the
// user so a landmark nearer the camera lands at more negative Z. The wrist
// anchors at a nominal position in front of the user since a single camera
// cannot recover absolute distance.
func (h *HandLandmarks) Snapshot() (hand.Snapshot, bool) {
	wrist := h.Points[Wrist]
	span := distance3D(wrist, h.Points[MiddleMCP])
	if span < minPalmSpan {
		return nil, false
	}
	scale := palmSpanMeters / span

	anchor := mgl64.Vec3{
		(0.5 - wrist.X) * frameSpanMeters,
		handHeightMeters + (0.5-wrist.Y)*frameSpanMeters,
		-handDepthMeters,
	}

	world := func(p Point3D) mgl64.Vec3 {
		return mgl64.Vec3{
			anchor.X() - (p.X-wrist.X)*scale,
			anchor.Y() - (p.Y-wrist.Y)*scale,
			anchor.Z() + (p.Z-wrist.Z)*scale,
		}
	}

	snap := make(hand.Snapshot, hand.NumJoints)
	for i, joint := range landmarkJoints {
		radius := jointRadiusMeters
		if joint == hand.Wrist {
			radius = wristRadiusMeters
		}
		snap[joint] = hand.Sample{Position: world(h.Points[i]), Radius: radius}
	}

	wristPos := snap[hand.Wrist].Position
	for joint, knuckle := range synthesizedMetacarpals {
		knucklePos := snap[landmarkJoints[knuckle]].Position
		pos := wristPos.Add(knucklePos.Sub(wristPos).Mul(metacarpalLerp))
		snap[joint] = hand.Sample{Position: pos, Radius: jointRadiusMeters}
	}

	return snap, true
}

// distance3D is the Euclidean distance between two image-space points.
func distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
