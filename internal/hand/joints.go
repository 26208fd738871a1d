// Package hand defines the tracked hand joint model shared by the gesture
// recognizer and its input sources.
package hand

import "github.com/go-gl/mathgl/mgl64"

// Joint names a tracked skeletal point of a hand, following the WebXR
// hand-input joint layout: the wrist, four segments plus tip per finger,
// and three segments plus tip for the thumb.
type Joint string

// The 25 tracked joints.
const (
	Wrist Joint = "wrist"

	ThumbMetacarpal Joint = "thumb-metacarpal"
	ThumbProximal   Joint = "thumb-phalanx-proximal"
	ThumbDistal     Joint = "thumb-phalanx-distal"
	ThumbTip        Joint = "thumb-tip"

	IndexMetacarpal   Joint = "index-finger-metacarpal"
	IndexProximal     Joint = "index-finger-phalanx-proximal"
	IndexIntermediate Joint = "index-finger-phalanx-intermediate"
	IndexDistal       Joint = "index-finger-phalanx-distal"
	IndexTip          Joint = "index-finger-tip"

	MiddleMetacarpal   Joint = "middle-finger-metacarpal"
	MiddleProximal     Joint = "middle-finger-phalanx-proximal"
	MiddleIntermediate Joint = "middle-finger-phalanx-intermediate"
	MiddleDistal       Joint = "middle-finger-phalanx-distal"
	MiddleTip          Joint = "middle-finger-tip"

	RingMetacarpal   Joint = "ring-finger-metacarpal"
	RingProximal     Joint = "ring-finger-phalanx-proximal"
	RingIntermediate Joint = "ring-finger-phalanx-intermediate"
	RingDistal       Joint = "ring-finger-phalanx-distal"
	RingTip          Joint = "ring-finger-tip"

	PinkyMetacarpal   Joint = "pinky-finger-metacarpal"
	PinkyProximal     Joint = "pinky-finger-phalanx-proximal"
	PinkyIntermediate Joint = "pinky-finger-phalanx-intermediate"
	PinkyDistal       Joint = "pinky-finger-phalanx-distal"
	PinkyTip          Joint = "pinky-finger-tip"

	// NumJoints is the number of joints in a fully tracked hand.
	NumJoints = 25
)

// Side identifies a hand (or the controller held in it).
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// Sample is one frame's measurement of a single joint: its world position
// and the tracker's estimated joint radius in meters.
type Sample struct {
	Position mgl64.Vec3 `json:"position"`
	Radius   float64    `json:"radius"`
}

// Snapshot maps joint names to their current-frame samples. Snapshots are
// produced fresh every frame by the input source; consumers must not retain
// them across frames.
type Snapshot map[Joint]Sample

// Clone returns an independent copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for j, sample := range s {
		out[j] = sample
	}
	return out
}

// Finger identifies one articulated digit.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
)

// CurlFingers lists the four non-thumb fingers in curl evaluation order.
var CurlFingers = [4]Finger{Index, Middle, Ring, Pinky}

var fingerChains = map[Finger][]Joint{
	Thumb:  {ThumbMetacarpal, ThumbProximal, ThumbDistal, ThumbTip},
	Index:  {IndexMetacarpal, IndexProximal, IndexIntermediate, IndexDistal, IndexTip},
	Middle: {MiddleMetacarpal, MiddleProximal, MiddleIntermediate, MiddleDistal, MiddleTip},
	Ring:   {RingMetacarpal, RingProximal, RingIntermediate, RingDistal, RingTip},
	Pinky:  {PinkyMetacarpal, PinkyProximal, PinkyIntermediate, PinkyDistal, PinkyTip},
}

// Chain returns the finger's joint chain ordered from metacarpal to tip.
// The returned slice is shared and must not be modified.
func (f Finger) Chain() []Joint {
	return fingerChains[f]
}

// Tip returns the finger's tip joint.
func (f Finger) Tip() Joint {
	chain := fingerChains[f]
	return chain[len(chain)-1]
}

// Metacarpal returns the finger's metacarpal (base) joint.
func (f Finger) Metacarpal() Joint {
	return fingerChains[f][0]
}

// Joints returns all joint names of a fully tracked hand.
func Joints() []Joint {
	out := make([]Joint, 0, NumJoints)
	out = append(out, Wrist)
	for _, f := range []Finger{Thumb, Index, Middle, Ring, Pinky} {
		out = append(out, fingerChains[f]...)
	}
	return out
}

// Normalized returns the joint positions in canonical order, translated so
// the wrist sits at the origin and scaled so the wrist-to-middle-knuckle
// distance is 1. This removes hand position and size, leaving only pose.
// Returns nil for an incomplete or degenerate snapshot.
func (s Snapshot) Normalized() []mgl64.Vec3 {
	wrist, ok := s[Wrist]
	if !ok {
		return nil
	}
	knuckle, ok := s[MiddleProximal]
	if !ok {
		return nil
	}
	scale := knuckle.Position.Sub(wrist.Position).Len()
	if scale == 0 {
		return nil
	}
	out := make([]mgl64.Vec3, 0, NumJoints)
	for _, j := range Joints() {
		sample, ok := s[j]
		if !ok {
			return nil
		}
		out = append(out, sample.Position.Sub(wrist.Position).Mul(1/scale))
	}
	return out
}
