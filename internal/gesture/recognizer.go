// Package gesture turns per-frame hand joint snapshots into stable gesture
// state: finger curls, pinch with hysteresis, whole-hand grab and a
// prioritized shape classification, plus a pointing ray for targeting.
package gesture

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/hand"
)

// Kind is the classified hand shape for one frame.
type Kind string

const (
	KindNone     Kind = "none"
	KindPinch    Kind = "pinch"
	KindGrab     Kind = "grab"
	KindPoint    Kind = "point"
	KindOpenPalm Kind = "open_palm"
	KindThumbsUp Kind = "thumbs_up"
	KindFist     Kind = "fist"
)

// Classification thresholds. Curl values run 0 (straight) to 1 (folded).
const (
	// curlReach discounts the summed bone lengths when normalizing the
	// tip-to-metacarpal distance, so a straight finger saturates at 0.
	curlReach = 0.95

	curlExtended = 0.3
	curlCurled   = 0.6
	curlFist     = 0.7

	// thumbRaise is how far above the wrist the thumb tip must sit for a
	// thumbs-up, in meters.
	thumbRaise = 0.03
)

// defaultRayDir is used when a ray's joint pair is degenerate.
var defaultRayDir = mgl64.Vec3{0, 0, -1}

// Config tunes the recognizer. Distances are meters, angles degrees.
type Config struct {
	// PinchEnter is the thumb-to-index distance below which a pinch
	// begins when the hand was not already pinching.
	PinchEnter float64 `json:"pinchEnter" mapstructure:"pinch_enter"`
	// PinchRelease is the distance a pinching hand must exceed before the
	// pinch ends. Keeping it above PinchEnter stops flicker at the
	// boundary.
	PinchRelease float64 `json:"pinchRelease" mapstructure:"pinch_release"`
	// GrabCurl is the average four-finger curl above which the hand
	// counts as grabbing.
	GrabCurl float64 `json:"grabCurl" mapstructure:"grab_curl"`
	// PointAngle is the widest angle, between the index direction and the
	// line from wrist to index knuckle, that still reads as pointing.
	PointAngle float64 `json:"pointAngle" mapstructure:"point_angle"`
}

// DefaultConfig returns recognizer settings that work for adult hands at
// typical tracking quality.
func DefaultConfig() Config {
	return Config{
		PinchEnter:   0.02,
		PinchRelease: 0.04,
		GrabCurl:     0.7,
		PointAngle:   30,
	}
}

// Ray is a half-line in world space. Direction is unit length.
type Ray struct {
	Origin    mgl64.Vec3 `json:"origin"`
	Direction mgl64.Vec3 `json:"direction"`
}

// State is the recognizer output for one hand on one frame.
type State struct {
	Side    hand.Side `json:"side"`
	Tracked bool      `json:"tracked"`
	Kind    Kind      `json:"kind"`

	// Curls holds per-finger curl indexed by hand.Finger.
	Curls [5]float64 `json:"curls"`

	Pinching      bool       `json:"pinching"`
	PinchStrength float64    `json:"pinchStrength"`
	PinchPoint    mgl64.Vec3 `json:"pinchPoint"`

	Grabbing bool `json:"grabbing"`
	// GrabStrength is the mean curl of the four non-thumb fingers, whether
	// or not it clears the grab threshold.
	GrabStrength float64 `json:"grabStrength"`

	Ray Ray `json:"ray"`
}

// Recognizer classifies one or both hands frame by frame. It keeps only the
// previous frame's pinch booleans, which drive the enter/release hysteresis.
// Not safe for concurrent use; drive it from the frame loop.
type Recognizer struct {
	cfg  Config
	log  zerolog.Logger
	prev map[hand.Side]State
}

// New returns a Recognizer with the given settings.
func New(cfg Config, log zerolog.Logger) *Recognizer {
	return &Recognizer{
		cfg:  cfg,
		log:  log.With().Str("component", "gesture").Logger(),
		prev: make(map[hand.Side]State, 2),
	}
}

// Update classifies one hand for the current frame and returns its state.
// A nil or incomplete snapshot marks the hand untracked: the returned state
// is all safe defaults and the pinch hysteresis is reset.
func (r *Recognizer) Update(side hand.Side, snap hand.Snapshot) State {
	st := State{Side: side, Kind: KindNone}
	if !complete(snap) {
		r.transition(st)
		r.prev[side] = st
		return st
	}
	st.Tracked = true

	for _, f := range []hand.Finger{hand.Thumb, hand.Index, hand.Middle, hand.Ring, hand.Pinky} {
		st.Curls[f] = fingerCurl(snap, f)
	}

	r.updatePinch(&st, snap)

	var sum float64
	for _, f := range hand.CurlFingers {
		sum += st.Curls[f]
	}
	st.GrabStrength = sum / float64(len(hand.CurlFingers))
	st.Grabbing = st.GrabStrength > r.cfg.GrabCurl

	st.Kind = r.classify(&st, snap)
	st.Ray = r.ray(st.Kind, snap)

	r.transition(st)
	r.prev[side] = st
	return st
}

// Last returns the most recent state for the given hand. The zero State is
// returned before the first Update.
func (r *Recognizer) Last(side hand.Side) State {
	return r.prev[side]
}

// Reset clears all per-hand history, as when a session ends.
func (r *Recognizer) Reset() {
	r.prev = make(map[hand.Side]State, 2)
}

func (r *Recognizer) updatePinch(st *State, snap hand.Snapshot) {
	thumb := snap[hand.ThumbTip].Position
	index := snap[hand.IndexTip].Position
	d := thumb.Sub(index).Len()

	threshold := r.cfg.PinchEnter
	if r.prev[st.Side].Pinching {
		threshold = r.cfg.PinchRelease
	}
	st.Pinching = d < threshold
	st.PinchStrength = 1 - math.Min(d/r.cfg.PinchRelease, 1)
	st.PinchPoint = thumb.Add(index).Mul(0.5)
}

// classify applies the shape tests in priority order. Pinch and grab have
// already been decided; the first matching shape wins.
func (r *Recognizer) classify(st *State, snap hand.Snapshot) Kind {
	switch {
	case st.Pinching:
		return KindPinch
	case st.Grabbing:
		return KindGrab
	case r.isPointing(st, snap):
		return KindPoint
	case st.Curls[hand.Index] < curlExtended &&
		st.Curls[hand.Middle] < curlExtended &&
		st.Curls[hand.Ring] < curlExtended &&
		st.Curls[hand.Pinky] < curlExtended:
		return KindOpenPalm
	case snap[hand.ThumbTip].Position.Y()-snap[hand.Wrist].Position.Y() > thumbRaise &&
		st.Curls[hand.Index] > curlCurled &&
		st.Curls[hand.Middle] > curlCurled:
		return KindThumbsUp
	case st.Curls[hand.Index] > curlFist &&
		st.Curls[hand.Middle] > curlFist &&
		st.Curls[hand.Ring] > curlFist &&
		st.Curls[hand.Pinky] > curlFist:
		return KindFist
	}
	return KindNone
}

func (r *Recognizer) isPointing(st *State, snap hand.Snapshot) bool {
	if st.Curls[hand.Index] >= curlExtended {
		return false
	}
	if st.Curls[hand.Middle] <= curlCurled ||
		st.Curls[hand.Ring] <= curlCurled ||
		st.Curls[hand.Pinky] <= curlCurled {
		return false
	}
	// The extended index must continue the line of the hand rather than
	// stick out sideways.
	knuckle := snap[hand.IndexProximal].Position
	along := knuckle.Sub(snap[hand.Wrist].Position)
	dir := snap[hand.IndexTip].Position.Sub(knuckle)
	if along.Len() == 0 || dir.Len() == 0 {
		return false
	}
	cos := along.Normalize().Dot(dir.Normalize())
	limit := math.Cos(mgl64.DegToRad(r.cfg.PointAngle))
	return cos >= limit
}

// ray derives the pointing ray: along the index finger while pointing or
// pinching, otherwise from the wrist through the base of the middle finger.
func (r *Recognizer) ray(kind Kind, snap hand.Snapshot) Ray {
	var origin, toward mgl64.Vec3
	if kind == KindPoint || kind == KindPinch {
		origin = snap[hand.IndexProximal].Position
		toward = snap[hand.IndexTip].Position
	} else {
		origin = snap[hand.Wrist].Position
		toward = snap[hand.MiddleProximal].Position
	}
	dir := toward.Sub(origin)
	if dir.Len() == 0 {
		return Ray{Origin: origin, Direction: defaultRayDir}
	}
	return Ray{Origin: origin, Direction: dir.Normalize()}
}

// transition logs shape changes; steady states stay quiet.
func (r *Recognizer) transition(st State) {
	if prev := r.prev[st.Side]; prev.Kind == st.Kind {
		return
	}
	r.log.Debug().
		Str("side", string(st.Side)).
		Str("kind", string(st.Kind)).
		Float64("pinchStrength", st.PinchStrength).
		Msg("gesture changed")
}

// fingerCurl measures how folded a finger is: the straight-line distance
// from tip to metacarpal shrinks relative to the summed bone lengths as the
// finger folds. Result is clamped to [0, 1].
func fingerCurl(snap hand.Snapshot, f hand.Finger) float64 {
	chain := f.Chain()
	var bones float64
	for i := 1; i < len(chain); i++ {
		bones += snap[chain[i]].Position.Sub(snap[chain[i-1]].Position).Len()
	}
	if bones == 0 {
		return 0
	}
	reach := snap[chain[len(chain)-1]].Position.Sub(snap[chain[0]].Position).Len()
	return mgl64.Clamp(1-reach/(bones*curlReach), 0, 1)
}

// complete reports whether the snapshot carries every tracked joint.
func complete(snap hand.Snapshot) bool {
	if len(snap) < hand.NumJoints {
		return false
	}
	for _, j := range hand.Joints() {
		if _, ok := snap[j]; !ok {
			return false
		}
	}
	return true
}
