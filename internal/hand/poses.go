package hand

import "github.com/go-gl/mathgl/mgl64"

// Synthetic poses for recognizer development and tests. Joint positions are
// in meters with the wrist at the origin, fingers along +Y and the palm
// facing -Z. The geometry is idealized, not anatomical: each pose pins the
// tip-to-metacarpal distances that drive curl into an unambiguous range.

var fingerBaseX = map[Finger]float64{
	Index:  0.02,
	Middle: 0.00,
	Ring:   -0.02,
	Pinky:  -0.04,
}

// Segment lengths metacarpal->proximal->intermediate->distal->tip.
var fingerSegments = [4]float64{0.08, 0.045, 0.03, 0.025}

const (
	jointRadius = 0.01
	wristRadius = 0.02
)

// straightFinger lays the chain along +Y from the metacarpal base.
func straightFinger(s Snapshot, f Finger, baseY float64) {
	base := mgl64.Vec3{fingerBaseX[f], baseY, 0}
	placeChain(s, f.Chain(), base, []mgl64.Vec3{
		{0, 1, 0}, {0, 1, 0}, {0, 1, 0}, {0, 1, 0},
	})
}

// foldedFinger doubles the phalanges back down toward the metacarpal,
// yielding a curl around 0.88.
func foldedFinger(s Snapshot, f Finger, baseY float64) {
	base := mgl64.Vec3{fingerBaseX[f], baseY, 0}
	placeChain(s, f.Chain(), base, []mgl64.Vec3{
		{0, 1, 0}, {0, -1, 0}, {0, -1, 0}, {0, -1, 0},
	})
}

// bentFinger folds the phalanges forward at a right angle, yielding a curl
// around 0.25.
func bentFinger(s Snapshot, f Finger, baseY float64) {
	base := mgl64.Vec3{fingerBaseX[f], baseY, 0}
	placeChain(s, f.Chain(), base, []mgl64.Vec3{
		{0, 1, 0}, {0, 0, -1}, {0, 0, -1}, {0, 0, -1},
	})
}

// halfFinger folds the phalanges diagonally down-forward, yielding a curl
// around 0.58.
func halfFinger(s Snapshot, f Finger, baseY float64) {
	diag := mgl64.Vec3{0, -1, -1}.Normalize()
	base := mgl64.Vec3{fingerBaseX[f], baseY, 0}
	placeChain(s, f.Chain(), base, []mgl64.Vec3{
		{0, 1, 0}, diag, diag, diag,
	})
}

func placeChain(s Snapshot, chain []Joint, base mgl64.Vec3, dirs []mgl64.Vec3) {
	pos := base
	s[chain[0]] = Sample{Position: pos, Radius: jointRadius}
	for i := 1; i < len(chain); i++ {
		pos = pos.Add(dirs[i-1].Mul(fingerSegments[i-1]))
		s[chain[i]] = Sample{Position: pos, Radius: jointRadius}
	}
}

func placeThumb(s Snapshot, meta, prox, distal, tip mgl64.Vec3) {
	s[ThumbMetacarpal] = Sample{Position: meta, Radius: jointRadius}
	s[ThumbProximal] = Sample{Position: prox, Radius: jointRadius}
	s[ThumbDistal] = Sample{Position: distal, Radius: jointRadius}
	s[ThumbTip] = Sample{Position: tip, Radius: jointRadius}
}

func newPose() Snapshot {
	s := make(Snapshot, NumJoints)
	s[Wrist] = Sample{Radius: wristRadius}
	return s
}

// OpenPalmPose returns a synthetic snapshot resembling a flat open hand:
// all fingers extended, thumb abducted away from the index finger.
func OpenPalmPose() Snapshot {
	s := newPose()
	for _, f := range CurlFingers {
		straightFinger(s, f, 0.02)
	}
	placeThumb(s,
		mgl64.Vec3{0.03, 0.02, 0},
		mgl64.Vec3{0.06, 0.04, 0},
		mgl64.Vec3{0.09, 0.05, 0},
		mgl64.Vec3{0.11, 0.05, 0},
	)
	return s
}

// FistPose returns a snapshot with all four fingers fully curled and the
// thumb folded across the palm.
func FistPose() Snapshot {
	s := newPose()
	for _, f := range CurlFingers {
		foldedFinger(s, f, 0.02)
	}
	placeThumb(s,
		mgl64.Vec3{0.03, 0.02, 0},
		mgl64.Vec3{0.02, 0.04, -0.02},
		mgl64.Vec3{0.00, 0.04, -0.03},
		mgl64.Vec3{-0.02, 0.03, -0.03},
	)
	return s
}

// GrabPose returns a snapshot with index and middle fully curled and ring
// and pinky half curled. The average curl clears the whole-hand grab
// threshold without every finger reading as a fist.
func GrabPose() Snapshot {
	s := newPose()
	foldedFinger(s, Index, 0.02)
	foldedFinger(s, Middle, 0.02)
	halfFinger(s, Ring, 0.02)
	halfFinger(s, Pinky, 0.02)
	placeThumb(s,
		mgl64.Vec3{0.03, 0.02, 0},
		mgl64.Vec3{0.02, 0.04, -0.02},
		mgl64.Vec3{0.00, 0.04, -0.03},
		mgl64.Vec3{-0.02, 0.03, -0.03},
	)
	return s
}

// PinchPose returns a snapshot with the thumb tip placed the given distance
// below an extended index tip. The remaining fingers are relaxed.
func PinchPose(separation float64) Snapshot {
	s := newPose()
	straightFinger(s, Index, 0.02)
	for _, f := range [3]Finger{Middle, Ring, Pinky} {
		bentFinger(s, f, 0.02)
	}
	indexTip := s[IndexTip].Position
	tip := indexTip.Sub(mgl64.Vec3{0, separation, 0})
	placeThumb(s,
		mgl64.Vec3{0.03, 0.02, 0},
		mgl64.Vec3{0.035, 0.08, 0},
		mgl64.Vec3{0.03, 0.14, 0},
		tip,
	)
	return s
}

// PointPose returns a snapshot with the index finger extended, the other
// fingers fully curled and the thumb tucked clear of the index tip.
func PointPose() Snapshot {
	s := newPose()
	straightFinger(s, Index, 0.02)
	for _, f := range [3]Finger{Middle, Ring, Pinky} {
		foldedFinger(s, f, 0.02)
	}
	placeThumb(s,
		mgl64.Vec3{0.03, 0.02, 0},
		mgl64.Vec3{0.02, 0.04, -0.02},
		mgl64.Vec3{0.01, 0.04, -0.03},
		mgl64.Vec3{0.00, 0.03, -0.03},
	)
	return s
}

// ThumbsUpPose returns a snapshot with the thumb pointing well above the
// wrist, index and middle fingers curled past the recognizer's threshold
// and ring and pinky only partially bent so the pose does not read as a
// whole-hand grab.
func ThumbsUpPose() Snapshot {
	s := newPose()
	foldedFinger(s, Index, 0.02)
	foldedFinger(s, Middle, 0.02)
	bentFinger(s, Ring, 0.02)
	bentFinger(s, Pinky, 0.02)
	placeThumb(s,
		mgl64.Vec3{0.03, 0.02, 0},
		mgl64.Vec3{0.03, 0.06, 0},
		mgl64.Vec3{0.03, 0.10, 0},
		mgl64.Vec3{0.03, 0.13, 0},
	)
	return s
}

// RelaxedPose returns a snapshot matching none of the recognized shapes:
// mixed curls, thumb resting to the side.
func RelaxedPose() Snapshot {
	s := newPose()
	bentFinger(s, Index, 0.02)
	foldedFinger(s, Middle, 0.02)
	straightFinger(s, Ring, 0.02)
	straightFinger(s, Pinky, 0.02)
	placeThumb(s,
		mgl64.Vec3{0.03, 0.02, 0},
		mgl64.Vec3{0.06, 0.04, 0},
		mgl64.Vec3{0.09, 0.05, 0},
		mgl64.Vec3{0.11, 0.05, 0},
	)
	return s
}
