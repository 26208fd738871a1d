package gesture

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/hand"
)

func newTestRecognizer() *Recognizer {
	return New(DefaultConfig(), zerolog.Nop())
}

func TestRecognizer_UntrackedHand(t *testing.T) {
	r := newTestRecognizer()

	tests := []struct {
		name string
		snap hand.Snapshot
	}{
		{"nil snapshot", nil},
		{"empty snapshot", hand.Snapshot{}},
		{"missing joints", hand.Snapshot{hand.Wrist: {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := r.Update(hand.Left, tt.snap)

			if st.Tracked {
				t.Error("expected hand to be untracked")
			}
			if st.Kind != KindNone {
				t.Errorf("expected kind %q, got %q", KindNone, st.Kind)
			}
			if st.Pinching {
				t.Error("expected no pinch for untracked hand")
			}
			if st.PinchStrength != 0 {
				t.Errorf("expected pinch strength 0, got %f", st.PinchStrength)
			}
			if st.GrabStrength != 0 {
				t.Errorf("expected grab strength 0, got %f", st.GrabStrength)
			}
		})
	}
}

func TestRecognizer_FingerCurls(t *testing.T) {
	open := hand.OpenPalmPose()
	for _, f := range hand.CurlFingers {
		if curl := fingerCurl(open, f); curl > 0.05 {
			t.Errorf("open palm: finger %d curl = %f, expected near 0", f, curl)
		}
	}

	fist := hand.FistPose()
	for _, f := range hand.CurlFingers {
		if curl := fingerCurl(fist, f); curl < 0.8 {
			t.Errorf("fist: finger %d curl = %f, expected > 0.8", f, curl)
		}
	}
}

func TestRecognizer_ClassifyShapes(t *testing.T) {
	tests := []struct {
		name string
		snap hand.Snapshot
		want Kind
	}{
		{"open palm", hand.OpenPalmPose(), KindOpenPalm},
		{"point", hand.PointPose(), KindPoint},
		{"thumbs up", hand.ThumbsUpPose(), KindThumbsUp},
		{"grab", hand.GrabPose(), KindGrab},
		{"relaxed", hand.RelaxedPose(), KindNone},
		{"pinch", hand.PinchPose(0.01), KindPinch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRecognizer()
			st := r.Update(hand.Right, tt.snap)
			if st.Kind != tt.want {
				t.Errorf("expected kind %q, got %q", tt.want, st.Kind)
			}
		})
	}
}

func TestRecognizer_FullFistReadsAsGrab(t *testing.T) {
	// With every finger past the grab threshold the whole-hand grab takes
	// precedence over the fist shape.
	r := newTestRecognizer()
	st := r.Update(hand.Right, hand.FistPose())

	if !st.Grabbing {
		t.Error("expected fist pose to count as grabbing")
	}
	if st.Kind != KindGrab {
		t.Errorf("expected kind %q, got %q", KindGrab, st.Kind)
	}

	var sum float64
	for _, f := range hand.CurlFingers {
		sum += st.Curls[f]
	}
	if want := sum / float64(len(hand.CurlFingers)); st.GrabStrength != want {
		t.Errorf("expected grab strength %f, got %f", want, st.GrabStrength)
	}
}

func TestRecognizer_FistWithHighGrabThreshold(t *testing.T) {
	// Raising the grab threshold above the pose's average curl exposes the
	// fist classification.
	cfg := DefaultConfig()
	cfg.GrabCurl = 0.95
	r := New(cfg, zerolog.Nop())

	st := r.Update(hand.Right, hand.FistPose())

	if st.Grabbing {
		t.Error("expected no grab with raised threshold")
	}
	// The mean curl is still reported even when it misses the threshold.
	if st.GrabStrength < 0.8 {
		t.Errorf("expected grab strength > 0.8, got %f", st.GrabStrength)
	}
	if st.Kind != KindFist {
		t.Errorf("expected kind %q, got %q", KindFist, st.Kind)
	}
}

func TestRecognizer_PinchBeatsGrab(t *testing.T) {
	// A fist with the thumb tip touching the index tip is both pinching
	// and grabbing; pinch wins.
	snap := hand.FistPose()
	indexTip := snap[hand.IndexTip].Position
	snap[hand.ThumbTip] = hand.Sample{
		Position: indexTip.Add(mgl64.Vec3{0, 0.01, 0}),
		Radius:   0.01,
	}

	r := newTestRecognizer()
	st := r.Update(hand.Right, snap)

	if !st.Pinching {
		t.Error("expected pinch")
	}
	if !st.Grabbing {
		t.Error("expected grab")
	}
	if st.Kind != KindPinch {
		t.Errorf("expected kind %q, got %q", KindPinch, st.Kind)
	}
}

func TestRecognizer_PinchHysteresis(t *testing.T) {
	r := newTestRecognizer()

	// 1.5 cm is inside the enter threshold
	st := r.Update(hand.Right, hand.PinchPose(0.015))
	if !st.Pinching {
		t.Fatal("expected pinch to engage at 1.5 cm")
	}

	// 3 cm is outside the enter threshold but inside release: still on
	st = r.Update(hand.Right, hand.PinchPose(0.03))
	if !st.Pinching {
		t.Error("expected pinch to hold at 3 cm while engaged")
	}
	if st.Kind != KindPinch {
		t.Errorf("expected kind %q while held, got %q", KindPinch, st.Kind)
	}

	// 5 cm exceeds release: off
	st = r.Update(hand.Right, hand.PinchPose(0.05))
	if st.Pinching {
		t.Error("expected pinch to release at 5 cm")
	}

	// Back to 3 cm: enter threshold applies again, stays off
	st = r.Update(hand.Right, hand.PinchPose(0.03))
	if st.Pinching {
		t.Error("expected pinch to stay released at 3 cm")
	}
}

func TestRecognizer_UntrackedResetsHysteresis(t *testing.T) {
	r := newTestRecognizer()

	if st := r.Update(hand.Right, hand.PinchPose(0.015)); !st.Pinching {
		t.Fatal("expected pinch to engage")
	}

	// Losing tracking clears the held pinch
	if st := r.Update(hand.Right, nil); st.Pinching {
		t.Fatal("expected no pinch while untracked")
	}

	// 3 cm would have held an engaged pinch, but engagement was lost
	if st := r.Update(hand.Right, hand.PinchPose(0.03)); st.Pinching {
		t.Error("expected pinch to stay off after tracking loss")
	}
}

func TestRecognizer_PinchStrength(t *testing.T) {
	r := newTestRecognizer()

	// At 1 cm: 1 - 0.01/0.04 = 0.75
	st := r.Update(hand.Right, hand.PinchPose(0.01))
	if math.Abs(st.PinchStrength-0.75) > 1e-6 {
		t.Errorf("expected pinch strength 0.75, got %f", st.PinchStrength)
	}

	// Far apart the strength floors at 0
	st = r.Update(hand.Right, hand.PinchPose(0.2))
	if st.PinchStrength != 0 {
		t.Errorf("expected pinch strength 0, got %f", st.PinchStrength)
	}
}

func TestRecognizer_PinchPoint(t *testing.T) {
	r := newTestRecognizer()

	snap := hand.PinchPose(0.01)
	st := r.Update(hand.Right, snap)

	want := snap[hand.ThumbTip].Position.Add(snap[hand.IndexTip].Position).Mul(0.5)
	if st.PinchPoint.Sub(want).Len() > 1e-9 {
		t.Errorf("expected pinch point %v, got %v", want, st.PinchPoint)
	}
}

func TestRecognizer_PointingRay(t *testing.T) {
	r := newTestRecognizer()

	// While pointing the ray runs along the index finger
	snap := hand.PointPose()
	st := r.Update(hand.Right, snap)
	if st.Kind != KindPoint {
		t.Fatalf("expected kind %q, got %q", KindPoint, st.Kind)
	}

	if st.Ray.Origin != snap[hand.IndexProximal].Position {
		t.Errorf("expected ray origin at index knuckle, got %v", st.Ray.Origin)
	}
	wantDir := snap[hand.IndexTip].Position.Sub(snap[hand.IndexProximal].Position).Normalize()
	if st.Ray.Direction.Sub(wantDir).Len() > 1e-9 {
		t.Errorf("expected ray direction %v, got %v", wantDir, st.Ray.Direction)
	}

	// Otherwise it runs from the wrist through the middle knuckle
	snap = hand.OpenPalmPose()
	st = r.Update(hand.Right, snap)

	if st.Ray.Origin != snap[hand.Wrist].Position {
		t.Errorf("expected ray origin at wrist, got %v", st.Ray.Origin)
	}
	wantDir = snap[hand.MiddleProximal].Position.Sub(snap[hand.Wrist].Position).Normalize()
	if st.Ray.Direction.Sub(wantDir).Len() > 1e-9 {
		t.Errorf("expected ray direction %v, got %v", wantDir, st.Ray.Direction)
	}

	if math.Abs(st.Ray.Direction.Len()-1) > 1e-9 {
		t.Errorf("expected unit direction, got length %f", st.Ray.Direction.Len())
	}
}

func TestRecognizer_HandsAreIndependent(t *testing.T) {
	r := newTestRecognizer()

	left := r.Update(hand.Left, hand.PinchPose(0.01))
	right := r.Update(hand.Right, hand.OpenPalmPose())

	if left.Kind != KindPinch {
		t.Errorf("left: expected kind %q, got %q", KindPinch, left.Kind)
	}
	if right.Kind != KindOpenPalm {
		t.Errorf("right: expected kind %q, got %q", KindOpenPalm, right.Kind)
	}

	if got := r.Last(hand.Left); got.Kind != KindPinch {
		t.Errorf("Last(left): expected kind %q, got %q", KindPinch, got.Kind)
	}
	if got := r.Last(hand.Right); got.Kind != KindOpenPalm {
		t.Errorf("Last(right): expected kind %q, got %q", KindOpenPalm, got.Kind)
	}
}

func TestRecognizer_Reset(t *testing.T) {
	r := newTestRecognizer()

	if st := r.Update(hand.Right, hand.PinchPose(0.015)); !st.Pinching {
		t.Fatal("expected pinch to engage")
	}

	r.Reset()

	if got := r.Last(hand.Right); got.Pinching {
		t.Error("expected cleared state after reset")
	}

	// Hysteresis starts from scratch: 3 cm does not engage
	if st := r.Update(hand.Right, hand.PinchPose(0.03)); st.Pinching {
		t.Error("expected pinch to stay off after reset")
	}
}
