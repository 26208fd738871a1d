package stage

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/audio"
	"github.com/ayusman/mudra/internal/scene"
)

func TestPanelPlacement(t *testing.T) {
	e := newTestEngine()
	e.UpdateUserPose(mgl64.Vec3{0, 1.6, 0}, mgl64.Vec3{0, 0, -1})

	placement := e.PanelPlacement()

	// Facing -Z puts the user's left at -X
	want := mgl64.Vec3{-e.cfg.PanelSideOffset, 1.6 + e.cfg.PanelHeightOffset, -e.cfg.PanelDistance}
	if !vecNear(placement.Position, want) {
		t.Errorf("expected panel at %v, got %v", want, placement.Position)
	}

	// Facing straight back at the user means no yaw, just the readability tilt
	wantRot := mgl64.QuatRotate(mgl64.DegToRad(-e.cfg.PanelTilt), mgl64.Vec3{1, 0, 0})
	if !quatNear(placement.Rotation, wantRot) {
		t.Errorf("expected tilt-only rotation, got %v", placement.Rotation)
	}

	if placement.Width != e.cfg.PanelWidth || placement.Height != e.cfg.PanelHeight {
		t.Errorf("expected panel size %fx%f, got %fx%f",
			e.cfg.PanelWidth, e.cfg.PanelHeight, placement.Width, placement.Height)
	}
}

func TestPanelPlacement_RightSideNoTilt(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PanelSide = "right"
	cfg.PanelTilt = 0
	e := New(cfg, audio.NewMockDevice(), zerolog.Nop())
	e.UpdateUserPose(mgl64.Vec3{0, 1.6, 0}, mgl64.Vec3{0, 0, -1})

	placement := e.PanelPlacement()

	want := mgl64.Vec3{cfg.PanelSideOffset, 1.6 + cfg.PanelHeightOffset, -cfg.PanelDistance}
	if !vecNear(placement.Position, want) {
		t.Errorf("expected panel at %v, got %v", want, placement.Position)
	}

	if !quatNear(placement.Rotation, mgl64.QuatIdent()) {
		t.Errorf("expected identity rotation, got %v", placement.Rotation)
	}
}

func TestPanelPlacement_IgnoresGazePitch(t *testing.T) {
	e := newTestEngine()
	head := mgl64.Vec3{1, 1.7, 2}

	e.UpdateUserPose(head, mgl64.Vec3{0, 0, -1})
	level := e.PanelPlacement()

	// Looking down at the floor must not pull the panel down
	e.UpdateUserPose(head, mgl64.Vec3{0, -1, -1}.Normalize())
	tilted := e.PanelPlacement()

	if !vecNear(level.Position, tilted.Position) {
		t.Errorf("pitch changed placement: %v vs %v", level.Position, tilted.Position)
	}
}

func TestPanelPlacement_VerticalGazeFallsBack(t *testing.T) {
	e := newTestEngine()
	e.UpdateUserPose(mgl64.Vec3{0, 1.6, 0}, mgl64.Vec3{0, -1, 0})

	placement := e.PanelPlacement()

	// Straight-down gaze flattens to nothing; the default heading is -Z
	want := mgl64.Vec3{-e.cfg.PanelSideOffset, 1.6 + e.cfg.PanelHeightOffset, -e.cfg.PanelDistance}
	if !vecNear(placement.Position, want) {
		t.Errorf("expected fallback placement %v, got %v", want, placement.Position)
	}
}

func TestPanelPlacement_Pure(t *testing.T) {
	e := newTestEngine()
	e.UpdateUserPose(mgl64.Vec3{0.5, 1.5, 1}, mgl64.Vec3{1, 0, 1}.Normalize())

	models := []*scene.Node{newModel("a", 1), newModel("b", 1)}
	e.LayoutStage(models)
	before := models[0].Position

	first := e.PanelPlacement()
	second := e.PanelPlacement()

	if !vecNear(first.Position, second.Position) || !quatNear(first.Rotation, second.Rotation) {
		t.Error("repeated placement computations disagree")
	}
	if !vecNear(models[0].Position, before) {
		t.Error("placement computation moved a model")
	}
}

func TestLayoutPanel_AppliesPlacement(t *testing.T) {
	e := newTestEngine()
	e.UpdateUserPose(mgl64.Vec3{0, 1.6, 0}, mgl64.Vec3{0, 0, -1})

	panel := scene.NewNode("panel")
	e.LayoutPanel(panel)

	placement := e.PanelPlacement()
	if !vecNear(panel.Position, placement.Position) {
		t.Errorf("expected panel node at %v, got %v", placement.Position, panel.Position)
	}

	// Nil must not panic
	e.LayoutPanel(nil)
}

func TestLayoutStage_SingleModelCentered(t *testing.T) {
	e := newTestEngine()
	e.UpdateUserPose(mgl64.Vec3{0, 1.6, 2}, mgl64.Vec3{0, 0, -1})

	model := newModel("only", 2)
	e.LayoutStage([]*scene.Node{model})

	if !vecNear(model.Position, mgl64.Vec3{0, 0, 0}) {
		t.Errorf("expected model at stage origin, got %v", model.Position)
	}

	// A 2 m model normalizes to the configured size
	wantScale := e.cfg.NormalizedObjectSize / 2
	if math.Abs(model.Scale.X()-wantScale) > epsilon {
		t.Errorf("expected scale %f, got %f", wantScale, model.Scale.X())
	}

	bounds := model.WorldBounds()
	if math.Abs(bounds.MaxDimension()-e.cfg.NormalizedObjectSize) > epsilon {
		t.Errorf("expected normalized size %f, got %f", e.cfg.NormalizedObjectSize, bounds.MaxDimension())
	}
	if math.Abs(bounds.Min.Y()) > epsilon {
		t.Errorf("expected model on the floor, bottom at %f", bounds.Min.Y())
	}
}

func TestLayoutStage_ThreeModelArc(t *testing.T) {
	e := newTestEngine()
	e.UpdateUserPose(mgl64.Vec3{0, 1.6, 2}, mgl64.Vec3{0, 0, -1})

	models := []*scene.Node{newModel("a", 1), newModel("b", 1), newModel("c", 1)}
	e.LayoutStage(models)

	// Every model sits on the arc radius at floor height
	for i, m := range models {
		horiz := mgl64.Vec3{m.Position.X(), 0, m.Position.Z()}
		if math.Abs(horiz.Len()-e.cfg.ArcRadius) > 1e-6 {
			t.Errorf("model %d: expected radius %f, got %f", i, e.cfg.ArcRadius, horiz.Len())
		}
		if math.Abs(m.Position.Y()) > epsilon {
			t.Errorf("model %d: expected floor height, got %f", i, m.Position.Y())
		}
	}

	// Neighbors are 40 degrees apart: the 80 degree fan split once
	if got := horizontalAngle(models[0].Position, models[1].Position); math.Abs(got-40) > 1e-6 {
		t.Errorf("expected 40 degrees between first pair, got %f", got)
	}
	if got := horizontalAngle(models[1].Position, models[2].Position); math.Abs(got-40) > 1e-6 {
		t.Errorf("expected 40 degrees between second pair, got %f", got)
	}

	// The middle model sits straight toward the user
	if !vecNear(models[1].Position, mgl64.Vec3{0, 0, e.cfg.ArcRadius}) {
		t.Errorf("expected middle model toward the user, got %v", models[1].Position)
	}
}

func TestLayoutStage_TwoModelArc(t *testing.T) {
	e := newTestEngine()
	e.UpdateUserPose(mgl64.Vec3{0, 1.6, 2}, mgl64.Vec3{0, 0, -1})

	models := []*scene.Node{newModel("a", 1), newModel("b", 1)}
	e.LayoutStage(models)

	// Two models take the full fan: one at each end
	if got := horizontalAngle(models[0].Position, models[1].Position); math.Abs(got-e.cfg.ArcAngle) > 1e-6 {
		t.Errorf("expected %f degrees apart, got %f", e.cfg.ArcAngle, got)
	}
}

func TestLayoutStage_GridForManyModels(t *testing.T) {
	e := newTestEngine()
	e.UpdateUserPose(mgl64.Vec3{0, 1.6, 3}, mgl64.Vec3{0, 0, -1})

	var models []*scene.Node
	for i := 0; i < 6; i++ {
		models = append(models, newModel("m", 1))
	}
	e.LayoutStage(models)

	spacing := e.cfg.NormalizedObjectSize + e.cfg.ModelSpacing

	var front, back int
	for i, m := range models {
		if math.Abs(math.Abs(m.Position.Z())-spacing/2) > epsilon {
			t.Errorf("model %d: expected row offset %f, got z=%f", i, spacing/2, m.Position.Z())
		}
		if m.Position.Z() > 0 {
			front++
		} else {
			back++
		}
		if math.Abs(m.Position.Y()) > epsilon {
			t.Errorf("model %d: expected floor height, got %f", i, m.Position.Y())
		}
	}
	if front != 3 || back != 3 {
		t.Errorf("expected 3 front and 3 back, got %d and %d", front, back)
	}

	// Columns are spacing apart, centered on the stage
	xs := map[float64]bool{}
	for _, m := range models {
		xs[math.Round(m.Position.X()/epsilon)*epsilon] = true
	}
	if len(xs) != 3 {
		t.Errorf("expected 3 distinct columns, got %d", len(xs))
	}
}

func TestLayoutStage_FiveModelGridRows(t *testing.T) {
	e := newTestEngine()
	e.UpdateUserPose(mgl64.Vec3{0, 1.6, 3}, mgl64.Vec3{0, 0, -1})

	var models []*scene.Node
	for i := 0; i < 5; i++ {
		models = append(models, newModel("m", 1))
	}
	e.LayoutStage(models)

	// Odd counts leave the back row short: three in front, two behind
	var front, back int
	for _, m := range models {
		if m.Position.Z() > 0 {
			front++
		} else {
			back++
		}
	}
	if front != 3 || back != 2 {
		t.Errorf("expected 3 front and 2 back, got %d and %d", front, back)
	}
}

func TestLayoutStage_ModelsFaceUser(t *testing.T) {
	e := newTestEngine()
	e.UpdateUserPose(mgl64.Vec3{0, 1.6, 2}, mgl64.Vec3{0, 0, -1})

	models := []*scene.Node{newModel("a", 1), newModel("b", 1), newModel("c", 1)}
	e.LayoutStage(models)

	head := mgl64.Vec3{0, 1.6, 2}
	for i, m := range models {
		// The model's +Z, rotated into world space, should point at the
		// user horizontally.
		facing := m.Rotation.Rotate(mgl64.Vec3{0, 0, 1})
		toUser := head.Sub(m.Position)
		toUserFlat := mgl64.Vec3{toUser.X(), 0, toUser.Z()}.Normalize()
		if facing.Dot(toUserFlat) < 0.999 {
			t.Errorf("model %d does not face the user: facing %v, want %v", i, facing, toUserFlat)
		}
	}
}

func TestLayoutStage_EmptyListClearsStage(t *testing.T) {
	e := newTestEngine()
	models := []*scene.Node{newModel("a", 1), newModel("b", 1)}
	e.LayoutStage(models)
	meshID := models[0].Children[0].ID

	e.LayoutStage(nil)

	if len(e.Models()) != 0 {
		t.Errorf("expected no models, got %d", len(e.Models()))
	}
	if _, ok := e.Owner(meshID); ok {
		t.Error("expected owner registry to be cleared")
	}
}

func TestLayoutStage_SkipsNilAndDuplicates(t *testing.T) {
	e := newTestEngine()
	m := newModel("a", 1)

	e.LayoutStage([]*scene.Node{m, nil, m})

	if got := len(e.Models()); got != 1 {
		t.Errorf("expected 1 placed model, got %d", got)
	}
}

func TestLayoutStage_GeometryFreeModel(t *testing.T) {
	e := newTestEngine()
	e.UpdateUserPose(mgl64.Vec3{0, 1.6, 2}, mgl64.Vec3{0, 0, -1})

	empty := scene.NewNode("empty-group")
	e.LayoutStage([]*scene.Node{empty})

	// No geometry to measure: placed unscaled at the slot
	if empty.Scale != (mgl64.Vec3{1, 1, 1}) {
		t.Errorf("expected unit scale, got %v", empty.Scale)
	}
	if !vecNear(empty.Position, mgl64.Vec3{0, 0, 0}) {
		t.Errorf("expected model at slot, got %v", empty.Position)
	}
}

func TestLayoutStage_RelayoutRestoresBaseline(t *testing.T) {
	e := newTestEngine()
	e.UpdateUserPose(mgl64.Vec3{0, 1.6, 2}, mgl64.Vec3{0, 0, -1})

	models := []*scene.Node{newModel("a", 1), newModel("b", 1), newModel("c", 1)}
	e.LayoutStage(models)
	first := models[1].Position

	// Drag a model away, then lay the same set out again
	models[1].Position = mgl64.Vec3{9, 9, 9}
	e.LayoutStage(models)

	if !vecNear(models[1].Position, first) {
		t.Errorf("expected re-layout to restore %v, got %v", first, models[1].Position)
	}
}

// horizontalAngle returns the angle in degrees between two positions as
// seen from the stage origin, ignoring height.
func horizontalAngle(a, b mgl64.Vec3) float64 {
	fa := mgl64.Vec3{a.X(), 0, a.Z()}.Normalize()
	fb := mgl64.Vec3{b.X(), 0, b.Z()}.Normalize()
	dot := mgl64.Clamp(fa.Dot(fb), -1, 1)
	return math.Acos(dot) * 180 / math.Pi
}
