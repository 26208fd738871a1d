package gesture

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ayusman/mudra/internal/hand"
)

func TestStaticMatcher_Match(t *testing.T) {
	matcher := NewStaticMatcher()

	// Template trained from a normalized thumbs-up pose
	template := &Template{
		ID:        "thumbs-up",
		Name:      "Thumbs Up",
		Type:      TypeStatic,
		Joints:    hand.ThumbsUpPose().Normalized(),
		Tolerance: 0.5,
	}
	matcher.AddTemplate(template)

	// Match against a thumbs-up input
	matches := matcher.Match(hand.ThumbsUpPose())

	if len(matches) == 0 {
		t.Fatal("expected at least one match for thumbs up input")
	}

	if matches[0].Template.ID != "thumbs-up" {
		t.Errorf("expected match for 'thumbs-up' template, got %q", matches[0].Template.ID)
	}

	// The score should be high (close to 1.0) for an identical pose
	if matches[0].Score < 0.9 {
		t.Errorf("expected high score (>0.9) for matching pose, got %f", matches[0].Score)
	}

	if matches[0].Distance > 0.1 {
		t.Errorf("expected low distance (<0.1) for matching pose, got %f", matches[0].Distance)
	}
}

func TestStaticMatcher_NoMatch(t *testing.T) {
	matcher := NewStaticMatcher()

	template := &Template{
		ID:        "thumbs-up",
		Name:      "Thumbs Up",
		Type:      TypeStatic,
		Joints:    hand.ThumbsUpPose().Normalized(),
		Tolerance: 0.3,
	}
	matcher.AddTemplate(template)

	// An open palm is far from a thumbs-up in the normalized cloud
	matches := matcher.Match(hand.OpenPalmPose())

	if len(matches) > 0 {
		for _, match := range matches {
			if match.Score > 0.5 {
				t.Errorf("expected low score (<0.5) for non-matching pose, got %f", match.Score)
			}
		}
	}
}

func TestStaticMatcher_AddRemoveTemplate(t *testing.T) {
	matcher := NewStaticMatcher()

	template1 := &Template{
		ID:        "template-1",
		Name:      "Template 1",
		Type:      TypeStatic,
		Joints:    make([]mgl64.Vec3, hand.NumJoints),
		Tolerance: 0.5,
	}
	template2 := &Template{
		ID:        "template-2",
		Name:      "Template 2",
		Type:      TypeStatic,
		Joints:    make([]mgl64.Vec3, hand.NumJoints),
		Tolerance: 0.5,
	}

	matcher.AddTemplate(template1)
	matcher.AddTemplate(template2)

	if len(matcher.templates) != 2 {
		t.Errorf("expected 2 templates, got %d", len(matcher.templates))
	}

	matcher.RemoveTemplate("template-1")

	if len(matcher.templates) != 1 {
		t.Errorf("expected 1 template after removal, got %d", len(matcher.templates))
	}

	if matcher.templates[0].ID != "template-2" {
		t.Errorf("expected remaining template to be 'template-2', got %q", matcher.templates[0].ID)
	}

	// Removing a non-existent template should not panic
	matcher.RemoveTemplate("non-existent")
	if len(matcher.templates) != 1 {
		t.Errorf("expected 1 template after removing non-existent, got %d", len(matcher.templates))
	}
}

func TestStaticMatcher_MultipleMatches(t *testing.T) {
	matcher := NewStaticMatcher()

	cloud := hand.ThumbsUpPose().Normalized()

	template1 := &Template{
		ID:        "thumbs-up-1",
		Name:      "Thumbs Up Variant 1",
		Type:      TypeStatic,
		Joints:    cloud,
		Tolerance: 0.5,
	}
	template2 := &Template{
		ID:        "thumbs-up-2",
		Name:      "Thumbs Up Variant 2",
		Type:      TypeStatic,
		Joints:    cloud,
		Tolerance: 0.8,
	}

	matcher.AddTemplate(template1)
	matcher.AddTemplate(template2)

	matches := matcher.Match(hand.ThumbsUpPose())

	if len(matches) < 2 {
		t.Errorf("expected at least 2 matches, got %d", len(matches))
	}

	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Error("matches should be sorted by score descending")
		}
	}
}

func TestStaticMatcher_UntrackedInput(t *testing.T) {
	matcher := NewStaticMatcher()

	template := &Template{
		ID:        "test",
		Name:      "Test",
		Type:      TypeStatic,
		Joints:    make([]mgl64.Vec3, hand.NumJoints),
		Tolerance: 0.5,
	}
	matcher.AddTemplate(template)

	// A nil snapshot has no joints to normalize
	matches := matcher.Match(nil)
	if len(matches) != 0 {
		t.Errorf("expected 0 matches for nil input, got %d", len(matches))
	}

	// Missing joints likewise
	matches = matcher.Match(hand.Snapshot{hand.Wrist: {}})
	if len(matches) != 0 {
		t.Errorf("expected 0 matches for incomplete input, got %d", len(matches))
	}
}

func TestCloudDistance(t *testing.T) {
	a := []mgl64.Vec3{
		{0, 0, 0},
		{1, 1, 1},
	}
	b := []mgl64.Vec3{
		{0, 0, 0},
		{1, 1, 1},
	}

	if dist := cloudDistance(a, b); dist != 0 {
		t.Errorf("expected distance 0 for identical clouds, got %f", dist)
	}

	c := []mgl64.Vec3{
		{0, 0, 0},
		{1, 0, 0},
	}
	d := []mgl64.Vec3{
		{0, 0, 0},
		{2, 0, 0},
	}

	if dist := cloudDistance(c, d); dist != 1.0 {
		t.Errorf("expected distance 1.0, got %f", dist)
	}

	if dist := cloudDistance(nil, nil); dist != 0 {
		t.Errorf("expected distance 0 for empty clouds, got %f", dist)
	}
}
