package scene

import "github.com/go-gl/mathgl/mgl64"

// Surface is one drawable material slot on a node. The stage engine pokes
// two effects into surfaces, a highlight glow and a focus fade, and each
// effect saves the prior values the first time it is applied so it can be
// undone exactly.
type Surface struct {
	Name string

	Emissive          mgl64.Vec3 // RGB, 0-1 per channel
	EmissiveIntensity float64
	Opacity           float64
	Transparent       bool

	savedGlow *glowState
	savedFade *fadeState
}

type glowState struct {
	emissive  mgl64.Vec3
	intensity float64
}

type fadeState struct {
	opacity     float64
	transparent bool
}

// NewSurface returns an opaque surface with no emissive term.
func NewSurface(name string) *Surface {
	return &Surface{Name: name, Opacity: 1}
}

// SetGlow applies an emissive highlight. The surface's original emissive
// state is saved on the first call and kept through repeated calls, so a
// later ClearGlow returns to the true original.
func (s *Surface) SetGlow(color mgl64.Vec3, intensity float64) {
	if s.savedGlow == nil {
		s.savedGlow = &glowState{emissive: s.Emissive, intensity: s.EmissiveIntensity}
	}
	s.Emissive = color
	s.EmissiveIntensity = intensity
}

// ClearGlow restores the emissive state saved by SetGlow. Without a prior
// SetGlow it does nothing.
func (s *Surface) ClearGlow() {
	if s.savedGlow == nil {
		return
	}
	s.Emissive = s.savedGlow.emissive
	s.EmissiveIntensity = s.savedGlow.intensity
	s.savedGlow = nil
}

// Glowing reports whether a highlight is currently applied.
func (s *Surface) Glowing() bool {
	return s.savedGlow != nil
}

// Fade dims the surface to the given opacity, marking it transparent so a
// renderer blends it. Original values are saved on the first call.
func (s *Surface) Fade(opacity float64) {
	if s.savedFade == nil {
		s.savedFade = &fadeState{opacity: s.Opacity, transparent: s.Transparent}
	}
	s.Opacity = opacity
	s.Transparent = true
}

// Unfade restores the opacity saved by Fade. Without a prior Fade it does
// nothing.
func (s *Surface) Unfade() {
	if s.savedFade == nil {
		return
	}
	s.Opacity = s.savedFade.opacity
	s.Transparent = s.savedFade.transparent
	s.savedFade = nil
}

// Faded reports whether a focus fade is currently applied.
func (s *Surface) Faded() bool {
	return s.savedFade != nil
}
