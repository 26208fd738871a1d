// Package stage lays out and manipulates a set of exhibit models on a
// fixed stage area: panel and model placement from the user's pose,
// two-handed grab manipulation, snap-back animation, focus dimming and an
// ambient sound channel. The engine is frame driven and keeps no goroutines
// of its own.
package stage

// Config tunes the stage engine. Distances are meters, angles degrees and
// durations seconds.
type Config struct {
	// PanelDistance is how far along the user's flattened forward the
	// control panel sits.
	PanelDistance float64 `json:"panelDistance" mapstructure:"panel_distance"`
	// PanelSide shifts the panel out of the gaze line, "left" or "right".
	PanelSide string `json:"panelSide" mapstructure:"panel_side"`
	// PanelSideOffset is how far the panel shifts toward the configured
	// side.
	PanelSideOffset float64 `json:"panelSideOffset" mapstructure:"panel_side_offset"`
	// PanelHeightOffset shifts the panel vertically relative to the
	// user's head. Negative values place it below eye level.
	PanelHeightOffset float64 `json:"panelHeightOffset" mapstructure:"panel_height_offset"`
	// PanelWidth and PanelHeight are the panel's drawn size, reported
	// with its placement.
	PanelWidth  float64 `json:"panelWidth" mapstructure:"panel_width"`
	PanelHeight float64 `json:"panelHeight" mapstructure:"panel_height"`
	// PanelTilt leans the panel top away from the user. With the panel
	// below eye level the face ends up square to the gaze.
	PanelTilt float64 `json:"panelTilt" mapstructure:"panel_tilt"`

	// StageDistance is how far ahead of the user the stage centers when
	// it is placed.
	StageDistance float64 `json:"stageDistance" mapstructure:"stage_distance"`
	// StageOffset shifts the stage center toward the user's right.
	StageOffset float64 `json:"stageOffset" mapstructure:"stage_offset"`
	// FloorHeight is the world height of the stage floor.
	FloorHeight float64 `json:"floorHeight" mapstructure:"floor_height"`
	// StageWidth and StageDepth bound the area models may occupy.
	StageWidth float64 `json:"stageWidth" mapstructure:"stage_width"`
	StageDepth float64 `json:"stageDepth" mapstructure:"stage_depth"`

	// SpotlightHeight is how far above the stage center the spotlight
	// hangs.
	SpotlightHeight float64 `json:"spotlightHeight" mapstructure:"spotlight_height"`

	// ArcRadius is the distance from the stage origin at which a small
	// model set is fanned toward the user.
	ArcRadius float64 `json:"arcRadius" mapstructure:"arc_radius"`
	// ArcAngle is the total fan angle of the arc layout.
	ArcAngle float64 `json:"arcAngle" mapstructure:"arc_angle"`

	// NormalizedObjectSize is the target largest dimension models are
	// scaled to when placed.
	NormalizedObjectSize float64 `json:"normalizedObjectSize" mapstructure:"normalized_object_size"`
	// ModelSpacing is the gap between neighboring models in the grid
	// layout, on top of the normalized size.
	ModelSpacing float64 `json:"modelSpacing" mapstructure:"model_spacing"`

	// GrabPosLerp and GrabRotSlerp control how quickly a held model eases
	// toward its target pose each frame, 0 to 1.
	GrabPosLerp  float64 `json:"grabPosLerp" mapstructure:"grab_pos_lerp"`
	GrabRotSlerp float64 `json:"grabRotSlerp" mapstructure:"grab_rot_slerp"`

	// SnapMargin keeps snapped models inside the stage edge by this much.
	SnapMargin float64 `json:"snapMargin" mapstructure:"snap_margin"`
	// SnapDuration is the length of the snap-back animation.
	SnapDuration float64 `json:"snapDuration" mapstructure:"snap_duration"`

	// FocusOpacity is the opacity unfocused models fade to.
	FocusOpacity float64 `json:"focusOpacity" mapstructure:"focus_opacity"`

	// DebugLogStride emits per-frame debug logs every Nth frame. Zero
	// disables them.
	DebugLogStride int `json:"debugLogStride" mapstructure:"debug_log_stride"`
}

// DefaultConfig returns the stage settings used by the exhibit setup.
func DefaultConfig() Config {
	return Config{
		PanelDistance:        1.1,
		PanelSide:            "left",
		PanelSideOffset:      0.3,
		PanelHeightOffset:    -0.35,
		PanelWidth:           0.6,
		PanelHeight:          0.4,
		PanelTilt:            15,
		StageDistance:        1.8,
		FloorHeight:          0,
		StageWidth:           3.0,
		StageDepth:           3.0,
		SpotlightHeight:      2.5,
		ArcRadius:            1.6,
		ArcAngle:             80,
		NormalizedObjectSize: 0.8,
		ModelSpacing:         0.25,
		GrabPosLerp:          0.3,
		GrabRotSlerp:         0.25,
		SnapMargin:           0.10,
		SnapDuration:         0.4,
		FocusOpacity:         0.2,
		DebugLogStride:       120,
	}
}

// Radius returns the stage's circular bound, half the larger side.
func (c Config) Radius() float64 {
	if c.StageWidth > c.StageDepth {
		return c.StageWidth / 2
	}
	return c.StageDepth / 2
}
