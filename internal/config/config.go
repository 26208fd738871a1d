// Package config loads the application settings from an optional JSON
// file, layered over built-in defaults.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/stage"
)

// FileName is the config file looked up in the config directory.
const FileName = "mudra.cfg.json"

// Config is the full application configuration.
type Config struct {
	// LogLevel is one of trace, debug, info, warn or error.
	LogLevel string `json:"logLevel" mapstructure:"log_level"`

	Server  Server         `json:"server" mapstructure:"server"`
	Capture Capture        `json:"capture" mapstructure:"capture"`
	Gesture gesture.Config `json:"gesture" mapstructure:"gesture"`
	Stage   stage.Config   `json:"stage" mapstructure:"stage"`
	Sound   Sound          `json:"sound" mapstructure:"sound"`
	Store   Store          `json:"store" mapstructure:"store"`
	Plugins Plugins        `json:"plugins" mapstructure:"plugins"`
}

// Server holds the HTTP and WebSocket listener settings.
type Server struct {
	Addr      string `json:"addr" mapstructure:"addr"`
	StaticDir string `json:"staticDir" mapstructure:"static_dir"`
}

// Capture holds the camera settings.
type Capture struct {
	DeviceID int `json:"deviceId" mapstructure:"device_id"`
	Width    int `json:"width" mapstructure:"width"`
	Height   int `json:"height" mapstructure:"height"`
	// MotionMinArea is the minimum changed-pixel area that counts as
	// motion, used to skip detection on still frames.
	MotionMinArea int `json:"motionMinArea" mapstructure:"motion_min_area"`
}

// Sound holds the ambient audio output settings.
type Sound struct {
	SampleRate int     `json:"sampleRate" mapstructure:"sample_rate"`
	Channels   int     `json:"channels" mapstructure:"channels"`
	File       string  `json:"file" mapstructure:"file"`
	Volume     float64 `json:"volume" mapstructure:"volume"`
}

// Store holds persistence settings. An empty path falls back to the
// application data directory.
type Store struct {
	Path string `json:"path" mapstructure:"path"`
}

// Plugins holds the action plugin settings.
type Plugins struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Dir     string `json:"dir" mapstructure:"dir"`
}

// Default returns the configuration used when no file overrides anything.
func Default() Config {
	return Config{
		LogLevel: "info",
		Server: Server{
			Addr: ":8080",
		},
		Capture: Capture{
			DeviceID:      0,
			Width:         640,
			Height:        480,
			MotionMinArea: 3000,
		},
		Gesture: gesture.DefaultConfig(),
		Stage:   stage.DefaultConfig(),
		Sound: Sound{
			SampleRate: 44100,
			Channels:   2,
			Volume:     1,
		},
		Plugins: Plugins{
			Enabled: true,
		},
	}
}

// Load reads mudra.cfg.json from the given directory and returns the
// merged configuration. A missing file is not an error: the defaults
// apply. A file that exists but cannot be parsed is.
func Load(configDir string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(FileName)
	v.SetConfigType("json")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := Default()

	v.SetDefault("log_level", def.LogLevel)

	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("server.static_dir", def.Server.StaticDir)

	v.SetDefault("capture.device_id", def.Capture.DeviceID)
	v.SetDefault("capture.width", def.Capture.Width)
	v.SetDefault("capture.height", def.Capture.Height)
	v.SetDefault("capture.motion_min_area", def.Capture.MotionMinArea)

	v.SetDefault("gesture.pinch_enter", def.Gesture.PinchEnter)
	v.SetDefault("gesture.pinch_release", def.Gesture.PinchRelease)
	v.SetDefault("gesture.grab_curl", def.Gesture.GrabCurl)
	v.SetDefault("gesture.point_angle", def.Gesture.PointAngle)

	v.SetDefault("stage.panel_distance", def.Stage.PanelDistance)
	v.SetDefault("stage.panel_height_offset", def.Stage.PanelHeightOffset)
	v.SetDefault("stage.panel_side", def.Stage.PanelSide)
	v.SetDefault("stage.panel_side_offset", def.Stage.PanelSideOffset)
	v.SetDefault("stage.panel_width", def.Stage.PanelWidth)
	v.SetDefault("stage.panel_height", def.Stage.PanelHeight)
	v.SetDefault("stage.panel_tilt", def.Stage.PanelTilt)
	v.SetDefault("stage.stage_distance", def.Stage.StageDistance)
	v.SetDefault("stage.stage_offset", def.Stage.StageOffset)
	v.SetDefault("stage.stage_width", def.Stage.StageWidth)
	v.SetDefault("stage.stage_depth", def.Stage.StageDepth)
	v.SetDefault("stage.floor_height", def.Stage.FloorHeight)
	v.SetDefault("stage.spotlight_height", def.Stage.SpotlightHeight)
	v.SetDefault("stage.arc_radius", def.Stage.ArcRadius)
	v.SetDefault("stage.arc_angle", def.Stage.ArcAngle)
	v.SetDefault("stage.normalized_object_size", def.Stage.NormalizedObjectSize)
	v.SetDefault("stage.model_spacing", def.Stage.ModelSpacing)
	v.SetDefault("stage.grab_pos_lerp", def.Stage.GrabPosLerp)
	v.SetDefault("stage.grab_rot_slerp", def.Stage.GrabRotSlerp)
	v.SetDefault("stage.snap_margin", def.Stage.SnapMargin)
	v.SetDefault("stage.snap_duration", def.Stage.SnapDuration)
	v.SetDefault("stage.focus_opacity", def.Stage.FocusOpacity)
	v.SetDefault("stage.debug_log_stride", def.Stage.DebugLogStride)

	v.SetDefault("sound.sample_rate", def.Sound.SampleRate)
	v.SetDefault("sound.channels", def.Sound.Channels)
	v.SetDefault("sound.file", def.Sound.File)
	v.SetDefault("sound.volume", def.Sound.Volume)

	v.SetDefault("store.path", def.Store.Path)

	v.SetDefault("plugins.enabled", def.Plugins.Enabled)
	v.SetDefault("plugins.dir", def.Plugins.Dir)
}
