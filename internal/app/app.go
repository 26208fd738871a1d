// Package app wires capture, hand detection, gesture recognition and the
// stage engine together and runs the frame loop that drives them.
package app

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/audio"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/stage"
	"github.com/ayusman/mudra/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate while the scene is static.
	IdleFPS = 5
	// ActiveFPS is the frame rate while motion is being tracked.
	ActiveFPS = 15
	// IdleTimeout is how long after the last motion the pipeline drops
	// back to the idle rate.
	IdleTimeout = 2 * time.Second
	// PathBufferSize caps the pinch-point trail kept per hand for dynamic
	// gesture matching.
	PathBufferSize = 60
	// minPathPoints is the trail length required before dynamic matching
	// is attempted.
	minPathPoints = 10

	pluginTimeout = 5 * time.Second
)

// Settings keys for toggles that survive a restart.
const (
	settingTracking = "tracking.enabled"
	settingSound    = "sound.enabled"
)

// App owns every moving part of the viewer: the camera pipeline, the
// recognizer, the stage engine and the plugin system. Engine and recognizer
// are single threaded; all access goes through the App mutex, with the
// frame loop as the main writer.
type App struct {
	cfg config.Config
	log zerolog.Logger

	store *store.Store

	camera   capture.Camera
	motion   *capture.MotionDetector
	detector detector.Detector

	recognizer     *gesture.Recognizer
	staticMatcher  *gesture.StaticMatcher
	dynamicMatcher *gesture.DynamicMatcher

	engine *stage.Engine

	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor

	// modelIDs maps model names to their root node, for the API surface.
	modelIDs map[string]uuid.UUID

	// hoverSide is the hand whose pointing ray owns the current hover.
	hoverSide string

	// lastKind and lastStatic edge-trigger action dispatch.
	lastKind   map[string]gesture.Kind
	lastStatic map[string]string

	// trails holds the per-hand pinch point history for dynamic matching.
	trails map[string][]gesture.PathPoint

	soundFile *os.File

	mu      sync.RWMutex
	enabled bool
	stopCh  chan struct{}
	done    chan struct{}
}

// New assembles an App from its configuration. The store may be nil, which
// disables persistence, custom gestures and action bindings. The audio
// device may be nil on hosts without audio output.
func New(cfg config.Config, st *store.Store, device audio.Device, log zerolog.Logger) *App {
	log = log.With().Str("component", "app").Logger()

	a := &App{
		cfg:   cfg,
		log:   log,
		store: st,
		camera: capture.NewCamera(capture.Config{
			DeviceID: cfg.Capture.DeviceID,
			Width:    cfg.Capture.Width,
			Height:   cfg.Capture.Height,
			FPS:      IdleFPS,
		}),
		motion:         capture.NewMotionDetector(cfg.Capture.MotionMinArea),
		recognizer:     gesture.New(cfg.Gesture, log),
		staticMatcher:  gesture.NewStaticMatcher(),
		dynamicMatcher: gesture.NewDynamicMatcher(),
		engine:         stage.New(cfg.Stage, device, log),
		pluginMgr:      plugin.NewManager(cfg.Plugins.Dir, log),
		pluginExec:     plugin.NewExecutor(pluginTimeout, log),
		modelIDs:       make(map[string]uuid.UUID),
		lastKind:       make(map[string]gesture.Kind, 2),
		lastStatic:     make(map[string]string, 2),
		trails:         make(map[string][]gesture.PathPoint, 2),
		enabled:        true,
	}

	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Info().Msg("using mediapipe hand detection")
	} else {
		log.Warn().Err(err).Msg("mediapipe not available, using mock detector")
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetEnabled turns gesture tracking on or off. The stage keeps animating
// either way; a disabled app just stops producing new interactions.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()
	a.saveSetting(settingTracking, strconv.FormatBool(enabled))
}

// IsEnabled reports whether gesture tracking is on.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector swaps the hand detector. Mostly for tests and the mock path.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera swaps the frame source. Mostly for tests, which feed recorded
// frames through a mock camera.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Camera returns the current frame source.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Store returns the backing store, which may be nil.
func (a *App) Store() *store.Store {
	return a.store
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// LoadGestures loads custom gesture templates from the store into the
// matchers. Templates that fail to load are skipped with a warning.
func (a *App) LoadGestures() error {
	if a.store == nil {
		return nil
	}

	gestures, err := a.store.Gestures().List()
	if err != nil {
		return fmt.Errorf("list gestures: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	loaded := 0
	for _, g := range gestures {
		template := &gesture.Template{
			ID:        g.ID,
			Name:      g.Name,
			Tolerance: g.Tolerance,
		}

		switch g.Type {
		case store.GestureTypeStatic:
			template.Type = gesture.TypeStatic
			joints, err := a.store.Gestures().Joints(g.ID)
			if err != nil || len(joints) == 0 {
				a.log.Warn().Err(err).Str("gesture", g.Name).Msg("skipping static gesture without joints")
				continue
			}
			template.Joints = joints
			a.staticMatcher.AddTemplate(template)

		case store.GestureTypeDynamic:
			template.Type = gesture.TypeDynamic
			path, err := a.store.Gestures().Path(g.ID)
			if err != nil || len(path) == 0 {
				a.log.Warn().Err(err).Str("gesture", g.Name).Msg("skipping dynamic gesture without path")
				continue
			}
			template.Path = storePathToGesture(path)
			a.dynamicMatcher.AddTemplate(template)

		default:
			continue
		}
		loaded++
	}

	a.log.Info().Int("count", loaded).Msg("loaded custom gestures")
	return nil
}

func storePathToGesture(path []store.PathPoint) []gesture.PathPoint {
	points := make([]gesture.PathPoint, len(path))
	for i, p := range path {
		points[i] = gesture.PathPoint{X: p.X, Y: p.Y, Z: p.Z, Timestamp: p.TimestampMS}
	}
	return points
}

// ReloadGestures drops the current templates and loads them fresh from the
// store, as after a training session.
func (a *App) ReloadGestures() error {
	a.mu.Lock()
	a.staticMatcher = gesture.NewStaticMatcher()
	a.dynamicMatcher = gesture.NewDynamicMatcher()
	a.mu.Unlock()
	return a.LoadGestures()
}

// DiscoverPlugins scans the plugin directory for action plugins.
func (a *App) DiscoverPlugins() error {
	if !a.cfg.Plugins.Enabled {
		return nil
	}
	return a.pluginMgr.Discover()
}

// RestoreSettings puts the tracking and sound toggles back where the user
// left them. Settings that were never saved keep their defaults.
func (a *App) RestoreSettings() {
	if a.store == nil {
		return
	}
	if v, err := a.store.Settings().Get(settingTracking); err == nil {
		a.SetEnabled(v == "true")
	}
	if v, err := a.store.Settings().Get(settingSound); err == nil {
		a.SetSoundEnabled(v == "true")
	}
}

// SetModels replaces the staged models and lays them out around a stage
// centered in front of the user. Model names feed the API surface; when two
// models share a name the first keeps it.
func (a *App) SetModels(models []*scene.Node) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.engine.CenterStage()
	a.engine.LayoutStage(models)

	a.modelIDs = make(map[string]uuid.UUID, len(models))
	for _, m := range a.engine.Models() {
		if _, taken := a.modelIDs[m.Name]; !taken {
			a.modelIDs[m.Name] = m.ID
		}
	}
}

// Relayout recenters the stage on the user's present position and lays the
// current models out again, abandoning any moved poses.
func (a *App) Relayout() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.engine.CenterStage()
	a.engine.LayoutStage(a.engine.Models())
}

// SetUserPose feeds the user's head position and gaze into the stage.
func (a *App) SetUserPose(head, forward mgl64.Vec3) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.engine.UpdateUserPose(head, forward)
}

// FocusModel fades all models except the named one.
func (a *App) FocusModel(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	id, ok := a.modelIDs[name]
	if !ok {
		return fmt.Errorf("model %q not staged", name)
	}
	a.engine.FocusModel(id)
	return nil
}

// ClearFocus restores every model's opacity.
func (a *App) ClearFocus() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.engine.ClearFocus()
}

// ResetModel returns the named model to its layout pose.
func (a *App) ResetModel(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	id, ok := a.modelIDs[name]
	if !ok {
		return fmt.Errorf("model %q not staged", name)
	}
	a.engine.ResetModel(id)
	a.appendEvent("stage", "", "reset:"+name, nil)
	return nil
}

// ResetAllModels returns every model to its layout pose and drops all
// interactions.
func (a *App) ResetAllModels() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.engine.ResetAllModels()
	a.appendEvent("stage", "", "reset-all", nil)
}

// SetSoundEnabled switches the ambient sound channel. Enabling resumes the
// ambient track when one is loaded.
func (a *App) SetSoundEnabled(enabled bool) {
	a.mu.Lock()
	snd := a.engine.Sound()
	snd.SetEnabled(enabled)
	if enabled {
		snd.Play()
	}
	a.mu.Unlock()
	a.saveSetting(settingSound, strconv.FormatBool(enabled))
}

// SetSoundVolume adjusts the ambient volume, clamped to [0, 1].
func (a *App) SetSoundVolume(volume float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.engine.Sound().SetVolume(volume)
}

// Start opens the camera, starts the ambient sound and launches the frame
// loop. Starting an already started app is a no-op.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	a.camera.SetFPS(IdleFPS)

	a.startSound()

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.runPipeline(a.stopCh, a.done)

	a.log.Info().Msg("pipeline started")
	return nil
}

// startSound loads the configured ambient track and starts it looping.
// Called with the mutex held.
func (a *App) startSound() {
	if a.cfg.Sound.File == "" {
		return
	}
	f, err := os.Open(a.cfg.Sound.File)
	if err != nil {
		a.log.Warn().Err(err).Str("file", a.cfg.Sound.File).Msg("ambient sound unavailable")
		return
	}
	a.soundFile = f
	snd := a.engine.Sound()
	snd.SetSource(audio.NewLoop(f))
	snd.SetVolume(a.cfg.Sound.Volume)
	snd.Play()
}

// Stop halts the frame loop and releases the camera, detector and sound
// resources.
func (a *App) Stop() {
	a.mu.Lock()
	stop, done := a.stopCh, a.done
	a.stopCh, a.done = nil, nil
	a.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.camera.Close(); err != nil {
		a.log.Warn().Err(err).Msg("closing camera")
	}
	a.motion.Close()
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			a.log.Warn().Err(err).Msg("closing detector")
		}
	}
	a.engine.Sound().Close()
	if a.soundFile != nil {
		a.soundFile.Close()
		a.soundFile = nil
	}

	a.log.Info().Msg("pipeline stopped")
}

// saveSetting persists one toggle when a store is attached.
func (a *App) saveSetting(key, value string) {
	if a.store == nil {
		return
	}
	if err := a.store.Settings().Set(key, value); err != nil {
		a.log.Warn().Err(err).Str("key", key).Msg("saving setting")
	}
}

// appendEvent records an interaction event when a store is attached.
// Safe to call from any goroutine; the write happens synchronously.
func (a *App) appendEvent(kind, hand, subject string, detail []byte) {
	if a.store == nil {
		return
	}
	ev := &store.Event{Kind: kind, Hand: hand, Subject: subject, Detail: detail}
	if err := a.store.Events().Append(ev); err != nil {
		a.log.Warn().Err(err).Str("kind", kind).Msg("recording event")
	}
}
