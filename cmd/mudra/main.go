// Command mudra runs the gesture viewer daemon: camera capture, hand
// tracking, the stage engine and the HTTP control surface, plus a system
// tray menu unless -headless is given.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/audio"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	dataFlag := flag.String("data", "", "data directory (default ~/.mudra)")
	headless := flag.Bool("headless", false, "run without the system tray menu")
	flag.Parse()

	dataDir, err := resolveDataDir(*dataFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mudra: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mudra: load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Plugins.Dir == "" {
		cfg.Plugins.Dir = filepath.Join(dataDir, "plugins")
	}

	log := newLogger(cfg.LogLevel)
	log.Info().Str("dataDir", dataDir).Msg("mudra starting")

	dbPath := cfg.Store.Path
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "mudra.db")
	}
	st, err := store.New(dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", dbPath).Msg("opening store")
	}
	defer st.Close()

	var device audio.Device
	if d, err := audio.NewOtoDevice(cfg.Sound.SampleRate, cfg.Sound.Channels); err == nil {
		device = d
	} else {
		log.Warn().Err(err).Msg("audio device unavailable, ambient sound disabled")
	}

	a := app.New(cfg, st, device, log)
	if err := a.LoadGestures(); err != nil {
		log.Warn().Err(err).Msg("loading custom gestures")
	}
	if err := a.DiscoverPlugins(); err != nil {
		log.Warn().Err(err).Msg("discovering plugins")
	}
	a.RestoreSettings()
	a.SetModels(loadModels(dataDir, log))

	if err := a.Start(); err != nil {
		// No camera is not fatal: the stage keeps animating and the HTTP
		// surface stays up, there is just nothing to track.
		log.Warn().Err(err).Msg("camera unavailable, running without tracking")
		a.SetCamera(capture.NewMockCamera(nil, true))
		if err := a.Start(); err != nil {
			log.Fatal().Err(err).Msg("starting pipeline")
		}
	}
	defer a.Stop()

	srv := server.New(server.Config{
		StaticDir: staticDir(cfg, dataDir),
		Store:     st,
		App:       a,
		Log:       log,
	})
	go func() {
		if err := srv.ListenAndServe(cfg.Server.Addr); err != nil {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	if *headless {
		waitForSignal(log)
		return
	}
	runTray(a, cfg.Server.Addr, log)
}

// runTray wires the tray menu to the app and blocks until quit. Must run on
// the main goroutine.
func runTray(a *app.App, addr string, log zerolog.Logger) {
	t := tray.New()
	st := a.State()
	t.SetEnabled(st.Enabled)
	t.SetSound(st.Sound.Enabled)
	t.OnToggle(a.SetEnabled)
	t.OnSound(a.SetSoundEnabled)
	t.OnReset(a.ResetAllModels)
	t.OnOpen(func() {
		if err := openBrowser(viewerURL(addr)); err != nil {
			log.Warn().Err(err).Msg("opening viewer")
		}
	})
	t.OnQuit(func() {
		log.Info().Msg("quit from tray")
	})

	stop := make(chan struct{})
	go watchGestures(a, t, stop)
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		s := <-ch
		log.Info().Str("signal", s.String()).Msg("shutting down")
		t.Quit()
	}()

	t.Run()
	close(stop)
}

// watchGestures mirrors the most recent recognized gesture into the tray
// menu. Polling once a second is plenty for a status line.
func watchGestures(a *app.App, t *tray.Tray, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	last := ""
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			name := ""
			for _, h := range a.State().Hands {
				if h.Tracked && h.Kind != gesture.KindNone {
					name = string(h.Kind)
				}
			}
			if name != "" && name != last {
				t.SetLastGesture(name)
				last = name
			}
		}
	}
}

// waitForSignal blocks until SIGINT or SIGTERM.
func waitForSignal(log zerolog.Logger) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	s := <-ch
	log.Info().Str("signal", s.String()).Msg("shutting down")
}

// newLogger builds the process logger. Unknown level strings fall back to
// info.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// resolveDataDir returns the data directory, creating it if needed.
func resolveDataDir(override string) (string, error) {
	dir := override
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("home directory: %w", err)
		}
		dir = filepath.Join(home, ".mudra")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dir, nil
}

// staticDir picks the directory for the viewer's static files: the
// configured one when set, otherwise the first web directory found near
// the working directory or under the data directory.
func staticDir(cfg config.Config, dataDir string) string {
	if cfg.Server.StaticDir != "" {
		return cfg.Server.StaticDir
	}

	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	p := filepath.Join(dataDir, "web")
	if info, err := os.Stat(p); err == nil && info.IsDir() {
		return p
	}
	return ""
}

// modelManifest is the optional models.json file in the data directory.
// Each entry becomes one stage model with box bounds; real geometry lives
// in the renderer, the engine only needs names and extents.
type modelManifest struct {
	Models []struct {
		Name string     `json:"name"`
		Min  [3]float64 `json:"min"`
		Max  [3]float64 `json:"max"`
	} `json:"models"`
}

// loadModels reads models.json from the data directory, falling back to a
// small demo set so a fresh install has something on stage.
func loadModels(dataDir string, log zerolog.Logger) []*scene.Node {
	path := filepath.Join(dataDir, "models.json")
	if raw, err := os.ReadFile(path); err == nil {
		var manifest modelManifest
		if err := json.Unmarshal(raw, &manifest); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("malformed models.json, staging demo models")
		} else if len(manifest.Models) > 0 {
			nodes := make([]*scene.Node, 0, len(manifest.Models))
			for _, m := range manifest.Models {
				min := mgl64.Vec3{m.Min[0], m.Min[1], m.Min[2]}
				max := mgl64.Vec3{m.Max[0], m.Max[1], m.Max[2]}
				nodes = append(nodes, boxModel(m.Name, min, max))
			}
			log.Info().Int("count", len(nodes)).Str("path", path).Msg("models loaded")
			return nodes
		}
	}

	return []*scene.Node{
		boxModel("amphora", mgl64.Vec3{-0.3, 0, -0.3}, mgl64.Vec3{0.3, 1.0, 0.3}),
		boxModel("bust", mgl64.Vec3{-0.25, 0, -0.25}, mgl64.Vec3{0.25, 0.6, 0.25}),
		boxModel("tablet", mgl64.Vec3{-0.5, 0, -0.05}, mgl64.Vec3{0.5, 0.7, 0.05}),
	}
}

// boxModel builds a one-mesh model with the given local bounds.
func boxModel(name string, min, max mgl64.Vec3) *scene.Node {
	root := scene.NewNode(name)
	mesh := scene.NewNode(name + "-mesh")
	mesh.Bounds = &scene.AABB{Min: min, Max: max}
	mesh.Surfaces = []*scene.Surface{scene.NewSurface(name + "-material")}
	root.AddChild(mesh)
	return root
}

// viewerURL turns a listen address into a browsable URL.
func viewerURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// openBrowser launches the platform browser on the given URL.
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	return exec.Command(cmd, args...).Start()
}
