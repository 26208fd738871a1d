// Package server provides the HTTP surface of the viewer: the REST API for
// gestures, actions and presets, the live state feed, and the static UI.
package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// Config holds the server configuration. Store and App are optional;
// routes that need a missing component are simply not registered.
type Config struct {
	StaticDir string
	Store     *store.Store
	App       *app.App
	Log       zerolog.Logger
}

// Server is the HTTP server for the viewer.
type Server struct {
	config Config
	log    zerolog.Logger
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		log:    config.Log.With().Str("component", "server").Logger(),
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		gestureHandler := api.NewGestureHandler(s.config.Store)
		samplesHandler := api.NewSamplesHandler(s.config.Store)

		var reload func() error
		if s.config.App != nil {
			reload = s.config.App.ReloadGestures
		}
		templateHandler := api.NewTemplateHandler(s.config.Store, reload)
		trainHandler := api.NewTrainHandler(s.config.Store, reload)

		// One wrapper routes between the gesture, samples, template and
		// train handlers, which share the /api/gestures prefix.
		gestureRouter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case strings.HasSuffix(r.URL.Path, "/samples"):
				samplesHandler.ServeHTTP(w, r)
			case strings.HasSuffix(r.URL.Path, "/template"):
				templateHandler.ServeHTTP(w, r)
			case strings.HasSuffix(r.URL.Path, "/train"):
				trainHandler.ServeHTTP(w, r)
			default:
				gestureHandler.ServeHTTP(w, r)
			}
		})

		s.mux.Handle("/api/gestures", gestureRouter)
		s.mux.Handle("/api/gestures/", gestureRouter)

		actionHandler := api.NewActionHandler(s.config.Store)
		s.mux.Handle("/api/actions", actionHandler)
		s.mux.Handle("/api/actions/", actionHandler)

		s.mux.HandleFunc("/api/events", s.handleEvents)
	}

	if s.config.App != nil {
		s.mux.HandleFunc("/api/state", s.handleState)
		s.mux.HandleFunc("/api/tracking", s.handleTracking)

		s.mux.HandleFunc("/api/stage/focus", s.handleStageFocus)
		s.mux.HandleFunc("/api/stage/reset", s.handleStageReset)
		s.mux.HandleFunc("/api/stage/layout", s.handleStageLayout)
		s.mux.HandleFunc("/api/stage/sound", s.handleStageSound)

		s.mux.HandleFunc("/api/plugins", s.handlePlugins)
		s.mux.HandleFunc("/api/plugins/", s.handlePluginItem)

		s.mux.Handle("/api/stream", NewStreamHandler(s.config.App))
		s.mux.Handle("/api/ws", NewStateSocket(s.config.App, s.log))
	}

	if s.config.App != nil && s.config.Store != nil {
		s.mux.HandleFunc("/api/presets", s.handlePresets)
		s.mux.HandleFunc("/api/presets/", s.handlePresetItem)
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": uptime.String(),
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Info().Str("addr", addr).Msg("http server listening")
	return http.ListenAndServe(addr, s)
}
