package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/ayusman/mudra/internal/plugin"
)

type pluginResponse struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// handlePlugins handles GET /api/plugins and lists the installed plugins.
func (s *Server) handlePlugins(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	plugins := s.config.App.PluginManager().List()
	sort.Slice(plugins, func(i, j int) bool {
		return plugins[i].Manifest.Name < plugins[j].Manifest.Name
	})

	response := struct {
		Plugins []pluginResponse `json:"plugins"`
	}{Plugins: make([]pluginResponse, 0, len(plugins))}
	for _, p := range plugins {
		response.Plugins = append(response.Plugins, pluginResponse{
			Name:         p.Manifest.Name,
			Version:      p.Manifest.Version,
			Description:  p.Manifest.Description,
			Actions:      p.Manifest.Actions,
			ConfigSchema: p.Manifest.ConfigSchema,
		})
	}

	writeJSON(w, http.StatusOK, response)
}

// handlePluginItem handles POST /api/plugins/{name}/execute, running one
// plugin action on demand with caller supplied parameters. The plugin's
// own response is returned whether it succeeded or not.
func (s *Server) handlePluginItem(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/plugins/")
	name, sub, _ := strings.Cut(path, "/")

	if name == "" || sub != "execute" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Action string          `json:"action"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Action == "" {
		writeError(w, http.StatusBadRequest, "action is required")
		return
	}

	resp, err := s.config.App.RunPluginAction(name, req.Action, req.Params)
	if err != nil {
		if errors.Is(err, plugin.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Plugin not found")
			return
		}
		s.log.Warn().Err(err).Str("plugin", name).Str("action", req.Action).Msg("plugin execution failed")
		writeError(w, http.StatusBadGateway, "Plugin execution failed")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
