// Package plugin discovers and runs external action plugins. A plugin is a
// directory holding a plugin.json manifest and an executable; the executor
// feeds it one JSON request on stdin and reads one JSON response from
// stdout.
package plugin

import "encoding/json"

// Manifest describes a plugin: its identity, the executable to run and the
// action names it answers to.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Request is what a plugin reads from stdin: the action to perform, the
// gesture and hand that triggered it, the stored binding config and any
// caller-supplied parameters.
type Request struct {
	Action  string          `json:"action"`
	Gesture string          `json:"gesture"`
	Hand    string          `json:"hand,omitempty"`
	Config  json.RawMessage `json:"config,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is what a plugin writes to stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered plugin and where it lives on disk.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
