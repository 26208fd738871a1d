// Package main implements the notify plugin. It pops a desktop
// notification naming the gesture that fired, so bindings can be checked
// without watching the log.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Request is the executor's stdin payload.
type Request struct {
	Action  string          `json:"action"`
	Gesture string          `json:"gesture"`
	Hand    string          `json:"hand"`
	Config  json.RawMessage `json:"config"`
	Params  json.RawMessage `json:"params"`
}

// Response is written to stdout for the executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// notifyConfig is the binding config: an optional notification title.
type notifyConfig struct {
	Title string `json:"title"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		fail(fmt.Sprintf("decoding request: %v", err))
		return
	}
	if req.Action != "notify" {
		fail(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}

	cfg := notifyConfig{Title: "Mudra"}
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			fail(fmt.Sprintf("parsing config: %v", err))
			return
		}
	}

	body := req.Gesture
	if req.Hand != "" {
		body = fmt.Sprintf("%s (%s hand)", req.Gesture, req.Hand)
	}
	if err := notify(cfg.Title, body); err != nil {
		fail(err.Error())
		return
	}
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}

// notify shows a desktop notification via osascript on macOS and
// notify-send elsewhere.
func notify(title, body string) error {
	var cmd *exec.Cmd
	if runtime.GOOS == "darwin" {
		script := fmt.Sprintf("display notification %q with title %q", body, title)
		cmd = exec.Command("osascript", "-e", script)
	} else {
		cmd = exec.Command("notify-send", title, body)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, out)
	}
	return nil
}

func fail(msg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: msg})
}
