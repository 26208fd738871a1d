// Package main implements the media-control plugin for macOS. It drives
// system volume and media playback through AppleScript, so gestures can
// steer whatever is playing alongside the stage.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
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

var handlers = map[string]func() error{
	"volume-up":   func() error { return adjustVolume(+10) },
	"volume-down": func() error { return adjustVolume(-10) },
	"volume-mute": toggleMute,
	"play-pause":  func() error { return pressKey(100) },
	"next-track":  func() error { return pressKey(101) },
	"prev-track":  func() error { return pressKey(98) },
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		fail(fmt.Sprintf("decoding request: %v", err))
		return
	}
	handler, ok := handlers[req.Action]
	if !ok {
		fail(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}
	if err := handler(); err != nil {
		fail(fmt.Sprintf("action %s failed: %v", req.Action, err))
		return
	}
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}

func fail(msg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: msg})
}

func runAppleScript(script string) error {
	out, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, out)
	}
	return nil
}

func adjustVolume(delta int) error {
	script := fmt.Sprintf(
		"set volume output volume ((output volume of (get volume settings)) + %d)", delta)
	return runAppleScript(script)
}

func toggleMute() error {
	return runAppleScript("set volume output muted (not (output muted of (get volume settings)))")
}

// pressKey sends a media key event by key code. 100 is play-pause, 101
// next, 98 previous.
func pressKey(code int) error {
	script := fmt.Sprintf("tell application \"System Events\"\n\tkey code %d\nend tell", code)
	return runAppleScript(script)
}
