package plugin

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// These tests run against the plugins shipped in plugins/, which must be
// compiled first (go build -o plugins/<name>/<name> ./plugins/<name>).

func TestPlugin_Notify_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	dir := builtPluginDir(t, "notify")

	mgr := NewManager(filepath.Dir(dir), zerolog.Nop())
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	plug, err := mgr.Get("notify")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}

	// An unknown action exercises the full round trip without popping a
	// notification on the test machine.
	exec := NewExecutor(5*time.Second, zerolog.Nop())
	resp, err := exec.Execute(plug, &Request{Action: "no-such-action", Gesture: "pinch"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if resp.Success {
		t.Error("expected failure for unknown action")
	}
	if resp.Error == "" {
		t.Error("expected error message for unknown action")
	}
}

func TestPlugin_MediaControl_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	if runtime.GOOS != "darwin" {
		t.Skip("media-control plugin only works on macOS")
	}
	dir := builtPluginDir(t, "media-control")

	mgr := NewManager(filepath.Dir(dir), zerolog.Nop())
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	plug, err := mgr.Get("media-control")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}

	exec := NewExecutor(5*time.Second, zerolog.Nop())
	resp, err := exec.Execute(plug, &Request{Action: "no-such-action", Gesture: "fist"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if resp.Success {
		t.Error("expected failure for unknown action")
	}
}

// builtPluginDir locates a plugin directory and skips the test unless its
// binary has been compiled.
func builtPluginDir(t *testing.T, name string) string {
	t.Helper()
	for _, dir := range []string{
		filepath.Join("..", "..", "plugins", name),
		filepath.Join("..", "..", "..", "plugins", name),
	} {
		if _, err := os.Stat(filepath.Join(dir, "plugin.json")); err != nil {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Skipf("%s plugin not built", name)
		}
		return dir
	}
	t.Skipf("%s plugin not found", name)
	return ""
}
