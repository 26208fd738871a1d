package plugin

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func writeManifest(t *testing.T, root, dir string, m Manifest) string {
	t.Helper()
	pluginDir := filepath.Join(root, dir)
	if err := os.MkdirAll(pluginDir, 0o755); err != nil {
		t.Fatalf("creating plugin dir: %v", err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshaling manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pluginDir, "plugin.json"), data, 0o644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	return pluginDir
}

func TestManager_Discover(t *testing.T) {
	root := t.TempDir()
	pluginDir := writeManifest(t, root, "volume", Manifest{
		Name:        "volume",
		Version:     "1.0.0",
		Description: "system volume control",
		Executable:  "volume.sh",
		Actions:     []string{"up", "down"},
	})

	m := NewManager(root, zerolog.Nop())
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := m.List()
	if len(plugins) != 1 {
		t.Fatalf("expected 1 plugin, got %d", len(plugins))
	}
	p := plugins[0]
	if p.Manifest.Name != "volume" {
		t.Errorf("expected name %q, got %q", "volume", p.Manifest.Name)
	}
	if len(p.Manifest.Actions) != 2 {
		t.Errorf("expected 2 actions, got %d", len(p.Manifest.Actions))
	}
	if p.Path != pluginDir {
		t.Errorf("expected path %q, got %q", pluginDir, p.Path)
	}
	if want := filepath.Join(pluginDir, "volume.sh"); p.Executable != want {
		t.Errorf("expected executable %q, got %q", want, p.Executable)
	}
}

func TestManager_Discover_SkipsBrokenManifests(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "good", Manifest{Name: "good", Executable: "run.sh"})
	writeManifest(t, root, "nameless", Manifest{Executable: "run.sh"})
	writeManifest(t, root, "no-exec", Manifest{Name: "no-exec"})

	badDir := filepath.Join(root, "garbled")
	if err := os.MkdirAll(badDir, 0o755); err != nil {
		t.Fatalf("creating plugin dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(badDir, "plugin.json"), []byte("not json"), 0o644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}

	// A subdirectory without a manifest and a stray file are not plugins.
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0o755); err != nil {
		t.Fatalf("creating dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "README"), []byte("x"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	m := NewManager(root, zerolog.Nop())
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := m.List()
	if len(plugins) != 1 {
		t.Fatalf("expected only the valid plugin, got %d", len(plugins))
	}
	if plugins[0].Manifest.Name != "good" {
		t.Errorf("expected plugin %q, got %q", "good", plugins[0].Manifest.Name)
	}
}

func TestManager_Discover_MissingDir(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "nope"), zerolog.Nop())
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() failed on missing dir: %v", err)
	}
	if got := len(m.List()); got != 0 {
		t.Fatalf("expected 0 plugins, got %d", got)
	}
}

func TestManager_Discover_Rescan(t *testing.T) {
	root := t.TempDir()
	dir := writeManifest(t, root, "ephemeral", Manifest{Name: "ephemeral", Executable: "run.sh"})

	m := NewManager(root, zerolog.Nop())
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if got := len(m.List()); got != 1 {
		t.Fatalf("expected 1 plugin, got %d", got)
	}

	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("removing plugin: %v", err)
	}
	if err := m.Discover(); err != nil {
		t.Fatalf("rescan failed: %v", err)
	}
	if got := len(m.List()); got != 0 {
		t.Fatalf("expected removed plugin gone after rescan, got %d", got)
	}
}

func TestManager_Get(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "mixer", Manifest{Name: "mixer", Version: "2.0.0", Executable: "mixer"})

	m := NewManager(root, zerolog.Nop())
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	p, err := m.Get("mixer")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if p.Manifest.Version != "2.0.0" {
		t.Errorf("expected version %q, got %q", "2.0.0", p.Manifest.Version)
	}

	if _, err := m.Get("absent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestManager_Dir(t *testing.T) {
	m := NewManager("/opt/mudra/plugins", zerolog.Nop())
	if got := m.Dir(); got != "/opt/mudra/plugins" {
		t.Errorf("expected dir %q, got %q", "/opt/mudra/plugins", got)
	}
}
