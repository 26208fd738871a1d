package plugin

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned when a requested plugin is not installed.
var ErrNotFound = errors.New("plugin not found")

// Manager discovers plugins under a directory and hands them out by name.
type Manager struct {
	dir     string
	log     zerolog.Logger
	mu      sync.RWMutex
	plugins map[string]*Plugin
}

// NewManager returns a Manager rooted at dir. Nothing is loaded until
// Discover runs.
func NewManager(dir string, log zerolog.Logger) *Manager {
	return &Manager{
		dir:     dir,
		log:     log.With().Str("component", "plugin").Logger(),
		plugins: make(map[string]*Plugin),
	}
}

// Discover rescans the plugin directory. Every subdirectory carrying a
// plugin.json manifest becomes a plugin; unreadable or malformed manifests
// are skipped with a warning. A missing directory is empty, not an error.
func (m *Manager) Discover() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.plugins = make(map[string]*Plugin)

	info, err := os.Stat(m.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(m.dir, entry.Name())

		data, err := os.ReadFile(filepath.Join(dir, "plugin.json"))
		if err != nil {
			if !os.IsNotExist(err) {
				m.log.Warn().Err(err).Str("dir", dir).Msg("unreadable plugin manifest")
			}
			continue
		}

		var manifest Manifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			m.log.Warn().Err(err).Str("dir", dir).Msg("malformed plugin manifest")
			continue
		}
		if manifest.Name == "" || manifest.Executable == "" {
			m.log.Warn().Str("dir", dir).Msg("plugin manifest missing name or executable")
			continue
		}

		m.plugins[manifest.Name] = &Plugin{
			Manifest:   manifest,
			Path:       dir,
			Executable: filepath.Join(dir, manifest.Executable),
		}
		m.log.Debug().
			Str("plugin", manifest.Name).
			Str("version", manifest.Version).
			Msg("plugin discovered")
	}
	return nil
}

// Get returns the named plugin or ErrNotFound.
func (m *Manager) Get(name string) (*Plugin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.plugins[name]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// List returns all discovered plugins.
func (m *Manager) List() []*Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plugins := make([]*Plugin, 0, len(m.plugins))
	for _, p := range m.plugins {
		plugins = append(plugins, p)
	}
	return plugins
}

// Dir returns the directory the manager scans.
func (m *Manager) Dir() string {
	return m.dir
}
