// Package tray provides the system tray menu: tracking and sound toggles,
// a stage reset, and a shortcut into the web viewer.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray is the system tray menu. Toggles keep their own displayed state;
// the callbacks push changes into the rest of the application.
type Tray struct {
	onToggle func(enabled bool)
	onSound  func(enabled bool)
	onReset  func()
	onOpen   func()
	onQuit   func()

	enabled bool
	sound   bool
	mu      sync.RWMutex

	// Menu items stored for later updates
	menuToggle      *systray.MenuItem
	menuSound       *systray.MenuItem
	menuLastGesture *systray.MenuItem
}

// New creates a new Tray with tracking and sound shown as on.
func New() *Tray {
	return &Tray{
		enabled: true,
		sound:   true,
	}
}

// OnToggle sets the callback for the tracking toggle.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSound sets the callback for the ambient sound toggle.
func (t *Tray) OnSound(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSound = fn
}

// OnReset sets the callback for the stage reset item.
func (t *Tray) OnReset(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReset = fn
}

// OnOpen sets the callback for the open viewer item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback for the quit item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray. It blocks until the quit item is clicked,
// and on macOS must be called from the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady builds the menu once the tray is up.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra gesture viewer")

	t.mu.RLock()
	enabled, sound := t.enabled, t.sound
	t.mu.RUnlock()

	t.menuToggle = systray.AddMenuItem(trackingTitle(enabled), "Toggle gesture tracking")
	t.menuSound = systray.AddMenuItem(soundTitle(sound), "Toggle ambient sound")
	systray.AddSeparator()

	t.menuLastGesture = systray.AddMenuItem("Last: none", "Last recognized gesture")
	t.menuLastGesture.Disable()
	systray.AddSeparator()

	menuReset := systray.AddMenuItem("Reset stage", "Return every model to its place")
	menuOpen := systray.AddMenuItem("Open viewer...", "Open the viewer in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-t.menuSound.ClickedCh:
				t.handleSound()
			case <-menuReset.ClickedCh:
				t.handleReset()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func trackingTitle(on bool) string {
	if on {
		return "● Tracking on"
	}
	return "○ Tracking off"
}

func soundTitle(on bool) string {
	if on {
		return "♪ Sound on"
	}
	return "♪ Sound off"
}

// handleToggle flips the tracking state and notifies the callback.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	t.menuToggle.SetTitle(trackingTitle(enabled))
	callback := t.onToggle
	t.mu.Unlock()

	// Run the callback outside the lock to prevent deadlocks.
	if callback != nil {
		callback(enabled)
	}
}

// handleSound flips the sound state and notifies the callback.
func (t *Tray) handleSound() {
	t.mu.Lock()
	t.sound = !t.sound
	enabled := t.sound
	t.menuSound.SetTitle(soundTitle(enabled))
	callback := t.onSound
	t.mu.Unlock()

	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleReset() {
	t.mu.RLock()
	callback := t.onReset
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// Quit closes the menu and unblocks Run without firing the quit callback.
// Used when shutdown starts elsewhere, such as a signal handler.
func (t *Tray) Quit() {
	systray.Quit()
}

// SetLastGesture updates the last gesture line in the menu.
func (t *Tray) SetLastGesture(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastGesture != nil {
		if name == "" {
			t.menuLastGesture.SetTitle("Last: none")
		} else {
			t.menuLastGesture.SetTitle("Last: " + name)
		}
	}
}

// SetEnabled sets the tracking state the tray shows without firing the
// callback, as when restored state is pushed in at startup.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(trackingTitle(enabled))
	}
}

// SetSound sets the sound state the tray shows without firing the callback.
func (t *Tray) SetSound(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sound = enabled
	if t.menuSound != nil {
		t.menuSound.SetTitle(soundTitle(enabled))
	}
}

// IsEnabled returns the tracking state the tray shows.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
