package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/app"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// StateSocket streams state snapshots to every connected client and feeds
// head pose messages from clients back into the stage. The snapshot rate
// is fixed; clients that fall behind just see fewer frames.
type StateSocket struct {
	app     *app.App
	log     zerolog.Logger
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// poseMessage is what clients send upstream: where the user's head is and
// which way they are looking.
type poseMessage struct {
	Type    string     `json:"type"`
	Head    [3]float64 `json:"head"`
	Forward [3]float64 `json:"forward"`
}

// NewStateSocket creates a StateSocket and starts its broadcast loop.
func NewStateSocket(a *app.App, log zerolog.Logger) *StateSocket {
	h := &StateSocket{
		app:     a,
		log:     log,
		clients: make(map[*websocket.Conn]bool),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StateSocket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg poseMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.log.Debug().Err(err).Msg("dropping malformed websocket message")
			continue
		}
		if msg.Type != "pose" {
			continue
		}

		h.app.SetUserPose(
			mgl64.Vec3{msg.Head[0], msg.Head[1], msg.Head[2]},
			mgl64.Vec3{msg.Forward[0], msg.Forward[1], msg.Forward[2]},
		)
	}
}

// broadcast pushes a state snapshot to all connected clients.
func (h *StateSocket) broadcast() {
	ticker := time.NewTicker(66 * time.Millisecond) // ~15 FPS
	defer ticker.Stop()

	for range ticker.C {
		h.mu.RLock()
		idle := len(h.clients) == 0
		h.mu.RUnlock()
		if idle {
			continue
		}

		msg, err := json.Marshal(h.app.State())
		if err != nil {
			continue
		}

		h.mu.RLock()
		for conn := range h.clients {
			conn.WriteMessage(websocket.TextMessage, msg)
		}
		h.mu.RUnlock()
	}
}
