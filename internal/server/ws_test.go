package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/scene"
)

func TestStateSocket_Broadcast(t *testing.T) {
	a := testApp(t, nil)
	a.SetModels([]*scene.Node{testModel("urn")})
	s := New(Config{App: a})

	ts := httptest.NewServer(s)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading state frame: %v", err)
	}

	var state struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
		Timestamp int64 `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &state); err != nil {
		t.Fatalf("decoding state frame: %v", err)
	}
	if len(state.Models) != 1 || state.Models[0].Name != "urn" {
		t.Errorf("unexpected models in frame: %+v", state.Models)
	}
	if state.Timestamp == 0 {
		t.Error("expected a non-zero timestamp")
	}

	// A pose message flows upstream without breaking the feed.
	pose := `{"type": "pose", "head": [0, 1.6, 2], "forward": [0, 0, -1]}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(pose)); err != nil {
		t.Fatalf("sending pose message: %v", err)
	}
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("reading frame after pose update: %v", err)
	}
}

func TestStateSocket_IgnoresMalformedMessages(t *testing.T) {
	a := testApp(t, nil)
	s := New(Config{App: a})

	ts := httptest.NewServer(s)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("sending garbage: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("connection should survive a malformed message: %v", err)
	}
}
