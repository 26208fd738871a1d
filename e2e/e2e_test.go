package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/audio"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
)

// stateResponse mirrors the /api/state wire format, trimmed to the fields
// the scenarios below assert on.
type stateResponse struct {
	Enabled bool `json:"enabled"`
	Models  []struct {
		Name     string     `json:"name"`
		Position [3]float64 `json:"position"`
		Focused  bool       `json:"focused"`
	} `json:"models"`
}

func newStack(t *testing.T, models ...*scene.Node) (*app.App, *store.Store, *httptest.Server) {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	cfg := config.Default()
	cfg.Plugins.Enabled = false
	a := app.New(cfg, s, audio.NewMockDevice(), zerolog.Nop())
	a.SetDetector(detector.NewMockDetector())
	if len(models) > 0 {
		a.SetModels(models)
	}

	srv := server.New(server.Config{Store: s, App: a, Log: zerolog.Nop()})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return a, s, ts
}

func exhibit(name string) *scene.Node {
	root := scene.NewNode(name)
	mesh := scene.NewNode(name + "-mesh")
	mesh.Bounds = &scene.AABB{
		Min: mgl64.Vec3{-0.5, -0.5, -0.5},
		Max: mgl64.Vec3{0.5, 0.5, 0.5},
	}
	root.AddChild(mesh)
	return root
}

func post(t *testing.T, client *http.Client, url, body string) *http.Response {
	t.Helper()
	resp, err := client.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s error = %v", url, err)
	}
	return resp
}

func getState(t *testing.T, client *http.Client, base string) stateResponse {
	t.Helper()
	resp, err := client.Get(base + "/api/state")
	if err != nil {
		t.Fatalf("GET /api/state error = %v", err)
	}
	defer resp.Body.Close()

	var st stateResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return st
}

func (s stateResponse) model(t *testing.T, name string) (int, [3]float64) {
	t.Helper()
	for i, m := range s.Models {
		if m.Name == name {
			return i, m.Position
		}
	}
	t.Fatalf("model %q not in state", name)
	return -1, [3]float64{}
}

// TestE2E_TrainingWorkflow walks the whole custom gesture loop over HTTP:
// create a gesture, record samples, train its template so the live app
// reloads it, then bind an action to it.
func TestE2E_TrainingWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	_, _, ts := newStack(t)
	client := ts.Client()

	var gestureID string

	t.Run("CreateGesture", func(t *testing.T) {
		resp := post(t, client, ts.URL+"/api/gestures", `{"name": "swipe-left", "type": "dynamic"}`)
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}
		var created struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
			t.Fatalf("decode create response: %v", err)
		}
		if created.ID == "" {
			t.Fatal("expected a generated gesture id")
		}
		gestureID = created.ID
	})

	t.Run("RecordSamples", func(t *testing.T) {
		// Three right-to-left sweeps, jittered the way separate takes are.
		var b bytes.Buffer
		b.WriteString(`{"samples": [`)
		for s := 0; s < 3; s++ {
			if s > 0 {
				b.WriteByte(',')
			}
			b.WriteString(`{"type": "dynamic", "path": [`)
			for i := 0; i < 20; i++ {
				if i > 0 {
					b.WriteByte(',')
				}
				x := 0.8 - float64(i)*0.03 + float64(s)*0.01
				fmt.Fprintf(&b, `{"x": %f, "y": 0.5, "z": 0, "timestamp": %d}`, x, i*66)
			}
			b.WriteString(`]}`)
		}
		b.WriteString(`]}`)

		resp := post(t, client, ts.URL+"/api/gestures/"+gestureID+"/samples", b.String())
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}
	})

	t.Run("Train", func(t *testing.T) {
		resp := post(t, client, ts.URL+"/api/gestures/"+gestureID+"/train", "")
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		var trained struct {
			Path []struct {
				T int64 `json:"t"`
			} `json:"path"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&trained); err != nil {
			t.Fatalf("decode train response: %v", err)
		}
		if len(trained.Path) != 20 {
			t.Fatalf("expected 20 trained path points, got %d", len(trained.Path))
		}
	})

	t.Run("TemplateRoundTrip", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/gestures/" + gestureID + "/template")
		if err != nil {
			t.Fatalf("GET template error = %v", err)
		}
		defer resp.Body.Close()

		var body struct {
			Path []struct {
				X float64 `json:"x"`
				T int64   `json:"t"`
			} `json:"path"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode template: %v", err)
		}
		if len(body.Path) != 20 {
			t.Fatalf("expected 20 path points, got %d", len(body.Path))
		}
		if body.Path[19].T != 19*66 {
			t.Errorf("expected last timestamp %d, got %d", 19*66, body.Path[19].T)
		}
	})

	t.Run("BindAction", func(t *testing.T) {
		resp := post(t, client, ts.URL+"/api/actions",
			`{"gesture": "swipe-left", "pluginName": "media-control", "actionName": "next-track"}`)
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}

		list, err := client.Get(ts.URL + "/api/actions?gesture=swipe-left")
		if err != nil {
			t.Fatalf("list actions error = %v", err)
		}
		defer list.Body.Close()

		var listResp struct {
			Actions []struct {
				PluginName string `json:"pluginName"`
			} `json:"actions"`
		}
		if err := json.NewDecoder(list.Body).Decode(&listResp); err != nil {
			t.Fatalf("decode actions: %v", err)
		}
		if len(listResp.Actions) != 1 {
			t.Fatalf("expected 1 action, got %d", len(listResp.Actions))
		}
		if listResp.Actions[0].PluginName != "media-control" {
			t.Errorf("expected plugin media-control, got %s", listResp.Actions[0].PluginName)
		}
	})

	t.Run("HealthAfterAll", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("health check error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("health status = %d after workflow", resp.StatusCode)
		}
	})
}

// TestE2E_StageSession mimics a visitor session: focus an exhibit, save the
// arrangement, walk to a different spot and relayout, then bring the saved
// arrangement back.
func TestE2E_StageSession(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	a, _, ts := newStack(t, exhibit("amphora"), exhibit("bust"))
	client := ts.Client()

	initial := getState(t, client, ts.URL)
	if len(initial.Models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(initial.Models))
	}
	if !initial.Enabled {
		t.Fatal("expected tracking enabled at startup")
	}
	_, home := initial.model(t, "bust")

	t.Run("Focus", func(t *testing.T) {
		resp := post(t, client, ts.URL+"/api/stage/focus", `{"model": "bust"}`)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("focus status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		st := getState(t, client, ts.URL)
		i, _ := st.model(t, "bust")
		if !st.Models[i].Focused {
			t.Error("expected bust focused in state")
		}
	})

	t.Run("SavePreset", func(t *testing.T) {
		resp := post(t, client, ts.URL+"/api/presets", `{"name": "tour"}`)
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("save preset status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}
	})

	t.Run("WalkAndRelayout", func(t *testing.T) {
		a.SetUserPose(mgl64.Vec3{2, 1.6, 3}, mgl64.Vec3{-0.5, 0, -1})

		resp := post(t, client, ts.URL+"/api/stage/layout", "")
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("layout status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		st := getState(t, client, ts.URL)
		_, moved := st.model(t, "bust")
		if moved == home {
			t.Error("expected relayout from the new viewpoint to move the model")
		}
	})

	t.Run("ApplyPreset", func(t *testing.T) {
		resp := post(t, client, ts.URL+"/api/presets/tour/apply", "")
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("apply status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		st := getState(t, client, ts.URL)
		_, back := st.model(t, "bust")
		for axis := 0; axis < 3; axis++ {
			if math.Abs(back[axis]-home[axis]) > 1e-9 {
				t.Fatalf("expected bust back at %v, got %v", home, back)
			}
		}
	})

	t.Run("DisableTracking", func(t *testing.T) {
		resp := post(t, client, ts.URL+"/api/tracking", `{"enabled": false}`)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("tracking status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		if st := getState(t, client, ts.URL); st.Enabled {
			t.Error("expected tracking disabled in state")
		}
	})

	t.Run("SessionEvents", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/events")
		if err != nil {
			t.Fatalf("GET events error = %v", err)
		}
		defer resp.Body.Close()

		var body struct {
			Events []store.Event `json:"events"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode events: %v", err)
		}
		if len(body.Events) < 2 {
			t.Fatalf("expected at least 2 events, got %d", len(body.Events))
		}
		if body.Events[0].Subject != "preset:tour" {
			t.Errorf("expected newest event preset:tour, got %s", body.Events[0].Subject)
		}
	})
}

// TestE2E_StorePersistence reopens the database file and checks that
// gestures survive a process restart.
func TestE2E_StorePersistence(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	dbPath := filepath.Join(t.TempDir(), "data.db")

	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	if err := s.Gestures().Create(&store.Gesture{
		ID:        "persist-1",
		Name:      "circle",
		Type:      store.GestureTypeDynamic,
		Tolerance: 0.2,
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	g, err := reopened.Gestures().GetByName("circle")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if g.ID != "persist-1" {
		t.Errorf("expected id persist-1, got %s", g.ID)
	}
	if g.Type != store.GestureTypeDynamic {
		t.Errorf("expected type %s, got %s", store.GestureTypeDynamic, g.Type)
	}
}
