package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/cvgames/internal/capture"
	"github.com/ayusman/cvgames/internal/config"
	"github.com/ayusman/cvgames/internal/controller"
	"github.com/ayusman/cvgames/internal/detector"
	"github.com/ayusman/cvgames/internal/inject"
	"github.com/ayusman/cvgames/internal/server"
	"github.com/ayusman/cvgames/internal/session"
	"github.com/ayusman/cvgames/internal/store"
)

// stepClock advances by step on every call.
func stepClock(step time.Duration) func() time.Time {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func getJSON(t *testing.T, client *http.Client, url string, v any) {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s error = %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s status = %d, want %d", url, resp.StatusCode, http.StatusOK)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("GET %s decode error = %v", url, err)
	}
}

func TestE2E_ArcadePlaySession(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	hub := server.NewHub()
	srv := server.New(server.Config{Hub: hub, Store: s, Variant: controller.NameArcade})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	client := ts.Client()

	cfg := config.DefaultConfig()
	frames := capture.BlankFrames(5, cfg.Arcade.Width, cfg.Arcade.Height)
	defer func() {
		for _, f := range frames {
			f.Close()
		}
	}()

	pointing := detector.PointingLandmarks()
	det := detector.NewMockDetector()
	det.Queue(
		nil,
		&detector.Detection{Hands: []detector.HandLandmarks{pointing}},
		&detector.Detection{Hands: []detector.HandLandmarks{pointing}},
		nil,
		&detector.Detection{Hands: []detector.HandLandmarks{pointing}},
	)
	rec := inject.NewRecorder()

	ctl := controller.New(controller.Config{
		Variant:   controller.Arcade(cfg.Arcade),
		Play:      true,
		Store:     s,
		Publisher: hub,
		Clock:     stepClock(50 * time.Millisecond),
	}, capture.NewMockCamera(frames, false), det, rec)

	t.Run("Run", func(t *testing.T) {
		if err := ctl.Run(context.Background()); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if got := rec.Count(inject.OpPress, "x"); got != 2 {
			t.Errorf("shoot presses = %d, want 2", got)
		}
		if held := rec.Held(); len(held) != 0 {
			t.Errorf("keys still held after run: %v", held)
		}
	})

	t.Run("State", func(t *testing.T) {
		var st struct {
			Variant string `json:"variant"`
			Frame   int    `json:"frame"`
			Gesture string `json:"gesture"`
		}
		getJSON(t, client, ts.URL+"/api/state", &st)
		if st.Variant != controller.NameArcade {
			t.Errorf("variant = %q, want %q", st.Variant, controller.NameArcade)
		}
		if st.Frame != 5 {
			t.Errorf("frame = %d, want 5", st.Frame)
		}
		if st.Gesture != "shoot" {
			t.Errorf("gesture = %q, want shoot", st.Gesture)
		}
	})

	t.Run("SessionHistory", func(t *testing.T) {
		var list struct {
			Sessions []struct {
				ID     string `json:"id"`
				Mode   string `json:"mode"`
				Frames int    `json:"frames"`
				Reason string `json:"reason"`
			} `json:"sessions"`
		}
		getJSON(t, client, ts.URL+"/api/sessions", &list)
		if len(list.Sessions) != 1 {
			t.Fatalf("sessions = %d, want 1", len(list.Sessions))
		}
		sess := list.Sessions[0]
		if sess.ID != ctl.SessionID() {
			t.Errorf("id = %s, want %s", sess.ID, ctl.SessionID())
		}
		if sess.Mode != store.ModePlay || sess.Frames != 5 || sess.Reason != controller.ReasonStreamEnd {
			t.Errorf("session = %+v", sess)
		}

		var detail struct {
			Actions map[string]int `json:"actions"`
		}
		getJSON(t, client, ts.URL+"/api/sessions/"+sess.ID, &detail)
		if detail.Actions["shoot"] != 2 {
			t.Errorf("shoot count = %d, want 2", detail.Actions["shoot"])
		}
	})

	t.Run("HealthStillWorks", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("health error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("health check failed after run")
		}
	})
}

func TestE2E_RunnerSessionStart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	cfg := config.DefaultConfig()
	n := cfg.Runner.JoinFrames + 2
	frames := capture.BlankFrames(n, cfg.Runner.Width, cfg.Runner.Height)
	defer func() {
		for _, f := range frames {
			f.Close()
		}
	}()

	det := detector.NewMockDetector()
	det.SetPoses([]detector.PoseLandmarks{detector.PoseFixture(0.5, 0.5, true)})
	rec := inject.NewRecorder()

	ctl := controller.New(controller.Config{
		Variant: controller.Runner(cfg.Runner),
		Play:    true,
		Clock:   stepClock(33 * time.Millisecond),
	}, capture.NewMockCamera(frames, false), det, rec)

	if err := ctl.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	clicks := 0
	for _, e := range rec.Events() {
		if e.Op == inject.OpClick {
			clicks++
			if e.X != cfg.Runner.ClickX || e.Y != cfg.Runner.ClickY {
				t.Errorf("click at (%d, %d), want (%d, %d)", e.X, e.Y, cfg.Runner.ClickX, cfg.Runner.ClickY)
			}
		}
	}
	if clicks != 1 {
		t.Errorf("clicks = %d, want 1", clicks)
	}
	if got := ctl.Processor().Session().State(); got != session.Active {
		t.Errorf("session state = %v, want active", got)
	}
}
