package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/cvgames/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func seedSession(t *testing.T, s *store.Store, id, variant string, started time.Time) {
	t.Helper()

	sess := &store.Session{ID: id, Variant: variant, Mode: store.ModePlay, StartedAt: started}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
}

func TestSessionHandler_List(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)

	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	seedSession(t, s, "s1", "arcade", base)
	seedSession(t, s, "s2", "runner", base.Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var response listSessionsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(response.Sessions))
	}
	if response.Sessions[0].ID != "s2" {
		t.Errorf("expected newest session first, got %s", response.Sessions[0].ID)
	}
}

func TestSessionHandler_ListLimit(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)

	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		seedSession(t, s, id, "dash", base.Add(time.Duration(i)*time.Minute))
	}

	tests := []struct {
		query string
		code  int
		count int
	}{
		{"?limit=1", http.StatusOK, 1},
		{"?limit=0", http.StatusOK, 3},
		{"?limit=abc", http.StatusBadRequest, 0},
		{"?limit=-1", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/sessions"+tt.query, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.code {
				t.Fatalf("expected status %d, got %d", tt.code, rec.Code)
			}
			if tt.code != http.StatusOK {
				return
			}
			var response listSessionsResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(response.Sessions) != tt.count {
				t.Errorf("expected %d sessions, got %d", tt.count, len(response.Sessions))
			}
		})
	}
}

func TestSessionHandler_GetWithActions(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)

	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	seedSession(t, s, "s1", "arcade", start)
	if err := s.Sessions().Finish("s1", start.Add(time.Minute), 1800, 12, "escape"); err != nil {
		t.Fatalf("failed to finish: %v", err)
	}
	if err := s.Sessions().AddActionCounts("s1", map[string]int{"shoot": 10, "barrel_roll": 2}); err != nil {
		t.Fatalf("failed to add counts: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/s1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response sessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Frames != 1800 || response.Presses != 12 || response.Reason != "escape" {
		t.Errorf("unexpected session %+v", response)
	}
	if response.EndedAt == "" {
		t.Error("expected ended_at to be set")
	}
	if response.Actions["shoot"] != 10 {
		t.Errorf("expected 10 shoot presses, got %d", response.Actions["shoot"])
	}
}

func TestSessionHandler_NotFound(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		req := httptest.NewRequest(method, "/api/sessions/missing", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected status %d, got %d", method, http.StatusNotFound, rec.Code)
		}
	}
}

func TestSessionHandler_Delete(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)
	seedSession(t, s, "s1", "runner", time.Now())

	req := httptest.NewRequest(http.MethodDelete, "/api/sessions/s1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if _, err := s.Sessions().GetByID("s1"); err != store.ErrNotFound {
		t.Errorf("expected session to be deleted, got %v", err)
	}
}

func TestSessionHandler_MethodNotAllowed(t *testing.T) {
	handler := NewSessionHandler(newTestStore(t))

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/sessions"},
		{http.MethodPut, "/api/sessions/s1"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.path, http.StatusMethodNotAllowed, rec.Code)
		}
	}
}

func TestSettingsHandler(t *testing.T) {
	s := newTestStore(t)
	handler := NewSettingsHandler(s)

	t.Run("missing key returns 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/settings/camera", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})

	t.Run("put then get", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/settings/camera", bytes.NewBufferString(`{"value":"2"}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("PUT: expected status %d, got %d", http.StatusOK, rec.Code)
		}

		req = httptest.NewRequest(http.MethodGet, "/api/settings", nil)
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		var all map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&all); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if all["camera"] != "2" {
			t.Errorf("expected camera=2, got %q", all["camera"])
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/settings/camera", bytes.NewBufferString(`{`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})
}
