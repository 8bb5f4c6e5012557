package store

import (
	"os"
	"path/filepath"
	"testing"
)

// newTestStore opens a store in a fresh temporary directory.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	// Verify the database file doesn't exist yet
	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatal("database file should not exist before creating store")
	}

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file should exist after creating store")
	}
	if s.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", s.Path(), dbPath)
	}
}

func TestNewStore_RunsMigrations(t *testing.T) {
	s := newTestStore(t)

	tables := []string{"sessions", "session_actions", "settings"}
	for _, table := range tables {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q should exist after migrations: %v", table, err)
		}
	}
}

func TestNewStore_ReopenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := s.Settings().Set(SettingCamera, "2"); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	s.Close()

	s, err = New(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s.Close()

	if got := s.Settings().GetInt(SettingCamera, 0); got != 2 {
		t.Errorf("camera = %d after reopen, want 2", got)
	}
}

func TestStore_Close(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("close should not return error: %v", err)
	}

	// After closing, DB operations should fail
	if _, err := s.DB().Exec("SELECT 1"); err == nil {
		t.Error("DB operations should fail after close")
	}
}

func TestStore_ForeignKeysEnabled(t *testing.T) {
	s := newTestStore(t)

	var fkEnabled int
	if err := s.DB().QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
		t.Fatalf("failed to check foreign keys pragma: %v", err)
	}
	if fkEnabled != 1 {
		t.Error("foreign keys should be enabled")
	}
}

func TestStore_IndexesCreated(t *testing.T) {
	s := newTestStore(t)

	indexes := []string{
		"idx_sessions_started_at",
		"idx_sessions_variant",
	}
	for _, idx := range indexes {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='index' AND name=?",
			idx,
		).Scan(&name)
		if err != nil {
			t.Errorf("index %q should exist after migrations: %v", idx, err)
		}
	}
}

func TestStore_WALMode(t *testing.T) {
	s := newTestStore(t)

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("failed to read journal mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestStore_SharedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")

	menu, err := New(path)
	if err != nil {
		t.Fatalf("failed to open menu store: %v", err)
	}
	defer menu.Close()
	if err := menu.Settings().SetInt(SettingCamera, 1); err != nil {
		t.Fatalf("menu write failed: %v", err)
	}

	ctl, err := New(path)
	if err != nil {
		t.Fatalf("failed to open controller store: %v", err)
	}
	defer ctl.Close()
	sess := &Session{Variant: "dash", Mode: ModePlay}
	if err := ctl.Sessions().Create(sess); err != nil {
		t.Fatalf("controller write failed: %v", err)
	}

	got, err := menu.Sessions().GetByID(sess.ID)
	if err != nil {
		t.Fatalf("menu cannot read controller session: %v", err)
	}
	if got.Variant != "dash" {
		t.Errorf("variant = %q, want dash", got.Variant)
	}
	if cam := ctl.Settings().GetInt(SettingCamera, 0); cam != 1 {
		t.Errorf("camera = %d, want 1", cam)
	}
}
