package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per controller run
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			variant TEXT NOT NULL,
			camera INTEGER NOT NULL DEFAULT 0,
			mode TEXT NOT NULL CHECK(mode IN ('play', 'test')),
			started_at DATETIME NOT NULL,
			ended_at DATETIME,
			frames INTEGER NOT NULL DEFAULT 0,
			presses INTEGER NOT NULL DEFAULT 0,
			reason TEXT NOT NULL DEFAULT ''
		)`,

		// Session actions table - how often each action fired during a session
		`CREATE TABLE IF NOT EXISTS session_actions (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			action TEXT NOT NULL,
			count INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (session_id, action)
		)`,

		// Settings table - stores menu settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_variant ON sessions(variant)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
