package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('work_duration',         '25'),
		('break_duration',        '5'),
		('notifications_enabled', '1'),
		('linear_api_token',      '');

	CREATE TABLE IF NOT EXISTS sessions (
		id           TEXT PRIMARY KEY,
		task_id      TEXT,
		task_title   TEXT,
		started_at   TEXT NOT NULL,
		completed_at TEXT,
		duration     INTEGER NOT NULL DEFAULT 0,
		interrupted  INTEGER NOT NULL DEFAULT 0,
		mode         TEXT NOT NULL DEFAULT 'work'
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);

	CREATE TABLE IF NOT EXISTS local_tasks (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		priority    INTEGER NOT NULL DEFAULT 0,
		state       TEXT NOT NULL DEFAULT 'Todo',
		due_date    TEXT,
		created_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS schedules (
		id   TEXT PRIMARY KEY,
		date TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS scheduled_tasks (
		schedule_id TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
		task_id     TEXT NOT NULL,
		task_title  TEXT NOT NULL,
		estimated   INTEGER NOT NULL DEFAULT 1,
		completed   INTEGER NOT NULL DEFAULT 0,
		notes       TEXT NOT NULL DEFAULT '',
		position    INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (schedule_id, task_id)
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns the default database location under the user
// config directory.
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(cfg, "pomoplan", "pomoplan.db"), nil
}
