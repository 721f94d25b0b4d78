// Package backend implements the remote-store contract focusdeck syncs
// against: row CRUD over the tasks, folders and users collections
// (scoped by user id), named atomic-increment operations for the stats
// counters, a per-task time-spent accumulation call, and a
// change-notification stream on the tasks collection.
package backend

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db  *sql.DB
	log zerolog.Logger

	subMu sync.Mutex
	subs  []chan struct{}
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
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

	s := &Store{db: db, log: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:", zerolog.Nop())
}

func (s *Store) Close() error {
	s.subMu.Lock()
	for _, ch := range s.subs {
		close(ch)
	}
	s.subs = nil
	s.subMu.Unlock()
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
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

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS users (
		id           TEXT PRIMARY KEY,
		email        TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT '',
		avatar_id    TEXT NOT NULL DEFAULT 'earth',
		created_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS folders (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		name       TEXT NOT NULL,
		color      TEXT NOT NULL DEFAULT '#9F353A',
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id                  TEXT PRIMARY KEY,
		user_id             TEXT NOT NULL,
		title               TEXT NOT NULL,
		completed           INTEGER NOT NULL DEFAULT 0,
		pomodoros           INTEGER NOT NULL DEFAULT 0,
		estimated_pomodoros INTEGER NOT NULL DEFAULT 1,
		duration            INTEGER NOT NULL DEFAULT 25,
		scheduled_for       TEXT,
		folder_id           TEXT,
		time_spent          INTEGER NOT NULL DEFAULT 0,
		started_at          TEXT,
		notified            INTEGER NOT NULL DEFAULT 0,
		reminder_enabled    INTEGER NOT NULL DEFAULT 0,
		reminder_time       INTEGER,
		created_at          TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_user   ON tasks(user_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_folder ON tasks(folder_id);

	CREATE TABLE IF NOT EXISTS stats (
		user_id         TEXT PRIMARY KEY,
		focus_time      INTEGER NOT NULL DEFAULT 0,
		completed_tasks INTEGER NOT NULL DEFAULT 0,
		total_pomodoros INTEGER NOT NULL DEFAULT 0,
		current_streak  INTEGER NOT NULL DEFAULT 0,
		last_active     TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS pomodoro_log (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id      TEXT NOT NULL,
		completed_at TEXT NOT NULL,
		minutes      INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pomodoro_log_user ON pomodoro_log(user_id, completed_at);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('work_duration',  '1500'),
		('break_duration', '300');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/focusdeck/focusdeck.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "focusdeck", "focusdeck.db"), nil
}
