// Package sqlite provides SQLite-based persistent storage for Ember.
// Uses WAL mode for concurrent reads and crash-safe writes.
//
// The engine's idempotency contract lives here: check-ins carry a UNIQUE
// (goal_id, day) index, so a duplicate submission for the same goal-day can
// never double-apply streak or XP updates.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Goals and their habit lists
		`CREATE TABLE IF NOT EXISTS goals (
			id              TEXT PRIMARY KEY,
			owner_id        TEXT NOT NULL,
			title           TEXT NOT NULL,
			current_streak  INTEGER NOT NULL DEFAULT 0,
			best_streak     INTEGER NOT NULL DEFAULT 0,
			completion_rate REAL NOT NULL DEFAULT 0,
			progress        REAL NOT NULL DEFAULT 0,
			last_check_in   INTEGER,
			created_at      INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_goals_owner ON goals(owner_id)`,

		`CREATE TABLE IF NOT EXISTS habits (
			id        TEXT PRIMARY KEY,
			goal_id   TEXT NOT NULL REFERENCES goals(id) ON DELETE CASCADE,
			text      TEXT NOT NULL,
			completed BOOLEAN NOT NULL DEFAULT 0,
			position  INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_habits_goal ON habits(goal_id)`,

		// Check-ins — UNIQUE(goal_id, day) is the duplicate guard the
		// engine's streak/XP idempotency depends on.
		`CREATE TABLE IF NOT EXISTS checkins (
			id                  TEXT PRIMARY KEY,
			user_id             TEXT NOT NULL,
			goal_id             TEXT NOT NULL,
			day                 TEXT NOT NULL,
			completed_habit_ids TEXT NOT NULL DEFAULT '',
			mood                INTEGER NOT NULL DEFAULT 0,
			energy              INTEGER NOT NULL DEFAULT 0,
			stress              INTEGER NOT NULL DEFAULT 0,
			reflection          TEXT NOT NULL DEFAULT '',
			sentiment           REAL NOT NULL DEFAULT 0.5,
			perfect             BOOLEAN NOT NULL DEFAULT 0,
			created_at          INTEGER NOT NULL,
			UNIQUE(goal_id, day)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_checkins_user ON checkins(user_id)`,

		// Append-only activity log — sole input to feature extraction.
		// sentiment/session_seconds use -1 for "absent".
		`CREATE TABLE IF NOT EXISTS events (
			id              TEXT PRIMARY KEY,
			user_id         TEXT NOT NULL,
			ts              INTEGER NOT NULL,
			action          TEXT NOT NULL,
			goal_id         TEXT NOT NULL DEFAULT '',
			progress_delta  REAL NOT NULL DEFAULT 0,
			sentiment       REAL NOT NULL DEFAULT -1,
			session_seconds REAL NOT NULL DEFAULT -1
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_user_ts ON events(user_id, ts)`,

		// XP totals — derived level fields are recomputed on read.
		`CREATE TABLE IF NOT EXISTS user_xp (
			user_id  TEXT PRIMARY KEY,
			total_xp INTEGER NOT NULL DEFAULT 0
		)`,

		// Unlocked achievements
		`CREATE TABLE IF NOT EXISTS achievements (
			user_id     TEXT NOT NULL,
			id          TEXT NOT NULL,
			unlocked_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, id)
		)`,

		// Notification log (policy: daily cap, quiet hours)
		`CREATE TABLE IF NOT EXISTS notifications (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    TEXT NOT NULL,
			type       TEXT NOT NULL,
			title      TEXT NOT NULL,
			body       TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			seen       BOOLEAN NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notif_user_created ON notifications(user_id, created_at)`,

		// Weekly challenges with progress tracking
		`CREATE TABLE IF NOT EXISTS challenges (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL,
			type        TEXT NOT NULL,
			description TEXT NOT NULL,
			target      INTEGER NOT NULL,
			progress    INTEGER NOT NULL DEFAULT 0,
			reward_xp   INTEGER NOT NULL,
			expires_at  INTEGER NOT NULL,
			completed   BOOLEAN NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_challenges_user ON challenges(user_id, expires_at)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
