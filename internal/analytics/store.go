// Package analytics records UI events in a local SQLite database.
//
// A Tracker is constructed once by the host and handed to whatever needs
// to report events; there is no package-level tracker.
package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Event names reported by the host.
const (
	HeroMounted       = "hero_mounted"
	SequenceCompleted = "sequence_completed"
	SequenceSkipped   = "sequence_skipped"
	FieldResized      = "field_resized"
	ThemeChanged      = "theme_changed"
	MotionChanged     = "motion_changed"
	PageViewed        = "page_viewed"
	CaseStudyOpened   = "case_study_opened"
	EmailCopied       = "email_copied"
)

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Tracker receives events.
type Tracker interface {
	Track(ctx context.Context, name string, props map[string]string) error
}

type discard struct{}

func (discard) Track(context.Context, string, map[string]string) error { return nil }

// Discard drops every event.
var Discard Tracker = discard{}

// Event is one stored event.
type Event struct {
	ID      string
	Session string
	Name    string
	Props   map[string]string
	At      time.Time
}

// DefaultPath returns the database location under the XDG data directory.
func DefaultPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "folio", "events.db")
}

// Store is a Tracker backed by SQLite. Each Store tags its events with a
// fresh session id.
type Store struct {
	conn    *sql.DB
	path    string
	session string
	now     func() time.Time
	mu      sync.Mutex
}

// Open opens (creating if needed) the database at path and applies
// migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	s := &Store{
		conn:    conn,
		path:    path,
		session: uuid.New().String(),
		now:     time.Now,
	}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Session() string { return s.session }

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

var migrations = []struct {
	version int
	sql     string
}{
	{1, migrationV1Events},
}

const migrationV1Events = `
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	session TEXT NOT NULL,
	name TEXT NOT NULL,
	props TEXT NOT NULL DEFAULT '{}',
	at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_at ON events(at);
CREATE INDEX IF NOT EXISTS idx_events_name ON events(name);
`

func (s *Store) migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var current int
	if err := s.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := s.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}
	return nil
}

// Track stores one event.
func (s *Store) Track(ctx context.Context, name string, props map[string]string) error {
	if props == nil {
		props = map[string]string{}
	}
	data, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("encode props: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.conn.ExecContext(ctx,
		"INSERT INTO events (id, session, name, props, at) VALUES (?, ?, ?, ?, ?)",
		uuid.New().String(), s.session, name, string(data), s.now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("track %s: %w", name, err)
	}
	return nil
}

// Recent returns up to limit events, newest first. A non-positive limit
// returns every event.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = -1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.conn.QueryContext(ctx,
		"SELECT id, session, name, props, at FROM events ORDER BY at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var props, at string
		if err := rows.Scan(&e.ID, &e.Session, &e.Name, &props, &at); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if err := json.Unmarshal([]byte(props), &e.Props); err != nil {
			return nil, fmt.Errorf("decode props of %s: %w", e.ID, err)
		}
		if e.At, err = time.Parse(timeLayout, at); err != nil {
			return nil, fmt.Errorf("parse time of %s: %w", e.ID, err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Count returns how many events named name were stored. An empty name
// counts every event.
func (s *Store) Count(ctx context.Context, name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	var err error
	if name == "" {
		err = s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&n)
	} else {
		err = s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM events WHERE name = ?", name).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}
