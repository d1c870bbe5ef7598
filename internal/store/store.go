// Package store persists the roster, schedules and appointments in
// SQLite and owns the schedule revision counter.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"salondesk/internal/events"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("store: not found")

// ErrVersionConflict is returned when an optimistic update lost a race.
var ErrVersionConflict = errors.New("store: version conflict")

// Store wraps the SQLite database. The in-memory revision mirror lets
// ScheduleRevision be read without a query on every snapshot pass.
type Store struct {
	db       *sql.DB
	bus      *events.Bus
	revision atomic.Int64
}

const schema = `
CREATE TABLE IF NOT EXISTS employees (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	role TEXT NOT NULL,
	specialties TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS weekly_schedules (
	employee_id INTEGER NOT NULL,
	weekday INTEGER NOT NULL,
	work_type TEXT NOT NULL,
	start_time TEXT NOT NULL DEFAULT '',
	end_time TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (employee_id, weekday)
);

CREATE TABLE IF NOT EXISTS schedule_overrides (
	employee_id INTEGER NOT NULL,
	date TEXT NOT NULL,
	work_type TEXT NOT NULL,
	start_time TEXT NOT NULL DEFAULT '',
	end_time TEXT NOT NULL DEFAULT '',
	reason TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (employee_id, date)
);

CREATE TABLE IF NOT EXISTS appointments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	date TEXT NOT NULL,
	start_minutes INTEGER NOT NULL,
	duration_minutes INTEGER NOT NULL,
	extra_minutes INTEGER NOT NULL DEFAULT 0,
	staff_name TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending',
	customer TEXT NOT NULL DEFAULT '',
	service TEXT NOT NULL DEFAULT '',
	version INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_appointments_date ON appointments(date);

CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// New opens (creating if needed) the database at path. bus may be nil.
func New(path string, bus *events.Bus) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &Store{db: db, bus: bus}
	if err := s.loadRevision(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// PingContext reports database liveness for health checks.
func (s *Store) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) loadRevision() error {
	var value string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = 'schedule_revision'").Scan(&value)
	switch {
	case err == sql.ErrNoRows:
		if _, err := s.db.Exec("INSERT INTO meta (key, value) VALUES ('schedule_revision', '0')"); err != nil {
			return fmt.Errorf("init revision: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("load revision: %w", err)
	}

	rev, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("parse revision %q: %w", value, err)
	}
	s.revision.Store(rev)
	return nil
}

// ScheduleRevision returns the current schedule revision. It increases
// monotonically and changes only through schedule edits.
func (s *Store) ScheduleRevision() int64 {
	return s.revision.Load()
}

func (s *Store) bumpRevision(ctx context.Context) error {
	rev := s.revision.Add(1)
	if _, err := s.db.ExecContext(ctx,
		"UPDATE meta SET value = ? WHERE key = 'schedule_revision'",
		strconv.FormatInt(rev, 10),
	); err != nil {
		return fmt.Errorf("store revision: %w", err)
	}
	if s.bus != nil {
		s.bus.Publish(events.Event{Type: events.TypeScheduleChanged})
	}
	return nil
}

func (s *Store) notifyAppointments(date time.Time) {
	if s.bus != nil {
		s.bus.Publish(events.Event{Type: events.TypeAppointmentsChanged, Date: date})
	}
}
