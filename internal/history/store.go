// Package history persists the governor's audit trail in SQLite: every
// resolution, lifecycle transition, gate decision, surfaced conflict, and
// override. The trail is append-only; nothing in the governor reads it to
// make decisions.
package history

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/steward/internal/gate"
	"github.com/harrison/steward/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// EventKind classifies an audit entry.
type EventKind string

const (
	EventResolution EventKind = "resolution"
	EventTransition EventKind = "transition"
	EventGate       EventKind = "gate"
	EventOverride   EventKind = "override"
	EventConflict   EventKind = "conflict"
)

// Event is one audit trail entry.
type Event struct {
	ID        int64
	Timestamp time.Time
	Kind      EventKind
	PlanID    string
	Actor     string
	Summary   string
	Detail    string
}

// Store manages the SQLite audit database.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the audit database and applies the schema.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// busy_timeout first so the remaining pragmas wait on locks.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configure history database: %w", err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) record(kind EventKind, planID, actor, summary, detail string) error {
	_, err := s.db.Exec(
		`INSERT INTO events (kind, plan_id, actor, summary, detail) VALUES (?, ?, ?, ?, ?)`,
		string(kind), planID, actor, summary, detail,
	)
	if err != nil {
		return fmt.Errorf("record %s event: %w", kind, err)
	}
	return nil
}

// RecordResolution logs the role set a request resolved to.
func (s *Store) RecordResolution(planID, request string, set *models.RequiredRoleSet) error {
	detail, _ := json.Marshal(map[string]any{
		"roles":                set.All(),
		"pending_confirmation": set.PendingConfirmation,
	})
	summary := fmt.Sprintf("resolved %d roles for %q", len(set.All()), request)
	return s.record(EventResolution, planID, "", summary, string(detail))
}

// RecordTransition logs a plan lifecycle transition.
func (s *Store) RecordTransition(planID string, from, to models.PlanStatus, actor string) error {
	return s.record(EventTransition, planID, actor, fmt.Sprintf("%s -> %s", from, to), "")
}

// RecordGateDecision logs a commit gate outcome.
func (s *Store) RecordGateDecision(planID string, d gate.Decision) error {
	summary := fmt.Sprintf("gate %s: %s", d.Verdict, d.Reason)
	return s.record(EventGate, planID, "", summary, d.Remediation)
}

// RecordOverride logs an explicit override of a blocked action. The
// override is the one path past a Block and it is never silent.
func (s *Store) RecordOverride(planID string, rec gate.OverrideRecord) error {
	detail, _ := json.Marshal(map[string]any{
		"overridden_verdict": rec.Overridden.Verdict,
		"overridden_reason":  rec.Overridden.Reason,
	})
	summary := fmt.Sprintf("override by %s: %s", rec.Actor, rec.Reason)
	return s.record(EventOverride, planID, rec.Actor, summary, string(detail))
}

// RecordConflicts logs surfaced conflicts, one event per record.
func (s *Store) RecordConflicts(planID string, conflicts []models.ConflictRecord) error {
	for _, c := range conflicts {
		if err := s.record(EventConflict, planID, "", c.String(), c.Escalation); err != nil {
			return err
		}
	}
	return nil
}

// Recent returns the newest events, most recent first.
func (s *Store) Recent(limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, timestamp, kind, plan_id, actor, summary, detail
		 FROM events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var kind string
		if err := rows.Scan(&e.ID, &e.Timestamp, &kind, &e.PlanID, &e.Actor, &e.Summary, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan history event: %w", err)
		}
		e.Kind = EventKind(kind)
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountByKind returns how many events of the given kind exist.
func (s *Store) CountByKind(kind EventKind) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM events WHERE kind = ?`, string(kind)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count history events: %w", err)
	}
	return n, nil
}
