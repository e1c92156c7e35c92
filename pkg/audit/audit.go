// Package audit records skill lifecycle operations (install, remove,
// assign, unassign) in the shared SQLite database. Recording is
// best-effort: callers log failures and carry on, so an unavailable audit
// log never blocks a skill operation.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Operation names a recorded skill lifecycle event.
type Operation string

const (
	OpInstall  Operation = "install"
	OpRemove   Operation = "remove"
	OpAssign   Operation = "assign"
	OpUnassign Operation = "unassign"
)

// Event is one recorded skill operation.
type Event struct {
	ID         string    `db:"id"`
	OccurredAt time.Time `db:"occurred_at"`
	Operation  Operation `db:"operation"`
	Scope      string    `db:"scope"`
	AgentID    string    `db:"agent_id"`
	SkillID    string    `db:"skill_id"`
	SourceKind string    `db:"source_kind"`
	Replaced   bool      `db:"replaced"`
}

// Recorder writes and reads audit events.
type Recorder struct {
	db *sqlx.DB
}

// NewRecorder creates a recorder and ensures the events table exists.
func NewRecorder(ctx context.Context, conn *sqlx.DB) (*Recorder, error) {
	if _, err := conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS skill_events (
			id TEXT PRIMARY KEY,
			occurred_at DATETIME NOT NULL,
			operation TEXT NOT NULL,
			scope TEXT NOT NULL,
			agent_id TEXT NOT NULL DEFAULT '',
			skill_id TEXT NOT NULL,
			source_kind TEXT NOT NULL DEFAULT '',
			replaced INTEGER NOT NULL DEFAULT 0
		)
	`); err != nil {
		return nil, errors.Wrap(err, "failed to create skill_events table")
	}
	if _, err := conn.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_skill_events_skill_id
		ON skill_events(skill_id, occurred_at)
	`); err != nil {
		return nil, errors.Wrap(err, "failed to create skill_events index")
	}
	return &Recorder{db: conn}, nil
}

// Record inserts an event, assigning it an id and timestamp.
func (r *Recorder) Record(ctx context.Context, event Event) error {
	event.ID = uuid.NewString()
	event.OccurredAt = time.Now().UTC()

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO skill_events (id, occurred_at, operation, scope, agent_id, skill_id, source_kind, replaced)
		VALUES (:id, :occurred_at, :operation, :scope, :agent_id, :skill_id, :source_kind, :replaced)
	`, event)
	return errors.Wrap(err, "failed to record skill event")
}

// Recent returns the most recent events, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []Event
	err := r.db.SelectContext(ctx, &events, `
		SELECT id, occurred_at, operation, scope, agent_id, skill_id, source_kind, replaced
		FROM skill_events
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?
	`, limit)
	return events, errors.Wrap(err, "failed to list skill events")
}
