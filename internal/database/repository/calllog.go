package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// CallLogRepo handles call history.
type CallLogRepo struct {
	db *sql.DB
}

func NewCallLogRepo(db *sql.DB) *CallLogRepo { return &CallLogRepo{db: db} }

func (r *CallLogRepo) Insert(ctx context.Context, e CallEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO call_log(id, session_id, remote, direction, outcome, started_at, connected_at, ended_at, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP);
	`, e.ID, e.SessionID, e.Remote, e.Direction, e.Outcome, e.StartedAt, e.ConnectedAt, e.EndedAt)
	return err
}

// Recent returns the latest entries, newest first.
func (r *CallLogRepo) Recent(ctx context.Context, limit int) ([]CallEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, session_id, remote, direction, outcome, started_at, connected_at, ended_at, created_at
	FROM call_log ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CallEntry
	for rows.Next() {
		var e CallEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Remote, &e.Direction, &e.Outcome, &e.StartedAt, &e.ConnectedAt, &e.EndedAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// PruneBefore deletes entries older than cutoff. Idempotent.
func (r *CallLogRepo) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM call_log WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
