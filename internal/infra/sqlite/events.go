package sqlite

import (
	"time"

	"github.com/ember-coach/ember/internal/domain"
)

// ─── Activity Event Log ─────────────────────────────────────────────────────
// Append-only: events are inserted and read in timestamp order, never mutated.

// AppendEvent adds one event to the activity log.
// Events without a timestamp are rejected — a defined timestamp is the one
// thing feature extraction cannot degrade around.
func (d *DB) AppendEvent(e domain.UserEvent) error {
	if e.Timestamp.IsZero() {
		return domain.ErrMissingTimestamp
	}
	_, err := d.db.Exec(
		`INSERT INTO events (id, user_id, ts, action, goal_id, progress_delta, sentiment, session_seconds)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Timestamp.Unix(), string(e.Action), e.GoalID,
		e.ProgressDelta, e.SentimentScore, e.SessionSeconds,
	)
	return err
}

// ListEventsByUser returns a user's events at or after `since`, in
// timestamp order.
func (d *DB) ListEventsByUser(userID string, since time.Time) ([]domain.UserEvent, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, ts, action, goal_id, progress_delta, sentiment, session_seconds
		 FROM events WHERE user_id = ? AND ts >= ? ORDER BY ts`,
		userID, since.Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.UserEvent
	for rows.Next() {
		var e domain.UserEvent
		var ts int64
		var action string
		if err := rows.Scan(&e.ID, &e.UserID, &ts, &action, &e.GoalID,
			&e.ProgressDelta, &e.SentimentScore, &e.SessionSeconds); err != nil {
			return nil, err
		}
		e.Timestamp = time.Unix(ts, 0)
		e.Action = domain.EventAction(action)
		events = append(events, e)
	}
	return events, rows.Err()
}
