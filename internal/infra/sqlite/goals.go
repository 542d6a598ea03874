package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ember-coach/ember/internal/domain"
)

// ─── Goal Repository ────────────────────────────────────────────────────────

// InsertGoal creates a goal and its habit list.
func (d *DB) InsertGoal(g domain.Goal) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO goals (id, owner_id, title, current_streak, best_streak, completion_rate, progress, last_check_in, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.OwnerID, g.Title, g.CurrentStreak, g.BestStreak,
		g.CompletionRate, g.Progress, nullableUnix(g.LastCheckIn), g.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}

	for i, h := range g.Habits {
		_, err = tx.Exec(
			`INSERT INTO habits (id, goal_id, text, completed, position) VALUES (?, ?, ?, ?, ?)`,
			h.ID, g.ID, h.Text, h.Completed, i,
		)
		if err != nil {
			return fmt.Errorf("insert habit: %w", err)
		}
	}

	return tx.Commit()
}

// GetGoal retrieves a goal with its habits, or domain.ErrGoalNotFound.
func (d *DB) GetGoal(id string) (domain.Goal, error) {
	row := d.db.QueryRow(
		`SELECT id, owner_id, title, current_streak, best_streak, completion_rate, progress, last_check_in, created_at
		 FROM goals WHERE id = ?`, id,
	)
	g, err := scanGoal(row)
	if err == sql.ErrNoRows {
		return domain.Goal{}, domain.ErrGoalNotFound
	}
	if err != nil {
		return domain.Goal{}, err
	}

	g.Habits, err = d.habitsForGoal(g.ID)
	return g, err
}

// ListGoalsByOwner returns all of a user's goals, habits included,
// newest first.
func (d *DB) ListGoalsByOwner(ownerID string) ([]domain.Goal, error) {
	rows, err := d.db.Query(
		`SELECT id, owner_id, title, current_streak, best_streak, completion_rate, progress, last_check_in, created_at
		 FROM goals WHERE owner_id = ? ORDER BY created_at DESC`, ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []domain.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range goals {
		goals[i].Habits, err = d.habitsForGoal(goals[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return goals, nil
}

// UpdateGoalState persists the streak/progress fields and habit completion
// flags after a check-in has been applied.
func (d *DB) UpdateGoalState(g domain.Goal) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE goals SET current_streak = ?, best_streak = ?, completion_rate = ?, progress = ?, last_check_in = ?
		 WHERE id = ?`,
		g.CurrentStreak, g.BestStreak, g.CompletionRate, g.Progress,
		nullableUnix(g.LastCheckIn), g.ID,
	)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrGoalNotFound
	}

	for _, h := range g.Habits {
		if _, err := tx.Exec(
			`UPDATE habits SET completed = ? WHERE id = ?`, h.Completed, h.ID,
		); err != nil {
			return fmt.Errorf("update habit: %w", err)
		}
	}

	return tx.Commit()
}

// habitsForGoal returns a goal's habits in stored order.
func (d *DB) habitsForGoal(goalID string) ([]domain.Habit, error) {
	rows, err := d.db.Query(
		`SELECT id, goal_id, text, completed FROM habits WHERE goal_id = ? ORDER BY position`, goalID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []domain.Habit
	for rows.Next() {
		var h domain.Habit
		if err := rows.Scan(&h.ID, &h.GoalID, &h.Text, &h.Completed); err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func scanGoal(s scanner) (domain.Goal, error) {
	var g domain.Goal
	var lastCheckIn sql.NullInt64
	var createdAt int64

	err := s.Scan(&g.ID, &g.OwnerID, &g.Title, &g.CurrentStreak, &g.BestStreak,
		&g.CompletionRate, &g.Progress, &lastCheckIn, &createdAt)
	if err != nil {
		return g, err
	}

	g.CreatedAt = time.Unix(createdAt, 0)
	if lastCheckIn.Valid {
		g.LastCheckIn = time.Unix(lastCheckIn.Int64, 0)
	}
	return g, nil
}

func nullableUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}
