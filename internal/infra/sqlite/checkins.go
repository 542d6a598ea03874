package sqlite

import (
	"fmt"
	"strings"
	"time"

	"github.com/ember-coach/ember/internal/domain"
)

// ─── Check-in Repository ────────────────────────────────────────────────────

// InsertCheckIn records one day's check-in. The UNIQUE (goal_id, day) index
// makes this the system's duplicate guard: a second submission for the same
// goal-day returns domain.ErrDuplicateCheckIn and nothing is written, so
// concurrent duplicates can never both apply.
func (d *DB) InsertCheckIn(c domain.CheckIn, perfect bool) error {
	res, err := d.db.Exec(
		`INSERT OR IGNORE INTO checkins
		 (id, user_id, goal_id, day, completed_habit_ids, mood, energy, stress, reflection, sentiment, perfect, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.GoalID, c.DayKey(), strings.Join(c.CompletedHabitIDs, ","),
		c.Mood, c.Energy, c.Stress, c.Reflection, c.SentimentScore, perfect,
		c.CreatedAt.Unix(),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrDuplicateCheckIn
	}
	return nil
}

// ApplyCheckIn commits a check-in together with the goal state and XP total
// it produced, in one transaction. Either the whole day applies or none of
// it does — a failed application leaves the (goal, day) slot free for retry
// while the unique index stays the concurrency guard. A duplicate day
// returns domain.ErrDuplicateCheckIn with nothing written.
func (d *DB) ApplyCheckIn(c domain.CheckIn, perfect bool, g domain.Goal, xp domain.UserXP) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT OR IGNORE INTO checkins
		 (id, user_id, goal_id, day, completed_habit_ids, mood, energy, stress, reflection, sentiment, perfect, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.GoalID, c.DayKey(), strings.Join(c.CompletedHabitIDs, ","),
		c.Mood, c.Energy, c.Stress, c.Reflection, c.SentimentScore, perfect,
		c.CreatedAt.Unix(),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrDuplicateCheckIn
	}

	res, err = tx.Exec(
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

	if _, err := tx.Exec(
		`INSERT INTO user_xp (user_id, total_xp) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET total_xp=excluded.total_xp`,
		xp.UserID, xp.TotalXP,
	); err != nil {
		return fmt.Errorf("save xp: %w", err)
	}

	return tx.Commit()
}

// HasCheckIn reports whether a check-in exists for the goal on the given day.
func (d *DB) HasCheckIn(goalID string, day time.Time) (bool, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM checkins WHERE goal_id = ? AND day = ?`,
		goalID, day.UTC().Format("2006-01-02"),
	).Scan(&count)
	return count > 0, err
}

// ListCheckInsByUser returns a user's check-ins, newest first.
func (d *DB) ListCheckInsByUser(userID string, limit int) ([]domain.CheckIn, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, goal_id, day, completed_habit_ids, mood, energy, stress, reflection, sentiment, created_at
		 FROM checkins WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checkins []domain.CheckIn
	for rows.Next() {
		var c domain.CheckIn
		var day, ids string
		var createdAt int64
		if err := rows.Scan(&c.ID, &c.UserID, &c.GoalID, &day, &ids,
			&c.Mood, &c.Energy, &c.Stress, &c.Reflection, &c.SentimentScore, &createdAt); err != nil {
			return nil, err
		}
		c.Date, _ = time.Parse("2006-01-02", day)
		c.CreatedAt = time.Unix(createdAt, 0)
		if ids != "" {
			c.CompletedHabitIDs = strings.Split(ids, ",")
		}
		checkins = append(checkins, c)
	}
	return checkins, rows.Err()
}

// UserStats assembles the snapshot fed to achievement predicates.
// Streak figures are the maximum across the user's goals.
func (d *DB) UserStats(userID string) (domain.UserStats, error) {
	var stats domain.UserStats

	err := d.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(perfect), 0) FROM checkins WHERE user_id = ?`, userID,
	).Scan(&stats.TotalCheckIns, &stats.PerfectDays)
	if err != nil {
		return stats, err
	}

	err = d.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN progress >= 100 THEN 1 ELSE 0 END), 0),
		        COALESCE(MAX(current_streak), 0),
		        COALESCE(MAX(best_streak), 0)
		 FROM goals WHERE owner_id = ?`, userID,
	).Scan(&stats.GoalsCreated, &stats.GoalsCompleted, &stats.CurrentStreak, &stats.BestStreak)
	if err != nil {
		return stats, err
	}

	var totalXP int64
	xp, found, err := d.GetUserXP(userID)
	if err != nil {
		return stats, err
	}
	if found {
		totalXP = xp.TotalXP
	}
	stats.TotalXP = totalXP
	return stats, nil
}
