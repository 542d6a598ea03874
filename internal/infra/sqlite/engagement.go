package sqlite

import (
	"database/sql"
	"time"

	"github.com/ember-coach/ember/internal/domain"
)

// ─── XP ─────────────────────────────────────────────────────────────────────

// GetUserXP retrieves a user's XP total. found is false when the user has no
// record yet — the caller supplies the zero state (get-or-default).
func (d *DB) GetUserXP(userID string) (domain.UserXP, bool, error) {
	var state domain.UserXP
	state.UserID = userID
	err := d.db.QueryRow(
		`SELECT total_xp FROM user_xp WHERE user_id = ?`, userID,
	).Scan(&state.TotalXP)
	if err == sql.ErrNoRows {
		return state, false, nil
	}
	if err != nil {
		return state, false, err
	}
	return state, true, nil
}

// SaveUserXP upserts a user's XP total. Derived level fields are not stored —
// they are recomputed from the total on every read.
func (d *DB) SaveUserXP(state domain.UserXP) error {
	_, err := d.db.Exec(
		`INSERT INTO user_xp (user_id, total_xp) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET total_xp=excluded.total_xp`,
		state.UserID, state.TotalXP,
	)
	return err
}

// ─── Achievements ───────────────────────────────────────────────────────────

// UnlockAchievement records an achievement as unlocked for a user.
// Returns false if already unlocked (idempotent).
func (d *DB) UnlockAchievement(userID, id string, at time.Time) (bool, error) {
	result, err := d.db.Exec(
		`INSERT OR IGNORE INTO achievements (user_id, id, unlocked_at) VALUES (?, ?, ?)`,
		userID, id, at.Unix(),
	)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil // true = newly unlocked
}

// IsAchievementUnlocked checks whether a user has unlocked an achievement.
func (d *DB) IsAchievementUnlocked(userID, id string) (bool, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM achievements WHERE user_id = ? AND id = ?`, userID, id,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListUnlockedAchievements returns a user's unlocked achievements,
// newest first.
func (d *DB) ListUnlockedAchievements(userID string) ([]domain.UnlockedAchievement, error) {
	rows, err := d.db.Query(
		`SELECT user_id, id, unlocked_at FROM achievements WHERE user_id = ? ORDER BY unlocked_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var achievements []domain.UnlockedAchievement
	for rows.Next() {
		var a domain.UnlockedAchievement
		var unlockedAt int64
		if err := rows.Scan(&a.UserID, &a.ID, &unlockedAt); err != nil {
			return nil, err
		}
		a.UnlockedAt = time.Unix(unlockedAt, 0)
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

// ─── Notifications ──────────────────────────────────────────────────────────

// InsertNotification creates a notification and returns its ID.
func (d *DB) InsertNotification(n domain.Notification) (int64, error) {
	result, err := d.db.Exec(
		`INSERT INTO notifications (user_id, type, title, body, created_at, seen)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.UserID, string(n.Type), n.Title, n.Body, n.CreatedAt.Unix(), n.Seen,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListPendingNotifications returns a user's unseen notifications.
func (d *DB) ListPendingNotifications(userID string, limit int) ([]domain.Notification, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, type, title, body, created_at, seen
		 FROM notifications WHERE user_id = ? AND seen = 0 ORDER BY created_at DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifs []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var kind string
		var createdAt int64
		if err := rows.Scan(&n.ID, &n.UserID, &kind, &n.Title, &n.Body, &createdAt, &n.Seen); err != nil {
			return nil, err
		}
		n.Type = domain.NotificationType(kind)
		n.CreatedAt = time.Unix(createdAt, 0)
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

// MarkNotificationSeen marks a notification as seen.
func (d *DB) MarkNotificationSeen(id int64) error {
	_, err := d.db.Exec(`UPDATE notifications SET seen = 1 WHERE id = ?`, id)
	return err
}

// NotificationCountToday returns how many notifications a user received today.
func (d *DB) NotificationCountToday(userID string) (int, error) {
	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND created_at >= ?`,
		userID, midnight.Unix(),
	).Scan(&count)
	return count, err
}

// ─── Challenges ─────────────────────────────────────────────────────────────

// InsertChallenge creates a new weekly challenge.
func (d *DB) InsertChallenge(c domain.Challenge) error {
	_, err := d.db.Exec(
		`INSERT INTO challenges (id, user_id, type, description, target, progress, reward_xp, expires_at, completed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, string(c.Type), c.Description, c.Target, c.Progress,
		c.RewardXP, c.ExpiresAt.Unix(), c.Completed,
	)
	return err
}

// ListActiveChallenges returns a user's non-expired, non-completed challenges.
func (d *DB) ListActiveChallenges(userID string) ([]domain.Challenge, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, type, description, target, progress, reward_xp, expires_at, completed
		 FROM challenges WHERE user_id = ? AND completed = 0 AND expires_at > ? ORDER BY expires_at`,
		userID, time.Now().Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var challenges []domain.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		challenges = append(challenges, *c)
	}
	return challenges, rows.Err()
}

// AddChallengeProgress increments a challenge's progress and returns the
// updated record, or nil if not found.
func (d *DB) AddChallengeProgress(id string, delta int) (*domain.Challenge, error) {
	_, err := d.db.Exec(`UPDATE challenges SET progress = progress + ? WHERE id = ?`, delta, id)
	if err != nil {
		return nil, err
	}
	return d.getChallenge(id)
}

// SetChallengeProgress sets a challenge's progress to an absolute value,
// keeping the stored maximum (streak targets never move backwards).
func (d *DB) SetChallengeProgress(id string, value int) (*domain.Challenge, error) {
	_, err := d.db.Exec(`UPDATE challenges SET progress = MAX(progress, ?) WHERE id = ?`, value, id)
	if err != nil {
		return nil, err
	}
	return d.getChallenge(id)
}

// CompleteChallenge marks a challenge completed.
func (d *DB) CompleteChallenge(id string) error {
	_, err := d.db.Exec(`UPDATE challenges SET completed = 1 WHERE id = ?`, id)
	return err
}

// DeleteExpiredChallenges removes challenges that expired before now.
func (d *DB) DeleteExpiredChallenges(now time.Time) (int64, error) {
	result, err := d.db.Exec(`DELETE FROM challenges WHERE expires_at < ?`, now.Unix())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (d *DB) getChallenge(id string) (*domain.Challenge, error) {
	row := d.db.QueryRow(
		`SELECT id, user_id, type, description, target, progress, reward_xp, expires_at, completed
		 FROM challenges WHERE id = ?`, id,
	)
	c, err := scanChallenge(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func scanChallenge(s scanner) (*domain.Challenge, error) {
	var c domain.Challenge
	var kind string
	var expiresAt int64
	err := s.Scan(&c.ID, &c.UserID, &kind, &c.Description, &c.Target,
		&c.Progress, &c.RewardXP, &expiresAt, &c.Completed)
	if err != nil {
		return nil, err
	}
	c.Type = domain.ChallengeType(kind)
	c.ExpiresAt = time.Unix(expiresAt, 0)
	return &c, nil
}
