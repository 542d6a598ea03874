package domain

import "time"

// ─── Notification Types ─────────────────────────────────────────────────────

// NotificationType categorizes notifications.
type NotificationType string

const (
	NotifyLevelUp      NotificationType = "level_up"
	NotifyAchievement  NotificationType = "achievement"
	NotifyStreak       NotificationType = "streak_milestone"
	NotifyIntervention NotificationType = "intervention"
)

// Notification is a stored user-facing message. Delivery is out of scope —
// upstream surfaces read pending notifications and mark them seen.
type Notification struct {
	ID        int64            `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	CreatedAt time.Time        `json:"created_at"`
	Seen      bool             `json:"seen"`
}

// NotificationPolicy governs how often notifications are created.
// Coaching, not nagging: hard daily cap, quiet hours respected.
type NotificationPolicy struct {
	MaxPerDay  int    `json:"max_per_day"`
	QuietStart string `json:"quiet_start"` // "22:00"
	QuietEnd   string `json:"quiet_end"`   // "08:00"
}

// DefaultNotificationPolicy returns the product default policy.
func DefaultNotificationPolicy() NotificationPolicy {
	return NotificationPolicy{
		MaxPerDay:  2,
		QuietStart: "22:00",
		QuietEnd:   "08:00",
	}
}

// ─── Weekly Challenge Types ─────────────────────────────────────────────────

// ChallengeType categorizes the kind of weekly challenge.
type ChallengeType string

const (
	ChallengeCheckIns    ChallengeType = "check_ins"
	ChallengeStreak      ChallengeType = "streak"
	ChallengePerfectDays ChallengeType = "perfect_days"
)

// Challenge is a weekly target with progress tracking.
type Challenge struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	Type        ChallengeType `json:"type"`
	Description string        `json:"description"`
	Target      int           `json:"target"`
	Progress    int           `json:"progress"`
	RewardXP    int64         `json:"reward_xp"`
	ExpiresAt   time.Time     `json:"expires_at"`
	Completed   bool          `json:"completed"`
}

// ChallengeTemplate defines the pool of possible weekly challenges.
type ChallengeTemplate struct {
	Type        ChallengeType `json:"type"`
	Target      int           `json:"target"`
	Description string        `json:"description"`
	RewardXP    int64         `json:"reward_xp"`
}
