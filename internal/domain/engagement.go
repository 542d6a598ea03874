// Package domain holds Ember's core types and invariants.
// The accountability engine — XP, streaks, behavior features, drift risk —
// operates on these types as pure functions; persistence lives in infra.
package domain

import "time"

// ─── XP / Level Types ───────────────────────────────────────────────────────

// UserXP is a user's experience-point state. Level and the derived fields are
// always recomputed from TotalXP — they never drift from it.
// TotalXP never decreases.
type UserXP struct {
	UserID            string  `json:"user_id"`
	TotalXP           int64   `json:"total_xp"`
	Level             int     `json:"level"`
	XPForCurrentLevel int64   `json:"xp_for_current_level"`
	XPForNextLevel    int64   `json:"xp_for_next_level"`
	Progress          float64 `json:"progress"` // 0.0–1.0 toward next level
}

// XPAction categorizes how XP was earned.
type XPAction string

const (
	XPDailyCheckIn    XPAction = "DAILY_CHECKIN"
	XPHabitCompleted  XPAction = "HABIT_COMPLETED"
	XPGoalCompleted   XPAction = "GOAL_COMPLETED"
	XPStreakMilestone XPAction = "STREAK_MILESTONE"
	XPChatTurn        XPAction = "CHAT_TURN"
	XPChallengeDone   XPAction = "CHALLENGE_COMPLETED"
	XPAchievement     XPAction = "ACHIEVEMENT"
)

// RewardXP is the fixed reward table. Immutable configuration, not user data.
var RewardXP = map[XPAction]int64{
	XPDailyCheckIn:    50,
	XPHabitCompleted:  10,
	XPGoalCompleted:   500,
	XPStreakMilestone: 100,
	XPChatTurn:        5,
	XPChallengeDone:   150,
}

// ─── Achievement Types ──────────────────────────────────────────────────────

// AchievementCategory groups achievements by theme.
type AchievementCategory string

const (
	CatGettingStarted AchievementCategory = "getting_started"
	CatStreaks        AchievementCategory = "streaks"
	CatConsistency    AchievementCategory = "consistency"
	CatLevels         AchievementCategory = "levels"
)

// AchievementDef defines a single achievement's requirements.
type AchievementDef struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Category  AchievementCategory  `json:"category"`
	Icon      string               `json:"icon"`
	RewardXP  int64                `json:"reward_xp"`
	Predicate func(UserStats) bool `json:"-"` // Check function (not serialized)
}

// UnlockedAchievement records when a user earned an achievement.
type UnlockedAchievement struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// UserStats is a snapshot of user state fed to achievement predicates.
type UserStats struct {
	TotalCheckIns  int64 `json:"total_check_ins"`
	GoalsCreated   int   `json:"goals_created"`
	GoalsCompleted int   `json:"goals_completed"`
	CurrentStreak  int   `json:"current_streak"`
	BestStreak     int   `json:"best_streak"`
	PerfectDays    int64 `json:"perfect_days"` // check-ins with 100% habit completion
	Level          int   `json:"level"`
	TotalXP        int64 `json:"total_xp"`
}
