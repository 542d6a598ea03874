package domain

import "time"

// ─── Goal / Habit Types ─────────────────────────────────────────────────────

// Goal is a user-defined objective tracked through daily check-ins.
// Invariant: BestStreak >= CurrentStreak at all times.
type Goal struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	Title          string    `json:"title"`
	Habits         []Habit   `json:"habits"`
	CurrentStreak  int       `json:"current_streak"`
	BestStreak     int       `json:"best_streak"`
	CompletionRate float64   `json:"completion_rate"` // 0–100, smoothed across check-ins
	Progress       float64   `json:"progress"`        // 0–100 overall goal progress
	LastCheckIn    time.Time `json:"last_check_in"`   // zero value = never checked in
	CreatedAt      time.Time `json:"created_at"`
}

// Habit is a single daily action attached to a goal.
// Completed reflects the most recent check-in cycle only.
type Habit struct {
	ID        string `json:"id"`
	GoalID    string `json:"goal_id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// CheckIn is one day's submission for a goal. Immutable once created.
// The store enforces at most one per (goal, day) — see ErrDuplicateCheckIn.
type CheckIn struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	GoalID            string    `json:"goal_id"`
	Date              time.Time `json:"date"`
	CompletedHabitIDs []string  `json:"completed_habit_ids"`
	Mood              int       `json:"mood"`   // 1–5
	Energy            int       `json:"energy"` // 1–5
	Stress            int       `json:"stress"` // 1–5
	Reflection        string    `json:"reflection"`
	SentimentScore    float64   `json:"sentiment_score"` // 0–1, filled by the engine
	CreatedAt         time.Time `json:"created_at"`
}

// DayKey returns the check-in's calendar day as "YYYY-MM-DD" in UTC.
// Used as the storage-level uniqueness key for duplicate prevention.
func (c CheckIn) DayKey() string {
	return c.Date.UTC().Format("2006-01-02")
}
