package domain

import "time"

// ─── Behavior Event Types ───────────────────────────────────────────────────

// EventAction categorizes a user activity event.
type EventAction string

const (
	ActionCheckIn    EventAction = "check_in"
	ActionGoalUpdate EventAction = "goal_update"
	ActionChatTurn   EventAction = "chat_turn"
	ActionAppOpen    EventAction = "app_open"
)

// UserEvent is one entry in the append-only activity log.
// It is the sole input to behavior feature extraction; never mutated.
// Sentiment and SessionSeconds are optional — negative means absent.
type UserEvent struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	Timestamp      time.Time   `json:"timestamp"`
	Action         EventAction `json:"action"`
	GoalID         string      `json:"goal_id,omitempty"`
	ProgressDelta  float64     `json:"progress_delta"`
	SentimentScore float64     `json:"sentiment_score"` // 0–1; <0 = not scored
	SessionSeconds float64     `json:"session_seconds"` // <0 = not recorded
}

// HasSentiment reports whether the event carries a sentiment score.
func (e UserEvent) HasSentiment() bool { return e.SentimentScore >= 0 }

// HasDuration reports whether the event carries a session duration.
func (e UserEvent) HasDuration() bool { return e.SessionSeconds >= 0 }

// ─── Feature Vector ─────────────────────────────────────────────────────────

// NoRecentAction is the DaysSinceLastAction sentinel for empty histories.
const NoRecentAction = 9999

// FeatureVector is the fixed set of behavior summaries fed to the risk scorer.
// All fields are defined for empty or single-event histories — no NaN, ever.
type FeatureVector struct {
	AvgDailyEngagement    float64 `json:"avg_daily_engagement"`
	EngagementConsistency float64 `json:"engagement_consistency"` // 0–1, 0 when <2 active days
	ProgressTrend         float64 `json:"progress_trend"`         // signed slope of progress
	DaysSinceLastAction   int     `json:"days_since_last_action"` // NoRecentAction when empty
	AvgSessionDuration    float64 `json:"avg_session_duration"`   // seconds, 0 when unknown
	SentimentTrend        float64 `json:"sentiment_trend"`        // signed
	TotalActions          int     `json:"total_actions"`
	ObservedDays          int     `json:"observed_days"` // distinct active days in the window
}

// ─── Risk Prediction ────────────────────────────────────────────────────────

// RiskPrediction is the drift/disengagement assessment for a user.
// Derived, recomputed on demand; not a source of truth.
type RiskPrediction struct {
	UserID             string     `json:"user_id"`
	RiskScore          float64    `json:"risk_score"` // 0–1
	PredictedDriftDate *time.Time `json:"predicted_drift_date,omitempty"`
	Recommendations    []string   `json:"recommendations"`
	Confidence         float64    `json:"confidence"` // 0–1, low on sparse data
	ComputedAt         time.Time  `json:"computed_at"`
}
