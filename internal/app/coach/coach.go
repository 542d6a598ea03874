// Package coach orchestrates the accountability engine around the store.
// The engine's scoring functions are pure; this layer fetches state, runs
// them, persists the results, and fans out the side artifacts (events,
// challenges, achievements, notifications, coaching replies).
package coach

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ember-coach/ember/internal/app/engagement"
	"github.com/ember-coach/ember/internal/app/insight"
	"github.com/ember-coach/ember/internal/domain"
	"github.com/ember-coach/ember/internal/infra/llm"
	"github.com/ember-coach/ember/internal/infra/metrics"
	"github.com/ember-coach/ember/internal/infra/sqlite"
)

// Config tunes the orchestration layer.
type Config struct {
	Streak engagement.StreakConfig
	Risk   insight.Config

	// EventWindowDays bounds how far back feature extraction looks.
	EventWindowDays int

	// HorizonDays is the drift prediction window.
	HorizonDays int
}

// DefaultConfig returns the product defaults.
func DefaultConfig() Config {
	return Config{
		Streak:          engagement.DefaultStreakConfig(),
		Risk:            insight.DefaultConfig(),
		EventWindowDays: 30,
		HorizonDays:     14,
	}
}

// Coach wires the engine's components together. All dependencies are
// injected — no package-level state.
type Coach struct {
	db            *sqlite.DB
	xp            *engagement.XPService
	achievements  *engagement.AchievementService
	challenges    *engagement.ChallengeService
	notifications *engagement.NotificationService
	llm           *llm.Client
	cfg           Config
}

// New creates a coach over the given store and collaborators.
// llmClient may be nil — coaching replies degrade to a canned line.
func New(db *sqlite.DB, llmClient *llm.Client, cfg Config) *Coach {
	return &Coach{
		db:            db,
		xp:            engagement.NewXPService(db),
		achievements:  engagement.NewAchievementService(db),
		challenges:    engagement.NewChallengeService(db),
		notifications: engagement.NewNotificationService(db),
		llm:           llmClient,
		cfg:           cfg,
	}
}

// XP exposes the XP service for read endpoints.
func (c *Coach) XP() *engagement.XPService { return c.xp }

// Achievements exposes the achievement service for read endpoints.
func (c *Coach) Achievements() *engagement.AchievementService { return c.achievements }

// Challenges exposes the challenge service for read endpoints.
func (c *Coach) Challenges() *engagement.ChallengeService { return c.challenges }

// Notifications exposes the notification service for read endpoints.
func (c *Coach) Notifications() *engagement.NotificationService { return c.notifications }

// ─── Goals ──────────────────────────────────────────────────────────────────

// CreateGoal defines a new goal with its habit list.
func (c *Coach) CreateGoal(ownerID, title string, habitTexts []string) (domain.Goal, error) {
	now := time.Now()
	goal := domain.Goal{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		CreatedAt: now,
	}
	for _, text := range habitTexts {
		goal.Habits = append(goal.Habits, domain.Habit{
			ID:     uuid.NewString(),
			GoalID: goal.ID,
			Text:   text,
		})
	}

	if err := c.db.InsertGoal(goal); err != nil {
		return domain.Goal{}, fmt.Errorf("create goal: %w", err)
	}

	c.appendEvent(domain.UserEvent{
		UserID:         ownerID,
		Timestamp:      now,
		Action:         domain.ActionGoalUpdate,
		GoalID:         goal.ID,
		SentimentScore: -1,
		SessionSeconds: -1,
	})
	return goal, nil
}

// Goal returns a goal by id.
func (c *Coach) Goal(id string) (domain.Goal, error) {
	return c.db.GetGoal(id)
}

// GoalsFor returns a user's goals.
func (c *Coach) GoalsFor(ownerID string) ([]domain.Goal, error) {
	return c.db.ListGoalsByOwner(ownerID)
}

// ─── Check-in Orchestration ─────────────────────────────────────────────────

// CheckInRequest is one day's submission for a goal.
type CheckInRequest struct {
	UserID            string    `json:"user_id"`
	GoalID            string    `json:"goal_id"`
	Date              time.Time `json:"date"` // zero = today
	CompletedHabitIDs []string  `json:"completed_habit_ids"`
	Mood              int       `json:"mood"`
	Energy            int       `json:"energy"`
	Stress            int       `json:"stress"`
	Reflection        string    `json:"reflection"`
}

// CheckInResult is everything a check-in produced.
type CheckInResult struct {
	Goal                domain.Goal             `json:"goal"`
	XP                  domain.UserXP           `json:"xp"`
	LeveledUp           bool                    `json:"leveled_up"`
	CompletionRate      float64                 `json:"completion_rate"` // today's rate, 0–1
	StreakContinued     bool                    `json:"streak_continued"`
	SentimentScore      float64                 `json:"sentiment_score"`
	NewAchievements     []domain.AchievementDef `json:"new_achievements"`
	CompletedChallenges []domain.Challenge      `json:"completed_challenges"`
	CoachReply          string                  `json:"coach_reply"`
}

// SubmitCheckIn applies one day's check-in end to end: streak update, XP
// awards, activity logging, challenge progress, achievement evaluation,
// notification, coaching reply. The check-in row, the goal state, and the
// base XP award commit in a single transaction, so a failed submission
// leaves the day retryable. Duplicate (goal, day) submissions return
// domain.ErrDuplicateCheckIn with no state change — the store's unique
// index guarantees at-most-one application even under concurrency.
func (c *Coach) SubmitCheckIn(ctx context.Context, req CheckInRequest) (CheckInResult, error) {
	goal, err := c.db.GetGoal(req.GoalID)
	if err != nil {
		metrics.CheckInsRejected.WithLabelValues("not_found").Inc()
		return CheckInResult{}, err
	}
	if goal.OwnerID != req.UserID {
		metrics.CheckInsRejected.WithLabelValues("invalid").Inc()
		return CheckInResult{}, domain.ErrGoalNotFound
	}

	now := time.Now()
	date := req.Date
	if date.IsZero() {
		date = now
	}

	completed := make(map[string]bool, len(req.CompletedHabitIDs))
	for _, id := range req.CompletedHabitIDs {
		completed[id] = true
	}

	rate := engagement.CompletionRate(goal, completed)
	sentiment := insight.ScoreSentiment(req.Reflection)
	perfect := rate >= 1 && len(goal.Habits) > 0

	checkIn := domain.CheckIn{
		ID:                uuid.NewString(),
		UserID:            req.UserID,
		GoalID:            req.GoalID,
		Date:              date,
		CompletedHabitIDs: req.CompletedHabitIDs,
		Mood:              req.Mood,
		Energy:            req.Energy,
		Stress:            req.Stress,
		Reflection:        req.Reflection,
		SentimentScore:    sentiment,
		CreatedAt:         now,
	}

	oldProgress := goal.Progress
	updated := engagement.ApplyCheckIn(goal, completed, date, c.cfg.Streak)

	// XP: base check-in award plus each habit actually completed, computed
	// up front so the check-in, the goal state, and the XP total commit
	// together. Challenge and achievement rewards remain best-effort
	// follow-ups after the commit.
	award := domain.RewardXP[domain.XPDailyCheckIn]
	habitMatched := int64(0)
	for _, h := range updated.Habits {
		if h.Completed {
			habitMatched++
		}
	}
	award += habitMatched * domain.RewardXP[domain.XPHabitCompleted]
	milestone := engagement.IsStreakMilestone(updated.CurrentStreak)
	if milestone {
		award += domain.RewardXP[domain.XPStreakMilestone]
	}
	goalDone := oldProgress < 100 && updated.Progress >= 100
	if goalDone {
		award += domain.RewardXP[domain.XPGoalCompleted]
	}

	prevXP, err := c.xp.Current(req.UserID)
	if err != nil {
		return CheckInResult{}, err
	}
	xpState, err := engagement.AwardXP(prevXP, award)
	if err != nil {
		return CheckInResult{}, err
	}

	// The duplicate guard: the insert wins inside this transaction or the
	// whole check-in is a no-op and the day stays open for retry.
	if err := c.db.ApplyCheckIn(checkIn, perfect, updated, xpState); err != nil {
		if err == domain.ErrDuplicateCheckIn {
			metrics.CheckInsRejected.WithLabelValues("duplicate").Inc()
		}
		return CheckInResult{}, err
	}

	continued := updated.CurrentStreak > 0
	if continued {
		metrics.CheckInsApplied.WithLabelValues("continued").Inc()
	} else {
		metrics.CheckInsApplied.WithLabelValues("broken").Inc()
	}
	metrics.CompletionRate.Observe(rate)

	result := CheckInResult{
		Goal:            updated,
		CompletionRate:  rate,
		StreakContinued: continued,
		SentimentScore:  sentiment,
	}

	metrics.XPAwarded.WithLabelValues(string(domain.XPDailyCheckIn)).
		Add(float64(domain.RewardXP[domain.XPDailyCheckIn]))
	if habitMatched > 0 {
		metrics.XPAwarded.WithLabelValues(string(domain.XPHabitCompleted)).
			Add(float64(habitMatched * domain.RewardXP[domain.XPHabitCompleted]))
	}
	if milestone {
		metrics.XPAwarded.WithLabelValues(string(domain.XPStreakMilestone)).
			Add(float64(domain.RewardXP[domain.XPStreakMilestone]))
		c.notify(domain.Notification{
			UserID: req.UserID,
			Type:   domain.NotifyStreak,
			Title:  fmt.Sprintf("%d-day streak!", updated.CurrentStreak),
			Body:   fmt.Sprintf("You kept %q alive for %d days straight.", updated.Title, updated.CurrentStreak),
		})
	}
	if goalDone {
		metrics.XPAwarded.WithLabelValues(string(domain.XPGoalCompleted)).
			Add(float64(domain.RewardXP[domain.XPGoalCompleted]))
	}
	if xpState.Level > prevXP.Level {
		metrics.LevelUps.Inc()
		c.notify(domain.Notification{
			UserID: req.UserID,
			Type:   domain.NotifyLevelUp,
			Title:  fmt.Sprintf("Level %d!", xpState.Level),
			Body:   fmt.Sprintf("You reached level %d with %d XP.", xpState.Level, xpState.TotalXP),
		})
	}

	// Activity log entry for feature extraction.
	c.appendEvent(domain.UserEvent{
		UserID:         req.UserID,
		Timestamp:      now,
		Action:         domain.ActionCheckIn,
		GoalID:         req.GoalID,
		ProgressDelta:  updated.Progress - oldProgress,
		SentimentScore: sentiment,
		SessionSeconds: -1,
	})

	// Weekly challenge progress.
	result.CompletedChallenges = c.recordChallenges(req.UserID, updated.CurrentStreak, perfect)
	for _, ch := range result.CompletedChallenges {
		if _, _, err := c.xp.AwardAmount(req.UserID, ch.RewardXP); err != nil {
			log.Printf("[coach] WARNING: challenge reward failed: %v", err)
		}
		metrics.XPAwarded.WithLabelValues(string(domain.XPChallengeDone)).Add(float64(ch.RewardXP))
	}

	// Achievements, with their XP rewards.
	result.NewAchievements, err = c.evaluateAchievements(req.UserID)
	if err != nil {
		log.Printf("[coach] WARNING: achievement check failed: %v", err)
	}

	// Re-read XP so the result reflects challenge/achievement rewards too.
	result.XP, err = c.xp.Current(req.UserID)
	if err != nil {
		return CheckInResult{}, err
	}
	result.LeveledUp = result.XP.Level > prevXP.Level

	result.CoachReply = c.coachReply(ctx, req, updated, rate)
	return result, nil
}

// recordChallenges advances all challenge types a check-in can move.
func (c *Coach) recordChallenges(userID string, streak int, perfect bool) []domain.Challenge {
	var completed []domain.Challenge

	if _, err := c.challenges.EnsureWeekly(userID); err != nil {
		log.Printf("[coach] WARNING: ensure challenges: %v", err)
		return nil
	}

	done, err := c.challenges.RecordProgress(userID, domain.ChallengeCheckIns, 1)
	if err != nil {
		log.Printf("[coach] WARNING: challenge progress: %v", err)
	}
	completed = append(completed, done...)
	if perfect {
		done, err = c.challenges.RecordProgress(userID, domain.ChallengePerfectDays, 1)
		if err != nil {
			log.Printf("[coach] WARNING: challenge progress: %v", err)
		}
		completed = append(completed, done...)
	}
	done, err = c.challenges.RecordProgress(userID, domain.ChallengeStreak, streak)
	if err != nil {
		log.Printf("[coach] WARNING: challenge progress: %v", err)
	}
	completed = append(completed, done...)
	return completed
}

// evaluateAchievements snapshots stats, checks the catalog, and pays rewards.
func (c *Coach) evaluateAchievements(userID string) ([]domain.AchievementDef, error) {
	stats, err := c.db.UserStats(userID)
	if err != nil {
		return nil, err
	}
	stats.Level = engagement.LevelForXP(stats.TotalXP)

	unlocked, err := c.achievements.CheckAndUnlock(userID, stats)
	if err != nil {
		return nil, err
	}
	for _, def := range unlocked {
		metrics.AchievementsUnlocked.Inc()
		if _, _, err := c.xp.AwardAmount(userID, def.RewardXP); err != nil {
			log.Printf("[coach] WARNING: achievement reward failed: %v", err)
		}
		metrics.XPAwarded.WithLabelValues(string(domain.XPAchievement)).Add(float64(def.RewardXP))
		c.notify(domain.Notification{
			UserID: userID,
			Type:   domain.NotifyAchievement,
			Title:  "Achievement unlocked: " + def.Name,
			Body:   fmt.Sprintf("%s %s — +%d XP", def.Icon, def.Name, def.RewardXP),
		})
	}
	return unlocked, nil
}

// ─── Chat / Session Activity ────────────────────────────────────────────────

// RecordChatTurn logs a chat interaction and awards its XP.
// The sentiment of the user's message feeds the behavior features.
func (c *Coach) RecordChatTurn(userID, text string) (float64, error) {
	sentiment := insight.ScoreSentiment(text)
	c.appendEvent(domain.UserEvent{
		UserID:         userID,
		Timestamp:      time.Now(),
		Action:         domain.ActionChatTurn,
		SentimentScore: sentiment,
		SessionSeconds: -1,
	})
	_, _, err := c.xp.Award(userID, domain.XPChatTurn)
	metrics.XPAwarded.WithLabelValues(string(domain.XPChatTurn)).
		Add(float64(domain.RewardXP[domain.XPChatTurn]))
	return sentiment, err
}

// RecordAppOpen logs an app-open event with its session duration.
func (c *Coach) RecordAppOpen(userID string, sessionSeconds float64) error {
	if sessionSeconds < 0 {
		sessionSeconds = -1
	}
	return c.db.AppendEvent(domain.UserEvent{
		ID:             uuid.NewString(),
		UserID:         userID,
		Timestamp:      time.Now(),
		Action:         domain.ActionAppOpen,
		SentimentScore: -1,
		SessionSeconds: sessionSeconds,
	})
}

// ─── Insights ───────────────────────────────────────────────────────────────

// Insights extracts behavior features over the configured window and scores
// drift risk. High-risk results file an intervention notification carrying
// the top recommendation.
func (c *Coach) Insights(userID string) (domain.FeatureVector, domain.RiskPrediction, error) {
	asOf := time.Now()
	since := asOf.AddDate(0, 0, -c.cfg.EventWindowDays)

	events, err := c.db.ListEventsByUser(userID, since)
	if err != nil {
		return domain.FeatureVector{}, domain.RiskPrediction{}, fmt.Errorf("load events: %w", err)
	}

	features := insight.ExtractFeatures(events, asOf)
	pred, err := insight.PredictDrift(userID, features, c.cfg.HorizonDays, c.cfg.Risk)
	if err != nil {
		return domain.FeatureVector{}, domain.RiskPrediction{}, err
	}

	metrics.RiskScore.Observe(pred.RiskScore)
	metrics.RiskPredictions.WithLabelValues(riskBand(pred.RiskScore)).Inc()

	if pred.PredictedDriftDate != nil && len(pred.Recommendations) > 0 {
		c.notify(domain.Notification{
			UserID: userID,
			Type:   domain.NotifyIntervention,
			Title:  "Let's get back on track",
			Body:   pred.Recommendations[0],
		})
	}

	return features, pred, nil
}

func riskBand(score float64) string {
	switch {
	case score >= 0.7:
		return "high"
	case score >= 0.4:
		return "medium"
	default:
		return "low"
	}
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// coachReply asks the Language Model Service to phrase an encouragement,
// falling back to a canned line when the service is unavailable.
func (c *Coach) coachReply(ctx context.Context, req CheckInRequest, goal domain.Goal, rate float64) string {
	canned := cannedReply(goal, rate)
	if !c.llm.Enabled() {
		metrics.CoachReplies.WithLabelValues("canned").Inc()
		return canned
	}

	system := "You are a warm, concise habit coach. Reply in at most two sentences."
	user := fmt.Sprintf(
		"Goal: %s. Today's habit completion: %.0f%%. Current streak: %d days. Mood %d/5, energy %d/5, stress %d/5. Note: %s",
		goal.Title, rate*100, goal.CurrentStreak, req.Mood, req.Energy, req.Stress, req.Reflection,
	)

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	reply, err := c.llm.Complete(ctx, system, user)
	if err != nil {
		log.Printf("[coach] WARNING: llm reply failed: %v", err)
		metrics.CoachReplies.WithLabelValues("error").Inc()
		return canned
	}
	metrics.CoachReplies.WithLabelValues("llm").Inc()
	return reply
}

func cannedReply(goal domain.Goal, rate float64) string {
	switch {
	case rate >= 1:
		return fmt.Sprintf("Perfect day on %q — every habit done. Keep the streak burning.", goal.Title)
	case rate >= 0.6:
		return fmt.Sprintf("Solid progress on %q. Your streak is at %d days.", goal.Title, goal.CurrentStreak)
	default:
		return fmt.Sprintf("Tough day — tomorrow is a fresh start on %q.", goal.Title)
	}
}

// appendEvent writes to the activity log, filling in the id.
// Log failures are warned, not fatal — features degrade gracefully.
func (c *Coach) appendEvent(e domain.UserEvent) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := c.db.AppendEvent(e); err != nil {
		log.Printf("[coach] WARNING: append event: %v", err)
	}
}

// notify files a notification, respecting policy. Failures are warned.
func (c *Coach) notify(n domain.Notification) {
	if _, err := c.notifications.Create(n); err != nil {
		log.Printf("[coach] WARNING: notification: %v", err)
	}
}
