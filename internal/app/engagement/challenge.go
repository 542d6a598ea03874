package engagement

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/ember-coach/ember/internal/domain"
	"github.com/ember-coach/ember/internal/infra/sqlite"
)

// ChallengeService manages weekly challenges.
// 3 new challenges generated per user every Monday, expire the following
// Monday. Weekly only — daily challenges push too hard for a coaching app.
type ChallengeService struct {
	db *sqlite.DB
}

// NewChallengeService creates a challenge service.
func NewChallengeService(db *sqlite.DB) *ChallengeService {
	return &ChallengeService{db: db}
}

// challengePool is the set of possible challenge templates.
var challengePool = []domain.ChallengeTemplate{
	{Type: domain.ChallengeCheckIns, Target: 5, Description: "Check in 5 days this week", RewardXP: 150},
	{Type: domain.ChallengeCheckIns, Target: 7, Description: "Check in every day this week", RewardXP: 250},
	{Type: domain.ChallengeStreak, Target: 7, Description: "Hold a 7-day streak on any goal", RewardXP: 200},
	{Type: domain.ChallengeStreak, Target: 14, Description: "Hold a 14-day streak on any goal", RewardXP: 350},
	{Type: domain.ChallengePerfectDays, Target: 2, Description: "Complete every habit on 2 days", RewardXP: 200},
	{Type: domain.ChallengePerfectDays, Target: 4, Description: "Complete every habit on 4 days", RewardXP: 400},
}

// EnsureWeekly returns the user's active challenges, generating this week's
// set if none exist yet.
func (c *ChallengeService) EnsureWeekly(userID string) ([]domain.Challenge, error) {
	active, err := c.db.ListActiveChallenges(userID)
	if err != nil {
		return nil, err
	}
	if len(active) > 0 {
		return active, nil
	}
	return c.GenerateWeeklyAt(userID, time.Now())
}

// GenerateWeeklyAt creates 3 random challenges expiring at next Monday.
// Accepts a time parameter for testability.
func (c *ChallengeService) GenerateWeeklyAt(userID string, now time.Time) ([]domain.Challenge, error) {
	expiry := nextMonday(now)
	selected := pickUniqueChallenges(challengePool, 3, now.UnixNano())

	var challenges []domain.Challenge
	for i, tmpl := range selected {
		ch := domain.Challenge{
			ID:          fmt.Sprintf("challenge-%s-%d-%d", tmpl.Type, expiry.Unix(), i),
			UserID:      userID,
			Type:        tmpl.Type,
			Description: tmpl.Description,
			Target:      tmpl.Target,
			Progress:    0,
			RewardXP:    tmpl.RewardXP,
			ExpiresAt:   expiry,
			Completed:   false,
		}
		if err := c.db.InsertChallenge(ch); err != nil {
			return nil, fmt.Errorf("insert challenge: %w", err)
		}
		challenges = append(challenges, ch)
	}

	return challenges, nil
}

// Active returns current non-expired, non-completed challenges.
func (c *ChallengeService) Active(userID string) ([]domain.Challenge, error) {
	return c.db.ListActiveChallenges(userID)
}

// RecordProgress advances challenges of the given type.
// For ChallengeCheckIns/ChallengePerfectDays the delta is additive; for
// ChallengeStreak the value is absolute (current streak length).
// Returns any challenges completed by this progress.
func (c *ChallengeService) RecordProgress(userID string, kind domain.ChallengeType, value int) ([]domain.Challenge, error) {
	active, err := c.db.ListActiveChallenges(userID)
	if err != nil {
		return nil, err
	}

	var completed []domain.Challenge
	for _, ch := range active {
		if ch.Type != kind {
			continue
		}

		var updated *domain.Challenge
		if kind == domain.ChallengeStreak {
			updated, err = c.db.SetChallengeProgress(ch.ID, value)
		} else {
			updated, err = c.db.AddChallengeProgress(ch.ID, value)
		}
		if err != nil {
			return nil, err
		}
		if updated != nil && updated.Progress >= updated.Target && !updated.Completed {
			if err := c.db.CompleteChallenge(ch.ID); err != nil {
				return nil, err
			}
			updated.Completed = true
			completed = append(completed, *updated)
		}
	}

	return completed, nil
}

// nextMonday returns the next Monday at 00:00 UTC after the given time.
func nextMonday(t time.Time) time.Time {
	t = t.UTC().Truncate(24 * time.Hour)
	daysUntilMonday := (8 - int(t.Weekday())) % 7
	if daysUntilMonday == 0 {
		daysUntilMonday = 7 // If today is Monday, next Monday
	}
	return t.AddDate(0, 0, daysUntilMonday)
}

// pickUniqueChallenges selects n random templates, preferring unique types.
func pickUniqueChallenges(pool []domain.ChallengeTemplate, n int, seed int64) []domain.ChallengeTemplate {
	r := rand.New(rand.NewSource(seed))

	shuffled := make([]domain.ChallengeTemplate, len(pool))
	copy(shuffled, pool)
	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	seen := make(map[domain.ChallengeType]bool)
	var result []domain.ChallengeTemplate
	for _, tmpl := range shuffled {
		if len(result) >= n {
			break
		}
		if !seen[tmpl.Type] {
			seen[tmpl.Type] = true
			result = append(result, tmpl)
		}
	}

	// If not enough unique types, fill with any remaining template.
	for _, tmpl := range shuffled {
		if len(result) >= n {
			break
		}
		dup := false
		for _, picked := range result {
			if picked.Type == tmpl.Type && picked.Target == tmpl.Target {
				dup = true
				break
			}
		}
		if !dup {
			result = append(result, tmpl)
		}
	}

	return result
}
