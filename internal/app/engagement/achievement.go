package engagement

import (
	"time"

	"github.com/ember-coach/ember/internal/domain"
	"github.com/ember-coach/ember/internal/infra/sqlite"
)

// AchievementService manages the achievement catalog.
// Each achievement is checked against a UserStats snapshot; unlocks are
// monotonic and idempotent.
type AchievementService struct {
	db          *sqlite.DB
	definitions []domain.AchievementDef
}

// NewAchievementService creates an achievement service with all definitions.
func NewAchievementService(db *sqlite.DB) *AchievementService {
	return &AchievementService{
		db:          db,
		definitions: AllAchievements(),
	}
}

// CheckAndUnlock evaluates all achievements against the given stats.
// Returns newly unlocked achievements (already-unlocked are skipped).
func (a *AchievementService) CheckAndUnlock(userID string, stats domain.UserStats) ([]domain.AchievementDef, error) {
	var newlyUnlocked []domain.AchievementDef

	for _, def := range a.definitions {
		unlocked, err := a.db.IsAchievementUnlocked(userID, def.ID)
		if err != nil {
			return nil, err
		}
		if unlocked {
			continue
		}

		if def.Predicate != nil && def.Predicate(stats) {
			isNew, err := a.db.UnlockAchievement(userID, def.ID, time.Now())
			if err != nil {
				return nil, err
			}
			if isNew {
				newlyUnlocked = append(newlyUnlocked, def)
			}
		}
	}

	return newlyUnlocked, nil
}

// ListUnlocked returns all achievements the user has earned.
func (a *AchievementService) ListUnlocked(userID string) ([]domain.UnlockedAchievement, error) {
	return a.db.ListUnlockedAchievements(userID)
}

// TotalCount returns the total number of defined achievements.
func (a *AchievementService) TotalCount() int {
	return len(a.definitions)
}

// AllAchievements returns the full achievement catalog.
func AllAchievements() []domain.AchievementDef {
	return []domain.AchievementDef{
		// ── Getting Started ────────────────────────────────────────────
		{
			ID: "first_checkin", Name: "First Step", Category: domain.CatGettingStarted,
			Icon: "🌱", RewardXP: 25,
			Predicate: func(s domain.UserStats) bool { return s.TotalCheckIns >= 1 },
		},
		{
			ID: "first_goal", Name: "Dreamer", Category: domain.CatGettingStarted,
			Icon: "🎯", RewardXP: 25,
			Predicate: func(s domain.UserStats) bool { return s.GoalsCreated >= 1 },
		},
		{
			ID: "first_goal_done", Name: "Finisher", Category: domain.CatGettingStarted,
			Icon: "🏁", RewardXP: 200,
			Predicate: func(s domain.UserStats) bool { return s.GoalsCompleted >= 1 },
		},

		// ── Streaks ────────────────────────────────────────────────────
		{
			ID: "streak_7", Name: "Week Warrior", Category: domain.CatStreaks,
			Icon: "🔥", RewardXP: 100,
			Predicate: func(s domain.UserStats) bool { return s.CurrentStreak >= 7 },
		},
		{
			ID: "streak_30", Name: "Monthly Machine", Category: domain.CatStreaks,
			Icon: "💪", RewardXP: 500,
			Predicate: func(s domain.UserStats) bool { return s.CurrentStreak >= 30 },
		},
		{
			ID: "streak_100", Name: "Centurion", Category: domain.CatStreaks,
			Icon: "🏛️", RewardXP: 2500,
			Predicate: func(s domain.UserStats) bool { return s.CurrentStreak >= 100 },
		},
		{
			ID: "best_streak_14", Name: "Fortnight Force", Category: domain.CatStreaks,
			Icon: "📅", RewardXP: 150,
			Predicate: func(s domain.UserStats) bool { return s.BestStreak >= 14 },
		},

		// ── Consistency ────────────────────────────────────────────────
		{
			ID: "checkins_30", Name: "Regular", Category: domain.CatConsistency,
			Icon: "📋", RewardXP: 150,
			Predicate: func(s domain.UserStats) bool { return s.TotalCheckIns >= 30 },
		},
		{
			ID: "checkins_100", Name: "Devoted", Category: domain.CatConsistency,
			Icon: "⚙️", RewardXP: 500,
			Predicate: func(s domain.UserStats) bool { return s.TotalCheckIns >= 100 },
		},
		{
			ID: "perfect_7", Name: "Perfectionist", Category: domain.CatConsistency,
			Icon: "✨", RewardXP: 300,
			Predicate: func(s domain.UserStats) bool { return s.PerfectDays >= 7 },
		},

		// ── Levels ─────────────────────────────────────────────────────
		{
			ID: "level_5", Name: "Kindling", Category: domain.CatLevels,
			Icon: "🕯️", RewardXP: 100,
			Predicate: func(s domain.UserStats) bool { return s.Level >= 5 },
		},
		{
			ID: "level_10", Name: "Rising Star", Category: domain.CatLevels,
			Icon: "🌅", RewardXP: 200,
			Predicate: func(s domain.UserStats) bool { return s.Level >= 10 },
		},
		{
			ID: "level_50", Name: "Veteran", Category: domain.CatLevels,
			Icon: "🎖️", RewardXP: 1000,
			Predicate: func(s domain.UserStats) bool { return s.Level >= 50 },
		},
		{
			ID: "level_100", Name: "Ember Founder", Category: domain.CatLevels,
			Icon: "👑", RewardXP: 10000,
			Predicate: func(s domain.UserStats) bool { return s.Level >= 100 },
		},
	}
}
