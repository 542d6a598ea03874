package engagement

import (
	"math"
	"time"

	"github.com/ember-coach/ember/internal/domain"
)

// StreakConfig tunes the streak tracker. Thresholds are configuration,
// not derived values.
type StreakConfig struct {
	// ContinueThreshold is the minimum per-check-in completion rate for the
	// streak to continue rather than reset.
	ContinueThreshold float64

	// ProgressStepCap bounds how many progress points a single check-in can
	// add, so one perfect day cannot complete a goal outright.
	ProgressStepCap float64
}

// DefaultStreakConfig returns the product defaults: 60% to keep a streak
// alive, at most 5 progress points per day.
func DefaultStreakConfig() StreakConfig {
	return StreakConfig{
		ContinueThreshold: 0.6,
		ProgressStepCap:   5,
	}
}

// CompletionRate returns the fraction of a goal's habits present in the
// completed set, in [0,1]. Ids that don't belong to the goal are ignored.
// A goal with no habits has nothing to miss — rate 1.
func CompletionRate(goal domain.Goal, completedHabitIDs map[string]bool) float64 {
	if len(goal.Habits) == 0 {
		return 1.0
	}
	matched := 0
	for _, h := range goal.Habits {
		if completedHabitIDs[h.ID] {
			matched++
		}
	}
	return float64(matched) / float64(len(goal.Habits))
}

// ApplyCheckIn folds one day's check-in into a goal's streak state.
// Pure: no I/O, no clock reads. The caller must have deduped by (goal, day) —
// the store's unique index guarantees at-most-one application per goal-day.
func ApplyCheckIn(goal domain.Goal, completedHabitIDs map[string]bool, at time.Time, cfg StreakConfig) domain.Goal {
	rate := CompletionRate(goal, completedHabitIDs)

	// Reset habit flags for this cycle, then mark today's completions.
	for i := range goal.Habits {
		goal.Habits[i].Completed = completedHabitIDs[goal.Habits[i].ID]
	}

	if rate >= cfg.ContinueThreshold {
		goal.CurrentStreak++
	} else {
		goal.CurrentStreak = 0
	}
	if goal.CurrentStreak > goal.BestStreak {
		goal.BestStreak = goal.CurrentStreak
	}

	// Blend today's rate into the stored rate to dampen single-day noise.
	goal.CompletionRate = math.Round((goal.CompletionRate + rate*100) / 2)

	goal.Progress += rate * cfg.ProgressStepCap
	if goal.Progress > 100 {
		goal.Progress = 100
	}

	goal.LastCheckIn = at
	return goal
}

// streakMilestones are the streak lengths worth celebrating with bonus XP.
var streakMilestones = map[int]bool{7: true, 30: true, 100: true, 365: true}

// IsStreakMilestone reports whether a streak length is a milestone day.
func IsStreakMilestone(days int) bool {
	return streakMilestones[days]
}
