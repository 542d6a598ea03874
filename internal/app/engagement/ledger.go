// Package engagement implements the Ember accountability engine's XP and
// streak systems. The scoring functions are pure — services wrap them with
// persistence.
// Design rule: real accountability, not dark patterns.
package engagement

import (
	"fmt"

	"github.com/ember-coach/ember/internal/domain"
	"github.com/ember-coach/ember/internal/infra/sqlite"
)

// MaxLevel caps the level curve.
const MaxLevel = 100

// XPForLevel returns the cumulative XP required to reach a given level.
// Linear curve: 100 XP per level, T(1) = 0. The curve is a product-tuning
// parameter — swap the body, keep it strictly increasing.
func XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	return int64(100 * (level - 1))
}

// LevelForXP returns the level for a given XP amount.
// Iterates upward until cumulative XP exceeds the target.
func LevelForXP(xp int64) int {
	level := 1
	for level < MaxLevel {
		if xp < XPForLevel(level+1) {
			return level
		}
		level++
	}
	return MaxLevel
}

// AwardXP applies a non-negative XP award to a user's state and recomputes
// every derived field from the new total. Pure and total over valid input.
// A zero award is a valid no-op. Negative amounts are rejected, never
// silently corrected.
func AwardXP(state domain.UserXP, amount int64) (domain.UserXP, error) {
	if amount < 0 {
		return state, fmt.Errorf("award %d: %w", amount, domain.ErrNegativeAward)
	}

	state.TotalXP += amount
	state.Level = LevelForXP(state.TotalXP)
	state.XPForCurrentLevel = XPForLevel(state.Level)
	state.XPForNextLevel = XPForLevel(state.Level + 1)

	span := state.XPForNextLevel - state.XPForCurrentLevel
	if span <= 0 {
		state.Progress = 1.0 // Max level
	} else {
		state.Progress = float64(state.TotalXP-state.XPForCurrentLevel) / float64(span)
	}
	if state.Progress < 0 {
		state.Progress = 0
	}
	if state.Progress > 1 {
		state.Progress = 1
	}

	return state, nil
}

// ZeroXP returns the well-defined zero state for a user.
// Used by the get-or-default path at the store boundary.
func ZeroXP(userID string) domain.UserXP {
	state, _ := AwardXP(domain.UserXP{UserID: userID}, 0)
	return state
}

// XPService persists XP state around the pure ledger.
type XPService struct {
	db *sqlite.DB
}

// NewXPService creates an XP service.
func NewXPService(db *sqlite.DB) *XPService {
	return &XPService{db: db}
}

// Current returns the user's XP state, conjuring the zero state on first read.
func (x *XPService) Current(userID string) (domain.UserXP, error) {
	state, found, err := x.db.GetUserXP(userID)
	if err != nil {
		return domain.UserXP{}, fmt.Errorf("get xp: %w", err)
	}
	if !found {
		return ZeroXP(userID), nil
	}
	// Re-derive level fields from the stored total so a curve change can
	// never leave persisted state inconsistent.
	state, err = AwardXP(state, 0)
	return state, err
}

// Award adds XP for an action and returns (newState, leveledUp, error).
func (x *XPService) Award(userID string, action domain.XPAction) (domain.UserXP, bool, error) {
	return x.AwardAmount(userID, domain.RewardXP[action])
}

// AwardAmount adds an explicit XP amount and persists the result.
func (x *XPService) AwardAmount(userID string, amount int64) (domain.UserXP, bool, error) {
	current, err := x.Current(userID)
	if err != nil {
		return domain.UserXP{}, false, err
	}

	oldLevel := current.Level
	next, err := AwardXP(current, amount)
	if err != nil {
		return domain.UserXP{}, false, err
	}

	if err := x.db.SaveUserXP(next); err != nil {
		return domain.UserXP{}, false, fmt.Errorf("save xp: %w", err)
	}
	return next, next.Level > oldLevel, nil
}

// XPToNextLevel returns XP remaining until the user's next level.
func (x *XPService) XPToNextLevel(userID string) (int64, error) {
	current, err := x.Current(userID)
	if err != nil {
		return 0, err
	}
	if current.Level >= MaxLevel {
		return 0, nil
	}
	remaining := current.XPForNextLevel - current.TotalXP
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
