package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// XP ledger errors
	ErrNegativeAward = errors.New("xp award amount must be non-negative")

	// Goal / check-in errors
	ErrGoalNotFound     = errors.New("goal not found")
	ErrDuplicateCheckIn = errors.New("check-in already recorded for this goal and day")
	ErrMissingTimestamp = errors.New("event is missing a timestamp")

	// Risk scorer errors
	ErrInvalidHorizon = errors.New("prediction horizon must be a positive number of days")
)
