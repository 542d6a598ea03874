// Package metrics provides Prometheus metrics for Ember — counters, gauges,
// and histograms for check-ins, XP, streaks, and risk scoring.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Check-ins ──────────────────────────────────────────────────────────────

// CheckInsApplied tracks applied check-ins by outcome.
var CheckInsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ember",
	Name:      "checkins_applied_total",
	Help:      "Total applied check-ins.",
}, []string{"outcome"}) // "continued", "broken"

// CheckInsRejected tracks rejected check-ins by reason.
var CheckInsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ember",
	Name:      "checkins_rejected_total",
	Help:      "Total rejected check-ins.",
}, []string{"reason"}) // "duplicate", "not_found", "invalid"

// CompletionRate tracks per-check-in habit completion rates.
var CompletionRate = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "ember",
	Name:      "checkin_completion_rate",
	Help:      "Per-check-in habit completion rate.",
	Buckets:   []float64{0, 0.2, 0.4, 0.6, 0.8, 1.0},
})

// ─── XP / Levels ────────────────────────────────────────────────────────────

// XPAwarded tracks XP granted by action kind.
var XPAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ember",
	Name:      "xp_awarded_total",
	Help:      "Total XP awarded.",
}, []string{"action"})

// LevelUps tracks level-up events.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ember",
	Name:      "level_ups_total",
	Help:      "Total level-up events.",
})

// AchievementsUnlocked tracks achievement unlocks.
var AchievementsUnlocked = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ember",
	Name:      "achievements_unlocked_total",
	Help:      "Total achievements unlocked.",
})

// ─── Risk Scoring ───────────────────────────────────────────────────────────

// RiskScore tracks computed drift risk scores.
var RiskScore = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "ember",
	Name:      "risk_score",
	Help:      "Computed drift risk scores.",
	Buckets:   []float64{0.1, 0.3, 0.5, 0.7, 0.9},
})

// RiskPredictions tracks risk computations by band.
var RiskPredictions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ember",
	Name:      "risk_predictions_total",
	Help:      "Total risk predictions computed.",
}, []string{"band"}) // "low", "medium", "high"

// ─── Coaching ───────────────────────────────────────────────────────────────

// CoachReplies tracks coaching replies by source.
var CoachReplies = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ember",
	Name:      "coach_replies_total",
	Help:      "Total coaching replies generated.",
}, []string{"source"}) // "llm", "canned", "error"
