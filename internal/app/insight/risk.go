package insight

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ember-coach/ember/internal/domain"
)

// Config tunes the risk scorer. The weights and thresholds are product
// parameters inferred from observed behavior, not correctness invariants.
type Config struct {
	// Weights for each risk sub-factor. Should sum to 1.
	WeightConsistency float64
	WeightRecency     float64
	WeightProgress    float64
	WeightSentiment   float64

	// HighRiskThreshold: a drift date is predicted only at or above this.
	HighRiskThreshold float64

	// RecencySaturationDays: a gap this long counts as maximum recency risk.
	RecencySaturationDays float64

	// HealthyDailyEngagement: the event rate treated as fully engaged.
	HealthyDailyEngagement float64
}

// DefaultConfig returns the product defaults.
func DefaultConfig() Config {
	return Config{
		WeightConsistency:      0.3,
		WeightRecency:          0.3,
		WeightProgress:         0.2,
		WeightSentiment:        0.2,
		HighRiskThreshold:      0.7,
		RecencySaturationDays:  14,
		HealthyDailyEngagement: 3,
	}
}

// interventionCatalog maps each risk sub-factor to its coaching action.
// Ranked output is drawn from here by dominant factor.
var interventionCatalog = map[string]string{
	"consistency": "Suggest a fixed daily check-in time to rebuild cadence",
	"recency":     "Send a gentle reminder — it has been a while since the last check-in",
	"progress":    "Propose breaking the goal into smaller habits",
	"sentiment":   "Schedule an empathetic check-in about how things are going",
}

// PredictDrift maps a feature vector to a bounded risk score, an optional
// predicted drift date, and ranked intervention recommendations.
// Total over valid input: an empty feature vector yields a safe low-confidence
// prediction rather than an error. Non-positive horizons are rejected.
func PredictDrift(userID string, f domain.FeatureVector, horizonDays int, cfg Config) (domain.RiskPrediction, error) {
	if horizonDays <= 0 {
		return domain.RiskPrediction{}, fmt.Errorf("horizon %d: %w", horizonDays, domain.ErrInvalidHorizon)
	}

	now := time.Now()

	// Normalized sub-factor signals, each in [0,1]. Higher = riskier.
	factors := map[string]float64{
		"consistency": clamp01(1 - f.EngagementConsistency),
		"recency":     clamp01(float64(f.DaysSinceLastAction) / cfg.RecencySaturationDays),
		"progress":    clamp01(-f.ProgressTrend),
		"sentiment":   clamp01(-f.SentimentTrend * 2), // sentiment deltas are small; amplify
	}
	weights := map[string]float64{
		"consistency": cfg.WeightConsistency,
		"recency":     cfg.WeightRecency,
		"progress":    cfg.WeightProgress,
		"sentiment":   cfg.WeightSentiment,
	}

	// Engagement volume damps consistency risk slightly: a user checking in
	// many times a day with an uneven cadence is not drifting.
	engagement := clamp01(f.AvgDailyEngagement / cfg.HealthyDailyEngagement)
	factors["consistency"] *= 1 - 0.3*engagement

	score := 0.0
	for name, v := range factors {
		score += weights[name] * v
	}
	score = clamp01(score)

	pred := domain.RiskPrediction{
		UserID:          userID,
		RiskScore:       score,
		Confidence:      confidence(f),
		Recommendations: rankInterventions(factors, weights),
		ComputedAt:      now,
	}

	// Drift date only above the high-risk threshold, always inside the
	// horizon window. Higher risk pulls the date closer.
	if score >= cfg.HighRiskThreshold {
		days := int(math.Round(float64(horizonDays) * (1 - score)))
		if days < 1 {
			days = 1
		}
		if days > horizonDays {
			days = horizonDays
		}
		d := now.AddDate(0, 0, days)
		pred.PredictedDriftDate = &d
	}

	return pred, nil
}

// confidence reflects data sufficiency: low for sparse history, rising with
// observed actions and days. Always in [0,1].
func confidence(f domain.FeatureVector) float64 {
	actionPart := clamp01(float64(f.TotalActions) / 30)
	dayPart := clamp01(float64(f.ObservedDays) / 14)
	return clamp01(0.6*actionPart + 0.4*dayPart)
}

// rankInterventions orders the catalog by weighted factor contribution,
// strongest first, dropping factors that contribute nothing.
func rankInterventions(factors, weights map[string]float64) []string {
	type ranked struct {
		name  string
		score float64
	}
	var rs []ranked
	for name, v := range factors {
		if c := weights[name] * v; c > 0 {
			rs = append(rs, ranked{name, c})
		}
	}
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].score != rs[j].score {
			return rs[i].score > rs[j].score
		}
		return rs[i].name < rs[j].name // deterministic tie-break
	})

	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, interventionCatalog[r.name])
	}
	return out
}
