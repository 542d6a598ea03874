package insight

import (
	"math"
	"sort"
	"time"

	"github.com/ember-coach/ember/internal/domain"
)

// ExtractFeatures folds a time-ordered event log into a fixed feature vector.
// Tolerates empty and single-element input: every statistic degrades to a
// defined neutral value instead of NaN. Events missing a timestamp are
// skipped — the log is append-only and a torn record is a store bug, not
// something to propagate into the features.
func ExtractFeatures(events []domain.UserEvent, asOf time.Time) domain.FeatureVector {
	valid := events[:0:0]
	for _, e := range events {
		if !e.Timestamp.IsZero() {
			valid = append(valid, e)
		}
	}

	fv := domain.FeatureVector{
		DaysSinceLastAction: domain.NoRecentAction,
		TotalActions:        len(valid),
	}
	if len(valid) == 0 {
		return fv
	}

	// Daily event counts across the observed window (zero days included).
	counts := dailyCounts(valid)
	fv.ObservedDays = activeDays(counts)
	fv.AvgDailyEngagement = mean(counts)
	fv.EngagementConsistency = consistency(counts, fv.ObservedDays)

	// Recency gap in whole days.
	last := valid[0].Timestamp
	for _, e := range valid[1:] {
		if e.Timestamp.After(last) {
			last = e.Timestamp
		}
	}
	gap := int(asOf.Sub(last).Hours() / 24)
	if gap < 0 {
		gap = 0
	}
	fv.DaysSinceLastAction = gap

	// Session duration: events without a recorded duration are excluded
	// from the mean, not treated as zero.
	var durations, sentiments, progress []float64
	for _, e := range valid {
		if e.HasDuration() {
			durations = append(durations, e.SessionSeconds)
		}
		if e.HasSentiment() {
			sentiments = append(sentiments, e.SentimentScore)
		}
		progress = append(progress, e.ProgressDelta)
	}
	fv.AvgSessionDuration = mean(durations)
	fv.SentimentTrend = halfTrend(sentiments)
	fv.ProgressTrend = halfTrend(progress)

	return fv
}

// dailyCounts buckets events by UTC calendar day and returns counts for
// every day in the span between the first and last event, inclusive.
func dailyCounts(events []domain.UserEvent) []float64 {
	byDay := make(map[string]int)
	var days []string
	for _, e := range events {
		key := e.Timestamp.UTC().Format("2006-01-02")
		if byDay[key] == 0 {
			days = append(days, key)
		}
		byDay[key]++
	}
	sort.Strings(days)

	first, _ := time.Parse("2006-01-02", days[0])
	lastDay, _ := time.Parse("2006-01-02", days[len(days)-1])
	span := int(lastDay.Sub(first).Hours()/24) + 1

	counts := make([]float64, 0, span)
	for d := 0; d < span; d++ {
		key := first.AddDate(0, 0, d).Format("2006-01-02")
		counts = append(counts, float64(byDay[key]))
	}
	return counts
}

// activeDays counts days with at least one event.
func activeDays(counts []float64) int {
	n := 0
	for _, c := range counts {
		if c > 0 {
			n++
		}
	}
	return n
}

// consistency is 1 minus the coefficient of variation of daily counts,
// clamped to [0,1]. Higher means a more regular cadence. Fewer than 2
// active days is insufficient data — returns 0.
func consistency(counts []float64, active int) float64 {
	if active < 2 {
		return 0
	}
	m := mean(counts)
	if m <= 0 {
		return 0
	}
	return clamp01(1 - stddev(counts, m)/m)
}

// halfTrend compares the second half of a series against the first:
// mean(second) - mean(first). Positive = improving. Fewer than 2 values
// is insufficient data — returns 0.
func halfTrend(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	mid := len(vals) / 2
	return mean(vals[mid:]) - mean(vals[:mid])
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func stddev(vals []float64, m float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vals)))
}
