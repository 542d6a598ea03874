// Package insight implements the behavioral side of the accountability
// engine: lexical sentiment scoring, feature extraction over the activity
// log, and drift risk prediction. Everything here is pure computation over
// already-fetched data — no I/O, no clocks except explicit parameters.
package insight

import "strings"

// Sentiment scoring constants. The scorer is a deliberately low-fidelity
// heuristic: it produces a numeric feature, not a judgment.
const (
	sentimentNeutral = 0.5
	sentimentStep    = 0.1
)

// positiveWords is the positive lexicon. Casual check-in vocabulary.
var positiveWords = map[string]bool{
	"good": true, "great": true, "happy": true, "proud": true, "excited": true,
	"amazing": true, "awesome": true, "love": true, "win": true, "progress": true,
	"better": true, "strong": true, "motivated": true, "energized": true,
	"accomplished": true, "focused": true, "confident": true, "grateful": true,
	"easy": true, "fun": true,
}

// negativeWords is the negative lexicon.
var negativeWords = map[string]bool{
	"bad": true, "sad": true, "tired": true, "stressed": true, "anxious": true,
	"hard": true, "difficult": true, "failed": true, "skip": true, "skipped": true,
	"overwhelmed": true, "frustrated": true, "stuck": true, "worried": true,
	"exhausted": true, "quit": true, "hate": true, "behind": true, "lazy": true,
	"guilty": true,
}

// ScoreSentiment turns free text into a bounded sentiment value in [0,1].
// Bag-of-words: neutral 0.5 baseline, +0.1 per positive-lexicon word,
// -0.1 per negative-lexicon word, clamped. Deterministic and stateless;
// empty or whitespace-only text yields the neutral baseline.
func ScoreSentiment(text string) float64 {
	score := sentimentNeutral
	for _, word := range tokenize(text) {
		if positiveWords[word] {
			score += sentimentStep
		} else if negativeWords[word] {
			score -= sentimentStep
		}
	}
	return clamp01(score)
}

// tokenize lowercases and splits text on non-letter runes.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '\''
	})
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
