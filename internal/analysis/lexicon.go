package analysis

import (
	"math"
	"strings"

	"bankreviews/internal/domain"
)

// Lexicon scorer thresholds and tuning. Fixed constants of the design,
// not configurable per call.
const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05

	// normalizationAlpha maps the unbounded valence sum into [-1, 1]
	// via sum/sqrt(sum^2+alpha).
	normalizationAlpha = 15.0

	// negationDamp flips and dampens a valence when a negator appears in
	// the preceding window.
	negationDamp = -0.74

	// boosterIncrement is added (sign-aligned) once per booster in the
	// preceding window.
	boosterIncrement = 0.293

	// exclamationIncrement amplifies per trailing '!', capped.
	exclamationIncrement = 0.292
	exclamationCap       = 4

	negationWindow = 3
)

// LexiconScorer is the rule-based sentiment scorer: deterministic,
// stateless, no external I/O.
type LexiconScorer struct{}

func NewLexiconScorer() *LexiconScorer { return &LexiconScorer{} }

// Score computes the compound polarity and labels it. Confidence is the
// absolute compound. Empty-after-cleaning text scores 0.0 -> neutral.
func (s *LexiconScorer) Score(text string) domain.SentimentResult {
	compound := s.Compound(text)
	return domain.SentimentResult{
		Label: LabelFor(compound),
		Score: math.Abs(compound),
	}
}

// Compound returns the normalized polarity score in [-1, 1].
func (s *LexiconScorer) Compound(text string) float64 {
	cleaned := CleanText(text)
	if cleaned == "" {
		return 0.0
	}

	tokens := strings.Fields(cleaned)
	var sum float64
	for i, tok := range tokens {
		word := trimTokenPunct(tok)
		valence, ok := wordValence[word]
		if !ok {
			continue
		}

		// look back for negators and boosters
		for j := i - 1; j >= 0 && j >= i-negationWindow; j-- {
			prev := trimTokenPunct(tokens[j])
			if _, neg := negators[prev]; neg {
				valence *= negationDamp
				continue
			}
			if _, boost := boosters[prev]; boost {
				if valence > 0 {
					valence += boosterIncrement
				} else if valence < 0 {
					valence -= boosterIncrement
				}
			}
		}
		sum += valence
	}

	if sum != 0 {
		// punctuation emphasis: "great!!!" is stronger than "great"
		bangs := strings.Count(cleaned, "!")
		if bangs > exclamationCap {
			bangs = exclamationCap
		}
		emphasis := float64(bangs) * exclamationIncrement
		if sum > 0 {
			sum += emphasis
		} else {
			sum -= emphasis
		}
	}

	compound := sum / math.Sqrt(sum*sum+normalizationAlpha)
	if compound > 1 {
		compound = 1
	}
	if compound < -1 {
		compound = -1
	}
	return compound
}

// LabelFor maps a compound score to a polarity label with exact boundary
// behavior: >= 0.05 positive, <= -0.05 negative, else neutral.
func LabelFor(compound float64) domain.SentimentLabel {
	switch {
	case compound >= positiveThreshold:
		return domain.SentimentPositive
	case compound <= negativeThreshold:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

func trimTokenPunct(tok string) string {
	return strings.Trim(tok, "!?.,;:'\"()[]*")
}
