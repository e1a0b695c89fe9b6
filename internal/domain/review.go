package domain

import "time"

// RawReview is a review exactly as the collector hands it over.
// Nothing is validated yet; the normalizer decides what survives.
type RawReview struct {
	Reviewer string // optional
	Text     string
	Rating   int
	Date     string // calendar date as supplied, expected ISO yyyy-mm-dd
	BankCode string
	Source   string // e.g. "Google Play"
}

// NormalizedReview is a RawReview that passed validation: text cleaned and
// lowercased, rating in [1,5], date parsed and decomposed.
type NormalizedReview struct {
	Reviewer string
	Text     string
	Rating   int
	Date     time.Time
	Year     int
	Month    int
	BankCode string
	Source   string
}

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

type SentimentResult struct {
	Label SentimentLabel `json:"label"`
	Score float64        `json:"score"`
}

// ThemeAssignment always carries a non-empty Primary; reviews matching no
// taxonomy entry get ThemeUncategorized with an empty Matched list.
type ThemeAssignment struct {
	Primary string   `json:"primary"`
	Matched []string `json:"matched,omitempty"`
}

const ThemeUncategorized = "Uncategorized"

// EnrichedReview is the pipeline's terminal record: one normalized review
// plus two independent sentiment results and a theme assignment. The model
// result is nil when inference was unavailable for this record.
type EnrichedReview struct {
	ID int64
	NormalizedReview
	Lexicon SentimentResult
	Model   *SentimentResult
	Themes  ThemeAssignment
}

// AuthoritativeSentiment picks the result aggregates count on: the model
// when present, else the lexicon. Neutral can only come from the lexicon
// side; the binary model never produces it.
func (e EnrichedReview) AuthoritativeSentiment() SentimentResult {
	if e.Model != nil {
		return *e.Model
	}
	return e.Lexicon
}
