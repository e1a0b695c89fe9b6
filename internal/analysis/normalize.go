package analysis

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"bankreviews/internal/domain"
)

// Drop reasons reported by the normalizer. These feed the dropped-row
// counters; they are never errors.
const (
	DropEmptyText = "empty_text"
	DropBadRating = "bad_rating"
	DropBadDate   = "bad_date"
	DropDuplicate = "duplicate"
)

// SeenSet is the shared duplicate-detection state for one processing run.
// It is passed in explicitly (no package-level state) and must outlive
// individual batches so cross-batch duplicates are still caught.
type SeenSet struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewSeenSet() *SeenSet {
	return &SeenSet{keys: make(map[string]struct{})}
}

// Add records key and reports whether it was new.
func (s *SeenSet) Add(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

// Normalizer validates and standardizes raw reviews. It is a filtering
// stage: invalid rows are dropped with a reason, never raised as errors.
type Normalizer struct {
	seen *SeenSet
}

func NewNormalizer(seen *SeenSet) *Normalizer {
	return &Normalizer{seen: seen}
}

// Normalize applies the validation rules in order and returns the cleaned
// record. reason is empty when the record survives.
func (n *Normalizer) Normalize(raw domain.RawReview) (domain.NormalizedReview, string) {
	if strings.TrimSpace(raw.Text) == "" {
		return domain.NormalizedReview{}, DropEmptyText
	}
	if raw.Rating < 1 || raw.Rating > 5 {
		return domain.NormalizedReview{}, DropBadRating
	}
	if !n.seen.Add(dedupeKey(raw.Text, raw.BankCode, raw.Date)) {
		return domain.NormalizedReview{}, DropDuplicate
	}

	date, ok := parseReviewDate(raw.Date)
	if !ok {
		return domain.NormalizedReview{}, DropBadDate
	}

	return domain.NormalizedReview{
		Reviewer: strings.TrimSpace(raw.Reviewer),
		Text:     CleanText(raw.Text),
		Rating:   raw.Rating,
		Date:     date,
		Year:     date.Year(),
		Month:    int(date.Month()),
		BankCode: raw.BankCode,
		Source:   raw.Source,
	}, ""
}

// CleanText trims, lowercases, and collapses internal whitespace.
func CleanText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// dedupeKey hashes the (text, source, date) triple. Raw text on purpose:
// dedupe identity is the record as submitted, not the cleaned form.
func dedupeKey(text, bankCode, date string) string {
	sum := sha1.Sum([]byte(text + "|" + bankCode + "|" + date))
	return hex.EncodeToString(sum[:])
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func parseReviewDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			// keep the calendar date only
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
