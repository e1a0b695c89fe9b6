package analysis

import (
	"fmt"

	"bankreviews/internal/domain"
)

// Summarize reduces one bank's full enriched set into a SourceSummary.
// It is a barrier step: callers must pass the complete set, not a stream.
// Sentiment counts use each review's authoritative result (model when
// present, lexicon otherwise). Theme coverage counts a review once per
// theme appearing anywhere in its matched list, so a review can sit in
// several buckets.
func Summarize(bankCode string, reviews []domain.EnrichedReview, taxonomy Taxonomy) (domain.SourceSummary, error) {
	sum := domain.SourceSummary{BankCode: bankCode}

	themeCounts := make(map[string]int, len(taxonomy.Themes)+1)
	var ratingTotal int

	for _, r := range reviews {
		if r.BankCode != bankCode {
			return domain.SourceSummary{}, fmt.Errorf("summarize %s: review belongs to %s", bankCode, r.BankCode)
		}
		sum.Total++
		ratingTotal += r.Rating

		switch r.AuthoritativeSentiment().Label {
		case domain.SentimentPositive:
			sum.Positive++
		case domain.SentimentNegative:
			sum.Negative++
		default:
			sum.Neutral++
		}

		if len(r.Themes.Matched) == 0 {
			themeCounts[domain.ThemeUncategorized]++
			continue
		}
		for _, th := range r.Themes.Matched {
			themeCounts[th]++
		}
	}

	if denom := sum.Positive + sum.Negative; denom > 0 {
		sum.Satisfaction = float64(sum.Positive) / float64(denom)
	}
	if sum.Total > 0 {
		sum.AvgRating = float64(ratingTotal) / float64(sum.Total)
	}

	// complete breakdown in declaration order, Uncategorized last
	sum.Themes = make([]domain.ThemeShare, 0, len(taxonomy.Themes)+1)
	appendShare := func(name string) {
		var pct float64
		if sum.Total > 0 {
			pct = float64(themeCounts[name]) / float64(sum.Total) * 100
		}
		sum.Themes = append(sum.Themes, domain.ThemeShare{Theme: name, Percent: pct})
	}
	for _, th := range taxonomy.Themes {
		appendShare(th.Name)
	}
	appendShare(domain.ThemeUncategorized)

	return sum, nil
}
