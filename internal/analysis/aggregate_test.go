package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bankreviews/internal/analysis"
	"bankreviews/internal/domain"
)

var testTaxonomy = analysis.Taxonomy{Themes: []analysis.Theme{
	{Name: "Access", Signals: []analysis.Signal{{Match: "login"}}},
	{Name: "Speed", Signals: []analysis.Signal{{Match: "slow"}}},
}}

func review(bank string, rating int, label domain.SentimentLabel, themes ...string) domain.EnrichedReview {
	e := domain.EnrichedReview{
		NormalizedReview: domain.NormalizedReview{BankCode: bank, Rating: rating},
		Lexicon:          domain.SentimentResult{Label: label, Score: 0.5},
	}
	if len(themes) > 0 {
		e.Themes = domain.ThemeAssignment{Primary: themes[0], Matched: themes}
	} else {
		e.Themes = domain.ThemeAssignment{Primary: domain.ThemeUncategorized}
	}
	return e
}

func TestSummarize_CountsAndSatisfaction(t *testing.T) {
	rs := []domain.EnrichedReview{
		review("BOA", 5, domain.SentimentPositive, "Access"),
		review("BOA", 4, domain.SentimentPositive, "Speed"),
		review("BOA", 1, domain.SentimentNegative, "Speed"),
	}
	sum, err := analysis.Summarize("BOA", rs, testTaxonomy)
	require.NoError(t, err)

	assert.Equal(t, "BOA", sum.BankCode)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 2, sum.Positive)
	assert.Equal(t, 1, sum.Negative)
	assert.Equal(t, 0, sum.Neutral)
	assert.InDelta(t, 2.0/3.0, sum.Satisfaction, 1e-9)
	assert.InDelta(t, 10.0/3.0, sum.AvgRating, 1e-9)
}

func TestSummarize_ModelResultIsAuthoritative(t *testing.T) {
	r := review("CBE", 3, domain.SentimentPositive)
	r.Model = &domain.SentimentResult{Label: domain.SentimentNegative, Score: 0.9}

	sum, err := analysis.Summarize("CBE", []domain.EnrichedReview{r}, testTaxonomy)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Positive)
	assert.Equal(t, 1, sum.Negative)
}

func TestSummarize_NoPolarizedReviews(t *testing.T) {
	rs := []domain.EnrichedReview{
		review("CBE", 3, domain.SentimentNeutral),
		review("CBE", 3, domain.SentimentNeutral),
	}
	sum, err := analysis.Summarize("CBE", rs, testTaxonomy)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Neutral)
	assert.Zero(t, sum.Satisfaction)
}

func TestSummarize_Empty(t *testing.T) {
	sum, err := analysis.Summarize("CBE", nil, testTaxonomy)
	require.NoError(t, err)
	assert.Zero(t, sum.Total)
	assert.Zero(t, sum.Satisfaction)
	assert.Zero(t, sum.AvgRating)
	// breakdown still lists every theme
	require.Len(t, sum.Themes, 3)
	assert.Equal(t, "Access", sum.Themes[0].Theme)
	assert.Equal(t, "Speed", sum.Themes[1].Theme)
	assert.Equal(t, domain.ThemeUncategorized, sum.Themes[2].Theme)
}

func TestSummarize_ThemeCoverageCountsEveryMatch(t *testing.T) {
	rs := []domain.EnrichedReview{
		review("CBE", 4, domain.SentimentPositive, "Access", "Speed"),
		review("CBE", 2, domain.SentimentNegative, "Speed"),
		review("CBE", 3, domain.SentimentNeutral), // uncategorized
		review("CBE", 5, domain.SentimentPositive, "Access"),
	}
	sum, err := analysis.Summarize("CBE", rs, testTaxonomy)
	require.NoError(t, err)

	shares := map[string]float64{}
	for _, th := range sum.Themes {
		shares[th.Theme] = th.Percent
	}
	assert.InDelta(t, 50.0, shares["Access"], 1e-9)
	assert.InDelta(t, 50.0, shares["Speed"], 1e-9)
	assert.InDelta(t, 25.0, shares[domain.ThemeUncategorized], 1e-9)

	// multi-theme reviews make shares overlap; totals may exceed 100
	assert.InDelta(t, 125.0, shares["Access"]+shares["Speed"]+shares[domain.ThemeUncategorized], 1e-9)
}

func TestSummarize_RejectsMixedBanks(t *testing.T) {
	rs := []domain.EnrichedReview{
		review("CBE", 4, domain.SentimentPositive),
		review("BOA", 4, domain.SentimentPositive),
	}
	_, err := analysis.Summarize("CBE", rs, testTaxonomy)
	assert.Error(t, err)
}
