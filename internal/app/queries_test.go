package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"bankreviews/internal/analysis"
	"bankreviews/internal/app"
	"bankreviews/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	bank domain.Bank
	all  []domain.EnrichedReview
	page domain.ReviewsPage
}

func (f *fakeRepo) UpsertBank(ctx context.Context, b domain.Bank) (int64, error) { return 1, nil }
func (f *fakeRepo) UpsertReviews(ctx context.Context, bankID int64, rs []domain.EnrichedReview) error {
	return nil
}
func (f *fakeRepo) GetBank(ctx context.Context, code string) (domain.Bank, error) {
	if code != f.bank.Code {
		return domain.Bank{}, domain.ErrNotFound
	}
	return f.bank, nil
}
func (f *fakeRepo) ListBySource(ctx context.Context, code string) ([]domain.EnrichedReview, error) {
	return f.all, nil
}
func (f *fakeRepo) ListReviews(ctx context.Context, code string, pg domain.PageQuery) (domain.ReviewsPage, error) {
	return f.page, nil
}

type fakeCache struct {
	store map[string]any
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.SourceSummary:
		*d = v.(domain.SourceSummary)
	case *domain.ReviewsPage:
		*d = v.(domain.ReviewsPage)
	}
	return true, nil
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

func enriched(bank string, rating int, label domain.SentimentLabel) domain.EnrichedReview {
	return domain.EnrichedReview{
		NormalizedReview: domain.NormalizedReview{BankCode: bank, Rating: rating, Text: "t"},
		Lexicon:          domain.SentimentResult{Label: label, Score: 0.4},
		Themes:           domain.ThemeAssignment{Primary: domain.ThemeUncategorized},
	}
}

// ---- tests ----

func TestGetSummary_CacheMissThenHit(t *testing.T) {
	repo := &fakeRepo{
		bank: domain.Bank{ID: 1, Code: "BOA", Name: "Bank of Abyssinia"},
		all: []domain.EnrichedReview{
			enriched("BOA", 5, domain.SentimentPositive),
			enriched("BOA", 4, domain.SentimentPositive),
			enriched("BOA", 1, domain.SentimentNegative),
		},
	}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute, analysis.DefaultTaxonomy())

	// Miss (first time, populates cache)
	sum, err := q.GetSummary(context.Background(), "BOA")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if sum.Total != 3 || sum.Positive != 2 || sum.Negative != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	want := 2.0 / 3.0
	if diff := sum.Satisfaction - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("satisfaction: got %v want %v", sum.Satisfaction, want)
	}

	// Mutate repo to ensure second read indeed comes from cache
	repo.all = nil

	sum2, err := q.GetSummary(context.Background(), "BOA")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if sum2.Total != 3 {
		t.Fatalf("expected cached summary, got %+v", sum2)
	}
}

func TestGetSummary_UnknownBank(t *testing.T) {
	repo := &fakeRepo{bank: domain.Bank{ID: 1, Code: "CBE"}}
	q := app.NewQueryService(repo, &fakeCache{}, time.Minute, analysis.DefaultTaxonomy())

	_, err := q.GetSummary(context.Background(), "NOPE")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListReviews_Cache(t *testing.T) {
	repo := &fakeRepo{
		bank: domain.Bank{ID: 1, Code: "CBE"},
		page: domain.ReviewsPage{Items: []domain.EnrichedReview{
			enriched("CBE", 4, domain.SentimentPositive),
		}},
	}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute, analysis.DefaultTaxonomy())

	out, err := q.ListReviews(context.Background(), "CBE", domain.PageQuery{Limit: 10})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out.Items) != 1 || out.Items[0].Rating != 4 {
		t.Fatalf("unexpected reviews: %+v", out.Items)
	}

	// Change repo, call again -> should come from cache
	repo.page.Items[0].Rating = 1
	out2, _ := q.ListReviews(context.Background(), "CBE", domain.PageQuery{Limit: 10})
	if out2.Items[0].Rating != 4 {
		t.Fatalf("expected cached rating 4, got %d", out2.Items[0].Rating)
	}
}
