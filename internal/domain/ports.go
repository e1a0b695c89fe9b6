package domain

import "context"

type ReviewRepository interface {
	// Write paths
	UpsertBank(ctx context.Context, b Bank) (int64, error)
	UpsertReviews(ctx context.Context, bankID int64, rs []EnrichedReview) error

	// Read paths
	GetBank(ctx context.Context, code string) (Bank, error)
	ListBySource(ctx context.Context, code string) ([]EnrichedReview, error)
	ListReviews(ctx context.Context, code string, pg PageQuery) (ReviewsPage, error)
}

// Collector supplies the raw records; the pipeline never fetches them
// itself.
type Collector interface {
	Collect(ctx context.Context) ([]RawReview, error)
}

// SentimentModel is the pre-trained binary classifier behind an interface
// so the pipeline can run against a deterministic stub in tests. A failed
// call returns ErrUnavailable; results align index-wise with texts.
type SentimentModel interface {
	ScoreBatch(ctx context.Context, texts []string) ([]SentimentResult, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type PageQuery struct {
	Limit int
	Sort  string
}

type ReviewsPage struct {
	Items []EnrichedReview
}
