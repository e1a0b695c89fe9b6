package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bankreviews/internal/analysis"
	"bankreviews/internal/domain"
)

type QueryService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
	taxonomy analysis.Taxonomy
}

func NewQueryService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration, tax analysis.Taxonomy) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl, taxonomy: tax}
}

// GetSummary computes the per-bank rollup on demand. Computed from stored
// rows rather than persisted, so it always reflects the latest run.
func (s *QueryService) GetSummary(ctx context.Context, code string) (domain.SourceSummary, error) {
	key := "summary:" + code
	var sum domain.SourceSummary
	if ok, _ := s.cache.Get(ctx, key, &sum); ok {
		return sum, nil
	}

	// resolve the bank first so an unknown code is a clean not-found
	if _, err := s.repo.GetBank(ctx, code); err != nil {
		return domain.SourceSummary{}, err
	}
	rs, err := s.repo.ListBySource(ctx, code)
	if err != nil {
		return domain.SourceSummary{}, err
	}
	sum, err = analysis.Summarize(code, rs, s.taxonomy)
	if err != nil {
		return domain.SourceSummary{}, err
	}
	_ = s.cache.Set(ctx, key, sum, int(s.cacheTTL.Seconds()))
	return sum, nil
}

func (s *QueryService) ListReviews(ctx context.Context, code string, pg domain.PageQuery) (domain.ReviewsPage, error) {
	key := fmt.Sprintf("reviews:%s:%d:%s", code, pg.Limit, pg.Sort)
	var out domain.ReviewsPage
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	if _, err := s.repo.GetBank(ctx, code); err != nil {
		return domain.ReviewsPage{}, err
	}
	rs, err := s.repo.ListReviews(ctx, code, pg)
	if err != nil {
		return domain.ReviewsPage{}, err
	}

	// copy slice to avoid aliasing the repo's backing array (prevents tests from mutating cached value)
	copyRS := deepCopyReviewsPage(rs)

	// optional size guard
	if b, _ := json.Marshal(copyRS); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, copyRS, int(s.cacheTTL.Seconds()))
	}
	return copyRS, nil
}

func deepCopyReviewsPage(in domain.ReviewsPage) domain.ReviewsPage {
	var out domain.ReviewsPage
	if n := len(in.Items); n > 0 {
		out.Items = make([]domain.EnrichedReview, n)
		copy(out.Items, in.Items)
	}
	return out
}
