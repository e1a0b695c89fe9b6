package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"bankreviews/internal/adapters/observability"
	"bankreviews/internal/analysis"
	"bankreviews/internal/domain"
)

// DropUnknownBank marks rows whose bank code is not registered; they
// cannot be persisted against the banks table.
const DropUnknownBank = "unknown_bank"

type EnrichmentOptions struct {
	// ModelBatchSize controls how many texts go into one inference call.
	ModelBatchSize int
	// Workers bounds concurrent model batches.
	Workers int
	// ModelFailureLimit: consecutive failed model batches before the run
	// stops calling the model and continues lexicon-only.
	ModelFailureLimit int
}

func (o EnrichmentOptions) withDefaults() EnrichmentOptions {
	if o.ModelBatchSize <= 0 {
		o.ModelBatchSize = 16
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.ModelFailureLimit <= 0 {
		o.ModelFailureLimit = 3
	}
	return o
}

// RunStats reports how much data one enrichment run actually achieved.
type RunStats struct {
	Collected          int
	Dropped            map[string]int
	Enriched           int
	Persisted          int
	ModelBatchFailures int
	ModelDisabled      bool
}

// EnrichmentService runs the batch pipeline: collect, normalize, score
// with both scorers, assign themes, persist. Per-record failures never
// abort the run; only configuration and storage failures do.
type EnrichmentService struct {
	collector domain.Collector
	model     domain.SentimentModel
	repo      domain.ReviewRepository
	cache     domain.Cache
	lexicon   *analysis.LexiconScorer
	themes    *analysis.ThemeAssigner
	norm      *analysis.Normalizer
	opts      EnrichmentOptions
}

func NewEnrichmentService(
	collector domain.Collector,
	model domain.SentimentModel,
	repo domain.ReviewRepository,
	cache domain.Cache,
	themes *analysis.ThemeAssigner,
	seen *analysis.SeenSet,
	opts EnrichmentOptions,
) *EnrichmentService {
	return &EnrichmentService{
		collector: collector,
		model:     model,
		repo:      repo,
		cache:     cache,
		lexicon:   analysis.NewLexiconScorer(),
		themes:    themes,
		norm:      analysis.NewNormalizer(seen),
		opts:      opts.withDefaults(),
	}
}

// Run processes one collected batch end to end for the given banks.
func (s *EnrichmentService) Run(ctx context.Context, banks []domain.Bank) (RunStats, error) {
	stats := RunStats{Dropped: map[string]int{}}

	// banks first: reviews reference them
	bankIDs := make(map[string]int64, len(banks))
	for _, b := range banks {
		id, err := s.repo.UpsertBank(ctx, b)
		if err != nil {
			return stats, fmt.Errorf("upsert bank %s: %w", b.Code, err)
		}
		bankIDs[b.Code] = id
	}

	raws, err := s.collector.Collect(ctx)
	if err != nil {
		return stats, fmt.Errorf("collect: %w", err)
	}
	stats.Collected = len(raws)
	observability.ObserveStage("collected", len(raws))

	// normalization is sequential: the seen-set makes it order-sensitive
	var normalized []domain.NormalizedReview
	for _, raw := range raws {
		nr, reason := s.norm.Normalize(raw)
		if reason == "" {
			if _, ok := bankIDs[nr.BankCode]; !ok {
				reason = DropUnknownBank
			}
		}
		if reason != "" {
			stats.Dropped[reason]++
			observability.ObserveDrop(reason)
			continue
		}
		normalized = append(normalized, nr)
	}

	enriched, modelFailures, modelDisabled, err := s.scoreAll(ctx, normalized)
	if err != nil {
		return stats, err
	}
	stats.Enriched = len(enriched)
	stats.ModelBatchFailures = modelFailures
	stats.ModelDisabled = modelDisabled
	observability.ObserveStage("enriched", len(enriched))

	// persist grouped by bank; evict caches the writes made stale
	byBank := make(map[string][]domain.EnrichedReview)
	for _, e := range enriched {
		byBank[e.BankCode] = append(byBank[e.BankCode], e)
	}
	for code, rs := range byBank {
		if err := s.repo.UpsertReviews(ctx, bankIDs[code], rs); err != nil {
			return stats, fmt.Errorf("upsert reviews for %s: %w", code, err)
		}
		stats.Persisted += len(rs)
		s.invalidateBank(ctx, code)
	}
	observability.ObserveStage("persisted", stats.Persisted)

	log.Info().
		Int("collected", stats.Collected).
		Int("enriched", stats.Enriched).
		Int("persisted", stats.Persisted).
		Int("model_batch_failures", stats.ModelBatchFailures).
		Bool("model_disabled", stats.ModelDisabled).
		Msg("enrichment run completed")
	return stats, nil
}

// scoreAll applies both scorers and the theme assigner. Lexicon and theme
// work is pure and cheap; model inference is batched and bounded by a
// weighted semaphore. Records in a failed model batch keep flowing with a
// nil model result.
func (s *EnrichmentService) scoreAll(ctx context.Context, normalized []domain.NormalizedReview) ([]domain.EnrichedReview, int, bool, error) {
	out := make([]domain.EnrichedReview, len(normalized))

	sem := semaphore.NewWeighted(int64(s.opts.Workers))
	var wg sync.WaitGroup

	var mu sync.Mutex
	failures := 0
	consecutive := 0
	modelDown := false

	for start := 0; start < len(normalized); start += s.opts.ModelBatchSize {
		end := start + s.opts.ModelBatchSize
		if end > len(normalized) {
			end = len(normalized)
		}

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, failures, modelDown, err
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			defer sem.Release(1)

			batch := normalized[start:end]
			texts := make([]string, len(batch))
			for i, nr := range batch {
				texts[i] = nr.Text
			}

			var modelResults []domain.SentimentResult
			mu.Lock()
			down := modelDown
			mu.Unlock()
			if !down {
				res, err := s.model.ScoreBatch(ctx, texts)
				mu.Lock()
				if err != nil {
					failures++
					consecutive++
					observability.ModelFailures.Inc()
					if consecutive >= s.opts.ModelFailureLimit && !modelDown {
						modelDown = true
						log.Warn().
							Int("consecutive_failures", consecutive).
							Msg("model unavailable, continuing lexicon-only")
					}
					log.Warn().Err(err).Int("batch_size", len(texts)).Msg("model batch failed")
				} else {
					consecutive = 0
					modelResults = res
				}
				mu.Unlock()
			}

			for i, nr := range batch {
				e := domain.EnrichedReview{
					NormalizedReview: nr,
					Lexicon:          s.lexicon.Score(nr.Text),
					Themes:           s.themes.Assign(nr.Text),
				}
				if modelResults != nil {
					r := modelResults[i]
					e.Model = &r
				}
				out[start+i] = e
			}
		}(start, end)
	}

	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, failures, modelDown, err
	}
	return out, failures, modelDown, nil
}

// invalidateBank drops the summary and the common review-list cache
// variants for one bank.
func (s *EnrichmentService) invalidateBank(ctx context.Context, code string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, "summary:"+code)
	for _, lim := range []int{50, 100, 200} {
		_ = s.cache.Del(ctx, fmt.Sprintf("reviews:%s:%d:%s", code, lim, "-review_date"))
	}
}
