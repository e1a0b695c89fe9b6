package main

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"bankreviews/internal/adapters/csvsource"
	"bankreviews/internal/adapters/inference"
	"bankreviews/internal/adapters/observability"
	redisad "bankreviews/internal/adapters/redis"
	"bankreviews/internal/analysis"
	"bankreviews/internal/app"
	"bankreviews/internal/shared"
	mysqlrepo "bankreviews/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("csv", cfg.ReviewsCSV).
		Str("inference", cfg.InferenceBase).
		Int("workers", cfg.Workers).
		Int("batch", cfg.ModelBatchSize).
		Msg("pipeline starting")

	observability.Serve()

	// taxonomy must be valid before any review is processed
	tax := analysis.DefaultTaxonomy()
	if cfg.ThemesFile != "" {
		var err error
		tax, err = analysis.LoadTaxonomy(cfg.ThemesFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.ThemesFile).Msg("load themes failed")
		}
	}
	assigner, err := analysis.NewThemeAssigner(tax)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid theme taxonomy")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	model, err := inference.New(cfg.InferenceBase, cfg.InferenceRPS, cfg.ModelTokenLimit)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize inference client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	collector := csvsource.New(cfg.ReviewsCSV)

	svc := app.NewEnrichmentService(collector, model, repo, cache, assigner, analysis.NewSeenSet(), app.EnrichmentOptions{
		ModelBatchSize:    cfg.ModelBatchSize,
		Workers:           cfg.Workers,
		ModelFailureLimit: cfg.ModelFailLimit,
	})

	stats, err := svc.Run(ctx, shared.Banks())
	if err != nil {
		log.Fatal().Err(err).Msg("pipeline run failed")
	}

	ev := log.Info().
		Int("collected", stats.Collected).
		Int("enriched", stats.Enriched).
		Int("persisted", stats.Persisted)
	for reason, n := range stats.Dropped {
		ev = ev.Int("dropped_"+reason, n)
	}
	ev.Msg("pipeline completed")
}
