package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "bankreviews/internal/adapters/http_server"
	"bankreviews/internal/adapters/observability"
	redisad "bankreviews/internal/adapters/redis"
	"bankreviews/internal/analysis"
	"bankreviews/internal/app"
	"bankreviews/internal/shared"
	mysqlrepo "bankreviews/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// taxonomy drives the summary's theme breakdown; bad files fail fast
	tax := analysis.DefaultTaxonomy()
	if cfg.ThemesFile != "" {
		var err error
		tax, err = analysis.LoadTaxonomy(cfg.ThemesFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.ThemesFile).Msg("load themes failed")
		}
	}
	if err := tax.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid theme taxonomy")
	}

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	q := app.NewQueryService(repo, cache, cfg.CacheTTL, tax)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
