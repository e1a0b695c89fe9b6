package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"bankreviews/internal/domain"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	InferenceBase   string
	InferenceRPS    int
	ModelTokenLimit int
	ModelBatchSize  int
	ModelFailLimit  int

	Workers    int
	ReviewsCSV string
	ThemesFile string
	CacheTTL   time.Duration
}

func Load() Config {
	_ = godotenv.Load() // .env is optional; real env always wins

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/bankreviews?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisPass:   env("REDIS_PASSWORD", ""),

		InferenceBase:   env("INFERENCE_BASE_URL", "http://localhost:8501"),
		InferenceRPS:    atoi("INFERENCE_RPS", 5),
		ModelTokenLimit: atoi("MODEL_TOKEN_LIMIT", 512),
		ModelBatchSize:  atoi("MODEL_BATCH_SIZE", 16),
		ModelFailLimit:  atoi("MODEL_FAILURE_LIMIT", 3),

		Workers:    atoi("PIPELINE_WORKERS", 4),
		ReviewsCSV: env("REVIEWS_CSV", "data/reviews.csv"),
		ThemesFile: env("THEMES_FILE", ""),
		CacheTTL:   time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	if c.InferenceBase == "" {
		log.Warn().Msg("INFERENCE_BASE_URL is empty; runs will be lexicon-only")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Banks returns the tracked banks. BANKS overrides the default set with
// "CODE|Name|app.id" entries separated by semicolons.
func Banks() []domain.Bank {
	raw := os.Getenv("BANKS")
	if raw == "" {
		return []domain.Bank{
			{Code: "CBE", Name: "Commercial Bank of Ethiopia", AppID: "com.combanketh.mobilebanking"},
			{Code: "BOA", Name: "Bank of Abyssinia", AppID: "com.boa.boaMobileBanking"},
			{Code: "DASHEN", Name: "Dashen Bank", AppID: "com.dashen.dashensuperapp"},
		}
	}
	var out []domain.Bank
	for _, entry := range strings.Split(raw, ";") {
		parts := strings.Split(strings.TrimSpace(entry), "|")
		if len(parts) < 2 || parts[0] == "" {
			log.Warn().Str("entry", entry).Msg("skipping malformed BANKS entry")
			continue
		}
		b := domain.Bank{Code: strings.ToUpper(parts[0]), Name: parts[1]}
		if len(parts) > 2 {
			b.AppID = parts[2]
		}
		out = append(out, b)
	}
	return out
}
