//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	server "bankreviews/internal/adapters/http_server"
	redisad "bankreviews/internal/adapters/redis"
	"bankreviews/internal/analysis"
	"bankreviews/internal/app"
	"bankreviews/internal/domain"
	mysqlrepo "bankreviews/internal/storage/mysql"
)

// ---------- helpers ----------

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func enriched(bank string, text string, day, rating int, label domain.SentimentLabel, themes ...string) domain.EnrichedReview {
	e := domain.EnrichedReview{
		NormalizedReview: domain.NormalizedReview{
			Text:     text,
			Rating:   rating,
			Date:     time.Date(2024, 7, day, 0, 0, 0, 0, time.UTC),
			Year:     2024,
			Month:    7,
			BankCode: bank,
			Source:   "Google Play",
		},
		Lexicon: domain.SentimentResult{Label: label, Score: 0.5},
	}
	if len(themes) > 0 {
		e.Themes = domain.ThemeAssignment{Primary: themes[0], Matched: themes}
	} else {
		e.Themes = domain.ThemeAssignment{Primary: domain.ThemeUncategorized}
	}
	return e
}

// ---------- the test ----------

func TestHTTP_EndToEnd_SummaryAndReviews(t *testing.T) {
	// Start isolated MySQL container
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=bankreviews",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "bankreviews")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// Seed one bank with a mixed set
	bankID, err := repo.UpsertBank(ctx, domain.Bank{Code: "BOA", Name: "Bank of Abyssinia", AppID: "com.boa.boaMobileBanking"})
	if err != nil {
		t.Fatalf("UpsertBank: %v", err)
	}
	rows := []domain.EnrichedReview{
		enriched("BOA", "great app works fine", 1, 5, domain.SentimentPositive),
		enriched("BOA", "transfers are slow", 2, 2, domain.SentimentNegative, "Transaction Performance"),
		enriched("BOA", "cannot login since the update", 3, 1, domain.SentimentNegative, "Account Access Issues", "Technical Issues"),
	}
	if err := repo.UpsertReviews(ctx, bankID, rows); err != nil {
		t.Fatalf("UpsertReviews: %v", err)
	}

	// Real cache (miniredis) and the real router
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	q := app.NewQueryService(repo, cache, 5*time.Minute, analysis.DefaultTaxonomy())

	srv := server.New()
	srv.MountHandlers(&server.Handlers{Q: q})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	// Summary endpoint
	res, err := http.Get(ts.URL + "/v1/banks/BOA/summary")
	if err != nil {
		t.Fatalf("GET summary: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("summary status %d", res.StatusCode)
	}
	etag := res.Header.Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}

	var sum domain.SourceSummary
	if err := json.NewDecoder(res.Body).Decode(&sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.BankCode != "BOA" || sum.Total != 3 || sum.Positive != 1 || sum.Negative != 2 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	want := 1.0 / 3.0
	if d := sum.Satisfaction - want; d > 1e-9 || d < -1e-9 {
		t.Fatalf("satisfaction: %v", sum.Satisfaction)
	}

	// Conditional revalidation
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/banks/BOA/summary", nil)
	req.Header.Set("If-None-Match", etag)
	res2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET summary (conditional): %v", err)
	}
	res2.Body.Close()
	if res2.StatusCode != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", res2.StatusCode)
	}

	// Reviews endpoint with limit
	res3, err := http.Get(ts.URL + "/v1/banks/BOA/reviews?limit=2")
	if err != nil {
		t.Fatalf("GET reviews: %v", err)
	}
	defer res3.Body.Close()
	if res3.StatusCode != http.StatusOK {
		t.Fatalf("reviews status %d", res3.StatusCode)
	}
	var page struct {
		Items []domain.EnrichedReview `json:"Items"`
	}
	if err := json.NewDecoder(res3.Body).Decode(&page); err != nil {
		t.Fatalf("decode reviews: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("limit ignored: %d items", len(page.Items))
	}

	// Unknown bank is a clean 404
	res4, err := http.Get(ts.URL + "/v1/banks/NOPE/summary")
	if err != nil {
		t.Fatalf("GET unknown: %v", err)
	}
	res4.Body.Close()
	if res4.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res4.StatusCode)
	}

	// Bad limit is rejected up front
	res5, err := http.Get(ts.URL + "/v1/banks/BOA/reviews?limit=9999")
	if err != nil {
		t.Fatalf("GET bad limit: %v", err)
	}
	res5.Body.Close()
	if res5.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res5.StatusCode)
	}
}
