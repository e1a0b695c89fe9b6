package mysql

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"strings"
	"time"

	"bankreviews/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// textHash keys dedupe across runs; hashing the review text keeps the
// unique index small regardless of review length.
func textHash(text string) string {
	sum := sha1.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// UpsertBank returns the bank's surrogate id whether the row was inserted
// or already existed (the LAST_INSERT_ID(id) trick in the upsert).
func (r *Repo) UpsertBank(ctx context.Context, b domain.Bank) (int64, error) {
	res, err := r.db.ExecContext(ctx, upsertBankSQL, b.Code, b.Name, b.AppID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) UpsertReviews(ctx context.Context, bankID int64, rs []domain.EnrichedReview) error {
	if len(rs) == 0 {
		return nil
	}
	const cols = 15
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*cols)
	for _, rv := range rs {
		values = append(values, "(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)")

		var modelLabel, modelScore any
		if rv.Model != nil {
			modelLabel = string(rv.Model.Label)
			modelScore = rv.Model.Score
		}
		args = append(args,
			bankID,
			nullStr(rv.Reviewer),
			textHash(rv.Text),
			rv.Text,
			rv.Rating,
			rv.Date.Format("2006-01-02"),
			rv.Year,
			rv.Month,
			string(rv.Lexicon.Label),
			rv.Lexicon.Score,
			modelLabel,
			modelScore,
			strings.Join(rv.Themes.Matched, ", "),
			rv.Themes.Primary,
			nullStr(rv.Source),
		)
	}
	sqlStr := insertReviewsPrefix + strings.Join(values, ",") + insertReviewsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) GetBank(ctx context.Context, code string) (domain.Bank, error) {
	var b domain.Bank
	var appID sql.NullString
	err := r.db.QueryRowContext(ctx, getBankSQL, code).Scan(&b.ID, &b.Code, &b.Name, &appID)
	if err == sql.ErrNoRows {
		return domain.Bank{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Bank{}, err
	}
	if appID.Valid {
		b.AppID = appID.String
	}
	return b, nil
}

func (r *Repo) ListBySource(ctx context.Context, code string) ([]domain.EnrichedReview, error) {
	rows, err := r.db.QueryContext(ctx, listBySourceSQL, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReviews(rows)
}

func (r *Repo) ListReviews(ctx context.Context, code string, pg domain.PageQuery) (domain.ReviewsPage, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsSQL, code, pg.Limit)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	defer rows.Close()

	out, err := scanReviews(rows)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	return domain.ReviewsPage{Items: out}, nil
}

func scanReviews(rows *sql.Rows) ([]domain.EnrichedReview, error) {
	var out []domain.EnrichedReview
	for rows.Next() {
		var (
			rv         domain.EnrichedReview
			reviewer   sql.NullString
			date       time.Time
			modelLabel sql.NullString
			modelScore sql.NullFloat64
			themes     sql.NullString
			source     sql.NullString
			lexLabel   string
		)
		if err := rows.Scan(
			&rv.ID,
			&reviewer,
			&rv.Text,
			&rv.Rating,
			&date,
			&rv.Year,
			&rv.Month,
			&lexLabel,
			&rv.Lexicon.Score,
			&modelLabel,
			&modelScore,
			&themes,
			&rv.Themes.Primary,
			&source,
			&rv.BankCode,
		); err != nil {
			return nil, err
		}
		rv.Date = date
		rv.Lexicon.Label = domain.SentimentLabel(lexLabel)
		if reviewer.Valid {
			rv.Reviewer = reviewer.String
		}
		if modelLabel.Valid && modelScore.Valid {
			rv.Model = &domain.SentimentResult{
				Label: domain.SentimentLabel(modelLabel.String),
				Score: modelScore.Float64,
			}
		}
		if themes.Valid && strings.TrimSpace(themes.String) != "" {
			for _, t := range strings.Split(themes.String, ",") {
				rv.Themes.Matched = append(rv.Themes.Matched, strings.TrimSpace(t))
			}
		}
		if source.Valid {
			rv.Source = source.String
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
