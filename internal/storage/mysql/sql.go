package mysql

const upsertBankSQL = `
INSERT INTO banks
  (code, name, app_id)
VALUES
  (?, ?, ?)
ON DUPLICATE KEY UPDATE
  name       = VALUES(name),
  app_id     = VALUES(app_id),
  updated_at = CURRENT_TIMESTAMP,
  id         = LAST_INSERT_ID(id)
`

// Reruns land on the (bank_id, text_hash, review_date) unique key; COALESCE
// keeps the stored value when a rerun carries NULL (e.g. model column after
// an inference outage).
const insertReviewsPrefix = "INSERT INTO reviews\n" +
	"  (bank_id, reviewer, text_hash, review_text, rating, review_date, review_year, review_month,\n" +
	"   sentiment_label_lexicon, sentiment_score_lexicon, sentiment_label_model, sentiment_score_model,\n" +
	"   themes, primary_theme, source)\nVALUES "

const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  reviewer                = COALESCE(VALUES(reviewer), reviews.reviewer),\n" +
	"  rating                  = VALUES(rating),\n" +
	"  sentiment_label_lexicon = VALUES(sentiment_label_lexicon),\n" +
	"  sentiment_score_lexicon = VALUES(sentiment_score_lexicon),\n" +
	"  sentiment_label_model   = COALESCE(VALUES(sentiment_label_model), reviews.sentiment_label_model),\n" +
	"  sentiment_score_model   = COALESCE(VALUES(sentiment_score_model), reviews.sentiment_score_model),\n" +
	"  themes                  = VALUES(themes),\n" +
	"  primary_theme           = VALUES(primary_theme),\n" +
	"  source                  = COALESCE(VALUES(source), reviews.source)\n"

const getBankSQL = `
SELECT id, code, name, app_id
FROM banks
WHERE code = ?
`

const reviewColumns = `
  r.id,
  r.reviewer,
  r.review_text,
  r.rating,
  r.review_date,
  r.review_year,
  r.review_month,
  r.sentiment_label_lexicon,
  r.sentiment_score_lexicon,
  r.sentiment_label_model,
  r.sentiment_score_model,
  r.themes,
  r.primary_theme,
  r.source,
  b.code
`

// Full scan for the aggregator: summaries need every stored row for the bank.
const listBySourceSQL = `
SELECT ` + reviewColumns + `
FROM reviews r
JOIN banks b ON b.id = r.bank_id
WHERE b.code = ?
ORDER BY r.review_date, r.id
`

const listReviewsSQL = `
SELECT ` + reviewColumns + `
FROM reviews r
JOIN banks b ON b.id = r.bank_id
WHERE b.code = ?
ORDER BY r.review_date DESC, r.id DESC
LIMIT ?
`
