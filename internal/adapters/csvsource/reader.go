package csvsource

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"bankreviews/internal/domain"
)

// column aliases: the staged export has drifted over time, so accept the
// names each iteration used.
var columnAliases = map[string][]string{
	"reviewer": {"reviewer", "author", "user_name", "username"},
	"text":     {"review_text", "text", "review", "content"},
	"rating":   {"rating", "stars", "score"},
	"date":     {"review_date", "date", "at"},
	"bank":     {"bank_code", "bank", "bank_name"},
	"source":   {"source", "platform"},
}

// Reader collects raw reviews from a staged CSV export. It performs no
// validation beyond shape; bad rows are the normalizer's job.
type Reader struct {
	path string
}

func New(path string) *Reader { return &Reader{path: path} }

func (r *Reader) Collect(ctx context.Context) ([]domain.RawReview, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open reviews csv: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1 // ragged rows surface as validation drops downstream

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var out []domain.RawReview
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		out = append(out, domain.RawReview{
			Reviewer: field(rec, cols["reviewer"]),
			Text:     field(rec, cols["text"]),
			Rating:   parseRating(field(rec, cols["rating"])),
			Date:     field(rec, cols["date"]),
			BankCode: field(rec, cols["bank"]),
			Source:   field(rec, cols["source"]),
		})
	}
	return out, nil
}

// resolveColumns maps logical fields to header positions. text, rating,
// date, and bank are required; the rest are optional.
func resolveColumns(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	cols := make(map[string]int, len(columnAliases))
	for name, aliases := range columnAliases {
		cols[name] = -1
		for _, a := range aliases {
			if i, ok := index[a]; ok {
				cols[name] = i
				break
			}
		}
	}
	for _, required := range []string{"text", "rating", "date", "bank"} {
		if cols[required] < 0 {
			return nil, fmt.Errorf("reviews csv: missing %s column (header: %s)", required, strings.Join(header, ","))
		}
	}
	return cols, nil
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// parseRating accepts "4" and "4.0" alike; anything else becomes 0 and is
// dropped by the normalizer's range check.
func parseRating(s string) int {
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		return int(f)
	}
	return 0
}
