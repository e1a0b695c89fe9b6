package domain

type Bank struct {
	ID    int64
	Code  string // short code, e.g. "CBE", "BOA", "Dashen"
	Name  string
	AppID string // store listing identifier the reviews came from
}

// ThemeShare is one slice of a summary's theme breakdown. Percent counts
// reviews where the theme appears anywhere in Matched, so shares across
// themes may sum above 100.
type ThemeShare struct {
	Theme   string  `json:"theme"`
	Percent float64 `json:"percent"`
}

// SourceSummary is the per-bank aggregate, recomputed from the full
// enriched set on demand.
type SourceSummary struct {
	BankCode     string       `json:"bank_code"`
	Total        int          `json:"total"`
	Positive     int          `json:"positive"`
	Negative     int          `json:"negative"`
	Neutral      int          `json:"neutral"`
	Satisfaction float64      `json:"satisfaction"` // positive/(positive+negative); 0 when undefined
	AvgRating    float64      `json:"avg_rating"`
	Themes       []ThemeShare `json:"themes"`
}
