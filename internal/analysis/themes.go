package analysis

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"bankreviews/internal/domain"
)

// Signal is one matching rule for a theme. Single-word matches are checked
// against the cleaned token stream (with a trivial plural trim); matches
// containing a space are checked as substrings of the cleaned text.
type Signal struct {
	Match  string   `yaml:"match"`
	Weight *float64 `yaml:"weight"` // defaults to 1 when omitted
}

type Theme struct {
	Name    string   `yaml:"name"`
	Signals []Signal `yaml:"signals"`
}

// Taxonomy is the fixed theme set for a run. Declaration order matters:
// it breaks primary-theme ties and orders summary breakdowns.
type Taxonomy struct {
	Themes []Theme `yaml:"themes"`
}

// Validate enforces the startup invariants. Any violation is a
// configuration error and must abort before records are processed.
func (t Taxonomy) Validate() error {
	if len(t.Themes) == 0 {
		return fmt.Errorf("taxonomy: no themes declared")
	}
	seen := make(map[string]struct{}, len(t.Themes))
	for _, th := range t.Themes {
		name := strings.TrimSpace(th.Name)
		if name == "" {
			return fmt.Errorf("taxonomy: theme with empty name")
		}
		if name == domain.ThemeUncategorized {
			return fmt.Errorf("taxonomy: %q is reserved", domain.ThemeUncategorized)
		}
		// names are stored comma-joined; a comma would shatter on read
		if strings.Contains(name, ",") {
			return fmt.Errorf("taxonomy: theme %q must not contain a comma", name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("taxonomy: duplicate theme %q", name)
		}
		seen[name] = struct{}{}
		if len(th.Signals) == 0 {
			return fmt.Errorf("taxonomy: theme %q has no signals", name)
		}
		for _, sig := range th.Signals {
			if strings.TrimSpace(sig.Match) == "" {
				return fmt.Errorf("taxonomy: theme %q has an empty signal", name)
			}
			if sig.Weight != nil && *sig.Weight <= 0 {
				return fmt.Errorf("taxonomy: theme %q signal %q has non-positive weight", name, sig.Match)
			}
		}
	}
	return nil
}

// LoadTaxonomy reads a YAML taxonomy override file.
func LoadTaxonomy(path string) (Taxonomy, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Taxonomy{}, fmt.Errorf("read taxonomy: %w", err)
	}
	var t Taxonomy
	if err := yaml.Unmarshal(b, &t); err != nil {
		return Taxonomy{}, fmt.Errorf("parse taxonomy: %w", err)
	}
	return t, nil
}

func words(ws ...string) []Signal {
	out := make([]Signal, 0, len(ws))
	for _, w := range ws {
		out = append(out, Signal{Match: w})
	}
	return out
}

func phrase(m string, w float64) Signal {
	return Signal{Match: m, Weight: &w}
}

// DefaultTaxonomy is the built-in issue taxonomy for mobile-banking
// reviews. Phrase signals carry extra weight: a phrase hit is a stronger
// indication than a lone keyword.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{Themes: []Theme{
		{
			Name: "Account Access Issues",
			Signals: append(words(
				"login", "password", "authentication", "forgot", "reset",
				"register", "account", "access", "logout", "locked",
			), phrase("sign in", 2), phrase("sign up", 2), phrase("log in", 2)),
		},
		{
			Name: "Transaction Performance",
			Signals: append(words(
				"transfer", "slow", "speed", "loading", "payment",
				"transaction", "delay", "timeout", "processing", "pending",
			), phrase("takes forever", 2)),
		},
		{
			Name: "User Interface & Experience",
			Signals: append(words(
				"ui", "interface", "design", "layout", "navigation", "menu",
				"button", "screen", "display", "easy", "difficult", "confusing",
			), phrase("user friendly", 2)),
		},
		{
			Name: "Technical Issues",
			Signals: append(words(
				"crash", "bug", "error", "freeze", "hang", "broken",
				"problem", "issue", "glitch", "fail", "update",
			), phrase("not working", 2), phrase("stopped working", 2)),
		},
		{
			Name: "Customer Support",
			Signals: append(words(
				"support", "help", "service", "response", "contact",
				"assistance", "branch",
			), phrase("customer care", 2), phrase("call center", 2)),
		},
		{
			Name: "Feature Requests",
			Signals: append(words(
				"feature", "add", "need", "want", "wish", "should",
				"missing", "suggestion", "improve",
			), phrase("would like", 2), phrase("please add", 2)),
		},
		{
			Name: "Security & Privacy",
			Signals: append(words(
				"security", "safe", "secure", "privacy", "fingerprint",
				"biometric", "otp", "verification", "fraud", "scam",
			)),
		},
	}}
}

// ThemeAssigner maps cleaned review text onto the taxonomy.
type ThemeAssigner struct {
	taxonomy Taxonomy
}

// NewThemeAssigner validates the taxonomy up front; a malformed taxonomy
// never reaches record processing.
func NewThemeAssigner(t Taxonomy) (*ThemeAssigner, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &ThemeAssigner{taxonomy: t}, nil
}

func (a *ThemeAssigner) Taxonomy() Taxonomy { return a.taxonomy }

// Assign scores every theme against the cleaned text and returns the
// matched set ordered by weight (declaration order on ties), primary
// first. No match yields the explicit Uncategorized tag, never an empty
// primary.
func (a *ThemeAssigner) Assign(cleanText string) domain.ThemeAssignment {
	tokens := tokenSet(cleanText)

	type hit struct {
		name   string
		weight float64
		order  int
	}
	var hits []hit
	for i, th := range a.taxonomy.Themes {
		var w float64
		for _, sig := range th.Signals {
			if matchSignal(cleanText, tokens, sig.Match) {
				sw := 1.0
				if sig.Weight != nil {
					sw = *sig.Weight
				}
				w += sw
			}
		}
		if w > 0 {
			hits = append(hits, hit{name: th.Name, weight: w, order: i})
		}
	}

	if len(hits) == 0 {
		return domain.ThemeAssignment{Primary: domain.ThemeUncategorized}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].weight != hits[j].weight {
			return hits[i].weight > hits[j].weight
		}
		return hits[i].order < hits[j].order
	})

	matched := make([]string, len(hits))
	for i, h := range hits {
		matched[i] = h.name
	}
	return domain.ThemeAssignment{Primary: matched[0], Matched: matched}
}

func matchSignal(text string, tokens map[string]struct{}, match string) bool {
	if strings.ContainsRune(match, ' ') {
		return strings.Contains(text, match)
	}
	_, ok := tokens[match]
	return ok
}

// tokenSet indexes the cleaned text's tokens, adding singular forms so
// "transfers" still hits a "transfer" signal.
func tokenSet(cleanText string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(cleanText) {
		tok = trimTokenPunct(tok)
		if tok == "" {
			continue
		}
		set[tok] = struct{}{}
		if trimmed := strings.TrimSuffix(tok, "s"); trimmed != tok && len(trimmed) > 2 {
			set[trimmed] = struct{}{}
		}
	}
	return set
}
