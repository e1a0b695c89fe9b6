package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bankreviews/internal/analysis"
	"bankreviews/internal/domain"
)

func TestLexicon_Polarity(t *testing.T) {
	s := analysis.NewLexiconScorer()

	cases := []struct {
		text string
		want domain.SentimentLabel
	}{
		{"great app, works perfectly", domain.SentimentPositive},
		{"terrible, keeps crashing and the worst support", domain.SentimentNegative},
		{"this app is not good", domain.SentimentNegative},
		{"transferred money to my brother yesterday", domain.SentimentNeutral},
	}
	for _, tc := range cases {
		got := s.Score(tc.text)
		assert.Equal(t, tc.want, got.Label, "text: %q", tc.text)
	}
}

func TestLexicon_EmptyTextIsNeutralZero(t *testing.T) {
	s := analysis.NewLexiconScorer()
	for _, text := range []string{"", "   ", "\t\n"} {
		got := s.Score(text)
		assert.Equal(t, domain.SentimentNeutral, got.Label)
		assert.Zero(t, got.Score)
	}
}

func TestLexicon_LabelBoundaries(t *testing.T) {
	assert.Equal(t, domain.SentimentPositive, analysis.LabelFor(0.05))
	assert.Equal(t, domain.SentimentNegative, analysis.LabelFor(-0.05))
	assert.Equal(t, domain.SentimentNeutral, analysis.LabelFor(0.049))
	assert.Equal(t, domain.SentimentNeutral, analysis.LabelFor(-0.049))
	assert.Equal(t, domain.SentimentNeutral, analysis.LabelFor(0))
	assert.Equal(t, domain.SentimentPositive, analysis.LabelFor(1))
	assert.Equal(t, domain.SentimentNegative, analysis.LabelFor(-1))
}

func TestLexicon_CompoundBoundedAndDeterministic(t *testing.T) {
	s := analysis.NewLexiconScorer()
	texts := []string{
		"amazing excellent great perfect love",
		"horrible terrible awful worst hate",
		"good but slow",
	}
	for _, text := range texts {
		a := s.Compound(text)
		b := s.Compound(text)
		assert.Equal(t, a, b, "text: %q", text)
		assert.GreaterOrEqual(t, a, -1.0)
		assert.LessOrEqual(t, a, 1.0)
	}
}

func TestLexicon_BoosterAndExclamationRaiseIntensity(t *testing.T) {
	s := analysis.NewLexiconScorer()

	plain := s.Compound("good app")
	boosted := s.Compound("very good app")
	assert.Greater(t, boosted, plain)

	shouted := s.Compound("good app!!!")
	assert.Greater(t, shouted, plain)
}

func TestLexicon_NegationFlipsValence(t *testing.T) {
	s := analysis.NewLexiconScorer()

	assert.Greater(t, s.Compound("good"), 0.0)
	assert.Less(t, s.Compound("not good"), 0.0)
	assert.Less(t, s.Compound("bad"), 0.0)
	assert.Greater(t, s.Compound("not bad"), 0.0)
}

func TestLexicon_ConfidenceIsAbsoluteCompound(t *testing.T) {
	s := analysis.NewLexiconScorer()
	got := s.Score("worst app ever")
	assert.Equal(t, domain.SentimentNegative, got.Label)
	assert.Greater(t, got.Score, 0.0)
}
