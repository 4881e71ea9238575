// Package sentiment maps article text to bounded sentiment scores using a
// finance-weighted word polarity lexicon, and aggregates scores across a
// collection of articles.
package sentiment

import (
	"math"
	"strings"

	"github.com/aristath/spyglass/pkg/formulas"
)

// Label classifies a score.
type Label string

const (
	LabelBullish Label = "bullish"
	LabelBearish Label = "bearish"
	LabelNeutral Label = "neutral"
)

// Score is the per-text sentiment result.
type Score struct {
	Score       float64 `json:"score"`       // Clamped to [-5, 5]
	Comparative float64 `json:"comparative"` // Raw score per token
	Label       Label   `json:"label"`
	Confidence  float64 `json:"confidence"` // [0, 100]
}

// Article is a news item to score. Description may be empty.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Summary aggregates the scores of an article collection.
type Summary struct {
	AverageScore float64 `json:"averageScore"`
	Label        Label   `json:"label"`
	BullishCount int     `json:"bullishCount"`
	BearishCount int     `json:"bearishCount"`
	NeutralCount int     `json:"neutralCount"`
}

const (
	maxScore = 5.0

	// Per-article label thresholds; aggregate labels use looser bounds
	// because averaging pulls scores toward zero.
	articleThreshold   = 1.0
	aggregateThreshold = 0.5
)

// ScoreText tokenizes the text, sums token polarities from the lexicon,
// clamps the sum to [-5, 5] and classifies it.
func ScoreText(text string) Score {
	tokens := tokenize(text)

	raw := 0.0
	for _, token := range tokens {
		raw += lexicon[token]
	}

	score := math.Max(-maxScore, math.Min(maxScore, raw))

	comparative := 0.0
	if len(tokens) > 0 {
		comparative = raw / float64(len(tokens))
	}

	return Score{
		Score:       formulas.Round2(score),
		Comparative: formulas.Round2(comparative),
		Label:       classify(score, articleThreshold),
		Confidence:  formulas.Round2(math.Min(100, math.Abs(score)*20)),
	}
}

// ScoreArticle scores a news article. The title is weighted double because
// headlines carry more signal density than body text in short financial
// articles.
func ScoreArticle(article Article) Score {
	parts := []string{article.Title, article.Title}
	if article.Description != "" {
		parts = append(parts, article.Description)
	}
	return ScoreText(strings.Join(parts, " "))
}

// Aggregate summarizes a collection of scores. An empty collection yields a
// zeroed neutral summary.
func Aggregate(scores []Score) Summary {
	if len(scores) == 0 {
		return Summary{Label: LabelNeutral}
	}

	summary := Summary{}
	total := 0.0
	for _, s := range scores {
		total += s.Score
		switch s.Label {
		case LabelBullish:
			summary.BullishCount++
		case LabelBearish:
			summary.BearishCount++
		default:
			summary.NeutralCount++
		}
	}

	average := total / float64(len(scores))
	summary.AverageScore = formulas.Round2(average)
	summary.Label = classify(average, aggregateThreshold)
	return summary
}

func classify(score, threshold float64) Label {
	switch {
	case score > threshold:
		return LabelBullish
	case score < -threshold:
		return LabelBearish
	default:
		return LabelNeutral
	}
}

// tokenize lowercases the text and splits it into words, stripping anything
// that is not a letter.
func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return ' '
		}
	}, text)
	return strings.Fields(cleaned)
}
