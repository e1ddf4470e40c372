package sentiment

import (
	"github.com/jonreiter/govader"

	"reviewpulse/internal/model"
)

const (
	LabelPositive = "Positive"
	LabelNeutral  = "Neutral"
	LabelNegative = "Negative"
)

// Label thresholds on the compound score. Both boundaries are inclusive.
const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

// Analyzer wraps the VADER lexicon model. The lexicon is loaded once at
// construction and never mutated, so one Analyzer is safe for concurrent
// reads across goroutines.
type Analyzer struct {
	sia *govader.SentimentIntensityAnalyzer
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{sia: govader.NewSentimentIntensityAnalyzer()}
}

// Score maps review text to its polarity components and a three-way label.
// Empty text gets a fixed neutral result, not an error.
func (a *Analyzer) Score(text string) model.SentimentResult {
	if text == "" {
		return model.SentimentResult{Label: LabelNeutral, Neutral: 1.0}
	}

	s := a.sia.PolarityScores(text)
	return model.SentimentResult{
		Label:    LabelFor(s.Compound),
		Compound: s.Compound,
		Positive: s.Positive,
		Negative: s.Negative,
		Neutral:  s.Neutral,
	}
}

// LabelFor buckets a compound score into Positive, Neutral or Negative.
func LabelFor(compound float64) string {
	switch {
	case compound >= positiveThreshold:
		return LabelPositive
	case compound <= negativeThreshold:
		return LabelNegative
	default:
		return LabelNeutral
	}
}
