package sentiment

import (
	"math"
	"strings"

	"github.com/jonreiter/govader"
)

// Neutral band used by VADER's reference implementation.
const neutralThreshold = 0.05

// Class is a coarse bucket of a polarity score, used for metrics labels.
type Class string

const (
	ClassNegative Class = "negative"
	ClassNeutral  Class = "neutral"
	ClassPositive Class = "positive"
)

// lexiconSupplement adds everyday negative words the VADER lexicon lacks,
// valued on VADER's -4..4 scale. Board stories lean on them heavily.
var lexiconSupplement = map[string]float64{
	"rough":    -1.1,
	"rougher":  -1.3,
	"roughest": -1.5,
	"tiring":   -1.0,
	"draining": -1.2,
	"tedious":  -1.1,
	"bleak":    -1.8,
	"creepy":   -1.6,
	"gory":     -2.0,
}

// Scorer computes lexicon-based polarity using VADER's compound score.
type Scorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewScorer loads the VADER lexicon. Construct once and share.
func NewScorer() *Scorer {
	analyzer := govader.NewSentimentIntensityAnalyzer()
	for word, valence := range lexiconSupplement {
		if _, ok := analyzer.Lexicon[word]; !ok {
			analyzer.Lexicon[word] = valence
		}
	}
	return &Scorer{analyzer: analyzer}
}

// Polarity returns the compound score of text in [-1, 1]. Blank text scores 0.
func (s *Scorer) Polarity(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return Clamp(s.analyzer.PolarityScores(text).Compound)
}

// Clamp bounds p to [-1, 1] and maps NaN to 0.
func Clamp(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	return math.Max(-1, math.Min(1, p))
}

// Classify buckets a polarity score.
func Classify(p float64) Class {
	switch {
	case p >= neutralThreshold:
		return ClassPositive
	case p <= -neutralThreshold:
		return ClassNegative
	default:
		return ClassNeutral
	}
}
