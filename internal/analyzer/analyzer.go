package analyzer

import (
	"errors"
	"fmt"
	"math"

	"github.com/zombar/statementanalyzer/internal/models"
)

// MaxTextBytes is the largest statement accepted by Analyze and AnalyzeRealTime
const MaxTextBytes = 1 << 20

var (
	// ErrInvalidDuration is returned for negative, NaN or infinite durations
	ErrInvalidDuration = errors.New("invalid duration")
	// ErrTextTooLarge is returned when the text exceeds MaxTextBytes
	ErrTextTooLarge = errors.New("text too large")
)

// Analyzer scores witness statements for credibility signals.
// It holds no mutable state and is safe for concurrent use.
type Analyzer struct {
	lexicon Lexicon
}

// New creates a new Analyzer with the default English lexicon
func New() *Analyzer {
	return &Analyzer{
		lexicon: DefaultLexicon(),
	}
}

// NewWithLexicon creates a new Analyzer that matches against the given lexicon
func NewWithLexicon(lexicon Lexicon) *Analyzer {
	return &Analyzer{
		lexicon: lexicon.clone(),
	}
}

// Lexicon returns a copy of the word lists in use
func (a *Analyzer) Lexicon() Lexicon {
	return a.lexicon.clone()
}

// Validate checks the caller contract shared by Analyze and AnalyzeRealTime
func Validate(text string, durationSeconds float64) error {
	if math.IsNaN(durationSeconds) || math.IsInf(durationSeconds, 0) || durationSeconds < 0 {
		return fmt.Errorf("%w: %v seconds", ErrInvalidDuration, durationSeconds)
	}
	if len(text) > MaxTextBytes {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrTextTooLarge, len(text), MaxTextBytes)
	}
	return nil
}

// Analyze runs the full pipeline: linguistic features, psychological features,
// credibility metrics, risk factors and recommendations
func (a *Analyzer) Analyze(text string, durationSeconds float64) (models.Features, error) {
	if err := Validate(text, durationSeconds); err != nil {
		return models.Features{}, err
	}
	return a.analyze(text, durationSeconds), nil
}

func (a *Analyzer) analyze(text string, durationSeconds float64) models.Features {
	linguistic := a.Preprocess(text)
	psychological := a.ExtractPsychological(text, linguistic)
	credibility := CalculateCredibility(linguistic, psychological, durationSeconds)
	risks := IdentifyRisks(linguistic, psychological, text)

	return models.Features{
		Linguistic:      linguistic,
		Psychological:   psychological,
		Credibility:     credibility,
		RiskFactors:     risks,
		Recommendations: Recommend(credibility, risks, linguistic),
	}
}

// round2 rounds to two decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// clamp limits v to [lo, hi]
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ratio returns count/total, or 0 when total is zero
func ratio(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total)
}
