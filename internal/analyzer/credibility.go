package analyzer

import (
	"math"

	"github.com/zombar/statementanalyzer/internal/models"
)

// Composite weights of the overall credibility score
const (
	weightConsistency           = 0.25
	weightDetail                = 0.20
	weightEmotionalAuthenticity = 0.25
	weightCoherence             = 0.20
	weightDeceptionInverse      = 0.10
)

// wordsPerSecond is the speaking rate used to estimate the expected statement length
const wordsPerSecond = 2

// CalculateCredibility combines linguistic and psychological features with the
// recording duration into the composite credibility score. All returned scores
// are rounded to the nearest integer.
func CalculateCredibility(linguistic models.LinguisticFeatures, psychological models.PsychologicalFeatures, durationSeconds float64) models.CredibilityMetrics {
	repetitionRate := ratio(linguistic.RepetitionCount, linguistic.WordCount) * 100
	contradictionRate := ratio(linguistic.ContradictionCount(), linguistic.WordCount) * 100
	consistency := max(0, 100-repetitionRate*2-contradictionRate*5)

	expectedWords := max(50, durationSeconds*wordsPerSecond)
	lengthRatio := min(float64(linguistic.WordCount)/expectedWords, 2)
	detail := min(100, lengthRatio*30+psychological.DetailLevel*0.7)

	emotionalContent := min(ratio(linguistic.EmotionalWordCount, linguistic.WordCount)*200, 40)
	emotionalAuthenticity := min(100, psychological.EmotionalStability*0.6+emotionalContent)

	coherence := psychological.CoherenceScore

	overall := consistency*weightConsistency +
		detail*weightDetail +
		emotionalAuthenticity*weightEmotionalAuthenticity +
		coherence*weightCoherence +
		(100-psychological.DeceptionRisk)*weightDeceptionInverse
	overall = clamp(overall, 0, 100)

	return models.CredibilityMetrics{
		OverallScore:               math.Round(overall),
		ConsistencyScore:           math.Round(consistency),
		DetailScore:                math.Round(detail),
		EmotionalAuthenticityScore: math.Round(emotionalAuthenticity),
		LinguisticCoherenceScore:   math.Round(coherence),
		ConfidenceLevel:            confidenceLevel(overall, psychological),
	}
}

// confidenceLevel checks High before Low
func confidenceLevel(overall float64, psychological models.PsychologicalFeatures) models.ConfidenceLevel {
	switch {
	case overall >= 75 && psychological.CertaintyLevel >= 60:
		return models.ConfidenceHigh
	case overall <= 50 || psychological.DeceptionRisk >= 70:
		return models.ConfidenceLow
	default:
		return models.ConfidenceMedium
	}
}
