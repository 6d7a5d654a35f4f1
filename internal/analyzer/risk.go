package analyzer

import (
	"github.com/zombar/statementanalyzer/internal/models"
)

// Deception indicators
const (
	FlagHighDeceptionRisk   = "High deception risk detected"
	FlagExcessiveHesitation = "Excessive hesitation markers"
	FlagContradictions      = "Contradiction indicators present"
	FlagOverconfidence      = "Unusually high certainty (potential overcompensation)"
)

// Inconsistency flags
const (
	FlagHighRepetition = "High repetition rate"
	FlagLowCoherence   = "Low coherence score"
	FlagSimpleLanguage = "Unusually simple language (potentially rehearsed)"
)

// Credibility flags
const (
	FlagEmotionalInstability = "High emotional instability"
	FlagExcessiveFillers     = "Excessive filler words"
	FlagHighStress           = "High stress indicators"
	FlagNoTemporalDetails    = "Lack of temporal details"
)

// IdentifyRisks applies independent threshold rules to the features of text.
// Any subset of flags may be raised; each list keeps rule order.
func IdentifyRisks(linguistic models.LinguisticFeatures, psychological models.PsychologicalFeatures, text string) models.RiskFactors {
	deception := []string{}
	inconsistency := []string{}
	credibility := []string{}

	if psychological.DeceptionRisk > 60 {
		deception = append(deception, FlagHighDeceptionRisk)
	}
	if ratio(linguistic.HesitationCount, linguistic.WordCount) > 0.05 {
		deception = append(deception, FlagExcessiveHesitation)
	}
	if linguistic.ContradictionCount() > 0 {
		deception = append(deception, FlagContradictions)
	}
	if psychological.CertaintyLevel > 90 {
		deception = append(deception, FlagOverconfidence)
	}

	if ratio(linguistic.RepetitionCount, linguistic.WordCount) > 0.1 {
		inconsistency = append(inconsistency, FlagHighRepetition)
	}
	if psychological.CoherenceScore < 60 {
		inconsistency = append(inconsistency, FlagLowCoherence)
	}
	if linguistic.ComplexityScore < 25 {
		inconsistency = append(inconsistency, FlagSimpleLanguage)
	}

	if psychological.EmotionalStability < 40 {
		credibility = append(credibility, FlagEmotionalInstability)
	}
	if ratio(linguistic.FillerWordCount, linguistic.WordCount) > 0.08 {
		credibility = append(credibility, FlagExcessiveFillers)
	}
	if psychological.StressIndicators > 70 {
		credibility = append(credibility, FlagHighStress)
	}
	if psychological.TimeReferenceCount == 0 && linguistic.WordCount > 50 {
		credibility = append(credibility, FlagNoTemporalDetails)
	}

	return models.RiskFactors{
		DeceptionIndicators: deception,
		StressLevel:         stressLevel(psychological.StressIndicators),
		InconsistencyFlags:  inconsistency,
		CredibilityFlags:    credibility,
	}
}

func stressLevel(stress float64) models.StressLevel {
	switch {
	case stress > 70:
		return models.StressHigh
	case stress > 40:
		return models.StressMedium
	default:
		return models.StressLow
	}
}
