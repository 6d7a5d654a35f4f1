package analyzer

import (
	"github.com/zombar/statementanalyzer/internal/models"
)

// ExtractPsychological derives coherence, stability, certainty, stress,
// deception risk and detail scores from the linguistic statistics of text.
// A statement with no words yields all-zero scores.
func (a *Analyzer) ExtractPsychological(text string, linguistic models.LinguisticFeatures) models.PsychologicalFeatures {
	words := extractWords(text)
	if linguistic.WordCount == 0 || len(words) == 0 {
		return models.PsychologicalFeatures{}
	}

	timeReferences := countMatches(words, a.lexicon.TimeWords)
	selfReferences := 0
	for _, word := range words {
		if a.lexicon.SelfWords[word] {
			selfReferences++
		}
	}

	certaintyCount := countMatches(words, a.lexicon.CertaintyWords)
	uncertaintyCount := countMatches(words, a.lexicon.UncertaintyWords)

	certainty := calculateCertaintyLevel(certaintyCount, uncertaintyCount, len(words))

	return models.PsychologicalFeatures{
		CoherenceScore:     round2(calculateCoherence(linguistic)),
		EmotionalStability: round2(calculateEmotionalStability(linguistic)),
		CertaintyLevel:     round2(certainty),
		StressIndicators:   round2(calculateStress(linguistic)),
		DeceptionRisk:      round2(calculateDeceptionRisk(linguistic, certainty)),
		TimeReferenceCount: timeReferences,
		DetailLevel:        round2(calculateDetailLevel(linguistic, timeReferences)),
		SelfReferenceCount: selfReferences,
	}
}

// calculateCoherence penalizes fillers, hesitations and repetitions per hundred words
func calculateCoherence(l models.LinguisticFeatures) float64 {
	fillerPenalty := min(ratio(l.FillerWordCount, l.WordCount)*100, 50)
	hesitationPenalty := min(ratio(l.HesitationCount, l.WordCount)*100, 30)
	repetitionPenalty := min(ratio(l.RepetitionCount, l.WordCount)*100, 20)

	return max(0, 100-fillerPenalty-hesitationPenalty-repetitionPenalty)
}

func calculateEmotionalStability(l models.LinguisticFeatures) float64 {
	emotionalDensity := ratio(l.EmotionalWordCount, l.WordCount)
	hesitationDensity := ratio(l.HesitationCount, l.WordCount)

	return clamp(100-emotionalDensity*200-hesitationDensity*300, 0, 100)
}

// calculateCertaintyLevel centers on 50 and moves with the certainty/uncertainty balance
func calculateCertaintyLevel(certaintyCount, uncertaintyCount, totalWords int) float64 {
	certainty := (ratio(certaintyCount, totalWords)-ratio(uncertaintyCount, totalWords))*100 + 50
	return clamp(certainty, 0, 100)
}

func calculateStress(l models.LinguisticFeatures) float64 {
	fillerStress := ratio(l.FillerWordCount, l.WordCount) * 100
	hesitationStress := ratio(l.HesitationCount, l.WordCount) * 100
	repetitionStress := ratio(l.RepetitionCount, l.WordCount) * 50

	return clamp(fillerStress+hesitationStress+repetitionStress, 0, 100)
}

// calculateDeceptionRisk adds hesitation and contradiction density to flat
// penalties for overconfidence (certainty > 80) and overly simple language (complexity < 30)
func calculateDeceptionRisk(l models.LinguisticFeatures, certaintyLevel float64) float64 {
	hesitationRisk := ratio(l.HesitationCount, l.WordCount) * 100
	contradictionRisk := ratio(l.ContradictionCount(), l.WordCount) * 200

	certaintyRisk := 0.0
	if certaintyLevel > 80 {
		certaintyRisk = 20
	}
	complexityRisk := 0.0
	if l.ComplexityScore < 30 {
		complexityRisk = 15
	}

	return clamp(hesitationRisk+contradictionRisk+certaintyRisk+complexityRisk, 0, 100)
}

// calculateDetailLevel caps at 100 by construction: 40 for length, 30 for time references, 30 for complexity
func calculateDetailLevel(l models.LinguisticFeatures, timeReferences int) float64 {
	lengthScore := min(float64(l.WordCount)/100, 1) * 40
	timeScore := min(float64(timeReferences)/5, 1) * 30
	complexityScore := l.ComplexityScore * 0.3

	return lengthScore + timeScore + complexityScore
}
