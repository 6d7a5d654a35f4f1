package analyzer

import (
	"github.com/zombar/statementanalyzer/internal/models"
)

// Recommend maps credibility metrics and risk factors to interviewer guidance.
// Rules append in a fixed order; when none fire two default lines are returned.
func Recommend(credibility models.CredibilityMetrics, risks models.RiskFactors, linguistic models.LinguisticFeatures) []string {
	recommendations := []string{}

	if credibility.OverallScore < 50 {
		recommendations = append(recommendations,
			"Consider additional verification of statement details",
			"Cross-reference with other evidence or witness statements",
		)
	} else if credibility.OverallScore > 80 {
		recommendations = append(recommendations, "Statement shows high credibility indicators")
	}

	if risks.StressLevel == models.StressHigh {
		recommendations = append(recommendations,
			"High stress detected - consider interviewing conditions",
			"Allow time for witness to compose themselves",
		)
	}

	if len(risks.DeceptionIndicators) > 2 {
		recommendations = append(recommendations,
			"Multiple deception indicators - requires careful investigation",
			"Consider follow-up questions on specific details",
		)
	}

	if credibility.DetailScore < 40 {
		recommendations = append(recommendations,
			"Statement lacks sufficient detail - ask for elaboration",
			"Request specific examples and timeline information",
		)
	}

	if credibility.ConsistencyScore < 50 {
		recommendations = append(recommendations,
			"Consistency issues detected - clarify contradictions",
			"Focus on timeline and sequence of events",
		)
	}

	if float64(linguistic.FillerWordCount) > float64(linguistic.WordCount)*0.1 {
		recommendations = append(recommendations, "High nervous speech patterns - ensure comfortable environment")
	}

	if credibility.ConfidenceLevel == models.ConfidenceLow {
		recommendations = append(recommendations, "Low confidence assessment - corroborate with additional evidence")
	}

	if len(recommendations) == 0 {
		recommendations = append(recommendations,
			"Statement appears credible with no major red flags",
			"Standard verification procedures recommended",
		)
	}

	return recommendations
}
