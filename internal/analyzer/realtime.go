package analyzer

import (
	"strings"

	"github.com/zombar/statementanalyzer/internal/models"
)

// Live alerts raised by AnalyzeRealTime
const (
	AlertDeception     = "Potential deception indicators detected"
	AlertStress        = "High stress levels detected"
	AlertContradiction = "Contradictory statements identified"
	AlertConsistency   = "Consistency issues emerging"
)

// AnalyzeRealTime recomputes the full pipeline over an in-progress transcript
// and classifies it as good, warning or concerning. It keeps no memory of
// earlier calls, so repeated calls on a growing transcript are independent.
func (a *Analyzer) AnalyzeRealTime(text string, durationSeconds float64) (models.RealTimeStatus, error) {
	if err := Validate(text, durationSeconds); err != nil {
		return models.RealTimeStatus{}, err
	}

	if strings.TrimSpace(text) == "" {
		return models.RealTimeStatus{
			Status:  models.StatusGood,
			Alerts:  []string{},
			Metrics: models.RealTimeMetrics{Coherence: 100},
		}, nil
	}

	features := a.analyze(text, durationSeconds)

	alerts := []string{}
	if features.Psychological.DeceptionRisk > 70 {
		alerts = append(alerts, AlertDeception)
	}
	if features.Psychological.StressIndicators > 80 {
		alerts = append(alerts, AlertStress)
	}
	if features.Linguistic.ContradictionCount() > 0 {
		alerts = append(alerts, AlertContradiction)
	}
	if features.Credibility.ConsistencyScore < 40 {
		alerts = append(alerts, AlertConsistency)
	}

	return models.RealTimeStatus{
		Status: statusFor(len(alerts)),
		Alerts: alerts,
		Metrics: models.RealTimeMetrics{
			Coherence: features.Psychological.CoherenceScore,
			Detail:    features.Credibility.DetailScore,
			Stress:    features.Psychological.StressIndicators,
		},
	}, nil
}

func statusFor(alertCount int) models.Status {
	switch {
	case alertCount > 2:
		return models.StatusConcerning
	case alertCount > 0:
		return models.StatusWarning
	default:
		return models.StatusGood
	}
}
