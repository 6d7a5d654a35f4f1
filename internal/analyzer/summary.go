package analyzer

import (
	"fmt"
	"strings"

	"github.com/zombar/statementanalyzer/internal/models"
)

// Summary renders a plain-text report of an analysis
func Summary(f models.Features) string {
	var b strings.Builder

	c := f.Credibility
	fmt.Fprintf(&b, "Credibility: %.0f/100 (%s confidence)\n", c.OverallScore, c.ConfidenceLevel)
	fmt.Fprintf(&b, "  consistency %.0f | detail %.0f | emotional authenticity %.0f | coherence %.0f\n",
		c.ConsistencyScore, c.DetailScore, c.EmotionalAuthenticityScore, c.LinguisticCoherenceScore)

	p := f.Psychological
	fmt.Fprintf(&b, "Stress: %s (%.2f) | deception risk %.2f | certainty %.2f\n",
		f.RiskFactors.StressLevel, p.StressIndicators, p.DeceptionRisk, p.CertaintyLevel)

	l := f.Linguistic
	fmt.Fprintf(&b, "Words: %d in %d sentences | fillers %d | hesitations %d | time references %d\n",
		l.WordCount, l.SentenceCount, l.FillerWordCount, l.HesitationCount, p.TimeReferenceCount)

	writeList(&b, "Deception indicators", f.RiskFactors.DeceptionIndicators)
	writeList(&b, "Inconsistency flags", f.RiskFactors.InconsistencyFlags)
	writeList(&b, "Credibility flags", f.RiskFactors.CredibilityFlags)
	writeList(&b, "Recommendations", f.Recommendations)

	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}
