package models

import "time"

// ConfidenceLevel is the coarse confidence label attached to a credibility score
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "High"
	ConfidenceMedium ConfidenceLevel = "Medium"
	ConfidenceLow    ConfidenceLevel = "Low"
)

// StressLevel classifies the stress indicators of a statement
type StressLevel string

const (
	StressHigh   StressLevel = "High"
	StressMedium StressLevel = "Medium"
	StressLow    StressLevel = "Low"
)

// Status is the live classification emitted while a transcript grows
type Status string

const (
	StatusGood       Status = "good"
	StatusWarning    Status = "warning"
	StatusConcerning Status = "concerning"
)

// Statement represents a recorded witness statement
type Statement struct {
	ID                      string    `json:"id"`
	CaseID                  string    `json:"case_id"`
	WitnessName             string    `json:"witness_name,omitempty"`
	Text                    string    `json:"statement_text"`
	AudioFilePath           string    `json:"audio_file_path,omitempty"`
	TranscriptionConfidence *float64  `json:"transcription_confidence,omitempty"` // 0.0 to 1.0, reported by the transcriber
	DurationSeconds         float64   `json:"duration_seconds"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// Analysis is a persisted run of the scoring pipeline over a statement
type Analysis struct {
	ID               string    `json:"id"`
	StatementID      string    `json:"statement_id"`
	Features         Features  `json:"features"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// Features bundles every stage of the pipeline for one statement
type Features struct {
	Linguistic      LinguisticFeatures    `json:"linguistic"`
	Psychological   PsychologicalFeatures `json:"psychological"`
	Credibility     CredibilityMetrics    `json:"credibility_metrics"`
	RiskFactors     RiskFactors           `json:"risk_factors"`
	Recommendations []string              `json:"recommendations"`
}

// LinguisticFeatures contains word and sentence level statistics
type LinguisticFeatures struct {
	WordCount           int     `json:"word_count"`
	SentenceCount       int     `json:"sentence_count"`
	AvgWordsPerSentence float64 `json:"avg_words_per_sentence"`
	AvgSyllablesPerWord float64 `json:"avg_syllables_per_word"`
	ReadabilityScore    float64 `json:"readability_score"` // Flesch reading ease, not clamped

	FillerWords        []string `json:"filler_words"`
	FillerWordCount    int      `json:"filler_word_count"`
	HesitationMarkers  []string `json:"hesitation_markers"`
	HesitationCount    int      `json:"hesitation_count"`
	EmotionalWords     []string `json:"emotional_words"`
	EmotionalWordCount int      `json:"emotional_word_count"`

	ComplexityScore         float64  `json:"complexity_score"` // 0-100
	RepetitionCount         int      `json:"repetition_count"`
	ContradictionIndicators []string `json:"contradiction_indicators"`
}

// ContradictionCount returns the number of contradiction indicator words found
func (l LinguisticFeatures) ContradictionCount() int {
	return len(l.ContradictionIndicators)
}

// PsychologicalFeatures contains higher level scores derived from linguistic statistics
type PsychologicalFeatures struct {
	CoherenceScore     float64 `json:"coherence_score"`
	EmotionalStability float64 `json:"emotional_stability"`
	CertaintyLevel     float64 `json:"certainty_level"`
	StressIndicators   float64 `json:"stress_indicators"`
	DeceptionRisk      float64 `json:"deception_risk"`
	TimeReferenceCount int     `json:"time_reference_count"`
	DetailLevel        float64 `json:"detail_level"` // typically <= 100, not clamped
	SelfReferenceCount int     `json:"self_reference_count"`
}

// CredibilityMetrics is the composite credibility assessment, all scores rounded to integers
type CredibilityMetrics struct {
	OverallScore               float64         `json:"overall_score"`
	ConsistencyScore           float64         `json:"consistency_score"`
	DetailScore                float64         `json:"detail_score"`
	EmotionalAuthenticityScore float64         `json:"emotional_authenticity_score"`
	LinguisticCoherenceScore   float64         `json:"linguistic_coherence_score"`
	ConfidenceLevel            ConfidenceLevel `json:"confidence_level"`
}

// RiskFactors holds the threshold flags raised for a statement
type RiskFactors struct {
	DeceptionIndicators []string    `json:"deception_indicators"`
	StressLevel         StressLevel `json:"stress_level"`
	InconsistencyFlags  []string    `json:"inconsistency_flags"`
	CredibilityFlags    []string    `json:"credibility_flags"`
}

// AllFlags returns every raised flag in deception, inconsistency, credibility order
func (r RiskFactors) AllFlags() []string {
	flags := make([]string, 0, len(r.DeceptionIndicators)+len(r.InconsistencyFlags)+len(r.CredibilityFlags))
	flags = append(flags, r.DeceptionIndicators...)
	flags = append(flags, r.InconsistencyFlags...)
	flags = append(flags, r.CredibilityFlags...)
	return flags
}

// RealTimeStatus is the short-form status for an in-progress transcript
type RealTimeStatus struct {
	Status  Status          `json:"status"`
	Alerts  []string        `json:"alerts"`
	Metrics RealTimeMetrics `json:"metrics"`
}

// RealTimeMetrics is the metrics snapshot shown next to a live transcript
type RealTimeMetrics struct {
	Coherence float64 `json:"coherence"`
	Detail    float64 `json:"detail"`
	Stress    float64 `json:"stress"`
}
