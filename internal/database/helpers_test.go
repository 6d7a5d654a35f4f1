package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/zombar/statementanalyzer/internal/models"
)

// setupTestDatabase opens a migrated SQLite database in a temp directory
func setupTestDatabase(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func createTestStatement(id, caseID string, createdAt time.Time) *models.Statement {
	confidence := 0.92
	return &models.Statement{
		ID:                      id,
		CaseID:                  caseID,
		WitnessName:             "J. Doe",
		Text:                    "I am certain I saw him yesterday at the park.",
		TranscriptionConfidence: &confidence,
		DurationSeconds:         10,
		CreatedAt:               createdAt,
		UpdatedAt:               createdAt,
	}
}

func createTestAnalysis(id, statementID string, overall float64, createdAt time.Time) *models.Analysis {
	return &models.Analysis{
		ID:          id,
		StatementID: statementID,
		Features: models.Features{
			Linguistic: models.LinguisticFeatures{
				WordCount:               10,
				SentenceCount:           1,
				FillerWords:             []string{},
				HesitationMarkers:       []string{"certain", "yesterday"},
				EmotionalWords:          []string{"certain"},
				ContradictionIndicators: []string{},
			},
			Credibility: models.CredibilityMetrics{
				OverallScore:    overall,
				ConfidenceLevel: models.ConfidenceMedium,
			},
			RiskFactors: models.RiskFactors{
				DeceptionIndicators: []string{"Excessive hesitation markers"},
				InconsistencyFlags:  []string{},
				CredibilityFlags:    []string{"High emotional instability", "Excessive filler words"},
				StressLevel:         models.StressLow,
			},
			Recommendations: []string{"Statement shows generally good credibility indicators"},
		},
		ProcessingTimeMs: 3,
		CreatedAt:        createdAt,
	}
}
