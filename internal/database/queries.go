package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zombar/statementanalyzer/internal/models"
)

// Flag kinds stored in analysis_flags
const (
	FlagKindDeception     = "deception"
	FlagKindInconsistency = "inconsistency"
	FlagKindCredibility   = "credibility"
)

// Stats summarizes the stored data
type Stats struct {
	Statements        int     `json:"statements"`
	Analyses          int     `json:"analyses"`
	AverageCredibility float64 `json:"average_credibility"`
}

// SaveStatement inserts a witness statement
func (db *DB) SaveStatement(s *models.Statement) error {
	_, err := db.conn.Exec(`
		INSERT INTO witness_statements (
			id, case_id, witness_name, statement_text, audio_file_path,
			transcription_confidence, duration_seconds, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.CaseID, nullString(s.WitnessName), s.Text, nullString(s.AudioFilePath),
		s.TranscriptionConfidence, s.DurationSeconds, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert statement: %w", err)
	}
	return nil
}

// GetStatement retrieves a statement by ID
func (db *DB) GetStatement(id string) (*models.Statement, error) {
	row := db.conn.QueryRow(`
		SELECT id, case_id, witness_name, statement_text, audio_file_path,
			transcription_confidence, duration_seconds, created_at, updated_at
		FROM witness_statements
		WHERE id = ?
	`, id)

	s, err := scanStatement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("statement %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get statement: %w", err)
	}
	return s, nil
}

// ListStatements returns statements newest first, optionally restricted to one case
func (db *DB) ListStatements(caseID string, limit, offset int) ([]*models.Statement, error) {
	rows, err := db.conn.Query(`
		SELECT id, case_id, witness_name, statement_text, audio_file_path,
			transcription_confidence, duration_seconds, created_at, updated_at
		FROM witness_statements
		WHERE (? = '' OR case_id = ?)
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, caseID, caseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query statements: %w", err)
	}
	defer rows.Close()

	statements := []*models.Statement{}
	for rows.Next() {
		s, err := scanStatement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		statements = append(statements, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return statements, nil
}

// DeleteStatement deletes a statement together with its analyses
func (db *DB) DeleteStatement(id string) error {
	result, err := db.conn.Exec("DELETE FROM witness_statements WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete statement: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("statement %s: %w", id, ErrNotFound)
	}

	return nil
}

// SaveAnalysis stores an analysis and indexes each of its risk flags
func (db *DB) SaveAnalysis(a *models.Analysis) error {
	featuresJSON, err := json.Marshal(a.Features)
	if err != nil {
		return fmt.Errorf("failed to marshal features: %w", err)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO analysis_results (
			id, statement_id, overall_credibility, confidence_level, stress_level,
			features, processing_time_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.StatementID, a.Features.Credibility.OverallScore,
		string(a.Features.Credibility.ConfidenceLevel), string(a.Features.RiskFactors.StressLevel),
		string(featuresJSON), a.ProcessingTimeMs, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}

	flags := map[string][]string{
		FlagKindDeception:     a.Features.RiskFactors.DeceptionIndicators,
		FlagKindInconsistency: a.Features.RiskFactors.InconsistencyFlags,
		FlagKindCredibility:   a.Features.RiskFactors.CredibilityFlags,
	}
	for kind, list := range flags {
		for _, flag := range list {
			if _, err := tx.Exec(`
				INSERT INTO analysis_flags (analysis_id, kind, flag)
				VALUES (?, ?, ?)
			`, a.ID, kind, flag); err != nil {
				return fmt.Errorf("failed to insert flag: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetLatestAnalysis returns the most recent analysis of a statement
func (db *DB) GetLatestAnalysis(statementID string) (*models.Analysis, error) {
	row := db.conn.QueryRow(`
		SELECT id, statement_id, features, processing_time_ms, created_at
		FROM analysis_results
		WHERE statement_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, statementID)

	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("analysis for statement %s: %w", statementID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return a, nil
}

// SearchAnalysesByFlag returns analyses that raised the given flag, newest first
func (db *DB) SearchAnalysesByFlag(flag string) ([]*models.Analysis, error) {
	rows, err := db.conn.Query(`
		SELECT DISTINCT a.id, a.statement_id, a.features, a.processing_time_ms, a.created_at
		FROM analysis_results a
		INNER JOIN analysis_flags f ON a.id = f.analysis_id
		WHERE f.flag = ?
		ORDER BY a.created_at DESC
	`, flag)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses by flag: %w", err)
	}
	defer rows.Close()

	analyses := []*models.Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		analyses = append(analyses, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return analyses, nil
}

// Stats returns row counts and the mean overall credibility
func (db *DB) Stats() (Stats, error) {
	var s Stats
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM witness_statements").Scan(&s.Statements); err != nil {
		return s, fmt.Errorf("failed to count statements: %w", err)
	}
	if err := db.conn.QueryRow(`
		SELECT COUNT(*), COALESCE(AVG(overall_credibility), 0) FROM analysis_results
	`).Scan(&s.Analyses, &s.AverageCredibility); err != nil {
		return s, fmt.Errorf("failed to aggregate analyses: %w", err)
	}
	return s, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStatement(row scanner) (*models.Statement, error) {
	var (
		s             models.Statement
		witnessName   sql.NullString
		audioFilePath sql.NullString
		confidence    sql.NullFloat64
		createdAt     time.Time
		updatedAt     time.Time
	)

	if err := row.Scan(&s.ID, &s.CaseID, &witnessName, &s.Text, &audioFilePath,
		&confidence, &s.DurationSeconds, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	s.WitnessName = witnessName.String
	s.AudioFilePath = audioFilePath.String
	if confidence.Valid {
		v := confidence.Float64
		s.TranscriptionConfidence = &v
	}
	s.CreatedAt = createdAt
	s.UpdatedAt = updatedAt
	return &s, nil
}

func scanAnalysis(row scanner) (*models.Analysis, error) {
	var (
		a            models.Analysis
		featuresJSON string
		processingMs sql.NullInt64
	)

	if err := row.Scan(&a.ID, &a.StatementID, &featuresJSON, &processingMs, &a.CreatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(featuresJSON), &a.Features); err != nil {
		return nil, fmt.Errorf("failed to unmarshal features: %w", err)
	}
	a.ProcessingTimeMs = processingMs.Int64
	return &a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
