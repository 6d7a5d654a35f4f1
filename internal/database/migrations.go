package database

import (
	"fmt"
	"log/slog"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// schemaVersionSQL creates the bookkeeping table and is applied before any migration
const schemaVersionSQL = `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
`

// migrations contains all SQLite migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_witness_statements_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS witness_statements (
				id TEXT PRIMARY KEY,
				case_id TEXT NOT NULL,
				witness_name TEXT,
				statement_text TEXT NOT NULL,
				audio_file_path TEXT,
				transcription_confidence REAL,
				duration_seconds REAL NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_witness_statements_case_id ON witness_statements(case_id);
			CREATE INDEX IF NOT EXISTS idx_witness_statements_created_at ON witness_statements(created_at);
		`,
	},
	{
		Version: 2,
		Name:    "create_analysis_results_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS analysis_results (
				id TEXT PRIMARY KEY,
				statement_id TEXT NOT NULL,
				overall_credibility REAL NOT NULL,
				confidence_level TEXT NOT NULL,
				stress_level TEXT NOT NULL,
				features TEXT NOT NULL,
				processing_time_ms INTEGER,
				created_at TIMESTAMP NOT NULL,
				FOREIGN KEY (statement_id) REFERENCES witness_statements(id) ON DELETE CASCADE
			);
			CREATE INDEX IF NOT EXISTS idx_analysis_results_statement_id ON analysis_results(statement_id);
		`,
	},
	{
		Version: 3,
		Name:    "create_analysis_flags_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS analysis_flags (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				analysis_id TEXT NOT NULL,
				kind TEXT NOT NULL,
				flag TEXT NOT NULL,
				FOREIGN KEY (analysis_id) REFERENCES analysis_results(id) ON DELETE CASCADE
			);
			CREATE INDEX IF NOT EXISTS idx_analysis_flags_analysis_id ON analysis_flags(analysis_id);
			CREATE INDEX IF NOT EXISTS idx_analysis_flags_flag ON analysis_flags(flag);
		`,
	},
}

// Migrate runs all pending migrations
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(schemaVersionSQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	err := db.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	slog.Debug("current schema version", "version", currentVersion)

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := db.conn.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec(migration.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to run migration %d (%s): %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		slog.Info("applied migration", "version", migration.Version, "name", migration.Name)
	}

	return nil
}

// SchemaVersion returns the highest applied migration version
func (db *DB) SchemaVersion() (int, error) {
	var version int
	if err := db.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
