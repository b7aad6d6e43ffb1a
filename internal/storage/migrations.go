package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a fatal
// error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT UNIQUE NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS documents (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					title TEXT NOT NULL,
					file_path TEXT NOT NULL,
					owner_id INTEGER NOT NULL DEFAULT 0,
					is_public INTEGER NOT NULL DEFAULT 0,
					category_id INTEGER REFERENCES categories(id),
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_documents_created ON documents(created_at)`,
				`CREATE INDEX idx_documents_category ON documents(category_id)`,

				`CREATE TABLE IF NOT EXISTS summaries (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					document_id INTEGER UNIQUE NOT NULL REFERENCES documents(id),
					content TEXT NOT NULL,
					confidence REAL NOT NULL DEFAULT 0,
					analyzed_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS data_points (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					document_id INTEGER NOT NULL REFERENCES documents(id),
					key TEXT NOT NULL,
					value TEXT NOT NULL,
					unit TEXT,
					page INTEGER,
					confidence REAL NOT NULL DEFAULT 0,
					chart_type TEXT NOT NULL DEFAULT 'Unknown',
					indicator_category TEXT NOT NULL DEFAULT 'other',
					UNIQUE(document_id, key)
				)`,
				`CREATE INDEX idx_data_points_document ON data_points(document_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Seed default report categories",
		Up: func(tx *sql.Tx) error {
			categories := []struct {
				name        string
				description string
			}{
				{"Climate", "Emissions, temperature and climate-change reporting"},
				{"Biodiversity", "Species, habitats and ecosystem reporting"},
				{"Water", "Water quality and availability reporting"},
				{"Energy", "Energy production, mix and consumption reporting"},
				{"Finance", "Loans, budgets, costs and economic indicators"},
				{"Social", "Population, employment and health indicators"},
				{"Infrastructure", "Physical works, land area and networks"},
			}

			for _, cat := range categories {
				_, err := tx.Exec(`
					INSERT OR IGNORE INTO categories (name, description)
					VALUES (?, ?)
				`, cat.name, cat.description)
				if err != nil {
					return fmt.Errorf("failed to seed category %q: %w", cat.name, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Track documents confirmed to have no extractable data",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				ALTER TABLE documents
				ADD COLUMN no_extractable_data INTEGER NOT NULL DEFAULT 0
			`)
			return err
		},
	},
}

// Migrate applies any pending schema migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion returns the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
