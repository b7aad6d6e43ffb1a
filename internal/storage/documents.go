package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/ecodocs/reportpipe/internal/model"
)

// DefaultBatchLimit bounds a single pipeline run so that batch duration and
// memory stay predictable.
const DefaultBatchLimit = 500

// CreateDocument inserts a new document record. This is the seed path used by
// the upload flow; the pipeline itself never creates documents.
func (s *SQLiteStorage) CreateDocument(ctx context.Context, doc *model.Document) (*model.Document, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	now := time.Now()
	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (title, file_path, owner_id, is_public, category_id, no_extractable_data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.Title, doc.FilePath, doc.OwnerID, doc.IsPublic, doc.CategoryID, doc.NoExtractableData, createdAt, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get document ID: %w", err)
	}

	created := *doc
	created.ID = id
	created.CreatedAt = createdAt
	created.UpdatedAt = now
	return &created, nil
}

// GetDocumentByID returns the document with the given identifier, or nil if
// it does not exist.
func (s *SQLiteStorage) GetDocumentByID(ctx context.Context, id int64) (*model.Document, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, file_path, owner_id, is_public, category_id, no_extractable_data, created_at, updated_at
		FROM documents
		WHERE id = ?
	`, id)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return doc, nil
}

// GetDocumentsNeedingAnalysis returns documents still missing required
// analysis artifacts, oldest first, capped at limit. A document needs
// analysis when it has no summary, or when it has no data points and has not
// been confirmed as having nothing extractable.
func (s *SQLiteStorage) GetDocumentsNeedingAnalysis(ctx context.Context, limit int) ([]model.Document, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultBatchLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.title, d.file_path, d.owner_id, d.is_public, d.category_id, d.no_extractable_data, d.created_at, d.updated_at
		FROM documents d
		WHERE NOT EXISTS (SELECT 1 FROM summaries s WHERE s.document_id = d.id)
		   OR (NOT EXISTS (SELECT 1 FROM data_points p WHERE p.document_id = d.id)
		       AND d.no_extractable_data = 0)
		ORDER BY d.created_at ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents needing analysis: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []model.Document
	for rows.Next() {
		doc, scanErr := scanDocument(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan document: %w", scanErr)
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	slog.Debug("found documents needing analysis", "count", len(docs))
	return docs, nil
}

// GetAnalysisStatus reports which analysis artifacts a document already has.
func (s *SQLiteStorage) GetAnalysisStatus(ctx context.Context, documentID int64) (*model.AnalysisStatus, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(documentID, "documentID"); err != nil {
		return nil, err
	}

	var status model.AnalysisStatus
	err := s.db.QueryRowContext(ctx, `
		SELECT
			EXISTS (SELECT 1 FROM summaries s WHERE s.document_id = d.id),
			EXISTS (SELECT 1 FROM data_points p WHERE p.document_id = d.id),
			d.category_id IS NOT NULL,
			d.no_extractable_data
		FROM documents d
		WHERE d.id = ?
	`, documentID).Scan(&status.HasSummary, &status.HasDataPoints, &status.HasCategory, &status.NoExtractableData)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document %d: %w", documentID, sql.ErrNoRows)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis status: %w", err)
	}
	return &status, nil
}

// AssignCategoryIfAbsent resolves categoryName against the category reference
// data and assigns it to the document if the document has no category yet.
// An unmatched name is ignored; the pipeline never invents categories.
// Returns whether the document ended up with a category assigned.
func (s *SQLiteStorage) AssignCategoryIfAbsent(ctx context.Context, documentID int64, categoryName string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateID(documentID, "documentID"); err != nil {
		return false, err
	}
	if err := validateString(categoryName, "categoryName"); err != nil {
		return false, err
	}

	category, err := s.GetCategoryByName(ctx, categoryName)
	if err != nil {
		return false, err
	}
	if category == nil {
		slog.Debug("analyzer returned unknown category, leaving document unset",
			"document_id", documentID,
			"category", categoryName)
		return false, nil
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET category_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND category_id IS NULL
	`, category.ID, documentID)
	if err != nil {
		return false, fmt.Errorf("failed to assign category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check category assignment: %w", err)
	}
	if affected > 0 {
		slog.Info("assigned document category",
			"document_id", documentID,
			"category", category.Name)
	}
	// affected == 0 means a category was already set; either way one exists now
	return true, nil
}

// MarkNoExtractableData flags a document as confirmed to contain nothing
// extractable, so it is not picked up by every future run.
func (s *SQLiteStorage) MarkNoExtractableData(ctx context.Context, documentID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(documentID, "documentID"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET no_extractable_data = 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, documentID)
	if err != nil {
		return fmt.Errorf("failed to mark document as having no extractable data: %w", err)
	}

	slog.Info("marked document as having no extractable data", "document_id", documentID)
	return nil
}

// scanner abstracts sql.Row and sql.Rows for document scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*model.Document, error) {
	var doc model.Document
	var categoryID sql.NullInt64
	err := row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.FilePath,
		&doc.OwnerID,
		&doc.IsPublic,
		&categoryID,
		&doc.NoExtractableData,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		doc.CategoryID = &categoryID.Int64
	}
	return &doc, nil
}
