package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/ecodocs/reportpipe/internal/model"
)

// CreateSummaryIfAbsent inserts a summary only if the document has none yet.
// A concurrent duplicate insert on the unique document reference is treated
// as already-created, not an error: existing summaries are never overwritten.
func (s *SQLiteStorage) CreateSummaryIfAbsent(ctx context.Context, summary *model.Summary) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSummary(summary); err != nil {
		return err
	}

	if summary.AnalyzedAt.IsZero() {
		summary.AnalyzedAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO summaries (document_id, content, confidence, analyzed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(document_id) DO NOTHING
	`, summary.DocumentID, summary.Content, summary.Confidence, summary.AnalyzedAt)
	if err != nil {
		return fmt.Errorf("failed to create summary: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check summary insert: %w", err)
	}
	if affected == 0 {
		slog.Debug("summary already exists, keeping original", "document_id", summary.DocumentID)
		return nil
	}

	slog.Info("created summary", "document_id", summary.DocumentID, "confidence", summary.Confidence)
	return nil
}

// GetSummaryByDocumentID returns the document's summary, or nil if none exists.
func (s *SQLiteStorage) GetSummaryByDocumentID(ctx context.Context, documentID int64) (*model.Summary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(documentID, "documentID"); err != nil {
		return nil, err
	}

	var summary model.Summary
	err := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, content, confidence, analyzed_at
		FROM summaries
		WHERE document_id = ?
	`, documentID).Scan(&summary.ID, &summary.DocumentID, &summary.Content, &summary.Confidence, &summary.AnalyzedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query summary: %w", err)
	}
	return &summary, nil
}
