package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/ecodocs/reportpipe/internal/model"
)

// UpsertDataPoints inserts or updates extracted data points keyed by
// (document, key). A re-run with revised values overwrites prior values for
// the same key; points for other keys are left untouched.
func (s *SQLiteStorage) UpsertDataPoints(ctx context.Context, documentID int64, points []model.DataPoint) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(documentID, "documentID"); err != nil {
		return err
	}
	if len(points) == 0 {
		return nil
	}
	if err := validateDataPoints(points); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO data_points (
			document_id, key, value, unit, page, confidence, chart_type, indicator_category
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id, key) DO UPDATE SET
			value = excluded.value,
			unit = excluded.unit,
			page = excluded.page,
			confidence = excluded.confidence,
			chart_type = excluded.chart_type,
			indicator_category = excluded.indicator_category
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, point := range points {
		var unit any
		if point.Unit != "" {
			unit = point.Unit
		}
		var page any
		if point.Page != nil {
			page = *point.Page
		}

		_, err = stmt.ExecContext(ctx,
			documentID,
			point.Key,
			point.Value,
			unit,
			page,
			point.Confidence,
			string(point.ChartType),
			string(point.IndicatorCategory),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert data point %q: %w", point.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit data points: %w", err)
	}

	slog.Info("upserted data points", "document_id", documentID, "count", len(points))
	return nil
}

// GetDataPointsByDocumentID returns all data points for a document, ordered
// by key for stable output.
func (s *SQLiteStorage) GetDataPointsByDocumentID(ctx context.Context, documentID int64) ([]model.DataPoint, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(documentID, "documentID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, key, value, unit, page, confidence, chart_type, indicator_category
		FROM data_points
		WHERE document_id = ?
		ORDER BY key
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query data points: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var points []model.DataPoint
	for rows.Next() {
		var point model.DataPoint
		var unit sql.NullString
		var page sql.NullInt64
		var chartType, indicatorCategory string

		if err := rows.Scan(
			&point.ID,
			&point.DocumentID,
			&point.Key,
			&point.Value,
			&unit,
			&page,
			&point.Confidence,
			&chartType,
			&indicatorCategory,
		); err != nil {
			return nil, fmt.Errorf("failed to scan data point: %w", err)
		}

		if unit.Valid {
			point.Unit = unit.String
		}
		if page.Valid {
			p := int(page.Int64)
			point.Page = &p
		}
		point.ChartType = model.ChartType(chartType)
		point.IndicatorCategory = model.IndicatorCategory(indicatorCategory)
		points = append(points, point)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating data points: %w", err)
	}
	return points, nil
}
