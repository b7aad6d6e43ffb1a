package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ecodocs/reportpipe/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrNilParameter    = errors.New("parameter cannot be nil")
	ErrInvalidID       = errors.New("id must be positive")
	ErrInvalidDocument = errors.New("invalid document")
	ErrInvalidSummary  = errors.New("invalid summary")
	ErrInvalidPoint    = errors.New("invalid data point")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateID ensures an identifier is positive.
func validateID(id int64, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidID, paramName)
	}
	return nil
}

// validateDocument validates a document before insertion.
func validateDocument(doc *model.Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document", ErrNilParameter)
	}
	if strings.TrimSpace(doc.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidDocument)
	}
	if strings.TrimSpace(doc.FilePath) == "" {
		return fmt.Errorf("%w: missing file path", ErrInvalidDocument)
	}
	return nil
}

// validateSummary validates a summary before insertion.
func validateSummary(summary *model.Summary) error {
	if summary == nil {
		return fmt.Errorf("%w: summary", ErrNilParameter)
	}
	if err := validateID(summary.DocumentID, "summary document ID"); err != nil {
		return err
	}
	if strings.TrimSpace(summary.Content) == "" {
		return fmt.Errorf("%w: missing content", ErrInvalidSummary)
	}
	if summary.Confidence < 0 || summary.Confidence > 1 {
		return fmt.Errorf("%w: confidence must be between 0 and 1", ErrInvalidSummary)
	}
	return nil
}

// validateDataPoints validates a slice of data points before upserting.
func validateDataPoints(points []model.DataPoint) error {
	for i, point := range points {
		if strings.TrimSpace(point.Key) == "" {
			return fmt.Errorf("%w: missing key at index %d", ErrInvalidPoint, i)
		}
		if point.Confidence < 0 || point.Confidence > 1 {
			return fmt.Errorf("%w: confidence must be between 0 and 1 at index %d", ErrInvalidPoint, i)
		}
	}
	return nil
}
