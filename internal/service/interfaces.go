// Package service defines the interfaces for the application's collaborators.
package service

import (
	"context"

	"github.com/ecodocs/reportpipe/internal/model"
)

// Storage defines the contract for the persistence layer. Write operations
// used by the pipeline are idempotent: each may be called repeatedly with the
// same logical input without duplicating artifacts.
type Storage interface {
	// Document operations
	CreateDocument(ctx context.Context, doc *model.Document) (*model.Document, error)
	GetDocumentByID(ctx context.Context, id int64) (*model.Document, error)
	GetDocumentsNeedingAnalysis(ctx context.Context, limit int) ([]model.Document, error)
	GetAnalysisStatus(ctx context.Context, documentID int64) (*model.AnalysisStatus, error)
	AssignCategoryIfAbsent(ctx context.Context, documentID int64, categoryName string) (bool, error)
	MarkNoExtractableData(ctx context.Context, documentID int64) error

	// Summary operations
	CreateSummaryIfAbsent(ctx context.Context, summary *model.Summary) error
	GetSummaryByDocumentID(ctx context.Context, documentID int64) (*model.Summary, error)

	// Data point operations
	UpsertDataPoints(ctx context.Context, documentID int64, points []model.DataPoint) error
	GetDataPointsByDocumentID(ctx context.Context, documentID int64) ([]model.DataPoint, error)

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, name, description string) (*model.Category, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
