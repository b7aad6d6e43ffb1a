package pipeline

import (
	"context"

	"github.com/ecodocs/reportpipe/internal/analyzer"
	"github.com/ecodocs/reportpipe/internal/content"
	"github.com/ecodocs/reportpipe/internal/model"
)

// ContentResolver yields a readable local copy of a document's content.
type ContentResolver interface {
	Resolve(ctx context.Context, doc model.Document) (content.Resolved, error)
}

// Analyzer sends a resolved file to the analysis service.
type Analyzer interface {
	Analyze(ctx context.Context, filePath string, documentID int64) (*analyzer.Result, error)
}

// Pacer spaces out analysis calls. The analyzer is a single shared,
// memory-constrained process; it needs recovery time between heavy
// invocations and more of it after a failure.
type Pacer interface {
	AfterSuccess(ctx context.Context) error
	AfterFailure(ctx context.Context) error
}
