// Package pipeline implements the document analysis orchestrator: it finds
// documents missing analysis artifacts and drives each through content
// resolution, analysis and persistence, one document at a time.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ecodocs/reportpipe/internal/analyzer"
	"github.com/ecodocs/reportpipe/internal/model"
	"github.com/ecodocs/reportpipe/internal/service"
)

// Orchestrator drives the enrichment pipeline over a batch of documents.
// Processing is strictly sequential: the analyzer is a single shared process
// and parallel fan-out would exhaust it.
type Orchestrator struct {
	storage   service.Storage
	resolver  ContentResolver
	analyzer  Analyzer
	pacer     Pacer
	onOutcome func(model.ProcessingOutcome)
	batchSize int
}

// Config holds configuration options for the orchestrator.
type Config struct {
	// OnOutcome, if set, is invoked after each document's terminal state,
	// before pacing. Used for progress reporting.
	OnOutcome func(model.ProcessingOutcome)
	BatchSize int
}

// New creates an orchestrator with the default batch size.
func New(storage service.Storage, resolver ContentResolver, analyzer Analyzer, pacer Pacer) *Orchestrator {
	return NewWithConfig(storage, resolver, analyzer, pacer, Config{})
}

// NewWithConfig creates an orchestrator with custom configuration.
func NewWithConfig(storage service.Storage, resolver ContentResolver, analyzer Analyzer, pacer Pacer, cfg Config) *Orchestrator {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Orchestrator{
		storage:   storage,
		resolver:  resolver,
		analyzer:  analyzer,
		pacer:     pacer,
		batchSize: batchSize,
		onOutcome: cfg.OnOutcome,
	}
}

// ProcessBatch finds documents needing analysis and processes them oldest
// first. When documentID is non-nil only that document is considered (the
// internal maintenance path); if it does not exist the report is empty.
//
// Per-document failures are recorded in the report and never abort the
// batch. The only fatal condition is failing to fetch the candidate list.
// Cancellation is honored between documents; an in-flight analysis call runs
// to completion or to its timeout.
func (o *Orchestrator) ProcessBatch(ctx context.Context, documentID *int64) (*model.ProcessingReport, error) {
	docs, err := o.findCandidates(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidate documents: %w", err)
	}

	slog.Info("starting document analysis batch", "candidates", len(docs))

	report := &model.ProcessingReport{}
	for i, doc := range docs {
		select {
		case <-ctx.Done():
			slog.Info("batch canceled, stopping before next document",
				"processed", report.Processed,
				"failed", report.Failed)
			return report, ctx.Err()
		default:
		}

		outcome := o.processDocument(ctx, doc)
		report.Add(outcome)
		if o.onOutcome != nil {
			o.onOutcome(outcome)
		}

		if i == len(docs)-1 || !outcome.NeededProcessing {
			continue
		}
		if err := o.pace(ctx, outcome); err != nil {
			return report, err
		}
	}

	slog.Info("document analysis batch finished",
		"total_found", report.TotalFound,
		"already_processed", report.AlreadyProcessed,
		"processed", report.Processed,
		"failed", report.Failed)
	return report, nil
}

func (o *Orchestrator) findCandidates(ctx context.Context, documentID *int64) ([]model.Document, error) {
	if documentID == nil {
		return o.storage.GetDocumentsNeedingAnalysis(ctx, o.batchSize)
	}

	// Maintenance path: a specific document bypasses the pending filter.
	doc, err := o.storage.GetDocumentByID(ctx, *documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		slog.Warn("requested document does not exist", "document_id", *documentID)
		return nil, nil
	}
	return []model.Document{*doc}, nil
}

// processDocument walks one document through the pipeline states:
// CHECKING -> (SKIP) | RESOLVING -> ANALYZING -> PERSISTING -> DONE/FAILED.
func (o *Orchestrator) processDocument(ctx context.Context, doc model.Document) model.ProcessingOutcome {
	outcome := model.ProcessingOutcome{
		DocumentID: doc.ID,
		Title:      doc.Title,
	}

	// CHECKING
	status, err := o.storage.GetAnalysisStatus(ctx, doc.ID)
	if err != nil {
		outcome.NeededProcessing = true
		outcome.Error = fmt.Sprintf("failed to check analysis status: %v", err)
		return outcome
	}

	outcome.HasSummary = status.HasSummary
	outcome.HasDataPoints = status.HasDataPoints
	outcome.HasCategory = status.HasCategory

	if status.Complete() {
		slog.Debug("document already analyzed, skipping", "document_id", doc.ID)
		return outcome
	}
	outcome.NeededProcessing = true

	// RESOLVING
	resolved, err := o.resolver.Resolve(ctx, doc)
	if err != nil {
		slog.Error("failed to resolve document content",
			"document_id", doc.ID,
			"reference", doc.FilePath,
			"error", err)
		outcome.Error = err.Error()
		return outcome
	}
	defer func() {
		if cleanupErr := resolved.Cleanup(); cleanupErr != nil {
			slog.Warn("failed to clean up resolved content",
				"document_id", doc.ID,
				"path", resolved.Path,
				"error", cleanupErr)
		}
	}()

	// ANALYZING
	slog.Info("sending document to analysis service", "document_id", doc.ID, "title", doc.Title)
	result, err := o.analyzer.Analyze(ctx, resolved.Path, doc.ID)
	if err != nil {
		slog.Error("analysis failed", "document_id", doc.ID, "error", err)
		outcome.Error = err.Error()
		return outcome
	}

	// PERSISTING
	o.persistResult(ctx, doc, *status, result, &outcome)
	return outcome
}

// persistResult writes only the artifacts the document is still missing.
// Each artifact commits independently: a failure is logged, the other
// artifacts are still attempted, and whatever was written stays written. The
// document then simply remains incomplete and is retried on the next run.
func (o *Orchestrator) persistResult(ctx context.Context, doc model.Document, status model.AnalysisStatus, result *analyzer.Result, outcome *model.ProcessingOutcome) {
	var failures []string

	if !status.HasSummary && result.Summary != nil {
		summary := *result.Summary
		summary.DocumentID = doc.ID
		if summary.AnalyzedAt.IsZero() {
			summary.AnalyzedAt = time.Now()
		}
		if err := o.storage.CreateSummaryIfAbsent(ctx, &summary); err != nil {
			slog.Error("failed to persist summary", "document_id", doc.ID, "error", err)
			failures = append(failures, fmt.Sprintf("summary: %v", err))
		} else {
			outcome.HasSummary = true
		}
	}

	switch {
	case len(result.DataPoints) > 0:
		if err := o.storage.UpsertDataPoints(ctx, doc.ID, result.DataPoints); err != nil {
			slog.Error("failed to persist data points", "document_id", doc.ID, "error", err)
			failures = append(failures, fmt.Sprintf("data points: %v", err))
		} else {
			outcome.HasDataPoints = true
		}
	case !status.HasDataPoints && !status.NoExtractableData && outcome.HasSummary:
		// Analysis succeeded and confirmed there is nothing to extract;
		// flag it so the document is not reprocessed forever.
		if err := o.storage.MarkNoExtractableData(ctx, doc.ID); err != nil {
			slog.Error("failed to set no-extractable-data flag", "document_id", doc.ID, "error", err)
			failures = append(failures, fmt.Sprintf("no-data flag: %v", err))
		}
	}

	if !status.HasCategory && result.CategoryName != "" {
		assigned, err := o.storage.AssignCategoryIfAbsent(ctx, doc.ID, result.CategoryName)
		if err != nil {
			slog.Error("failed to assign category", "document_id", doc.ID, "error", err)
			failures = append(failures, fmt.Sprintf("category: %v", err))
		} else if assigned {
			outcome.HasCategory = true
		}
	}

	if len(failures) > 0 {
		outcome.Error = "persistence incomplete: " + strings.Join(failures, "; ")
		return
	}
	outcome.Processed = true
}

func (o *Orchestrator) pace(ctx context.Context, outcome model.ProcessingOutcome) error {
	if outcome.Processed {
		return o.pacer.AfterSuccess(ctx)
	}
	return o.pacer.AfterFailure(ctx)
}
