// Package model defines the core domain types shared across the application.
package model

import "time"

// Document represents a single uploaded report subject to analysis.
// Documents are created by the upload flow; the pipeline only ever sets the
// category reference and the no-extractable-data flag.
type Document struct {
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Title             string
	FilePath          string // local bucket path or remote URL
	CategoryID        *int64
	ID                int64
	OwnerID           int64
	IsPublic          bool
	NoExtractableData bool
}

// AnalysisStatus captures which analysis artifacts a document already has.
type AnalysisStatus struct {
	HasSummary        bool
	HasDataPoints     bool
	HasCategory       bool
	NoExtractableData bool
}

// Complete reports whether a document needs no further analysis.
// A document is complete once it has a summary and either at least one
// extracted data point or a confirmation that nothing is extractable.
func (s AnalysisStatus) Complete() bool {
	return s.HasSummary && (s.HasDataPoints || s.NoExtractableData)
}
