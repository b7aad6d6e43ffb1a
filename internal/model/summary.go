package model

import "time"

// Summary is the single textual synthesis of a document produced by the
// analyzer. At most one summary exists per document and it is never
// overwritten once created.
type Summary struct {
	AnalyzedAt time.Time
	Content    string
	ID         int64
	DocumentID int64
	Confidence float64
}
