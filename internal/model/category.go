package model

import "time"

// Category is reference data the pipeline reads but never creates. Analyzer
// category names are matched against it exactly; unmatched names are ignored.
type Category struct {
	CreatedAt   time.Time
	Name        string
	Description string
	ID          int64
}
