package model

// ProcessingOutcome is the per-document verdict of one pipeline run. The
// artifact flags reflect the document's state after processing (or its
// existing state for documents that were skipped as already complete).
type ProcessingOutcome struct {
	Error            string `json:"error,omitempty"`
	Title            string `json:"title"`
	DocumentID       int64  `json:"document_id"`
	HasSummary       bool   `json:"has_summary"`
	HasDataPoints    bool   `json:"has_extracted_data"`
	HasCategory      bool   `json:"has_category"`
	NeededProcessing bool   `json:"needed_processing"`
	Processed        bool   `json:"processed"`
}

// Failed reports whether the document needed processing and did not finish.
func (o ProcessingOutcome) Failed() bool {
	return o.NeededProcessing && !o.Processed
}

// ProcessingReport aggregates one batch run. It is transient; callers inspect
// it for diagnostics but it is never persisted.
type ProcessingReport struct {
	Outcomes         []ProcessingOutcome `json:"outcomes"`
	TotalFound       int                 `json:"total_found"`
	AlreadyProcessed int                 `json:"already_processed"`
	NeedsProcessing  int                 `json:"needs_processing"`
	Processed        int                 `json:"processed"`
	Failed           int                 `json:"failed"`
}

// Add folds a per-document outcome into the report totals.
func (r *ProcessingReport) Add(outcome ProcessingOutcome) {
	r.Outcomes = append(r.Outcomes, outcome)
	r.TotalFound++
	if !outcome.NeededProcessing {
		r.AlreadyProcessed++
		return
	}
	r.NeedsProcessing++
	if outcome.Processed {
		r.Processed++
	} else {
		r.Failed++
	}
}
