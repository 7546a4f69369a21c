// ABOUTME: Ingestion result types: per-record errors and partial-success status.
// ABOUTME: A failed record never aborts its siblings.
package ingest

import (
	"errors"
	"fmt"
)

// ErrMissingData marks a structurally unusable payload (no data object).
var ErrMissingData = errors.New("payload has no data object")

// Status summarizes an ingestion run.
type Status string

const (
	// StatusSuccess: at least one record stored, no record failed.
	StatusSuccess Status = "success"
	// StatusPartial: some records stored, some failed.
	StatusPartial Status = "partial"
	// StatusFailed: the payload was structurally unusable or every
	// record failed.
	StatusFailed Status = "failed"
)

// RecordError describes one failed record inside a batch.
type RecordError struct {
	Collection string `json:"collection"`
	Index      int    `json:"index"`
	Reason     string `json:"reason"`
}

func (e RecordError) String() string {
	return fmt.Sprintf("%s[%d]: %s", e.Collection, e.Index, e.Reason)
}

// Result reports what an ingestion run did.
type Result struct {
	Status                 Status        `json:"status"`
	MetricsProcessed       int           `json:"metrics_processed"`
	SleepSessionsProcessed int           `json:"sleep_sessions_processed"`
	WorkoutsProcessed      int           `json:"workouts_processed"`
	Duplicates             int           `json:"duplicates"`
	Errors                 []RecordError `json:"errors,omitempty"`
}

// processed returns the total number of records handled successfully.
func (r *Result) processed() int {
	return r.MetricsProcessed + r.SleepSessionsProcessed + r.WorkoutsProcessed
}

// finalize sets the overall status from the counts.
func (r *Result) finalize() {
	switch {
	case r.processed() > 0 && len(r.Errors) == 0:
		r.Status = StatusSuccess
	case r.processed() > 0:
		r.Status = StatusPartial
	default:
		r.Status = StatusFailed
	}
}

// addError records a per-record failure.
func (r *Result) addError(collection string, index int, reason string) {
	r.Errors = append(r.Errors, RecordError{Collection: collection, Index: index, Reason: reason})
}
