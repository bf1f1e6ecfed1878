package domain

import (
	"sort"
	"sync"
)

// BatchError records the failure of one submitted batch.
type BatchError struct {
	BatchIndex int
	Err        error
}

// IngestionReport aggregates per-batch outcomes of a single insert call.
type IngestionReport struct {
	TotalRecords   int
	Succeeded      int
	Failed         int
	PerBatchErrors []BatchError
}

// ReportCollector builds an IngestionReport incrementally. Safe for
// concurrent use: one writer at a time behind a mutex, so concurrent
// batch workers can report without coordinating.
type ReportCollector struct {
	mu     sync.Mutex
	report IngestionReport
}

// NewReportCollector creates a collector for the given input size.
func NewReportCollector(totalRecords int) *ReportCollector {
	return &ReportCollector{report: IngestionReport{TotalRecords: totalRecords}}
}

// AddSuccess records n successfully ingested records.
func (c *ReportCollector) AddSuccess(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.Succeeded += n
}

// AddFailure records n failed records attributed to batch batchIndex.
// A negative batchIndex marks a pre-flight validation failure that never
// formed a batch.
func (c *ReportCollector) AddFailure(batchIndex, n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.Failed += n
	c.report.PerBatchErrors = append(c.report.PerBatchErrors, BatchError{
		BatchIndex: batchIndex,
		Err:        err,
	})
}

// Report returns the aggregated report. Call once after all batches settle.
func (c *ReportCollector) Report() IngestionReport {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Batch errors accumulate out of order under concurrent submission.
	sort.SliceStable(c.report.PerBatchErrors, func(i, j int) bool {
		return c.report.PerBatchErrors[i].BatchIndex < c.report.PerBatchErrors[j].BatchIndex
	})
	return c.report
}
