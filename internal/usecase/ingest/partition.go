package ingest

import "github.com/lodestone-ai/lodestone-go/internal/domain"

// batch is one size-bounded, homogeneous group of records. Index is the
// batch's position in submission order, used in the ingestion report.
type batch struct {
	index   int
	kind    domain.RecordKind
	records []domain.Record
}

// partition splits records into batches bounded by maxCount and
// maxBytes, whichever binds first, preserving original order. A kind
// change also closes the current batch: text and vector records travel
// to different endpoints. A single record larger than maxBytes still
// forms its own batch and is attempted; only the batch is bounded, not
// the record.
func partition(records []domain.Record, maxCount, maxBytes int) []batch {
	var (
		batches []batch
		current []domain.Record
		kind    domain.RecordKind
		bytes   int
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		batches = append(batches, batch{
			index:   len(batches),
			kind:    kind,
			records: current,
		})
		current = nil
		bytes = 0
	}

	for _, r := range records {
		size := r.ApproxSize()
		if len(current) > 0 &&
			(r.Kind() != kind || len(current) >= maxCount || bytes+size > maxBytes) {
			flush()
		}
		if len(current) == 0 {
			kind = r.Kind()
		}
		current = append(current, r)
		bytes += size
	}
	flush()

	return batches
}
