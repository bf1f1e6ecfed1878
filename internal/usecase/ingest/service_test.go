package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/lodestone-ai/lodestone-go/internal/domain"
	"github.com/lodestone-ai/lodestone-go/internal/metrics"
)

// mockSubmitter records submitted batches and fails where told to.
type mockSubmitter struct {
	mu       sync.Mutex
	batches  [][]domain.Record
	kinds    []domain.RecordKind
	failOn   map[int]error // submission order index -> error
	inFlight int
	maxSeen  int
}

func (m *mockSubmitter) SubmitBatch(
	_ context.Context, _, _ string, kind domain.RecordKind, records []domain.Record,
) error {
	m.mu.Lock()
	call := len(m.batches)
	m.batches = append(m.batches, records)
	m.kinds = append(m.kinds, kind)
	m.inFlight++
	if m.inFlight > m.maxSeen {
		m.maxSeen = m.inFlight
	}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if err, ok := m.failOn[call]; ok {
		return err
	}
	return nil
}

func (m *mockSubmitter) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

func newService(submit BatchSubmitter) *Service {
	return New(submit, nil, Options{MaxBatchSize: 10, MaxBatchBytes: 1 << 20, Concurrency: 1})
}

func vectors(t *testing.T, n, dim int) []domain.Record {
	t.Helper()
	out := make([]domain.Record, n)
	for i := range out {
		r, err := domain.NewVectorRecord(make([]float32, dim), map[string]any{"i": i})
		if err != nil {
			t.Fatalf("NewVectorRecord: %v", err)
		}
		out[i] = r
	}
	return out
}

func TestInsert_EmptyInput(t *testing.T) {
	sub := &mockSubmitter{}
	report, err := newService(sub).Insert(context.Background(),
		"c-1", domain.ResolveModel(domain.ModelJinaSmallEN), nil, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TotalRecords != 0 || report.Succeeded != 0 || report.Failed != 0 {
		t.Errorf("report = %+v, want all zeros", report)
	}
	if sub.calls() != 0 {
		t.Errorf("submissions = %d, want 0 (no network for empty input)", sub.calls())
	}
}

func TestInsert_BatchCount(t *testing.T) {
	// ceil(N/B) submissions, succeeded+failed == N.
	tests := []struct{ n, batchSize, wantCalls int }{
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
	}
	for _, tt := range tests {
		sub := &mockSubmitter{}
		report, err := newService(sub).Insert(context.Background(),
			"c-1", domain.ResolveModel(domain.ModelJinaSmallEN),
			vectors(t, tt.n, 512), Options{MaxBatchSize: tt.batchSize})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sub.calls() != tt.wantCalls {
			t.Errorf("n=%d B=%d: submissions = %d, want %d", tt.n, tt.batchSize, sub.calls(), tt.wantCalls)
		}
		if report.Succeeded+report.Failed != tt.n {
			t.Errorf("n=%d: succeeded+failed = %d", tt.n, report.Succeeded+report.Failed)
		}
	}
}

func TestInsert_ValidationExcludesBeforeNetwork(t *testing.T) {
	// Two good text records and one vector of wrong length against a
	// 512-dim text-capable model: the bad record fails locally, the
	// good ones travel together in one batch.
	model := domain.ResolveModel(domain.ModelJinaSmallEN)

	a, _ := domain.NewTextRecord("A", nil)
	b, _ := domain.NewTextRecord("B", nil)
	bad, _ := domain.NewVectorRecord([]float32{0.1}, nil)

	sub := &mockSubmitter{}
	report, err := newService(sub).Insert(context.Background(),
		"c-1", model, []domain.Record{a, b, bad}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sub.calls() != 1 {
		t.Fatalf("submissions = %d, want 1", sub.calls())
	}
	if len(sub.batches[0]) != 2 {
		t.Errorf("submitted batch size = %d, want 2", len(sub.batches[0]))
	}
	if report.Succeeded != 2 || report.Failed != 1 {
		t.Errorf("report = %+v", report)
	}
	if len(report.PerBatchErrors) != 1 {
		t.Fatalf("PerBatchErrors = %d entries", len(report.PerBatchErrors))
	}
	be := report.PerBatchErrors[0]
	if be.BatchIndex != -1 {
		t.Errorf("BatchIndex = %d, want -1 for validation failure", be.BatchIndex)
	}
	if !errors.Is(be.Err, domain.ErrDimensionMismatch) {
		t.Errorf("err = %v, want ErrDimensionMismatch", be.Err)
	}
	if !errors.Is(be.Err, domain.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation wrapping", be.Err)
	}
}

func TestInsert_PartialFailure(t *testing.T) {
	// Batch 1 of 3 fails permanently; batches 2 and 3 are still attempted.
	sub := &mockSubmitter{failOn: map[int]error{
		1: fmt.Errorf("%w: rejected", domain.ErrPermanentServer),
	}}
	report, err := newService(sub).Insert(context.Background(),
		"c-1", domain.ResolveModel(domain.ModelJinaSmallEN),
		vectors(t, 25, 512), Options{MaxBatchSize: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sub.calls() != 3 {
		t.Errorf("submissions = %d, want 3 (siblings attempted)", sub.calls())
	}
	if report.Succeeded != 15 || report.Failed != 10 {
		t.Errorf("report = %+v", report)
	}
	if len(report.PerBatchErrors) != 1 {
		t.Fatalf("PerBatchErrors = %d entries, want exactly 1", len(report.PerBatchErrors))
	}
	if report.PerBatchErrors[0].BatchIndex != 1 {
		t.Errorf("BatchIndex = %d, want 1", report.PerBatchErrors[0].BatchIndex)
	}
	if !errors.Is(report.PerBatchErrors[0].Err, domain.ErrPermanentServer) {
		t.Errorf("err = %v", report.PerBatchErrors[0].Err)
	}
}

func TestInsert_AllInvalid(t *testing.T) {
	model := domain.ResolveModel(domain.ModelJinaSmallEN)
	sub := &mockSubmitter{}

	report, err := newService(sub).Insert(context.Background(),
		"c-1", model, vectors(t, 3, 7), Options{}) // wrong dimension
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.calls() != 0 {
		t.Errorf("submissions = %d, want 0", sub.calls())
	}
	if report.Failed != 3 || report.Succeeded != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestInsert_Concurrent(t *testing.T) {
	sub := &mockSubmitter{}
	report, err := newService(sub).Insert(context.Background(),
		"c-1", domain.ResolveModel(domain.ModelJinaSmallEN),
		vectors(t, 100, 512), Options{MaxBatchSize: 10, Concurrency: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.calls() != 10 {
		t.Errorf("submissions = %d, want 10", sub.calls())
	}
	if report.Succeeded != 100 {
		t.Errorf("Succeeded = %d", report.Succeeded)
	}
	if sub.maxSeen > 4 {
		t.Errorf("max in-flight = %d, want <= 4", sub.maxSeen)
	}
}

func TestInsert_ConcurrentPartialFailure(t *testing.T) {
	sub := &mockSubmitter{failOn: map[int]error{
		0: fmt.Errorf("%w: 503", domain.ErrTransientServer),
		3: fmt.Errorf("%w: 400", domain.ErrPermanentServer),
	}}
	report, err := newService(sub).Insert(context.Background(),
		"c-1", domain.ResolveModel(domain.ModelJinaSmallEN),
		vectors(t, 50, 512), Options{MaxBatchSize: 10, Concurrency: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Succeeded != 30 || report.Failed != 20 {
		t.Errorf("report = %+v", report)
	}
	if len(report.PerBatchErrors) != 2 {
		t.Errorf("PerBatchErrors = %d entries", len(report.PerBatchErrors))
	}
}

func TestInsert_MetricsCountValidationFailuresAsInvalid(t *testing.T) {
	m, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("metrics.New: %v", err)
	}
	sub := &mockSubmitter{}
	svc := New(sub, m, Options{MaxBatchSize: 10, MaxBatchBytes: 1 << 20, Concurrency: 1})

	// A lone wrong-dimension record: it fails validation, forms no
	// batch, and must not drive the batch counters negative.
	report, err := svc.Insert(context.Background(),
		"c-1", domain.ResolveModel(domain.ModelJinaSmallEN),
		vectors(t, 1, 7), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Failed != 1 {
		t.Errorf("report = %+v", report)
	}
	if got := testutil.ToFloat64(m.RecordsIngested.WithLabelValues("invalid")); got != 1 {
		t.Errorf("invalid records = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RecordsIngested.WithLabelValues("failed")); got != 0 {
		t.Errorf("failed records = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.BatchesTotal.WithLabelValues("failed")); got != 0 {
		t.Errorf("failed batches = %v, want 0", got)
	}
}

func TestInsert_MetricsMixedOutcomes(t *testing.T) {
	m, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("metrics.New: %v", err)
	}
	sub := &mockSubmitter{failOn: map[int]error{
		0: fmt.Errorf("%w: rejected", domain.ErrPermanentServer),
	}}
	svc := New(sub, m, Options{MaxBatchSize: 10, MaxBatchBytes: 1 << 20, Concurrency: 1})

	records := append(vectors(t, 25, 512), vectors(t, 2, 7)...)
	report, err := svc.Insert(context.Background(),
		"c-1", domain.ResolveModel(domain.ModelJinaSmallEN), records, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Succeeded != 15 || report.Failed != 12 {
		t.Errorf("report = %+v", report)
	}
	if got := testutil.ToFloat64(m.RecordsIngested.WithLabelValues("ok")); got != 15 {
		t.Errorf("ok records = %v, want 15", got)
	}
	if got := testutil.ToFloat64(m.RecordsIngested.WithLabelValues("failed")); got != 10 {
		t.Errorf("failed records = %v, want 10", got)
	}
	if got := testutil.ToFloat64(m.RecordsIngested.WithLabelValues("invalid")); got != 2 {
		t.Errorf("invalid records = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.BatchesTotal.WithLabelValues("ok")); got != 2 {
		t.Errorf("ok batches = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.BatchesTotal.WithLabelValues("failed")); got != 1 {
		t.Errorf("failed batches = %v, want 1", got)
	}
}

func TestInsert_InvalidOptions(t *testing.T) {
	sub := &mockSubmitter{}
	_, err := newService(sub).Insert(context.Background(),
		"c-1", domain.ResolveModel(domain.ModelJinaSmallEN),
		vectors(t, 1, 512), Options{MaxBatchSize: -1})
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
	if sub.calls() != 0 {
		t.Error("bad options must fail before any submission")
	}
}

func TestInsert_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sub := &mockSubmitter{}
	report, err := newService(sub).Insert(ctx,
		"c-1", domain.ResolveModel(domain.ModelJinaSmallEN),
		vectors(t, 25, 512), Options{MaxBatchSize: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.calls() != 0 {
		t.Errorf("submissions = %d, want 0 after cancellation", sub.calls())
	}
	if report.Failed != 25 {
		t.Errorf("Failed = %d, want 25", report.Failed)
	}
}
