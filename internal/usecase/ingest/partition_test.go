package ingest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/lodestone-ai/lodestone-go/internal/domain"
)

func textRecords(t *testing.T, n int) []domain.Record {
	t.Helper()
	out := make([]domain.Record, n)
	for i := range out {
		r, err := domain.NewTextRecord(fmt.Sprintf("text-%d", i), nil)
		if err != nil {
			t.Fatalf("NewTextRecord: %v", err)
		}
		out[i] = r
	}
	return out
}

func TestPartition_CountBound(t *testing.T) {
	tests := []struct {
		n, maxCount, wantBatches int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{100, 1, 100},
	}
	for _, tt := range tests {
		batches := partition(textRecords(t, tt.n), tt.maxCount, 1<<30)
		if len(batches) != tt.wantBatches {
			t.Errorf("partition(%d records, max %d) = %d batches, want %d",
				tt.n, tt.maxCount, len(batches), tt.wantBatches)
		}
	}
}

func TestPartition_PreservesOrder(t *testing.T) {
	records := textRecords(t, 25)
	batches := partition(records, 10, 1<<30)

	var i int
	for _, b := range batches {
		for _, r := range b.records {
			want := fmt.Sprintf("text-%d", i)
			if r.Text() != want {
				t.Fatalf("record out of order: got %q, want %q", r.Text(), want)
			}
			i++
		}
	}
	if i != 25 {
		t.Errorf("records across batches = %d, want 25", i)
	}
	for idx, b := range batches {
		if b.index != idx {
			t.Errorf("batch index = %d, want %d", b.index, idx)
		}
	}
}

func TestPartition_ByteBound(t *testing.T) {
	var records []domain.Record
	for i := 0; i < 4; i++ {
		r, err := domain.NewTextRecord(strings.Repeat("x", 100), nil)
		if err != nil {
			t.Fatalf("NewTextRecord: %v", err)
		}
		records = append(records, r)
	}

	// 250 bytes fit two 100-byte records per batch.
	batches := partition(records, 50, 250)
	if len(batches) != 2 {
		t.Fatalf("batches = %d, want 2", len(batches))
	}
	for _, b := range batches {
		if len(b.records) != 2 {
			t.Errorf("batch size = %d, want 2", len(b.records))
		}
	}
}

func TestPartition_OversizedRecordStillAttempted(t *testing.T) {
	big, err := domain.NewTextRecord(strings.Repeat("x", 1000), nil)
	if err != nil {
		t.Fatalf("NewTextRecord: %v", err)
	}
	small, err := domain.NewTextRecord("small", nil)
	if err != nil {
		t.Fatalf("NewTextRecord: %v", err)
	}

	batches := partition([]domain.Record{small, big, small}, 50, 100)
	if len(batches) != 3 {
		t.Fatalf("batches = %d, want 3", len(batches))
	}
	if len(batches[1].records) != 1 || batches[1].records[0].ApproxSize() < 1000 {
		t.Error("oversized record should form its own single-record batch")
	}
}

func TestPartition_SplitsOnKindChange(t *testing.T) {
	text, _ := domain.NewTextRecord("hello", nil)
	vec, _ := domain.NewVectorRecord([]float32{1, 2, 3}, nil)

	batches := partition([]domain.Record{text, text, vec, vec, text}, 50, 1<<30)
	if len(batches) != 3 {
		t.Fatalf("batches = %d, want 3", len(batches))
	}
	wantKinds := []domain.RecordKind{domain.KindText, domain.KindVector, domain.KindText}
	wantSizes := []int{2, 2, 1}
	for i, b := range batches {
		if b.kind != wantKinds[i] {
			t.Errorf("batch %d kind = %q, want %q", i, b.kind, wantKinds[i])
		}
		if len(b.records) != wantSizes[i] {
			t.Errorf("batch %d size = %d, want %d", i, len(b.records), wantSizes[i])
		}
	}
}
