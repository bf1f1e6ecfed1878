package lodestone

import (
	"time"

	"github.com/lodestone-ai/lodestone-go/internal/domain"
)

// Built-in embedding model identifiers.
const (
	ModelJinaBaseEN  = domain.ModelJinaBaseEN
	ModelJinaSmallEN = domain.ModelJinaSmallEN
	ModelAda002      = domain.ModelAda002
	ModelText3Small  = domain.ModelText3Small
	ModelText3Large  = domain.ModelText3Large
	ModelBGEBase     = domain.ModelBGEBase
	ModelBGELarge    = domain.ModelBGELarge
)

// ModelSpec describes an embedding model: identifier, dimensionality
// (0 = unknown), and whether the service can embed raw query strings
// against it.
type ModelSpec struct {
	Identifier         string
	Dimension          int
	SupportsTextSearch bool
	Custom             bool
}

// ResolveModel maps a model identifier to its spec. Unknown identifiers
// resolve to a custom spec with unknown dimension and no text search.
func ResolveModel(identifier string) ModelSpec {
	return fromDomainSpec(domain.ResolveModel(identifier))
}

// Record is one unit of ingestion: text or a vector, plus free-form
// metadata. Build records with TextRecord or VectorRecord.
type Record struct {
	inner domain.Record
}

// TextRecord creates a text record for server-side embedding.
func TextRecord(text string, metadata map[string]any) (Record, error) {
	r, err := domain.NewTextRecord(text, metadata)
	if err != nil {
		return Record{}, err
	}
	return Record{inner: r}, nil
}

// VectorRecord creates a pre-embedded vector record.
func VectorRecord(vector []float32, metadata map[string]any) (Record, error) {
	r, err := domain.NewVectorRecord(vector, metadata)
	if err != nil {
		return Record{}, err
	}
	return Record{inner: r}, nil
}

// KnowledgeBase is a named, server-managed collection of indexed
// records sharing one embedding model.
type KnowledgeBase struct {
	ID             string
	Name           string
	Category       string
	Description    string
	EmbeddingModel string
	CreatedAt      time.Time
}

// BatchError records the failure of one submitted batch. BatchIndex -1
// marks a pre-flight validation failure that never formed a batch.
type BatchError struct {
	BatchIndex int
	Err        error
}

// IngestionReport aggregates per-batch outcomes of one Insert call.
// Succeeded+Failed always equals TotalRecords.
type IngestionReport struct {
	TotalRecords   int
	Succeeded      int
	Failed         int
	PerBatchErrors []BatchError
}

// SearchResult is one search or query hit. Results are ordered by
// descending score; ties keep the service's response order.
type SearchResult struct {
	ID       string
	Score    float64
	Text     string
	Metadata map[string]any
}

// FetchedRecord is one entry of a Fetch result. Found is false when the
// remote index has no record for the id.
type FetchedRecord struct {
	ID       string
	Found    bool
	Text     string
	Vector   []float32
	Metadata map[string]any
}

func fromDomainSpec(s domain.ModelSpec) ModelSpec {
	return ModelSpec{
		Identifier:         s.Identifier,
		Dimension:          s.Dimension,
		SupportsTextSearch: s.SupportsTextSearch,
		Custom:             s.Custom,
	}
}

func fromDomainKB(kb domain.KnowledgeBase) KnowledgeBase {
	return KnowledgeBase{
		ID:             kb.ID,
		Name:           kb.Name,
		Category:       kb.Category,
		Description:    kb.Description,
		EmbeddingModel: kb.EmbeddingModel,
		CreatedAt:      kb.CreatedAt,
	}
}

func fromDomainReport(r domain.IngestionReport) IngestionReport {
	out := IngestionReport{
		TotalRecords: r.TotalRecords,
		Succeeded:    r.Succeeded,
		Failed:       r.Failed,
	}
	for _, be := range r.PerBatchErrors {
		out.PerBatchErrors = append(out.PerBatchErrors, BatchError{
			BatchIndex: be.BatchIndex,
			Err:        be.Err,
		})
	}
	return out
}

func fromDomainResults(results []domain.SearchResult) []SearchResult {
	out := make([]SearchResult, len(results))
	for i, r := range results {
		out[i] = SearchResult{
			ID:       r.ID,
			Score:    r.Score,
			Text:     r.Text,
			Metadata: r.Metadata,
		}
	}
	return out
}

func fromDomainFetched(records map[string]domain.FetchedRecord) map[string]FetchedRecord {
	out := make(map[string]FetchedRecord, len(records))
	for id, r := range records {
		out[id] = FetchedRecord{
			ID:       r.ID,
			Found:    r.Found,
			Text:     r.Text,
			Vector:   r.Vector,
			Metadata: r.Metadata,
		}
	}
	return out
}

func toDomainRecords(records []Record) []domain.Record {
	out := make([]domain.Record, len(records))
	for i, r := range records {
		out[i] = r.inner
	}
	return out
}
