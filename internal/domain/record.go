package domain

import "fmt"

// RecordKind distinguishes the two record variants.
type RecordKind string

// Record variants.
const (
	KindText   RecordKind = "text"
	KindVector RecordKind = "vector"
)

// Record is a tagged variant: exactly one of text or vector is set,
// checked at construction rather than at use.
type Record struct {
	kind     RecordKind
	text     string
	vector   []float32
	metadata map[string]any
}

// NewTextRecord creates a text record.
func NewTextRecord(text string, metadata map[string]any) (Record, error) {
	if text == "" {
		return Record{}, fmt.Errorf("%w: text record with empty text", ErrValidation)
	}
	return Record{kind: KindText, text: text, metadata: metadata}, nil
}

// NewVectorRecord creates a vector record.
func NewVectorRecord(vector []float32, metadata map[string]any) (Record, error) {
	if len(vector) == 0 {
		return Record{}, fmt.Errorf("%w: vector record with empty vector", ErrValidation)
	}
	return Record{kind: KindVector, vector: vector, metadata: metadata}, nil
}

// Kind returns the record variant.
func (r Record) Kind() RecordKind { return r.kind }

// Text returns the text payload (empty for vector records).
func (r Record) Text() string { return r.text }

// Vector returns the vector payload (nil for text records).
func (r Record) Vector() []float32 { return r.vector }

// Metadata returns the free-form metadata mapping.
func (r Record) Metadata() map[string]any { return r.metadata }

// ValidateForModel checks the record against the active model: text
// records require a text-capable model, vector records must match the
// model dimension when it is known.
func (r Record) ValidateForModel(spec ModelSpec) error {
	switch r.kind {
	case KindText:
		if !spec.SupportsTextSearch {
			return fmt.Errorf("%w: model %s cannot embed text records",
				ErrUnsupportedOperation, spec.Identifier)
		}
		return nil
	case KindVector:
		return ValidateVector(spec, r.vector)
	default:
		return fmt.Errorf("%w: record has neither text nor vector", ErrValidation)
	}
}

// ApproxSize estimates the record's wire footprint in bytes, used for
// byte-bounded batch partitioning. It does not need to be exact: it only
// has to grow monotonically with the payload.
func (r Record) ApproxSize() int {
	size := len(r.text) + 4*len(r.vector)
	for k, v := range r.metadata {
		size += len(k)
		if s, ok := v.(string); ok {
			size += len(s)
		} else {
			size += 16
		}
	}
	return size
}
