package domain

import "fmt"

// ModelSpec describes an embedding model: its identifier, vector
// dimensionality, and whether the remote service can embed a raw query
// string against it.
type ModelSpec struct {
	Identifier         string
	Dimension          int // 0 = unknown (validated by the server)
	SupportsTextSearch bool
	Custom             bool
}

// Built-in embedding model identifiers.
const (
	ModelJinaBaseEN  = "jina-embeddings-v2-base-en"
	ModelJinaSmallEN = "jina-embeddings-v2-small-en"
	ModelAda002      = "text-embedding-ada-002"
	ModelText3Small  = "text-embedding-3-small"
	ModelText3Large  = "text-embedding-3-large"
	ModelBGEBase     = "BAAI/bge-base-en-v1.5"
	ModelBGELarge    = "BAAI/bge-large-en-v1.5"
)

// builtinModels is fixed at startup and queried by value lookup.
var builtinModels = map[string]ModelSpec{
	ModelJinaBaseEN:  {Identifier: ModelJinaBaseEN, Dimension: 768, SupportsTextSearch: true},
	ModelJinaSmallEN: {Identifier: ModelJinaSmallEN, Dimension: 512, SupportsTextSearch: true},
	ModelAda002:      {Identifier: ModelAda002, Dimension: 1536, SupportsTextSearch: true},
	ModelText3Small:  {Identifier: ModelText3Small, Dimension: 1536, SupportsTextSearch: true},
	ModelText3Large:  {Identifier: ModelText3Large, Dimension: 3072, SupportsTextSearch: true},
	ModelBGEBase:     {Identifier: ModelBGEBase, Dimension: 768, SupportsTextSearch: true},
	ModelBGELarge:    {Identifier: ModelBGELarge, Dimension: 1024, SupportsTextSearch: true},
}

// ResolveModel maps an identifier to its spec. Unrecognized identifiers
// resolve to a custom spec with unknown dimension and no text search;
// the remote service remains the authority for those.
func ResolveModel(identifier string) ModelSpec {
	if spec, ok := builtinModels[identifier]; ok {
		return spec
	}
	return ModelSpec{Identifier: identifier, Custom: true}
}

// BuiltinModels returns the identifiers of all built-in models.
func BuiltinModels() []string {
	ids := make([]string, 0, len(builtinModels))
	for id := range builtinModels {
		ids = append(ids, id)
	}
	return ids
}

// ValidateVector checks a vector against the model dimension. A spec with
// unknown dimension accepts any length, deferring to server-side checks.
func ValidateVector(spec ModelSpec, vector []float32) error {
	if spec.Dimension > 0 && len(vector) != spec.Dimension {
		return &DimensionError{Want: spec.Dimension, Got: len(vector), Model: spec.Identifier}
	}
	return nil
}

// DimensionError wraps ErrDimensionMismatch with the expected and actual lengths.
type DimensionError struct {
	Want  int
	Got   int
	Model string
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: model %s expects %d dimensions, got %d",
		ErrDimensionMismatch.Error(), e.Model, e.Want, e.Got)
}

func (e *DimensionError) Unwrap() error { return ErrDimensionMismatch }
