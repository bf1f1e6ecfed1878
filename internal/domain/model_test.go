package domain

import (
	"errors"
	"testing"
)

func TestResolveModel_Builtin(t *testing.T) {
	tests := []struct {
		id  string
		dim int
	}{
		{ModelJinaBaseEN, 768},
		{ModelJinaSmallEN, 512},
		{ModelAda002, 1536},
		{ModelText3Small, 1536},
		{ModelText3Large, 3072},
		{ModelBGEBase, 768},
		{ModelBGELarge, 1024},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			spec := ResolveModel(tt.id)
			if spec.Dimension != tt.dim {
				t.Errorf("Dimension = %d, want %d", spec.Dimension, tt.dim)
			}
			if !spec.SupportsTextSearch {
				t.Error("built-in model should support text search")
			}
			if spec.Custom {
				t.Error("built-in model marked custom")
			}
		})
	}
}

func TestResolveModel_Custom(t *testing.T) {
	spec := ResolveModel("my-org/my-model")
	if !spec.Custom {
		t.Error("unknown identifier should resolve to a custom spec")
	}
	if spec.Dimension != 0 {
		t.Errorf("custom dimension = %d, want 0 (unknown)", spec.Dimension)
	}
	if spec.SupportsTextSearch {
		t.Error("custom model must not support text search")
	}
	if spec.Identifier != "my-org/my-model" {
		t.Errorf("identifier = %q", spec.Identifier)
	}
}

func TestResolveModel_Idempotent(t *testing.T) {
	for _, id := range []string{ModelAda002, "custom-model"} {
		a := ResolveModel(id)
		b := ResolveModel(id)
		if a != b {
			t.Errorf("ResolveModel(%q) not idempotent: %+v vs %+v", id, a, b)
		}
	}
}

func TestValidateVector(t *testing.T) {
	spec := ResolveModel(ModelJinaSmallEN) // 512 dims

	if err := ValidateVector(spec, make([]float32, 512)); err != nil {
		t.Errorf("matching length: %v", err)
	}

	err := ValidateVector(spec, make([]float32, 3))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("err = %v, want ErrDimensionMismatch", err)
	}
	var dimErr *DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("err = %v, want *DimensionError", err)
	}
	if dimErr.Want != 512 || dimErr.Got != 3 {
		t.Errorf("DimensionError = %+v", dimErr)
	}
}

func TestValidateVector_UnknownDimension(t *testing.T) {
	spec := ResolveModel("custom-model")
	// Unknown dimension defers to server-side validation.
	if err := ValidateVector(spec, make([]float32, 7)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
