package contract

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lodestone-ai/lodestone-go/internal/domain"
)

type mockRegistry struct {
	createID  string
	createErr error
	lastCreate domain.CreateParams

	contracts    []domain.KnowledgeBase
	contractsErr error

	modelID  string
	modelErr error

	entries    int
	entriesErr error

	createCalls int
	modelCalls  int
}

func (m *mockRegistry) CreateContract(_ context.Context, p domain.CreateParams) (string, error) {
	m.createCalls++
	m.lastCreate = p
	return m.createID, m.createErr
}

func (m *mockRegistry) Contracts(_ context.Context) ([]domain.KnowledgeBase, error) {
	return m.contracts, m.contractsErr
}

func (m *mockRegistry) GetModel(_ context.Context, _ string) (string, error) {
	m.modelCalls++
	return m.modelID, m.modelErr
}

func (m *mockRegistry) EntryCount(_ context.Context, _ string) (int, error) {
	return m.entries, m.entriesErr
}

func TestCreate_BuiltinModel(t *testing.T) {
	reg := &mockRegistry{createID: "c-7"}
	kb, spec, err := New(reg).Create(context.Background(), domain.CreateParams{
		Name:     "history",
		Model:    domain.ModelAda002,
		Category: "History",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kb.ID != "c-7" || kb.Name != "history" {
		t.Errorf("kb = %+v", kb)
	}
	if spec.Dimension != 1536 || spec.Custom {
		t.Errorf("spec = %+v", spec)
	}
}

func TestCreate_EmptyName(t *testing.T) {
	reg := &mockRegistry{}
	_, _, err := New(reg).Create(context.Background(), domain.CreateParams{Model: domain.ModelAda002})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("err = %v", err)
	}
	if reg.createCalls != 0 {
		t.Error("no registry call expected")
	}
}

func TestCreate_EmptyModel(t *testing.T) {
	_, _, err := New(&mockRegistry{}).Create(context.Background(), domain.CreateParams{Name: "kb"})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("err = %v", err)
	}
}

func TestCreate_CustomModelNeedsDimensionHint(t *testing.T) {
	reg := &mockRegistry{}
	_, _, err := New(reg).Create(context.Background(), domain.CreateParams{
		Name:  "kb",
		Model: "custom/embedder-v1",
	})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("err = %v", err)
	}
	if reg.createCalls != 0 {
		t.Error("no registry call expected")
	}
}

func TestCreate_CustomModelWithHint(t *testing.T) {
	reg := &mockRegistry{createID: "c-9"}
	_, spec, err := New(reg).Create(context.Background(), domain.CreateParams{
		Name:          "kb",
		Model:         "custom/embedder-v1",
		DimensionHint: 384,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !spec.Custom || spec.Dimension != 384 {
		t.Errorf("spec = %+v", spec)
	}
}

func TestCreate_RegistryError(t *testing.T) {
	reg := &mockRegistry{createErr: fmt.Errorf("%w: quota exceeded", domain.ErrPermanentServer)}
	_, _, err := New(reg).Create(context.Background(), domain.CreateParams{
		Name:  "kb",
		Model: domain.ModelAda002,
	})
	if !errors.Is(err, domain.ErrPermanentServer) {
		t.Fatalf("err = %v", err)
	}
}

func TestList_MostRecentFirst(t *testing.T) {
	now := time.Now()
	reg := &mockRegistry{contracts: []domain.KnowledgeBase{
		{ID: "old", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "new", CreatedAt: now},
		{ID: "mid", CreatedAt: now.Add(-time.Hour)},
	}}
	kbs, err := New(reg).List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantOrder := []string{"new", "mid", "old"}
	for i, want := range wantOrder {
		if kbs[i].ID != want {
			t.Errorf("kbs[%d].ID = %q, want %q", i, kbs[i].ID, want)
		}
	}
}

func TestSelect_ResolvesModel(t *testing.T) {
	reg := &mockRegistry{modelID: domain.ModelBGELarge}
	spec, err := New(reg).Select(context.Background(), "c-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Identifier != domain.ModelBGELarge || spec.Dimension != 1024 {
		t.Errorf("spec = %+v", spec)
	}
	if reg.modelCalls != 1 {
		t.Errorf("modelCalls = %d", reg.modelCalls)
	}
}

func TestSelect_EmptyID(t *testing.T) {
	reg := &mockRegistry{}
	_, err := New(reg).Select(context.Background(), "")
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("err = %v", err)
	}
	if reg.modelCalls != 0 {
		t.Error("no registry call expected")
	}
}

func TestSelect_NotFound(t *testing.T) {
	reg := &mockRegistry{modelErr: fmt.Errorf("%w: no such contract", domain.ErrNotFound)}
	_, err := New(reg).Select(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestEntryCount(t *testing.T) {
	reg := &mockRegistry{entries: 1234}
	n, err := New(reg).EntryCount(context.Background(), "c-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1234 {
		t.Errorf("count = %d", n)
	}
}
