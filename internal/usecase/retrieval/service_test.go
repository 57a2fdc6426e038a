package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/product"
	"github.com/kailas-cloud/stylist/internal/domain/search/filter"
)

// --- Mocks ---

type mockRepo struct {
	records   []product.Record
	err       error
	knnCalled bool
	idsCalled bool
	lastPred  *filter.Predicate
	lastK     int
	lastVec   []float32
}

func (m *mockRepo) SearchKNN(_ context.Context, vec []float32, pred *filter.Predicate, k int) ([]product.Record, error) {
	m.knnCalled = true
	m.lastVec, m.lastPred, m.lastK = vec, pred, k
	return m.records, m.err
}

func (m *mockRepo) GetByIDs(_ context.Context, _ []string) ([]product.Record, error) {
	m.idsCalled = true
	return m.records, m.err
}

type mockEmbedder struct {
	err      error
	lastText string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.lastText = text
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

func priceFilter(t *testing.T) *filter.Predicate {
	t.Helper()
	base, _ := filter.NewTagLeaf("gender", filter.Equal, "women")
	price, _ := filter.NewNumericLeaf("price_regular", filter.LessThan, 300)
	p, err := filter.And(base, price)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// --- Search ---

func TestSearch_WithPredicate(t *testing.T) {
	repo := &mockRepo{records: []product.Record{product.New("a", 0.9, "x", nil, nil)}}
	emb := &mockEmbedder{}
	pred := priceFilter(t)

	got, err := New(repo, emb).Search(context.Background(), "jackets", pred, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID() != "a" {
		t.Fatalf("unexpected records: %+v", got)
	}
	if emb.lastText != "jackets" {
		t.Errorf("embedded %q", emb.lastText)
	}
	if repo.lastPred != pred || repo.lastK != 2 {
		t.Errorf("pred=%v k=%d", repo.lastPred, repo.lastK)
	}
	if len(repo.lastVec) != 2 {
		t.Errorf("vector not forwarded: %v", repo.lastVec)
	}
}

func TestSearch_NoPredicateIsUnrestricted(t *testing.T) {
	repo := &mockRepo{}
	if _, err := New(repo, &mockEmbedder{}).Search(context.Background(), "boots", nil, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastPred != nil {
		t.Error("expected nil predicate")
	}
	if repo.lastK != DefaultK {
		t.Errorf("k = %d, want %d", repo.lastK, DefaultK)
	}
}

func TestSearch_EmptyPredicateIsUnrestricted(t *testing.T) {
	repo := &mockRepo{}
	empty, _ := filter.And()
	if _, err := New(repo, &mockEmbedder{}).Search(context.Background(), "boots", empty, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastPred != nil {
		t.Error("empty predicate should be dropped")
	}
}

func TestSearch_NoMatchIsEmptyNotNil(t *testing.T) {
	repo := &mockRepo{records: nil}
	got, err := New(repo, &mockEmbedder{}).Search(context.Background(), "jackets", priceFilter(t), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestSearch_Errors(t *testing.T) {
	embErr := errors.New("embed down")
	if _, err := New(&mockRepo{}, &mockEmbedder{err: embErr}).Search(context.Background(), "q", nil, 4); !errors.Is(err, embErr) {
		t.Errorf("expected embed error, got %v", err)
	}

	repoErr := errors.New("index down")
	if _, err := New(&mockRepo{err: repoErr}, &mockEmbedder{}).Search(context.Background(), "q", nil, 4); !errors.Is(err, repoErr) {
		t.Errorf("expected repo error, got %v", err)
	}

	if _, err := New(&mockRepo{}, &mockEmbedder{}).Search(context.Background(), "q", nil, MaxK+1); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
}

// --- LookupByIDs ---

func TestLookupByIDs_EmptySkipsIndex(t *testing.T) {
	repo := &mockRepo{}
	got, err := New(repo, &mockEmbedder{}).LookupByIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty slice, got %#v", got)
	}
	if repo.idsCalled {
		t.Error("index should not be contacted")
	}
}

func TestLookupByIDs(t *testing.T) {
	repo := &mockRepo{records: []product.Record{product.New("p1", 0, "linen shirt", nil, nil)}}
	got, err := New(repo, &mockEmbedder{}).LookupByIDs(context.Background(), []string{"p1", "missing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Content() != "linen shirt" {
		t.Errorf("unexpected records: %+v", got)
	}
}
