package search

import (
	"context"
	"errors"
	"testing"

	"github.com/esbind-io/esbind/internal/domain"
	domidx "github.com/esbind-io/esbind/internal/domain/index"
	"github.com/esbind-io/esbind/internal/domain/mapping"
	"github.com/esbind-io/esbind/internal/domain/mapping/field"
	"github.com/esbind-io/esbind/internal/domain/search/filter"
	"github.com/esbind-io/esbind/internal/domain/search/hit"
	"github.com/esbind-io/esbind/internal/domain/search/mode"
	"github.com/esbind-io/esbind/internal/domain/search/request"
	"github.com/esbind-io/esbind/internal/registry"
)

// --- Mocks ---

type mockRepo struct {
	hits        hit.Hits
	searchErr   error
	gotIndices  []string
	gotVector   []float32
	countResult int64
	countErr    error
}

func (m *mockRepo) Search(_ context.Context, indices []string, _ mapping.Mapping, _ request.Request, vector []float32) (hit.Hits, error) {
	m.gotIndices, m.gotVector = indices, vector
	return m.hits, m.searchErr
}

func (m *mockRepo) Count(_ context.Context, indices []string, _ mapping.Mapping, _ filter.Expression) (int64, error) {
	m.gotIndices = indices
	return m.countResult, m.countErr
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

func makeCatalog(t *testing.T, withVector bool) *registry.Registry {
	t.Helper()
	title, _ := field.New("title", field.Text)

	contentField, dims := "", 0
	if withVector {
		contentField, dims = "title", 3
	}
	m, err := mapping.New([]field.Field{title}, contentField, dims)
	if err != nil {
		t.Fatalf("mapping.New: %v", err)
	}

	catalog := registry.New()
	catalog.Register("articles", m)
	return catalog
}

func makeRequest(t *testing.T, query string, m mode.Mode) request.Request {
	t.Helper()
	req, err := request.New(query, m, filter.Expression{}, 0, 0, 0, 0, nil, nil)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return req
}

func makeCoords(t *testing.T, names ...string) domidx.Coordinates {
	t.Helper()
	coords, err := domidx.New(names...)
	if err != nil {
		t.Fatalf("index.New: %v", err)
	}
	return coords
}

// --- Tests ---

func TestSearch_Keyword(t *testing.T) {
	repo := &mockRepo{hits: hit.NewHits(nil, 2, hit.RelationEq, 1.0)}
	svc := New(repo, makeCatalog(t, false), nil)

	hits, err := svc.Search(context.Background(), makeCoords(t, "articles"), makeRequest(t, "hello", mode.Keyword))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits.Total() != 2 {
		t.Fatalf("unexpected total: %d", hits.Total())
	}
	if repo.gotVector != nil {
		t.Fatal("keyword search must not embed")
	}
}

func TestSearch_KnnEmbedsQuery(t *testing.T) {
	repo := &mockRepo{}
	emb := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	svc := New(repo, makeCatalog(t, true), emb)

	_, err := svc.Search(context.Background(), makeCoords(t, "articles"), makeRequest(t, "hello", mode.Knn))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emb.calls != 1 {
		t.Fatalf("expected 1 embed call, got %d", emb.calls)
	}
	if len(repo.gotVector) != 3 {
		t.Fatalf("expected vector passed, got %v", repo.gotVector)
	}
}

func TestSearch_KnnWithoutEmbedder(t *testing.T) {
	svc := New(&mockRepo{}, makeCatalog(t, true), nil)

	_, err := svc.Search(context.Background(), makeCoords(t, "articles"), makeRequest(t, "hello", mode.Knn))
	if !errors.Is(err, domain.ErrVectorSearchNotConfigured) {
		t.Fatalf("expected ErrVectorSearchNotConfigured, got %v", err)
	}
}

func TestSearch_KnnWithoutVectorMapping(t *testing.T) {
	emb := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	svc := New(&mockRepo{}, makeCatalog(t, false), emb)

	_, err := svc.Search(context.Background(), makeCoords(t, "articles"), makeRequest(t, "hello", mode.Knn))
	if !errors.Is(err, domain.ErrVectorSearchNotConfigured) {
		t.Fatalf("expected ErrVectorSearchNotConfigured, got %v", err)
	}
}

func TestSearch_EmbedderError(t *testing.T) {
	emb := &mockEmbedder{err: errors.New("api down")}
	svc := New(&mockRepo{}, makeCatalog(t, true), emb)

	_, err := svc.Search(context.Background(), makeCoords(t, "articles"), makeRequest(t, "hello", mode.Knn))
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestSearch_MultiIndexUsesPrimaryMapping(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, makeCatalog(t, false), nil)

	_, err := svc.Search(context.Background(), makeCoords(t, "articles", "archive"), makeRequest(t, "", mode.Keyword))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.gotIndices) != 2 {
		t.Fatalf("expected both indices queried, got %v", repo.gotIndices)
	}
}

func TestSearch_UnregisteredPrimary(t *testing.T) {
	svc := New(&mockRepo{}, registry.New(), nil)

	_, err := svc.Search(context.Background(), makeCoords(t, "unknown"), makeRequest(t, "", mode.Keyword))
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestCount(t *testing.T) {
	repo := &mockRepo{countResult: 42}
	svc := New(repo, makeCatalog(t, false), nil)

	n, err := svc.Count(context.Background(), makeCoords(t, "articles"), filter.Expression{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 42 {
		t.Fatalf("unexpected count: %d", n)
	}
}
