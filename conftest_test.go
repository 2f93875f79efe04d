package esbind

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	domdoc "github.com/esbind-io/esbind/internal/domain/document"
	"github.com/esbind-io/esbind/internal/domain/document/patch"
	domidx "github.com/esbind-io/esbind/internal/domain/index"
	"github.com/esbind-io/esbind/internal/domain/mapping"
	"github.com/esbind-io/esbind/internal/domain/search/filter"
	"github.com/esbind-io/esbind/internal/domain/search/hit"
	"github.com/esbind-io/esbind/internal/domain/search/request"
	"github.com/esbind-io/esbind/internal/registry"
	documentuc "github.com/esbind-io/esbind/internal/usecase/document"
	indexuc "github.com/esbind-io/esbind/internal/usecase/index"
	searchuc "github.com/esbind-io/esbind/internal/usecase/search"
)

// article is the model most tests bind against.
type article struct {
	ID     string    `esbind:"id"`
	Title  string    `esbind:"title,text,content"`
	Author string    `esbind:"author,keyword"`
	Views  int64     `esbind:"views"`
	Posted time.Time `esbind:"posted"`
}

type mockIndexRepo struct {
	createFn  func(ctx context.Context, name string, m mapping.Mapping) error
	ensureFn  func(ctx context.Context, name string, m mapping.Mapping) (bool, error)
	dropFn    func(ctx context.Context, name string) error
	existsFn  func(ctx context.Context, name string) (bool, error)
	putFn     func(ctx context.Context, name string, m mapping.Mapping) error
	aliasFn   func(ctx context.Context, name, alias string) error
	refreshFn func(ctx context.Context, coords domidx.Coordinates) error
	reindexFn func(ctx context.Context, src, dest string) (domidx.ReindexSummary, error)
}

func (m *mockIndexRepo) Create(ctx context.Context, name string, mp mapping.Mapping) error {
	return m.createFn(ctx, name, mp)
}

func (m *mockIndexRepo) Ensure(ctx context.Context, name string, mp mapping.Mapping) (bool, error) {
	return m.ensureFn(ctx, name, mp)
}

func (m *mockIndexRepo) Drop(ctx context.Context, name string) error { return m.dropFn(ctx, name) }

func (m *mockIndexRepo) Exists(ctx context.Context, name string) (bool, error) {
	return m.existsFn(ctx, name)
}

func (m *mockIndexRepo) PutMapping(ctx context.Context, name string, mp mapping.Mapping) error {
	return m.putFn(ctx, name, mp)
}

func (m *mockIndexRepo) Alias(ctx context.Context, name, alias string) error {
	return m.aliasFn(ctx, name, alias)
}

func (m *mockIndexRepo) Refresh(ctx context.Context, coords domidx.Coordinates) error {
	return m.refreshFn(ctx, coords)
}

func (m *mockIndexRepo) Reindex(ctx context.Context, src, dest string) (domidx.ReindexSummary, error) {
	return m.reindexFn(ctx, src, dest)
}

type mockDocRepo struct {
	saveFn    func(ctx context.Context, index string, doc domdoc.Document) (domdoc.Document, bool, error)
	getFn     func(ctx context.Context, index, id string) (domdoc.Document, error)
	updateFn  func(ctx context.Context, index, id string, p patch.Patch) (domdoc.Document, error)
	deleteFn  func(ctx context.Context, index, id string, seqNo, primaryTerm int64) error
	existsFn  func(ctx context.Context, index, id string) (bool, error)
	saveAllFn func(ctx context.Context, index string, docs []domdoc.Document) ([]domdoc.Document, error)
	dbqFn     func(ctx context.Context, index string, m mapping.Mapping, filters filter.Expression) (int64, error)
}

func (m *mockDocRepo) Save(ctx context.Context, index string, doc domdoc.Document) (domdoc.Document, bool, error) {
	return m.saveFn(ctx, index, doc)
}

func (m *mockDocRepo) Get(ctx context.Context, index, id string) (domdoc.Document, error) {
	return m.getFn(ctx, index, id)
}

func (m *mockDocRepo) Update(ctx context.Context, index, id string, p patch.Patch) (domdoc.Document, error) {
	return m.updateFn(ctx, index, id, p)
}

func (m *mockDocRepo) Delete(ctx context.Context, index, id string, seqNo, primaryTerm int64) error {
	return m.deleteFn(ctx, index, id, seqNo, primaryTerm)
}

func (m *mockDocRepo) Exists(ctx context.Context, index, id string) (bool, error) {
	return m.existsFn(ctx, index, id)
}

func (m *mockDocRepo) SaveAll(ctx context.Context, index string, docs []domdoc.Document) ([]domdoc.Document, error) {
	return m.saveAllFn(ctx, index, docs)
}

func (m *mockDocRepo) DeleteByQuery(
	ctx context.Context, index string, mp mapping.Mapping, filters filter.Expression,
) (int64, error) {
	return m.dbqFn(ctx, index, mp, filters)
}

type mockSearchRepo struct {
	searchFn func(ctx context.Context, indices []string, m mapping.Mapping, req request.Request, vector []float32) (hit.Hits, error)
	countFn  func(ctx context.Context, indices []string, m mapping.Mapping, filters filter.Expression) (int64, error)
}

func (m *mockSearchRepo) Search(
	ctx context.Context, indices []string, mp mapping.Mapping, req request.Request, vector []float32,
) (hit.Hits, error) {
	return m.searchFn(ctx, indices, mp, req, vector)
}

func (m *mockSearchRepo) Count(
	ctx context.Context, indices []string, mp mapping.Mapping, filters filter.Expression,
) (int64, error) {
	return m.countFn(ctx, indices, mp, filters)
}

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.embedFn(ctx, text)
}

// testClient wires a Client against mock repositories, bypassing the engine.
type testClient struct {
	client     *Client
	indexRepo  *mockIndexRepo
	docRepo    *mockDocRepo
	searchRepo *mockSearchRepo
}

func newTestClient(t *testing.T, embedder Embedder, vectorDims int) *testClient {
	t.Helper()

	tc := &testClient{
		indexRepo:  &mockIndexRepo{},
		docRepo:    &mockDocRepo{},
		searchRepo: &mockSearchRepo{},
	}

	catalog := registry.New()
	c := &Client{
		catalog:    catalog,
		logger:     zap.NewNop(),
		vectorDims: vectorDims,
	}

	c.indices = indexuc.New(tc.indexRepo, catalog)
	if embedder != nil {
		adapted := embedderAdapter{inner: embedder}
		c.documents = documentuc.New(tc.docRepo, catalog, adapted)
		c.search = searchuc.New(tc.searchRepo, catalog, adapted)
	} else {
		c.documents = documentuc.New(tc.docRepo, catalog, nil)
		c.search = searchuc.New(tc.searchRepo, catalog, nil)
	}

	tc.client = c
	return tc
}
