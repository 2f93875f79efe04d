package chi

import (
	"context"
	"net/http"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	domdoc "github.com/esbind-io/esbind/internal/domain/document"
	"github.com/esbind-io/esbind/internal/domain/document/patch"
	domidx "github.com/esbind-io/esbind/internal/domain/index"
	"github.com/esbind-io/esbind/internal/domain/mapping"
	"github.com/esbind-io/esbind/internal/domain/mapping/field"
	"github.com/esbind-io/esbind/internal/domain/search/filter"
	"github.com/esbind-io/esbind/internal/domain/search/hit"
	"github.com/esbind-io/esbind/internal/domain/search/request"
	"github.com/esbind-io/esbind/internal/registry"
	documentuc "github.com/esbind-io/esbind/internal/usecase/document"
	healthuc "github.com/esbind-io/esbind/internal/usecase/health"
	indexuc "github.com/esbind-io/esbind/internal/usecase/index"
	searchuc "github.com/esbind-io/esbind/internal/usecase/search"
)

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

func (m *mockIndexRepo) Drop(ctx context.Context, name string) error {
	return m.dropFn(ctx, name)
}

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

type mockPinger struct {
	pingFn func(ctx context.Context) error
}

func (m *mockPinger) Ping(ctx context.Context) error { return m.pingFn(ctx) }

// testFixture bundles the mocks behind a fully routed HTTP handler.
type testFixture struct {
	indexRepo  *mockIndexRepo
	docRepo    *mockDocRepo
	searchRepo *mockSearchRepo
	handler    http.Handler
}

func articlesMapping(t *testing.T) mapping.Mapping {
	t.Helper()
	fields := []field.Field{
		field.Reconstruct("title", field.Text),
		field.Reconstruct("views", field.Long),
	}
	m, err := mapping.New(fields, "", 0)
	if err != nil {
		t.Fatalf("build mapping: %v", err)
	}
	return m
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		indexRepo:  &mockIndexRepo{},
		docRepo:    &mockDocRepo{},
		searchRepo: &mockSearchRepo{},
	}

	catalog := registry.New()
	catalog.Register("articles", articlesMapping(t))

	logger := zap.NewNop()
	indexSvc := indexuc.New(f.indexRepo, catalog)
	docSvc := documentuc.New(f.docRepo, catalog, nil)
	searchSvc := searchuc.New(f.searchRepo, catalog, nil)
	healthSvc := healthuc.New(&mockPinger{pingFn: func(context.Context) error { return nil }}, nil, nil)

	server := NewServer(indexSvc, docSvc, searchSvc, healthSvc, logger)

	r := chirouter.NewRouter()
	server.Register(r)
	f.handler = r
	return f
}
