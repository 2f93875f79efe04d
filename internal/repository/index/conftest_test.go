package index

import (
	"context"
	"testing"

	"github.com/esbind-io/esbind/internal/domain/mapping"
	"github.com/esbind-io/esbind/internal/domain/mapping/field"
	"github.com/esbind-io/esbind/internal/es"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	createFn     func(ctx context.Context, name string, body []byte) error
	deleteFn     func(ctx context.Context, name string) error
	existsFn     func(ctx context.Context, name string) (bool, error)
	putMappingFn func(ctx context.Context, name string, body []byte) error
	putAliasFn   func(ctx context.Context, name, alias string) error
	refreshFn    func(ctx context.Context, names ...string) error
	reindexFn    func(ctx context.Context, body []byte) (*es.ReindexResult, error)
}

func (m *mockStore) CreateIndex(ctx context.Context, name string, body []byte) error {
	if m.createFn != nil {
		return m.createFn(ctx, name, body)
	}
	return nil
}

func (m *mockStore) DeleteIndex(ctx context.Context, name string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, name)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) PutMapping(ctx context.Context, name string, body []byte) error {
	if m.putMappingFn != nil {
		return m.putMappingFn(ctx, name, body)
	}
	return nil
}

func (m *mockStore) PutAlias(ctx context.Context, name, alias string) error {
	if m.putAliasFn != nil {
		return m.putAliasFn(ctx, name, alias)
	}
	return nil
}

func (m *mockStore) Refresh(ctx context.Context, names ...string) error {
	if m.refreshFn != nil {
		return m.refreshFn(ctx, names...)
	}
	return nil
}

func (m *mockStore) Reindex(ctx context.Context, body []byte) (*es.ReindexResult, error) {
	if m.reindexFn != nil {
		return m.reindexFn(ctx, body)
	}
	return &es.ReindexResult{}, nil
}

func testMapping(t *testing.T) mapping.Mapping {
	t.Helper()
	title, err := field.New("title", field.Text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, err := mapping.New([]field.Field{title}, "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m
}
