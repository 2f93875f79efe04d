package search

import (
	"context"
	"testing"

	"github.com/esbind-io/esbind/internal/domain/mapping"
	"github.com/esbind-io/esbind/internal/domain/mapping/field"
	"github.com/esbind-io/esbind/internal/es"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn func(ctx context.Context, indices []string, body []byte) (*es.SearchResponse, error)
	countFn  func(ctx context.Context, indices []string, body []byte) (int64, error)
}

func (m *mockStore) Search(ctx context.Context, indices []string, body []byte) (*es.SearchResponse, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, indices, body)
	}
	return &es.SearchResponse{}, nil
}

func (m *mockStore) Count(ctx context.Context, indices []string, body []byte) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx, indices, body)
	}
	return 0, nil
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
