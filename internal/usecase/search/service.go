// Package search executes validated queries: keyword searches go straight
// to the engine, knn and hybrid searches embed the query text first.
package search

import (
	"context"
	"fmt"

	"github.com/esbind-io/esbind/internal/domain"
	domidx "github.com/esbind-io/esbind/internal/domain/index"
	"github.com/esbind-io/esbind/internal/domain/mapping"
	"github.com/esbind-io/esbind/internal/domain/search/filter"
	"github.com/esbind-io/esbind/internal/domain/search/hit"
	"github.com/esbind-io/esbind/internal/domain/search/request"
)

// Service executes searches against one or more indices.
type Service struct {
	repo          Repository
	schemas       SchemaReader
	queryEmbedder Embedder
}

// New creates a search service. queryEmbedder can be nil when no index
// uses vector search.
func New(repo Repository, schemas SchemaReader, queryEmbedder Embedder) *Service {
	return &Service{repo: repo, schemas: schemas, queryEmbedder: queryEmbedder}
}

// Search runs the request against the coordinates. The primary index's
// mapping drives query construction; knn and hybrid modes embed the query
// text into the search vector.
func (s *Service) Search(ctx context.Context, coords domidx.Coordinates, req request.Request) (hit.Hits, error) {
	m, err := s.mapping(coords.Primary())
	if err != nil {
		return hit.Hits{}, err
	}

	var vector []float32
	if req.Mode().NeedsVector() {
		vector, err = s.embedQuery(ctx, m, req.Query())
		if err != nil {
			return hit.Hits{}, err
		}
	}

	hits, err := s.repo.Search(ctx, coords.Names(), m, req, vector)
	if err != nil {
		return hit.Hits{}, fmt.Errorf("search: %w", err)
	}
	return hits, nil
}

// Count returns the number of documents matching the filter expression.
func (s *Service) Count(ctx context.Context, coords domidx.Coordinates, filters filter.Expression) (int64, error) {
	m, err := s.mapping(coords.Primary())
	if err != nil {
		return 0, err
	}

	n, err := s.repo.Count(ctx, coords.Names(), m, filters)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func (s *Service) mapping(index string) (mapping.Mapping, error) {
	m, ok := s.schemas.Get(index)
	if !ok {
		return mapping.Mapping{}, fmt.Errorf("%w: no mapping registered for index %q", domain.ErrInvalidSchema, index)
	}
	return m, nil
}

func (s *Service) embedQuery(ctx context.Context, m mapping.Mapping, query string) ([]float32, error) {
	if !m.HasVector() || s.queryEmbedder == nil {
		return nil, domain.ErrVectorSearchNotConfigured
	}

	result, err := s.queryEmbedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w: %v", domain.ErrEmbeddingProviderError, err)
	}
	return result.Embedding, nil
}
