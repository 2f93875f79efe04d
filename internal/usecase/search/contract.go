package search

import (
	"context"

	"github.com/esbind-io/esbind/internal/domain"
	"github.com/esbind-io/esbind/internal/domain/mapping"
	"github.com/esbind-io/esbind/internal/domain/search/filter"
	"github.com/esbind-io/esbind/internal/domain/search/hit"
	"github.com/esbind-io/esbind/internal/domain/search/request"
)

// Repository defines the storage contract for search operations.
type Repository interface {
	Search(ctx context.Context, indices []string, m mapping.Mapping, req request.Request, vector []float32) (hit.Hits, error)
	Count(ctx context.Context, indices []string, m mapping.Mapping, filters filter.Expression) (int64, error)
}

// SchemaReader reads registered mappings.
type SchemaReader interface {
	Get(name string) (mapping.Mapping, bool)
}

// Embedder vectorizes query text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
