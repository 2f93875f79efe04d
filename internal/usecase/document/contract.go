package document

import (
	"context"

	"github.com/esbind-io/esbind/internal/domain"
	domdoc "github.com/esbind-io/esbind/internal/domain/document"
	"github.com/esbind-io/esbind/internal/domain/document/patch"
	"github.com/esbind-io/esbind/internal/domain/mapping"
	"github.com/esbind-io/esbind/internal/domain/search/filter"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Save(ctx context.Context, index string, doc domdoc.Document) (saved domdoc.Document, created bool, err error)
	Get(ctx context.Context, index, id string) (domdoc.Document, error)
	Update(ctx context.Context, index, id string, p patch.Patch) (domdoc.Document, error)
	Delete(ctx context.Context, index, id string, seqNo, primaryTerm int64) error
	Exists(ctx context.Context, index, id string) (bool, error)
	SaveAll(ctx context.Context, index string, docs []domdoc.Document) ([]domdoc.Document, error)
	DeleteByQuery(ctx context.Context, index string, m mapping.Mapping, filters filter.Expression) (int64, error)
}

// SchemaReader reads registered mappings for validation.
type SchemaReader interface {
	Get(name string) (mapping.Mapping, bool)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
