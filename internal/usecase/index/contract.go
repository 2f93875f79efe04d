package index

import (
	"context"

	domidx "github.com/esbind-io/esbind/internal/domain/index"
	"github.com/esbind-io/esbind/internal/domain/mapping"
)

// Repository defines the storage contract for index lifecycle operations.
type Repository interface {
	Create(ctx context.Context, name string, m mapping.Mapping) error
	Ensure(ctx context.Context, name string, m mapping.Mapping) (created bool, err error)
	Drop(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
	PutMapping(ctx context.Context, name string, m mapping.Mapping) error
	Alias(ctx context.Context, name, alias string) error
	Refresh(ctx context.Context, coords domidx.Coordinates) error
	Reindex(ctx context.Context, src, dest string) (domidx.ReindexSummary, error)
}

// SchemaCatalog registers and reads declared mappings.
type SchemaCatalog interface {
	Register(name string, m mapping.Mapping)
	Get(name string) (mapping.Mapping, bool)
}
