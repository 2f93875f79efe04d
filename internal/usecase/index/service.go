// Package index coordinates index lifecycle operations: declared mappings
// are registered in the schema catalog and materialized in the engine.
package index

import (
	"context"
	"fmt"

	domidx "github.com/esbind-io/esbind/internal/domain/index"
	"github.com/esbind-io/esbind/internal/domain/mapping"
)

// Service handles index lifecycle.
type Service struct {
	repo    Repository
	catalog SchemaCatalog
}

// New creates an index service.
func New(repo Repository, catalog SchemaCatalog) *Service {
	return &Service{repo: repo, catalog: catalog}
}

// Create registers the mapping and creates the index.
func (s *Service) Create(ctx context.Context, name string, m mapping.Mapping) error {
	s.catalog.Register(name, m)
	if err := s.repo.Create(ctx, name, m); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Ensure registers the mapping and creates the index when missing,
// extending the mapping otherwise. Returns whether the index was created.
func (s *Service) Ensure(ctx context.Context, name string, m mapping.Mapping) (bool, error) {
	s.catalog.Register(name, m)
	created, err := s.repo.Ensure(ctx, name, m)
	if err != nil {
		return false, fmt.Errorf("ensure index: %w", err)
	}
	return created, nil
}

// Drop deletes the index.
func (s *Service) Drop(ctx context.Context, name string) error {
	if err := s.repo.Drop(ctx, name); err != nil {
		return fmt.Errorf("drop index: %w", err)
	}
	return nil
}

// Exists reports whether the index exists in the engine.
func (s *Service) Exists(ctx context.Context, name string) (bool, error) {
	exists, err := s.repo.Exists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("check index: %w", err)
	}
	return exists, nil
}

// Alias points an alias at the index.
func (s *Service) Alias(ctx context.Context, name, alias string) error {
	if err := s.repo.Alias(ctx, name, alias); err != nil {
		return fmt.Errorf("alias index: %w", err)
	}
	return nil
}

// Refresh makes recent writes visible to search.
func (s *Service) Refresh(ctx context.Context, coords domidx.Coordinates) error {
	if err := s.repo.Refresh(ctx, coords); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	return nil
}

// Reindex copies all documents from src into dest. When dest has a
// registered mapping the destination index is ensured first, so the copy
// lands in a correctly mapped index.
func (s *Service) Reindex(ctx context.Context, src, dest string) (domidx.ReindexSummary, error) {
	if m, ok := s.catalog.Get(dest); ok {
		if _, err := s.repo.Ensure(ctx, dest, m); err != nil {
			return domidx.ReindexSummary{}, fmt.Errorf("ensure destination: %w", err)
		}
	}

	sum, err := s.repo.Reindex(ctx, src, dest)
	if err != nil {
		return domidx.ReindexSummary{}, fmt.Errorf("reindex: %w", err)
	}
	return sum, nil
}
