// Package index persists index lifecycle operations through the engine.
package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/esbind-io/esbind/internal/domain"
	domidx "github.com/esbind-io/esbind/internal/domain/index"
	"github.com/esbind-io/esbind/internal/domain/mapping"
	"github.com/esbind-io/esbind/internal/es"
)

// store is the consumer interface for index management (ISP).
type store interface {
	CreateIndex(ctx context.Context, name string, body []byte) error
	DeleteIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	PutMapping(ctx context.Context, name string, body []byte) error
	PutAlias(ctx context.Context, name, alias string) error
	Refresh(ctx context.Context, names ...string) error
	Reindex(ctx context.Context, body []byte) (*es.ReindexResult, error)
}

// Settings carries index creation defaults.
type Settings struct {
	Shards   int
	Replicas int
}

// Repo implements usecase/index.Repository.
type Repo struct {
	store    store
	settings Settings
}

// New creates an index repository. Zero settings leave engine defaults.
func New(s store) *Repo {
	return &Repo{store: s, settings: Settings{Shards: 0, Replicas: -1}}
}

// WithSettings overrides shard and replica counts for created indices.
func (r *Repo) WithSettings(s Settings) *Repo {
	r.settings = s
	return r
}

// Create creates the index with the mapping's settings and properties.
func (r *Repo) Create(ctx context.Context, name string, m mapping.Mapping) error {
	body, err := json.Marshal(m.Document(r.settings.Shards, r.settings.Replicas))
	if err != nil {
		return fmt.Errorf("marshal index body: %w", err)
	}
	if err := r.store.CreateIndex(ctx, name, body); err != nil {
		if errors.Is(err, es.ErrIndexExists) {
			return domain.ErrIndexExists
		}
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}

// Ensure creates the index when missing, otherwise extends its mapping with
// the declared properties. Returns whether the index was created.
func (r *Repo) Ensure(ctx context.Context, name string, m mapping.Mapping) (bool, error) {
	exists, err := r.Exists(ctx, name)
	if err != nil {
		return false, err
	}
	if exists {
		if err := r.PutMapping(ctx, name, m); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := r.Create(ctx, name, m); err != nil {
		// lost a create race, converge on put-mapping
		if errors.Is(err, domain.ErrIndexExists) {
			return false, r.PutMapping(ctx, name, m)
		}
		return false, err
	}
	return true, nil
}

// Drop deletes the index.
func (r *Repo) Drop(ctx context.Context, name string) error {
	if err := r.store.DeleteIndex(ctx, name); err != nil {
		if errors.Is(err, es.ErrIndexNotFound) {
			return domain.ErrIndexNotFound
		}
		return fmt.Errorf("delete index %s: %w", name, err)
	}
	return nil
}

// Exists reports whether the index exists.
func (r *Repo) Exists(ctx context.Context, name string) (bool, error) {
	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", name, err)
	}
	return exists, nil
}

// PutMapping adds the mapping's properties to an existing index.
func (r *Repo) PutMapping(ctx context.Context, name string, m mapping.Mapping) error {
	body, err := json.Marshal(m.Properties())
	if err != nil {
		return fmt.Errorf("marshal mapping body: %w", err)
	}
	if err := r.store.PutMapping(ctx, name, body); err != nil {
		if errors.Is(err, es.ErrIndexNotFound) {
			return domain.ErrIndexNotFound
		}
		return fmt.Errorf("put mapping %s: %w", name, err)
	}
	return nil
}

// Alias points an alias at the index.
func (r *Repo) Alias(ctx context.Context, name, alias string) error {
	if err := r.store.PutAlias(ctx, name, alias); err != nil {
		if errors.Is(err, es.ErrIndexNotFound) {
			return domain.ErrIndexNotFound
		}
		return fmt.Errorf("put alias %s -> %s: %w", alias, name, err)
	}
	return nil
}

// Refresh makes recent writes visible to search across the coordinates.
func (r *Repo) Refresh(ctx context.Context, coords domidx.Coordinates) error {
	if err := r.store.Refresh(ctx, coords.Names()...); err != nil {
		if errors.Is(err, es.ErrIndexNotFound) {
			return domain.ErrIndexNotFound
		}
		return fmt.Errorf("refresh %s: %w", coords.String(), err)
	}
	return nil
}

// Reindex copies all documents from src into dest and waits for completion.
func (r *Repo) Reindex(ctx context.Context, src, dest string) (domidx.ReindexSummary, error) {
	body, err := json.Marshal(map[string]any{
		"source": map[string]any{"index": src},
		"dest":   map[string]any{"index": dest},
	})
	if err != nil {
		return domidx.ReindexSummary{}, fmt.Errorf("marshal reindex body: %w", err)
	}

	res, err := r.store.Reindex(ctx, body)
	if err != nil {
		if errors.Is(err, es.ErrIndexNotFound) {
			return domidx.ReindexSummary{}, domain.ErrIndexNotFound
		}
		return domidx.ReindexSummary{}, fmt.Errorf("reindex %s -> %s: %w", src, dest, err)
	}

	return domidx.ReindexSummary{
		TookMillis: res.Took,
		Total:      res.Total,
		Created:    res.Created,
		Updated:    res.Updated,
		Failures:   res.Failures,
	}, nil
}
