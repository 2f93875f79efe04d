package elastic

import (
	"bytes"
	"context"
	"net/http"

	"github.com/esbind-io/esbind/internal/es"
)

// CreateIndex creates an index with the given settings/mappings body.
func (s *Store) CreateIndex(ctx context.Context, name string, body []byte) error {
	res, err := s.client.Indices.Create(name,
		s.client.Indices.Create.WithBody(bytes.NewReader(body)),
		s.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return &es.Error{Op: es.OpIndicesCreate, Err: err}
	}
	defer res.Body.Close()
	if res.IsError() {
		return classify(es.OpIndicesCreate, res)
	}
	return nil
}

// DeleteIndex removes an index.
func (s *Store) DeleteIndex(ctx context.Context, name string) error {
	res, err := s.client.Indices.Delete([]string{name},
		s.client.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return &es.Error{Op: es.OpIndicesDelete, Err: err}
	}
	defer res.Body.Close()
	if res.IsError() {
		return classify(es.OpIndicesDelete, res)
	}
	return nil
}

// IndexExists reports whether an index exists.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	res, err := s.client.Indices.Exists([]string{name},
		s.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, &es.Error{Op: es.OpIndicesExists, Err: err}
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	}
	return false, classify(es.OpIndicesExists, res)
}

// PutMapping adds fields to an existing index mapping.
func (s *Store) PutMapping(ctx context.Context, name string, body []byte) error {
	res, err := s.client.Indices.PutMapping([]string{name}, bytes.NewReader(body),
		s.client.Indices.PutMapping.WithContext(ctx),
	)
	if err != nil {
		return &es.Error{Op: es.OpIndicesPutMapping, Err: err}
	}
	defer res.Body.Close()
	if res.IsError() {
		return classify(es.OpIndicesPutMapping, res)
	}
	return nil
}

// PutAlias points an alias at an index.
func (s *Store) PutAlias(ctx context.Context, name, alias string) error {
	res, err := s.client.Indices.PutAlias([]string{name}, alias,
		s.client.Indices.PutAlias.WithContext(ctx),
	)
	if err != nil {
		return &es.Error{Op: es.OpIndicesPutAlias, Err: err}
	}
	defer res.Body.Close()
	if res.IsError() {
		return classify(es.OpIndicesPutAlias, res)
	}
	return nil
}

// Refresh makes recent writes visible to search.
func (s *Store) Refresh(ctx context.Context, names ...string) error {
	res, err := s.client.Indices.Refresh(
		s.client.Indices.Refresh.WithIndex(names...),
		s.client.Indices.Refresh.WithContext(ctx),
	)
	if err != nil {
		return &es.Error{Op: es.OpIndicesRefresh, Err: err}
	}
	defer res.Body.Close()
	if res.IsError() {
		return classify(es.OpIndicesRefresh, res)
	}
	return nil
}
