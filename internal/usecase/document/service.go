// Package document handles document CRUD: sources are validated against the
// registered mapping and the content field is vectorized before writes.
package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/esbind-io/esbind/internal/domain"
	domdoc "github.com/esbind-io/esbind/internal/domain/document"
	"github.com/esbind-io/esbind/internal/domain/document/patch"
	"github.com/esbind-io/esbind/internal/domain/mapping"
	"github.com/esbind-io/esbind/internal/domain/search/filter"
)

// Service handles document CRUD with automatic vectorization.
type Service struct {
	repo     Repository
	schemas  SchemaReader
	embedder Embedder
}

// New creates a document service. embedder can be nil when no index uses
// vector search.
func New(repo Repository, schemas SchemaReader, embedder Embedder) *Service {
	return &Service{repo: repo, schemas: schemas, embedder: embedder}
}

// Save validates the document against the index mapping, vectorizes its
// content field when the mapping declares one, and writes it. Returns the
// stored document and whether it was created.
func (s *Service) Save(ctx context.Context, index string, doc domdoc.Document) (domdoc.Document, bool, error) {
	m, err := s.mapping(index)
	if err != nil {
		return domdoc.Document{}, false, err
	}
	if err := validateSource(m, doc.Source()); err != nil {
		return domdoc.Document{}, false, err
	}

	doc, err = s.vectorize(ctx, m, doc)
	if err != nil {
		return domdoc.Document{}, false, err
	}

	saved, created, err := s.repo.Save(ctx, index, doc)
	if err != nil {
		return domdoc.Document{}, false, fmt.Errorf("save document: %w", err)
	}
	return stripVector(saved), created, nil
}

// Get retrieves a document by ID.
func (s *Service) Get(ctx context.Context, index, id string) (domdoc.Document, error) {
	if _, err := s.mapping(index); err != nil {
		return domdoc.Document{}, err
	}

	doc, err := s.repo.Get(ctx, index, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return stripVector(doc), nil
}

// Update applies a partial update. When the patch touches the content
// field, the vector is recomputed alongside.
func (s *Service) Update(ctx context.Context, index, id string, p patch.Patch) (domdoc.Document, error) {
	m, err := s.mapping(index)
	if err != nil {
		return domdoc.Document{}, err
	}
	if err := validateSource(m, p.Set()); err != nil {
		return domdoc.Document{}, err
	}
	for _, name := range p.Remove() {
		if name == m.ContentField() {
			return domdoc.Document{}, fmt.Errorf("%w: content field %q cannot be removed", domain.ErrInvalidSchema, name)
		}
	}

	if content, ok := patchContent(m, p); ok {
		if s.embedder == nil {
			return domdoc.Document{}, domain.ErrVectorSearchNotConfigured
		}
		result, err := s.embedder.Embed(ctx, content)
		if err != nil {
			return domdoc.Document{}, fmt.Errorf("vectorize content: %w: %v", domain.ErrEmbeddingProviderError, err)
		}
		set := make(map[string]any, len(p.Set())+1)
		for k, v := range p.Set() {
			set[k] = v
		}
		set[mapping.VectorField] = result.Embedding
		if p, err = patchWithVector(set, p.Remove()); err != nil {
			return domdoc.Document{}, err
		}
	}

	doc, err := s.repo.Update(ctx, index, id, p)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("update document: %w", err)
	}
	return stripVector(doc), nil
}

// Delete removes a document. seqNo/primaryTerm >= 0 guard the delete
// against concurrent modification.
func (s *Service) Delete(ctx context.Context, index, id string, seqNo, primaryTerm int64) error {
	if _, err := s.mapping(index); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, index, id, seqNo, primaryTerm); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Exists reports whether a document exists.
func (s *Service) Exists(ctx context.Context, index, id string) (bool, error) {
	if _, err := s.mapping(index); err != nil {
		return false, err
	}
	exists, err := s.repo.Exists(ctx, index, id)
	if err != nil {
		return false, fmt.Errorf("check document: %w", err)
	}
	return exists, nil
}

// SaveAll validates and vectorizes a batch and writes it in one bulk
// request. Partial failures come back as a joined error alongside the
// successfully stored documents.
func (s *Service) SaveAll(ctx context.Context, index string, docs []domdoc.Document) ([]domdoc.Document, error) {
	m, err := s.mapping(index)
	if err != nil {
		return nil, err
	}

	prepared := make([]domdoc.Document, 0, len(docs))
	for _, doc := range docs {
		if err := validateSource(m, doc.Source()); err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.ID(), err)
		}
		vectorized, err := s.vectorize(ctx, m, doc)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.ID(), err)
		}
		prepared = append(prepared, vectorized)
	}

	saved, err := s.repo.SaveAll(ctx, index, prepared)
	out := make([]domdoc.Document, len(saved))
	for i, d := range saved {
		out[i] = stripVector(d)
	}
	return out, err
}

// DeleteByQuery removes all documents matching the filter expression.
func (s *Service) DeleteByQuery(ctx context.Context, index string, filters filter.Expression) (int64, error) {
	m, err := s.mapping(index)
	if err != nil {
		return 0, err
	}
	deleted, err := s.repo.DeleteByQuery(ctx, index, m, filters)
	if err != nil {
		return 0, fmt.Errorf("delete by query: %w", err)
	}
	return deleted, nil
}

func (s *Service) mapping(index string) (mapping.Mapping, error) {
	m, ok := s.schemas.Get(index)
	if !ok {
		return mapping.Mapping{}, fmt.Errorf("%w: no mapping registered for index %q", domain.ErrInvalidSchema, index)
	}
	return m, nil
}

// vectorize embeds the content field into the framework vector field.
func (s *Service) vectorize(ctx context.Context, m mapping.Mapping, doc domdoc.Document) (domdoc.Document, error) {
	if !m.HasVector() {
		return doc, nil
	}

	raw, ok := doc.Source()[m.ContentField()]
	if !ok {
		return doc, nil
	}
	content, ok := raw.(string)
	if !ok || content == "" {
		return doc, nil
	}

	if s.embedder == nil {
		return domdoc.Document{}, domain.ErrVectorSearchNotConfigured
	}

	result, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("vectorize content: %w: %v", domain.ErrEmbeddingProviderError, err)
	}
	if len(result.Embedding) != m.VectorDims() {
		return domdoc.Document{}, fmt.Errorf("%w: embedding has %d dims, mapping declares %d",
			domain.ErrInvalidSchema, len(result.Embedding), m.VectorDims())
	}

	return doc.WithField(mapping.VectorField, result.Embedding), nil
}

// validateSource rejects unmapped and reserved field names.
func validateSource(m mapping.Mapping, source map[string]any) error {
	for name := range source {
		if strings.HasPrefix(name, "_") {
			return fmt.Errorf("%w: field name %q is reserved", domain.ErrInvalidSchema, name)
		}
		if _, ok := m.Field(name); !ok {
			return fmt.Errorf("%w: field %q is not mapped", domain.ErrInvalidSchema, name)
		}
	}
	return nil
}

// patchContent returns the new content value when the patch sets it.
func patchContent(m mapping.Mapping, p patch.Patch) (string, bool) {
	if !m.HasVector() {
		return "", false
	}
	raw, ok := p.Set()[m.ContentField()]
	if !ok {
		return "", false
	}
	content, ok := raw.(string)
	return content, ok && content != ""
}

// patchWithVector rebuilds the patch with the vector field included. The
// vector name is reserved for callers, so the patch is assembled directly.
func patchWithVector(set map[string]any, remove []string) (patch.Patch, error) {
	vector := set[mapping.VectorField]
	delete(set, mapping.VectorField)

	p, err := patch.New(set, remove)
	if err != nil {
		return patch.Patch{}, fmt.Errorf("rebuild patch: %w", err)
	}
	return p.WithSet(mapping.VectorField, vector), nil
}

// stripVector removes the framework vector field from a returned document.
func stripVector(doc domdoc.Document) domdoc.Document {
	if _, ok := doc.Source()[mapping.VectorField]; !ok {
		return doc
	}
	src := make(map[string]any, len(doc.Source()))
	for k, v := range doc.Source() {
		if k == mapping.VectorField {
			continue
		}
		src[k] = v
	}
	return domdoc.Reconstruct(doc.ID(), src, doc.SeqNo(), doc.PrimaryTerm(), doc.Version())
}
