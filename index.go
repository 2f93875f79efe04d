package esbind

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	domdoc "github.com/esbind-io/esbind/internal/domain/document"
	"github.com/esbind-io/esbind/internal/domain/document/patch"
	domidx "github.com/esbind-io/esbind/internal/domain/index"
)

// Index is a typed handle on one engine index, bound to the model T.
// Obtain one with NewIndex; the model's schema is parsed and registered
// once, at construction.
type Index[T any] struct {
	client *Client
	name   string
	coords domidx.Coordinates
	schema *schema[T]
}

// NewIndex parses T's schema and binds it to the named index. The mapping
// is registered with the client; the index itself is not touched until
// Create or Ensure.
func NewIndex[T any](c *Client, name string) (*Index[T], error) {
	coords, err := domidx.New(name)
	if err != nil {
		return nil, fmt.Errorf("index name: %w", err)
	}

	s, err := parseSchema[T](c.vectorDims)
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	c.catalog.Register(name, s.mapping)
	return &Index[T]{client: c, name: name, coords: coords, schema: s}, nil
}

// Name returns the bound index name.
func (idx *Index[T]) Name() string { return idx.name }

// Fields lists the mapped fields of T's schema.
func (idx *Index[T]) Fields() []FieldInfo {
	infos := make([]FieldInfo, 0, len(idx.schema.fields))
	for _, sf := range idx.schema.fields {
		infos = append(infos, FieldInfo{
			Name:    sf.name,
			Type:    FieldType(sf.fieldType),
			Content: sf.content,
		})
	}
	return infos
}

// Create creates the index with T's mapping. Fails with ErrIndexExists if
// it is already there.
func (idx *Index[T]) Create(ctx context.Context) error {
	return idx.client.indices.Create(ctx, idx.name, idx.schema.mapping)
}

// Ensure creates the index if missing, otherwise updates its mapping.
// Returns true when the index was created.
func (idx *Index[T]) Ensure(ctx context.Context) (bool, error) {
	return idx.client.indices.Ensure(ctx, idx.name, idx.schema.mapping)
}

// Drop deletes the index and all its documents.
func (idx *Index[T]) Drop(ctx context.Context) error {
	return idx.client.indices.Drop(ctx, idx.name)
}

// Exists reports whether the index is present in the cluster.
func (idx *Index[T]) Exists(ctx context.Context) (bool, error) {
	return idx.client.indices.Exists(ctx, idx.name)
}

// Alias points the given alias at this index.
func (idx *Index[T]) Alias(ctx context.Context, alias string) error {
	return idx.client.indices.Alias(ctx, idx.name, alias)
}

// Refresh makes all completed writes visible to search.
func (idx *Index[T]) Refresh(ctx context.Context) error {
	return idx.client.indices.Refresh(ctx, idx.coords)
}

// Reindex copies every document of this index into dest. If dest was bound
// with NewIndex its mapping is ensured first.
func (idx *Index[T]) Reindex(ctx context.Context, dest string) (ReindexSummary, error) {
	sum, err := idx.client.indices.Reindex(ctx, idx.name, dest)
	if err != nil {
		return ReindexSummary{}, err
	}
	return ReindexSummary{
		TookMillis: sum.TookMillis,
		Total:      sum.Total,
		Created:    sum.Created,
		Updated:    sum.Updated,
		Failures:   sum.Failures,
	}, nil
}

// Save writes the model, overwriting any existing document with the same
// id. A zero-value id gets a generated UUID, written back into the model.
func (idx *Index[T]) Save(ctx context.Context, v *T) (SaveResult, error) {
	doc, err := idx.toDocument(v)
	if err != nil {
		return SaveResult{}, err
	}

	saved, created, err := idx.client.documents.Save(ctx, idx.name, doc)
	if err != nil {
		return SaveResult{}, err
	}
	return saveResultFrom(saved, created), nil
}

// Replace writes the model only if the stored document still carries the
// given seq_no and primary_term. A concurrent write in between fails with
// ErrVersionConflict carrying the current values.
func (idx *Index[T]) Replace(ctx context.Context, v *T, seqNo, primaryTerm int64) (SaveResult, error) {
	doc, err := idx.toDocument(v)
	if err != nil {
		return SaveResult{}, err
	}
	doc = doc.WithConcurrency(seqNo, primaryTerm)

	saved, created, err := idx.client.documents.Save(ctx, idx.name, doc)
	if err != nil {
		return SaveResult{}, err
	}
	return saveResultFrom(saved, created), nil
}

// SaveAll writes the batch in one bulk request. Models with zero-value ids
// get generated UUIDs written back. Partial failures come back as an error
// alongside the results of the documents that made it.
func (idx *Index[T]) SaveAll(ctx context.Context, vs []*T) ([]SaveResult, error) {
	docs := make([]domdoc.Document, 0, len(vs))
	for i, v := range vs {
		doc, err := idx.toDocument(v)
		if err != nil {
			return nil, fmt.Errorf("model %d: %w", i, err)
		}
		docs = append(docs, doc)
	}

	saved, err := idx.client.documents.SaveAll(ctx, idx.name, docs)
	results := make([]SaveResult, len(saved))
	for i, d := range saved {
		results[i] = saveResultFrom(d, d.Version() == 1)
	}
	return results, err
}

// Get retrieves one document and hydrates it into T. The returned entity
// carries seq_no/primary_term for subsequent guarded writes.
func (idx *Index[T]) Get(ctx context.Context, id string) (*Entity[T], error) {
	doc, err := idx.client.documents.Get(ctx, idx.name, id)
	if err != nil {
		return nil, err
	}
	return idx.entityFrom(doc)
}

// Has reports whether a document with the id exists.
func (idx *Index[T]) Has(ctx context.Context, id string) (bool, error) {
	return idx.client.documents.Exists(ctx, idx.name, id)
}

// Update applies a partial update: set overwrites fields, remove drops
// them. Updating the content field re-embeds the document's vector.
func (idx *Index[T]) Update(ctx context.Context, id string, set map[string]any, remove ...string) (*Entity[T], error) {
	p, err := patch.New(set, remove)
	if err != nil {
		return nil, fmt.Errorf("build patch: %w", err)
	}

	doc, err := idx.client.documents.Update(ctx, idx.name, id, p)
	if err != nil {
		return nil, err
	}
	return idx.entityFrom(doc)
}

// Delete removes one document unconditionally.
func (idx *Index[T]) Delete(ctx context.Context, id string) error {
	return idx.client.documents.Delete(ctx, idx.name, id, domdoc.UnsetSeq, domdoc.UnsetSeq)
}

// DeleteGuarded removes one document only if it still carries the given
// seq_no and primary_term.
func (idx *Index[T]) DeleteGuarded(ctx context.Context, id string, seqNo, primaryTerm int64) error {
	return idx.client.documents.Delete(ctx, idx.name, id, seqNo, primaryTerm)
}

// Count returns the number of documents in the index.
func (idx *Index[T]) Count(ctx context.Context) (int64, error) {
	return idx.Search().Count(ctx)
}

// Search starts a fluent search over this index.
func (idx *Index[T]) Search() *SearchBuilder[T] {
	return newSearchBuilder(idx)
}

func (idx *Index[T]) toDocument(v *T) (domdoc.Document, error) {
	id := idx.schema.id(v)
	if id == "" {
		id = uuid.NewString()
		idx.schema.setID(v, id)
	}

	doc, err := domdoc.New(id, idx.schema.toSource(v))
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("build document: %w", err)
	}
	return doc, nil
}

func (idx *Index[T]) entityFrom(doc domdoc.Document) (*Entity[T], error) {
	v, err := idx.schema.fromSource(doc.ID(), doc.Source())
	if err != nil {
		return nil, fmt.Errorf("hydrate %s: %w", doc.ID(), err)
	}
	return &Entity[T]{
		Value:       v,
		ID:          doc.ID(),
		SeqNo:       doc.SeqNo(),
		PrimaryTerm: doc.PrimaryTerm(),
		Version:     doc.Version(),
	}, nil
}

func saveResultFrom(doc domdoc.Document, created bool) SaveResult {
	return SaveResult{
		ID:          doc.ID(),
		Created:     created,
		SeqNo:       doc.SeqNo(),
		PrimaryTerm: doc.PrimaryTerm(),
		Version:     doc.Version(),
	}
}
