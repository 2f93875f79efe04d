// Package document persists documents through the engine, translating
// engine faults into domain errors. Optimistic locking failures become
// domain.ConflictError with the current seq_no/primary_term extracted from
// the engine reason.
package document

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/esbind-io/esbind/internal/domain"
	"github.com/esbind-io/esbind/internal/domain/document"
	"github.com/esbind-io/esbind/internal/domain/document/patch"
	"github.com/esbind-io/esbind/internal/domain/mapping"
	"github.com/esbind-io/esbind/internal/domain/search/filter"
	"github.com/esbind-io/esbind/internal/es"
	"github.com/esbind-io/esbind/internal/repository/esquery"
)

// store is the consumer interface for document persistence (ISP).
type store interface {
	IndexDoc(ctx context.Context, index, id string, body []byte, p *es.WriteParams) (*es.WriteResult, error)
	GetDoc(ctx context.Context, index, id string) (*es.GetResult, error)
	UpdateDoc(ctx context.Context, index, id string, body []byte) (*es.WriteResult, error)
	DeleteDoc(ctx context.Context, index, id string, p *es.WriteParams) error
	DocExists(ctx context.Context, index, id string) (bool, error)
	Bulk(ctx context.Context, body []byte) (*es.BulkResult, error)
	DeleteByQuery(ctx context.Context, index string, body []byte) (int64, error)
}

// Repo implements usecase/document.Repository.
type Repo struct {
	store   store
	refresh bool
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// WithRefresh forces a refresh after every write (tests, small deployments).
func (r *Repo) WithRefresh(refresh bool) *Repo {
	r.refresh = refresh
	return r
}

// Save indexes a full document. When the document carries concurrency
// metadata, the write is guarded by if_seq_no/if_primary_term. Returns the
// stored document with refreshed metadata and whether it was created.
func (r *Repo) Save(ctx context.Context, index string, doc document.Document) (document.Document, bool, error) {
	body, err := sourceBytes(doc)
	if err != nil {
		return document.Document{}, false, err
	}

	params := es.NoConcurrency()
	params.Refresh = r.refresh
	if doc.HasConcurrency() {
		params.SeqNo = doc.SeqNo()
		params.PrimaryTerm = doc.PrimaryTerm()
	}

	res, err := r.store.IndexDoc(ctx, index, doc.ID(), body, params)
	if err != nil {
		return document.Document{}, false, r.translate(err, index, doc.ID())
	}

	saved := document.Reconstruct(doc.ID(), doc.Source(), res.SeqNo, res.PrimaryTerm, res.Version)
	return saved, res.Created(), nil
}

// Get retrieves a document by ID.
func (r *Repo) Get(ctx context.Context, index, id string) (document.Document, error) {
	res, err := r.store.GetDoc(ctx, index, id)
	if err != nil {
		return document.Document{}, r.translate(err, index, id)
	}
	return documentFromGet(res)
}

// Update applies a partial update and returns the resulting document.
func (r *Repo) Update(ctx context.Context, index, id string, p patch.Patch) (document.Document, error) {
	body, err := updateBody(p)
	if err != nil {
		return document.Document{}, fmt.Errorf("marshal update %s: %w", id, err)
	}

	if _, err := r.store.UpdateDoc(ctx, index, id, body); err != nil {
		return document.Document{}, r.translate(err, index, id)
	}
	return r.Get(ctx, index, id)
}

// Delete removes a document. seqNo/primaryTerm >= 0 guard the delete.
func (r *Repo) Delete(ctx context.Context, index, id string, seqNo, primaryTerm int64) error {
	params := es.NoConcurrency()
	params.Refresh = r.refresh
	if seqNo >= 0 && primaryTerm >= 0 {
		params.SeqNo = seqNo
		params.PrimaryTerm = primaryTerm
	}

	if err := r.store.DeleteDoc(ctx, index, id, params); err != nil {
		return r.translate(err, index, id)
	}
	return nil
}

// Exists reports whether a document exists.
func (r *Repo) Exists(ctx context.Context, index, id string) (bool, error) {
	exists, err := r.store.DocExists(ctx, index, id)
	if err != nil {
		return false, fmt.Errorf("check document %s/%s: %w", index, id, err)
	}
	return exists, nil
}

// SaveAll indexes a batch of documents via one bulk request. Item failures
// are collected into the returned error; successfully stored documents are
// returned with their metadata regardless.
func (r *Repo) SaveAll(ctx context.Context, index string, docs []document.Document) ([]document.Document, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	body, err := bulkBody(index, docs)
	if err != nil {
		return nil, err
	}

	res, err := r.store.Bulk(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("bulk index %s: %w", index, err)
	}

	saved := make([]document.Document, 0, len(docs))
	var itemErrs []error
	for i, item := range res.Items {
		if i >= len(docs) {
			break
		}
		if item.Failed() {
			itemErrs = append(itemErrs, fmt.Errorf("document %s: %s: %s", item.ID, item.ErrType, item.ErrReason))
			continue
		}
		saved = append(saved, document.Reconstruct(
			docs[i].ID(), docs[i].Source(), item.SeqNo, item.PrimaryTerm, item.Version))
	}
	return saved, errors.Join(itemErrs...)
}

// DeleteByQuery removes all documents matching the filter expression and
// returns the number deleted. An empty expression removes everything.
func (r *Repo) DeleteByQuery(ctx context.Context, index string, m mapping.Mapping, filters filter.Expression) (int64, error) {
	body, err := esquery.BuildDeleteByQuery(m, filters)
	if err != nil {
		return 0, fmt.Errorf("build delete query: %w", err)
	}

	deleted, err := r.store.DeleteByQuery(ctx, index, body)
	if err != nil {
		return 0, r.translate(err, index, "")
	}
	return deleted, nil
}

// conflictReason extracts the current document's seq_no and primary_term
// from the engine's version_conflict_engine_exception reason.
var conflictReason = regexp.MustCompile(`current document has seqNo \[(\d+)\] and primary term \[(\d+)\]`)

// translate maps engine faults to domain errors, keeping the engine fault
// reachable as the cause.
func (r *Repo) translate(err error, index, id string) error {
	switch {
	case errors.Is(err, es.ErrConflict):
		return classifyConflict(err)
	case errors.Is(err, es.ErrDocNotFound):
		return fmt.Errorf("document %s/%s: %w: %w", index, id, domain.ErrDocumentNotFound, err)
	case errors.Is(err, es.ErrIndexNotFound):
		return fmt.Errorf("index %s: %w: %w", index, domain.ErrIndexNotFound, err)
	case errors.Is(err, es.ErrBadRequest):
		if id == "" {
			return fmt.Errorf("index %s: %w: %w", index, domain.ErrInvalidQuery, err)
		}
		return fmt.Errorf("document %s/%s: %w: %w", index, id, domain.ErrInvalidSchema, err)
	}
	if id == "" {
		return fmt.Errorf("index %s: %w", index, err)
	}
	return fmt.Errorf("document %s/%s: %w", index, id, err)
}

// classifyConflict turns an engine conflict into a domain.ConflictError,
// keeping the original engine fault as the cause.
func classifyConflict(err error) error {
	cause := err
	seqNo, primaryTerm := int64(-1), int64(-1)

	var srv *es.ServerError
	if errors.As(err, &srv) {
		cause = srv
		if m := conflictReason.FindStringSubmatch(srv.Reason); m != nil {
			seqNo, _ = strconv.ParseInt(m[1], 10, 64)
			primaryTerm, _ = strconv.ParseInt(m[2], 10, 64)
		}
	}
	return domain.NewConflict(seqNo, primaryTerm, cause)
}
