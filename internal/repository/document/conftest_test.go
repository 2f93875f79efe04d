package document

import (
	"context"
	"fmt"
	"testing"

	"github.com/esbind-io/esbind/internal/domain/document"
	"github.com/esbind-io/esbind/internal/es"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	indexFn         func(ctx context.Context, index, id string, body []byte, p *es.WriteParams) (*es.WriteResult, error)
	getFn           func(ctx context.Context, index, id string) (*es.GetResult, error)
	updateFn        func(ctx context.Context, index, id string, body []byte) (*es.WriteResult, error)
	deleteFn        func(ctx context.Context, index, id string, p *es.WriteParams) error
	existsFn        func(ctx context.Context, index, id string) (bool, error)
	bulkFn          func(ctx context.Context, body []byte) (*es.BulkResult, error)
	deleteByQueryFn func(ctx context.Context, index string, body []byte) (int64, error)
}

func (m *mockStore) IndexDoc(ctx context.Context, index, id string, body []byte, p *es.WriteParams) (*es.WriteResult, error) {
	if m.indexFn != nil {
		return m.indexFn(ctx, index, id, body, p)
	}
	return &es.WriteResult{Result: "created"}, nil
}

func (m *mockStore) GetDoc(ctx context.Context, index, id string) (*es.GetResult, error) {
	if m.getFn != nil {
		return m.getFn(ctx, index, id)
	}
	return nil, &es.Error{Op: es.OpGet, Err: es.ErrDocNotFound}
}

func (m *mockStore) UpdateDoc(ctx context.Context, index, id string, body []byte) (*es.WriteResult, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, index, id, body)
	}
	return &es.WriteResult{Result: "updated"}, nil
}

func (m *mockStore) DeleteDoc(ctx context.Context, index, id string, p *es.WriteParams) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, index, id, p)
	}
	return nil
}

func (m *mockStore) DocExists(ctx context.Context, index, id string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, index, id)
	}
	return false, nil
}

func (m *mockStore) Bulk(ctx context.Context, body []byte) (*es.BulkResult, error) {
	if m.bulkFn != nil {
		return m.bulkFn(ctx, body)
	}
	return &es.BulkResult{}, nil
}

func (m *mockStore) DeleteByQuery(ctx context.Context, index string, body []byte) (int64, error) {
	if m.deleteByQueryFn != nil {
		return m.deleteByQueryFn(ctx, index, body)
	}
	return 0, nil
}

func testDocument(t *testing.T, id string) document.Document {
	t.Helper()
	doc, err := document.New(id, map[string]any{"title": "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return doc
}

// conflictServerError builds the engine fault for an optimistic locking
// failure with the given current metadata.
func conflictServerError(curSeqNo, curTerm int64) error {
	srv := &es.ServerError{
		StatusCode: 409,
		Type:       "version_conflict_engine_exception",
		Reason: fmt.Sprintf("[1]: version conflict, required seqNo [5], primary term [1]. "+
			"current document has seqNo [%d] and primary term [%d]", curSeqNo, curTerm),
	}
	return &es.Error{Op: es.OpIndex, Err: &conflictCause{srv: srv}}
}

type conflictCause struct {
	srv *es.ServerError
}

func (c *conflictCause) Error() string   { return c.srv.Error() }
func (c *conflictCause) Unwrap() []error { return []error{es.ErrConflict, c.srv} }
