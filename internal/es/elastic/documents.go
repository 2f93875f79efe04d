package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/esbind-io/esbind/internal/es"
)

// IndexDoc writes a full document, optionally guarded by seq_no/primary_term.
func (s *Store) IndexDoc(ctx context.Context, index, id string, body []byte, p *es.WriteParams) (*es.WriteResult, error) {
	opts := []func(*esapi.IndexRequest){
		s.client.Index.WithDocumentID(id),
		s.client.Index.WithContext(ctx),
	}
	if p != nil {
		if p.SeqNo >= 0 && p.PrimaryTerm >= 0 {
			opts = append(opts,
				s.client.Index.WithIfSeqNo(int(p.SeqNo)),
				s.client.Index.WithIfPrimaryTerm(int(p.PrimaryTerm)),
			)
		}
		if p.Refresh {
			opts = append(opts, s.client.Index.WithRefresh("true"))
		}
	}

	res, err := s.client.Index(index, bytes.NewReader(body), opts...)
	if err != nil {
		return nil, &es.Error{Op: es.OpIndex, Err: err}
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, classify(es.OpIndex, res)
	}

	var out es.WriteResult
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode index response: %w", err)
	}
	return &out, nil
}

// GetDoc retrieves a document with its concurrency metadata.
func (s *Store) GetDoc(ctx context.Context, index, id string) (*es.GetResult, error) {
	res, err := s.client.Get(index, id, s.client.Get.WithContext(ctx))
	if err != nil {
		return nil, &es.Error{Op: es.OpGet, Err: err}
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, classify(es.OpGet, res)
	}

	var out es.GetResult
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode get response: %w", err)
	}
	if !out.Found {
		return nil, &es.Error{Op: es.OpGet, Err: es.ErrDocNotFound}
	}
	return &out, nil
}

// UpdateDoc applies a partial update body (doc merge or script).
func (s *Store) UpdateDoc(ctx context.Context, index, id string, body []byte) (*es.WriteResult, error) {
	res, err := s.client.Update(index, id, bytes.NewReader(body),
		s.client.Update.WithContext(ctx),
	)
	if err != nil {
		return nil, &es.Error{Op: es.OpUpdate, Err: err}
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, classify(es.OpUpdate, res)
	}

	var out es.WriteResult
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode update response: %w", err)
	}
	return &out, nil
}

// DeleteDoc removes a document, optionally guarded by seq_no/primary_term.
func (s *Store) DeleteDoc(ctx context.Context, index, id string, p *es.WriteParams) error {
	opts := []func(*esapi.DeleteRequest){
		s.client.Delete.WithContext(ctx),
	}
	if p != nil {
		if p.SeqNo >= 0 && p.PrimaryTerm >= 0 {
			opts = append(opts,
				s.client.Delete.WithIfSeqNo(int(p.SeqNo)),
				s.client.Delete.WithIfPrimaryTerm(int(p.PrimaryTerm)),
			)
		}
		if p.Refresh {
			opts = append(opts, s.client.Delete.WithRefresh("true"))
		}
	}

	res, err := s.client.Delete(index, id, opts...)
	if err != nil {
		return &es.Error{Op: es.OpDelete, Err: err}
	}
	defer res.Body.Close()
	if res.IsError() {
		return classify(es.OpDelete, res)
	}
	return nil
}

// DocExists reports whether a document exists without fetching its source.
func (s *Store) DocExists(ctx context.Context, index, id string) (bool, error) {
	res, err := s.client.Exists(index, id, s.client.Exists.WithContext(ctx))
	if err != nil {
		return false, &es.Error{Op: es.OpExists, Err: err}
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	}
	return false, classify(es.OpExists, res)
}

// DeleteByQuery removes all documents matching the query body and returns
// the number deleted.
func (s *Store) DeleteByQuery(ctx context.Context, index string, body []byte) (int64, error) {
	res, err := s.client.DeleteByQuery([]string{index}, bytes.NewReader(body),
		s.client.DeleteByQuery.WithContext(ctx),
	)
	if err != nil {
		return 0, &es.Error{Op: es.OpDeleteByQuery, Err: err}
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, classify(es.OpDeleteByQuery, res)
	}

	var out struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode delete_by_query response: %w", err)
	}
	return out.Deleted, nil
}
