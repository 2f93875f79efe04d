package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/esbind-io/esbind/internal/es"
)

// Search executes a query body against one or more indices.
func (s *Store) Search(ctx context.Context, indices []string, body []byte) (*es.SearchResponse, error) {
	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(indices...),
		s.client.Search.WithBody(bytes.NewReader(body)),
		s.client.Search.WithSeqNoPrimaryTerm(true),
	)
	if err != nil {
		return nil, &es.Error{Op: es.OpSearch, Err: err}
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, classify(es.OpSearch, res)
	}

	var out es.SearchResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &out, nil
}

// Count returns the number of documents matching the query body.
func (s *Store) Count(ctx context.Context, indices []string, body []byte) (int64, error) {
	res, err := s.client.Count(
		s.client.Count.WithContext(ctx),
		s.client.Count.WithIndex(indices...),
		s.client.Count.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return 0, &es.Error{Op: es.OpCount, Err: err}
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, classify(es.OpCount, res)
	}

	var out struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode count response: %w", err)
	}
	return out.Count, nil
}
