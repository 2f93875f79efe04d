package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/esbind-io/esbind/internal/es"
)

// Reindex copies documents per the source/dest body and waits for completion.
func (s *Store) Reindex(ctx context.Context, body []byte) (*es.ReindexResult, error) {
	res, err := s.client.Reindex(bytes.NewReader(body),
		s.client.Reindex.WithContext(ctx),
		s.client.Reindex.WithWaitForCompletion(true),
	)
	if err != nil {
		return nil, &es.Error{Op: es.OpReindex, Err: err}
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, classify(es.OpReindex, res)
	}

	var raw struct {
		Took     int64 `json:"took"`
		Total    int64 `json:"total"`
		Created  int64 `json:"created"`
		Updated  int64 `json:"updated"`
		Failures []any `json:"failures"`
	}
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode reindex response: %w", err)
	}
	return &es.ReindexResult{
		Took:     raw.Took,
		Total:    raw.Total,
		Created:  raw.Created,
		Updated:  raw.Updated,
		Failures: len(raw.Failures),
	}, nil
}
