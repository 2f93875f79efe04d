package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/esbind-io/esbind/internal/es"
)

type bulkItemDetail struct {
	Index       string `json:"_index"`
	ID          string `json:"_id"`
	Status      int    `json:"status"`
	Result      string `json:"result"`
	SeqNo       int64  `json:"_seq_no"`
	PrimaryTerm int64  `json:"_primary_term"`
	Version     int64  `json:"_version"`
	Error       *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

// Bulk executes a newline-delimited bulk body and returns per-item outcomes.
func (s *Store) Bulk(ctx context.Context, body []byte) (*es.BulkResult, error) {
	res, err := s.client.Bulk(bytes.NewReader(body),
		s.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return nil, &es.Error{Op: es.OpBulk, Err: err}
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, classify(es.OpBulk, res)
	}

	var raw struct {
		Took   int64                       `json:"took"`
		Errors bool                        `json:"errors"`
		Items  []map[string]bulkItemDetail `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode bulk response: %w", err)
	}

	out := &es.BulkResult{Took: raw.Took, Errors: raw.Errors, Items: make([]es.BulkItem, 0, len(raw.Items))}
	for _, entry := range raw.Items {
		// each entry carries exactly one op key
		for op, d := range entry {
			item := es.BulkItem{
				Op:          op,
				Index:       d.Index,
				ID:          d.ID,
				Status:      d.Status,
				Result:      d.Result,
				SeqNo:       d.SeqNo,
				PrimaryTerm: d.PrimaryTerm,
				Version:     d.Version,
			}
			if d.Error != nil {
				item.ErrType = d.Error.Type
				item.ErrReason = d.Error.Reason
			}
			out.Items = append(out.Items, item)
		}
	}
	return out, nil
}
