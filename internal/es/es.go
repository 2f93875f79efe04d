package es

import (
	"context"
	"encoding/json"
	"time"
)

// Store is the engine facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	IndexAdmin
	DocStore
	Searcher
	Reindexer
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks cluster connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
	Info(ctx context.Context) (ClusterInfo, error)
}

// IndexAdmin provides index lifecycle operations.
type IndexAdmin interface {
	CreateIndex(ctx context.Context, name string, body []byte) error
	DeleteIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	PutMapping(ctx context.Context, name string, body []byte) error
	PutAlias(ctx context.Context, name, alias string) error
	Refresh(ctx context.Context, names ...string) error
}

// WriteParams carries optional per-request write options.
// SeqNo/PrimaryTerm < 0 disable the optimistic concurrency check.
type WriteParams struct {
	SeqNo       int64
	PrimaryTerm int64
	Refresh     bool
}

// NoConcurrency returns WriteParams without a concurrency check.
func NoConcurrency() *WriteParams {
	return &WriteParams{SeqNo: -1, PrimaryTerm: -1}
}

// DocStore provides document CRUD operations.
type DocStore interface {
	IndexDoc(ctx context.Context, index, id string, body []byte, p *WriteParams) (*WriteResult, error)
	GetDoc(ctx context.Context, index, id string) (*GetResult, error)
	UpdateDoc(ctx context.Context, index, id string, body []byte) (*WriteResult, error)
	DeleteDoc(ctx context.Context, index, id string, p *WriteParams) error
	DocExists(ctx context.Context, index, id string) (bool, error)
	Bulk(ctx context.Context, body []byte) (*BulkResult, error)
	DeleteByQuery(ctx context.Context, index string, body []byte) (int64, error)
}

// Searcher provides query execution.
type Searcher interface {
	Search(ctx context.Context, indices []string, body []byte) (*SearchResponse, error)
	Count(ctx context.Context, indices []string, body []byte) (int64, error)
}

// Reindexer copies documents between indices.
type Reindexer interface {
	Reindex(ctx context.Context, body []byte) (*ReindexResult, error)
}

// ClusterInfo holds cluster identity and version.
type ClusterInfo struct {
	Name        string
	ClusterName string
	Version     string
}

// WriteResult reports the outcome of a single-document write.
type WriteResult struct {
	Result      string `json:"result"` // "created", "updated", "deleted", "noop"
	SeqNo       int64  `json:"_seq_no"`
	PrimaryTerm int64  `json:"_primary_term"`
	Version     int64  `json:"_version"`
}

// Created reports whether the write created a new document.
func (r *WriteResult) Created() bool { return r.Result == "created" }

// GetResult is a retrieved document with its concurrency metadata.
type GetResult struct {
	Index       string          `json:"_index"`
	ID          string          `json:"_id"`
	Found       bool            `json:"found"`
	SeqNo       int64           `json:"_seq_no"`
	PrimaryTerm int64           `json:"_primary_term"`
	Version     int64           `json:"_version"`
	Source      json.RawMessage `json:"_source"`
}

// TotalHits is the total-hit count with its exactness qualifier.
type TotalHits struct {
	Value    int64  `json:"value"`
	Relation string `json:"relation"`
}

// HitEntry is one raw search hit.
type HitEntry struct {
	Index       string          `json:"_index"`
	ID          string          `json:"_id"`
	Score       *float64        `json:"_score"`
	SeqNo       *int64          `json:"_seq_no"`
	PrimaryTerm *int64          `json:"_primary_term"`
	Source      json.RawMessage `json:"_source"`
	Sort        []any           `json:"sort"`
}

// HitsEnvelope is the hits section of a search response.
type HitsEnvelope struct {
	Total    TotalHits  `json:"total"`
	MaxScore *float64   `json:"max_score"`
	Hits     []HitEntry `json:"hits"`
}

// SearchResponse is the engine search response envelope.
type SearchResponse struct {
	Took     int64        `json:"took"`
	TimedOut bool         `json:"timed_out"`
	Hits     HitsEnvelope `json:"hits"`
}

// BulkItem reports one bulk operation outcome.
type BulkItem struct {
	Op          string
	Index       string
	ID          string
	Status      int
	Result      string
	SeqNo       int64
	PrimaryTerm int64
	Version     int64
	ErrType     string
	ErrReason   string
}

// Failed reports whether the item carries an error.
func (i *BulkItem) Failed() bool { return i.ErrType != "" || i.Status >= 400 }

// BulkResult is a parsed bulk response.
type BulkResult struct {
	Took   int64
	Errors bool
	Items  []BulkItem
}

// ReindexResult is a parsed reindex response.
type ReindexResult struct {
	Took     int64 `json:"took"`
	Total    int64 `json:"total"`
	Created  int64 `json:"created"`
	Updated  int64 `json:"updated"`
	Failures int   `json:"-"`
}
