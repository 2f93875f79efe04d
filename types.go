// Package esbind maps Go structs to Elasticsearch indices: schema-driven
// mapping declaration, index lifecycle management, document CRUD with
// optimistic concurrency, and typed search over keyword, kNN and hybrid
// modes.
package esbind

import (
	"context"

	"github.com/esbind-io/esbind/internal/domain"
)

// FieldType is the engine mapping type of a schema field.
type FieldType string

const (
	Text     FieldType = "text"
	Keyword  FieldType = "keyword"
	Long     FieldType = "long"
	Double   FieldType = "double"
	Date     FieldType = "date"
	Boolean  FieldType = "boolean"
	GeoPoint FieldType = "geo_point"
)

// FieldInfo describes one mapped field of a model schema.
type FieldInfo struct {
	Name    string
	Type    FieldType
	Content bool
}

// Point is a geographic coordinate pair for geo_point fields.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// SaveResult reports the outcome of a single document write.
type SaveResult struct {
	ID          string
	Created     bool
	SeqNo       int64
	PrimaryTerm int64
	Version     int64
}

// Entity wraps a retrieved model with its engine metadata. SeqNo and
// PrimaryTerm feed guarded writes (Replace, DeleteGuarded).
type Entity[T any] struct {
	Value       T
	ID          string
	SeqNo       int64
	PrimaryTerm int64
	Version     int64
}

// ReindexSummary reports the outcome of a reindex run.
type ReindexSummary struct {
	TookMillis int64
	Total      int64
	Created    int64
	Updated    int64
	Failures   int
}

// TotalRelation qualifies the exactness of a total hit count.
type TotalRelation string

const (
	// TotalEq means the total is exact.
	TotalEq TotalRelation = "eq"
	// TotalGte means the total is a lower bound.
	TotalGte TotalRelation = "gte"
)

// Hit is one retrieved model with its relevance score and metadata.
type Hit[T any] struct {
	Value       T
	ID          string
	Index       string
	Score       float64
	SeqNo       int64
	PrimaryTerm int64
	Sort        []any
}

// SearchHits wraps an ordered hit sequence with aggregate statistics.
type SearchHits[T any] struct {
	Hits          []Hit[T]
	Total         int64
	TotalRelation TotalRelation
	MaxScore      float64
}

// EmbeddingResult is a computed embedding with provider token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder turns text into a dense vector. Plug one in with WithEmbedder
// to enable knn and hybrid search over content fields.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// embedderAdapter bridges the public Embedder to the internal contract.
type embedderAdapter struct {
	inner Embedder
}

func (a embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{
		Embedding:    res.Embedding,
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}
