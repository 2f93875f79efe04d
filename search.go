package esbind

import (
	"context"
	"fmt"

	"github.com/esbind-io/esbind/internal/domain/search/filter"
	"github.com/esbind-io/esbind/internal/domain/search/hit"
	"github.com/esbind-io/esbind/internal/domain/search/mode"
	"github.com/esbind-io/esbind/internal/domain/search/request"
)

// SearchBuilder accumulates search parameters fluently. Terminal methods
// are Do, Count and Delete; builder errors surface there.
type SearchBuilder[T any] struct {
	idx *Index[T]

	query       string
	searchMode  mode.Mode
	must        []filter.Condition
	should      []filter.Condition
	mustNot     []filter.Condition
	from        int
	size        int
	k           int
	minScore    float64
	sort        []request.SortField
	searchAfter []any

	err error
}

func newSearchBuilder[T any](idx *Index[T]) *SearchBuilder[T] {
	return &SearchBuilder[T]{idx: idx}
}

// Query sets the full-text query string.
func (b *SearchBuilder[T]) Query(q string) *SearchBuilder[T] {
	b.query = q
	return b
}

// Knn switches to vector similarity search. Requires an embedder.
func (b *SearchBuilder[T]) Knn() *SearchBuilder[T] {
	b.searchMode = mode.Knn
	return b
}

// Hybrid combines keyword and vector scoring. Requires an embedder.
func (b *SearchBuilder[T]) Hybrid() *SearchBuilder[T] {
	b.searchMode = mode.Hybrid
	return b
}

// Where adds a term filter the document must match.
func (b *SearchBuilder[T]) Where(field, value string) *SearchBuilder[T] {
	b.must = b.appendTerm(b.must, field, value)
	return b
}

// WhereAny adds a term filter to the should clause; at least one should
// clause has to match.
func (b *SearchBuilder[T]) WhereAny(field, value string) *SearchBuilder[T] {
	b.should = b.appendTerm(b.should, field, value)
	return b
}

// WhereNot adds a term filter the document must not match.
func (b *SearchBuilder[T]) WhereNot(field, value string) *SearchBuilder[T] {
	b.mustNot = b.appendTerm(b.mustNot, field, value)
	return b
}

// Gt adds an exclusive lower bound on a numeric field.
func (b *SearchBuilder[T]) Gt(field string, v float64) *SearchBuilder[T] {
	return b.rangeBound(field, &v, nil, nil, nil)
}

// Gte adds an inclusive lower bound on a numeric field.
func (b *SearchBuilder[T]) Gte(field string, v float64) *SearchBuilder[T] {
	return b.rangeBound(field, nil, &v, nil, nil)
}

// Lt adds an exclusive upper bound on a numeric field.
func (b *SearchBuilder[T]) Lt(field string, v float64) *SearchBuilder[T] {
	return b.rangeBound(field, nil, nil, &v, nil)
}

// Lte adds an inclusive upper bound on a numeric field.
func (b *SearchBuilder[T]) Lte(field string, v float64) *SearchBuilder[T] {
	return b.rangeBound(field, nil, nil, nil, &v)
}

// Between adds an inclusive range on a numeric field.
func (b *SearchBuilder[T]) Between(field string, gte, lte float64) *SearchBuilder[T] {
	return b.rangeBound(field, nil, &gte, nil, &lte)
}

// From sets the pagination offset.
func (b *SearchBuilder[T]) From(from int) *SearchBuilder[T] {
	b.from = from
	return b
}

// Size caps the number of returned hits.
func (b *SearchBuilder[T]) Size(size int) *SearchBuilder[T] {
	b.size = size
	return b
}

// K sets the number of nearest neighbours for knn and hybrid search.
func (b *SearchBuilder[T]) K(k int) *SearchBuilder[T] {
	b.k = k
	return b
}

// MinScore drops hits scoring below the threshold.
func (b *SearchBuilder[T]) MinScore(score float64) *SearchBuilder[T] {
	b.minScore = score
	return b
}

// SortBy orders results by a field. Call repeatedly for tie-breaking.
func (b *SearchBuilder[T]) SortBy(field string, desc bool) *SearchBuilder[T] {
	b.sort = append(b.sort, request.SortField{Field: field, Desc: desc})
	return b
}

// SearchAfter resumes deep pagination from a previous hit's sort values.
func (b *SearchBuilder[T]) SearchAfter(values ...any) *SearchBuilder[T] {
	b.searchAfter = values
	return b
}

// Do executes the search and hydrates the hits into T.
func (b *SearchBuilder[T]) Do(ctx context.Context) (*SearchHits[T], error) {
	if b.err != nil {
		return nil, b.err
	}

	filters, err := b.expression()
	if err != nil {
		return nil, err
	}

	req, err := request.New(
		b.query, b.searchMode, filters,
		b.from, b.size, b.k, b.minScore,
		b.sort, b.searchAfter,
	)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	hits, err := b.idx.client.search.Search(ctx, b.idx.coords, req)
	if err != nil {
		return nil, err
	}
	return b.hydrate(hits)
}

// Count returns the number of documents matching the filters. Query text,
// sorting and pagination are ignored.
func (b *SearchBuilder[T]) Count(ctx context.Context) (int64, error) {
	if b.err != nil {
		return 0, b.err
	}
	filters, err := b.expression()
	if err != nil {
		return 0, err
	}
	return b.idx.client.search.Count(ctx, b.idx.coords, filters)
}

// Delete removes every document matching the filters and returns the
// number deleted. Query text is ignored.
func (b *SearchBuilder[T]) Delete(ctx context.Context) (int64, error) {
	if b.err != nil {
		return 0, b.err
	}
	filters, err := b.expression()
	if err != nil {
		return 0, err
	}
	return b.idx.client.documents.DeleteByQuery(ctx, b.idx.name, filters)
}

func (b *SearchBuilder[T]) appendTerm(conds []filter.Condition, field, value string) []filter.Condition {
	cond, err := filter.NewTerm(field, value)
	if err != nil {
		b.fail(fmt.Errorf("term filter %s: %w", field, err))
		return conds
	}
	return append(conds, cond)
}

func (b *SearchBuilder[T]) rangeBound(field string, gt, gte, lt, lte *float64) *SearchBuilder[T] {
	r, err := filter.NewRange(gt, gte, lt, lte)
	if err != nil {
		b.fail(fmt.Errorf("range filter %s: %w", field, err))
		return b
	}
	cond, err := filter.NewRangeCondition(field, r)
	if err != nil {
		b.fail(fmt.Errorf("range filter %s: %w", field, err))
		return b
	}
	b.must = append(b.must, cond)
	return b
}

func (b *SearchBuilder[T]) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *SearchBuilder[T]) expression() (filter.Expression, error) {
	expr, err := filter.NewExpression(b.must, b.should, b.mustNot)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("build filters: %w", err)
	}
	return expr, nil
}

func (b *SearchBuilder[T]) hydrate(hits hit.Hits) (*SearchHits[T], error) {
	out := &SearchHits[T]{
		Hits:          make([]Hit[T], 0, hits.Len()),
		Total:         hits.Total(),
		TotalRelation: TotalRelation(hits.TotalRelation()),
		MaxScore:      hits.MaxScore(),
	}
	for _, h := range hits.Hits() {
		v, err := b.idx.schema.fromSource(h.ID(), h.Source())
		if err != nil {
			return nil, fmt.Errorf("hydrate hit %s: %w", h.ID(), err)
		}
		out.Hits = append(out.Hits, Hit[T]{
			Value:       v,
			ID:          h.ID(),
			Index:       h.Index(),
			Score:       h.Score(),
			SeqNo:       h.SeqNo(),
			PrimaryTerm: h.PrimaryTerm(),
			Sort:        h.Sort(),
		})
	}
	return out, nil
}
