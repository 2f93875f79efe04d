package request

import (
	"fmt"

	"github.com/esbind-io/esbind/internal/domain/search/filter"
	"github.com/esbind-io/esbind/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed query text length.
	MaxQueryLength = 4096
	DefaultSize    = 20
	MaxSize        = 100
	DefaultK       = 10
	MaxK           = 500
	// MaxFrom caps offset pagination; deeper paging uses search_after.
	MaxFrom = 10000
)

// SortField orders results by one field.
type SortField struct {
	Field string
	Desc  bool
}

// Request is a validated search query.
type Request struct {
	query       string
	searchMode  mode.Mode
	filters     filter.Expression
	from        int
	size        int
	k           int
	minScore    float64
	sort        []SortField
	searchAfter []any
}

// New validates and normalizes search parameters.
// Defaults: mode=keyword, size=20, k=10. An empty query with filters (or
// nothing at all) matches everything.
func New(
	query string,
	m mode.Mode,
	filters filter.Expression,
	from, size, k int,
	minScore float64,
	sort []SortField,
	searchAfter []any,
) (Request, error) {
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if m == "" {
		m = mode.Keyword
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("invalid search mode: %q", m)
	}
	if m.NeedsVector() && query == "" {
		return Request{}, fmt.Errorf("query text is required for %s search", m)
	}
	if from < 0 {
		return Request{}, fmt.Errorf("from must be non-negative")
	}
	if from > MaxFrom {
		return Request{}, fmt.Errorf("from too large (max %d), use search_after", MaxFrom)
	}
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	if k <= 0 {
		k = DefaultK
	}
	if k > MaxK {
		k = MaxK
	}
	if minScore < 0 {
		return Request{}, fmt.Errorf("min_score must be non-negative")
	}
	if len(searchAfter) > 0 && from > 0 {
		return Request{}, fmt.Errorf("search_after and from are mutually exclusive")
	}
	if len(searchAfter) > 0 && len(sort) == 0 {
		return Request{}, fmt.Errorf("search_after requires a sort")
	}
	for _, s := range sort {
		if s.Field == "" {
			return Request{}, fmt.Errorf("sort field is required")
		}
	}

	return Request{
		query:       query,
		searchMode:  m,
		filters:     filters,
		from:        from,
		size:        size,
		k:           k,
		minScore:    minScore,
		sort:        sort,
		searchAfter: searchAfter,
	}, nil
}

// Query returns the query text ("" matches everything).
func (r *Request) Query() string { return r.query }

// Mode returns the search strategy.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// Filters returns the filter expression.
func (r *Request) Filters() filter.Expression { return r.filters }

// From returns the pagination offset.
func (r *Request) From() int { return r.from }

// Size returns the maximum results to return.
func (r *Request) Size() int { return r.size }

// K returns the number of kNN candidates to retrieve.
func (r *Request) K() int { return r.k }

// MinScore returns the minimum score threshold (0 = none).
func (r *Request) MinScore() float64 { return r.minScore }

// Sort returns the sort fields.
func (r *Request) Sort() []SortField { return r.sort }

// SearchAfter returns the sort values of the last seen hit (deep paging).
func (r *Request) SearchAfter() []any { return r.searchAfter }
