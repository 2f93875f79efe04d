package hit

// Relation qualifies the exactness of the total hit count.
type Relation string

const (
	// RelationEq means the total is exact.
	RelationEq Relation = "eq"
	// RelationGte means the total is a lower bound.
	RelationGte Relation = "gte"
)

// Hit is one retrieved document with its relevance score and metadata.
type Hit struct {
	index       string
	id          string
	score       float64
	seqNo       int64
	primaryTerm int64
	source      map[string]any
	sort        []any
}

// New creates a search hit.
func New(
	index, id string, score float64,
	seqNo, primaryTerm int64,
	source map[string]any, sort []any,
) Hit {
	return Hit{
		index: index, id: id, score: score,
		seqNo: seqNo, primaryTerm: primaryTerm,
		source: source, sort: sort,
	}
}

// Index returns the name of the index the hit came from.
func (h *Hit) Index() string { return h.index }

// ID returns the document identifier.
func (h *Hit) ID() string { return h.id }

// Score returns the relevance score.
func (h *Hit) Score() float64 { return h.score }

// SeqNo returns the hit's sequence number (-1 when not requested).
func (h *Hit) SeqNo() int64 { return h.seqNo }

// PrimaryTerm returns the hit's primary term (-1 when not requested).
func (h *Hit) PrimaryTerm() int64 { return h.primaryTerm }

// Source returns the raw source fields.
func (h *Hit) Source() map[string]any { return h.source }

// Sort returns the hit's sort values (search_after cursor).
func (h *Hit) Sort() []any { return h.sort }

// Hits wraps an ordered hit sequence with its aggregate statistics.
type Hits struct {
	hits     []Hit
	total    int64
	relation Relation
	maxScore float64
}

// NewHits creates a hits collection. An empty relation defaults to eq.
func NewHits(hits []Hit, total int64, relation Relation, maxScore float64) Hits {
	if relation == "" {
		relation = RelationEq
	}
	return Hits{hits: hits, total: total, relation: relation, maxScore: maxScore}
}

// Hits returns the ordered hit sequence.
func (h *Hits) Hits() []Hit { return h.hits }

// Len returns the number of returned hits.
func (h *Hits) Len() int { return len(h.hits) }

// Total returns the total matching document count.
func (h *Hits) Total() int64 { return h.total }

// TotalRelation returns the exactness qualifier of Total.
func (h *Hits) TotalRelation() Relation { return h.relation }

// MaxScore returns the highest relevance score in the result.
func (h *Hits) MaxScore() float64 { return h.maxScore }
