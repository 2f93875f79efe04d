package mode

// Mode is the search strategy.
type Mode string

const (
	// Keyword is BM25 full-text search over analyzed fields.
	Keyword Mode = "keyword"
	// Knn is vector similarity search over the dense_vector field.
	Knn Mode = "knn"
	// Hybrid combines keyword and kNN scoring.
	Hybrid Mode = "hybrid"
)

// IsValid checks if the mode is supported.
func (m Mode) IsValid() bool {
	return m == Keyword || m == Knn || m == Hybrid
}

// NeedsVector reports whether the mode requires a query embedding.
func (m Mode) NeedsVector() bool {
	return m == Knn || m == Hybrid
}
