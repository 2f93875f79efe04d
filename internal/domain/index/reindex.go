package index

// ReindexSummary reports the outcome of a reindex run.
type ReindexSummary struct {
	TookMillis int64
	Total      int64
	Created    int64
	Updated    int64
	Failures   int
}
