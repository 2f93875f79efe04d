package chi

import (
	"errors"
	"fmt"

	"github.com/esbind-io/esbind/internal/domain/document"
	"github.com/esbind-io/esbind/internal/domain/index"
	"github.com/esbind-io/esbind/internal/domain/mapping"
	"github.com/esbind-io/esbind/internal/domain/mapping/field"
	"github.com/esbind-io/esbind/internal/domain/search/filter"
	"github.com/esbind-io/esbind/internal/domain/search/hit"
	"github.com/esbind-io/esbind/internal/domain/search/mode"
	"github.com/esbind-io/esbind/internal/domain/search/request"
)

// ErrorCode identifies the error category in API responses.
type ErrorCode string

const (
	CodeBadRequest                ErrorCode = "bad_request"
	CodeValidationFailed          ErrorCode = "validation_failed"
	CodeIndexNotFound             ErrorCode = "index_not_found"
	CodeIndexAlreadyExists        ErrorCode = "index_already_exists"
	CodeDocumentNotFound          ErrorCode = "document_not_found"
	CodeVersionConflict           ErrorCode = "version_conflict"
	CodeInvalidQuery              ErrorCode = "invalid_query"
	CodeEmbeddingProviderError    ErrorCode = "embedding_provider_error"
	CodeVectorSearchNotConfigured ErrorCode = "vector_search_not_configured"
	CodeInternalError             ErrorCode = "internal_error"
)

// ErrorResponse is the uniform error envelope. SeqNo and PrimaryTerm carry
// the engine's current values on version_conflict responses.
type ErrorResponse struct {
	Code        ErrorCode `json:"code"`
	Message     string    `json:"message"`
	SeqNo       *int64    `json:"seq_no,omitempty"`
	PrimaryTerm *int64    `json:"primary_term,omitempty"`
}

type fieldDefinition struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type createIndexRequest struct {
	Fields       []fieldDefinition `json:"fields"`
	ContentField string            `json:"content_field,omitempty"`
	VectorDims   int               `json:"vector_dims,omitempty"`
}

type indexResponse struct {
	Index   string `json:"index"`
	Created bool   `json:"created"`
}

type existsResponse struct {
	Index  string `json:"index"`
	Exists bool   `json:"exists"`
}

type reindexRequest struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
}

type reindexResponse struct {
	TookMillis int64 `json:"took_ms"`
	Total      int64 `json:"total"`
	Created    int64 `json:"created"`
	Updated    int64 `json:"updated"`
	Failures   int   `json:"failures"`
}

type saveDocumentRequest struct {
	Source        map[string]any `json:"source"`
	IfSeqNo       *int64         `json:"if_seq_no,omitempty"`
	IfPrimaryTerm *int64         `json:"if_primary_term,omitempty"`
}

type documentResponse struct {
	ID          string         `json:"id"`
	Source      map[string]any `json:"source"`
	SeqNo       int64          `json:"seq_no"`
	PrimaryTerm int64          `json:"primary_term"`
	Version     int64          `json:"version"`
}

type patchDocumentRequest struct {
	Set    map[string]any `json:"set,omitempty"`
	Remove []string       `json:"remove,omitempty"`
}

type bulkSaveRequest struct {
	Documents []bulkSaveItem `json:"documents"`
}

type bulkSaveItem struct {
	ID     string         `json:"id"`
	Source map[string]any `json:"source"`
}

type bulkSaveResponse struct {
	Items  []documentResponse `json:"items"`
	Saved  int                `json:"saved"`
	Failed int                `json:"failed"`
	Error  string             `json:"error,omitempty"`
}

type filterCondition struct {
	Field string       `json:"field"`
	Term  *string      `json:"term,omitempty"`
	Range *rangeFilter `json:"range,omitempty"`
}

type rangeFilter struct {
	Gt  *float64 `json:"gt,omitempty"`
	Gte *float64 `json:"gte,omitempty"`
	Lt  *float64 `json:"lt,omitempty"`
	Lte *float64 `json:"lte,omitempty"`
}

type filterExpression struct {
	Must    []filterCondition `json:"must,omitempty"`
	Should  []filterCondition `json:"should,omitempty"`
	MustNot []filterCondition `json:"must_not,omitempty"`
}

type searchDocumentsRequest struct {
	Query       string            `json:"query,omitempty"`
	Mode        string            `json:"mode,omitempty"`
	Filters     *filterExpression `json:"filters,omitempty"`
	From        int               `json:"from,omitempty"`
	Size        int               `json:"size,omitempty"`
	K           int               `json:"k,omitempty"`
	MinScore    float64           `json:"min_score,omitempty"`
	Sort        []sortField       `json:"sort,omitempty"`
	SearchAfter []any             `json:"search_after,omitempty"`
}

type sortField struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc,omitempty"`
}

type searchHit struct {
	Index       string         `json:"index"`
	ID          string         `json:"id"`
	Score       float64        `json:"score"`
	SeqNo       int64          `json:"seq_no"`
	PrimaryTerm int64          `json:"primary_term"`
	Source      map[string]any `json:"source"`
	Sort        []any          `json:"sort,omitempty"`
}

type searchDocumentsResponse struct {
	Hits          []searchHit `json:"hits"`
	Total         int64       `json:"total"`
	TotalRelation string      `json:"total_relation"`
	MaxScore      float64     `json:"max_score"`
}

type filtersRequest struct {
	Filters *filterExpression `json:"filters,omitempty"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

type deleteByQueryResponse struct {
	Deleted int64 `json:"deleted"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func mappingFromRequest(req createIndexRequest) (mapping.Mapping, error) {
	fields := make([]field.Field, len(req.Fields))
	for i, f := range req.Fields {
		fld, err := field.New(f.Name, field.Type(f.Type))
		if err != nil {
			return mapping.Mapping{}, fmt.Errorf("field %q: %w", f.Name, err)
		}
		fields[i] = fld
	}
	m, err := mapping.New(fields, req.ContentField, req.VectorDims)
	if err != nil {
		return mapping.Mapping{}, fmt.Errorf("build mapping: %w", err)
	}
	return m, nil
}

func documentToResponse(doc document.Document) documentResponse {
	return documentResponse{
		ID:          doc.ID(),
		Source:      doc.Source(),
		SeqNo:       doc.SeqNo(),
		PrimaryTerm: doc.PrimaryTerm(),
		Version:     doc.Version(),
	}
}

func reindexToResponse(s index.ReindexSummary) reindexResponse {
	return reindexResponse{
		TookMillis: s.TookMillis,
		Total:      s.Total,
		Created:    s.Created,
		Updated:    s.Updated,
		Failures:   s.Failures,
	}
}

func hitsToResponse(hits hit.Hits) searchDocumentsResponse {
	items := make([]searchHit, hits.Len())
	for i, h := range hits.Hits() {
		items[i] = searchHit{
			Index:       h.Index(),
			ID:          h.ID(),
			Score:       h.Score(),
			SeqNo:       h.SeqNo(),
			PrimaryTerm: h.PrimaryTerm(),
			Source:      h.Source(),
			Sort:        h.Sort(),
		}
	}
	return searchDocumentsResponse{
		Hits:          items,
		Total:         hits.Total(),
		TotalRelation: string(hits.TotalRelation()),
		MaxScore:      hits.MaxScore(),
	}
}

func searchRequestFromBody(req searchDocumentsRequest) (request.Request, error) {
	filters, err := filtersFromBody(req.Filters)
	if err != nil {
		return request.Request{}, fmt.Errorf("parse filters: %w", err)
	}

	sort := make([]request.SortField, len(req.Sort))
	for i, s := range req.Sort {
		sort[i] = request.SortField{Field: s.Field, Desc: s.Desc}
	}

	r, err := request.New(
		req.Query, mode.Mode(req.Mode), filters,
		req.From, req.Size, req.K, req.MinScore,
		sort, req.SearchAfter,
	)
	if err != nil {
		return request.Request{}, fmt.Errorf("build search request: %w", err)
	}
	return r, nil
}

func filtersFromBody(f *filterExpression) (filter.Expression, error) {
	if f == nil {
		return filter.Expression{}, nil
	}

	must, err := conditionsFromBody(f.Must)
	if err != nil {
		return filter.Expression{}, err
	}
	should, err := conditionsFromBody(f.Should)
	if err != nil {
		return filter.Expression{}, err
	}
	mustNot, err := conditionsFromBody(f.MustNot)
	if err != nil {
		return filter.Expression{}, err
	}

	expr, err := filter.NewExpression(must, should, mustNot)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("new expression: %w", err)
	}
	return expr, nil
}

func conditionsFromBody(cs []filterCondition) ([]filter.Condition, error) {
	if len(cs) == 0 {
		return nil, nil
	}
	out := make([]filter.Condition, 0, len(cs))
	for _, c := range cs {
		cond, err := conditionFromBody(c)
		if err != nil {
			return nil, err
		}
		out = append(out, cond)
	}
	return out, nil
}

func conditionFromBody(c filterCondition) (filter.Condition, error) {
	if c.Term != nil && c.Range != nil {
		return filter.Condition{},
			fmt.Errorf("filter condition for %q must have term or range, not both", c.Field)
	}
	if c.Term != nil {
		cond, err := filter.NewTerm(c.Field, *c.Term)
		if err != nil {
			return filter.Condition{}, fmt.Errorf("term filter: %w", err)
		}
		return cond, nil
	}
	if c.Range != nil {
		r, err := filter.NewRange(c.Range.Gt, c.Range.Gte, c.Range.Lt, c.Range.Lte)
		if err != nil {
			return filter.Condition{}, fmt.Errorf("range filter: %w", err)
		}
		cond, err := filter.NewRangeCondition(c.Field, r)
		if err != nil {
			return filter.Condition{}, fmt.Errorf("range condition: %w", err)
		}
		return cond, nil
	}
	return filter.Condition{},
		errors.New("filter condition must have either term or range")
}
