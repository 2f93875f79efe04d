// Package esquery builds engine query bodies from validated domain requests.
package esquery

import (
	"encoding/json"
	"fmt"

	"github.com/esbind-io/esbind/internal/domain/mapping"
	"github.com/esbind-io/esbind/internal/domain/mapping/field"
	"github.com/esbind-io/esbind/internal/domain/search/filter"
	"github.com/esbind-io/esbind/internal/domain/search/mode"
	"github.com/esbind-io/esbind/internal/domain/search/request"
)

const maxNumCandidates = 10000

// Build assembles the search body for the request. vector carries the query
// embedding for knn/hybrid modes and is ignored for keyword searches.
func Build(m mapping.Mapping, req request.Request, vector []float32) ([]byte, error) {
	body := map[string]any{
		"size": req.Size(),
	}
	if req.From() > 0 {
		body["from"] = req.From()
	}
	if req.MinScore() > 0 {
		body["min_score"] = req.MinScore()
	}

	switch req.Mode() {
	case mode.Keyword:
		body["query"] = scoringQuery(m, req.Query(), req.Filters())
	case mode.Knn:
		knn, err := knnClause(m, req, vector)
		if err != nil {
			return nil, err
		}
		body["knn"] = knn
	case mode.Hybrid:
		knn, err := knnClause(m, req, vector)
		if err != nil {
			return nil, err
		}
		body["query"] = scoringQuery(m, req.Query(), req.Filters())
		body["knn"] = knn
	default:
		return nil, fmt.Errorf("unsupported search mode: %q", req.Mode())
	}

	if len(req.Sort()) > 0 {
		body["sort"] = sortClause(m, req.Sort())
	}
	if len(req.SearchAfter()) > 0 {
		body["search_after"] = req.SearchAfter()
	}

	return json.Marshal(body)
}

// BuildCount assembles a count body from a filter expression.
func BuildCount(m mapping.Mapping, filters filter.Expression) ([]byte, error) {
	return json.Marshal(map[string]any{
		"query": scoringQuery(m, "", filters),
	})
}

// BuildDeleteByQuery assembles a delete_by_query body. An empty expression
// matches every document.
func BuildDeleteByQuery(m mapping.Mapping, filters filter.Expression) ([]byte, error) {
	return json.Marshal(map[string]any{
		"query": scoringQuery(m, "", filters),
	})
}

// scoringQuery builds the bool query combining the text match with filter
// clauses. Empty query text matches everything.
func scoringQuery(m mapping.Mapping, query string, filters filter.Expression) map[string]any {
	var match map[string]any
	if query != "" {
		match = textMatch(m, query)
	}

	if filters.IsEmpty() {
		if match == nil {
			return map[string]any{"match_all": map[string]any{}}
		}
		return match
	}

	boolQ := map[string]any{}
	must := conditionClauses(m, filters.Must())
	if match != nil {
		must = append([]map[string]any{match}, must...)
	}
	if len(must) > 0 {
		boolQ["must"] = must
	}
	if should := conditionClauses(m, filters.Should()); len(should) > 0 {
		boolQ["should"] = should
		boolQ["minimum_should_match"] = 1
	}
	if mustNot := conditionClauses(m, filters.MustNot()); len(mustNot) > 0 {
		boolQ["must_not"] = mustNot
	}
	return map[string]any{"bool": boolQ}
}

func knnClause(m mapping.Mapping, req request.Request, vector []float32) (map[string]any, error) {
	if !m.HasVector() {
		return nil, fmt.Errorf("index has no vector field")
	}
	if len(vector) != m.VectorDims() {
		return nil, fmt.Errorf("query vector has %d dims, mapping declares %d", len(vector), m.VectorDims())
	}

	numCandidates := req.K() * 10
	if numCandidates > maxNumCandidates {
		numCandidates = maxNumCandidates
	}

	knn := map[string]any{
		"field":          mapping.VectorField,
		"query_vector":   vector,
		"k":              req.K(),
		"num_candidates": numCandidates,
	}
	if !req.Filters().IsEmpty() {
		knn["filter"] = scoringQuery(m, "", req.Filters())
	}
	return knn, nil
}

// textMatch targets the declared text fields; without any it falls back to
// a multi_match over all fields.
func textMatch(m mapping.Mapping, query string) map[string]any {
	var textFields []string
	for _, f := range m.Fields() {
		if f.FieldType() == field.Text {
			textFields = append(textFields, f.Name())
		}
	}

	mm := map[string]any{"query": query}
	if len(textFields) > 0 {
		mm["fields"] = textFields
	}
	return map[string]any{"multi_match": mm}
}

func conditionClauses(m mapping.Mapping, conds []filter.Condition) []map[string]any {
	if len(conds) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(conds))
	for _, c := range conds {
		if c.IsRange() {
			out = append(out, map[string]any{
				"range": map[string]any{c.Field(): rangeBody(c.Range())},
			})
			continue
		}
		out = append(out, map[string]any{
			"term": map[string]any{termField(m, c.Field()): c.Term()},
		})
	}
	return out
}

func rangeBody(r *filter.Range) map[string]any {
	body := map[string]any{}
	if r.GT != nil {
		body["gt"] = *r.GT
	}
	if r.GTE != nil {
		body["gte"] = *r.GTE
	}
	if r.LT != nil {
		body["lt"] = *r.LT
	}
	if r.LTE != nil {
		body["lte"] = *r.LTE
	}
	return body
}

// termField routes exact matches on text fields to their keyword subfield.
func termField(m mapping.Mapping, name string) string {
	if f, ok := m.Field(name); ok && f.FieldType() == field.Text {
		return name + ".keyword"
	}
	return name
}

// sortClause routes sorts on text fields to their keyword subfield.
func sortClause(m mapping.Mapping, sorts []request.SortField) []map[string]any {
	out := make([]map[string]any, 0, len(sorts))
	for _, s := range sorts {
		order := "asc"
		if s.Desc {
			order = "desc"
		}
		out = append(out, map[string]any{
			termField(m, s.Field): map[string]any{"order": order},
		})
	}
	return out
}
