// Package search executes queries through the engine and maps raw hits
// into the domain hit model.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/esbind-io/esbind/internal/domain"
	"github.com/esbind-io/esbind/internal/domain/mapping"
	"github.com/esbind-io/esbind/internal/domain/search/filter"
	"github.com/esbind-io/esbind/internal/domain/search/hit"
	"github.com/esbind-io/esbind/internal/domain/search/request"
	"github.com/esbind-io/esbind/internal/es"
	"github.com/esbind-io/esbind/internal/repository/esquery"
)

// store is the consumer interface for query execution (ISP).
type store interface {
	Search(ctx context.Context, indices []string, body []byte) (*es.SearchResponse, error)
	Count(ctx context.Context, indices []string, body []byte) (int64, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Search runs the request against the given indices. vector carries the
// query embedding for knn/hybrid modes.
func (r *Repo) Search(ctx context.Context, indices []string, m mapping.Mapping, req request.Request, vector []float32) (hit.Hits, error) {
	body, err := esquery.Build(m, req, vector)
	if err != nil {
		return hit.Hits{}, fmt.Errorf("build query: %w", err)
	}

	res, err := r.store.Search(ctx, indices, body)
	if err != nil {
		return hit.Hits{}, translate(err)
	}

	return hitsFromResponse(res)
}

// Count returns the number of documents matching the filter expression.
func (r *Repo) Count(ctx context.Context, indices []string, m mapping.Mapping, filters filter.Expression) (int64, error) {
	body, err := esquery.BuildCount(m, filters)
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	n, err := r.store.Count(ctx, indices, body)
	if err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, es.ErrIndexNotFound):
		return domain.ErrIndexNotFound
	case errors.Is(err, es.ErrBadRequest):
		return fmt.Errorf("%w: %v", domain.ErrInvalidQuery, err)
	}
	return fmt.Errorf("search: %w", err)
}

// hitsFromResponse maps the raw envelope into the domain hit model.
func hitsFromResponse(res *es.SearchResponse) (hit.Hits, error) {
	hits := make([]hit.Hit, 0, len(res.Hits.Hits))
	for _, h := range res.Hits.Hits {
		var source map[string]any
		if len(h.Source) > 0 {
			if err := json.Unmarshal(h.Source, &source); err != nil {
				return hit.Hits{}, fmt.Errorf("unmarshal hit %s: %w", h.ID, err)
			}
		}

		score := 0.0
		if h.Score != nil {
			score = *h.Score
		}
		seqNo, primaryTerm := int64(-1), int64(-1)
		if h.SeqNo != nil {
			seqNo = *h.SeqNo
		}
		if h.PrimaryTerm != nil {
			primaryTerm = *h.PrimaryTerm
		}

		hits = append(hits, hit.New(h.Index, h.ID, score, seqNo, primaryTerm, source, h.Sort))
	}

	maxScore := 0.0
	if res.Hits.MaxScore != nil {
		maxScore = *res.Hits.MaxScore
	}

	return hit.NewHits(hits, res.Hits.Total.Value, hit.Relation(res.Hits.Total.Relation), maxScore), nil
}
