package request

import (
	"strings"
	"testing"

	"github.com/esbind-io/esbind/internal/domain/search/filter"
	"github.com/esbind-io/esbind/internal/domain/search/mode"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New("hello", "", filter.Expression{}, 0, 0, 0, 0, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Mode() != mode.Keyword {
		t.Errorf("mode = %q, want keyword", r.Mode())
	}
	if r.Size() != DefaultSize {
		t.Errorf("size = %d, want %d", r.Size(), DefaultSize)
	}
	if r.K() != DefaultK {
		t.Errorf("k = %d, want %d", r.K(), DefaultK)
	}
}

func TestNew_EmptyQueryMatchesAll(t *testing.T) {
	if _, err := New("", mode.Keyword, filter.Expression{}, 0, 0, 0, 0, nil, nil); err != nil {
		t.Fatalf("empty keyword query should be valid (match_all): %v", err)
	}
}

func TestNew_KnnRequiresQuery(t *testing.T) {
	if _, err := New("", mode.Knn, filter.Expression{}, 0, 0, 0, 0, nil, nil); err == nil {
		t.Fatal("expected error for empty knn query")
	}
}

func TestNew_QueryTooLong(t *testing.T) {
	q := strings.Repeat("a", MaxQueryLength+1)
	if _, err := New(q, mode.Keyword, filter.Expression{}, 0, 0, 0, 0, nil, nil); err == nil {
		t.Fatal("expected error for oversized query")
	}
}

func TestNew_InvalidMode(t *testing.T) {
	if _, err := New("x", mode.Mode("fuzzy"), filter.Expression{}, 0, 0, 0, 0, nil, nil); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestNew_Clamping(t *testing.T) {
	r, err := New("x", mode.Keyword, filter.Expression{}, 0, MaxSize+50, MaxK+50, 0, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Size() != MaxSize {
		t.Errorf("size = %d, want clamped to %d", r.Size(), MaxSize)
	}
	if r.K() != MaxK {
		t.Errorf("k = %d, want clamped to %d", r.K(), MaxK)
	}
}

func TestNew_FromBounds(t *testing.T) {
	if _, err := New("x", mode.Keyword, filter.Expression{}, -1, 0, 0, 0, nil, nil); err == nil {
		t.Fatal("expected error for negative from")
	}
	if _, err := New("x", mode.Keyword, filter.Expression{}, MaxFrom+1, 0, 0, 0, nil, nil); err == nil {
		t.Fatal("expected error for from beyond window")
	}
}

func TestNew_SearchAfterRules(t *testing.T) {
	sort := []SortField{{Field: "views", Desc: true}}
	if _, err := New("x", mode.Keyword, filter.Expression{}, 0, 0, 0, 0, sort, []any{42}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := New("x", mode.Keyword, filter.Expression{}, 10, 0, 0, 0, sort, []any{42}); err == nil {
		t.Fatal("expected error for search_after combined with from")
	}
	if _, err := New("x", mode.Keyword, filter.Expression{}, 0, 0, 0, 0, nil, []any{42}); err == nil {
		t.Fatal("expected error for search_after without sort")
	}
}

func TestNew_EmptySortField(t *testing.T) {
	if _, err := New("x", mode.Keyword, filter.Expression{}, 0, 0, 0, 0, []SortField{{}}, nil); err == nil {
		t.Fatal("expected error for empty sort field")
	}
}
