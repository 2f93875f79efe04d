package esbind

import (
	"errors"
	"testing"
	"time"

	"github.com/esbind-io/esbind/internal/domain"
	"github.com/esbind-io/esbind/internal/domain/mapping/field"
)

func TestParseSchema_TagsAndInference(t *testing.T) {
	type model struct {
		ID       string    `esbind:"id"`
		Title    string    `esbind:"title,text,content"`
		Author   string    `esbind:"author,keyword"`
		Views    int64     `esbind:"views"`
		Rating   float64   `esbind:"rating"`
		Active   bool      `esbind:"active"`
		Posted   time.Time `esbind:"posted"`
		Location Point     `esbind:"location"`
	}

	s, err := parseSchema[model](4)
	if err != nil {
		t.Fatalf("parseSchema failed: %v", err)
	}

	want := map[string]field.Type{
		"title":    field.Text,
		"author":   field.Keyword,
		"views":    field.Long,
		"rating":   field.Double,
		"active":   field.Boolean,
		"posted":   field.Date,
		"location": field.GeoPoint,
	}
	for name, ft := range want {
		f, ok := s.mapping.Field(name)
		if !ok {
			t.Errorf("field %s not mapped", name)
			continue
		}
		if f.FieldType() != ft {
			t.Errorf("field %s: got %s, want %s", name, f.FieldType(), ft)
		}
	}

	if s.mapping.ContentField() != "title" {
		t.Errorf("content field: got %s, want title", s.mapping.ContentField())
	}
	if !s.mapping.HasVector() {
		t.Error("expected vector search enabled")
	}
	if s.mapping.VectorDims() != 4 {
		t.Errorf("vector dims: got %d, want 4", s.mapping.VectorDims())
	}
}

func TestParseSchema_DefaultNames(t *testing.T) {
	type model struct {
		ID    string `esbind:"id"`
		Title string
		Views int
	}

	s, err := parseSchema[model](0)
	if err != nil {
		t.Fatalf("parseSchema failed: %v", err)
	}
	if _, ok := s.mapping.Field("title"); !ok {
		t.Error("untagged field Title should map as title")
	}
	if f, ok := s.mapping.Field("views"); !ok || f.FieldType() != field.Long {
		t.Error("untagged int field Views should map as long")
	}
}

func TestParseSchema_MissingID(t *testing.T) {
	type model struct {
		Title string `esbind:"title,text"`
	}

	_, err := parseSchema[model](0)
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestParseSchema_DuplicateID(t *testing.T) {
	type model struct {
		A string `esbind:"id"`
		B string `esbind:",id"`
	}

	_, err := parseSchema[model](0)
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestParseSchema_NonStringID(t *testing.T) {
	type model struct {
		ID    int    `esbind:"id"`
		Title string `esbind:"title"`
	}

	_, err := parseSchema[model](0)
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestParseSchema_ContentMustBeText(t *testing.T) {
	type model struct {
		ID   string `esbind:"id"`
		Name string `esbind:"name,keyword,content"`
	}

	_, err := parseSchema[model](4)
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestParseSchema_ContentWithoutDims(t *testing.T) {
	type model struct {
		ID    string `esbind:"id"`
		Title string `esbind:"title,text,content"`
	}

	s, err := parseSchema[model](0)
	if err != nil {
		t.Fatalf("parseSchema failed: %v", err)
	}
	if s.mapping.HasVector() {
		t.Error("vector search must stay off without configured dimensions")
	}
}

func TestParseSchema_SkipsExcludedFields(t *testing.T) {
	type model struct {
		ID       string `esbind:"id"`
		Title    string `esbind:"title"`
		Internal string `esbind:"-"`
		hidden   string
	}
	_ = model{hidden: ""}

	s, err := parseSchema[model](0)
	if err != nil {
		t.Fatalf("parseSchema failed: %v", err)
	}
	if _, ok := s.mapping.Field("internal"); ok {
		t.Error("dash-tagged field must be excluded")
	}
	if _, ok := s.mapping.Field("hidden"); ok {
		t.Error("unexported field must be excluded")
	}
	if len(s.mapping.Fields()) != 1 {
		t.Errorf("mapped fields: got %d, want 1", len(s.mapping.Fields()))
	}
}

func TestSourceRoundTrip(t *testing.T) {
	posted := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	in := article{
		ID:     "a1",
		Title:  "go elasticsearch binding",
		Author: "sam",
		Views:  42,
		Posted: posted,
	}

	s, err := parseSchema[article](0)
	if err != nil {
		t.Fatalf("parseSchema failed: %v", err)
	}

	src := s.toSource(&in)
	if src["title"] != "go elasticsearch binding" {
		t.Errorf("title: got %v", src["title"])
	}
	if src["posted"] != "2026-03-01T12:30:00Z" {
		t.Errorf("posted: got %v", src["posted"])
	}

	// Numbers come back from JSON decoding as float64.
	src["views"] = float64(42)

	out, err := s.fromSource("a1", src)
	if err != nil {
		t.Fatalf("fromSource failed: %v", err)
	}
	if out.ID != "a1" || out.Title != in.Title || out.Author != "sam" || out.Views != 42 {
		t.Errorf("round trip mismatch: %+v", out)
	}
	if !out.Posted.Equal(posted) {
		t.Errorf("posted: got %v, want %v", out.Posted, posted)
	}
}

func TestFromSource_EpochMillisDate(t *testing.T) {
	s, err := parseSchema[article](0)
	if err != nil {
		t.Fatalf("parseSchema failed: %v", err)
	}

	src := map[string]any{
		"title":  "x",
		"posted": float64(1740000000000),
	}
	out, err := s.fromSource("a1", src)
	if err != nil {
		t.Fatalf("fromSource failed: %v", err)
	}
	if out.Posted.UnixMilli() != 1740000000000 {
		t.Errorf("posted: got %v", out.Posted)
	}
}

func TestFromSource_TypeMismatch(t *testing.T) {
	s, err := parseSchema[article](0)
	if err != nil {
		t.Fatalf("parseSchema failed: %v", err)
	}

	_, err = s.fromSource("a1", map[string]any{"views": "not-a-number"})
	if err == nil {
		t.Fatal("expected type mismatch error")
	}
}

func TestParseSchema_PointRoundTrip(t *testing.T) {
	type place struct {
		ID       string `esbind:"id"`
		Name     string `esbind:"name,keyword"`
		Location Point  `esbind:"location"`
	}

	s, err := parseSchema[place](0)
	if err != nil {
		t.Fatalf("parseSchema failed: %v", err)
	}

	in := place{ID: "p1", Name: "office", Location: Point{Lat: 52.52, Lon: 13.4}}
	src := s.toSource(&in)

	loc, ok := src["location"].(map[string]any)
	if !ok {
		t.Fatalf("location source: %T", src["location"])
	}
	if loc["lat"] != 52.52 || loc["lon"] != 13.4 {
		t.Errorf("location: %v", loc)
	}

	out, err := s.fromSource("p1", src)
	if err != nil {
		t.Fatalf("fromSource failed: %v", err)
	}
	if out.Location != in.Location {
		t.Errorf("location round trip: %+v", out.Location)
	}
}
