package registry

import (
	"testing"

	"github.com/esbind-io/esbind/internal/domain/mapping"
	"github.com/esbind-io/esbind/internal/domain/mapping/field"
)

func mustMapping(t *testing.T, names ...string) mapping.Mapping {
	t.Helper()
	fields := make([]field.Field, 0, len(names))
	for _, name := range names {
		f, err := field.New(name, field.Keyword)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		fields = append(fields, f)
	}
	m, err := mapping.New(fields, "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m
}

func TestRegister_GetRoundTrip(t *testing.T) {
	r := New()
	r.Register("articles", mustMapping(t, "title"))

	m, ok := r.Get("articles")
	if !ok {
		t.Fatal("expected mapping")
	}
	if _, ok := m.Field("title"); !ok {
		t.Fatal("expected title field")
	}
}

func TestGet_Unregistered(t *testing.T) {
	r := New()
	if _, ok := r.Get("missing"); ok {
		t.Fatal("expected no mapping")
	}
}

func TestRegister_Replaces(t *testing.T) {
	r := New()
	r.Register("articles", mustMapping(t, "title"))
	r.Register("articles", mustMapping(t, "body"))

	m, _ := r.Get("articles")
	if _, ok := m.Field("title"); ok {
		t.Fatal("expected old mapping replaced")
	}
	if _, ok := m.Field("body"); !ok {
		t.Fatal("expected new mapping")
	}
}

func TestNames_Sorted(t *testing.T) {
	r := New()
	r.Register("b", mustMapping(t, "f"))
	r.Register("a", mustMapping(t, "f"))

	names := r.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("unexpected names: %v", names)
	}
}
