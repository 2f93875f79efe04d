package mapping

import (
	"fmt"

	"github.com/esbind-io/esbind/internal/domain/mapping/field"
)

// VectorField is the framework-managed dense_vector field holding the
// embedding of the content field. It lives outside the user field namespace.
const VectorField = "__vector"

// MaxFields caps the number of explicitly mapped fields per index.
const MaxFields = 256

// Mapping is the statically declared schema of one index: the explicit
// schema-description structure replacing annotation/reflection-driven
// field mapping. Immutable value object.
type Mapping struct {
	fields       []field.Field
	contentField string // text field feeding the embedder, "" if none
	vectorDims   int    // dense_vector dims, 0 disables vector search
}

// New validates and creates a Mapping. Field names must be unique.
// contentField, when set, must refer to a text field; vectorDims must be
// positive when contentField is set.
func New(fields []field.Field, contentField string, vectorDims int) (Mapping, error) {
	if len(fields) > MaxFields {
		return Mapping{}, fmt.Errorf("too many fields (max %d)", MaxFields)
	}
	seen := make(map[string]field.Type, len(fields))
	for _, f := range fields {
		if _, ok := seen[f.Name()]; ok {
			return Mapping{}, fmt.Errorf("duplicate field name: %s", f.Name())
		}
		seen[f.Name()] = f.FieldType()
	}
	if contentField != "" {
		ft, ok := seen[contentField]
		if !ok {
			return Mapping{}, fmt.Errorf("content field %q is not mapped", contentField)
		}
		if ft != field.Text {
			return Mapping{}, fmt.Errorf("content field %q must be of type text, got %q", contentField, ft)
		}
		if vectorDims <= 0 {
			return Mapping{}, fmt.Errorf("vector dimensions must be positive for content field %q", contentField)
		}
	}

	m := Mapping{
		fields:       make([]field.Field, len(fields)),
		contentField: contentField,
		vectorDims:   vectorDims,
	}
	copy(m.fields, fields)
	return m, nil
}

// Fields returns a copy of the mapped fields.
func (m Mapping) Fields() []field.Field {
	out := make([]field.Field, len(m.fields))
	copy(out, m.fields)
	return out
}

// Field returns the mapped field with the given name.
func (m Mapping) Field(name string) (field.Field, bool) {
	for _, f := range m.fields {
		if f.Name() == name {
			return f, true
		}
	}
	return field.Field{}, false
}

// ContentField returns the name of the text field feeding the embedder,
// or "" when the index has no vector field.
func (m Mapping) ContentField() string { return m.contentField }

// HasVector reports whether the mapping declares a dense_vector field.
func (m Mapping) HasVector() bool { return m.contentField != "" && m.vectorDims > 0 }

// VectorDims returns the dense_vector dimensionality.
func (m Mapping) VectorDims() int { return m.vectorDims }

// Document builds the engine index-creation body: settings plus the
// mappings.properties object for every declared field.
// shards <= 0 and replicas < 0 leave the engine defaults in place.
func (m Mapping) Document(shards, replicas int) map[string]any {
	props := make(map[string]any, len(m.fields)+1)
	for _, f := range m.fields {
		props[f.Name()] = propertyFor(f.FieldType())
	}
	if m.HasVector() {
		props[VectorField] = map[string]any{
			"type":       "dense_vector",
			"dims":       m.vectorDims,
			"index":      true,
			"similarity": "cosine",
		}
	}

	body := map[string]any{
		"mappings": map[string]any{
			"properties": props,
		},
	}

	settings := map[string]any{}
	if shards > 0 {
		settings["number_of_shards"] = shards
	}
	if replicas >= 0 {
		settings["number_of_replicas"] = replicas
	}
	if len(settings) > 0 {
		body["settings"] = settings
	}
	return body
}

// Properties builds only the mappings.properties object (put-mapping body).
func (m Mapping) Properties() map[string]any {
	doc := m.Document(0, -1)
	return doc["mappings"].(map[string]any)
}

func propertyFor(t field.Type) map[string]any {
	if t == field.Text {
		// text fields get a keyword subfield for exact matching and sorting
		return map[string]any{
			"type": "text",
			"fields": map[string]any{
				"keyword": map[string]any{"type": "keyword", "ignore_above": 512},
			},
		}
	}
	return map[string]any{"type": string(t)}
}
