package field

import (
	"fmt"
	"strings"
)

// Type is the engine mapping type of a field.
type Type string

// Field type constants, matching engine mapping types.
const (
	Text        Type = "text"
	Keyword     Type = "keyword"
	Long        Type = "long"
	Double      Type = "double"
	Date        Type = "date"
	Boolean     Type = "boolean"
	GeoPoint    Type = "geo_point"
	DenseVector Type = "dense_vector"
)

// IsValid checks whether the field type is supported.
func (t Type) IsValid() bool {
	switch t {
	case Text, Keyword, Long, Double, Date, Boolean, GeoPoint, DenseVector:
		return true
	}
	return false
}

// Field is an immutable value object describing one mapped field.
type Field struct {
	name      string
	fieldType Type
}

// New validates and creates a Field.
// Name must be non-empty, max 255 chars, and must not use the engine's
// metadata namespace (leading underscore).
func New(name string, ft Type) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("field name is required")
	}
	if len(name) > 255 {
		return Field{}, fmt.Errorf("field name %q too long (max 255)", name)
	}
	if strings.HasPrefix(name, "_") {
		return Field{}, fmt.Errorf("field name %q is reserved (metadata namespace)", name)
	}
	if !ft.IsValid() {
		return Field{}, fmt.Errorf("invalid field type %q for %q", ft, name)
	}
	return Field{name: name, fieldType: ft}, nil
}

// Reconstruct creates a Field without validation (registry hydration).
func Reconstruct(name string, ft Type) Field {
	return Field{name: name, fieldType: ft}
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// FieldType returns the field's engine mapping type.
func (f Field) FieldType() Type { return f.fieldType }
