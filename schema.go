package esbind

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/esbind-io/esbind/internal/domain"
	"github.com/esbind-io/esbind/internal/domain/mapping"
	"github.com/esbind-io/esbind/internal/domain/mapping/field"
)

// Schema declaration happens through struct tags:
//
//	type Article struct {
//		ID     string    `esbind:"id"`
//		Title  string    `esbind:"title,text,content"`
//		Author string    `esbind:"author,keyword"`
//		Views  int64     `esbind:"views"`
//		Posted time.Time `esbind:"posted"`
//	}
//
// The first tag segment is the engine field name (defaults to the
// lower-cased Go field name). Remaining segments are either a mapping type
// (text, keyword, long, double, date, boolean, geo_point), "id" marking the
// document identifier, or "content" marking the field whose text is
// embedded for vector search. Untagged exported fields are mapped with an
// inferred type; `esbind:"-"` excludes a field.

const tagName = "esbind"

var (
	timeType  = reflect.TypeOf(time.Time{})
	pointType = reflect.TypeOf(Point{})
)

type schemaField struct {
	name      string
	fieldType field.Type
	goIndex   int
	content   bool
}

// schema is the parsed, validated binding between a Go struct type and an
// engine mapping.
type schema[T any] struct {
	idIndex int
	fields  []schemaField
	mapping mapping.Mapping
}

func parseSchema[T any](vectorDims int) (*schema[T], error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct, got %s: %w", t.Kind(), domain.ErrInvalidSchema)
	}

	s := &schema[T]{idIndex: -1}
	contentField := ""

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		tag := sf.Tag.Get(tagName)
		if tag == "-" {
			continue
		}

		name, opts := parseTag(tag)
		if name == "" {
			name = strings.ToLower(sf.Name)
		}

		if opts.id {
			if sf.Type.Kind() != reflect.String {
				return nil, fmt.Errorf("id field %s must be a string: %w", sf.Name, domain.ErrInvalidSchema)
			}
			if s.idIndex >= 0 {
				return nil, fmt.Errorf("duplicate id field %s: %w", sf.Name, domain.ErrInvalidSchema)
			}
			s.idIndex = i
			continue
		}

		ft := opts.fieldType
		if ft == "" {
			inferred, err := inferFieldType(sf.Type)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", sf.Name, err)
			}
			ft = inferred
		}

		if opts.content {
			if ft != field.Text {
				return nil, fmt.Errorf("content field %s must be text: %w", sf.Name, domain.ErrInvalidSchema)
			}
			if contentField != "" {
				return nil, fmt.Errorf("duplicate content field %s: %w", sf.Name, domain.ErrInvalidSchema)
			}
			contentField = name
		}

		s.fields = append(s.fields, schemaField{
			name:      name,
			fieldType: ft,
			goIndex:   i,
			content:   opts.content,
		})
	}

	if s.idIndex < 0 {
		return nil, fmt.Errorf("model %s has no id field: %w", t.Name(), domain.ErrInvalidSchema)
	}
	if len(s.fields) == 0 {
		return nil, fmt.Errorf("model %s has no mapped fields: %w", t.Name(), domain.ErrInvalidSchema)
	}

	fields := make([]field.Field, len(s.fields))
	for i, sf := range s.fields {
		f, err := field.New(sf.name, sf.fieldType)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", sf.name, err)
		}
		fields[i] = f
	}

	// Without configured vector dimensions the content marker only matters
	// for knn/hybrid search, which stays off; keyword search still works.
	if vectorDims <= 0 {
		contentField = ""
	}
	m, err := mapping.New(fields, contentField, vectorDims)
	if err != nil {
		return nil, fmt.Errorf("build mapping: %w", err)
	}
	s.mapping = m
	return s, nil
}

type tagOptions struct {
	id        bool
	content   bool
	fieldType field.Type
}

func parseTag(tag string) (string, tagOptions) {
	var opts tagOptions
	if tag == "" {
		return "", opts
	}

	parts := strings.Split(tag, ",")
	name := parts[0]

	for _, p := range parts[1:] {
		switch p {
		case "id":
			opts.id = true
		case "content":
			opts.content = true
		case "":
		default:
			opts.fieldType = field.Type(p)
		}
	}
	// A bare `esbind:"id"` marks the identifier without renaming it.
	if name == "id" && len(parts) == 1 {
		opts.id = true
		name = ""
	}
	return name, opts
}

func inferFieldType(t reflect.Type) (field.Type, error) {
	switch {
	case t == timeType:
		return field.Date, nil
	case t == pointType:
		return field.GeoPoint, nil
	}
	switch t.Kind() {
	case reflect.String:
		return field.Text, nil
	case reflect.Bool:
		return field.Boolean, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return field.Long, nil
	case reflect.Float32, reflect.Float64:
		return field.Double, nil
	default:
		return "", fmt.Errorf("cannot infer mapping type for %s: %w", t, domain.ErrInvalidSchema)
	}
}

// id reads the model's identifier field.
func (s *schema[T]) id(v *T) string {
	return reflect.ValueOf(v).Elem().Field(s.idIndex).String()
}

// setID writes the identifier back into the model.
func (s *schema[T]) setID(v *T, id string) {
	reflect.ValueOf(v).Elem().Field(s.idIndex).SetString(id)
}

// toSource converts a model into its engine source representation.
func (s *schema[T]) toSource(v *T) map[string]any {
	rv := reflect.ValueOf(v).Elem()
	src := make(map[string]any, len(s.fields))
	for _, sf := range s.fields {
		fv := rv.Field(sf.goIndex)
		switch {
		case fv.Type() == timeType:
			src[sf.name] = fv.Interface().(time.Time).UTC().Format(time.RFC3339Nano)
		case fv.Type() == pointType:
			p := fv.Interface().(Point)
			src[sf.name] = map[string]any{"lat": p.Lat, "lon": p.Lon}
		default:
			src[sf.name] = fv.Interface()
		}
	}
	return src
}

// fromSource hydrates a model from an engine source document.
func (s *schema[T]) fromSource(id string, src map[string]any) (T, error) {
	var v T
	rv := reflect.ValueOf(&v).Elem()

	rv.Field(s.idIndex).SetString(id)

	for _, sf := range s.fields {
		raw, ok := src[sf.name]
		if !ok || raw == nil {
			continue
		}
		if err := assign(rv.Field(sf.goIndex), raw); err != nil {
			return v, fmt.Errorf("field %s: %w", sf.name, err)
		}
	}
	return v, nil
}

// assign sets a struct field from a JSON-decoded source value, converting
// the handful of shapes the engine hands back (numbers always arrive as
// float64, dates as strings or epoch millis).
func assign(fv reflect.Value, raw any) error {
	if fv.Type() == timeType {
		return assignTime(fv, raw)
	}
	if fv.Type() == pointType {
		return assignPoint(fv, raw)
	}

	switch fv.Kind() {
	case reflect.String:
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", raw)
		}
		fv.SetString(s)
	case reflect.Bool:
		b, ok := raw.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", raw)
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f, ok := raw.(float64)
		if !ok {
			return fmt.Errorf("expected number, got %T", raw)
		}
		fv.SetInt(int64(f))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f, ok := raw.(float64)
		if !ok {
			return fmt.Errorf("expected number, got %T", raw)
		}
		fv.SetUint(uint64(f))
	case reflect.Float32, reflect.Float64:
		f, ok := raw.(float64)
		if !ok {
			return fmt.Errorf("expected number, got %T", raw)
		}
		fv.SetFloat(f)
	default:
		return fmt.Errorf("unsupported field kind %s", fv.Kind())
	}
	return nil
}

func assignTime(fv reflect.Value, raw any) error {
	switch val := raw.(type) {
	case string:
		t, err := time.Parse(time.RFC3339Nano, val)
		if err != nil {
			return fmt.Errorf("parse date: %w", err)
		}
		fv.Set(reflect.ValueOf(t))
	case float64:
		fv.Set(reflect.ValueOf(time.UnixMilli(int64(val)).UTC()))
	default:
		return fmt.Errorf("expected date string or epoch millis, got %T", raw)
	}
	return nil
}

func assignPoint(fv reflect.Value, raw any) error {
	m, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("expected geo_point object, got %T", raw)
	}
	lat, _ := m["lat"].(float64)
	lon, _ := m["lon"].(float64)
	fv.Set(reflect.ValueOf(Point{Lat: lat, Lon: lon}))
	return nil
}
