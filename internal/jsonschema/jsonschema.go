package jsonschema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Schema is the subset of JSON Schema needed to describe a document.
// Properties is keyed by JSON name; Items describes array elements and
// AdditionalProperties map values.
type Schema struct {
	Type                 string             `json:"type,omitempty"`
	Description          string             `json:"description,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	AdditionalProperties *Schema            `json:"additionalProperties,omitempty"`
	Enum                 []any              `json:"enum,omitempty"`
	Ref                  string             `json:"$ref,omitempty"`
	Defs                 map[string]*Schema `json:"$defs,omitempty"`
}

// Generate builds the schema of T. Struct fields are named by their json
// tag; a field is required unless it is a pointer or tagged omitempty, or
// when its jsonschema tag says "required". The jsonschema tag also accepts
// description=... and repeated enum=... entries.
func Generate[T any]() (*Schema, error) {
	g := &generator{
		names: make(map[reflect.Type]string),
		defs:  make(map[string]*Schema),
	}
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	var schema *Schema
	var err error
	if t.Kind() == reflect.Struct {
		schema, err = g.object(t)
	} else {
		schema, err = g.schema(t)
	}
	if err != nil {
		return nil, err
	}
	if len(g.defs) > 0 {
		schema.Defs = g.defs
	}
	return schema, nil
}

type generator struct {
	names map[reflect.Type]string // struct types already being described
	defs  map[string]*Schema
}

func (g *generator) schema(t reflect.Type) (*Schema, error) {
	switch t.Kind() {
	case reflect.Pointer:
		return g.schema(t.Elem())
	case reflect.String:
		return &Schema{Type: "string"}, nil
	case reflect.Bool:
		return &Schema{Type: "boolean"}, nil
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}, nil
	case reflect.Slice, reflect.Array:
		items, err := g.schema(t.Elem())
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "array", Items: items}, nil
	case reflect.Map:
		values, err := g.schema(t.Elem())
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "object", AdditionalProperties: values}, nil
	case reflect.Struct:
		if name, ok := g.names[t]; ok {
			return g.ref(name), nil
		}
		return g.object(t)
	default:
		// interfaces and anything else accept any value
		return &Schema{}, nil
	}
}

// ref marks the struct being described as self-referencing and points at
// its definition.
func (g *generator) ref(name string) *Schema {
	if _, ok := g.defs[name]; !ok {
		g.defs[name] = nil // filled in when object(t) returns
	}
	return &Schema{Ref: "#/$defs/" + name}
}

func (g *generator) object(t reflect.Type) (*Schema, error) {
	name := defName(t)
	g.names[t] = name
	defer delete(g.names, t)

	schema := &Schema{Type: "object", Properties: make(map[string]*Schema)}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		key, omitEmpty, skip := jsonName(field)
		if skip {
			continue
		}

		fieldSchema, err := g.schema(field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		requiredByTag := false
		if fieldSchema.Ref == "" {
			if requiredByTag, err = applyTag(field, fieldSchema); err != nil {
				return nil, fmt.Errorf("field %s: %w", field.Name, err)
			}
		}
		schema.Properties[key] = fieldSchema

		if requiredByTag || (field.Type.Kind() != reflect.Pointer && !omitEmpty) {
			schema.Required = append(schema.Required, key)
		}
	}

	if def, ok := g.defs[name]; ok && def == nil {
		// A copy, so the root's own $defs never contains the root.
		cp := *schema
		g.defs[name] = &cp
	}
	return schema, nil
}

func defName(t reflect.Type) string {
	if t.Name() != "" {
		return strings.ToLower(t.Name())
	}
	return "anonymousStruct"
}

// jsonName returns the key encoding/json would use for field.
func jsonName(field reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	for _, opt := range strings.Split(opts, ",") {
		if opt == "omitempty" || opt == "omitzero" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

// applyTag applies the jsonschema struct tag to schema and reports whether
// it marks the field required.
func applyTag(field reflect.StructField, schema *Schema) (bool, error) {
	tag := field.Tag.Get("jsonschema")
	if tag == "" {
		return false, nil
	}

	required := false
	for _, item := range strings.Split(tag, ",") {
		key, value, hasValue := strings.Cut(item, "=")
		switch {
		case !hasValue && key == "required":
			required = true
		case key == "description":
			schema.Description = value
		case key == "enum":
			v, err := enumValue(field.Type, value)
			if err != nil {
				return false, err
			}
			schema.Enum = append(schema.Enum, v)
		}
	}
	return required, nil
}

// enumValue converts a tag literal to the field's JSON type.
func enumValue(t reflect.Type, value string) (any, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return value, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("enum value %q is not an integer: %w", value, err)
		}
		return v, nil
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("enum value %q is not a number: %w", value, err)
		}
		return v, nil
	case reflect.Bool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("enum value %q is not a boolean: %w", value, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("enum tag unsupported for %v", t)
	}
}

// String returns the compact JSON form of s.
func (s *Schema) String() string {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}
