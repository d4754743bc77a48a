package jsonschema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// GenerateJSONSchema derives a schema description from the Go type T.
//
// Structs become objects keyed by their json tag names (fields tagged "-"
// and unexported fields are skipped). A field is required when it is neither
// a pointer nor tagged omitempty, or when its jsonschema tag says "required".
// Slices and arrays become arrays, maps become objects without properties.
// A struct that refers back to itself is cut at the point of recursion with
// an untyped schema, so the result is always a finite tree.
//
// Supported jsonschema tag items: "description=...", "enum=..." (repeatable)
// and "required".
func GenerateJSONSchema[T any]() (*Schema, error) {
	return GenerateFor(reflect.TypeFor[T]())
}

// GenerateFor is GenerateJSONSchema for a type known only at run time.
func GenerateFor(t reflect.Type) (*Schema, error) {
	g := &generator{visiting: make(map[reflect.Type]bool)}
	return g.generate(t)
}

type generator struct {
	// visiting holds the struct types on the current path
	visiting map[reflect.Type]bool
}

func (g *generator) generate(t reflect.Type) (*Schema, error) {
	switch t.Kind() {
	case reflect.Ptr:
		return g.generate(t.Elem())
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
		items, err := g.generate(t.Elem())
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "array", Items: items}, nil
	case reflect.Map:
		values, err := g.generate(t.Elem())
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "object", AdditionalProperties: values}, nil
	case reflect.Struct:
		return g.generateStruct(t)
	default:
		// interfaces, channels, funcs: nothing to describe
		return &Schema{}, nil
	}
}

func (g *generator) generateStruct(t reflect.Type) (*Schema, error) {
	if g.visiting[t] {
		return &Schema{}, nil
	}
	g.visiting[t] = true
	defer delete(g.visiting, t)

	schema := &Schema{Type: "object", Properties: map[string]*Schema{}}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, omitEmpty, skip := jsonFieldName(field)
		if skip {
			continue
		}

		fieldSchema, err := g.generate(field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		requiredByTag, err := parseJSONSchemaTag(field.Type, field.Tag, fieldSchema)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		schema.Properties[name] = fieldSchema

		if (field.Type.Kind() != reflect.Ptr && !omitEmpty) || requiredByTag {
			schema.Required = append(schema.Required, name)
		}
	}
	return schema, nil
}

// jsonFieldName returns the wire name of a struct field and its omitempty flag.
func jsonFieldName(field reflect.StructField) (name string, omitEmpty bool, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name = field.Name
	if tag == "" {
		return name, false, false
	}
	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		name = parts[0]
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" || opt == "omitzero" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

// parseJSONSchemaTag applies the jsonschema struct tag to schema and reports
// whether the tag marks the field as required. Enum values are converted to
// the field's kind.
func parseJSONSchemaTag(fieldType reflect.Type, tag reflect.StructTag, schema *Schema) (bool, error) {
	raw := tag.Get("jsonschema")
	if raw == "" {
		return false, nil
	}
	for fieldType.Kind() == reflect.Ptr {
		fieldType = fieldType.Elem()
	}

	required := false
	// TODO: descriptions cannot contain commas until the tag gets a quoting syntax.
	for _, item := range strings.Split(raw, ",") {
		key, val, hasValue := strings.Cut(item, "=")
		key = strings.TrimSpace(key)
		if !hasValue {
			if key == "required" {
				required = true
			}
			continue
		}
		switch key {
		case "description":
			schema.Description = val
		case "enum":
			enumVal, err := convertEnum(fieldType, val)
			if err != nil {
				return false, err
			}
			schema.Enum = append(schema.Enum, enumVal)
		}
	}
	return required, nil
}

func convertEnum(fieldType reflect.Type, val string) (any, error) {
	switch fieldType.Kind() {
	case reflect.String:
		return val, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse enum value %v to int64 failed: %w", val, err)
		}
		return v, nil
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("parse enum value %v to float64 failed: %w", val, err)
		}
		return v, nil
	case reflect.Bool:
		v, err := strconv.ParseBool(val)
		if err != nil {
			return nil, fmt.Errorf("parse enum value %v to bool failed: %w", val, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("enum tag unsupported for field type: %v", fieldType)
	}
}
