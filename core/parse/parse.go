package parse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/kaptinlin/jsonrepair"
	"github.com/tidwall/gjson"

	"github.com/leofalp/llmjson/core/repair"
	"github.com/leofalp/llmjson/core/value"
)

// ParseStringAs attempts to parse a string into the specified type T.
// For primitive types (string, bool, int, uint, float), it performs direct conversion.
// For complex types (structs, maps, slices) it tries, in order:
//
//  1. plain JSON unmarshaling;
//  2. schema-guided extraction with a schema derived from T, which finds the
//     value inside surrounding prose and tolerates broken delimiters;
//  3. [repair.Repair], followed by unwrapping of schema-style
//     {"type": ..., "value": ...} envelopes;
//  4. jsonrepair on its own, which also quotes bare keys.
//
// Example usage:
//
//	type Person struct {
//	    Name string `json:"name"`
//	    Age  int    `json:"age"`
//	}
//
//	person, err := ParseStringAs[Person](`Sure! {"name": 'John', "age": 30`)
//	num, err := ParseStringAs[int]("42")
func ParseStringAs[T any](content string) (T, error) {
	return ParseStringAsContext[T](context.Background(), content)
}

// ParseStringAsContext is ParseStringAs with a context; an observer stored in
// ctx sees the extraction and repair steps.
func ParseStringAsContext[T any](ctx context.Context, content string) (T, error) {
	var result T
	target := reflect.TypeFor[T]()

	if isPrimitive(target.Kind()) {
		err := parsePrimitive(content, reflect.ValueOf(&result).Elem())
		return result, err
	}

	err := json.Unmarshal([]byte(content), &result)
	if err == nil {
		return result, nil
	}
	errs := []error{fmt.Errorf("unmarshal: %w", err)}

	// Well-formed JSON of the wrong shape: envelopes, a lone object for a
	// slice, a one-element array for a struct.
	if gjson.Valid(content) {
		if result, err := decodeRepaired[T](ctx, content); err == nil {
			return result, nil
		}
	}

	if entry := entryFor(target); entry.err == nil && entry.lossless {
		v, err := entry.extractor.ExtractContext(ctx, []byte(content))
		if err == nil {
			if result, err = Decode[T](v); err == nil {
				return result, nil
			}
		}
		errs = append(errs, fmt.Errorf("extract: %w", err))
	}

	result, err = decodeRepaired[T](ctx, content)
	if err == nil {
		return result, nil
	}
	errs = append(errs, fmt.Errorf("repair: %w", err))

	repaired, err := jsonrepair.JSONRepair(content)
	if err == nil {
		if result, err = decodeRepaired[T](ctx, repaired); err == nil {
			return result, nil
		}
	}
	errs = append(errs, fmt.Errorf("jsonrepair: %w", err))

	var zero T
	return zero, fmt.Errorf("failed to parse content as %T: %w", zero, errors.Join(errs...))
}

// ExtractAs runs schema-guided extraction with a schema generated from T and
// decodes the result into T. The compiled schema is cached per type.
func ExtractAs[T any](ctx context.Context, content string) (T, error) {
	var zero T
	entry := entryFor(reflect.TypeFor[T]())
	if entry.err != nil {
		return zero, fmt.Errorf("no schema for %T: %w", zero, entry.err)
	}
	v, err := entry.extractor.ExtractContext(ctx, []byte(content))
	if err != nil {
		return zero, err
	}
	return Decode[T](v)
}

// Decode converts v into T through its JSON encoding.
func Decode[T any](v value.Value) (T, error) {
	var result T
	data, err := v.MarshalJSON()
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("failed to decode %s into %T: %w", v.Kind(), result, err)
	}
	return result, nil
}

func decodeRepaired[T any](ctx context.Context, content string) (T, error) {
	v, err := repair.RepairContext(ctx, content)
	if err != nil {
		var zero T
		return zero, err
	}
	v = coerce(unwrapSchemaValues(v), reflect.TypeFor[T]())
	return Decode[T](v)
}

// coerce bridges the two shape mistakes models make most: a single object
// where a list was asked for, and a list around the one object asked for.
func coerce(v value.Value, target reflect.Type) value.Value {
	for target.Kind() == reflect.Ptr {
		target = target.Elem()
	}
	switch {
	case target.Kind() == reflect.Slice && v.Kind() == value.KindObject:
		return value.Array(v)
	case target.Kind() == reflect.Struct && v.Kind() == value.KindArray && len(v.Items()) > 0:
		return v.Items()[0]
	}
	return v
}

func isPrimitive(kind reflect.Kind) bool {
	switch kind {
	case reflect.String, reflect.Bool,
		reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// parsePrimitive converts content into out. When the direct conversion fails
// the content is also tried as a {"type": ..., "value": ...} envelope.
func parsePrimitive(content string, out reflect.Value) error {
	if out.Kind() == reflect.String {
		if unwrapped, ok := unwrapPrimitive(content); ok {
			content = unwrapped
		}
		out.SetString(content)
		return nil
	}

	err := setPrimitive(content, out)
	if err == nil {
		return nil
	}
	if unwrapped, ok := unwrapPrimitive(content); ok {
		if setPrimitive(unwrapped, out) == nil {
			return nil
		}
	}
	return err
}

func setPrimitive(s string, out reflect.Value) error {
	switch out.Kind() {
	case reflect.Bool:
		val, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("failed to parse content as bool: %w", err)
		}
		out.SetBool(val)
	case reflect.Float32, reflect.Float64:
		val, err := strconv.ParseFloat(s, out.Type().Bits())
		if err != nil {
			return fmt.Errorf("failed to parse content as float: %w", err)
		}
		out.SetFloat(val)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		val, err := strconv.ParseInt(s, 10, out.Type().Bits())
		if err != nil {
			return fmt.Errorf("failed to parse content as int: %w", err)
		}
		out.SetInt(val)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		val, err := strconv.ParseUint(s, 10, out.Type().Bits())
		if err != nil {
			return fmt.Errorf("failed to parse content as uint: %w", err)
		}
		out.SetUint(val)
	}
	return nil
}

// unwrapPrimitive returns the text of v in {"type": ..., "value": v}.
func unwrapPrimitive(content string) (string, bool) {
	if !gjson.Valid(content) {
		return "", false
	}
	r := gjson.Parse(content)
	if !r.IsObject() || !r.Get("type").Exists() {
		return "", false
	}
	fields := 0
	r.ForEach(func(_, _ gjson.Result) bool {
		fields++
		return true
	})
	inner := r.Get("value")
	if fields != 2 || !inner.Exists() {
		return "", false
	}
	if inner.Type == gjson.String {
		return inner.Str, true
	}
	return inner.Raw, true
}

// unwrapSchemaValues replaces every {"type": ..., "value": v} envelope with v.
// Models produce these when they confuse the schema they were shown with the
// data they were asked for:
//
//	{"name": {"type": "string", "value": "John"}} -> {"name": "John"}
func unwrapSchemaValues(v value.Value) value.Value {
	switch v.Kind() {
	case value.KindObject:
		obj, _ := v.AsObject()
		if obj.Len() == 2 && obj.Has("type") {
			if inner, ok := obj.Get("value"); ok {
				return unwrapSchemaValues(inner)
			}
		}
		out := value.NewObject()
		obj.Range(func(key string, item value.Value) bool {
			out.Set(key, unwrapSchemaValues(item))
			return true
		})
		return value.ObjectValue(out)
	case value.KindArray:
		items := v.Items()
		out := make([]value.Value, len(items))
		for i, item := range items {
			out[i] = unwrapSchemaValues(item)
		}
		return value.Array(out...)
	default:
		return v
	}
}
