package jsonschema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Schema is the schema description read by the compiler. It follows the JSON
// Schema vocabulary for the subset the extractor understands: type,
// properties, required and items, plus the composition keywords that tooling
// commonly emits ($ref, $defs, anyOf, oneOf). Description and Enum are carried
// for round-tripping and are ignored by the compiler.
type Schema struct {
	// Type is the node kind ("object", "array", "string", "integer", "number", "boolean").
	Type        TypeName `json:"type,omitempty" yaml:"type,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Required    []string `json:"required,omitempty" yaml:"required,omitempty"`
	// Properties of an object node, each with its own schema
	Properties map[string]*Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	// Items is the element schema of an array node
	Items                *Schema   `json:"items,omitempty" yaml:"items,omitempty"`
	AdditionalProperties any       `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
	Enum                 []any     `json:"enum,omitempty" yaml:"enum,omitempty"`
	AnyOf                []*Schema `json:"anyOf,omitempty" yaml:"anyOf,omitempty"`
	OneOf                []*Schema `json:"oneOf,omitempty" yaml:"oneOf,omitempty"`
	// Ref points at a definition of the root document, e.g. "#/$defs/item"
	Ref         string             `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Defs        map[string]*Schema `json:"$defs,omitempty" yaml:"$defs,omitempty"`
	Definitions map[string]*Schema `json:"definitions,omitempty" yaml:"definitions,omitempty"`
}

// TypeName is the "type" keyword. Documents may spell it as a string or as a
// list such as ["string", "null"]; a list collapses to its first non-null
// entry. Anything else decodes to the empty name, which compiles to an
// untyped node.
type TypeName string

// TypeNull is the JSON Schema null type name.
const TypeNull TypeName = "null"

// UnmarshalJSON accepts a string, a list of strings or any other JSON value.
func (t *TypeName) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = TypeName(single)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = pickType(list)
		return nil
	}
	*t = ""
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML documents.
func (t *TypeName) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*t = TypeName(node.Value)
	case yaml.SequenceNode:
		list := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind == yaml.ScalarNode {
				list = append(list, item.Value)
			}
		}
		*t = pickType(list)
	default:
		*t = ""
	}
	return nil
}

func pickType(list []string) TypeName {
	for _, name := range list {
		if TypeName(name) != TypeNull {
			return TypeName(name)
		}
	}
	if len(list) > 0 {
		return TypeNull
	}
	return ""
}

// JsonString converts the Schema to its JSON representation.
// indent: optional; when true the output is indented with two spaces.
func (s *Schema) JsonString(indent ...bool) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(indent) > 0 && indent[0] {
		data, err = json.MarshalIndent(s, "", "  ")
	} else {
		data, err = json.Marshal(s)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}
	return string(data), nil
}

// String returns the compact JSON form of the schema.
func (s *Schema) String() string {
	out, err := s.JsonString()
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return out
}
