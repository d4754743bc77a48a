package jsonschema

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDocument is returned when a schema description cannot be decoded.
var ErrInvalidDocument = errors.New("invalid schema document")

// Parse decodes a JSON schema description.
func Parse(data []byte) (*Schema, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidDocument)
	}
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return &s, nil
}

// ParsePath decodes the schema found at a gjson path inside a larger JSON
// document, for example "function.parameters" in a tool definition or
// "json_schema.schema" in a response_format block. An empty path is Parse.
func ParsePath(data []byte, path string) (*Schema, error) {
	if path == "" {
		return Parse(data)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidDocument)
	}
	found := gjson.GetBytes(data, path)
	if !found.Exists() {
		return nil, fmt.Errorf("%w: nothing at path %q", ErrInvalidDocument, path)
	}
	if !found.IsObject() {
		return nil, fmt.Errorf("%w: value at path %q is %s, not an object", ErrInvalidDocument, path, found.Type)
	}
	return Parse([]byte(found.Raw))
}

// ParseYAML decodes a YAML schema description.
func ParseYAML(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return &s, nil
}

// Load reads a schema description from disk. Files ending in .yaml or .yml
// are decoded as YAML, everything else as JSON. path selects a sub-document
// of a JSON file, see [ParsePath].
func Load(file, path string) (*Schema, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		if path != "" {
			return nil, fmt.Errorf("%w: path selection is only supported for JSON files", ErrInvalidDocument)
		}
		return ParseYAML(data)
	default:
		return ParsePath(data, path)
	}
}
