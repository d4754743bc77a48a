package schema

import (
	"sort"
	"strings"

	"github.com/leofalp/llmjson/internal/jsonschema"
)

// Compile turns a schema description into an immutable compiled schema.
//
// Recognised types are string, integer, number, boolean, array and object;
// anything else, including a missing type, compiles to the untyped wildcard.
// Arrays must declare items. Object properties are compiled in name order
// and every name is registered with the object's key matcher in both quote
// styles. Required names are kept as given and are checked at parse time
// whether or not a matching property exists.
//
// Local references ("#/$defs/x", "#/definitions/x") resolve against desc; a
// reference that leads back into itself compiles to the wildcard, so the
// compiled tree is always finite. anyOf/oneOf lists with exactly one
// non-null branch compile as that branch.
func Compile(desc *jsonschema.Schema) (*Schema, error) {
	c := &compiler{root: desc, resolving: make(map[string]bool)}
	root, err := c.compile(desc, "$")
	if err != nil {
		return nil, err
	}
	return &Schema{root: root}, nil
}

// MustCompile is like Compile but panics on error. Intended for package-level
// schema variables.
func MustCompile(desc *jsonschema.Schema) *Schema {
	s, err := Compile(desc)
	if err != nil {
		panic(err)
	}
	return s
}

type compiler struct {
	root *jsonschema.Schema
	// resolving holds the references currently being expanded
	resolving map[string]bool
}

func (c *compiler) compile(desc *jsonschema.Schema, path string) (Node, error) {
	if desc == nil {
		return AnyNode{}, nil
	}
	if desc.Ref != "" {
		return c.compileRef(desc.Ref, path)
	}
	if desc.Type == "" {
		if branch := singleBranch(desc.AnyOf); branch != nil {
			return c.compile(branch, path+".anyOf")
		}
		if branch := singleBranch(desc.OneOf); branch != nil {
			return c.compile(branch, path+".oneOf")
		}
	}

	switch desc.Type {
	case "string":
		return StringNode{}, nil
	case "integer", "number":
		return NumberNode{}, nil
	case "boolean":
		return BoolNode{}, nil
	case "array":
		if desc.Items == nil {
			return nil, &SchemaError{Path: path, Err: ErrMissingItems}
		}
		items, err := c.compile(desc.Items, path+".items")
		if err != nil {
			return nil, err
		}
		return &ArrayNode{items: items}, nil
	case "object":
		return c.compileObject(desc, path)
	default:
		return AnyNode{}, nil
	}
}

func (c *compiler) compileObject(desc *jsonschema.Schema, path string) (Node, error) {
	names := make([]string, 0, len(desc.Properties))
	for name := range desc.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]field, 0, len(names))
	for _, name := range names {
		child, err := c.compile(desc.Properties[name], path+".properties."+name)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field{name: name, child: child})
	}

	matcher, err := newKeyMatcher(names)
	if err != nil {
		return nil, &SchemaError{Path: path, Err: err}
	}

	return &ObjectNode{
		fields:   newFieldLookup(fields),
		required: dedupe(desc.Required),
		matcher:  matcher,
	}, nil
}

func (c *compiler) compileRef(ref, path string) (Node, error) {
	target := c.lookupRef(ref)
	if target == nil || c.resolving[ref] {
		return AnyNode{}, nil
	}
	c.resolving[ref] = true
	defer delete(c.resolving, ref)
	return c.compile(target, path+"->"+ref)
}

func (c *compiler) lookupRef(ref string) *jsonschema.Schema {
	if c.root == nil {
		return nil
	}
	if ref == "#" {
		return c.root
	}
	if name, ok := strings.CutPrefix(ref, "#/$defs/"); ok {
		return c.root.Defs[name]
	}
	if name, ok := strings.CutPrefix(ref, "#/definitions/"); ok {
		return c.root.Definitions[name]
	}
	return nil
}

// singleBranch returns the only non-null alternative, or nil.
func singleBranch(alternatives []*jsonschema.Schema) *jsonschema.Schema {
	var found *jsonschema.Schema
	for _, alt := range alternatives {
		if alt == nil || alt.Type == jsonschema.TypeNull {
			continue
		}
		if found != nil {
			return nil
		}
		found = alt
	}
	return found
}

func dedupe(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
