package schema

import (
	"fmt"
	"strings"
)

// Kind identifies a compiled node variant.
type Kind uint8

const (
	KindAny Kind = iota
	KindString
	KindNumber
	KindBool
	KindArray
	KindObject
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "any"
	}
}

// Node is one element of a compiled schema tree. The set of implementations
// is closed: StringNode, NumberNode, BoolNode, AnyNode, *ArrayNode and
// *ObjectNode. Nodes never change after compilation.
type Node interface {
	Kind() Kind
	node()
}

// StringNode expects a quoted or bare string.
type StringNode struct{}

// NumberNode expects a number; "integer" and "number" both compile to it.
type NumberNode struct{}

// BoolNode expects a boolean literal.
type BoolNode struct{}

// AnyNode is the untyped wildcard.
type AnyNode struct{}

func (StringNode) Kind() Kind { return KindString }
func (NumberNode) Kind() Kind { return KindNumber }
func (BoolNode) Kind() Kind   { return KindBool }
func (AnyNode) Kind() Kind    { return KindAny }

func (StringNode) node() {}
func (NumberNode) node() {}
func (BoolNode) node()   {}
func (AnyNode) node()    {}

// ArrayNode expects a sequence of elements matching Items.
type ArrayNode struct {
	items Node
}

// Kind returns KindArray.
func (*ArrayNode) Kind() Kind { return KindArray }
func (*ArrayNode) node()      {}

// Items returns the element schema.
func (n *ArrayNode) Items() Node { return n.items }

// ObjectNode expects a set of named fields.
type ObjectNode struct {
	fields   FieldLookup
	required []string
	matcher  *KeyMatcher
}

// Kind returns KindObject.
func (*ObjectNode) Kind() Kind { return KindObject }
func (*ObjectNode) node()      {}

// Fields returns the property lookup.
func (n *ObjectNode) Fields() FieldLookup { return n.fields }

// Matcher returns the key matcher built from the property names.
func (n *ObjectNode) Matcher() *KeyMatcher { return n.matcher }

// Required returns the required names in declaration order. The names do not
// have to be declared properties. The returned slice must not be modified.
func (n *ObjectNode) Required() []string { return n.required }

// Schema is a compiled schema handle. It is immutable and safe to share
// between goroutines; compile once and reuse it for every extraction.
type Schema struct {
	root Node
}

// Root returns the top node of the compiled tree.
func (s *Schema) Root() Node { return s.root }

// String renders the compiled tree, one node per line.
func (s *Schema) String() string {
	var b strings.Builder
	describe(&b, s.root, "", 0)
	return b.String()
}

func describe(b *strings.Builder, n Node, label string, indent int) {
	b.WriteString(strings.Repeat("  ", indent))
	if label != "" {
		b.WriteString(label)
		b.WriteString(": ")
	}
	switch node := n.(type) {
	case *ArrayNode:
		b.WriteString("array\n")
		describe(b, node.items, "items", indent+1)
	case *ObjectNode:
		fmt.Fprintf(b, "object (%d fields, %s lookup", node.fields.Len(), node.fields.Representation())
		if len(node.required) > 0 {
			fmt.Fprintf(b, ", required: %s", strings.Join(node.required, ", "))
		}
		b.WriteString(")\n")
		node.fields.Range(func(name string, child Node) {
			describe(b, child, name, indent+1)
		})
	default:
		b.WriteString(n.Kind().String())
		b.WriteString("\n")
	}
}
