package extract

import (
	"bytes"
	"errors"
	"strconv"
	"strings"

	"github.com/leofalp/llmjson/core/schema"
	"github.com/leofalp/llmjson/core/value"
	"github.com/leofalp/llmjson/internal/cursor"
	"github.com/leofalp/llmjson/internal/utils"
)

const (
	// MaxDepth bounds nesting; a node at a deeper level fails with
	// ErrRecursionLimit.
	MaxDepth = 128
	// MaxStringLen caps string values; longer content is truncated.
	MaxStringLen = 1 << 20
)

// parser turns cursor input into values guided by compiled schema nodes.
// It holds no per-call state and is shared by all calls of an Extractor.
type parser struct {
	strictUTF8 bool
}

func (p *parser) parse(c *cursor.Cursor, node schema.Node, depth int) (value.Value, error) {
	if depth > MaxDepth {
		return value.Value{}, ErrRecursionLimit
	}
	c.SkipWhitespace()

	switch n := node.(type) {
	case schema.StringNode:
		return p.parseString(c)
	case schema.NumberNode:
		return parseNumber(c), nil
	case schema.BoolNode:
		return parseBool(c), nil
	case *schema.ArrayNode:
		return p.parseArray(c, n, depth)
	case *schema.ObjectNode:
		return p.parseObject(c, n, depth)
	default:
		// untyped nodes are not parsed
		return value.Null(), nil
	}
}

func (p *parser) parseObject(c *cursor.Cursor, n *schema.ObjectNode, depth int) (value.Value, error) {
	obj := value.NewObject()
	if c.MatchesByte('{') {
		c.Advance(1)
	}

	for {
		c.SkipWhitespace()
		if c.Exhausted() {
			break
		}
		if c.MatchesByte('}') {
			c.Advance(1)
			break
		}

		rest := c.Remaining()
		match, ok := n.Matcher().Locate(rest)
		if !ok {
			break
		}
		// everything between here and the key is dropped
		child, _ := n.Fields().Get(rest[match.Start+1 : match.End-1])
		c.Advance(match.ValueStart)

		v, err := p.parse(c, child, depth+1)
		if err != nil {
			return value.Value{}, err
		}
		obj.Set(match.Name, v)

		c.SkipWhitespace()
		if c.MatchesByte(',') {
			c.Advance(1)
		}
	}

	for _, name := range n.Required() {
		if !obj.Has(name) {
			return value.Value{}, &MissingFieldError{Name: name}
		}
	}
	return value.ObjectValue(obj), nil
}

func (p *parser) parseArray(c *cursor.Cursor, n *schema.ArrayNode, depth int) (value.Value, error) {
	items := []value.Value{}
	if c.MatchesByte('[') {
		c.Advance(1)
	}

	for {
		c.SkipWhitespace()
		if c.Exhausted() {
			break
		}
		if c.MatchesByte(']') {
			c.Advance(1)
			break
		}

		start := c.Pos()
		v, err := p.parse(c, n.Items(), depth+1)
		if err != nil {
			return value.Value{}, err
		}
		items = append(items, v)
		if c.Pos() == start {
			c.Advance(1)
		}

		c.SkipWhitespace()
		if c.MatchesByte(',') {
			c.Advance(1)
		}
	}
	return value.Array(items...), nil
}

func isNumberByte(b byte) bool {
	switch b {
	case '.', '+', '-', 'e', 'E', ',':
		return true
	}
	return b >= '0' && b <= '9'
}

// parseNumber never fails: text that is not a number yields 0 and an
// out-of-range literal keeps the infinity ParseFloat reports.
func parseNumber(c *cursor.Cursor) value.Value {
	rest := c.Remaining()
	end := 0
	for end < len(rest) && isNumberByte(rest[end]) {
		end++
	}
	c.Advance(end)

	raw := rest[:end]
	var text string
	if bytes.IndexByte(raw, ',') >= 0 {
		text = strings.ReplaceAll(string(raw), ",", "")
	} else {
		text = utils.BytesToString(raw)
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return value.Number(f)
		}
		return value.Number(0)
	}
	return value.Number(f)
}

var boolLiterals = []struct {
	text []byte
	val  bool
}{
	{[]byte("true"), true},
	{[]byte("false"), false},
	{[]byte("True"), true},
	{[]byte("False"), false},
}

// parseBool yields Null without consuming anything when no literal matches.
func parseBool(c *cursor.Cursor) value.Value {
	for _, lit := range boolLiterals {
		if c.Matches(lit.text) {
			c.Advance(len(lit.text))
			return value.Bool(lit.val)
		}
	}
	return value.Null()
}
