package parse

import (
	"reflect"
	"sync"

	"github.com/leofalp/llmjson/core/extract"
	"github.com/leofalp/llmjson/core/schema"
	"github.com/leofalp/llmjson/internal/jsonschema"
)

// typeEntry is the compiled extraction setup for one Go type.
type typeEntry struct {
	extractor *extract.Extractor
	// lossless is false when the schema has nodes extraction cannot fill
	// (interface fields, maps), so ParseStringAs skips that step.
	lossless bool
	err      error
}

var typeCache sync.Map // reflect.Type -> *typeEntry

func entryFor(t reflect.Type) *typeEntry {
	if e, ok := typeCache.Load(t); ok {
		return e.(*typeEntry)
	}
	e, _ := typeCache.LoadOrStore(t, newTypeEntry(t))
	return e.(*typeEntry)
}

func newTypeEntry(t reflect.Type) *typeEntry {
	desc, err := jsonschema.GenerateFor(t)
	if err != nil {
		return &typeEntry{err: err}
	}
	s, err := schema.Compile(desc)
	if err != nil {
		return &typeEntry{err: err}
	}
	ex, err := extract.New(s)
	if err != nil {
		return &typeEntry{err: err}
	}
	return &typeEntry{extractor: ex, lossless: lossless(s.Root())}
}

func lossless(n schema.Node) bool {
	switch n := n.(type) {
	case schema.AnyNode:
		return false
	case *schema.ArrayNode:
		return lossless(n.Items())
	case *schema.ObjectNode:
		if n.Fields().Len() == 0 {
			return false
		}
		ok := true
		n.Fields().Range(func(_ string, child schema.Node) {
			ok = ok && lossless(child)
		})
		return ok
	default:
		return true
	}
}
