package schema

// SmallFieldThreshold is the property count from which an object switches
// from linear field lookup to a hash map.
const SmallFieldThreshold = 16

// FieldLookup maps an exact field name to its child schema. The two
// implementations behave identically; which one an object gets depends only
// on its property count.
type FieldLookup interface {
	// Get looks up name byte for byte.
	Get(name []byte) (Node, bool)
	// Len returns the number of fields.
	Len() int
	// Range visits the fields in name order.
	Range(fn func(name string, child Node))
	// Representation names the storage in use ("small" or "large").
	Representation() string
}

type field struct {
	name  string
	child Node
}

type smallFields []field

func (f smallFields) Get(name []byte) (Node, bool) {
	for i := range f {
		if f[i].name == string(name) {
			return f[i].child, true
		}
	}
	return nil, false
}

func (f smallFields) Len() int { return len(f) }

func (f smallFields) Range(fn func(string, Node)) {
	for _, fd := range f {
		fn(fd.name, fd.child)
	}
}

func (smallFields) Representation() string { return "small" }

type largeFields struct {
	byName map[string]Node
	// order keeps Range deterministic
	order []string
}

func (f largeFields) Get(name []byte) (Node, bool) {
	child, ok := f.byName[string(name)]
	return child, ok
}

func (f largeFields) Len() int { return len(f.order) }

func (f largeFields) Range(fn func(string, Node)) {
	for _, name := range f.order {
		fn(name, f.byName[name])
	}
}

func (largeFields) Representation() string { return "large" }

// newFieldLookup picks the storage for the given sorted fields.
func newFieldLookup(fields []field) FieldLookup {
	if len(fields) < SmallFieldThreshold {
		return smallFields(fields)
	}
	large := largeFields{
		byName: make(map[string]Node, len(fields)),
		order:  make([]string, 0, len(fields)),
	}
	for _, fd := range fields {
		large.byName[fd.name] = fd.child
		large.order = append(large.order, fd.name)
	}
	return large
}
