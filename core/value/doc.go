// Package value defines the neutral result type produced by the extraction
// engine: a small tagged union over null, bool, number, string, array and an
// insertion-ordered object.
//
// Values are built fresh for every extraction call and are owned by the
// caller. Conversion into host types (structs, maps) happens outside this
// package, see [github.com/leofalp/llmjson/core/parse].
package value
