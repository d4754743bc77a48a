// Package parse converts raw LLM text output into Go values.
//
// The main entry point is the generic [ParseStringAs] function, which handles
// both primitive types (string, bool, int, float) and complex types (structs,
// maps, slices) in a single, uniform API. For complex types it derives a
// schema from the target type and lets [extract] find the value in the
// surrounding prose, falling back to [repair] and to schema-envelope
// unwrapping before giving up.
//
// [ExtractAs] and [Decode] expose the individual steps.
package parse
