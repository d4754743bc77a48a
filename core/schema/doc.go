// Package schema compiles schema descriptions into the immutable tree that
// drives speculative parsing.
//
// A compiled [Schema] is built once, typically at startup, and shared by any
// number of concurrent extractions. Object nodes carry a [FieldLookup]
// (linear below [SmallFieldThreshold] properties, hashed from there on) and a
// [KeyMatcher], an Aho-Corasick automaton over every property name in both
// double- and single-quoted spelling.
package schema
