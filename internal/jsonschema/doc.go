// Package jsonschema holds the schema description consumed by the schema
// compiler, together with ways to obtain one: decoding JSON or YAML
// documents ([Parse], [ParsePath], [ParseYAML], [Load]) and deriving one
// from a Go type by reflection ([GenerateJSONSchema]).
//
// Only the structural keywords matter to the compiler; everything else is
// carried along so that descriptions round-trip unchanged.
package jsonschema
