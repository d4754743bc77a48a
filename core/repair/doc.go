// Package repair is the schema-less sibling of package extract: it turns a
// single, almost-JSON value into a [value.Value] without knowing its shape.
//
// Leading prose is skipped up to the first '{' or '['. NaN, the infinities
// and the Python literals True, False and None are rewritten, then the text
// is handed to jsonrepair, which deals with comments, trailing commas,
// single quotes and missing brackets. Keys are never guessed: an unquoted
// key is a [*ParseError] wrapping [ErrUnquotedKey].
package repair
