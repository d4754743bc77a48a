// Package extract implements schema-guided speculative parsing of
// LLM-generated text.
//
// An [Extractor] is built once from a compiled schema and scans its input for
// the first '{' (or '[' for array schemas) at which a tolerant recursive
// parse succeeds. The parser locates object keys with the schema's key
// matcher instead of following the grammar, so junk between fields, single
// quotes, missing commas, unescaped quotes inside strings and fullwidth
// punctuation are all accepted. Primitive values never fail to parse: bad
// numbers become 0 and bad booleans become null.
//
// Structural failures (a missing required field, an unterminated string,
// nesting beyond [MaxDepth]) only reject the current start offset. The
// caller sees a [*NotFoundError] once every candidate has been tried.
//
//	s, err := schema.Compile(desc)
//	if err != nil {
//		return err
//	}
//	ex, err := extract.New(s)
//	if err != nil {
//		return err
//	}
//	v, err := ex.ExtractString(llmOutput)
package extract
