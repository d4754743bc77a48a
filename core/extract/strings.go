package extract

import (
	"bytes"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/leofalp/llmjson/core/value"
	"github.com/leofalp/llmjson/internal/cursor"
	"github.com/leofalp/llmjson/internal/utils"
)

// Fullwidth punctuation emitted by models writing in CJK contexts.
var (
	fullwidthQuote  = []byte("＂") // EF BC 82
	fullwidthComma  = []byte("，") // EF BC 8C
	fullwidthRBrace = []byte("｝") // EF BC 9D
)

var nullLiteral = []byte("null")

func (p *parser) parseString(c *cursor.Cursor) (value.Value, error) {
	rest := c.Remaining()
	switch {
	case len(rest) > 0 && (rest[0] == '"' || rest[0] == '\''):
		return p.parseQuoted(c, rest[1:], 1, rest[0])
	case bytes.HasPrefix(rest, fullwidthQuote):
		return p.parseQuoted(c, rest[len(fullwidthQuote):], len(fullwidthQuote), 0)
	default:
		return p.parseUnquoted(c)
	}
}

// parseQuoted scans body, the bytes after an opening delimiter of openLen
// bytes. quote is the ASCII delimiter, or 0 for a fullwidth opening, which
// may be closed by either an ASCII or a fullwidth double quote. A delimiter
// only closes the string when closesStructure accepts what follows it.
func (p *parser) parseQuoted(c *cursor.Cursor, body []byte, openLen int, quote byte) (value.Value, error) {
	escaped, hasEscape := false, false

	for i := 0; i < len(body); i++ {
		if i == MaxStringLen {
			cut := i
			for cut > 0 && !utf8.RuneStart(body[cut]) {
				cut--
			}
			c.Advance(openLen + cut)
			return p.text(body[:cut], hasEscape)
		}

		b := body[i]
		closeLen := 0
		switch {
		case escaped:
			escaped = false
		case b == '\\':
			escaped, hasEscape = true, true
		case quote != 0 && b == quote:
			closeLen = 1
		case quote == 0 && b == '"':
			closeLen = 1
		case quote == 0 && bytes.HasPrefix(body[i:], fullwidthQuote):
			closeLen = len(fullwidthQuote)
		}

		if closeLen > 0 && closesStructure(body[i+closeLen:]) {
			c.Advance(openLen + i + closeLen)
			return p.text(body[:i], hasEscape)
		}
	}
	return value.Value{}, ErrUnexpectedEOF
}

// parseUnquoted reads a bare token up to a separator, whitespace or the
// length cap. It never fails in lossy mode.
func (p *parser) parseUnquoted(c *cursor.Cursor) (value.Value, error) {
	rest := c.Remaining()
	n := 0
	for n < len(rest) && n < MaxStringLen {
		b := rest[n]
		if b == ',' || b == '}' || b == ']' || cursor.IsSpace(b) {
			break
		}
		if b == fullwidthComma[0] && (bytes.HasPrefix(rest[n:], fullwidthComma) || bytes.HasPrefix(rest[n:], fullwidthRBrace)) {
			break
		}
		n++
	}
	c.Advance(n)

	raw := rest[:n]
	if bytes.Equal(raw, nullLiteral) {
		return value.Null(), nil
	}
	return p.text(raw, false)
}

// closesStructure reports whether rest, the input after a candidate closing
// quote, starts (after whitespace) with a token that ends a value: a colon,
// a closing brace or bracket, the end of input, or a comma followed by
// another quote, a closing brace or the end of input.
func closesStructure(rest []byte) bool {
	i := cursor.SkipSpace(rest, 0)
	if i == len(rest) {
		return true
	}
	switch rest[i] {
	case ':', '}', ']':
		return true
	case ',':
		return opensNext(rest[i+1:])
	}
	switch {
	case bytes.HasPrefix(rest[i:], fullwidthRBrace):
		return true
	case bytes.HasPrefix(rest[i:], fullwidthComma):
		return opensNext(rest[i+len(fullwidthComma):])
	}
	return false
}

func opensNext(rest []byte) bool {
	i := cursor.SkipSpace(rest, 0)
	if i == len(rest) {
		return true
	}
	switch rest[i] {
	case '"', '\'', '}':
		return true
	}
	return bytes.HasPrefix(rest[i:], fullwidthQuote) || bytes.HasPrefix(rest[i:], fullwidthRBrace)
}

// text materialises raw as a string value, decoding escapes when present.
func (p *parser) text(raw []byte, hasEscape bool) (value.Value, error) {
	if hasEscape {
		raw = unescape(raw)
	}
	if !utf8.Valid(raw) {
		if p.strictUTF8 {
			return value.Value{}, ErrInvalidText
		}
		return value.String(toValidText(raw)), nil
	}
	return value.String(string(raw)), nil
}

// toValidText replaces every maximal invalid subsequence of raw with one
// U+FFFD. A truncated multi-byte sequence counts as one subsequence, each
// other invalid byte counts on its own.
func toValidText(raw []byte) string {
	out := make([]byte, 0, len(raw)+8)
	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRune(raw[i:])
		if r != utf8.RuneError || size > 1 {
			out = append(out, raw[i:i+size]...)
			i += size
			continue
		}
		out = utf8.AppendRune(out, utf8.RuneError)
		i += invalidLen(raw[i:])
	}
	return string(out)
}

// invalidLen returns the length of the invalid subsequence at the start of
// b: the lead byte plus any continuation bytes that still fit its pattern.
func invalidLen(b []byte) int {
	lo, hi, need := byte(0x80), byte(0xBF), 0
	switch lead := b[0]; {
	case lead >= 0xC2 && lead <= 0xDF:
		need = 1
	case lead == 0xE0:
		lo, need = 0xA0, 2
	case lead == 0xED:
		hi, need = 0x9F, 2
	case lead >= 0xE1 && lead <= 0xEF:
		need = 2
	case lead == 0xF0:
		lo, need = 0x90, 3
	case lead == 0xF4:
		hi, need = 0x8F, 3
	case lead >= 0xF1 && lead <= 0xF3:
		need = 3
	}
	n := 1
	for ; n <= need && n < len(b); n++ {
		if b[n] < lo || b[n] > hi {
			break
		}
		lo, hi = 0x80, 0xBF
	}
	return n
}

// unescape decodes JSON escapes plus \'. Unknown escapes and malformed
// \u sequences are kept as written.
func unescape(raw []byte) []byte {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		b := raw[i]
		if b != '\\' || i+1 == len(raw) {
			out = append(out, b)
			continue
		}
		switch next := raw[i+1]; next {
		case '"', '\\', '/', '\'':
			out = append(out, next)
			i++
		case 'b':
			out = append(out, '\b')
			i++
		case 'f':
			out = append(out, '\f')
			i++
		case 'n':
			out = append(out, '\n')
			i++
		case 'r':
			out = append(out, '\r')
			i++
		case 't':
			out = append(out, '\t')
			i++
		case 'u':
			r, size := decodeUnicodeEscape(raw[i:])
			if size == 0 {
				out = append(out, b)
				continue
			}
			out = utf8.AppendRune(out, r)
			i += size - 1
		default:
			out = append(out, b, next)
			i++
		}
	}
	return out
}

// decodeUnicodeEscape decodes a \uXXXX escape at the start of s, combining
// a surrogate pair when one follows. size is 0 if s holds no valid escape.
// A lone surrogate decodes to U+FFFD.
func decodeUnicodeEscape(s []byte) (r rune, size int) {
	hi, ok := hex4(s)
	if !ok {
		return 0, 0
	}
	if !utf16.IsSurrogate(hi) {
		return hi, 6
	}
	if lo, ok := hex4(s[6:]); ok {
		if pair := utf16.DecodeRune(hi, lo); pair != utf8.RuneError {
			return pair, 12
		}
	}
	return utf8.RuneError, 6
}

func hex4(s []byte) (rune, bool) {
	if len(s) < 6 || s[0] != '\\' || s[1] != 'u' {
		return 0, false
	}
	n, err := strconv.ParseUint(utils.BytesToString(s[2:6]), 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(n), true
}
