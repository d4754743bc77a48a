package repair

import (
	"strings"

	"github.com/leofalp/llmjson/internal/cursor"
)

// marker prefixes the string literals that stand in for NaN and the
// infinities while the text passes through jsonrepair. It is a private use
// code point, so it does not occur in ordinary model output.
const (
	marker        = "\ue000"
	markerLiteral = `\ue000`
)

// literals maps bare words to their JSON replacement.
var literals = map[string]string{
	"True":      "true",
	"False":     "false",
	"None":      "null",
	"NaN":       `"` + markerLiteral + `NaN"`,
	"Infinity":  `"` + markerLiteral + `Infinity"`,
	"+Infinity": `"` + markerLiteral + `Infinity"`,
	"-Infinity": `"` + markerLiteral + `-Infinity"`,
}

// normalize rewrites the non-standard literals jsonrepair does not know about
// and rejects unquoted object keys. Strings and comments are copied through
// untouched. Once the outermost container closes, the rest of the text is
// dropped.
func normalize(text string) (string, error) {
	var out strings.Builder
	out.Grow(len(text) + 16)

	var stack []byte
	expectKey := false

	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '"' || c == '\'':
			end := skipString(text, i)
			out.WriteString(text[i:end])
			i = end
			expectKey = false
		case c == '/' && i+1 < len(text) && (text[i+1] == '/' || text[i+1] == '*'):
			end := skipComment(text, i)
			out.WriteString(text[i:end])
			i = end
		case cursor.IsSpace(c):
			out.WriteByte(c)
			i++
		case c == '{' || c == '[':
			stack = append(stack, c)
			expectKey = c == '{'
			out.WriteByte(c)
			i++
		case c == '}' || c == ']':
			out.WriteByte(c)
			i++
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			expectKey = false
			if len(stack) == 0 {
				return out.String(), nil
			}
		case c == ',':
			expectKey = len(stack) > 0 && stack[len(stack)-1] == '{'
			out.WriteByte(c)
			i++
		case expectKey:
			return "", &ParseError{Offset: i, Err: ErrUnquotedKey}
		case isWordByte(c):
			end := i + 1
			for end < len(text) && isWordByte(text[end]) {
				end++
			}
			word := text[i:end]
			if lit, ok := literals[word]; ok {
				word = lit
			}
			out.WriteString(word)
			i = end
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String(), nil
}

// skipString returns the index just past the string literal opening at i,
// or len(text) when it never closes.
func skipString(text string, i int) int {
	quote := text[i]
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		}
	}
	return len(text)
}

func skipComment(text string, i int) int {
	if text[i+1] == '/' {
		if n := strings.IndexByte(text[i:], '\n'); n >= 0 {
			return i + n
		}
		return len(text)
	}
	if n := strings.Index(text[i+2:], "*/"); n >= 0 {
		return i + 2 + n + 2
	}
	return len(text)
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '_' || c == '-' || c == '+' || c == '.'
}
