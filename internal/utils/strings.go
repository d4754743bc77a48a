package utils

import (
	"fmt"
	"unicode/utf8"
	"unsafe"
)

// DefaultPreviewLength is the number of bytes of input kept in log previews.
const DefaultPreviewLength = 120

// BytesToString returns a string sharing memory with b. The caller must not
// modify b while the string is alive; the extraction engine only ever reads
// its input buffer, which makes the view safe there.
func BytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// Preview shortens b to at most maxLen bytes for log output, never cutting a
// UTF-8 sequence in half, and records the original length when it truncates.
// A non-positive maxLen uses [DefaultPreviewLength].
func Preview(b []byte, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultPreviewLength
	}
	if len(b) <= maxLen {
		return string(b)
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(b[cut]) {
		cut--
	}
	return fmt.Sprintf("%s... (truncated, total: %d bytes)", b[:cut], len(b))
}
