// Package cursor provides a forward-only read position over a borrowed,
// immutable byte buffer.
package cursor

import "bytes"

// Cursor is a scan position into buf. It never copies or modifies buf and
// only ever moves forward.
type Cursor struct {
	buf []byte
	pos int
}

// New returns a cursor positioned at the start of buf.
func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current offset from the start of the buffer. It may be
// past the end after an over-advance.
func (c *Cursor) Pos() int { return c.pos }

// Remaining returns the unread part of the buffer, empty once exhausted.
func (c *Cursor) Remaining() []byte {
	if c.pos >= len(c.buf) {
		return nil
	}
	return c.buf[c.pos:]
}

// Exhausted reports whether no bytes remain.
func (c *Cursor) Exhausted() bool { return c.pos >= len(c.buf) }

// Advance moves forward by n bytes. Advancing beyond the end leaves the
// cursor exhausted.
func (c *Cursor) Advance(n int) {
	if n > 0 {
		c.pos += n
	}
}

// SkipWhitespace advances over ASCII space, tab, CR and LF.
func (c *Cursor) SkipWhitespace() {
	for c.pos < len(c.buf) && IsSpace(c.buf[c.pos]) {
		c.pos++
	}
}

// Matches reports whether the remaining bytes start with prefix without
// consuming anything.
func (c *Cursor) Matches(prefix []byte) bool {
	return bytes.HasPrefix(c.Remaining(), prefix)
}

// MatchesByte is the single-byte form of Matches.
func (c *Cursor) MatchesByte(b byte) bool {
	return c.pos < len(c.buf) && c.buf[c.pos] == b
}

// IsSpace reports whether b is one of the whitespace bytes the cursor skips.
func IsSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// SkipSpace returns the index of the first non-whitespace byte in b at or
// after i, or len(b).
func SkipSpace(b []byte, i int) int {
	for i < len(b) && IsSpace(b[i]) {
		i++
	}
	return i
}
