package schema

import (
	"fmt"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"

	"github.com/leofalp/llmjson/internal/cursor"
)

// KeyMatcher finds declared field names in a buffer regardless of whether
// the generated text quoted them with double or single quotes. It is built
// once per object schema and is safe for concurrent use.
type KeyMatcher struct {
	ac ahocorasick.AhoCorasick
	// names[i] is the field behind patterns 2i ("name") and 2i+1 ('name')
	names []string
}

// KeyMatch is an accepted key occurrence. Offsets are relative to the
// buffer given to Locate.
type KeyMatch struct {
	Name string
	// Start and End delimit the quoted key, quotes included.
	Start, End int
	// ValueStart is the offset just past the colon that follows the key.
	ValueStart int
}

func newKeyMatcher(names []string) (km *KeyMatcher, err error) {
	km = &KeyMatcher{names: names}
	if len(names) == 0 {
		return km, nil
	}

	patterns := make([]string, 0, 2*len(names))
	for _, name := range names {
		patterns = append(patterns, `"`+name+`"`, `'`+name+`'`)
	}

	defer func() {
		if r := recover(); r != nil {
			km, err = nil, fmt.Errorf("%w: %v", ErrMatcherBuild, r)
		}
	}()
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: false,
		MatchOnlyWholeWords:  false,
		MatchKind:            ahocorasick.LeftMostFirstMatch,
		DFA:                  true,
	})
	km.ac = builder.Build(patterns)
	return km, nil
}

// Locate scans all of buf and returns the first key occurrence, in
// leftmost-first order, that is followed by a colon after optional
// whitespace. Occurrences without a colon are skipped and the scan resumes
// after them, so candidates never overlap.
func (m *KeyMatcher) Locate(buf []byte) (KeyMatch, bool) {
	if len(m.names) == 0 || len(buf) == 0 {
		return KeyMatch{}, false
	}
	// The iterator restarts one byte past each match start, so it also
	// yields matches overlapping a rejected one.
	lastEnd := 0
	it := m.ac.IterByte(buf)
	for match := it.Next(); match != nil; match = it.Next() {
		if match.Start() < lastEnd {
			continue
		}
		j := cursor.SkipSpace(buf, match.End())
		if j < len(buf) && buf[j] == ':' {
			return KeyMatch{
				Name:       m.names[match.Pattern()/2],
				Start:      match.Start(),
				End:        match.End(),
				ValueStart: j + 1,
			}, true
		}
		lastEnd = match.End()
	}
	return KeyMatch{}, false
}
