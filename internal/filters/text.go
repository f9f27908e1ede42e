package filters

import (
	"bytes"
	"sort"
)

// Span is a half-open byte range [Start, End).
type Span struct {
	Start int
	End   int
}

// FilterSpans returns the sorted, merged byte ranges of b that the enabled filters would remove.
//
// A filter without capture groups removes its whole match. A filter with groups removes only the groups that participated in the match, so
// "foo(bar)" removes "bar" wherever it follows "foo". Empty matches are ignored.
func FilterSpans(b []byte, filters []*Filter) []Span {
	var spans []Span
	for _, f := range filters {
		if !f.Enabled() {
			continue
		}
		groups := f.re.NumSubexp()
		for _, m := range f.re.FindAllSubmatchIndex(b, -1) {
			if groups == 0 {
				if m[0] != m[1] {
					spans = append(spans, Span{m[0], m[1]})
				}
				continue
			}
			for g := 1; g <= groups; g++ {
				s, e := m[2*g], m[2*g+1]
				if s >= 0 && s != e {
					spans = append(spans, Span{s, e})
				}
			}
		}
	}
	return mergeSpans(spans)
}

func mergeSpans(spans []Span) []Span {
	if len(spans) < 2 {
		return spans
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End < spans[j].End
	})
	out := spans[:1]
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if s.Start <= last.End {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		out = append(out, s)
	}
	return out
}

// ApplyTextFilters removes every range matched by the enabled filters from b (see FilterSpans). All filters match against the original b, not
// against each other's output. If nothing matches, b is returned unchanged.
func ApplyTextFilters(b []byte, filters []*Filter) []byte {
	spans := FilterSpans(b, filters)
	if len(spans) == 0 {
		return b
	}
	out := make([]byte, 0, len(b))
	offset := 0
	for _, s := range spans {
		out = append(out, b[offset:s.Start]...)
		offset = s.End
	}
	return append(out, b[offset:]...)
}

// terminatorAt returns the length of the line terminator starting at b[i], or 0. Recognized: LF, CR, CRLF (as one), VT, FF, FS, GS, RS, and
// NEL encoded as UTF-8.
func terminatorAt(b []byte, i int) int {
	switch b[i] {
	case '\n', '\v', '\f', 0x1c, 0x1d, 0x1e:
		return 1
	case '\r':
		if i+1 < len(b) && b[i+1] == '\n' {
			return 2
		}
		return 1
	case 0xc2:
		if i+1 < len(b) && b[i+1] == 0x85 {
			return 2
		}
	}
	return 0
}

// NormalizeNewlines replaces every recognized line terminator in b with a single LF.
func NormalizeNewlines(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); {
		if n := terminatorAt(b, i); n > 0 {
			out = append(out, '\n')
			i += n
			continue
		}
		out = append(out, b[i])
		i++
	}
	return out
}

// splitLines calls fn with each line of b, without its terminator. A trailing terminator does not produce an empty final line.
func splitLines(b []byte, fn func(line []byte)) {
	start := 0
	for i := 0; i < len(b); {
		if n := terminatorAt(b, i); n > 0 {
			fn(b[start:i])
			i += n
			start = i
			continue
		}
		i++
	}
	if start < len(b) {
		fn(b[start:])
	}
}

// RemoveBlankLines drops every empty line of b and joins the rest with LF, normalizing all terminators. The result has no leading or trailing
// terminator. RemoveBlankLines(RemoveBlankLines(x)) == RemoveBlankLines(x).
func RemoveBlankLines(b []byte) []byte {
	var lines [][]byte
	splitLines(b, func(line []byte) {
		if len(line) > 0 {
			lines = append(lines, line)
		}
	})
	if len(lines) == 0 {
		return []byte{}
	}
	return bytes.Join(lines, []byte{'\n'})
}

// SplitLines splits s into lines on the recognized terminators, dropping them.
func SplitLines(s string) []string {
	var out []string
	b := []byte(s)
	splitLines(b, func(line []byte) {
		out = append(out, string(line))
	})
	return out
}
