package uni

import (
	"strings"

	"github.com/clipperhouse/uax29/v2/graphemes"
	"github.com/mattn/go-runewidth"
)

// Options control width calculation. Currently only relevant for East Asian code points and their locale.
type Options struct {
	EastAsianWidth   bool // if true, treats certain East Asian code points as 2 wide (e.g., Chinese, Japanese, Korean). Use if the locale is one of CJK.
	TreatEmojiAsWide bool // Only considered if EastAsianWidth. If true, treats emoji as wide (2 columns).
}

// Segment is one grapheme cluster of a string, with its byte range in the original string.
type Segment struct {
	Text  string
	Start int
	End   int
}

// TextWidth returns the text width of str for monospace fonts in terminals. If opts is nil, locale is assumed to be non-East Asian.
func TextWidth[T string | []byte](str T, opts *Options) int {
	return conditionFromOptions(opts).StringWidth(string(str))
}

// RuneWidth returns the width of r for monospace fonts in terminals. If opts is nil, locale is assumed to be non-East Asian.
func RuneWidth(r rune, opts *Options) int {
	return conditionFromOptions(opts).RuneWidth(r)
}

// Graphemes splits s into user-perceived characters.
func Graphemes(s string) []string {
	segs := Segments(s)
	out := make([]string, len(segs))
	for i, seg := range segs {
		out[i] = seg.Text
	}
	return out
}

// Segments splits s into grapheme clusters, keeping byte offsets so callers can map grapheme indices back into s.
func Segments(s string) []Segment {
	var out []Segment
	iter := graphemes.FromString(s)
	for iter.Next() {
		out = append(out, Segment{Text: iter.Value(), Start: iter.Start(), End: iter.End()})
	}
	return out
}

// Fit returns s cut at a grapheme boundary so that it is at most width columns wide, then right-padded with spaces to exactly width columns.
// A wide grapheme that would straddle the limit is replaced by padding.
func Fit(s string, width int, opts *Options) string {
	if width <= 0 {
		return ""
	}
	cond := conditionFromOptions(opts)

	var b strings.Builder
	used := 0
	iter := graphemes.FromString(s)
	for iter.Next() {
		w := cond.StringWidth(iter.Value())
		if used+w > width {
			break
		}
		b.WriteString(iter.Value())
		used += w
	}
	if used < width {
		b.WriteString(strings.Repeat(" ", width-used))
	}
	return b.String()
}

func conditionFromOptions(opts *Options) *runewidth.Condition {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = false
	cond.StrictEmojiNeutral = true

	if opts == nil {
		return cond
	}

	cond.EastAsianWidth = opts.EastAsianWidth
	if opts.EastAsianWidth && opts.TreatEmojiAsWide {
		cond.StrictEmojiNeutral = false
	}

	return cond
}
