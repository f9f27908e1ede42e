package filters

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// classEscaper quotes the characters that are special inside an RE2 bracket expression but literal inside a shell class.
var classEscaper = strings.NewReplacer(`\`, `\\`, "[", `\[`, "]", `\]`, "^", `\^`)

// ShellToRegex translates a single shell pattern into a regular expression anchored at the end (but not the start; callers use it with an
// anchored match).
//
// Supported syntax: "*", "?", "[...]" (with "!" negation), "{a,b}" alternation (branches are translated recursively), and backslash escapes.
// Unterminated "[" and "{" are literal. A "]" first in a class and a backslash inside one are literal. Everything else is matched literally.
func ShellToRegex(pattern string) string {
	return translateShell(pattern) + "$"
}

func translateShell(pat string) string {
	var b strings.Builder
	for i := 0; i < len(pat); {
		c := pat[i]
		i++
		switch c {
		case '\\':
			if i < len(pat) {
				r, size := decodeAt(pat, i)
				b.WriteString(regexp.QuoteMeta(r))
				i += size
			} else {
				b.WriteString(`\\`)
			}
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '[':
			// A "]" right after "[" or "[!" is part of the class.
			j := i
			if j < len(pat) && pat[j] == '!' {
				j++
			}
			if j < len(pat) && pat[j] == ']' {
				j++
			}
			k := strings.IndexByte(pat[j:], ']')
			if k < 0 {
				b.WriteString(`\[`)
				continue
			}
			stuff := pat[i : j+k]
			i = j + k + 1
			b.WriteByte('[')
			if stuff[0] == '!' {
				b.WriteByte('^')
				stuff = stuff[1:]
			}
			b.WriteString(classEscaper.Replace(stuff))
			b.WriteByte(']')
		case '{':
			j := strings.IndexByte(pat[i:], '}')
			if j < 0 {
				b.WriteString(`\{`)
				continue
			}
			stuff := pat[i : i+j]
			i += j + 1
			branches := strings.Split(stuff, ",")
			for k, br := range branches {
				branches[k] = translateShell(br)
			}
			b.WriteString("(" + strings.Join(branches, "|") + ")")
		default:
			r, size := decodeAt(pat, i-1)
			b.WriteString(regexp.QuoteMeta(r))
			i += size - 1
		}
	}
	return b.String()
}

// decodeAt returns the UTF-8 sequence starting at pat[i] and its length, so multi-byte names are quoted as a whole.
func decodeAt(pat string, i int) (string, int) {
	_, size := utf8.DecodeRuneInString(pat[i:])
	return pat[i : i+size], size
}
