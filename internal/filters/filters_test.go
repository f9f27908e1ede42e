package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellToRegex(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"*.txt", `.*\.txt$`},
		{"a?c", `a.c$`},
		{"[!ab]x", `[^ab]x$`},
		{"[^a]", `[\^a]$`},
		{"{a,b*}.c", `(a|b.*)\.c$`},
		{"[abc", `\[abc$`},
		{"{abc", `\{abc$`},
		{`\*`, `\*$`},
		{"[]", `\[\]$`},
		{"[]a]", `[\]a]$`},
		{"[!]x]", `[^\]x]$`},
		{"[!]", `\[!\]$`},
		{`[a\b]`, `[a\\b]$`},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, ShellToRegex(tt.pattern))
		})
	}
}

func TestCompileShell_BracketClasses(t *testing.T) {
	f := Compile("classes", "[]a]x [!]y]z [!] [a\\b]", Shell, true)
	require.NoError(t, f.Err())
	require.True(t, f.Valid())

	for _, name := range []string{"]x", "ax", "cz", "[!]", `\`, "a"} {
		assert.True(t, f.MatchName(name), name)
	}
	for _, name := range []string{"bx", "]z", "yz", "!", "c"} {
		assert.False(t, f.MatchName(name), name)
	}
}

func TestCompileShell_MatchName(t *testing.T) {
	backups := Compile("Backups", "#*# .#* ~* *~ *.{orig,bak,swp}", Shell, true)
	require.NoError(t, backups.Err())
	require.True(t, backups.Valid())

	for _, name := range []string{"#foo#", ".#lock", "~tmp", "notes~", "main.c.orig", "x.bak", ".x.swp"} {
		assert.True(t, backups.MatchName(name), name)
	}
	for _, name := range []string{"main.c", "x.orig2", "foo#", "a.swpx"} {
		assert.False(t, backups.MatchName(name), name)
	}

	multi := Compile("vcs", "b a.txt", Shell, true)
	assert.True(t, multi.MatchName("a.txt"))
	assert.True(t, multi.MatchName("b"))
	assert.False(t, multi.MatchName("xa.txt"))
	assert.False(t, multi.MatchName("bb"))
}

func TestCompile_Failures(t *testing.T) {
	empty := Compile("empty", "   ", Shell, true)
	assert.ErrorIs(t, empty.Err(), ErrEmptyPattern)
	assert.False(t, empty.Active)
	assert.False(t, empty.MatchName(""))

	bad := Compile("bad", "(unclosed", Regex, true)
	assert.Error(t, bad.Err())
	assert.False(t, bad.Valid())
	assert.False(t, bad.Active)
	assert.Equal(t, []byte("(unclosed"), ApplyTextFilters([]byte("(unclosed"), []*Filter{bad}))

	errs := Errors([]*Filter{empty, bad, Compile("ok", "*.o", Shell, true)})
	assert.Equal(t, []string{"bad", "empty"}, Labels(errs))
}

func TestInactiveFilterMatchesNothing(t *testing.T) {
	f := Compile("objs", "*.o", Shell, false)
	require.NoError(t, f.Err())
	assert.False(t, f.MatchName("a.o"))
	assert.False(t, MatchAny([]*Filter{f}, "a.o"))
	assert.Empty(t, Active([]*Filter{f}))

	var zero Filter
	assert.False(t, zero.MatchName("anything"))
}

func TestApplyTextFilters(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		in       string
		want     string
	}{
		{name: "cpp comment", patterns: []string{`//.*`}, in: "int x; // hi\nint y;\n", want: "int x; \nint y;\n"},
		{name: "groups only", patterns: []string{`\$\w+(:[^\n$]+)?\$`}, in: "$Id: foo.c 1.2 $\n", want: "$Id$\n"},
		{name: "multi-line anchors", patterns: []string{`^[ \t]*`}, in: "  a\n\tb", want: "a\nb"},
		{name: "overlaps merged", patterns: []string{"ab", "bc"}, in: "abcd", want: "d"},
		{name: "empty matches ignored", patterns: []string{`x*`}, in: "abc", want: "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fs []*Filter
			for _, p := range tt.patterns {
				f := Compile(p, p, Regex, true)
				require.NoError(t, f.Err())
				fs = append(fs, f)
			}
			assert.Equal(t, tt.want, string(ApplyTextFilters([]byte(tt.in), fs)))
		})
	}
}

func TestFilterSpans(t *testing.T) {
	f := Compile("c", `/\*.*?\*/`, Regex, true)
	spans := FilterSpans([]byte("a /*x*/ b /*y*/"), []*Filter{f})
	assert.Equal(t, []Span{{2, 7}, {10, 15}}, spans)
}

func TestNormalizeNewlines(t *testing.T) {
	assert.Equal(t, "foo\nbar\n", string(NormalizeNewlines([]byte("foo\r\nbar\r\n"))))
	assert.Equal(t, "a\nb", string(NormalizeNewlines([]byte("a\rb"))))
	assert.Equal(t, "a\n\nb", string(NormalizeNewlines([]byte("a\r\r\nb"))))
	assert.Equal(t, "a\nb\nc", string(NormalizeNewlines([]byte("a\x1eb\xc2\x85c"))))
	assert.Equal(t, "é", string(NormalizeNewlines([]byte("é"))))
}

func TestRemoveBlankLines(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"foo\n\nbar\n", "foo\nbar"},
		{"\r\n\r\nfoo\r\n\r\nbar", "foo\nbar"},
		{"a\x0bb\x0cc\x1cd\xc2\x85e\x1df", "a\nb\nc\nd\ne\nf"},
		{"", ""},
		{"\n\n\r", ""},
		{"x", "x"},
		{" \n", " "},
	}
	for _, tt := range tests {
		got := RemoveBlankLines([]byte(tt.in))
		assert.Equal(t, tt.want, string(got), "%q", tt.in)
		assert.Equal(t, got, RemoveBlankLines(got), "idempotent for %q", tt.in)
	}
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\nb\n"))
	assert.Equal(t, []string{"a", "", "b"}, SplitLines("a\n\nb"))
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\r\nb"))
	assert.Equal(t, []string{""}, SplitLines("\n"))
	assert.Nil(t, SplitLines(""))
}

func TestIdentity(t *testing.T) {
	a := Compile("a", "x", Regex, true)
	b := Compile("b", "y", Regex, false)
	c := Compile("c", "x", Regex, true)

	assert.Equal(t, Identity([]*Filter{a}), Identity([]*Filter{a, b}))
	assert.Equal(t, Identity([]*Filter{a}), Identity([]*Filter{c}))
	assert.NotEqual(t, Identity([]*Filter{a}), Identity(nil))
}

func TestDefaultsCompile(t *testing.T) {
	for _, f := range FromSources(Shell, DefaultNameSources()) {
		assert.NoError(t, f.Err(), f.Label)
	}
	for _, f := range FromSources(Regex, DefaultTextSources()) {
		assert.NoError(t, f.Err(), f.Label)
	}
	names := FromSources(Shell, DefaultNameSources())
	assert.True(t, MatchAny(names, ".git"))
	assert.True(t, MatchAny(names, ".DS_Store"))
	assert.False(t, MatchAny(names, "main.o"))
}
