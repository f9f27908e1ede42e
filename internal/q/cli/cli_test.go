package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	root    *Command
	verbose *bool
	format  *string
	context *int
	sync    *[]string
	got     *Context
}

func newFixture() *fixture {
	f := &fixture{}
	f.root = &Command{Name: "tool", Short: "a test tool"}
	f.verbose = f.root.PersistentFlags().Bool("verbose", 'v', false, "chatty")

	diff := &Command{
		Name:    "diff",
		Aliases: []string{"d"},
		Short:   "compare two files",
		Usage:   "<a> <b>",
		Args:    ExactArgs(2),
		Run: func(c *Context) error {
			f.got = c
			return nil
		},
	}
	f.format = diff.Flags().Enum("format", 'f', "unified", []string{"unified", "side"}, "output format")
	f.context = diff.Flags().Int("context", 'U', 3, "context lines")
	f.sync = diff.Flags().StringSlice("sync", 0, nil, "sync point")

	fail := &Command{
		Name: "fail",
		Run: func(c *Context) error {
			if len(c.Args) > 0 {
				return ExitError{Code: 7, Err: errors.New("boom")}
			}
			return Exit(1)
		},
	}
	f.root.AddCommand(diff, fail)
	return f
}

func run(t *testing.T, root *Command, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := Run(context.Background(), root, Options{Args: args, Out: &out, Err: &errOut})
	return code, out.String(), errOut.String()
}

func TestRunParsesInterspersedFlags(t *testing.T) {
	f := newFixture()
	code, _, stderr := run(t, f.root, "diff", "a.txt", "-U", "5", "--format=side", "b.txt", "-v", "--sync", "1:2", "--sync=3:4")
	require.Equal(t, 0, code, stderr)
	require.NotNil(t, f.got)
	assert.Equal(t, []string{"a.txt", "b.txt"}, f.got.Args)
	assert.Equal(t, 5, *f.context)
	assert.Equal(t, "side", *f.format)
	assert.True(t, *f.verbose)
	assert.Equal(t, []string{"1:2", "3:4"}, *f.sync)
	assert.True(t, f.got.Changed("context"))
	assert.True(t, f.got.Changed("verbose"))
	assert.False(t, f.got.Changed("nope"))
}

func TestRunDefaultsAndAlias(t *testing.T) {
	f := newFixture()
	code, _, _ := run(t, f.root, "d", "x", "y")
	require.Equal(t, 0, code)
	assert.Equal(t, "unified", *f.format)
	assert.Equal(t, 3, *f.context)
	assert.Empty(t, *f.sync)
	assert.False(t, f.got.Changed("format"))
}

func TestRunDoubleDash(t *testing.T) {
	f := newFixture()
	code, _, _ := run(t, f.root, "diff", "--", "-a", "--b")
	require.Equal(t, 0, code)
	assert.Equal(t, []string{"-a", "--b"}, f.got.Args)
}

func TestRunBoolTakesOptionalValue(t *testing.T) {
	f := newFixture()
	code, _, _ := run(t, f.root, "-v", "false", "diff", "a", "b")
	require.Equal(t, 0, code)
	assert.False(t, *f.verbose)

	f = newFixture()
	code, _, _ = run(t, f.root, "diff", "-v", "a", "b")
	require.Equal(t, 0, code)
	assert.True(t, *f.verbose)
	assert.Equal(t, []string{"a", "b"}, f.got.Args)
}

func TestRunUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown flag", []string{"diff", "--nope", "a", "b"}, "unknown flag: --nope"},
		{"bad enum", []string{"diff", "-f", "xml", "a", "b"}, `invalid value "xml" for -f/--format`},
		{"bad int", []string{"diff", "--context=x", "a", "b"}, `invalid value "x" for -U/--context`},
		{"missing value", []string{"diff", "a", "b", "--context"}, "flag needs a value: --context"},
		{"arg count", []string{"diff", "a"}, "expected 2 args, got 1"},
		{"missing subcommand", nil, "missing subcommand"},
		{"unknown subcommand", []string{"frob"}, "unknown command: frob"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			code, stdout, stderr := run(t, f.root, tt.args...)
			assert.Equal(t, 2, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, tt.want)
			assert.Contains(t, stderr, "Usage:")
		})
	}
}

func TestRunExitCodes(t *testing.T) {
	f := newFixture()
	code, _, stderr := run(t, f.root, "fail")
	assert.Equal(t, 1, code)
	assert.Empty(t, stderr)

	code, _, stderr = run(t, f.root, "fail", "x")
	assert.Equal(t, 7, code)
	assert.Equal(t, "tool fail: boom\n", stderr)

	plain := &Command{Name: "p", Run: func(*Context) error { return errors.New("plain") }}
	code, _, stderr = run(t, plain)
	assert.Equal(t, 1, code)
	assert.Equal(t, "p: plain\n", stderr)
}

func TestHelp(t *testing.T) {
	f := newFixture()
	code, stdout, _ := run(t, f.root, "--help")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "a test tool")
	assert.Contains(t, stdout, "tool <command> [flags]")
	assert.Contains(t, stdout, "diff")
	assert.Contains(t, stdout, "compare two files")
	assert.Contains(t, stdout, "-v, --verbose")
	assert.NotContains(t, stdout, "--format")

	f = newFixture()
	code, stdout, _ = run(t, f.root, "diff", "-h")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "tool diff [flags] <a> <b>")
	assert.Contains(t, stdout, "-f, --format unified|side")
	assert.Contains(t, stdout, "(default unified)")
	assert.Contains(t, stdout, "--sync strings")
}

func TestAddCommandPanics(t *testing.T) {
	root := &Command{Name: "r"}
	assert.Panics(t, func() { root.AddCommand(nil) })
	assert.Panics(t, func() { root.AddCommand(&Command{}) })
	child := &Command{Name: "c"}
	root.AddCommand(child)
	assert.Panics(t, func() { (&Command{Name: "o"}).AddCommand(child) })
	assert.Len(t, root.Commands(), 1)
}

func TestDuplicateFlagPanics(t *testing.T) {
	fs := newFlagSet()
	fs.Bool("x", 'x', false, "")
	assert.Panics(t, func() { fs.Int("x", 0, 0, "") })
	assert.Panics(t, func() { fs.Int("y", 'x', 0, "") })
}
