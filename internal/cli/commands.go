package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	qcli "github.com/codalotl/panediff/internal/q/cli"
	"github.com/codalotl/panediff/internal/task"
)

// globals are the flags every command accepts.
type globals struct {
	shallow       *bool
	ignoreBlank   *bool
	noTextFilters *bool
	ignoreCase    *bool
	followLinks   *bool
	ignoreLinks   *bool
	cacheDir      *string
	color         *bool
	noColor       *bool
}

func newRootCommand() *qcli.Command {
	root := &qcli.Command{
		Name:  "panediff",
		Short: "panediff compares files and directories, two or three at a time.",
	}

	pf := root.PersistentFlags()
	g := &globals{
		shallow:       pf.Bool("shallow", 0, false, "compare files by size and modification time only"),
		ignoreBlank:   pf.Bool("ignore-blank-lines", 0, false, "ignore changes that only add or remove blank lines"),
		noTextFilters: pf.Bool("no-text-filters", 0, false, "do not apply text filters when comparing files"),
		ignoreCase:    pf.Bool("ignore-case", 0, false, "match file names case-insensitively"),
		followLinks:   pf.Bool("follow-symlinks", 0, false, "compare what symlinks point to"),
		ignoreLinks:   pf.Bool("ignore-symlinks", 0, false, "skip symlinks"),
		cacheDir:      pf.String("cache-dir", 0, "", "persist comparison results under this directory"),
		color:         pf.Bool("color", 0, false, "always colorize output"),
		noColor:       pf.Bool("no-color", 0, false, "never colorize output"),
	}

	root.AddCommand(
		newDiffCommand(g),
		newMerge3Command(g),
		newSameCommand(g),
		newDirCommand(g),
		newConfigCommand(g),
		newVersionCommand(),
	)
	return root
}

// overrides maps the global flags given on the command line to preference keys. Flags left at their defaults do not override files or the
// environment.
func (g *globals) overrides(c *qcli.Context) map[string]any {
	m := map[string]any{}
	set := func(flag, key string, v any) {
		if c.Changed(flag) {
			m[key] = v
		}
	}
	set("shallow", "shallowcomparison", *g.shallow)
	set("ignore-blank-lines", "ignoreblanklines", *g.ignoreBlank)
	set("no-text-filters", "applytextfilters", !*g.noTextFilters)
	set("ignore-case", "ignorefilenamecase", *g.ignoreCase)
	set("follow-symlinks", "followsymlinks", *g.followLinks)
	set("ignore-symlinks", "ignoresymlinks", *g.ignoreLinks)
	set("cache-dir", "cachedir", *g.cacheDir)
	return m
}

// prefs loads preferences with the global flags and extra applied on top.
func (g *globals) prefs(c *qcli.Context, extra map[string]any) (Prefs, error) {
	m := g.overrides(c)
	for k, v := range extra {
		m[k] = v
	}
	p, _, err := loadPrefs(m)
	return p, err
}

// useColor honors --color and --no-color, then NO_COLOR, then whether out is a terminal.
func (g *globals) useColor(out io.Writer) bool {
	switch {
	case *g.noColor:
		return false
	case *g.color:
		return true
	case os.Getenv("NO_COLOR") != "":
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth is the width of out if it is a terminal, else fallback.
func terminalWidth(out io.Writer, fallback int) int {
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return fallback
}

// checkedTask records the first error of the task it wraps instead of letting the scheduler swallow it.
type checkedTask struct {
	ctx context.Context
	t   task.Task
	err error
}

func (c *checkedTask) Step() (bool, error) {
	if err := c.ctx.Err(); err != nil {
		c.err = err
		return false, nil
	}
	more, err := c.t.Step()
	if err != nil {
		c.err = err
		return false, nil
	}
	return more, nil
}

// runTasks drives tasks to completion on a LIFO scheduler and returns the first failure.
func runTasks(ctx context.Context, tasks ...task.Task) error {
	sched := task.NewLIFO()
	checked := make([]*checkedTask, len(tasks))
	for i, t := range tasks {
		checked[i] = &checkedTask{ctx: ctx, t: t}
		sched.AddTask(checked[i], false)
	}
	sched.CompleteTasks()
	for _, c := range checked {
		if c.err != nil {
			return c.err
		}
	}
	return nil
}

func newConfigCommand(g *globals) *qcli.Command {
	return &qcli.Command{
		Name:  "config",
		Short: "Print the effective preferences as JSON.",
		Long: fmt.Sprintf(`Print the effective preferences as JSON.

Preferences come from, lowest priority first: built-in defaults, %s, the nearest .panediff/config.json
above the working directory, %s_<KEY> environment variables, and command-line flags.`, globalConfigPath(), envPrefix),
		Args: qcli.NoArgs,
		Run: func(c *qcli.Context) error {
			p, err := g.prefs(c, nil)
			if err != nil {
				return err
			}
			return writePrefsJSON(c.Out, p)
		},
	}
}

func newVersionCommand() *qcli.Command {
	return &qcli.Command{
		Name:  "version",
		Short: "Print the panediff version.",
		Args:  qcli.NoArgs,
		Run: func(c *qcli.Context) error {
			_, err := fmt.Fprintln(c.Out, Version)
			return err
		},
	}
}
