package cli

import (
	"fmt"
	"io"

	"github.com/codalotl/panediff/internal/diffutil"
	qcli "github.com/codalotl/panediff/internal/q/cli"
	"github.com/codalotl/panediff/internal/render"
)

func newMerge3Command(g *globals) *qcli.Command {
	return &qcli.Command{
		Name:  "merge3",
		Short: "Classify the changes of a three-way comparison.",
		Long: `Classify the changes of a three-way comparison against a common base, one line per change:

  ====1  only <left> changed          ====3  only <right> changed
  ====2  both made the same change    ====   conflict

Exits 1 if any change conflicts.`,
		Usage: "<left> <base> <right>",
		Args:  qcli.ExactArgs(3),
		Run: func(c *qcli.Context) error {
			p, err := g.prefs(c, nil)
			if err != nil {
				return err
			}
			texts := make([]diffutil.Text, 3)
			for i, path := range c.Args {
				if path == "-" {
					return qcli.Usagef("merge3 does not read standard input")
				}
				lines, err := readLines(nil, path)
				if err != nil {
					return err
				}
				texts[i] = diffutil.Lines(lines)
			}

			d := diffutil.NewDiffer(diffutil.Options{Matcher: p.lineMatcher(), IgnoreBlanks: p.IgnoreBlankLines})
			if err := runTasks(c.Context, d.SetSequencesTask(texts)); err != nil {
				return err
			}
			if _, err := io.WriteString(c.Out, render.Merge3(d.Chunks())); err != nil {
				return err
			}
			if n := len(d.Conflicts()); n > 0 {
				return qcli.ExitError{Code: 1, Err: fmt.Errorf("%d conflicting %s", n, plural(n, "change", "changes"))}
			}
			return nil
		},
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
