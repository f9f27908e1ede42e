package cli

import (
	"fmt"

	qcli "github.com/codalotl/panediff/internal/q/cli"
)

func newSameCommand(g *globals) *qcli.Command {
	return &qcli.Command{
		Name:  "same",
		Short: "Report whether two or three files are the same.",
		Long: `Report whether two or three files are the same, printing one of: same, same-filtered, dodgy-same, dodgy-different,
different, error.

Exits 0 for same, same-filtered and dodgy-same, and 1 otherwise.`,
		Usage: "<path> <path> [path]",
		Args:  qcli.RangeArgs(2, 3),
		Run: func(c *qcli.Context) error {
			p, err := g.prefs(c, nil)
			if err != nil {
				return err
			}
			_, texts := p.compileFilters()
			v := p.comparer().FilesSame(c.Args, texts, p.compareOptions())
			if _, err := fmt.Fprintln(c.Out, v); err != nil {
				return err
			}
			if !v.Equal() {
				return qcli.Exit(1)
			}
			return nil
		},
	}
}
