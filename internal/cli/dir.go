package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/codalotl/panediff/internal/dirwalk"
	qcli "github.com/codalotl/panediff/internal/q/cli"
)

const defaultDirStates = "nochange,new,modified,missing,error,empty,ignored"

func newDirCommand(g *globals) *qcli.Command {
	cmd := &qcli.Command{
		Name:  "dir",
		Short: "Compare two or three directory trees.",
		Long: `Compare two or three directory trees, printing an indented tree of rows with their state. Directories are shown when they
contain a shown row. Problems found while listing a directory (unreadable entries, names that collide once canonicalized,
undecodable names) are printed under it, prefixed with "!".

Exits 0 when no row is new, modified, missing or in error, and 1 otherwise.`,
		Usage: "<dir> <dir> [dir]",
		Args:  qcli.RangeArgs(2, 3),
	}
	fl := cmd.Flags()
	depth := fl.Int("depth", 'd', 0, "do not descend below this depth (0 is unlimited)")
	statesFlag := fl.String("states", 0, defaultDirStates, "comma-separated row states to show, or \"all\"")

	cmd.Run = func(c *qcli.Context) error {
		extra := map[string]any{}
		if c.Changed("depth") {
			extra["maxdepth"] = *depth
		}
		p, err := g.prefs(c, extra)
		if err != nil {
			return err
		}
		show, err := parseStates(*statesFlag)
		if err != nil {
			return err
		}

		names, texts := p.compileFilters()
		var items []*dirwalk.Item
		w, err := dirwalk.NewWalker(dirwalk.Options{
			Roots:          c.Args,
			Canonicalize:   p.canonicalizer(),
			NameFilters:    names,
			TextFilters:    texts,
			MaxDepth:       p.MaxDepth,
			FollowSymlinks: p.FollowSymlinks,
			IgnoreSymlinks: p.IgnoreSymlinks,
			Compare:        p.compareOptions(),
			Comparer:       p.comparer(),
			Emit:           func(it *dirwalk.Item) { items = append(items, it) },
		})
		if err != nil {
			return err
		}
		if err := runTasks(c.Context, w); err != nil {
			return err
		}

		if err := writeTree(c.Out, items, show); err != nil {
			return err
		}
		for _, it := range items {
			switch it.Row.State {
			case dirwalk.New, dirwalk.Modified, dirwalk.Missing, dirwalk.Error:
				return qcli.Exit(1)
			}
		}
		return nil
	}
	return cmd
}

func parseStates(s string) (map[dirwalk.State]bool, error) {
	show := map[dirwalk.State]bool{}
	if strings.TrimSpace(s) == "all" {
		for st := dirwalk.Normal; st <= dirwalk.Ignored; st++ {
			show[st] = true
		}
		return show, nil
	}
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		st, err := dirwalk.ParseState(part)
		if err != nil {
			return nil, qcli.Usagef("--states: %v", err)
		}
		show[st] = true
	}
	return show, nil
}

// writeTree prints items in walk order. An item is printed if its state is shown, if it has problems, or if it is an ancestor of a printed
// item.
func writeTree(w io.Writer, items []*dirwalk.Item, show map[dirwalk.State]bool) error {
	visible := map[*dirwalk.Item]bool{}
	for _, it := range items {
		if !show[it.Row.State] && len(it.Problems) == 0 {
			continue
		}
		for p := it; p != nil && !visible[p]; p = p.Parent {
			visible[p] = true
		}
	}

	for _, it := range items {
		if !visible[it] {
			continue
		}
		indent := strings.Repeat("  ", it.Depth)
		if _, err := fmt.Fprintf(w, "%s%s  %s\n", indent, itemLabel(it), rowStates(it.Row)); err != nil {
			return err
		}
		for _, prob := range it.Problems {
			if _, err := fmt.Fprintf(w, "%s  ! %s\n", indent, prob); err != nil {
				return err
			}
		}
	}
	return nil
}

func itemLabel(it *dirwalk.Item) string {
	switch {
	case it.Parent == nil:
		return "."
	case it.Row.State == dirwalk.Empty:
		return "(empty)"
	case it.Canonical == "":
		return "(unreadable)"
	case it.Row.IsDir():
		return it.Canonical + "/"
	}
	return it.Canonical
}

// rowStates is the row state, followed by the per-pane states when the panes disagree.
func rowStates(r dirwalk.Row) string {
	s := r.State.String()
	if len(r.States) == 0 {
		return s
	}
	for _, st := range r.States[1:] {
		if st != r.States[0] {
			parts := make([]string, len(r.States))
			for i, ps := range r.States {
				parts[i] = ps.String()
			}
			return s + " [" + strings.Join(parts, " ") + "]"
		}
	}
	return s
}
