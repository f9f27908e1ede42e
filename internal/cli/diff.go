package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/codalotl/panediff/internal/diffutil"
	"github.com/codalotl/panediff/internal/filters"
	"github.com/codalotl/panediff/internal/matchers"
	qcli "github.com/codalotl/panediff/internal/q/cli"
	"github.com/codalotl/panediff/internal/render"
)

const defaultSideWidth = 120

var diffFormats = []string{"unified", "pretty", "side", "patch", "opcodes"}

func newDiffCommand(g *globals) *qcli.Command {
	cmd := &qcli.Command{
		Name:  "diff",
		Short: "Show the line differences between two files.",
		Long: `Show the line differences between two files. Either file may be "-" for standard input.

Exits 0 when the files are the same and 1 when they differ. With --ignore-blank-lines, files whose only differences are blank lines
count as the same.`,
		Usage: "<a> <b>",
		Args:  qcli.ExactArgs(2),
	}
	fl := cmd.Flags()
	format := fl.Enum("format", 'f', "unified", diffFormats, "output format")
	context := fl.Int("context", 'U', 3, "lines of context around changes (unified, pretty)")
	syncs := fl.StringSlice("sync", 0, nil, "align line i of <a> with line j of <b>, given as i:j (1-based, repeatable)")
	width := fl.Int("width", 'w', 0, "total width for --format side (default: terminal width, else 120)")

	cmd.Run = func(c *qcli.Context) error {
		p, err := g.prefs(c, nil)
		if err != nil {
			return err
		}
		a, b, err := readPair(c.In, c.Args[0], c.Args[1])
		if err != nil {
			return err
		}
		points, err := parseSyncPoints(*syncs, len(a), len(b))
		if err != nil {
			return err
		}

		// The middle pane is the A side of a two-way Differ's stream, so <a> goes second.
		d := diffutil.NewDiffer(diffutil.Options{Matcher: p.lineMatcher(), IgnoreBlanks: p.IgnoreBlankLines})
		d.SetSyncPoints(0, points)
		if err := runTasks(c.Context, d.SetSequencesTask([]diffutil.Text{diffutil.Lines(b), diffutil.Lines(a)})); err != nil {
			return err
		}
		same := d.DiffCount() == 0
		ops := matchers.Fill(d.Streams()[0], len(a), len(b))

		var out string
		switch *format {
		case "unified":
			if !same {
				out = render.Unified(a, b, ops, c.Args[0], c.Args[1], *context, g.useColor(c.Out))
			}
		case "pretty":
			if !same {
				out = render.Pretty(a, b, ops, c.Args[0], c.Args[1], *context, p.inlineMatcher()) + "\n"
			}
		case "side":
			w := *width
			if w <= 0 {
				w = terminalWidth(c.Out, defaultSideWidth)
			}
			out = render.SideBySide(a, b, ops, w, g.useColor(c.Out))
		case "patch":
			if !same {
				out = render.Patch(a, b, ops)
			}
		case "opcodes":
			var sb strings.Builder
			for _, op := range ops {
				fmt.Fprintln(&sb, op)
			}
			out = sb.String()
		}
		if _, err := io.WriteString(c.Out, out); err != nil {
			return err
		}
		if !same {
			return qcli.Exit(1)
		}
		return nil
	}
	return cmd
}

// readPair reads two files as lines. At most one of them may be "-".
func readPair(stdin io.Reader, pathA, pathB string) ([]string, []string, error) {
	if pathA == "-" && pathB == "-" {
		return nil, nil, qcli.Usagef("only one input may be standard input")
	}
	a, err := readLines(stdin, pathA)
	if err != nil {
		return nil, nil, err
	}
	b, err := readLines(stdin, pathB)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func readLines(stdin io.Reader, path string) ([]string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return filters.SplitLines(string(data)), nil
}

// parseSyncPoints parses 1-based "i:j" pairs into 0-based points, checking them against the line counts.
func parseSyncPoints(specs []string, lenA, lenB int) ([]matchers.SyncPoint, error) {
	var points []matchers.SyncPoint
	for _, s := range specs {
		left, right, ok := strings.Cut(s, ":")
		i, errI := strconv.Atoi(strings.TrimSpace(left))
		j, errJ := strconv.Atoi(strings.TrimSpace(right))
		if !ok || errI != nil || errJ != nil {
			return nil, qcli.Usagef("invalid --sync %q: want i:j", s)
		}
		if i < 1 || i > lenA || j < 1 || j > lenB {
			return nil, qcli.Usagef("--sync %q is out of range (%d and %d lines)", s, lenA, lenB)
		}
		points = append(points, matchers.SyncPoint{A: i - 1, B: j - 1})
	}
	return points, nil
}
