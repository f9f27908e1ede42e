package render

import (
	"strings"

	"github.com/codalotl/panediff/internal/matchers"
	"github.com/codalotl/panediff/internal/q/uni"
)

const tabWidth = 4

// SideBySide renders every line of a and b in two columns, width columns wide in total. The gutter between the columns marks the row: " | "
// for a changed pair, " < " for a line only in a, " > " for a line only in b, and blanks for equal lines. Tabs expand to four spaces and
// trailing blanks are trimmed.
func SideBySide(a, b []string, ops []matchers.Opcode, width int, color bool) string {
	col := max((width-3)/2, 1)
	cell := func(s string) string {
		return uni.Fit(strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth)), col, nil)
	}
	paint := func(s, code string) string {
		if !color || strings.TrimSpace(s) == "" {
			return s
		}
		return code + s + reset
	}

	var out strings.Builder
	row := func(left, gutter, right string) {
		out.WriteString(strings.TrimRight(left+gutter+right, " "))
		out.WriteByte('\n')
	}
	blank := strings.Repeat(" ", col)

	for _, op := range ops {
		if op.Tag == matchers.Equal {
			for k := 0; k < op.I2-op.I1; k++ {
				row(cell(a[op.I1+k]), "   ", cell(b[op.J1+k]))
			}
			continue
		}
		del, ins := a[op.I1:op.I2], b[op.J1:op.J2]
		for k := 0; k < max(len(del), len(ins)); k++ {
			switch {
			case k < len(del) && k < len(ins):
				row(paint(cell(del[k]), red), " | ", paint(cell(ins[k]), green))
			case k < len(del):
				row(paint(cell(del[k]), red), " < ", "")
			default:
				row(blank, " > ", paint(cell(ins[k]), green))
			}
		}
	}
	return out.String()
}
