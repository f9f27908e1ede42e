package render

import (
	"fmt"
	"strings"

	"github.com/codalotl/panediff/internal/matchers"
)

const (
	reset    = "\x1b[0m"
	red      = "\x1b[31m"
	green    = "\x1b[32m"
	magenta  = "\x1b[35m"
	cyanBold = "\x1b[1;36m"
)

// Unified renders ops between a and b as a unified diff with context lines around each change (negative means 3). File headers are written
// when either name is set. Each output line ends with "\n"; identical inputs render as "". If color, headers, hunk ranges and changed lines
// carry ANSI colors.
func Unified(a, b []string, ops []matchers.Opcode, fromName, toName string, context int, color bool) string {
	colorize := func(s, code string) string {
		if !color {
			return s
		}
		return code + s + reset
	}

	var out strings.Builder
	line := func(s string) {
		out.WriteString(s)
		out.WriteByte('\n')
	}

	for gi, g := range GroupOpcodes(ops, context) {
		if gi == 0 && (fromName != "" || toName != "") {
			line(colorize("--- "+fromName, cyanBold))
			line(colorize("+++ "+toName, cyanBold))
		}
		first, last := g[0], g[len(g)-1]
		line(colorize(fmt.Sprintf("@@ -%s +%s @@", unifiedRange(first.I1, last.I2), unifiedRange(first.J1, last.J2)), magenta))
		for _, op := range g {
			if op.Tag == matchers.Equal {
				for _, s := range a[op.I1:op.I2] {
					line(" " + s)
				}
				continue
			}
			for _, s := range a[op.I1:op.I2] {
				line(colorize("-"+s, red))
			}
			for _, s := range b[op.J1:op.J2] {
				line(colorize("+"+s, green))
			}
		}
	}
	return out.String()
}

// unifiedRange formats a half-open 0-based range as "start,length" with 1-based start. A single line omits the length; an empty range starts
// at the line before it.
func unifiedRange(start, stop int) string {
	beginning := start + 1
	length := stop - start
	if length == 1 {
		return fmt.Sprintf("%d", beginning)
	}
	if length == 0 {
		beginning--
	}
	return fmt.Sprintf("%d,%d", beginning, length)
}
