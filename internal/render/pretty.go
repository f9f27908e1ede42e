package render

import (
	"fmt"
	"strings"

	"github.com/codalotl/panediff/internal/matchers"
)

const (
	blackFG   = "\x1b[30m"
	pinkLine  = "\x1b[48;5;224m" // deleted lines
	pinkSpan  = "\x1b[48;5;217m" // deleted graphemes
	greenLine = "\x1b[48;5;194m" // added lines
	greenSpan = "\x1b[48;5;114m" // added graphemes
)

// Pretty renders ops as colorized lines without hunk headers. Context lines start with " ", removed lines with "-" and added lines with "+".
// Replaced lines are paired in order and each pair is shown as a "-" line followed by a "+" line, with the changed graphemes (matched using
// inline) highlighted; unpaired lines are plain deletions or insertions.
//
// If fromName or toName is set, a header line comes first:
//   - "add <to>:" when only toName is set
//   - "delete <from>:" when only fromName is set
//   - "<name>:" when both are equal
//   - "<from> -> <to>:" otherwise
//
// Lines are joined with "\n" with no trailing newline. Without changes or names the result is "".
func Pretty(a, b []string, ops []matchers.Opcode, fromName, toName string, context int, inline matchers.Options) string {
	var out []string

	if fromName != "" || toName != "" {
		var header string
		switch {
		case fromName == "":
			header = fmt.Sprintf("add %s:", toName)
		case toName == "":
			header = fmt.Sprintf("delete %s:", fromName)
		case fromName == toName:
			header = fmt.Sprintf("%s:", fromName)
		default:
			header = fmt.Sprintf("%s -> %s:", fromName, toName)
		}
		out = append(out, cyanBold+header+reset)
	}

	for _, g := range GroupOpcodes(ops, context) {
		for _, op := range g {
			switch op.Tag {
			case matchers.Equal:
				for _, s := range a[op.I1:op.I2] {
					out = append(out, blackFG+" "+s+reset)
				}
				continue
			}

			del, ins := a[op.I1:op.I2], b[op.J1:op.J2]
			n := min(len(del), len(ins))
			for k := 0; k < n; k++ {
				if del[k] == ins[k] {
					out = append(out, blackFG+" "+del[k]+reset)
					continue
				}
				spans := matchers.Inline(del[k], ins[k], inline)
				out = append(out, blackFG+pinkLine+"-"+highlight(del[k], spans, false)+reset)
				out = append(out, blackFG+greenLine+"+"+highlight(ins[k], spans, true)+reset)
			}
			for _, s := range del[n:] {
				out = append(out, blackFG+pinkLine+"-"+emphasize(s, pinkSpan, pinkLine)+reset)
			}
			for _, s := range ins[n:] {
				out = append(out, blackFG+greenLine+"+"+emphasize(s, greenSpan, greenLine)+reset)
			}
		}
	}
	return strings.Join(out, "\n")
}

// highlight renders one side of an inline diff. spans are byte opcodes from the old line (A) to the new line (B); added selects the B side.
func highlight(line string, spans []matchers.Opcode, added bool) string {
	var b strings.Builder
	for _, sp := range spans {
		lo, hi := sp.I1, sp.I2
		if added {
			lo, hi = sp.J1, sp.J2
		}
		switch {
		case sp.Tag == matchers.Equal:
			b.WriteString(line[lo:hi])
		case lo == hi:
			// Nothing on this side.
		case added:
			b.WriteString(emphasize(line[lo:hi], greenSpan, greenLine))
		default:
			b.WriteString(emphasize(line[lo:hi], pinkSpan, pinkLine))
		}
	}
	return b.String()
}

// emphasize wraps s in span and restores the line background after it.
func emphasize(s, span, line string) string {
	if s == "" {
		return ""
	}
	return reset + blackFG + span + s + reset + blackFG + line
}
