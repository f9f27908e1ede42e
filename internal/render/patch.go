package render

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/codalotl/panediff/internal/matchers"
)

// Patch renders ops as diff-match-patch patch text. Lines are treated as "\n"-terminated, so applying the patch to a's lines joined with a
// trailing "\n" yields b's lines joined the same way.
func Patch(a, b []string, ops []matchers.Opcode) string {
	dmp := diffmatchpatch.New()
	patches := dmp.PatchMake(joinLines(a), Diffs(a, b, ops))
	return dmp.PatchToText(patches)
}

// Diffs converts line opcodes to diff-match-patch diffs over "\n"-terminated text. Adjacent diffs of the same type are merged.
func Diffs(a, b []string, ops []matchers.Opcode) []diffmatchpatch.Diff {
	var out []diffmatchpatch.Diff
	add := func(t diffmatchpatch.Operation, lines []string) {
		if len(lines) == 0 {
			return
		}
		text := joinLines(lines)
		if n := len(out); n > 0 && out[n-1].Type == t {
			out[n-1].Text += text
			return
		}
		out = append(out, diffmatchpatch.Diff{Type: t, Text: text})
	}
	for _, op := range ops {
		if op.Tag == matchers.Equal {
			add(diffmatchpatch.DiffEqual, a[op.I1:op.I2])
			continue
		}
		add(diffmatchpatch.DiffDelete, a[op.I1:op.I2])
		add(diffmatchpatch.DiffInsert, b[op.J1:op.J2])
	}
	return out
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
