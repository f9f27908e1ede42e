package render

import (
	"fmt"
	"strings"

	"github.com/codalotl/panediff/internal/diffutil"
)

// Merge3 summarizes the chunks of a three-way comparison of left, base and right, one line per chunk:
//
//	<marker> 1:<range><cmd> 2:<range><cmd> 3:<range><cmd> <left tag>/<right tag>
//
// The marker names the odd text out, diff3 style: "====1" when only left changed, "====3" when only right changed, "====2" when both made the
// same change, and "====" for a conflict. Ranges are 1-based "start,end" (a single number for one line); cmd is "c" for a non-empty range
// and "a" for an empty one, whose number is the line it follows. An absent half is shown as "-".
func Merge3(chunks []diffutil.Chunk) string {
	var out strings.Builder
	var delta [2]int // outer minus base line offset after the previous chunk, per side

	for _, c := range chunks {
		lo, hi := baseRange(c)
		var ranges [3][2]int
		ranges[1] = [2]int{lo, hi}
		for s, side := range c {
			pane := s * 2
			if !side.Present {
				ranges[pane] = [2]int{lo + delta[s], hi + delta[s]}
				continue
			}
			ranges[pane] = [2]int{side.J1 - (side.I1 - lo), side.J2 + (hi - side.I2)}
			delta[s] += (side.J2 - side.J1) - (side.I2 - side.I1)
		}

		marker := "===="
		switch {
		case c.IsConflict():
		case c[0].Present && c[1].Present:
			marker = "====2"
		case c[0].Present:
			marker = "====1"
		case c[1].Present:
			marker = "====3"
		}

		out.WriteString(marker)
		for pane, r := range ranges {
			fmt.Fprintf(&out, " %d:%s", pane+1, diff3Range(r[0], r[1]))
		}
		fmt.Fprintf(&out, " %s/%s\n", sideTag(c[0]), sideTag(c[1]))
	}
	return out.String()
}

// baseRange is the span of base lines covered by either half of c.
func baseRange(c diffutil.Chunk) (int, int) {
	lo, hi := -1, -1
	for _, side := range c {
		if !side.Present {
			continue
		}
		if lo < 0 || side.I1 < lo {
			lo = side.I1
		}
		if hi < 0 || side.I2 > hi {
			hi = side.I2
		}
	}
	return max(lo, 0), max(hi, 0)
}

func diff3Range(lo, hi int) string {
	switch hi - lo {
	case 0:
		return fmt.Sprintf("%da", lo)
	case 1:
		return fmt.Sprintf("%dc", lo+1)
	}
	return fmt.Sprintf("%d,%dc", lo+1, hi)
}

func sideTag(s diffutil.Side) string {
	if !s.Present {
		return "-"
	}
	return s.Tag.String()
}
