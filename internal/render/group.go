package render

import "github.com/codalotl/panediff/internal/matchers"

// GroupOpcodes splits ops into hunks with up to n lines of context around each change. Equal runs longer than 2n split hunks. A negative n
// means 3. Groups consisting only of an equal opcode are dropped, so identical inputs produce no groups.
func GroupOpcodes(ops []matchers.Opcode, n int) [][]matchers.Opcode {
	if n < 0 {
		n = 3
	}
	codes := append([]matchers.Opcode(nil), ops...)
	if len(codes) == 0 {
		codes = []matchers.Opcode{{Tag: matchers.Equal, I1: 0, I2: 1, J1: 0, J2: 1}}
	}
	if c := codes[0]; c.Tag == matchers.Equal {
		codes[0] = matchers.Opcode{Tag: c.Tag, I1: max(c.I1, c.I2-n), I2: c.I2, J1: max(c.J1, c.J2-n), J2: c.J2}
	}
	if c := codes[len(codes)-1]; c.Tag == matchers.Equal {
		codes[len(codes)-1] = matchers.Opcode{Tag: c.Tag, I1: c.I1, I2: min(c.I2, c.I1+n), J1: c.J1, J2: min(c.J2, c.J1+n)}
	}

	var groups [][]matchers.Opcode
	var group []matchers.Opcode
	for _, c := range codes {
		i1, j1 := c.I1, c.J1
		if c.Tag == matchers.Equal && c.I2-c.I1 > 2*n {
			group = append(group, matchers.Opcode{Tag: c.Tag, I1: i1, I2: min(c.I2, i1+n), J1: j1, J2: min(c.J2, j1+n)})
			groups = append(groups, group)
			group = nil
			i1, j1 = max(i1, c.I2-n), max(j1, c.J2-n)
		}
		group = append(group, matchers.Opcode{Tag: c.Tag, I1: i1, I2: c.I2, J1: j1, J2: c.J2})
	}
	if len(group) > 0 && !(len(group) == 1 && group[0].Tag == matchers.Equal) {
		groups = append(groups, group)
	}
	return groups
}
