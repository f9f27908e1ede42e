package matchers

import "github.com/codalotl/panediff/internal/q/uni"

// Inline aligns two lines grapheme by grapheme and returns opcodes whose ranges are byte offsets into a and b, never splitting a grapheme
// cluster. Element discarding uses 3-grams, which suits characters better than whole-element membership.
func Inline(a, b string, opts Options) []Opcode {
	sa, sb := uni.Segments(a), uni.Segments(b)
	ga, gb := texts(sa), texts(sb)

	m := NewMatcher(ga, gb, opts)
	m.kmers = true

	ops := m.Opcodes()
	out := make([]Opcode, len(ops))
	for i, op := range ops {
		out[i] = Opcode{
			Tag: op.Tag,
			I1:  byteOffset(sa, op.I1, len(a)),
			I2:  byteOffset(sa, op.I2, len(a)),
			J1:  byteOffset(sb, op.J1, len(b)),
			J2:  byteOffset(sb, op.J2, len(b)),
		}
	}
	return out
}

func texts(segs []uni.Segment) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = s.Text
	}
	return out
}

func byteOffset(segs []uni.Segment, i, total int) int {
	if i >= len(segs) {
		return total
	}
	return segs[i].Start
}
