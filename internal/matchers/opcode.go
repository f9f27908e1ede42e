package matchers

import "fmt"

// Tag classifies an Opcode.
type Tag int

const (
	Equal Tag = iota
	Replace
	Insert
	Delete
	Conflict // only produced by three-way merging
)

func (t Tag) String() string {
	switch t {
	case Equal:
		return "equal"
	case Replace:
		return "replace"
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	case Conflict:
		return "conflict"
	}
	return fmt.Sprintf("Tag(%d)", int(t))
}

// Reverse returns the tag describing the same edit read from the other side: Insert and Delete swap, everything else is unchanged.
func (t Tag) Reverse() Tag {
	switch t {
	case Insert:
		return Delete
	case Delete:
		return Insert
	}
	return t
}

// Opcode describes how A[I1:I2] relates to B[J1:J2].
type Opcode struct {
	Tag    Tag
	I1, I2 int
	J1, J2 int
}

// Reverse swaps the A and B sides.
func (o Opcode) Reverse() Opcode {
	return Opcode{Tag: o.Tag.Reverse(), I1: o.J1, I2: o.J2, J1: o.I1, J2: o.I2}
}

// Empty reports whether both ranges are empty.
func (o Opcode) Empty() bool {
	return o.I1 == o.I2 && o.J1 == o.J2
}

// Shift returns o with di added to the A range and dj added to the B range.
func (o Opcode) Shift(di, dj int) Opcode {
	return Opcode{Tag: o.Tag, I1: o.I1 + di, I2: o.I2 + di, J1: o.J1 + dj, J2: o.J2 + dj}
}

func (o Opcode) String() string {
	return fmt.Sprintf("%s %d..%d/%d..%d", o.Tag, o.I1, o.I2, o.J1, o.J2)
}

// Block is a run of Size equal elements starting at A in the first sequence and B in the second.
type Block struct {
	A, B, Size int
}

// SyncPoint forces A-index A to correspond to B-index B.
type SyncPoint struct {
	A, B int
}

// OpcodesFromBlocks converts matching blocks (terminated by a zero-size sentinel) into opcodes covering both sequences. Equal opcodes from adjacent
// blocks are not merged.
func OpcodesFromBlocks(blocks []Block) []Opcode {
	var ops []Opcode
	i, j := 0, 0
	for _, b := range blocks {
		switch {
		case i < b.A && j < b.B:
			ops = append(ops, Opcode{Replace, i, b.A, j, b.B})
		case i < b.A:
			ops = append(ops, Opcode{Delete, i, b.A, j, b.B})
		case j < b.B:
			ops = append(ops, Opcode{Insert, i, b.A, j, b.B})
		}
		i, j = b.A+b.Size, b.B+b.Size
		if b.Size > 0 {
			ops = append(ops, Opcode{Equal, b.A, i, b.B, j})
		}
	}
	return ops
}

// Differences filters out Equal opcodes.
func Differences(ops []Opcode) []Opcode {
	var out []Opcode
	for _, op := range ops {
		if op.Tag != Equal {
			out = append(out, op)
		}
	}
	return out
}

// Fill is the inverse of Differences: it returns diffs with Equal opcodes inserted in the gaps between them and after the last one, so the
// result covers sequences of lengths lenA and lenB. diffs must be ordered and describe sequences whose unchanged runs have equal lengths.
func Fill(diffs []Opcode, lenA, lenB int) []Opcode {
	var out []Opcode
	i, j := 0, 0
	for _, op := range diffs {
		if op.I1 > i {
			out = append(out, Opcode{Equal, i, op.I1, j, op.J1})
		}
		out = append(out, op)
		i, j = op.I2, op.J2
	}
	if i < lenA || j < lenB {
		out = append(out, Opcode{Equal, i, lenA, j, lenB})
	}
	return out
}

// Validate checks that ops describe a and b: the opcodes are contiguous and cover both sequences, tags agree with which sides are empty, and Equal
// ranges really are equal. It returns the first violation.
func Validate[T comparable](ops []Opcode, a, b []T) error {
	i, j := 0, 0
	for k, op := range ops {
		if op.I1 != i || op.J1 != j {
			return fmt.Errorf("opcode[%d] %v: expected to start at %d/%d", k, op, i, j)
		}
		if op.I2 < op.I1 || op.J2 < op.J1 {
			return fmt.Errorf("opcode[%d] %v: negative range", k, op)
		}
		if op.I2 > len(a) || op.J2 > len(b) {
			return fmt.Errorf("opcode[%d] %v: out of bounds (%d, %d)", k, op, len(a), len(b))
		}
		na, nb := op.I2-op.I1, op.J2-op.J1
		switch op.Tag {
		case Equal:
			if na != nb || na == 0 {
				return fmt.Errorf("opcode[%d] %v: equal requires same non-zero length", k, op)
			}
			for x := 0; x < na; x++ {
				if a[op.I1+x] != b[op.J1+x] {
					return fmt.Errorf("opcode[%d] %v: elements %d/%d differ", k, op, op.I1+x, op.J1+x)
				}
			}
		case Replace:
			if na == 0 || nb == 0 {
				return fmt.Errorf("opcode[%d] %v: replace requires both sides non-empty", k, op)
			}
		case Delete:
			if na == 0 || nb != 0 {
				return fmt.Errorf("opcode[%d] %v: delete requires only A non-empty", k, op)
			}
		case Insert:
			if na != 0 || nb == 0 {
				return fmt.Errorf("opcode[%d] %v: insert requires only B non-empty", k, op)
			}
		default:
			return fmt.Errorf("opcode[%d] %v: unexpected tag", k, op)
		}
		i, j = op.I2, op.J2
	}
	if i != len(a) || j != len(b) {
		return fmt.Errorf("opcodes end at %d/%d, want %d/%d", i, j, len(a), len(b))
	}
	return nil
}

// Apply replays ops on a, taking inserted and replacing elements from b. For valid ops, Apply(ops, a, b) equals b.
func Apply[T comparable](ops []Opcode, a, b []T) []T {
	out := make([]T, 0, len(b))
	for _, op := range ops {
		switch op.Tag {
		case Equal:
			out = append(out, a[op.I1:op.I2]...)
		case Insert, Replace:
			out = append(out, b[op.J1:op.J2]...)
		}
	}
	return out
}
