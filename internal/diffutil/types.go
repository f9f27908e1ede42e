package diffutil

import "github.com/codalotl/panediff/internal/matchers"

// Text is a read-only view of a pane's lines, 0-indexed, without line terminators.
type Text interface {
	LineCount() int
	Line(i int) string
}

// Lines adapts a slice of lines to Text.
type Lines []string

func (l Lines) LineCount() int    { return len(l) }
func (l Lines) Line(i int) string { return l[i] }

func materialize(t Text) []string {
	n := t.LineCount()
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = t.Line(i)
	}
	return out
}

// Side is one half of a Chunk. When Present, the embedded opcode has the middle pane on its A side.
type Side struct {
	matchers.Opcode
	Present bool
}

// Chunk is one merged change. Index 0 relates the middle pane to pane 0, index 1 relates it to pane 2. In two-way mode index 1 is never
// present.
type Chunk [2]Side

// IsConflict reports whether either half is tagged Conflict.
func (c Chunk) IsConflict() bool {
	return (c[0].Present && c[0].Tag == matchers.Conflict) || (c[1].Present && c[1].Tag == matchers.Conflict)
}

// NoChunk marks an absent chunk index in LineInfo.
const NoChunk = -1

// LineInfo describes a line of one pane: the chunk containing it and the nearest chunks before and after it that involve the pane. Each field
// is NoChunk when absent.
type LineInfo struct {
	Chunk int
	Prev  int
	Next  int
}

var noLine = LineInfo{Chunk: NoChunk, Prev: NoChunk, Next: NoChunk}

// ChangeSet lists the chunks that appeared and disappeared in one mutation. Chunks unaffected by an edit, other than being shifted by it, are
// not reported.
type ChangeSet struct {
	Removed []Chunk
	Added   []Chunk
}

// Window restricts PairChanges to line ranges: From applies to the from-pane, To to the to-pane. An opcode is kept if it touches either range.
type Window struct {
	From [2]int
	To   [2]int
}

// ReverseChunk swaps the sides of op, turning a middle-relative opcode into one relative to the outer pane.
func ReverseChunk(op matchers.Opcode) matchers.Opcode {
	return op.Reverse()
}
