package diffutil

import (
	"fmt"

	"github.com/codalotl/panediff/internal/matchers"
)

// mergeDiffs combines the two streams in middle-line order. Opcodes that overlap on the middle pane are grouped (transitively); opcodes that
// merely touch stay separate unless both are inserts at the same line.
func mergeDiffs(seq0, seq1 []matchers.Opcode, texts []Text) []Chunk {
	seqs := [2][]matchers.Opcode{seq0, seq1}
	var out []Chunk
	for len(seqs[0]) > 0 || len(seqs[1]) > 0 {
		var high int
		switch {
		case len(seqs[0]) == 0:
			high = 1
		case len(seqs[1]) == 0:
			high = 0
		default:
			a, b := seqs[0][0], seqs[1][0]
			if a.I1 > b.I1 {
				high = 1
			}
			if a.I1 == b.I1 {
				if a.Tag == matchers.Insert {
					high = 0
				} else if b.Tag == matchers.Insert {
					high = 1
				}
			}
		}

		highDiff := seqs[high][0]
		seqs[high] = seqs[high][1:]
		highMark := highDiff.I2
		other := 1 - high

		var using [2][]matchers.Opcode
		using[high] = append(using[high], highDiff)

		for len(seqs[other]) > 0 {
			otherDiff := seqs[other][0]
			if highMark < otherDiff.I1 {
				break
			}
			if highMark == otherDiff.I1 && !(highDiff.Tag == matchers.Insert && otherDiff.Tag == matchers.Insert) {
				break
			}
			using[other] = append(using[other], otherDiff)
			seqs[other] = seqs[other][1:]

			if highMark < otherDiff.I2 {
				high, other = other, high
				highMark = otherDiff.I2
				highDiff = otherDiff
			}
		}

		switch {
		case len(using[0]) == 0:
			out = append(out, Chunk{{}, {Opcode: using[1][0], Present: true}})
		case len(using[1]) == 0:
			out = append(out, Chunk{{Opcode: using[0][0], Present: true}, {}})
		default:
			out = append(out, autoMerge(using, texts))
		}
	}
	return out
}

// autoMerge classifies a group with contributions from both streams. It is a clean change only when each stream contributed one opcode and both
// outer panes ended up with identical lines; otherwise both halves are Conflict.
func autoMerge(using [2][]matchers.Opcode, texts []Text) Chunk {
	first0, first1 := using[0][0], using[1][0]
	last0, last1 := using[0][len(using[0])-1], using[1][len(using[1])-1]

	lowc := min(first0.I1, first1.I1)
	highc := max(last0.I2, last1.I2)
	l0 := lowc - first0.I1 + first0.J1
	h0 := highc - last0.I2 + last0.J2
	l2 := lowc - first1.I1 + first1.J1
	h2 := highc - last1.I2 + last1.J2

	tag := matchers.Conflict
	if len(using[0]) == 1 && len(using[1]) == 1 && h0-l0 == h2-l2 && sameLines(texts[0], l0, texts[2], l2, h0-l0) {
		switch {
		case lowc != highc && l0 == h0:
			tag = matchers.Delete
		case lowc != highc:
			tag = matchers.Replace
		default:
			tag = matchers.Insert
		}
	}
	return Chunk{
		{Opcode: matchers.Opcode{Tag: tag, I1: lowc, I2: highc, J1: l0, J2: h0}, Present: true},
		{Opcode: matchers.Opcode{Tag: tag, I1: lowc, I2: highc, J1: l2, J2: h2}, Present: true},
	}
}

func sameLines(a Text, i int, b Text, j int, n int) bool {
	for k := 0; k < n; k++ {
		if a.Line(i+k) != b.Line(j+k) {
			return false
		}
	}
	return true
}

// ConsumeBlankLines shrinks both ranges of side to exclude leading and trailing blank lines (texts[pane1] is the A side, texts[pane2] the B
// side). It returns an absent Side when only blank lines remain on both sides; a Replace becomes an Insert or Delete when one side empties.
func ConsumeBlankLines(side Side, texts []Text, pane1, pane2 int) Side {
	if !side.Present {
		return side
	}
	c1, c2 := trimBlank(texts[pane1], side.I1, side.I2)
	c3, c4 := trimBlank(texts[pane2], side.J1, side.J2)
	if c1 == c2 && c3 == c4 {
		return Side{}
	}
	tag := side.Tag
	if c1 == c2 && tag == matchers.Replace {
		tag = matchers.Insert
	} else if c3 == c4 && tag == matchers.Replace {
		tag = matchers.Delete
	}
	return Side{Opcode: matchers.Opcode{Tag: tag, I1: c1, I2: c2, J1: c3, J2: c4}, Present: true}
}

func trimBlank(t Text, lo, hi int) (int, int) {
	for lo < hi && t.Line(lo) == "" {
		lo++
	}
	for lo < hi && t.Line(hi-1) == "" {
		hi--
	}
	return lo, hi
}

// updateMergeCache rebuilds chunks, conflicts, mergeability, and line caches from the streams, then notifies listeners of the difference
// against expected (the previous chunks, already shifted for any edit).
func (d *Differ) updateMergeCache(texts []Text, expected []Chunk) {
	d.texts = texts

	var chunks []Chunk
	if d.seqCount == 3 {
		chunks = mergeDiffs(d.diffs[0], d.diffs[1], texts)
	} else {
		for _, op := range d.diffs[0] {
			chunks = append(chunks, Chunk{{Opcode: op, Present: true}, {}})
		}
	}

	if d.ignoreBlanks {
		kept := chunks[:0]
		for _, c := range chunks {
			c[0] = ConsumeBlankLines(c[0], texts, 1, 0)
			if d.seqCount == 3 {
				c[1] = ConsumeBlankLines(c[1], texts, 1, 2)
			}
			if c[0].Present || c[1].Present {
				kept = append(kept, c)
			}
		}
		chunks = kept
	}
	d.chunks = chunks

	d.conflicts = nil
	var m0, m1 bool
	for i, c := range chunks {
		if c.IsConflict() {
			d.conflicts = append(d.conflicts, i)
		}
		m0 = m0 || (c[0].Present && c[0].Tag != matchers.Conflict)
		m1 = m1 || (c[1].Present && c[1].Tag != matchers.Conflict)
	}
	d.mergeable = [4]bool{false, m0, m1, false}

	d.updateLineCache()
	d.emit(diffChunks(expected, chunks))
}

// updateLineCache fills, for every pane, one LineInfo per line plus one for the position after the last line.
func (d *Differ) updateLineCache() {
	for pane := 0; pane < 3; pane++ {
		d.lineCache[pane] = nil
		if pane >= d.seqCount {
			continue
		}
		cache := make([]LineInfo, d.seqLength[pane]+1)
		for i := range cache {
			cache[i] = noLine
		}
		d.lineCache[pane] = cache
	}

	last := len(d.chunks)
	findNext := func(stream, pane, current int) int {
		if pane == 1 {
			if current+1 < last {
				return current + 1
			}
			return NoChunk
		}
		for j := current + 1; j < last; j++ {
			if d.chunks[j][stream].Present {
				return j
			}
		}
		return NoChunk
	}
	fill := func(pane, from, to int, info LineInfo) {
		cache := d.lineCache[pane]
		to = min(to, len(cache))
		for i := max(from, 0); i < to; i++ {
			cache[i] = info
		}
	}

	type param struct {
		stream int
		pane   int
		middle bool // read the A (middle) range of the opcode rather than B
	}
	params := []param{{0, 0, false}, {0, 1, true}, {1, 2, false}}

	prev := [3]int{NoChunk, NoChunk, NoChunk}
	next := [3]int{findNext(0, 0, -1), findNext(0, 1, -1), findNext(1, 2, -1)}
	oldEnd := [3]int{}

	for i, c := range d.chunks {
		for _, p := range params {
			if p.pane >= d.seqCount {
				continue
			}
			stream := p.stream
			if !c[stream].Present {
				if p.pane != 1 {
					continue
				}
				stream = 1
			}
			op := c[stream].Opcode
			start, end := op.J1, op.J2
			if p.middle {
				start, end = op.I1, op.I2
			}
			if start > oldEnd[p.pane] {
				fill(p.pane, oldEnd[p.pane], start, LineInfo{Chunk: NoChunk, Prev: prev[p.pane], Next: next[p.pane]})
			}
			// Inserts claim the following line so lookups at the insertion point find them.
			if start == end {
				end++
			}
			next[p.pane] = findNext(stream, p.pane, i)
			fill(p.pane, start, end, LineInfo{Chunk: i, Prev: prev[p.pane], Next: next[p.pane]})
			prev[p.pane] = i
			oldEnd[p.pane] = end
		}
	}

	for pane := 0; pane < d.seqCount; pane++ {
		fill(pane, oldEnd[pane], len(d.lineCache[pane]), LineInfo{Chunk: NoChunk, Prev: prev[pane], Next: next[pane]})
	}
}

// diffChunks returns the chunks of old missing from cur and of cur missing from old, counting duplicates.
func diffChunks(old, cur []Chunk) ChangeSet {
	count := make(map[Chunk]int, len(old))
	for _, c := range old {
		count[c]++
	}
	var cs ChangeSet
	for _, c := range cur {
		if count[c] > 0 {
			count[c]--
			continue
		}
		cs.Added = append(cs.Added, c)
	}
	for _, c := range old {
		if count[c] > 0 {
			count[c]--
			cs.Removed = append(cs.Removed, c)
		}
	}
	return cs
}

// ChangeSequence updates d after sizeDelta lines were inserted (positive) or removed (negative) at startLine of pane; texts must already hold
// the edited contents. Only the window between the chunks surrounding the edit is re-diffed. It panics if d is not initialised.
func (d *Differ) ChangeSequence(pane, startLine, sizeDelta int, texts []Text) {
	if !d.initialised {
		panic("diffutil: ChangeSequence before SetSequences completed")
	}
	if pane < 0 || pane >= d.seqCount {
		panic(fmt.Sprintf("diffutil: pane %d out of range", pane))
	}

	if pane == 0 || pane == 1 {
		d.changeStream(0, pane, startLine, sizeDelta, texts)
	}
	if pane == 2 || (pane == 1 && d.seqCount == 3) {
		d.changeStream(1, pane, startLine, sizeDelta, texts)
	}
	d.seqLength[pane] += sizeDelta

	expected := make([]Chunk, 0, len(d.chunks))
	for _, c := range d.chunks {
		switch pane {
		case 0:
			c[0] = shiftSide(c[0], startLine, 0, sizeDelta)
		case 2:
			c[1] = shiftSide(c[1], startLine, 0, sizeDelta)
		default:
			c[0] = shiftSide(c[0], startLine, sizeDelta, 0)
			c[1] = shiftSide(c[1], startLine, sizeDelta, 0)
		}
		expected = append(expected, c)
	}
	d.updateMergeCache(texts, expected)
}

// shiftSide moves every boundary of s that lies after start by da (A side) or db (B side).
func shiftSide(s Side, start, da, db int) Side {
	if !s.Present {
		return s
	}
	shift := func(v, by int) int {
		if v > start {
			return v + by
		}
		return v
	}
	s.I1, s.I2 = shift(s.I1, da), shift(s.I2, da)
	s.J1, s.J2 = shift(s.J1, db), shift(s.J2, db)
	return s
}

// locate returns the index of the first opcode of stream ending after line (on the middle pane if middle, else on the outer pane).
func (d *Differ) locate(stream int, middle bool, line int) int {
	for i, op := range d.diffs[stream] {
		end := op.J2
		if middle {
			end = op.I2
		}
		if line < end {
			return i
		}
	}
	return len(d.diffs[stream])
}

func (d *Differ) changeStream(stream, pane, startLine, sizeDelta int, texts []Text) {
	diffs := d.diffs[stream]
	var added [3]int
	added[pane] = sizeDelta
	middle := pane == 1
	outer := stream * 2

	lo := d.locate(stream, middle, startLine)
	hi := lo
	if sizeDelta < 0 {
		hi = d.locate(stream, middle, startLine-sizeDelta)
	}

	loOuter, loMiddle := 0, 0
	if lo > 0 {
		lo--
		loOuter, loMiddle = diffs[lo].J1, diffs[lo].I1
	}
	hiOuter, hiMiddle := d.seqLength[outer], d.seqLength[1]
	if hi < len(diffs) {
		hi++
		hiOuter, hiMiddle = diffs[hi-1].J2, diffs[hi-1].I2
	}
	hiOuter += added[outer]
	hiMiddle += added[1]

	outerLines := window(texts[outer], loOuter, hiOuter)
	middleLines := window(texts[1], loMiddle, hiMiddle)
	fresh := matchers.NewMatcher(middleLines, outerLines, d.opts).DifferenceOpcodes()

	spliced := make([]matchers.Opcode, 0, len(diffs)-(hi-lo)+len(fresh))
	spliced = append(spliced, diffs[:lo]...)
	for _, op := range fresh {
		spliced = append(spliced, op.Shift(loMiddle, loOuter))
	}
	for _, op := range diffs[hi:] {
		spliced = append(spliced, op.Shift(added[1], added[outer]))
	}
	d.diffs[stream] = spliced
}

func window(t Text, lo, hi int) []string {
	out := make([]string, 0, max(hi-lo, 0))
	for i := lo; i < hi; i++ {
		out = append(out, t.Line(i))
	}
	return out
}
