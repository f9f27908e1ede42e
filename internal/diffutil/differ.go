package diffutil

import (
	"fmt"
	"iter"

	"github.com/codalotl/panediff/internal/matchers"
)

// Options configure a Differ.
type Options struct {
	Matcher      matchers.Options // used for every stream and every incremental re-diff
	IgnoreBlanks bool             // shrink chunks to exclude blank lines, dropping chunks that only touch blank lines
}

// Differ tracks the differences between two or three texts. It is not safe for concurrent use.
type Differ struct {
	opts         matchers.Options
	ignoreBlanks bool

	seqCount    int
	seqLength   [3]int
	diffs       [2][]matchers.Opcode
	syncPoints  [2][]matchers.SyncPoint
	chunks      []Chunk
	lineCache   [3][]LineInfo
	conflicts   []int
	mergeable   [4]bool
	initialised bool

	texts     []Text
	listeners []func(ChangeSet)
}

// NewDiffer returns an uninitialised Differ.
func NewDiffer(opts Options) *Differ {
	return &Differ{opts: opts.Matcher, ignoreBlanks: opts.IgnoreBlanks}
}

// OnDiffsChanged registers fn to be called after every mutation (SetSequences, ChangeSequence, Clear, SetIgnoreBlanks).
func (d *Differ) OnDiffsChanged(fn func(ChangeSet)) {
	d.listeners = append(d.listeners, fn)
}

// SetSyncPoints pins correspondences for stream (0: middle and pane 0, 1: middle and pane 2). Each point's A is a middle line and B an
// outer line. They apply to the next SetSequences; incremental re-diffs ignore them.
func (d *Differ) SetSyncPoints(stream int, points []matchers.SyncPoint) {
	checkStream(stream)
	d.syncPoints[stream] = append([]matchers.SyncPoint(nil), points...)
}

// SetIgnoreBlanks changes blank-line handling. An initialised Differ rebuilds its chunks from the existing streams without re-diffing.
func (d *Differ) SetIgnoreBlanks(v bool) {
	if d.ignoreBlanks == v {
		return
	}
	d.ignoreBlanks = v
	if d.initialised {
		d.updateMergeCache(d.texts, d.chunks)
	}
}

// IgnoreBlanks reports the current blank-line handling.
func (d *Differ) IgnoreBlanks() bool {
	return d.ignoreBlanks
}

func checkStream(stream int) {
	if stream != 0 && stream != 1 {
		panic(fmt.Sprintf("diffutil: stream %d out of range", stream))
	}
}

// SetSequencesTask returns a resumable task that diffs texts (2 or 3 panes; pane 1 is the middle) and initialises d. Each Step advances one
// stream's search by one frontier level. The Differ is uninitialised until the task finishes.
func (d *Differ) SetSequencesTask(texts []Text) *SetSequencesTask {
	if len(texts) != 2 && len(texts) != 3 {
		panic(fmt.Sprintf("diffutil: %d sequences, want 2 or 3", len(texts)))
	}
	d.initialised = false
	d.diffs = [2][]matchers.Opcode{}
	d.seqCount = len(texts)
	d.seqLength = [3]int{}
	for i, t := range texts {
		d.seqLength[i] = t.LineCount()
	}
	return &SetSequencesTask{d: d, texts: texts}
}

// SetSequences diffs texts to completion.
func (d *Differ) SetSequences(texts []Text) {
	t := d.SetSequencesTask(texts)
	for {
		if more, _ := t.Step(); !more {
			return
		}
	}
}

type stepper interface {
	Step() (bool, error)
	DifferenceOpcodes() []matchers.Opcode
}

// SetSequencesTask is the resumable form of Differ.SetSequences. It satisfies task.Task.
type SetSequencesTask struct {
	d      *Differ
	texts  []Text
	stream int
	m      stepper
	done   bool
}

// Step advances the diff. It returns false once the Differ is initialised.
func (t *SetSequencesTask) Step() (bool, error) {
	if t.done {
		return false, nil
	}
	d := t.d
	if t.stream < d.seqCount-1 {
		if t.m == nil {
			middle := materialize(t.texts[1])
			outer := materialize(t.texts[t.stream*2])
			if pts := d.syncPoints[t.stream]; len(pts) > 0 {
				t.m = matchers.NewSyncMatcher(middle, outer, pts, d.opts)
			} else {
				t.m = matchers.NewMatcher(middle, outer, d.opts)
			}
		}
		more, err := t.m.Step()
		if err != nil {
			return false, err
		}
		if !more {
			d.diffs[t.stream] = t.m.DifferenceOpcodes()
			t.m = nil
			t.stream++
		}
		return true, nil
	}

	t.done = true
	d.initialised = true
	old := d.chunks
	d.chunks = nil
	d.updateMergeCache(t.texts, old)
	return false, nil
}

// Clear returns d to the uninitialised state with zero lengths.
func (d *Differ) Clear() {
	old := d.chunks
	d.diffs = [2][]matchers.Opcode{}
	d.seqCount = 0
	d.seqLength = [3]int{}
	d.chunks = nil
	d.lineCache = [3][]LineInfo{}
	d.conflicts = nil
	d.mergeable = [4]bool{}
	d.initialised = false
	d.texts = nil
	d.emit(diffChunks(old, nil))
}

// Initialised reports whether SetSequences has completed since the last Clear.
func (d *Differ) Initialised() bool {
	return d.initialised
}

// SeqCount returns the number of panes (0 when never set).
func (d *Differ) SeqCount() int {
	return d.seqCount
}

// SeqLength returns the number of lines the Differ believes pane has.
func (d *Differ) SeqLength(pane int) int {
	return d.seqLength[pane]
}

// DiffCount returns the number of chunks.
func (d *Differ) DiffCount() int {
	return len(d.chunks)
}

// Chunks returns the merged chunks. The slice must not be modified.
func (d *Differ) Chunks() []Chunk {
	return d.chunks
}

// Conflicts returns the indices of conflicting chunks.
func (d *Differ) Conflicts() []int {
	return d.conflicts
}

// Streams returns the raw difference opcodes of both streams (middle on the A side).
func (d *Differ) Streams() [2][]matchers.Opcode {
	return d.diffs
}

// SequencesIdentical reports whether d is initialised and found no differences at all.
func (d *Differ) SequencesIdentical() bool {
	return d.initialised && len(d.diffs[0]) == 0 && len(d.diffs[1]) == 0
}

// GetChunk returns chunk index as seen from fromPane: with fromPane on the A side, reversed when fromPane is an outer pane. toPane selects the
// stream for the middle pane; pass a negative toPane to take whichever half is present. The bool is false if the selected half is absent.
func (d *Differ) GetChunk(index, fromPane, toPane int) (matchers.Opcode, bool) {
	stream := 0
	if fromPane == 2 || toPane == 2 {
		stream = 1
	}
	side := d.chunks[index][stream]
	if fromPane == 0 || fromPane == 2 {
		if !side.Present {
			return matchers.Opcode{}, false
		}
		return ReverseChunk(side.Opcode), true
	}
	if toPane < 0 && !side.Present {
		side = d.chunks[index][1]
	}
	return side.Opcode, side.Present
}

// LocateChunk returns the chunk containing line of pane and its neighbours. Out-of-range queries return all NoChunk.
func (d *Differ) LocateChunk(pane, line int) LineInfo {
	if pane < 0 || pane >= len(d.lineCache) {
		return noLine
	}
	cache := d.lineCache[pane]
	if line < 0 || line >= len(cache) {
		return noLine
	}
	return cache[line]
}

// PairChanges yields the opcodes between fromPane and toPane (one of them must be the middle pane), oriented with fromPane on the A side. If
// window is non-nil, only opcodes touching one of its ranges are yielded.
func (d *Differ) PairChanges(fromPane, toPane int, window *Window) iter.Seq[matchers.Opcode] {
	return func(yield func(matchers.Opcode) bool) {
		var stream int
		reverse := false
		switch {
		case fromPane == 1 && (toPane == 0 || toPane == 2):
			stream = toPane / 2
		case toPane == 1 && (fromPane == 0 || fromPane == 2):
			stream = fromPane / 2
			reverse = true
		default:
			return
		}

		from := [2]int{0, d.seqLength[fromPane]}
		to := [2]int{0, d.seqLength[toPane]}
		if window != nil {
			from, to = window.From, window.To
		}

		for _, c := range d.chunks {
			side := c[stream]
			if !side.Present {
				continue
			}
			op := side.Opcode
			if reverse {
				op = ReverseChunk(op)
			}
			if (from[1] >= op.I1 && op.I2 >= from[0]) || (to[1] >= op.J1 && op.J2 >= to[0]) {
				if !yield(op) {
					return
				}
			}
		}
	}
}

// HasMergeableChanges reports whether non-conflicting changes exist between pane and its left neighbour, and between pane and its right
// neighbour.
func (d *Differ) HasMergeableChanges(pane int) [2]bool {
	if pane < 0 || pane+1 >= len(d.mergeable) {
		return [2]bool{}
	}
	return [2]bool{d.mergeable[pane], d.mergeable[pane+1]}
}

func (d *Differ) emit(cs ChangeSet) {
	for _, fn := range d.listeners {
		fn(cs)
	}
}
