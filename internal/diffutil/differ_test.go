package diffutil

import (
	"slices"
	"testing"

	"github.com/codalotl/panediff/internal/matchers"
	"github.com/codalotl/panediff/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func op(tag matchers.Tag, i1, i2, j1, j2 int) matchers.Opcode {
	return matchers.Opcode{Tag: tag, I1: i1, I2: i2, J1: j1, J2: j2}
}

func side(tag matchers.Tag, i1, i2, j1, j2 int) Side {
	return Side{Opcode: op(tag, i1, i2, j1, j2), Present: true}
}

func texts(panes ...[]string) []Text {
	out := make([]Text, len(panes))
	for i, p := range panes {
		out[i] = Lines(p)
	}
	return out
}

func newDiffer(t *testing.T, panes ...[]string) *Differ {
	t.Helper()
	d := NewDiffer(Options{})
	d.SetSequences(texts(panes...))
	require.True(t, d.Initialised())
	return d
}

func TestThreeWay_CleanMerge(t *testing.T) {
	d := newDiffer(t, []string{"a", "B", "c"}, []string{"a", "b", "c"}, []string{"a", "b", "C"})

	require.Equal(t, []Chunk{
		{side(matchers.Replace, 1, 2, 1, 2), {}},
		{{}, side(matchers.Replace, 2, 3, 2, 3)},
	}, d.Chunks())
	assert.Equal(t, 2, d.DiffCount())
	assert.Empty(t, d.Conflicts())
	assert.Equal(t, [2]bool{true, true}, d.HasMergeableChanges(1))
	assert.Equal(t, [2]bool{false, true}, d.HasMergeableChanges(0))
	assert.Equal(t, [2]bool{true, false}, d.HasMergeableChanges(2))
	assert.Equal(t, [2]bool{}, d.HasMergeableChanges(3))
	assert.Equal(t, [2]bool{}, d.HasMergeableChanges(-1))
	assert.False(t, d.SequencesIdentical())
}

func TestThreeWay_Conflict(t *testing.T) {
	d := newDiffer(t, []string{"a", "X", "c"}, []string{"a", "b", "c"}, []string{"a", "Y", "c"})

	require.Equal(t, []Chunk{
		{side(matchers.Conflict, 1, 2, 1, 2), side(matchers.Conflict, 1, 2, 1, 2)},
	}, d.Chunks())
	assert.Equal(t, []int{0}, d.Conflicts())
	assert.Equal(t, [2]bool{false, false}, d.HasMergeableChanges(1))
}

func TestThreeWay_AutoMergeTags(t *testing.T) {
	middle := []string{"a", "b", "c"}
	tests := []struct {
		name        string
		left, right []string
		want        Chunk
	}{
		{
			name: "same replacement",
			left: []string{"a", "X", "c"}, right: []string{"a", "X", "c"},
			want: Chunk{side(matchers.Replace, 1, 2, 1, 2), side(matchers.Replace, 1, 2, 1, 2)},
		},
		{
			name: "same deletion",
			left: []string{"a", "c"}, right: []string{"a", "c"},
			want: Chunk{side(matchers.Delete, 1, 2, 1, 1), side(matchers.Delete, 1, 2, 1, 1)},
		},
		{
			name: "same insertion",
			left: []string{"a", "X", "b", "c"}, right: []string{"a", "X", "b", "c"},
			want: Chunk{side(matchers.Insert, 1, 1, 1, 2), side(matchers.Insert, 1, 1, 1, 2)},
		},
		{
			name: "different insertions at one point",
			left: []string{"a", "X", "b", "c"}, right: []string{"a", "Y", "b", "c"},
			want: Chunk{side(matchers.Conflict, 1, 1, 1, 2), side(matchers.Conflict, 1, 1, 1, 2)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDiffer(t, tt.left, middle, tt.right)
			require.Equal(t, []Chunk{tt.want}, d.Chunks())
		})
	}
}

func TestThreeWay_TouchingChangesStaySeparate(t *testing.T) {
	// Left inserts at line 1; right replaces line 1. They touch at the same boundary but are distinct changes.
	d := newDiffer(t, []string{"a", "X", "b", "c"}, []string{"a", "b", "c"}, []string{"a", "Y", "c"})
	require.Equal(t, []Chunk{
		{side(matchers.Insert, 1, 1, 1, 2), {}},
		{{}, side(matchers.Replace, 1, 2, 1, 2)},
	}, d.Chunks())
	assert.Empty(t, d.Conflicts())
}

func TestGetChunk(t *testing.T) {
	d := newDiffer(t, []string{"a", "B", "c"}, []string{"a", "b", "c"}, []string{"a", "b", "C"})

	got, ok := d.GetChunk(0, 1, -1)
	require.True(t, ok)
	assert.Equal(t, op(matchers.Replace, 1, 2, 1, 2), got)

	got, ok = d.GetChunk(1, 1, -1)
	require.True(t, ok)
	assert.Equal(t, op(matchers.Replace, 2, 3, 2, 3), got)

	_, ok = d.GetChunk(1, 1, 0)
	assert.False(t, ok)

	_, ok = d.GetChunk(1, 0, -1)
	assert.False(t, ok)

	got, ok = d.GetChunk(1, 2, -1)
	require.True(t, ok)
	assert.Equal(t, op(matchers.Replace, 2, 3, 2, 3), got)
}

func TestTwoWay(t *testing.T) {
	d := newDiffer(t, []string{"a", "b", "X", "c"}, []string{"a", "b", "c"})

	require.Equal(t, []Chunk{{side(matchers.Insert, 2, 2, 2, 3), {}}}, d.Chunks())
	assert.Equal(t, 2, d.SeqCount())
	assert.Equal(t, [2]bool{false, true}, d.HasMergeableChanges(0))
	assert.Equal(t, [2]bool{true, false}, d.HasMergeableChanges(1))

	got, ok := d.GetChunk(0, 0, -1)
	require.True(t, ok)
	assert.Equal(t, op(matchers.Delete, 2, 3, 2, 2), got)

	// The insertion point claims the following middle line.
	assert.Equal(t, LineInfo{Chunk: 0, Prev: NoChunk, Next: NoChunk}, d.LocateChunk(1, 2))
	assert.Equal(t, LineInfo{Chunk: NoChunk, Prev: NoChunk, Next: 0}, d.LocateChunk(1, 1))
	assert.Equal(t, LineInfo{Chunk: NoChunk, Prev: 0, Next: NoChunk}, d.LocateChunk(1, 3))
	assert.Equal(t, LineInfo{Chunk: 0, Prev: NoChunk, Next: NoChunk}, d.LocateChunk(0, 2))
	assert.Equal(t, LineInfo{Chunk: NoChunk, Prev: NoChunk, Next: NoChunk}, d.LocateChunk(2, 0))
}

func TestLocateChunk(t *testing.T) {
	d := newDiffer(t, []string{"a", "B", "c"}, []string{"a", "b", "c"}, []string{"a", "b", "C"})

	none := NoChunk
	tests := []struct {
		pane, line int
		want       LineInfo
	}{
		{1, 0, LineInfo{none, none, 0}},
		{1, 1, LineInfo{0, none, 1}},
		{1, 2, LineInfo{1, 0, none}},
		{1, 3, LineInfo{none, 1, none}},
		{0, 0, LineInfo{none, none, 0}},
		{0, 1, LineInfo{0, none, none}},
		{0, 3, LineInfo{none, 0, none}},
		{2, 0, LineInfo{none, none, 1}},
		{2, 2, LineInfo{1, none, none}},
		{2, 3, LineInfo{none, 1, none}},
		{1, 4, LineInfo{none, none, none}},
		{1, -1, LineInfo{none, none, none}},
		{5, 0, LineInfo{none, none, none}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.LocateChunk(tt.pane, tt.line), "pane %d line %d", tt.pane, tt.line)
	}
}

func TestPairChanges(t *testing.T) {
	d := newDiffer(t, []string{"a", "B", "c"}, []string{"a", "b", "c"}, []string{"a", "b", "C"})

	assert.Equal(t, []matchers.Opcode{op(matchers.Replace, 1, 2, 1, 2)}, slices.Collect(d.PairChanges(1, 0, nil)))
	assert.Equal(t, []matchers.Opcode{op(matchers.Replace, 2, 3, 2, 3)}, slices.Collect(d.PairChanges(2, 1, nil)))
	assert.Empty(t, slices.Collect(d.PairChanges(0, 2, nil)))

	assert.Empty(t, slices.Collect(d.PairChanges(1, 2, &Window{From: [2]int{0, 0}, To: [2]int{0, 0}})))
	assert.Len(t, slices.Collect(d.PairChanges(1, 2, &Window{From: [2]int{2, 3}, To: [2]int{0, 0}})), 1)
}

func TestSequencesIdentical(t *testing.T) {
	d := NewDiffer(Options{})
	assert.False(t, d.SequencesIdentical())

	d.SetSequences(texts([]string{"a"}, []string{"a"}, []string{"a"}))
	assert.True(t, d.SequencesIdentical())

	d.Clear()
	assert.False(t, d.SequencesIdentical())
	assert.False(t, d.Initialised())
	assert.Equal(t, 0, d.SeqLength(1))
}

func TestIgnoreBlanks(t *testing.T) {
	d := NewDiffer(Options{IgnoreBlanks: true})
	d.SetSequences(texts([]string{"a", "", "b"}, []string{"a", "b"}))
	assert.Equal(t, 0, d.DiffCount())
	assert.False(t, d.SequencesIdentical())

	d.SetIgnoreBlanks(false)
	assert.Equal(t, 1, d.DiffCount())

	d = NewDiffer(Options{IgnoreBlanks: true})
	d.SetSequences(texts([]string{"a", "", "X", "c"}, []string{"a", "b", "c"}))
	require.Equal(t, []Chunk{{side(matchers.Replace, 1, 2, 2, 3), {}}}, d.Chunks())
}

func TestConsumeBlankLines(t *testing.T) {
	ts := texts([]string{"", "x", ""}, []string{"", ""})
	got := ConsumeBlankLines(side(matchers.Replace, 0, 3, 0, 2), ts, 0, 1)
	assert.Equal(t, side(matchers.Delete, 1, 2, 2, 2), got)

	assert.False(t, ConsumeBlankLines(side(matchers.Replace, 0, 1, 0, 2), ts, 0, 1).Present)
	assert.False(t, ConsumeBlankLines(Side{}, ts, 0, 1).Present)
}

func TestChangeSequence_Idempotent(t *testing.T) {
	cases := [][3][]string{
		{{"a", "B", "c"}, {"a", "b", "c"}, {"a", "b", "C"}},
		{{"a", "X", "c"}, {"a", "b", "c"}, {"a", "Y", "c"}},
		{{"p", "a", "b", "q", "c"}, {"a", "b", "c", "d"}, {"a", "c", "d", "e"}},
	}
	for _, c := range cases {
		ts := texts(c[0], c[1], c[2])
		d := NewDiffer(Options{})
		d.SetSequences(ts)
		before := slices.Clone(d.Chunks())

		for pane := 0; pane < 3; pane++ {
			d.ChangeSequence(pane, 0, 0, ts)
			require.Equal(t, before, d.Chunks(), "pane %d, texts %v", pane, c)
		}
	}
}

func TestChangeSequence_MatchesFullDiff(t *testing.T) {
	left := []string{"a", "b", "c", "d", "e"}
	middle := []string{"a", "b", "c", "d", "e"}
	right := []string{"a", "b", "c", "D", "e"}

	d := NewDiffer(Options{})
	var events []ChangeSet
	d.OnDiffsChanged(func(cs ChangeSet) { events = append(events, cs) })
	d.SetSequences(texts(left, middle, right))
	require.Len(t, events, 1)
	assert.Len(t, events[0].Added, 1)

	// Insert "X" at line 1 of the left pane.
	left = []string{"a", "X", "b", "c", "d", "e"}
	ts := texts(left, middle, right)
	d.ChangeSequence(0, 1, 1, ts)

	fresh := NewDiffer(Options{})
	fresh.SetSequences(ts)
	require.Equal(t, fresh.Chunks(), d.Chunks())
	assert.Equal(t, 6, d.SeqLength(0))
	require.Len(t, events, 2)
	assert.Equal(t, []Chunk{{side(matchers.Insert, 1, 1, 1, 2), {}}}, events[1].Added)
	assert.Empty(t, events[1].Removed)

	// Delete "c" from the middle pane.
	middle = []string{"a", "b", "d", "e"}
	ts = texts(left, middle, right)
	d.ChangeSequence(1, 2, -1, ts)

	fresh = NewDiffer(Options{})
	fresh.SetSequences(ts)
	require.Equal(t, fresh.Chunks(), d.Chunks())
	assert.Equal(t, 4, d.SeqLength(1))
}

func TestChangeSequence_BeforeInitialisationPanics(t *testing.T) {
	d := NewDiffer(Options{})
	assert.Panics(t, func() { d.ChangeSequence(0, 0, 0, texts([]string{}, []string{})) })
}

func TestSetSequencesTask_Scheduled(t *testing.T) {
	var middle, left []string
	for i := 0; i < 50; i++ {
		middle = append(middle, string(rune('a'+i%26)))
		left = append(left, string(rune('a'+(i*7)%26)))
	}
	d := NewDiffer(Options{})
	s := task.NewLIFO()
	s.AddTask(d.SetSequencesTask(texts(left, middle)), false)

	assert.True(t, s.Iteration())
	assert.False(t, d.Initialised())

	s.CompleteTasks()
	require.True(t, d.Initialised())

	want := matchers.Diff(middle, left, matchers.Options{})
	assert.Equal(t, matchers.Differences(want), d.Streams()[0])
}

func TestSyncPoints(t *testing.T) {
	d := NewDiffer(Options{})
	d.SetSyncPoints(0, []matchers.SyncPoint{{A: 2, B: 0}})
	d.SetSequences(texts([]string{"c", "a", "b"}, []string{"a", "b", "c"}))

	assert.Equal(t, []matchers.Opcode{
		op(matchers.Delete, 0, 2, 0, 0),
		op(matchers.Insert, 3, 3, 1, 3),
	}, d.Streams()[0])
}

func TestClearNotifies(t *testing.T) {
	d := newDiffer(t, []string{"a", "X", "c"}, []string{"a", "b", "c"}, []string{"a", "Y", "c"})
	var got ChangeSet
	d.OnDiffsChanged(func(cs ChangeSet) { got = cs })
	d.Clear()
	assert.Len(t, got.Removed, 1)
	assert.Empty(t, got.Added)
	assert.Equal(t, 0, d.DiffCount())
}
