package matchers

import "context"

// DefaultMinMatch is the default Options.MinMatch, for both lines and graphemes.
const DefaultMinMatch = 2

// discardThreshold is how many elements must be discardable (on either side) before the reduced sequences are used.
const discardThreshold = 10

// Options tune a Matcher.
type Options struct {
	// MinMatch is the shortest match kept when it sits between two changes; shorter ones are absorbed into the surrounding change. 0 selects
	// DefaultMinMatch; 1 keeps every match.
	MinMatch int
}

func (o Options) minMatch() int {
	if o.MinMatch <= 0 {
		return DefaultMinMatch
	}
	return o.MinMatch
}

// snake is one diagonal run found by the search, linked to the run before it on the same path.
type snake struct {
	prev *snake
	x, y int
	n    int
}

// Matcher computes the alignment of two sequences incrementally. Create it with NewMatcher, then either call Step until it returns false, call
// Run, or call MatchingBlocks/Opcodes directly (which finish any remaining work).
//
// A Matcher is not safe for concurrent use.
type Matcher[T comparable] struct {
	a, b []T
	opts Options

	kmers bool // discard by 3-grams instead of single elements (inline matching)

	started bool
	done    bool

	prefix, suffix int
	discarded      bool
	aindex, bindex []int
	ra, rb         []T

	// search state: v[k+offset] is the furthest x on diagonal k, paths[k+offset] the snakes leading there. x == -1 marks unreached diagonals.
	v      []int
	paths  []*snake
	offset int
	d      int
	last   *snake

	blocks  []Block
	opcodes []Opcode
}

// NewMatcher returns a Matcher for a and b. The slices are not copied and must not change while the Matcher is in use.
func NewMatcher[T comparable](a, b []T, opts Options) *Matcher[T] {
	return &Matcher[T]{a: a, b: b, opts: opts}
}

// Step performs one unit of work: the first call preprocesses, each later call advances the search by one frontier level. It returns false once
// the result is available. The error is always nil; it exists so a Matcher satisfies task.Task.
func (m *Matcher[T]) Step() (bool, error) {
	if m.done {
		return false, nil
	}
	if !m.started {
		m.start()
		return !m.done, nil
	}
	if m.advance() {
		m.finish()
		return false, nil
	}
	return true, nil
}

// Run drives the search to completion, checking ctx once per frontier level.
func (m *Matcher[T]) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		more, err := m.Step()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// Done reports whether the result is available.
func (m *Matcher[T]) Done() bool {
	return m.done
}

func (m *Matcher[T]) complete() {
	for {
		if more, _ := m.Step(); !more {
			return
		}
	}
}

// MatchingBlocks returns the matched runs in increasing order, terminated by the (len(a), len(b), 0) sentinel.
func (m *Matcher[T]) MatchingBlocks() []Block {
	m.complete()
	return m.blocks
}

// Opcodes returns the opcodes covering both sequences.
func (m *Matcher[T]) Opcodes() []Opcode {
	m.complete()
	if m.opcodes == nil {
		m.opcodes = OpcodesFromBlocks(m.blocks)
	}
	return m.opcodes
}

// DifferenceOpcodes returns Opcodes without the Equal entries.
func (m *Matcher[T]) DifferenceOpcodes() []Opcode {
	return Differences(m.Opcodes())
}

func (m *Matcher[T]) start() {
	m.started = true

	a, b := m.trimCommon()
	if len(a) > 0 && len(b) > 0 {
		a, b = m.discardNonMatching(a, b)
	}
	m.ra, m.rb = a, b

	n, mm := len(a), len(b)
	if n == 0 || mm == 0 {
		m.finish()
		return
	}
	m.offset = mm
	m.v = make([]int, n+mm+1)
	m.paths = make([]*snake, n+mm+1)
	for i := range m.v {
		m.v[i] = -1
	}
	m.d = 0
}

func (m *Matcher[T]) trimCommon() ([]T, []T) {
	a, b := m.a, m.b
	p := 0
	for p < len(a) && p < len(b) && a[p] == b[p] {
		p++
	}
	m.prefix = p
	a, b = a[p:], b[p:]

	s := 0
	for s < len(a) && s < len(b) && a[len(a)-1-s] == b[len(b)-1-s] {
		s++
	}
	m.suffix = s
	return a[:len(a)-s], b[:len(b)-s]
}

func (m *Matcher[T]) discardNonMatching(a, b []T) ([]T, []T) {
	var ra, rb []T
	if m.kmers {
		if len(a) <= 2 && len(b) <= 2 {
			return a, b
		}
		rb, m.bindex = indexMatchingKmers(a, b)
		ra, m.aindex = indexMatchingKmers(b, a)
	} else {
		rb, m.bindex = indexMatching(a, b)
		ra, m.aindex = indexMatching(b, a)
	}
	m.discarded = len(b)-len(rb) > discardThreshold || len(a)-len(ra) > discardThreshold
	if !m.discarded {
		m.aindex, m.bindex = nil, nil
		return a, b
	}
	return ra, rb
}

// indexMatching returns the elements of b present somewhere in a, with their indices in b.
func indexMatching[T comparable](a, b []T) ([]T, []int) {
	set := make(map[T]struct{}, len(a))
	for _, x := range a {
		set[x] = struct{}{}
	}
	var matches []T
	var index []int
	for i, x := range b {
		if _, ok := set[x]; ok {
			matches = append(matches, x)
			index = append(index, i)
		}
	}
	return matches, index
}

// indexMatchingKmers keeps the elements of b covered by some 3-gram that also occurs in a.
func indexMatchingKmers[T comparable](a, b []T) ([]T, []int) {
	set := make(map[[3]T]struct{})
	for i := 0; i+2 < len(a); i++ {
		set[[3]T{a[i], a[i+1], a[i+2]}] = struct{}{}
	}
	var matches []T
	var index []int
	next := 0
	for i := 2; i < len(b); i++ {
		if _, ok := set[[3]T{b[i-2], b[i-1], b[i]}]; !ok {
			continue
		}
		for j := max(next, i-2); j <= i; j++ {
			matches = append(matches, b[j])
			index = append(index, j)
		}
		next = i + 1
	}
	return matches, index
}

// advance explores every diagonal reachable with m.d edits and reports whether the end of both sequences was reached.
func (m *Matcher[T]) advance() bool {
	a, b := m.ra, m.rb
	n, mm := len(a), len(b)
	d := m.d
	m.d++

	for k := -d; k <= d; k += 2 {
		if k < -mm || k > n {
			continue
		}
		x := -1
		var node *snake
		if d == 0 {
			x = 0
		} else {
			// Down from diagonal k+1 (one element of b inserted).
			if k+1 <= d-1 && k+1 <= n {
				if px := m.v[k+1+m.offset]; px >= 0 && px-k <= mm {
					x, node = px, m.paths[k+1+m.offset]
				}
			}
			// Right from diagonal k-1 (one element of a deleted).
			if k-1 >= -(d-1) && k-1 >= -mm {
				if px := m.v[k-1+m.offset]; px >= 0 && px+1 <= n && px+1 > x {
					x, node = px+1, m.paths[k-1+m.offset]
				}
			}
		}
		if x < 0 {
			m.v[k+m.offset] = -1
			continue
		}

		y := x - k
		x0, y0 := x, y
		for x < n && y < mm && a[x] == b[y] {
			x++
			y++
		}
		if x > x0 {
			node = &snake{prev: node, x: x0, y: y0, n: x - x0}
		}
		m.v[k+m.offset] = x
		m.paths[k+m.offset] = node

		if x >= n && y >= mm {
			m.last = node
			return true
		}
	}
	return false
}

func (m *Matcher[T]) finish() {
	m.done = true
	m.v, m.paths = nil, nil

	blocks := m.buildBlocks()
	blocks = m.slide(blocks)
	blocks = mergeContiguous(blocks)
	blocks = absorbSmall(blocks, len(m.a), len(m.b), m.opts.minMatch())
	m.blocks = append(blocks, Block{A: len(m.a), B: len(m.b)})
	m.last = nil
	m.ra, m.rb = nil, nil
}

// buildBlocks maps the snakes found in the reduced sequences back to the original ones. Without the sentinel.
func (m *Matcher[T]) buildBlocks() []Block {
	var rev []Block
	for s := m.last; s != nil; s = s.prev {
		if !m.discarded {
			rev = append(rev, Block{A: s.x + m.prefix, B: s.y + m.prefix, Size: s.n})
			continue
		}
		// Split the snake wherever the discarded elements open a gap in the original indices. Walk backwards so rev stays reversed.
		x, y := s.x+s.n-1, s.y+s.n-1
		xprev, yprev := m.aindex[x]+m.prefix, m.bindex[y]+m.prefix
		run := 1
		for i := 1; i < s.n; i++ {
			x--
			y--
			xnext, ynext := m.aindex[x]+m.prefix, m.bindex[y]+m.prefix
			if xprev-xnext != 1 || yprev-ynext != 1 {
				rev = append(rev, Block{A: xprev, B: yprev, Size: run})
				run = 0
			}
			xprev, yprev = xnext, ynext
			run++
		}
		rev = append(rev, Block{A: xprev, B: yprev, Size: run})
	}

	blocks := make([]Block, 0, len(rev)+2)
	if m.prefix > 0 {
		blocks = append(blocks, Block{A: 0, B: 0, Size: m.prefix})
	}
	for i := len(rev) - 1; i >= 0; i-- {
		blocks = append(blocks, rev[i])
	}
	if m.suffix > 0 {
		blocks = append(blocks, Block{A: len(m.a) - m.suffix, B: len(m.b) - m.suffix, Size: m.suffix})
	}
	return blocks
}

// slide joins a block with its predecessor when they touch on one side and the elements just before the block equal the predecessor, so the
// greedy search's scattered matches collapse into one run. Scans from the end.
func (m *Matcher[T]) slide(blocks []Block) []Block {
	var rev []Block
	i := len(blocks) - 1
	for i >= 0 {
		cur := blocks[i]
		i--
		for i >= 0 {
			prev := blocks[i]
			if prev.B+prev.Size != cur.B && prev.A+prev.Size != cur.A {
				break
			}
			if !equalRun(m.a[cur.A-prev.Size:cur.A], m.b[cur.B-prev.Size:cur.B]) {
				break
			}
			cur.A -= prev.Size
			cur.B -= prev.Size
			cur.Size += prev.Size
			i--
		}
		rev = append(rev, cur)
	}
	out := make([]Block, len(rev))
	for k, blk := range rev {
		out[len(rev)-1-k] = blk
	}
	return out
}

func equalRun[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func mergeContiguous(blocks []Block) []Block {
	var out []Block
	for _, blk := range blocks {
		if blk.Size == 0 {
			continue
		}
		if n := len(out); n > 0 {
			p := &out[n-1]
			if p.A+p.Size == blk.A && p.B+p.Size == blk.B {
				p.Size += blk.Size
				continue
			}
		}
		out = append(out, blk)
	}
	return out
}

// absorbSmall drops blocks shorter than minMatch that have a change on both sides. Without the sentinel.
func absorbSmall(blocks []Block, lenA, lenB, minMatch int) []Block {
	var out []Block
	for k, blk := range blocks {
		if blk.Size < minMatch {
			var gapBefore bool
			if n := len(out); n == 0 {
				gapBefore = blk.A > 0 || blk.B > 0
			} else {
				p := out[n-1]
				gapBefore = p.A+p.Size < blk.A || p.B+p.Size < blk.B
			}
			nextA, nextB := lenA, lenB
			if k+1 < len(blocks) {
				nextA, nextB = blocks[k+1].A, blocks[k+1].B
			}
			gapAfter := blk.A+blk.Size < nextA || blk.B+blk.Size < nextB
			if gapBefore && gapAfter {
				continue
			}
		}
		out = append(out, blk)
	}
	return out
}

// Diff returns the opcodes aligning a and b.
func Diff[T comparable](a, b []T, opts Options) []Opcode {
	return NewMatcher(a, b, opts).Opcodes()
}
