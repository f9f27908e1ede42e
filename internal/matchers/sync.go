package matchers

import "context"

type segment[T comparable] struct {
	ai, bi int
	lenA   int
	lenB   int
	m      *Matcher[T]
}

// SyncMatcher aligns two sequences with forced correspondences. Each SyncPoint splits both sequences; the pieces between consecutive points are
// matched independently and stitched back together, so no matching block and no change region crosses a point.
type SyncMatcher[T comparable] struct {
	a, b     []T
	segments []segment[T]
	cur      int

	blocks  []Block
	opcodes []Opcode
}

// NewSyncMatcher returns a matcher honoring points. Points must be non-decreasing on both sides and within bounds; points violating that are
// ignored. With no usable points it behaves exactly like NewMatcher.
func NewSyncMatcher[T comparable](a, b []T, points []SyncPoint, opts Options) *SyncMatcher[T] {
	s := &SyncMatcher[T]{a: a, b: b}
	ai, bi := 0, 0
	for _, p := range points {
		if p.A < ai || p.B < bi || p.A > len(a) || p.B > len(b) {
			continue
		}
		s.add(ai, bi, a[ai:p.A], b[bi:p.B], opts)
		ai, bi = p.A, p.B
	}
	if ai < len(a) || bi < len(b) || len(s.segments) == 0 {
		s.add(ai, bi, a[ai:], b[bi:], opts)
	}
	return s
}

func (s *SyncMatcher[T]) add(ai, bi int, a, b []T, opts Options) {
	s.segments = append(s.segments, segment[T]{ai: ai, bi: bi, lenA: len(a), lenB: len(b), m: NewMatcher(a, b, opts)})
}

// Step advances the current segment's search by one unit. It returns false once every segment is done.
func (s *SyncMatcher[T]) Step() (bool, error) {
	for s.cur < len(s.segments) {
		more, err := s.segments[s.cur].m.Step()
		if err != nil {
			return false, err
		}
		if more {
			return true, nil
		}
		s.cur++
		if s.cur < len(s.segments) {
			return true, nil
		}
	}
	return false, nil
}

// Run drives all segments to completion, checking ctx once per step.
func (s *SyncMatcher[T]) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		more, err := s.Step()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// Done reports whether every segment has been matched.
func (s *SyncMatcher[T]) Done() bool {
	return s.cur >= len(s.segments)
}

func (s *SyncMatcher[T]) build() {
	if s.blocks != nil {
		return
	}
	for {
		if more, _ := s.Step(); !more {
			break
		}
	}

	var split []Block
	for _, seg := range s.segments {
		sub := seg.m.MatchingBlocks()
		for _, blk := range sub[:len(sub)-1] {
			blk.A += seg.ai
			blk.B += seg.bi
			s.blocks = append(s.blocks, blk)
			split = append(split, blk)
		}
		split = append(split, Block{A: seg.ai + seg.lenA, B: seg.bi + seg.lenB})
	}
	s.blocks = append(s.blocks, Block{A: len(s.a), B: len(s.b)})
	s.opcodes = OpcodesFromBlocks(split)
}

// MatchingBlocks returns the matched runs of all segments in global coordinates, terminated by the (len(a), len(b), 0) sentinel. Blocks from
// different segments are never merged.
func (s *SyncMatcher[T]) MatchingBlocks() []Block {
	s.build()
	return s.blocks
}

// Opcodes returns opcodes covering both sequences. Equal and change regions are split at every sync point.
func (s *SyncMatcher[T]) Opcodes() []Opcode {
	s.build()
	return s.opcodes
}

// DifferenceOpcodes returns Opcodes without the Equal entries.
func (s *SyncMatcher[T]) DifferenceOpcodes() []Opcode {
	return Differences(s.Opcodes())
}
