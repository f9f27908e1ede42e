// Package matchers aligns two sequences and describes the alignment as opcodes.
//
// The core is a Myers O(ND) shortest-edit-script search that advances one frontier level per Step, so long diffs can be driven by a cooperative
// scheduler (see package task) or cancelled through a context. Around the search:
//   - preprocessing strips the common prefix and suffix, and (when worthwhile) discards elements that occur nowhere in the other sequence;
//   - postprocessing slides blocks backwards to join equal neighbours, merges contiguous blocks, and absorbs matches shorter than
//     Options.MinMatch that sit between two changes, which keeps hunks readable.
//
// Variants: NewSyncMatcher pins forced correspondences that no match may cross, and Inline aligns grapheme clusters within a pair of lines.
//
// The output contract mirrors difflib: MatchingBlocks ends with a (len(a), len(b), 0) sentinel, and Opcodes covers both sequences contiguously.
package matchers
