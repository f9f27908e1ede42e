// Package diffutil maintains the line-level comparison of two or three texts.
//
// A Differ keeps one opcode stream per outer pane, each relating the middle pane (pane 1) to that outer pane, with the middle pane always on the
// A side. In two-way mode pane 1 is still the reference and only the first stream exists. The streams are merged into a list of Chunks; a
// Chunk pairs the left stream's opcode with the right stream's opcode for the same region of the middle pane, and is tagged Conflict when both
// outer panes changed that region differently.
//
// Lifecycle: a new Differ is uninitialised. SetSequences (or the resumable SetSequencesTask) diffs the texts and initialises it. After a local
// edit, ChangeSequence re-diffs only the window around the edit. Clear returns to the uninitialised state. Listeners registered with
// OnDiffsChanged are told which chunks appeared and disappeared after every mutation.
//
// Per-pane line caches answer "which chunk is at this line, and which chunks come before and after it" in constant time (LocateChunk).
package diffutil
