// Package dirwalk walks up to three directory trees in lockstep and aligns their entries by canonical name.
//
// The walk is lazy and depth-first preorder. Every Item carries a Row with one Entry per root (a synthetic missing entry where a root lacks the
// name) and a State summarizing how the panes compare. Directories are listed only when the walker reaches them, with the panes of one
// directory listed concurrently. Problems found while listing (unreadable directories, names that collide after canonicalization, names that
// are not valid UTF-8) are collected on the Item rather than returned as errors.
package dirwalk
