// Package filecmp decides whether two or three files have equal content.
//
// The oracle is FilesSame. It returns a Verdict rather than a bool because a directory comparison wants to distinguish byte-identical files from
// files that only agree once text filters and blank-line removal are applied, and both of those from verdicts reached without reading content
// (shallow mode, or a filter buffer that outgrew its budget).
//
// Verdicts are cached per Cache, keyed by the path list and the filtering configuration, and are only reused while every file's stat fingerprint
// is unchanged. A Cache may be backed by a cas.DB so verdicts survive across runs.
package filecmp
