// Package filters compiles user supplied filename and text filters.
//
// Filename filters are shell patterns ("*.o *~ .git"); each whitespace separated token is translated to an anchored regular expression and
// the tokens are alternated. Text filters are multi-line regular expressions whose matches are cut out of file contents before comparison.
//
// A pattern that fails to compile never surfaces as an error to callers: the Filter is returned inactive and Err reports why, so a UI can show a
// warning next to it.
//
// The package also owns the line terminator rules used throughout panediff (NormalizeNewlines, RemoveBlankLines, SplitLines).
package filters
