// Package render turns opcodes and merged chunks into text for terminals and tools.
//
// Every renderer takes the lines that were compared (without terminators) plus the opcodes the matcher produced for them, so what is shown is
// exactly what the matcher decided:
//   - Unified emits the classic unified format, byte-compatible with difflib when color is off.
//   - Pretty emits a colorized view without hunk headers, highlighting changed graphemes inside replaced lines.
//   - SideBySide lays both texts out in two columns fitted to a terminal width.
//   - Patch emits diff-match-patch patch text that applies a onto b.
//   - Merge3 summarizes the chunks of a three-way comparison, one line per chunk.
package render
