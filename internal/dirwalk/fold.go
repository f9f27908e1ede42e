package dirwalk

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// FoldCase canonicalizes name for case-insensitive alignment: NFC normalization followed by Unicode case folding.
func FoldCase(name string) string {
	return cases.Fold().String(norm.NFC.String(name))
}
