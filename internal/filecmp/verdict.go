package filecmp

import "fmt"

// Verdict is the outcome of comparing a set of files.
type Verdict int

const (
	Same           Verdict = iota // byte-identical
	SameFiltered                  // identical after newline normalization, text filters and/or blank-line removal
	DodgySame                     // stat fingerprints agree, content not compared
	DodgyDifferent                // content not compared and sizes disagree
	Different
	FileError // some path could not be stat'd or read
)

var verdictNames = [...]string{
	Same:           "same",
	SameFiltered:   "same-filtered",
	DodgySame:      "dodgy-same",
	DodgyDifferent: "dodgy-different",
	Different:      "different",
	FileError:      "error",
}

func (v Verdict) String() string {
	if v >= 0 && int(v) < len(verdictNames) {
		return verdictNames[v]
	}
	return fmt.Sprintf("Verdict(%d)", int(v))
}

// Equal reports whether v treats the files as equal.
func (v Verdict) Equal() bool {
	return v == Same || v == SameFiltered || v == DodgySame
}

func (v Verdict) MarshalText() ([]byte, error) {
	if v < 0 || int(v) >= len(verdictNames) {
		return nil, fmt.Errorf("invalid verdict %d", int(v))
	}
	return []byte(verdictNames[v]), nil
}

func (v *Verdict) UnmarshalText(b []byte) error {
	for i, name := range verdictNames {
		if name == string(b) {
			*v = Verdict(i)
			return nil
		}
	}
	return fmt.Errorf("unknown verdict %q", b)
}
