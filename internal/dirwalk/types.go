package dirwalk

import (
	"fmt"
	"io/fs"
	"strings"
)

// Kind is the resolved type of an entry.
type Kind int

const (
	KindMissing Kind = iota
	KindDir
	KindFile
	KindSymlink // a symlink that was not followed
	KindOther   // devices, sockets, pipes, and entries that could not be stat'd
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindDir:
		return "dir"
	case KindFile:
		return "file"
	case KindSymlink:
		return "symlink"
	case KindOther:
		return "other"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Entry is one pane's view of a name.
type Entry struct {
	Pane      int
	Path      string // absolute
	Name      string // raw name as read from the directory
	Canonical string
	Kind      Kind
	Info      fs.FileInfo // Lstat result
	Target    fs.FileInfo // Stat result when a symlink was followed
	Err       error
}

// Missing reports whether the pane has no entry for the name.
func (e Entry) Missing() bool { return e.Kind == KindMissing }

// statInfo is the info used for content comparison.
func (e Entry) statInfo() fs.FileInfo {
	if e.Target != nil {
		return e.Target
	}
	return e.Info
}

// State classifies a row, or one pane of a row.
type State int

const (
	Normal   State = iota // equal
	NoChange              // equal once filters are applied
	New                   // present here, absent in another pane
	Modified
	Missing // absent in this pane
	Error
	Empty // placeholder for a directory without children
	Ignored
)

var stateNames = [...]string{
	Normal:   "normal",
	NoChange: "nochange",
	New:      "new",
	Modified: "modified",
	Missing:  "missing",
	Error:    "error",
	Empty:    "empty",
	Ignored:  "ignored",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ParseState is the inverse of State.String.
func ParseState(s string) (State, error) {
	for i, name := range stateNames {
		if name == s {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("unknown state %q", s)
}

// Row aligns one canonical name across panes.
type Row struct {
	Canonical  string
	Entries    []Entry // indexed by pane
	State      State
	States     []State // per pane
	MixedKinds bool
}

// IsDir reports whether every present entry is a directory.
func (r Row) IsDir() bool {
	present := false
	for _, e := range r.Entries {
		if e.Missing() {
			continue
		}
		if e.Kind != KindDir {
			return false
		}
		present = true
	}
	return present
}

// Item is one step of the walk.
type Item struct {
	Depth     int // root is 0
	Canonical string
	Row       Row
	Parent    *Item
	Problems  []Problem // problems found while listing this directory

	descended bool
}

// RelPath returns the slash-separated canonical path from the root, or "" for the root itself and placeholder rows.
func (it *Item) RelPath() string {
	var parts []string
	for p := it; p != nil && p.Parent != nil; p = p.Parent {
		if p.Canonical != "" {
			parts = append(parts, p.Canonical)
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// Descended reports whether the walker listed this item's children.
func (it *Item) Descended() bool { return it.descended }

// ProblemKind classifies a Problem.
type ProblemKind int

const (
	ProblemReadDir  ProblemKind = iota // a pane's directory could not be listed
	ProblemStat                        // an entry could not be stat'd
	ProblemShadow                      // distinct names share a canonical name
	ProblemEncoding                    // names are not valid UTF-8
)

func (k ProblemKind) String() string {
	switch k {
	case ProblemReadDir:
		return "readdir"
	case ProblemStat:
		return "stat"
	case ProblemShadow:
		return "shadow"
	case ProblemEncoding:
		return "encoding"
	}
	return fmt.Sprintf("ProblemKind(%d)", int(k))
}

// Problem is a non-fatal issue found while listing a directory.
type Problem struct {
	Kind  ProblemKind
	Pane  int
	Path  string   // directory (readdir, shadow, encoding) or entry (stat)
	Names []string // colliding or undecodable names
	Err   error
}

func (p Problem) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "pane %d: %s %s", p.Pane, p.Kind, p.Path)
	if len(p.Names) > 0 {
		fmt.Fprintf(&b, " %q", p.Names)
	}
	if p.Err != nil {
		fmt.Fprintf(&b, ": %v", p.Err)
	}
	return b.String()
}
