package dirwalk

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/codalotl/panediff/internal/filecmp"
	"github.com/codalotl/panediff/internal/filters"
	"github.com/codalotl/panediff/internal/simplelogger"
)

// MaxPanes is the most roots a walk can align.
const MaxPanes = 3

// Options configure a walk.
type Options struct {
	Roots          []string
	Canonicalize   func(string) string // nil keeps raw names; FoldCase for case-insensitive trees
	NameFilters    []*filters.Filter   // matching raw names are skipped
	TextFilters    []*filters.Filter   // passed to the equality oracle
	MaxDepth       int                 // directories at this depth are not descended; <= 0 is unlimited
	FollowSymlinks bool
	IgnoreSymlinks bool // rows of unfollowed symlinks become Ignored
	Compare        filecmp.Options
	Comparer       *filecmp.Comparer // nil uses filecmp.DefaultCache
	Emit           func(*Item)       // receives items produced by Step
}

// Walker produces Items lazily. It is not safe for concurrent use.
type Walker struct {
	opts     Options
	roots    []string
	followed []map[fileID]bool // per pane
	stack    []*Item
	started  bool
}

// NewWalker validates opts and returns a walker. Relative roots are made absolute.
func NewWalker(opts Options) (*Walker, error) {
	if len(opts.Roots) == 0 || len(opts.Roots) > MaxPanes {
		return nil, fmt.Errorf("dirwalk: need 1 to %d roots, got %d", MaxPanes, len(opts.Roots))
	}
	w := &Walker{opts: opts}
	for _, r := range opts.Roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return nil, fmt.Errorf("dirwalk: %w", err)
		}
		w.roots = append(w.roots, abs)
		w.followed = append(w.followed, map[fileID]bool{})
	}
	if w.opts.Comparer == nil {
		w.opts.Comparer = &filecmp.Comparer{Cache: filecmp.DefaultCache()}
	}
	return w, nil
}

// Walk runs a walk to completion and returns every item.
func Walk(opts Options) ([]*Item, error) {
	w, err := NewWalker(opts)
	if err != nil {
		return nil, err
	}
	var items []*Item
	for {
		it, ok := w.Next()
		if !ok {
			return items, nil
		}
		items = append(items, it)
	}
}

// Next returns the next item in depth-first preorder. When the item is a directory that will be descended, its children are listed before
// Next returns and any listing problems are attached to it.
func (w *Walker) Next() (*Item, bool) {
	if !w.started {
		w.started = true
		w.stack = append(w.stack, w.rootItem())
	}
	if len(w.stack) == 0 {
		return nil, false
	}
	it := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]

	if w.shouldDescend(it) {
		children := w.list(it)
		it.descended = true
		for i := len(children) - 1; i >= 0; i-- {
			w.stack = append(w.stack, children[i])
		}
	}
	return it, true
}

// Step emits items to Options.Emit until one directory has been listed. It returns false once the walk is exhausted.
func (w *Walker) Step() (bool, error) {
	for {
		it, ok := w.Next()
		if !ok {
			return false, nil
		}
		if w.opts.Emit != nil {
			w.opts.Emit(it)
		}
		if it.descended {
			return len(w.stack) > 0, nil
		}
	}
}

func (w *Walker) shouldDescend(it *Item) bool {
	if !it.Row.IsDir() || it.Row.MixedKinds {
		return false
	}
	return w.opts.MaxDepth <= 0 || it.Depth < w.opts.MaxDepth
}

func (w *Walker) canonical(name string) string {
	if w.opts.Canonicalize == nil {
		return name
	}
	return w.opts.Canonicalize(name)
}

func (w *Walker) rootItem() *Item {
	row := Row{Entries: make([]Entry, len(w.roots))}
	for pane, root := range w.roots {
		e := Entry{Pane: pane, Path: root, Name: filepath.Base(root)}
		info, err := os.Stat(root)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			e = Entry{Pane: pane, Kind: KindMissing}
		case err != nil:
			e.Kind, e.Err = KindOther, err
		default:
			e.Info = info
			e.Kind = kindOf(info.Mode())
			if e.Kind == KindDir {
				if id, err := identify(root); err == nil {
					w.followed[pane][id] = true
				}
			}
		}
		row.Entries[pane] = e
	}
	w.classify(&row)
	return &Item{Canonical: "", Row: row}
}

func kindOf(mode fs.FileMode) Kind {
	switch {
	case mode.IsDir():
		return KindDir
	case mode.IsRegular():
		return KindFile
	case mode&fs.ModeSymlink != 0:
		return KindSymlink
	}
	return KindOther
}

// paneListing is one pane's children of a directory.
type paneListing struct {
	entries  map[string]Entry // by canonical name
	err      error
	problems []Problem
}

// list reads every pane of parent concurrently and merges the results into child items.
func (w *Walker) list(parent *Item) []*Item {
	listings := make([]*paneListing, len(w.roots))
	var g errgroup.Group
	for pane, e := range parent.Row.Entries {
		if e.Kind != KindDir {
			continue
		}
		g.Go(func() error {
			listings[pane] = w.listPane(pane, e.Path)
			return nil
		})
	}
	_ = g.Wait()

	byName := map[string]bool{}
	var failed []int
	for pane, l := range listings {
		if l == nil {
			continue
		}
		parent.Problems = append(parent.Problems, l.problems...)
		if l.err != nil {
			failed = append(failed, pane)
			continue
		}
		for canon := range l.entries {
			byName[canon] = true
		}
	}

	var children []*Item
	for _, canon := range w.sortRows(byName, listings) {
		row := Row{Canonical: canon, Entries: make([]Entry, len(w.roots))}
		for pane := range w.roots {
			if l := listings[pane]; l != nil {
				if e, ok := l.entries[canon]; ok {
					row.Entries[pane] = e
					continue
				}
			}
			row.Entries[pane] = Entry{Pane: pane, Canonical: canon, Kind: KindMissing}
		}
		w.classify(&row)
		children = append(children, &Item{Depth: parent.Depth + 1, Canonical: canon, Row: row, Parent: parent})
	}

	for _, pane := range failed {
		row := Row{Entries: make([]Entry, len(w.roots)), State: Error, States: make([]State, len(w.roots))}
		for i := range w.roots {
			row.Entries[i] = Entry{Pane: i, Kind: KindMissing}
			row.States[i] = Missing
		}
		row.Entries[pane] = Entry{Pane: pane, Path: parent.Row.Entries[pane].Path, Kind: KindOther, Err: listings[pane].err}
		row.States[pane] = Error
		children = append(children, &Item{Depth: parent.Depth + 1, Row: row, Parent: parent})
	}

	if len(children) == 0 {
		row := Row{Entries: make([]Entry, len(w.roots)), State: Empty, States: make([]State, len(w.roots))}
		for i := range w.roots {
			row.Entries[i] = Entry{Pane: i, Kind: KindMissing}
			row.States[i] = Empty
		}
		children = append(children, &Item{Depth: parent.Depth + 1, Row: row, Parent: parent})
	}
	return children
}

// sortRows orders canonical names with directory rows first, then byte order within each group.
func (w *Walker) sortRows(names map[string]bool, listings []*paneListing) []string {
	isDir := func(canon string) bool {
		for _, l := range listings {
			if l == nil {
				continue
			}
			if e, ok := l.entries[canon]; ok && e.Kind == KindDir {
				return true
			}
		}
		return false
	}
	var dirs, files []string
	for canon := range names {
		if isDir(canon) {
			dirs = append(dirs, canon)
		} else {
			files = append(files, canon)
		}
	}
	slices.Sort(dirs)
	slices.Sort(files)
	return append(dirs, files...)
}

// listPane reads one pane's directory. It only touches that pane's follow-set, so panes can be listed in parallel.
func (w *Walker) listPane(pane int, dir string) *paneListing {
	l := &paneListing{entries: map[string]Entry{}}
	des, err := os.ReadDir(dir)
	if err != nil {
		simplelogger.Log("dirwalk: pane %d: %v", pane, err)
		l.err = err
		l.problems = append(l.problems, Problem{Kind: ProblemReadDir, Pane: pane, Path: dir, Err: err})
		return l
	}

	var badNames []string
	shadows := map[string][]string{}
	for _, de := range des {
		name := de.Name()
		if !utf8.ValidString(name) {
			badNames = append(badNames, name)
			continue
		}
		if filters.MatchAny(w.opts.NameFilters, name) {
			continue
		}
		canon := w.canonical(name)
		if prev, ok := l.entries[canon]; ok {
			// ReadDir sorts by raw name, so the kept entry is the first in byte order.
			if len(shadows[canon]) == 0 {
				shadows[canon] = []string{prev.Name}
			}
			shadows[canon] = append(shadows[canon], name)
			continue
		}
		e, ok := w.statEntry(pane, filepath.Join(dir, name), name, canon)
		if !ok {
			simplelogger.Log("dirwalk: pane %d: skipping %s: directory already followed", pane, e.Path)
			continue
		}
		if e.Err != nil {
			l.problems = append(l.problems, Problem{Kind: ProblemStat, Pane: pane, Path: e.Path, Err: e.Err})
		}
		l.entries[canon] = e
	}

	if len(badNames) > 0 {
		l.problems = append(l.problems, Problem{Kind: ProblemEncoding, Pane: pane, Path: dir, Names: badNames})
	}
	canons := make([]string, 0, len(shadows))
	for canon := range shadows {
		canons = append(canons, canon)
	}
	slices.Sort(canons)
	for _, canon := range canons {
		l.problems = append(l.problems, Problem{Kind: ProblemShadow, Pane: pane, Path: dir, Names: shadows[canon]})
	}
	return l
}

// statEntry lstats one directory entry, following symlinks when configured. It returns false for a followed
// symlink whose target directory is already in the pane's follow-set; such entries are left out of the listing.
func (w *Walker) statEntry(pane int, path, name, canon string) (Entry, bool) {
	e := Entry{Pane: pane, Path: path, Name: name, Canonical: canon}
	info, err := os.Lstat(path)
	if err != nil {
		e.Kind, e.Err = KindOther, err
		return e, true
	}
	e.Info = info
	e.Kind = kindOf(info.Mode())
	if e.Kind != KindSymlink || !w.opts.FollowSymlinks {
		return e, true
	}

	target, err := os.Stat(path)
	if err != nil {
		// Dangling links stay unfollowed and compare by link text.
		return e, true
	}
	if target.IsDir() {
		id, err := identify(path)
		if err != nil {
			e.Err = err
			return e, true
		}
		if w.followed[pane][id] {
			return e, false
		}
		w.followed[pane][id] = true
	}
	e.Target = target
	e.Kind = kindOf(target.Mode())
	return e, true
}

// classify sets the row's states.
func (w *Walker) classify(row *Row) {
	n := len(row.Entries)
	row.States = make([]State, n)
	set := func(s State) {
		row.State = s
		for i, e := range row.Entries {
			switch {
			case e.Err != nil:
				row.States[i] = Error
			case e.Missing():
				row.States[i] = Missing
			default:
				row.States[i] = s
			}
		}
	}

	var present []Entry
	for _, e := range row.Entries {
		if !e.Missing() {
			present = append(present, e)
		}
	}

	if len(present) == 0 {
		set(Missing)
		return
	}
	for _, e := range present {
		if e.Err != nil {
			set(Error)
			return
		}
	}
	if len(present) < n {
		set(New)
		return
	}
	for _, e := range present[1:] {
		if e.Kind != present[0].Kind {
			row.MixedKinds = true
			set(Modified)
			return
		}
	}

	switch present[0].Kind {
	case KindDir:
		set(Normal)
	case KindSymlink:
		if w.opts.IgnoreSymlinks {
			set(Ignored)
			return
		}
		set(w.compareLinks(present))
	default:
		set(w.compareFiles(present))
	}
}

func (w *Walker) compareLinks(entries []Entry) State {
	first, err := os.Readlink(entries[0].Path)
	if err != nil {
		return Error
	}
	for _, e := range entries[1:] {
		t, err := os.Readlink(e.Path)
		if err != nil {
			return Error
		}
		if t != first {
			return Modified
		}
	}
	return Normal
}

func (w *Walker) compareFiles(entries []Entry) State {
	paths := make([]string, len(entries))
	infos := make([]fs.FileInfo, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
		infos[i] = e.statInfo()
	}
	switch w.opts.Comparer.FilesSameWithInfo(paths, infos, w.opts.TextFilters, w.opts.Compare) {
	case filecmp.Same, filecmp.DodgySame:
		return Normal
	case filecmp.SameFiltered:
		return NoChange
	case filecmp.FileError:
		return Error
	}
	return Modified
}
