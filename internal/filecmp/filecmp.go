package filecmp

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/codalotl/panediff/internal/filters"
	"github.com/codalotl/panediff/internal/simplelogger"
)

// ChunkSize is the lockstep read size.
const ChunkSize = 40 * 1024

// DefaultMaxFilterBytes bounds the content accumulated for filtered comparison, summed over all files.
const DefaultMaxFilterBytes = 64 << 20

// errFilterBudget stands in for running out of memory while accumulating content.
var errFilterBudget = errors.New("filter buffer budget exceeded")

// Options control a comparison.
type Options struct {
	Shallow          bool  // decide from stat fingerprints alone
	IgnoreBlankLines bool  // drop empty lines before the filtered re-compare
	ApplyTextFilters bool  // apply enabled text filters before the filtered re-compare
	TimeResolutionNS int64 // mtime quantum for shallow mode; <= 0 means DefaultTimeResolutionNS
	MaxFilterBytes   int64 // <= 0 means DefaultMaxFilterBytes
}

func (o Options) needContents() bool { return o.ApplyTextFilters || o.IgnoreBlankLines }

func (o Options) timeResolution() int64 {
	if o.TimeResolutionNS <= 0 {
		return DefaultTimeResolutionNS
	}
	return o.TimeResolutionNS
}

func (o Options) filterBudget() int64 {
	if o.MaxFilterBytes <= 0 {
		return DefaultMaxFilterBytes
	}
	return o.MaxFilterBytes
}

// Comparer runs comparisons against a Cache. A nil Cache disables caching.
type Comparer struct {
	Cache *Cache
}

var defaultCache = NewCache()

// DefaultCache returns the cache used by the package-level FilesSame.
func DefaultCache() *Cache { return defaultCache }

// ClearCache empties DefaultCache.
func ClearCache() { defaultCache.Clear() }

// FilesSame compares paths using DefaultCache.
func FilesSame(paths []string, textFilters []*filters.Filter, opts Options) Verdict {
	c := Comparer{Cache: defaultCache}
	return c.FilesSame(paths, textFilters, opts)
}

// FilesSame classifies paths (normally two or three). Fewer than two paths are trivially Same.
func (c *Comparer) FilesSame(paths []string, textFilters []*filters.Filter, opts Options) Verdict {
	return c.FilesSameWithInfo(paths, nil, textFilters, opts)
}

// FilesSameWithInfo is FilesSame for callers that already hold stat results. infos is indexed like paths; a nil or missing entry is stat'd here.
// The walker passes os.Stat results so that symlinks are compared by target.
func (c *Comparer) FilesSameWithInfo(paths []string, infos []fs.FileInfo, textFilters []*filters.Filter, opts Options) Verdict {
	if len(paths) < 2 {
		return Same
	}

	fps := make([]Fingerprint, len(paths))
	for i, p := range paths {
		var fi fs.FileInfo
		if i < len(infos) {
			fi = infos[i]
		}
		if fi == nil {
			var err error
			fi, err = os.Stat(p)
			if err != nil {
				return FileError
			}
		}
		fps[i] = NewFingerprint(fi)
	}

	allDirs, allRegular := true, true
	for _, fp := range fps {
		allDirs = allDirs && fp.IsDir()
		allRegular = allRegular && fp.IsRegular()
	}
	if allDirs {
		return Same
	}
	if !allRegular {
		return Different
	}

	if opts.Shallow {
		for _, fp := range fps[1:] {
			if !fp.ShallowEqual(fps[0], opts.timeResolution()) {
				return Different
			}
		}
		return DodgySame
	}

	needContents := opts.needContents()
	if !needContents && !sameSizes(fps) {
		return Different
	}

	var applied []*filters.Filter
	if opts.ApplyTextFilters {
		applied = filters.Active(textFilters)
	}
	key := newCacheKey(paths, needContents, filters.Identity(applied), opts.IgnoreBlankLines)
	if c.Cache != nil {
		if v, ok := c.Cache.lookup(key, fps); ok {
			return v
		}
	}

	v, err := compareContents(paths, applied, opts)
	switch {
	case errors.Is(err, errFilterBudget):
		v = DodgyDifferent
		if sameSizes(fps) {
			v = DodgySame
		}
	case err != nil:
		simplelogger.Log("filecmp: %v", err)
		return FileError
	}

	if c.Cache != nil {
		c.Cache.put(key, fps, v)
	}
	return v
}

func sameSizes(fps []Fingerprint) bool {
	for _, fp := range fps[1:] {
		if fp.Size != fps[0].Size {
			return false
		}
	}
	return true
}

// compareContents reads paths in lockstep. When a difference is seen and filtering is on, it keeps reading to collect the full contents and
// re-compares them after normalization.
func compareContents(paths []string, applied []*filters.Filter, opts Options) (Verdict, error) {
	files := make([]*os.File, 0, len(paths))
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return FileError, err
		}
		files = append(files, f)
	}

	filtering := opts.needContents()
	budget := opts.filterBudget()
	var held int64
	contents := make([][]byte, len(files))
	bufs := make([][]byte, len(files))
	chunks := make([][]byte, len(files))
	for i := range bufs {
		bufs[i] = make([]byte, ChunkSize)
	}

	result := Same
	overBudget := false
	for {
		for i, f := range files {
			n, err := io.ReadFull(f, bufs[i])
			if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
				return FileError, err
			}
			chunks[i] = bufs[i][:n]
		}

		if filtering && anyNUL(chunks) {
			filtering = false
			contents = nil
		}
		if result == Different && !filtering {
			break
		}
		if filtering {
			for _, c := range chunks {
				held += int64(len(c))
			}
			if held > budget {
				// Keep comparing raw bytes; only a difference makes the budget matter.
				overBudget, filtering, contents = true, false, nil
			} else {
				for i, c := range chunks {
					contents[i] = append(contents[i], c...)
				}
			}
		}

		if allEmpty(chunks) {
			break
		}
		if !allEqual(chunks) {
			result = Different
			if !filtering {
				break
			}
		}
	}

	if result == Different && overBudget {
		return 0, errFilterBudget
	}
	if result != Different || !filtering {
		return result, nil
	}

	for i, b := range contents {
		b = filters.NormalizeNewlines(b)
		if opts.ApplyTextFilters {
			b = filters.ApplyTextFilters(b, applied)
		}
		if opts.IgnoreBlankLines {
			b = filters.RemoveBlankLines(b)
		}
		contents[i] = b
	}
	if allEqual(contents) {
		return SameFiltered, nil
	}
	return Different, nil
}

func anyNUL(chunks [][]byte) bool {
	for _, c := range chunks {
		if bytes.IndexByte(c, 0) >= 0 {
			return true
		}
	}
	return false
}

func allEmpty(chunks [][]byte) bool {
	for _, c := range chunks {
		if len(c) > 0 {
			return false
		}
	}
	return true
}

func allEqual(chunks [][]byte) bool {
	for _, c := range chunks[1:] {
		if !bytes.Equal(c, chunks[0]) {
			return false
		}
	}
	return true
}
