package filecmp

import (
	"io/fs"
	"time"
)

// DefaultTimeResolutionNS is the mtime quantum used when Options.TimeResolutionNS is not set.
const DefaultTimeResolutionNS = 100

// Beyond this mtime distance two fingerprints never match, whatever the resolution.
const maxMTimeSkew = 2 * time.Second

// Fingerprint is the part of a stat result that identifies a file version.
type Fingerprint struct {
	Kind  fs.FileMode // type bits only
	Size  int64
	MTime time.Time
}

// NewFingerprint captures fi.
func NewFingerprint(fi fs.FileInfo) Fingerprint {
	return Fingerprint{Kind: fi.Mode().Type(), Size: fi.Size(), MTime: fi.ModTime()}
}

func (f Fingerprint) IsDir() bool     { return f.Kind&fs.ModeDir != 0 }
func (f Fingerprint) IsRegular() bool { return f.Kind&fs.ModeType == 0 }

// ShallowEqual reports whether f and other have the same kind and size and their mtimes fall in the same resolutionNS-sized bucket.
func (f Fingerprint) ShallowEqual(other Fingerprint, resolutionNS int64) bool {
	if f.Kind != other.Kind || f.Size != other.Size {
		return false
	}
	skew := f.MTime.Sub(other.MTime)
	if skew > maxMTimeSkew || skew < -maxMTimeSkew {
		return false
	}
	if resolutionNS <= 0 {
		resolutionNS = 1
	}
	return floorDiv(f.MTime.UnixNano(), resolutionNS) == floorDiv(other.MTime.UnixNano(), resolutionNS)
}

// identical is exact equality, used to validate cache entries.
func (f Fingerprint) identical(other Fingerprint) bool {
	return f.Kind == other.Kind && f.Size == other.Size && f.MTime.Equal(other.MTime)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func fingerprintsIdentical(a, b []Fingerprint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].identical(b[i]) {
			return false
		}
	}
	return true
}

func fsMode(bits uint32) fs.FileMode { return fs.FileMode(bits) }
