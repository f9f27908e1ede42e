//go:build !windows

package dirwalk

import "golang.org/x/sys/unix"

// fileID identifies the file a path resolves to.
type fileID struct {
	dev  uint64
	ino  uint64
	path string
}

func identify(path string) (fileID, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fileID{}, err
	}
	return fileID{dev: uint64(st.Dev), ino: st.Ino}, nil
}
