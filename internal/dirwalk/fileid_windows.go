//go:build windows

package dirwalk

import "path/filepath"

// fileID identifies the file a path resolves to. Windows has no cheap inode, so the fully resolved path stands in.
type fileID struct {
	dev  uint64
	ino  uint64
	path string
}

func identify(path string) (fileID, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return fileID{}, err
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return fileID{}, err
	}
	return fileID{path: abs}, nil
}
