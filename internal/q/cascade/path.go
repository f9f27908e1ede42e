package cascade

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath replaces a leading "~" with the home directory and makes the result absolute. "~user" forms are left alone.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			path = filepath.Join(home, path[1:])
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// HomePath joins sub onto the home directory.
func HomePath(sub string) string {
	return ExpandPath(filepath.Join("~", sub))
}
