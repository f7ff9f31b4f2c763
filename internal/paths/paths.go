// Package paths resolves user supplied file paths.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Resolve makes path absolute. Relative paths are taken relative to base,
// the directory of the config file that named them; an empty base means the
// working directory.
//
//   - "~/data/a.yaml"            -> "$HOME/data/a.yaml"
//   - "a.yaml", base "/proj"     -> "/proj/a.yaml"
//   - "/abs/a.yaml", any base    -> "/abs/a.yaml"
func Resolve(base, path string) string {
	if path == "" {
		return ""
	}
	path = ExpandHome(path)
	if !filepath.IsAbs(path) && base != "" {
		path = filepath.Join(ExpandHome(base), path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
