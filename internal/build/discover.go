package build

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Discover lists the files under root matching any of globs. Patterns use
// forward slashes and support "**". Paths are returned absolute, sorted and
// without duplicates.
func Discover(root string, globs []string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("discover: resolve %s: %w", root, err)
	}
	fsys := os.DirFS(absRoot)

	seen := make(map[string]bool)
	var files []string
	for _, pattern := range globs {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("discover: invalid pattern %q", pattern)
		}
		err := doublestar.GlobWalk(fsys, pattern, func(m string, d fs.DirEntry) error {
			if d.IsDir() {
				return nil
			}
			path := filepath.Join(absRoot, filepath.FromSlash(m))
			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("discover: %s: %w", pattern, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Matches reports whether path, relative to root, matches any of globs.
func Matches(root string, globs []string, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range globs {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
