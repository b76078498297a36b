package lint

import (
	"io/fs"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Discover walks root and returns the sorted absolute paths of prose files
// beneath it. Dot-directories are always skipped; exclude patterns are
// doublestar globs matched against the slash-separated path relative to
// root (a matching directory prunes its whole subtree).
func Discover(root string, extensions, exclude []string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []string
	seen := make(map[string]bool)
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if matchesAny(exclude, rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if matchesAny(exclude, rel) {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == "" || !slices.Contains(extensions, ext) {
			return nil
		}
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	sort.Strings(files)
	return files, nil
}

func matchesAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}
