package relocate

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PruneEmptyDirs removes every empty directory below root, deepest first,
// so a chain of directories emptied by moves disappears in one sweep. The
// root itself and dot-directories (.git and friends) are never touched.
// Removal failures are ignored. It returns the removed directories
// relative to root, slash-separated.
func PruneEmptyDirs(root string) []string {
	var dirs []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() || path == root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})

	sort.SliceStable(dirs, func(i, j int) bool {
		return depth(dirs[i]) > depth(dirs[j])
	})

	var removed []string
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}
		if err := os.Remove(dir); err != nil {
			continue
		}
		rel, err := filepath.Rel(root, dir)
		if err != nil {
			rel = dir
		}
		removed = append(removed, filepath.ToSlash(rel))
	}
	return removed
}

func depth(path string) int {
	return strings.Count(filepath.ToSlash(path), "/")
}
