package relocate

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SafeJoin joins root and rel (a slash-separated path) and checks the
// result stays inside root.
func SafeJoin(root, rel string) (string, error) {
	if filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("%w: absolute path %q", ErrOutsideRoot, rel)
	}
	cleanRoot := filepath.Clean(root)
	p := filepath.Join(cleanRoot, filepath.FromSlash(rel))

	r, err := filepath.Rel(cleanRoot, p)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOutsideRoot, err)
	}
	rs := filepath.ToSlash(r)
	if rs == ".." || strings.HasPrefix(rs, "../") {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, rel)
	}
	return p, nil
}
