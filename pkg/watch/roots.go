package watch

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Roots returns the existing directories under root that the given
// collection patterns read from: the static prefix of each pattern, sorted
// and without duplicates. Directories nested in another root are dropped
// since roots are watched recursively.
func Roots(root string, patterns []string) []string {
	seen := make(map[string]struct{})
	var dirs []string

	for _, pattern := range patterns {
		base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
		dir := filepath.Join(root, filepath.FromSlash(base))

		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}

	sort.Strings(dirs)

	var out []string
next:
	for _, dir := range dirs {
		for _, kept := range out {
			if isWithin(dir, kept) {
				continue next
			}
		}
		out = append(out, dir)
	}
	return out
}

func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !filepath.IsAbs(rel) && !startsWithParent(rel))
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}
