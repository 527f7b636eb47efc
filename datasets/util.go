package datasets

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// FindClassFiles returns the files matching pattern in sorted order, one per
// class, with labels taken from their base names without extension.
func FindClassFiles(pattern string) (paths, labels []string, err error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, nil, fmt.Errorf("%w: no class files found matching pattern: %s", ErrInvalidConfig, pattern)
	}
	sort.Strings(matches)
	return matches, labelsFromPaths(matches), nil
}

func labelsFromPaths(paths []string) []string {
	labels := make([]string, len(paths))
	for i, p := range paths {
		base := filepath.Base(p)
		labels[i] = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return labels
}
