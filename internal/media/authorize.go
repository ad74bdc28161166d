package media

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"riffbox/internal/riffbox"
)

// ErrPathNotAllowed is returned by AllowRoots for paths outside every root.
var ErrPathNotAllowed = errors.New("path not allowed")

// AllowRoots returns a PathAuthorizer accepting paths that lie under one of
// roots. An empty roots list accepts every path.
func AllowRoots(roots []string) riffbox.PathAuthorizer {
	cleaned := make([]string, 0, len(roots))
	for _, r := range roots {
		if r = strings.TrimSpace(r); r != "" {
			cleaned = append(cleaned, filepath.Clean(r))
		}
	}

	return func(path string) error {
		if len(cleaned) == 0 {
			return nil
		}
		p := filepath.Clean(path)
		for _, root := range cleaned {
			rel, err := filepath.Rel(root, p)
			if err != nil {
				continue
			}
			if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrPathNotAllowed, path)
	}
}
