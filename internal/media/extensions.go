package media

import (
	"path/filepath"
	"strings"
)

// IsVideoFile reports whether path has one of exts, compared case-insensitively.
func IsVideoFile(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
