package media

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewIgnoreMatcher(t *testing.T) {
	t.Run("skips blank lines and comments", func(t *testing.T) {
		t.Parallel()
		m := NewIgnoreMatcher([]string{"", "  ", "# comment", "*.log"})
		if len(m.patterns) != len(defaultIgnorePatterns)+1 {
			t.Fatalf("expected %d patterns, got %d", len(defaultIgnorePatterns)+1, len(m.patterns))
		}
		if last := m.patterns[len(m.patterns)-1]; last.pattern != "*.log" {
			t.Errorf("expected *.log, got %s", last.pattern)
		}
	})

	t.Run("classifies path vs basename patterns", func(t *testing.T) {
		t.Parallel()
		m := NewIgnoreMatcher([]string{"*.log", "drafts/*.mp4"})
		n := len(m.patterns)
		if m.patterns[n-2].matchPath {
			t.Error("*.log should not be a path pattern")
		}
		if !m.patterns[n-1].matchPath {
			t.Error("drafts/*.mp4 should be a path pattern")
		}
	})
}

func TestIgnoreMatcher_Match(t *testing.T) {
	tests := []struct {
		name         string
		patterns     []string
		relativePath string
		want         bool
	}{
		{"plain video", nil, "concert.mp4", false},
		{"hidden file by default", nil, ".concert.mp4", true},
		{"partial download by default", nil, "concert.mp4.part", true},
		{"ignore file itself", nil, IgnoreFileName, true},
		{"basename glob", []string{"*-sample.mp4"}, "live-sample.mp4", true},
		{"basename glob in subdirectory", []string{"*-sample.mp4"}, filepath.Join("sub", "live-sample.mp4"), true},
		{"path pattern", []string{"drafts/*.mp4"}, filepath.Join("drafts", "a.mp4"), true},
		{"path pattern wrong dir", []string{"drafts/*.mp4"}, filepath.Join("final", "a.mp4"), false},
		{"bad pattern is skipped", []string{"[", "*.mkv"}, "a.mkv", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewIgnoreMatcher(tt.patterns)
			if got := m.Match(tt.relativePath); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.relativePath, got, tt.want)
			}
		})
	}
}

func TestParseIgnoreFile(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		patterns, err := ParseIgnoreFile(filepath.Join(t.TempDir(), IgnoreFileName))
		if err != nil {
			t.Fatalf("ParseIgnoreFile() error = %v", err)
		}
		if patterns != nil {
			t.Errorf("patterns = %v, want nil", patterns)
		}
	})

	t.Run("reads lines", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), IgnoreFileName)
		if err := os.WriteFile(path, []byte("# rushes\n*.mov\n\nraw/*\n"), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		patterns, err := ParseIgnoreFile(path)
		if err != nil {
			t.Fatalf("ParseIgnoreFile() error = %v", err)
		}
		if len(patterns) != 4 {
			t.Errorf("len(patterns) = %d, want 4", len(patterns))
		}
	})
}
