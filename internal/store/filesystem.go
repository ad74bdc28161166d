package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"riffbox/internal/riffbox"
)

// FileSystemStore keeps one JSON document per collection in a directory:
//
//	<dir>/
//	  collection-2026-01-28_10-30-00.json
//	  collection-2026-01-28_10-30-00_02.json   (same-second collision)
//
// New files are named after the clock; updates rewrite the file already
// holding the collection's id, located by scanning the directory.
type FileSystemStore struct {
	mu     sync.Mutex
	dir    string
	codec  riffbox.Codec
	clock  riffbox.Clock
	logger riffbox.Logger
}

var _ riffbox.CollectionStore = (*FileSystemStore)(nil)

// NewFileSystemStore creates a store rooted at dir, creating it if needed.
// A nil codec stores plain JSON; a nil clock uses the process default.
func NewFileSystemStore(dir string, codec riffbox.Codec, clock riffbox.Clock, logger riffbox.Logger) (*FileSystemStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileSystemStore{
		dir:    dir,
		codec:  codecOrPlain(codec),
		clock:  clock,
		logger: logger,
	}, nil
}

// suffix is the file name suffix of collection files written by this store.
func (s *FileSystemStore) suffix() string {
	return ".json" + s.codec.Extension()
}

func (s *FileSystemStore) List() []riffbox.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []riffbox.Collection
	s.scan(func(_ string, c riffbox.Collection) bool {
		out = append(out, c)
		return true
	})
	return out
}

func (s *FileSystemStore) GetByID(id string) (riffbox.Collection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found riffbox.Collection
	ok := false
	s.scan(func(_ string, c riffbox.Collection) bool {
		if c.ID == id {
			found, ok = c, true
			return false
		}
		return true
	})
	return found, ok
}

func (s *FileSystemStore) Add(c riffbox.Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := encodeCollection(c, s.codec)
	if err != nil {
		s.logger.Error("failed to encode collection", "collection_id", c.ID, "error", err)
		return
	}

	path := s.locate(c.ID)
	if path == "" {
		if path, err = s.newPath(); err != nil {
			s.logger.Error("failed to name collection file", "collection_id", c.ID, "error", err)
			return
		}
	}

	if err := writeFileAtomic(path, data); err != nil {
		s.logger.Error("failed to write collection", "collection_id", c.ID, "path", path, "error", err)
		return
	}
	s.logger.Debug("collection written", "collection_id", c.ID, "path", path)
}

// locate returns the file holding id, or "" when there is none.
func (s *FileSystemStore) locate(id string) string {
	var path string
	s.scan(func(p string, c riffbox.Collection) bool {
		if c.ID == id {
			path = p
			return false
		}
		return true
	})
	return path
}

// newPath returns an unused, timestamp-derived file path.
func (s *FileSystemStore) newPath() (string, error) {
	ts := clockOrDefault(s.clock).Now().Format(fileTimeLayout)
	for attempt := 1; ; attempt++ {
		p := filepath.Join(s.dir, baseName(ts, attempt)+s.suffix())
		_, err := os.Stat(p)
		if os.IsNotExist(err) {
			return p, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking %s: %w", p, err)
		}
	}
}

// scan decodes every collection file in name order and calls fn until it
// returns false. Unreadable files are logged and skipped.
func (s *FileSystemStore) scan(fn func(path string, c riffbox.Collection) bool) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Error("failed to read store directory", "dir", s.dir, "error", err)
		return
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), s.suffix()) {
			continue
		}
		path := filepath.Join(s.dir, e.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("skipping unreadable collection file", "path", path, "error", err)
			continue
		}
		c, err := decodeCollection(data, s.codec)
		if err != nil {
			s.logger.Warn("skipping invalid collection file", "path", path, "error", err)
			continue
		}
		if !fn(path, c) {
			return
		}
	}
}

// writeFileAtomic writes data to path using a temp file and rename.
func writeFileAtomic(path string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

func clockOrDefault(c riffbox.Clock) riffbox.Clock {
	if c != nil {
		return c
	}
	return riffbox.DefaultClock()
}
