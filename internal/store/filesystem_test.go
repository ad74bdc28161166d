package store

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"riffbox/internal/encryption"
	"riffbox/internal/riffbox"
	"riffbox/internal/testutil"
)

func newTestFileSystemStore(t *testing.T, codec riffbox.Codec) (*FileSystemStore, string, *testutil.StubClock) {
	t.Helper()
	dir := t.TempDir()
	clock := testutil.FixedClock()
	s, err := NewFileSystemStore(dir, codec, clock, riffbox.NewNopLogger())
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}
	return s, dir, clock
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestFileSystemStore_FileNaming(t *testing.T) {
	s, dir, clock := newTestFileSystemStore(t, nil)

	s.Add(testutil.NewTestCollection("c1", "One"))
	s.Add(testutil.NewTestCollection("c2", "Two"))
	clock.Advance(time.Second)
	s.Add(testutil.NewTestCollection("c3", "Three"))

	want := []string{
		"collection-2026-01-28_10-30-00.json",
		"collection-2026-01-28_10-30-00_02.json",
		"collection-2026-01-28_10-30-01.json",
	}
	got := listFiles(t, dir)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("files = %v, want %v", got, want)
	}
}

func TestFileSystemStore_UpdateReusesFile(t *testing.T) {
	s, dir, clock := newTestFileSystemStore(t, nil)

	c := testutil.NewTestCollection("c1", "One", testutil.NewTestVideo("/videos/a.mp4"))
	s.Add(c)
	clock.Advance(time.Hour)

	c.Videos[0].Artist = "Interpol"
	s.Add(c)

	files := listFiles(t, dir)
	if len(files) != 1 {
		t.Fatalf("files = %v, want exactly one", files)
	}
	if files[0] != "collection-2026-01-28_10-30-00.json" {
		t.Errorf("file = %q, want original name", files[0])
	}

	got, ok := s.GetByID("c1")
	if !ok {
		t.Fatal("GetByID(c1) ok = false, want true")
	}
	if got.Videos[0].Artist != "Interpol" {
		t.Errorf("Artist = %q, want %q", got.Videos[0].Artist, "Interpol")
	}
}

func TestFileSystemStore_SkipsUnreadableFiles(t *testing.T) {
	s, dir, _ := newTestFileSystemStore(t, nil)
	s.Add(testutil.NewTestCollection("c1", "One"))

	bad := map[string]string{
		"collection-broken.json":    "{not json",
		"collection-no-id.json":     `{"title":"orphan","videos":[]}`,
		"collection-bad-style.json": `{"id":"c9","title":"x","videos":[{"path":"a","style":["Polka"]}]}`,
		"notes.txt":                 "ignored",
		".tmp-123":                  "ignored",
	}
	for name, content := range bad {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}

	got := s.List()
	if len(got) != 1 || got[0].ID != "c1" {
		t.Errorf("List() = %+v, want only c1", got)
	}
}

func TestFileSystemStore_AddDropsWriteWhenDirIsGone(t *testing.T) {
	s, dir, _ := newTestFileSystemStore(t, nil)

	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("RemoveAll() error = %v", err)
	}
	if err := os.WriteFile(dir, []byte("not a directory"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	done := make(chan struct{})
	go func() {
		s.Add(testutil.NewTestCollection("c1", "One"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Add() did not return")
	}

	if got := s.List(); len(got) != 0 {
		t.Errorf("List() = %+v, want empty", got)
	}
	if _, ok := s.GetByID("c1"); ok {
		t.Error("GetByID(c1) found a collection that was never written")
	}
}

func TestFileSystemStore_PersistedFormat(t *testing.T) {
	s, dir, _ := newTestFileSystemStore(t, nil)
	s.Add(testutil.NewTestCollection("c1", "Collection - 2026-01-28",
		testutil.NewTestVideo("/videos/a.mp4", testutil.WithStyles(riffbox.StyleCountryFolk))))

	data, err := os.ReadFile(filepath.Join(dir, "collection-2026-01-28_10-30-00.json"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, want := range []string{`"id": "c1"`, `"title": "Collection - 2026-01-28"`, `"videos": [`, `"path": "/videos/a.mp4"`, `"Country / Folk"`, `"size_bytes": 1024`} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("persisted file missing %s:\n%s", want, data)
		}
	}
}

func TestFileSystemStore_WithCodec(t *testing.T) {
	s, dir, _ := newTestFileSystemStore(t, encryption.NewTestCodec())
	s.Add(testutil.NewTestCollection("c1", "Secret"))

	files := listFiles(t, dir)
	if len(files) != 1 || !strings.HasSuffix(files[0], ".json.enc") {
		t.Fatalf("files = %v, want one .json.enc file", files)
	}
	data, err := os.ReadFile(filepath.Join(dir, files[0]))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("RBXENC")) {
		t.Error("persisted file is not sealed")
	}

	if _, ok := s.GetByID("c1"); !ok {
		t.Error("GetByID(c1) ok = false, want true")
	}
}

func TestFileSystemStore_DefaultClock(t *testing.T) {
	t.Cleanup(riffbox.SetDefaultClock(testutil.NewStubClock(time.Date(2030, 5, 6, 7, 8, 9, 0, time.UTC))))

	dir := t.TempDir()
	s, err := NewFileSystemStore(dir, nil, nil, riffbox.NewNopLogger())
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}
	s.Add(testutil.NewTestCollection("c1", "One"))

	files := listFiles(t, dir)
	if len(files) != 1 || files[0] != "collection-2030-05-06_07-08-09.json" {
		t.Errorf("files = %v, want name from default clock", files)
	}
}
