package media

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"riffbox/internal/riffbox"
)

type stubThumbnailer struct {
	uri string
	err error
}

func (s stubThumbnailer) Thumbnail(string) (string, error) { return s.uri, s.err }

func TestFileVideoFactory_CreateVideo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Evil.mp4")
	if err := os.WriteFile(path, []byte("0123456789"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	tests := []struct {
		name          string
		thumbnailer   Thumbnailer
		wantThumbnail string
	}{
		{"with thumbnail", stubThumbnailer{uri: "data:image/jpeg;base64,AA=="}, "data:image/jpeg;base64,AA=="},
		{"thumbnail failure is not fatal", stubThumbnailer{err: errors.New("no ffmpeg")}, ""},
		{"no thumbnailer", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFileVideoFactory(tt.thumbnailer, riffbox.NewNopLogger())

			v, err := f.CreateVideo(path)
			if err != nil {
				t.Fatalf("CreateVideo() error = %v", err)
			}
			if v.Path != path || v.Name != "Evil.mp4" {
				t.Errorf("video = %+v", v)
			}
			if v.SizeBytes != 10 {
				t.Errorf("SizeBytes = %d, want 10", v.SizeBytes)
			}
			if v.Thumbnail != tt.wantThumbnail {
				t.Errorf("Thumbnail = %q, want %q", v.Thumbnail, tt.wantThumbnail)
			}
		})
	}
}

func TestFileVideoFactory_CreateVideo_Errors(t *testing.T) {
	dir := t.TempDir()
	f := NewFileVideoFactory(nil, riffbox.NewNopLogger())

	if _, err := f.CreateVideo(filepath.Join(dir, "missing.mp4")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("CreateVideo(missing) error = %v, want ErrNotExist", err)
	}
	if _, err := f.CreateVideo(dir); err == nil {
		t.Error("CreateVideo(dir) error = nil, want error")
	}
}
