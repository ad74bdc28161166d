package media

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"riffbox/internal/riffbox"
)

// FileVideoFactory builds videos from files on the local disk. Thumbnail
// failures are logged and leave the thumbnail empty.
type FileVideoFactory struct {
	thumbnailer Thumbnailer
	logger      riffbox.Logger
}

var _ riffbox.VideoFactory = (*FileVideoFactory)(nil)

// NewFileVideoFactory creates a FileVideoFactory. A nil thumbnailer skips
// thumbnail generation.
func NewFileVideoFactory(thumbnailer Thumbnailer, logger riffbox.Logger) *FileVideoFactory {
	return &FileVideoFactory{thumbnailer: thumbnailer, logger: logger}
}

func (f *FileVideoFactory) CreateVideo(path string) (riffbox.Video, error) {
	var size uint64
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return riffbox.Video{}, fmt.Errorf("creating video: %w", err)
	case err != nil:
		f.logger.Warn("stat failed, size unknown", "path", path, "error", err)
	case info.IsDir():
		return riffbox.Video{}, fmt.Errorf("creating video: %s is a directory", path)
	default:
		size = uint64(info.Size())
	}

	var thumbnail string
	if f.thumbnailer != nil {
		thumbnail, err = f.thumbnailer.Thumbnail(path)
		if err != nil {
			f.logger.Error("generating thumbnail failed", "path", path, "error", err)
			thumbnail = ""
		}
	}

	return riffbox.NewVideo(path, thumbnail, size), nil
}
