package testutil

import (
	"riffbox/internal/riffbox"
)

// VideoOption customizes a test video.
type VideoOption func(*riffbox.Video)

func WithID(id string) VideoOption {
	return func(v *riffbox.Video) { v.ID = id }
}

func WithArtist(artist string) VideoOption {
	return func(v *riffbox.Video) { v.Artist = artist }
}

func WithSong(song string) VideoOption {
	return func(v *riffbox.Video) { v.Song = song }
}

func WithStyles(styles ...riffbox.Style) VideoOption {
	return func(v *riffbox.Video) { v.Style = styles }
}

func WithTags(tags ...string) VideoOption {
	return func(v *riffbox.Video) { v.Tags = tags }
}

// NewTestVideo returns a video for path with optional metadata.
func NewTestVideo(path string, opts ...VideoOption) riffbox.Video {
	v := riffbox.NewVideo(path, "", 1024)
	for _, opt := range opts {
		opt(&v)
	}
	return v
}

// NewTestCollection returns a collection holding videos.
func NewTestCollection(id, title string, videos ...riffbox.Video) riffbox.Collection {
	c := riffbox.NewCollection(id, title)
	c.Videos = append(c.Videos, videos...)
	return c
}
