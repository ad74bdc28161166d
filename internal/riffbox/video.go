package riffbox

import (
	"path/filepath"
	"slices"
	"strings"
)

// Video is a single file in a collection. Path is unique within its
// collection. ID is optional for records written before ids existed.
type Video struct {
	ID        string   `json:"id,omitempty"`
	Path      string   `json:"path"`
	Name      string   `json:"name"`
	Artist    string   `json:"artist"`
	Song      string   `json:"song"`
	Style     []Style  `json:"style"`
	Tags      []string `json:"tags"`
	Thumbnail string   `json:"thumbnail"`
	SizeBytes uint64   `json:"size_bytes"`
}

// NewVideo builds a video for the file at path. The display name is the
// file's base name; all metadata starts empty.
func NewVideo(path, thumbnail string, sizeBytes uint64) Video {
	name := filepath.Base(path)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "unknown"
	}
	return Video{
		Path:      path,
		Name:      name,
		Style:     []Style{},
		Tags:      []string{},
		Thumbnail: thumbnail,
		SizeBytes: sizeBytes,
	}
}

// StyleText renders the style set as space-joined display names.
func (v Video) StyleText() string {
	parts := make([]string, len(v.Style))
	for i, s := range v.Style {
		parts[i] = string(s)
	}
	return strings.Join(parts, " ")
}

// TagsText renders the tags as a space-joined string.
func (v Video) TagsText() string {
	return strings.Join(v.Tags, " ")
}

// Clone returns a deep copy of v.
func (v Video) Clone() Video {
	out := v
	out.Style = slices.Clone(v.Style)
	out.Tags = slices.Clone(v.Tags)
	if out.Style == nil {
		out.Style = []Style{}
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out
}

// WithMetadata returns a copy of v carrying the editable fields of m.
// Path, thumbnail, size and id are left untouched.
func (v Video) WithMetadata(m Video) Video {
	out := v.Clone()
	out.Name = m.Name
	out.Artist = m.Artist
	out.Song = m.Song
	out.Style = slices.Clone(m.Style)
	out.Tags = slices.Clone(m.Tags)
	if out.Style == nil {
		out.Style = []Style{}
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out
}
