package riffbox

import "time"

// collectionTitleLayout formats the default collection title date.
const collectionTitleLayout = "2006-01-02"

// Collection is a titled, ordered group of videos. It is the unit of
// persistence: stores read and write whole collections.
type Collection struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Videos []Video `json:"videos"`
}

// NewCollection creates an empty collection with the given id and title.
func NewCollection(id, title string) Collection {
	return Collection{ID: id, Title: title, Videos: []Video{}}
}

// DefaultCollectionTitle returns "Collection - YYYY-MM-DD" for t.
func DefaultCollectionTitle(t time.Time) string {
	return "Collection - " + t.Format(collectionTitleLayout)
}

// InboxCollectionTitle returns "Inbox - YYYY-MM-DD" for t.
func InboxCollectionTitle(t time.Time) string {
	return "Inbox - " + t.Format(collectionTitleLayout)
}

// FindVideo returns the index of the video with the given path, or -1.
func (c *Collection) FindVideo(path string) int {
	for i := range c.Videos {
		if c.Videos[i].Path == path {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of c.
func (c Collection) Clone() Collection {
	out := c
	out.Videos = make([]Video, len(c.Videos))
	for i, v := range c.Videos {
		out.Videos[i] = v.Clone()
	}
	return out
}
