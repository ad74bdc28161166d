// Package search defines the contract between the indexing engine and a
// concrete full-text backend, and the Engine that keeps a backend in sync
// with a riffbox.CollectionStore.
//
// A backend exposes a schema of field handles (type F) and an exclusive
// writer (type W) that accepts documents as field/value pairs. Readers are
// opened per search and only observe committed documents after Reload.
package search

// MaxResults caps the number of hits a single search returns.
const MaxResults = 50

// Field names used by backends that address fields by name.
const (
	FieldName    = "name"
	FieldArtist  = "artist"
	FieldSong    = "song"
	FieldStyle   = "style"
	FieldTags    = "tags"
	FieldPath    = "path"
	FieldVideoID = "video_id"
)

// Fields holds one handle per schema field. Name, Artist, Song, Style and
// Tags are tokenized and stored; Path and VideoID are stored only and serve
// as join keys back to the store.
type Fields[F any] struct {
	Name    F
	Artist  F
	Song    F
	Style   F
	Tags    F
	Path    F
	VideoID F
}

// FieldValue is one field of a document being indexed.
type FieldValue[F any] struct {
	Field F
	Value string
}

// Writer adds documents to an index. Changes become visible to readers
// only after Commit followed by Reader.Reload.
type Writer[F any] interface {
	DeleteAllDocuments() error
	AddDocument(doc []FieldValue[F]) error
	Commit() error
	// Release gives up exclusive access. It is safe to call more than once.
	Release()
}

// Hit is a ranked search result carrying the stored join keys.
type Hit struct {
	Path    string
	VideoID string
	Score   float64
}

// Reader queries a point-in-time view of the index.
type Reader interface {
	// Reload moves the view to the latest committed state.
	Reload() error
	// Search returns up to limit hits ordered by descending score.
	Search(query string, limit int) ([]Hit, error)
	DocCount() (uint64, error)
	Close() error
}

// Backend is a concrete full-text index.
type Backend[W Writer[F], F any] interface {
	Schema() Fields[F]
	// AcquireWriter blocks until the caller holds the only writer.
	AcquireWriter() (W, error)
	OpenReader() (Reader, error)
}
