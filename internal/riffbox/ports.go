package riffbox

// CollectionStore is the authoritative record store for collections.
//
// Add is an upsert keyed on Collection.ID. Storage failures are logged by
// the implementation and never returned; List returns whatever could be read.
type CollectionStore interface {
	List() []Collection
	Add(c Collection)
	GetByID(id string) (Collection, bool)
}

// VideoFactory turns a file path into a populated Video.
type VideoFactory interface {
	CreateVideo(path string) (Video, error)
}

// VideoFactoryFunc adapts a function to the VideoFactory interface.
type VideoFactoryFunc func(path string) (Video, error)

func (f VideoFactoryFunc) CreateVideo(path string) (Video, error) { return f(path) }

// PathAuthorizer decides whether a video path may leave the system.
// A nil PathAuthorizer allows every path.
type PathAuthorizer func(path string) error

// Indexer rebuilds a search index from a CollectionStore and runs queries
// against it, publishing a video:selected event per authorized hit.
type Indexer interface {
	IndexAllVideos() error
	Search(query string, limit int, bus EventBus, authorize PathAuthorizer) error
}

// Codec transforms persisted bytes, e.g. to encrypt them at rest.
// Extension is appended to file and object names written through it.
type Codec interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
	Extension() string
}
