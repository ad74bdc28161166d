package metrics

import (
	"time"

	"riffbox/internal/riffbox"
)

// Bus counts events by type before forwarding them to next.
type Bus struct {
	next riffbox.EventBus
}

var _ riffbox.EventBus = (*Bus)(nil)

func NewBus(next riffbox.EventBus) *Bus {
	return &Bus{next: next}
}

func (b *Bus) Publish(e riffbox.Event) {
	EventsPublishedTotal.WithLabelValues(e.Type).Inc()
	if b.next != nil {
		b.next.Publish(e)
	}
}

// DocCounter is implemented by indexers that can report their size.
type DocCounter interface {
	DocCount() (uint64, error)
}

// Indexer records rebuild and search metrics around an Indexer.
type Indexer struct {
	next riffbox.Indexer
}

var _ riffbox.Indexer = (*Indexer)(nil)

func NewIndexer(next riffbox.Indexer) *Indexer {
	return &Indexer{next: next}
}

func (i *Indexer) IndexAllVideos() error {
	start := time.Now()
	err := i.next.IndexAllVideos()
	IndexRebuildDuration.Observe(time.Since(start).Seconds())
	IndexRebuildsTotal.WithLabelValues(status(err)).Inc()

	if err == nil {
		if dc, ok := i.next.(DocCounter); ok {
			if n, cerr := dc.DocCount(); cerr == nil {
				IndexDocuments.Set(float64(n))
			}
		}
	}
	return err
}

func (i *Indexer) Search(query string, limit int, bus riffbox.EventBus, authorize riffbox.PathAuthorizer) error {
	start := time.Now()
	err := i.next.Search(query, limit, bus, authorize)
	SearchDuration.Observe(time.Since(start).Seconds())
	SearchQueriesTotal.WithLabelValues(status(err)).Inc()
	return err
}

// VideoFactory counts successful and failed video creations.
type VideoFactory struct {
	next riffbox.VideoFactory
}

var _ riffbox.VideoFactory = (*VideoFactory)(nil)

func NewVideoFactory(next riffbox.VideoFactory) *VideoFactory {
	return &VideoFactory{next: next}
}

func (f *VideoFactory) CreateVideo(path string) (riffbox.Video, error) {
	v, err := f.next.CreateVideo(path)
	VideosIngestedTotal.WithLabelValues(status(err)).Inc()
	return v, err
}
