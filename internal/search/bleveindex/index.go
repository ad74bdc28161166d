// Package bleveindex is the bleve implementation of the search backend.
// The index lives in memory and is rebuilt from the collection store.
package bleveindex

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"riffbox/internal/riffbox"
	"riffbox/internal/search"
)

// Options configures an Index.
type Options struct {
	Language string
}

// generation is one bleve index instance. A rebuild publishes a new
// generation; the previous one is closed once no reader pins it.
type generation struct {
	idx     bleve.Index
	refs    int
	retired bool
}

// Index is an in-memory bleve backend. Only one Writer exists at a time.
// Readers pin the generation current when they were opened or last
// reloaded. DeleteAllDocuments starts a new generation, so a reader never
// sees the deletion until Reload. Commits after the one that publishes a
// generation apply in place and are visible to readers already pinning it.
type Index struct {
	mapping mapping.IndexMapping
	writer  sync.Mutex
	seq     atomic.Uint64

	mu      sync.Mutex
	current *generation
}

var _ search.Backend[*Writer, string] = (*Index)(nil)

// New creates an empty index.
func New(opts Options) (*Index, error) {
	m, err := NewMapping(opts.Language)
	if err != nil {
		return nil, err
	}
	idx, err := bleve.NewMemOnly(m)
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}
	return &Index{mapping: m, current: &generation{idx: idx}}, nil
}

// NewEngine creates a search engine over idx.
func NewEngine(idx *Index, store riffbox.CollectionStore, logger riffbox.Logger, maxResults int) *search.Engine[*Writer, string] {
	return search.NewEngine[*Writer, string](idx, store, logger, maxResults)
}

func (i *Index) Schema() search.Fields[string] {
	return search.Fields[string]{
		Name:    search.FieldName,
		Artist:  search.FieldArtist,
		Song:    search.FieldSong,
		Style:   search.FieldStyle,
		Tags:    search.FieldTags,
		Path:    search.FieldPath,
		VideoID: search.FieldVideoID,
	}
}

func (i *Index) AcquireWriter() (*Writer, error) {
	i.writer.Lock()
	i.mu.Lock()
	target := i.current.idx
	i.mu.Unlock()
	return &Writer{owner: i, target: target, batch: target.NewBatch()}, nil
}

func (i *Index) OpenReader() (search.Reader, error) {
	return &Reader{owner: i, gen: i.acquire()}, nil
}

// Close closes the current generation. Readers still open keep theirs.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.retireLocked(i.current)
}

func (i *Index) acquire() *generation {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.current.refs++
	return i.current
}

// release unpins g and closes it when it was the last pin on a retired
// generation.
func (i *Index) release(g *generation) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	g.refs--
	if g.retired && g.refs == 0 {
		if err := g.idx.Close(); err != nil {
			return fmt.Errorf("closing retired index: %w", err)
		}
	}
	return nil
}

func (i *Index) publish(idx bleve.Index) {
	i.mu.Lock()
	defer i.mu.Unlock()
	old := i.current
	i.current = &generation{idx: idx}
	i.retireLocked(old)
}

func (i *Index) retireLocked(g *generation) error {
	if g.retired {
		return nil
	}
	g.retired = true
	if g.refs == 0 {
		return g.idx.Close()
	}
	return nil
}

// Writer batches documents for one bleve index generation.
type Writer struct {
	owner    *Index
	target   bleve.Index
	batch    *bleve.Batch
	fresh    bool
	released bool
}

// DeleteAllDocuments starts a new, empty generation. It becomes current
// on the next Commit.
func (w *Writer) DeleteAllDocuments() error {
	idx, err := bleve.NewMemOnly(w.owner.mapping)
	if err != nil {
		return fmt.Errorf("creating index: %w", err)
	}
	if w.fresh {
		w.target.Close()
	}
	w.target = idx
	w.batch = idx.NewBatch()
	w.fresh = true
	return nil
}

func (w *Writer) AddDocument(doc []search.FieldValue[string]) error {
	data := make(map[string]interface{}, len(doc))
	for _, f := range doc {
		data[f.Field] = f.Value
	}
	id := fmt.Sprintf("doc-%d", w.owner.seq.Add(1))
	if err := w.batch.Index(id, data); err != nil {
		return fmt.Errorf("batching document: %w", err)
	}
	return nil
}

func (w *Writer) Commit() error {
	if err := w.target.Batch(w.batch); err != nil {
		return fmt.Errorf("applying batch: %w", err)
	}
	w.batch = w.target.NewBatch()
	if w.fresh {
		w.owner.publish(w.target)
		w.fresh = false
	}
	return nil
}

// Release discards uncommitted changes and frees the writer.
func (w *Writer) Release() {
	if w.released {
		return
	}
	w.released = true
	if w.fresh {
		w.target.Close()
	}
	w.owner.writer.Unlock()
}

// Reader queries a pinned generation.
type Reader struct {
	owner *Index
	gen   *generation
}

func (r *Reader) Reload() error {
	if r.gen == nil {
		return fmt.Errorf("reader is closed")
	}
	g := r.owner.acquire()
	old := r.gen
	r.gen = g
	return r.owner.release(old)
}

func (r *Reader) Search(query string, limit int) ([]search.Hit, error) {
	if r.gen == nil {
		return nil, fmt.Errorf("reader is closed")
	}

	req := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(query), limit, 0, false)
	req.Fields = []string{search.FieldPath, search.FieldVideoID}

	res, err := r.gen.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	hits := make([]search.Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		path, _ := h.Fields[search.FieldPath].(string)
		id, _ := h.Fields[search.FieldVideoID].(string)
		hits = append(hits, search.Hit{Path: path, VideoID: id, Score: h.Score})
	}
	return hits, nil
}

func (r *Reader) DocCount() (uint64, error) {
	if r.gen == nil {
		return 0, fmt.Errorf("reader is closed")
	}
	return r.gen.idx.DocCount()
}

func (r *Reader) Close() error {
	if r.gen == nil {
		return nil
	}
	g := r.gen
	r.gen = nil
	return r.owner.release(g)
}
