package search

import (
	"fmt"
	"strings"

	"riffbox/internal/riffbox"
)

// Engine rebuilds a Backend from a CollectionStore and answers queries by
// joining hits back to stored videos.
type Engine[W Writer[F], F any] struct {
	backend    Backend[W, F]
	store      riffbox.CollectionStore
	logger     riffbox.Logger
	maxResults int
}

// NewEngine creates an Engine over backend. maxResults <= 0 or above
// MaxResults is clamped to MaxResults.
func NewEngine[W Writer[F], F any](backend Backend[W, F], store riffbox.CollectionStore, logger riffbox.Logger, maxResults int) *Engine[W, F] {
	if maxResults <= 0 || maxResults > MaxResults {
		maxResults = MaxResults
	}
	return &Engine[W, F]{
		backend:    backend,
		store:      store,
		logger:     logger,
		maxResults: maxResults,
	}
}

// IndexAllVideos replaces the index contents with one document per video
// in the store. The deletion is committed before any document is added.
// Any failure aborts the rebuild and may leave the index partially filled.
func (e *Engine[W, F]) IndexAllVideos() error {
	w, err := e.backend.AcquireWriter()
	if err != nil {
		return fmt.Errorf("acquiring index writer: %w", err)
	}
	defer w.Release()

	if err := w.DeleteAllDocuments(); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}
	if err := w.Commit(); err != nil {
		return fmt.Errorf("committing deletion: %w", err)
	}

	fields := e.backend.Schema()
	count := 0
	for _, c := range e.store.List() {
		for _, v := range c.Videos {
			if err := w.AddDocument(document(fields, v)); err != nil {
				return fmt.Errorf("indexing %s: %w", v.Path, err)
			}
			count++
		}
	}

	if err := w.Commit(); err != nil {
		return fmt.Errorf("committing documents: %w", err)
	}

	e.logger.Debug("index rebuilt", "documents", count)
	return nil
}

// Search runs query and publishes a video:selected event for each hit that
// maps to a stored video, in ranked order. authorize, when set, is called
// with each video's path first; its first error stops processing and is
// returned. Hits with no stored video are skipped.
func (e *Engine[W, F]) Search(query string, limit int, bus riffbox.EventBus, authorize riffbox.PathAuthorizer) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if limit <= 0 || limit > e.maxResults {
		limit = e.maxResults
	}
	if bus == nil {
		bus = riffbox.DefaultEventBus()
	}

	r, err := e.backend.OpenReader()
	if err != nil {
		return fmt.Errorf("opening index reader: %w", err)
	}
	defer r.Close()

	if err := r.Reload(); err != nil {
		return fmt.Errorf("reloading index reader: %w", err)
	}

	hits, err := r.Search(query, limit)
	if err != nil {
		return fmt.Errorf("querying index: %w", err)
	}

	collections := e.store.List()
	for _, hit := range hits {
		v, ok := findVideo(collections, hit)
		if !ok {
			e.logger.Debug("skipping stale index hit", "path", hit.Path)
			continue
		}

		if authorize != nil {
			if err := authorize(v.Path); err != nil {
				return fmt.Errorf("authorizing %s: %w", v.Path, err)
			}
		}

		bus.Publish(riffbox.Event{Type: riffbox.EventVideoSelected, Data: v})
	}
	return nil
}

// DocCount returns the number of documents visible to a freshly reloaded
// reader.
func (e *Engine[W, F]) DocCount() (uint64, error) {
	r, err := e.backend.OpenReader()
	if err != nil {
		return 0, fmt.Errorf("opening index reader: %w", err)
	}
	defer r.Close()

	if err := r.Reload(); err != nil {
		return 0, fmt.Errorf("reloading index reader: %w", err)
	}
	return r.DocCount()
}

func document[F any](f Fields[F], v riffbox.Video) []FieldValue[F] {
	return []FieldValue[F]{
		{Field: f.Name, Value: v.Name},
		{Field: f.Artist, Value: v.Artist},
		{Field: f.Song, Value: v.Song},
		{Field: f.Style, Value: v.StyleText()},
		{Field: f.Tags, Value: v.TagsText()},
		{Field: f.Path, Value: v.Path},
		{Field: f.VideoID, Value: v.ID},
	}
}

// findVideo scans collections for the video a hit refers to. The video id
// is the join key when both sides carry one; otherwise the path must match
// exactly.
func findVideo(collections []riffbox.Collection, hit Hit) (riffbox.Video, bool) {
	for _, c := range collections {
		for _, v := range c.Videos {
			if hit.VideoID != "" && v.ID != "" {
				if v.ID == hit.VideoID {
					return v, true
				}
				continue
			}
			if v.Path == hit.Path {
				return v, true
			}
		}
	}
	return riffbox.Video{}, false
}
