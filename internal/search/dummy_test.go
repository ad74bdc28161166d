package search_test

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"riffbox/internal/search"
)

// dummyField addresses schema fields by position so the engine is exercised
// with a non-string handle type.
type dummyField int

const (
	dName dummyField = iota
	dArtist
	dSong
	dStyle
	dTags
	dPath
	dVideoID
)

var dummySchema = search.Fields[dummyField]{
	Name: dName, Artist: dArtist, Song: dSong, Style: dStyle, Tags: dTags, Path: dPath, VideoID: dVideoID,
}

type dummyDoc map[dummyField]string

// dummyBackend records every writer call and answers queries with a naive
// whitespace-token match over the text fields. It does no stemming.
type dummyBackend struct {
	mu        sync.Mutex
	writerMu  sync.Mutex
	committed []dummyDoc
	ops       []string
	reloads   int

	failAddAt  int // 1-based add call that fails, 0 for never
	failCommit bool
	fixedHits  []search.Hit
	adds       int
}

var _ search.Backend[*dummyWriter, dummyField] = (*dummyBackend)(nil)

func (b *dummyBackend) Schema() search.Fields[dummyField] { return dummySchema }

func (b *dummyBackend) AcquireWriter() (*dummyWriter, error) {
	if !b.writerMu.TryLock() {
		return nil, fmt.Errorf("writer already held")
	}
	b.mu.Lock()
	staged := append([]dummyDoc(nil), b.committed...)
	b.mu.Unlock()
	return &dummyWriter{backend: b, staged: staged}, nil
}

func (b *dummyBackend) OpenReader() (search.Reader, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return &dummyReader{backend: b, view: append([]dummyDoc(nil), b.committed...)}, nil
}

func (b *dummyBackend) record(op string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops = append(b.ops, op)
}

func (b *dummyBackend) Ops() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.ops...)
}

func (b *dummyBackend) Committed() []dummyDoc {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]dummyDoc(nil), b.committed...)
}

type dummyWriter struct {
	backend  *dummyBackend
	staged   []dummyDoc
	released bool
}

func (w *dummyWriter) DeleteAllDocuments() error {
	w.backend.record("delete")
	w.staged = nil
	return nil
}

func (w *dummyWriter) AddDocument(fields []search.FieldValue[dummyField]) error {
	w.backend.record("add")
	w.backend.adds++
	if w.backend.failAddAt > 0 && w.backend.adds == w.backend.failAddAt {
		return fmt.Errorf("disk full")
	}
	doc := dummyDoc{}
	for _, f := range fields {
		doc[f.Field] = f.Value
	}
	w.staged = append(w.staged, doc)
	return nil
}

func (w *dummyWriter) Commit() error {
	w.backend.record("commit")
	if w.backend.failCommit {
		return fmt.Errorf("commit refused")
	}
	w.backend.mu.Lock()
	defer w.backend.mu.Unlock()
	w.backend.committed = append([]dummyDoc(nil), w.staged...)
	return nil
}

func (w *dummyWriter) Release() {
	if w.released {
		return
	}
	w.released = true
	w.backend.writerMu.Unlock()
}

type dummyReader struct {
	backend *dummyBackend
	view    []dummyDoc
}

func (r *dummyReader) Reload() error {
	r.backend.mu.Lock()
	defer r.backend.mu.Unlock()
	r.backend.reloads++
	r.view = append([]dummyDoc(nil), r.backend.committed...)
	return nil
}

func (r *dummyReader) Search(query string, limit int) ([]search.Hit, error) {
	if r.backend.fixedHits != nil {
		hits := r.backend.fixedHits
		if len(hits) > limit {
			hits = hits[:limit]
		}
		return hits, nil
	}

	terms := strings.Fields(strings.ToLower(query))
	var hits []search.Hit
	for _, doc := range r.view {
		score := 0
		for _, field := range []dummyField{dName, dArtist, dSong, dStyle, dTags} {
			tokens := strings.Fields(strings.ToLower(doc[field]))
			for _, term := range terms {
				for _, tok := range tokens {
					if tok == term {
						score++
					}
				}
			}
		}
		if score > 0 {
			hits = append(hits, search.Hit{Path: doc[dPath], VideoID: doc[dVideoID], Score: float64(score)})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (r *dummyReader) DocCount() (uint64, error) { return uint64(len(r.view)), nil }

func (r *dummyReader) Close() error { return nil }
