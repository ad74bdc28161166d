package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"riffbox/internal/riffbox"
)

type stubIndexer struct {
	rebuildErr error
	searchErr  error
	docs       uint64
}

func (s *stubIndexer) IndexAllVideos() error { return s.rebuildErr }

func (s *stubIndexer) Search(string, int, riffbox.EventBus, riffbox.PathAuthorizer) error {
	return s.searchErr
}

func (s *stubIndexer) DocCount() (uint64, error) { return s.docs, nil }

func TestBus(t *testing.T) {
	counter := EventsPublishedTotal.WithLabelValues(riffbox.EventVideoAdded)
	before := promtest.ToFloat64(counter)

	var forwarded int
	bus := NewBus(riffbox.EventBusFunc(func(riffbox.Event) { forwarded++ }))
	bus.Publish(riffbox.Event{Type: riffbox.EventVideoAdded})
	bus.Publish(riffbox.Event{Type: riffbox.EventVideoAdded})

	if got := promtest.ToFloat64(counter) - before; got != 2 {
		t.Errorf("events counted = %v, want 2", got)
	}
	if forwarded != 2 {
		t.Errorf("forwarded = %d, want 2", forwarded)
	}
}

func TestIndexer(t *testing.T) {
	ok := IndexRebuildsTotal.WithLabelValues("success")
	failed := IndexRebuildsTotal.WithLabelValues("error")
	okBefore, failedBefore := promtest.ToFloat64(ok), promtest.ToFloat64(failed)

	idx := NewIndexer(&stubIndexer{docs: 7})
	if err := idx.IndexAllVideos(); err != nil {
		t.Fatalf("IndexAllVideos() error = %v", err)
	}
	if got := promtest.ToFloat64(IndexDocuments); got != 7 {
		t.Errorf("documents gauge = %v, want 7", got)
	}

	boom := errors.New("boom")
	failing := NewIndexer(&stubIndexer{rebuildErr: boom, searchErr: boom})
	if err := failing.IndexAllVideos(); !errors.Is(err, boom) {
		t.Errorf("IndexAllVideos() error = %v, want %v", err, boom)
	}

	if got := promtest.ToFloat64(ok) - okBefore; got != 1 {
		t.Errorf("successful rebuilds = %v, want 1", got)
	}
	if got := promtest.ToFloat64(failed) - failedBefore; got != 1 {
		t.Errorf("failed rebuilds = %v, want 1", got)
	}

	searchFailed := SearchQueriesTotal.WithLabelValues("error")
	before := promtest.ToFloat64(searchFailed)
	if err := failing.Search("q", 10, riffbox.DiscardBus{}, nil); !errors.Is(err, boom) {
		t.Errorf("Search() error = %v, want %v", err, boom)
	}
	if got := promtest.ToFloat64(searchFailed) - before; got != 1 {
		t.Errorf("failed searches = %v, want 1", got)
	}
}

func TestVideoFactory(t *testing.T) {
	failed := VideosIngestedTotal.WithLabelValues("error")
	before := promtest.ToFloat64(failed)

	f := NewVideoFactory(riffbox.VideoFactoryFunc(func(path string) (riffbox.Video, error) {
		return riffbox.Video{}, errors.New("unreadable")
	}))
	if _, err := f.CreateVideo("a.mp4"); err == nil {
		t.Fatal("CreateVideo() error = nil, want error")
	}
	if got := promtest.ToFloat64(failed) - before; got != 1 {
		t.Errorf("failed ingestions = %v, want 1", got)
	}
}

func TestMiddleware(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Middleware)
	r.HandleFunc("/api/collections/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/collections/{id}", "404")
	before := promtest.ToFloat64(counter)

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/collections/"+id, nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	}

	if got := promtest.ToFloat64(counter) - before; got != 2 {
		t.Errorf("requests counted = %v, want 2", got)
	}
}
