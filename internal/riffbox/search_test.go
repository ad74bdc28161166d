package riffbox_test

import (
	"errors"
	"reflect"
	"testing"

	"riffbox/internal/events"
	"riffbox/internal/riffbox"
)

// fakeIndexer records calls in order.
type fakeIndexer struct {
	calls      []string
	rebuildErr error
	searchErr  error
	hits       []riffbox.Video
}

func (f *fakeIndexer) IndexAllVideos() error {
	f.calls = append(f.calls, "index")
	return f.rebuildErr
}

func (f *fakeIndexer) Search(query string, limit int, bus riffbox.EventBus, authorize riffbox.PathAuthorizer) error {
	f.calls = append(f.calls, "search:"+query)
	if f.searchErr != nil {
		return f.searchErr
	}
	for _, v := range f.hits {
		if authorize != nil {
			if err := authorize(v.Path); err != nil {
				return err
			}
		}
		bus.Publish(riffbox.Event{Type: riffbox.EventVideoSelected, Data: v})
	}
	return nil
}

func TestSearchService_Unbound(t *testing.T) {
	idx := &fakeIndexer{hits: []riffbox.Video{riffbox.NewVideo("a.mp4", "", 0)}}
	svc := riffbox.NewSearchService(idx, riffbox.NewNopLogger())

	if err := svc.Search("anything", 10, nil); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(idx.calls) != 0 {
		t.Errorf("indexer calls = %v, want none", idx.calls)
	}
}

func TestSearchService_Search(t *testing.T) {
	tests := []struct {
		name      string
		rebuild   bool
		wantCalls []string
	}{
		{"rebuilds first", true, []string{"index", "search:interpol"}},
		{"search only", false, []string{"search:interpol"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := &fakeIndexer{hits: []riffbox.Video{riffbox.NewVideo("a.mp4", "", 0)}}
			bus := events.NewMemoryBus()
			svc := riffbox.NewSearchService(idx, riffbox.NewNopLogger())
			svc.Bind(bus)
			svc.SetRebuildOnSearch(tt.rebuild)

			if err := svc.Search("interpol", 10, nil); err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if !reflect.DeepEqual(idx.calls, tt.wantCalls) {
				t.Errorf("indexer calls = %v, want %v", idx.calls, tt.wantCalls)
			}
			if n := len(bus.SelectedVideos()); n != 1 {
				t.Errorf("selected videos = %d, want 1", n)
			}
		})
	}
}

func TestSearchService_Errors(t *testing.T) {
	t.Run("rebuild failure stops the search", func(t *testing.T) {
		boom := errors.New("disk gone")
		idx := &fakeIndexer{rebuildErr: boom}
		svc := riffbox.NewSearchService(idx, riffbox.NewNopLogger())
		svc.Bind(events.NewMemoryBus())

		err := svc.Search("q", 10, nil)
		if !errors.Is(err, boom) {
			t.Fatalf("Search() error = %v, want %v", err, boom)
		}
		if !reflect.DeepEqual(idx.calls, []string{"index"}) {
			t.Errorf("indexer calls = %v, want [index]", idx.calls)
		}
	})

	t.Run("authorization failure is returned", func(t *testing.T) {
		denied := errors.New("denied")
		idx := &fakeIndexer{hits: []riffbox.Video{
			riffbox.NewVideo("a.mp4", "", 0),
			riffbox.NewVideo("b.mp4", "", 0),
		}}
		bus := events.NewMemoryBus()
		svc := riffbox.NewSearchService(idx, riffbox.NewNopLogger())

		authorize := func(path string) error {
			if path == "b.mp4" {
				return denied
			}
			return nil
		}
		err := svc.SearchWith(bus, "q", 10, authorize)
		if !errors.Is(err, denied) {
			t.Fatalf("SearchWith() error = %v, want %v", err, denied)
		}
		if n := len(bus.SelectedVideos()); n != 1 {
			t.Errorf("selected videos = %d, want 1", n)
		}
	})
}
