package store

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"riffbox/internal/config"
	"riffbox/internal/riffbox"
	"riffbox/internal/testutil"
)

// storeFactories builds every CollectionStore implementation for the shared
// contract tests.
func storeFactories() map[string]func(t *testing.T) riffbox.CollectionStore {
	return map[string]func(t *testing.T) riffbox.CollectionStore{
		"memory": func(t *testing.T) riffbox.CollectionStore {
			return NewMemoryStore()
		},
		"filesystem": func(t *testing.T) riffbox.CollectionStore {
			s, err := NewFileSystemStore(t.TempDir(), nil, testutil.FixedClock(), riffbox.NewNopLogger())
			if err != nil {
				t.Fatalf("NewFileSystemStore() error = %v", err)
			}
			return s
		},
		"sqlite": func(t *testing.T) riffbox.CollectionStore {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "riffbox.db"), testutil.FixedClock(), riffbox.NewNopLogger())
			if err != nil {
				t.Fatalf("NewSQLiteStore() error = %v", err)
			}
			t.Cleanup(func() { s.Close() })
			return s
		},
		"s3": func(t *testing.T) riffbox.CollectionStore {
			return NewS3Store(newFakeS3(), "bucket", "riffbox/", nil, testutil.FixedClock(), riffbox.NewNopLogger())
		},
	}
}

func TestCollectionStore_Contract(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			t.Run("upsert replaces existing collection", func(t *testing.T) {
				s := newStore(t)

				first := testutil.NewTestCollection("c1", "Collection - 2026-01-28",
					testutil.NewTestVideo("/videos/a.mp4", testutil.WithID("v1")))
				s.Add(first)

				second := first.Clone()
				second.Title = "Renamed"
				second.Videos[0].Artist = "Interpol"
				s.Add(second)

				got := s.List()
				if len(got) != 1 {
					t.Fatalf("len(List()) = %d, want 1", len(got))
				}
				if !reflect.DeepEqual(got[0], second) {
					t.Errorf("List()[0] = %+v, want %+v", got[0], second)
				}
			})

			t.Run("get by id", func(t *testing.T) {
				s := newStore(t)
				c := testutil.NewTestCollection("c1", "One",
					testutil.NewTestVideo("/videos/a.mp4",
						testutil.WithArtist("Interpol"),
						testutil.WithSong("Evil"),
						testutil.WithStyles(riffbox.StyleRock, riffbox.StyleHardRock),
						testutil.WithTags("live", "2004"),
					))
				s.Add(c)

				got, ok := s.GetByID("c1")
				if !ok {
					t.Fatal("GetByID(c1) ok = false, want true")
				}
				if !reflect.DeepEqual(got, c) {
					t.Errorf("GetByID(c1) = %+v, want %+v", got, c)
				}

				if _, ok := s.GetByID("missing"); ok {
					t.Error("GetByID(missing) ok = true, want false")
				}
			})

			t.Run("keeps insertion order", func(t *testing.T) {
				s := newStore(t)
				for _, id := range []string{"c1", "c2", "c3"} {
					s.Add(testutil.NewTestCollection(id, "T "+id))
				}
				// Updating c1 must not move it.
				s.Add(testutil.NewTestCollection("c1", "T c1 updated"))

				got := s.List()
				if len(got) != 3 {
					t.Fatalf("len(List()) = %d, want 3", len(got))
				}
				for i, want := range []string{"c1", "c2", "c3"} {
					if got[i].ID != want {
						t.Errorf("List()[%d].ID = %q, want %q", i, got[i].ID, want)
					}
				}
			})

			t.Run("returned collections are copies", func(t *testing.T) {
				s := newStore(t)
				s.Add(testutil.NewTestCollection("c1", "One", testutil.NewTestVideo("/videos/a.mp4")))

				got, _ := s.GetByID("c1")
				got.Videos[0].Artist = "mutated"

				again, _ := s.GetByID("c1")
				if again.Videos[0].Artist != "" {
					t.Errorf("stored Artist = %q, want empty", again.Videos[0].Artist)
				}
			})
		})
	}
}

func TestNewCollectionStoreFromConfig(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		typ     string
		dir     string
		dataDir string
		wantErr bool
	}{
		{name: "memory", typ: "memory"},
		{name: "filesystem", typ: "filesystem", dir: filepath.Join(dir, "collections")},
		{name: "filesystem without dir", typ: "filesystem", wantErr: true},
		{name: "sqlite", typ: "sqlite", dataDir: filepath.Join(dir, "db")},
		{name: "sqlite without data dir", typ: "sqlite", wantErr: true},
		{name: "s3 without bucket", typ: "s3", wantErr: true},
		{name: "unknown", typ: "tape", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			t.Cleanup(cancel)
			cfg := config.StoreConfig{Type: tt.typ, Dir: tt.dir, DataDir: tt.dataDir}
			got, err := NewCollectionStoreFromConfig(ctx, cfg, nil, testutil.FixedClock(), riffbox.NewNopLogger())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewCollectionStoreFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if closer, ok := got.(interface{ Close() error }); ok {
				t.Cleanup(func() { closer.Close() })
			}
			if len(got.List()) != 0 {
				t.Errorf("len(List()) = %d, want 0", len(got.List()))
			}
		})
	}
}
