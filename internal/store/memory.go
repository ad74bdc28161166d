package store

import (
	"sync"

	"riffbox/internal/riffbox"
)

// MemoryStore is an in-memory CollectionStore. Collections keep their
// insertion order; Add replaces an existing collection in its slot.
// This implementation is safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	collections []riffbox.Collection
}

var _ riffbox.CollectionStore = (*MemoryStore)(nil)

// NewMemoryStore creates a store holding copies of the given collections.
func NewMemoryStore(initial ...riffbox.Collection) *MemoryStore {
	s := &MemoryStore{}
	for _, c := range initial {
		s.Add(c)
	}
	return s
}

func (s *MemoryStore) List() []riffbox.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]riffbox.Collection, len(s.collections))
	for i, c := range s.collections {
		out[i] = c.Clone()
	}
	return out
}

func (s *MemoryStore) Add(c riffbox.Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.collections {
		if s.collections[i].ID == c.ID {
			s.collections[i] = c.Clone()
			return
		}
	}
	s.collections = append(s.collections, c.Clone())
}

func (s *MemoryStore) GetByID(id string) (riffbox.Collection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.collections {
		if c.ID == id {
			return c.Clone(), true
		}
	}
	return riffbox.Collection{}, false
}
