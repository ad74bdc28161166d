package riffbox

import (
	"fmt"
	"sync"
)

// SearchService is the facade over an Indexer. It carries the event bus that
// receives video:selected events and, per call, an optional PathAuthorizer.
// Until a bus is bound, Search is a no-op.
type SearchService struct {
	indexer Indexer
	logger  Logger

	mu              sync.RWMutex
	bus             EventBus
	rebuildOnSearch bool
}

// NewSearchService creates an unbound SearchService that rebuilds the index
// before every search.
func NewSearchService(indexer Indexer, logger Logger) *SearchService {
	return &SearchService{
		indexer:         indexer,
		logger:          logger,
		rebuildOnSearch: true,
	}
}

// Bind sets the event bus that receives search results.
func (s *SearchService) Bind(bus EventBus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bus = bus
}

// SetRebuildOnSearch controls whether Search rebuilds the index first.
func (s *SearchService) SetRebuildOnSearch(rebuild bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebuildOnSearch = rebuild
}

// IndexAllVideos rebuilds the index from the store.
func (s *SearchService) IndexAllVideos() error {
	if err := s.indexer.IndexAllVideos(); err != nil {
		return fmt.Errorf("indexing videos: %w", err)
	}
	return nil
}

// Search runs query against the index and publishes the authorized hits on
// the bound bus. Without a bound bus it does nothing.
func (s *SearchService) Search(query string, limit int, authorize PathAuthorizer) error {
	s.mu.RLock()
	bus := s.bus
	s.mu.RUnlock()

	if bus == nil {
		s.logger.Debug("search skipped, no event bus bound", "query", query)
		return nil
	}
	return s.SearchWith(bus, query, limit, authorize)
}

// SearchWith is Search with an explicit event bus, e.g. one collecting the
// results of a single request.
func (s *SearchService) SearchWith(bus EventBus, query string, limit int, authorize PathAuthorizer) error {
	s.mu.RLock()
	rebuild := s.rebuildOnSearch
	s.mu.RUnlock()

	if rebuild {
		if err := s.IndexAllVideos(); err != nil {
			return err
		}
	}

	if err := s.indexer.Search(query, limit, bus, authorize); err != nil {
		s.logger.Warn("search failed", "query", query, "error", err)
		return fmt.Errorf("searching %q: %w", query, err)
	}
	return nil
}
