package riffbox

import "fmt"

// LibraryService owns collection mutations: creating collections from file
// paths, appending videos, and editing video metadata. Every mutation is
// announced on the event bus and persisted through the CollectionStore.
type LibraryService struct {
	store   CollectionStore
	factory VideoFactory
	bus     EventBus
	logger  Logger
	clock   Clock
	idgen   IDGenerator
}

// NewLibraryService creates a LibraryService. A nil bus or clock falls back
// to the process-wide default at call time.
func NewLibraryService(store CollectionStore, factory VideoFactory, bus EventBus, logger Logger, clock Clock, idgen IDGenerator) *LibraryService {
	return &LibraryService{
		store:   store,
		factory: factory,
		bus:     bus,
		logger:  logger,
		clock:   clock,
		idgen:   idgen,
	}
}

// CreateCollection creates a collection titled after today's date, ingests
// paths into it, and persists it. The collection:created event precedes any
// video:added event. If ingestion fails part way, the videos added so far are
// still persisted and the ingestion error is returned alongside them.
func (s *LibraryService) CreateCollection(paths []string) (Collection, error) {
	if len(paths) == 0 {
		return Collection{}, ErrEmptyInput
	}

	c := NewCollection(s.idgen.New(), DefaultCollectionTitle(clockOrDefault(s.clock).Now()))
	s.publishCreated(c)

	err := s.AddFilesToCollection(paths, &c)
	s.store.Add(c)
	if err != nil {
		s.logger.Warn("collection created with errors", "collection_id", c.ID, "videos", len(c.Videos), "error", err)
		return c, err
	}

	s.logger.Info("collection created", "collection_id", c.ID, "title", c.Title, "videos", len(c.Videos))
	return c, nil
}

// AddFilesToCollection creates a video for each path in order and appends it
// to c, publishing video:added after each append. The first factory error
// aborts the remaining paths and is returned unchanged; videos already
// appended stay in c. The caller persists c.
func (s *LibraryService) AddFilesToCollection(paths []string, c *Collection) error {
	if len(paths) == 0 {
		return ErrEmptyInput
	}

	for _, p := range paths {
		v, err := s.factory.CreateVideo(p)
		if err != nil {
			s.logger.Error("creating video failed", "path", p, "error", err)
			return err
		}

		if c.FindVideo(v.Path) >= 0 {
			s.logger.Warn("video already in collection, skipping", "collection_id", c.ID, "path", v.Path)
			continue
		}
		if v.ID == "" {
			v.ID = s.idgen.New()
		}

		c.Videos = append(c.Videos, v)
		busOrDefault(s.bus).Publish(Event{
			Type: EventVideoAdded,
			Data: VideoAddedPayload{CollectionID: c.ID, Video: v.Clone()},
		})
		s.logger.Debug("video added", "collection_id", c.ID, "path", v.Path)
	}

	return nil
}

// IngestInbox appends paths to today's inbox collection, creating it on
// first use.
func (s *LibraryService) IngestInbox(paths []string) (Collection, error) {
	if len(paths) == 0 {
		return Collection{}, ErrEmptyInput
	}

	title := InboxCollectionTitle(clockOrDefault(s.clock).Now())
	c, found := s.findByTitle(title)
	if !found {
		c = NewCollection(s.idgen.New(), title)
		s.publishCreated(c)
	}

	err := s.AddFilesToCollection(paths, &c)
	s.store.Add(c)
	return c, err
}

// UpdateVideo overwrites the editable metadata (name, artist, song, style,
// tags) of the video in collectionID whose path equals v.Path, then persists
// the collection.
func (s *LibraryService) UpdateVideo(collectionID string, v Video) (Collection, error) {
	c, ok := s.store.GetByID(collectionID)
	if !ok {
		return Collection{}, fmt.Errorf("%w: %s", ErrCollectionNotFound, collectionID)
	}

	i := c.FindVideo(v.Path)
	if i < 0 {
		return Collection{}, fmt.Errorf("%w: %s in collection %s", ErrVideoNotFound, v.Path, collectionID)
	}

	c.Videos[i] = c.Videos[i].WithMetadata(v)
	s.store.Add(c)

	s.logger.Info("video updated", "collection_id", collectionID, "path", v.Path)
	return c, nil
}

// ListCollections returns every readable collection in the store.
func (s *LibraryService) ListCollections() []Collection {
	return s.store.List()
}

// GetCollection returns the collection with the given id.
func (s *LibraryService) GetCollection(id string) (Collection, error) {
	c, ok := s.store.GetByID(id)
	if !ok {
		return Collection{}, fmt.Errorf("%w: %s", ErrCollectionNotFound, id)
	}
	return c, nil
}

func (s *LibraryService) publishCreated(c Collection) {
	busOrDefault(s.bus).Publish(Event{
		Type: EventCollectionCreated,
		Data: CollectionCreatedPayload{CollectionID: c.ID, Title: c.Title, Videos: []Video{}},
	})
}

func (s *LibraryService) findByTitle(title string) (Collection, bool) {
	for _, c := range s.store.List() {
		if c.Title == title {
			return c, true
		}
	}
	return Collection{}, false
}
