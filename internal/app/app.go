package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"riffbox/internal/config"
	"riffbox/internal/encryption"
	"riffbox/internal/events"
	"riffbox/internal/httpapi"
	"riffbox/internal/media"
	"riffbox/internal/metrics"
	"riffbox/internal/riffbox"
	"riffbox/internal/search/bleveindex"
	"riffbox/internal/store"
)

// Options control how an App is opened.
type Options struct {
	// Operation names the CLI command being run, e.g. "CreateCollection".
	Operation string
	// Passphrase unlocks age keys. Only called when encryption is "age".
	Passphrase encryption.PassphraseFunc
	// Verbose enables debug logging.
	Verbose bool
	// Clock defaults to the real clock.
	Clock riffbox.Clock
}

// App is the application layer between the CLI and the riffbox services.
// It constructs all dependencies from config, exposes operations that
// accept raw string paths, and releases resources on Close.
type App struct {
	cfg     *config.Config
	logger  riffbox.Logger
	logFile *os.File
	op      *Operation
	clock   riffbox.Clock

	store     riffbox.CollectionStore
	index     *bleveindex.Index
	hub       *events.Hub
	bus       riffbox.EventBus
	library   *riffbox.LibraryService
	search    *riffbox.SearchService
	authorize riffbox.PathAuthorizer

	indexOnce  sync.Once
	indexErr   error
	restoreBus func()
}

// NewApp creates a fully wired App from the given config.
// The caller must call Close when done.
func NewApp(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	clock := opts.Clock
	if clock == nil {
		clock = riffbox.RealClock{}
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	runID := clock.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, runID, level)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	codec, err := encryption.NewCodecFromConfig(cfg.Encryption, opts.Passphrase)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating codec: %w", err)
	}

	st, err := store.NewCollectionStoreFromConfig(ctx, cfg.Store, codec, clock, logger)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating collection store: %w", err)
	}

	idx, err := bleveindex.New(bleveindex.Options{Language: cfg.Search.Language})
	if err != nil {
		closeStore(st)
		logFile.Close()
		return nil, fmt.Errorf("creating search index: %w", err)
	}

	hub := events.NewHub(logger)
	bus := metrics.NewBus(events.Tee{hub, events.NewLogBus(logger)})

	thumbnailer := media.NewFFmpegThumbnailer(cfg.Media.FFmpegPath, cfg.Media.ThumbnailWidth)
	factory := metrics.NewVideoFactory(media.NewFileVideoFactory(thumbnailer, logger))
	library := riffbox.NewLibraryService(st, factory, bus, logger, clock, riffbox.UUIDGenerator{})

	engine := bleveindex.NewEngine(idx, st, logger, cfg.Search.MaxResults)
	searchSvc := riffbox.NewSearchService(metrics.NewIndexer(engine), logger)
	searchSvc.Bind(bus)
	searchSvc.SetRebuildOnSearch(cfg.Search.RebuildOnSearch)

	name := opts.Operation
	if name == "" {
		name = "unknown"
	}

	a := &App{
		cfg:        cfg,
		logger:     logger,
		logFile:    logFile,
		op:         NewOperation(name, clock.Now()),
		clock:      clock,
		store:      st,
		index:      idx,
		hub:        hub,
		bus:        bus,
		library:    library,
		search:     searchSvc,
		authorize:  media.AllowRoots(cfg.Media.AllowedRoots),
		restoreBus: riffbox.SetDefaultEventBus(bus),
	}

	logger.Debug("app opened", "operation", name, "store", cfg.Store.Type, "encryption", cfg.Encryption.Type)
	return a, nil
}

// Config returns the configuration the App was opened with.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Logger returns the App's logger.
func (a *App) Logger() riffbox.Logger {
	return a.logger
}

// CreateCollection resolves the given paths and ingests them into a new collection.
func (a *App) CreateCollection(rawPaths []string) (riffbox.Collection, error) {
	paths, err := resolvePaths(rawPaths)
	if err != nil {
		return riffbox.Collection{}, a.op.Record(err)
	}
	c, err := a.library.CreateCollection(paths)
	return c, a.op.Record(err)
}

// ListCollections returns every readable collection.
func (a *App) ListCollections() []riffbox.Collection {
	return a.library.ListCollections()
}

// GetCollection returns the collection with the given id.
func (a *App) GetCollection(id string) (riffbox.Collection, error) {
	c, err := a.library.GetCollection(id)
	return c, a.op.Record(err)
}

// VideoEdit lists metadata changes. Nil fields are left unchanged.
type VideoEdit struct {
	Name   *string
	Artist *string
	Song   *string
	Styles []string // replaces the style set when non-nil
	Tags   []string // replaces the tags when non-nil
}

// UpdateVideo applies edit to the video at rawPath in collection id and
// returns the updated video.
func (a *App) UpdateVideo(id, rawPath string, edit VideoEdit) (riffbox.Video, error) {
	v, err := a.updateVideo(id, rawPath, edit)
	return v, a.op.Record(err)
}

func (a *App) updateVideo(id, rawPath string, edit VideoEdit) (riffbox.Video, error) {
	c, err := a.library.GetCollection(id)
	if err != nil {
		return riffbox.Video{}, err
	}

	i := c.FindVideo(rawPath)
	if i < 0 {
		if abs, err := filepath.Abs(rawPath); err == nil {
			i = c.FindVideo(abs)
		}
	}
	if i < 0 {
		return riffbox.Video{}, fmt.Errorf("%w: %s in collection %s", riffbox.ErrVideoNotFound, rawPath, id)
	}

	v := c.Videos[i].Clone()
	if edit.Name != nil {
		v.Name = *edit.Name
	}
	if edit.Artist != nil {
		v.Artist = *edit.Artist
	}
	if edit.Song != nil {
		v.Song = *edit.Song
	}
	if edit.Styles != nil {
		styles := make([]riffbox.Style, 0, len(edit.Styles))
		for _, name := range edit.Styles {
			s, err := riffbox.ParseStyle(name)
			if err != nil {
				return riffbox.Video{}, err
			}
			styles = append(styles, s)
		}
		v.Style = styles
	}
	if edit.Tags != nil {
		v.Tags = append([]string{}, edit.Tags...)
	}

	updated, err := a.library.UpdateVideo(id, v)
	if err != nil {
		return riffbox.Video{}, err
	}
	return updated.Videos[updated.FindVideo(v.Path)], nil
}

// Rebuild re-indexes every video in the store.
func (a *App) Rebuild() error {
	return a.op.Record(a.search.IndexAllVideos())
}

// Search runs query and returns the selected videos in rank order. The
// results are also published on the App's event bus.
func (a *App) Search(query string, limit int) ([]riffbox.Video, error) {
	if err := a.ensureIndexed(); err != nil {
		return nil, a.op.Record(err)
	}

	results := events.NewMemoryBus()
	if err := a.search.SearchWith(events.Tee{results, a.bus}, query, limit, a.authorize); err != nil {
		return results.SelectedVideos(), a.op.Record(err)
	}
	return results.SelectedVideos(), nil
}

// ensureIndexed builds the index once when searches do not rebuild it.
func (a *App) ensureIndexed() error {
	if a.cfg.Search.RebuildOnSearch {
		return nil
	}
	a.indexOnce.Do(func() {
		a.indexErr = a.search.IndexAllVideos()
	})
	return a.indexErr
}

// Handler returns the HTTP API, including the websocket event stream.
func (a *App) Handler() http.Handler {
	return httpapi.NewServer(httpapi.Options{
		Library:   a.library,
		Search:    a.search,
		Broadcast: a.bus,
		Events:    a.hub,
		Authorize: a.authorize,
		Logger:    a.logger,
	})
}

// NewWatcher creates a watcher ingesting new files in the configured watch
// directories into the daily inbox collection.
func (a *App) NewWatcher() (*media.Watcher, error) {
	return media.NewWatcher(media.WatcherOptions{
		Dirs:       a.cfg.Server.WatchDirs,
		Extensions: a.cfg.Media.Extensions,
		Ignore:     a.cfg.Media.Ignore,
	}, a.library, a.logger)
}

// Serve runs the HTTP API on the configured address, plus the inbox watcher
// when watch directories are configured, until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if err := a.ensureIndexed(); err != nil {
		return a.op.Record(err)
	}

	srv := &http.Server{
		Addr:              a.cfg.Server.Listen,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup
	if len(a.cfg.Server.WatchDirs) > 0 {
		w, err := a.NewWatcher()
		if err != nil {
			return a.op.Record(fmt.Errorf("starting watcher: %w", err))
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Run(ctx)
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("serving", "listen", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	var err error
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = srv.Shutdown(shutdownCtx)
	case err = <-errCh:
	}
	wg.Wait()

	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	return a.op.Record(err)
}

// Close logs the operation outcome and releases all resources.
func (a *App) Close() error {
	var firstErr error

	if a.op.Failed() {
		a.logger.Warn("operation finished", "operation", a.op.Name, "status", a.op.Status,
			"duration", a.clock.Now().Sub(a.op.Started), "error", a.op.LastError)
	} else {
		a.logger.Info("operation finished", "operation", a.op.Name, "status", a.op.Status,
			"duration", a.clock.Now().Sub(a.op.Started))
	}

	if a.restoreBus != nil {
		a.restoreBus()
	}
	if err := a.hub.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing event hub: %w", err)
	}
	if err := a.index.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing search index: %w", err)
	}
	if err := closeStore(a.store); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing collection store: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}

func closeStore(st riffbox.CollectionStore) error {
	if c, ok := st.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func resolvePaths(rawPaths []string) ([]string, error) {
	paths := make([]string, 0, len(rawPaths))
	for _, p := range rawPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving path %s: %w", p, err)
		}
		paths = append(paths, abs)
	}
	return paths, nil
}
