package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"riffbox/internal/riffbox"
)

// DefaultSettleDelay is how long a file must stay quiet before ingestion.
const DefaultSettleDelay = 2 * time.Second

// Ingester receives batches of new video paths.
type Ingester interface {
	IngestInbox(paths []string) (riffbox.Collection, error)
}

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	Dirs        []string
	Extensions  []string
	Ignore      []string
	SettleDelay time.Duration
}

// Watcher ingests video files that appear in a set of directories. Events
// for a file are debounced until it has been quiet for SettleDelay; files
// that settle together are ingested as one batch.
type Watcher struct {
	watcher  *fsnotify.Watcher
	ingester Ingester
	logger   riffbox.Logger
	opts     WatcherOptions
	matchers map[string]*IgnoreMatcher

	mu      sync.Mutex
	pending map[string]time.Time
}

// NewWatcher creates a Watcher over opts.Dirs. Each directory's
// .riffboxignore is read once at startup.
func NewWatcher(opts WatcherOptions, ingester Ingester, logger riffbox.Logger) (*Watcher, error) {
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fw,
		ingester: ingester,
		logger:   logger,
		opts:     opts,
		matchers: make(map[string]*IgnoreMatcher),
		pending:  make(map[string]time.Time),
	}

	for _, dir := range opts.Dirs {
		dir = filepath.Clean(dir)
		extra, err := ParseIgnoreFile(filepath.Join(dir, IgnoreFileName))
		if err != nil {
			fw.Close()
			return nil, err
		}
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
		w.matchers[dir] = NewIgnoreMatcher(append(append([]string(nil), opts.Ignore...), extra...))
	}

	return w, nil
}

// Run processes filesystem events until ctx is cancelled, then closes the
// underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	tick := time.NewTicker(max(w.opts.SettleDelay/4, time.Millisecond))
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)

		case now := <-tick.C:
			w.flush(now)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !w.accepts(event.Name) {
		return
	}

	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// accepts reports whether path is a video file not matched by its
// directory's ignore patterns.
func (w *Watcher) accepts(path string) bool {
	if !IsVideoFile(path, w.opts.Extensions) {
		return false
	}
	dir := filepath.Dir(path)
	if m, ok := w.matchers[dir]; ok {
		rel, err := filepath.Rel(dir, path)
		if err != nil || m.Match(rel) {
			return false
		}
	}
	return true
}

// flush ingests every pending path that has been quiet for SettleDelay.
func (w *Watcher) flush(now time.Time) {
	w.mu.Lock()
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.opts.SettleDelay {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	var batch []string
	for _, p := range ready {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			batch = append(batch, p)
		}
	}
	if len(batch) == 0 {
		return
	}
	sort.Strings(batch)

	c, err := w.ingester.IngestInbox(batch)
	if err != nil {
		w.logger.Error("inbox ingestion failed", "paths", len(batch), "error", err)
		return
	}
	w.logger.Info("inbox ingested", "collection_id", c.ID, "paths", len(batch))
}
