package knowledge

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Choudharynipun/vakeel.ai/internal/logger"
)

// debounceWindow absorbs the burst of write events an editor or copy
// produces for a single file before re-indexing it.
const debounceWindow = 500 * time.Millisecond

// Watcher keeps the index in sync with the knowledge directory:
// created or modified .txt files are re-indexed, removed files have
// their records deleted.
type Watcher struct {
	loader  *Loader
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher over the loader's knowledge directory.
func NewWatcher(loader *Loader) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{loader: loader, watcher: fsw}, nil
}

// Run watches the knowledge directory until the context is cancelled.
// Events for non-.txt files are ignored. Watch failures surface once at
// startup; runtime errors are logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.watcher.Add(w.loader.Dir()); err != nil {
		return err
	}
	logger.Info("Watching knowledge directory %s", w.loader.Dir())

	// One timer per path so rapid writes to the same file index once.
	pending := make(map[string]*time.Timer)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != ".txt" {
				continue
			}

			switch {
			case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
				path := event.Name
				if t, exists := pending[path]; exists {
					t.Stop()
				}
				pending[path] = time.AfterFunc(debounceWindow, func() {
					if err := w.loader.LoadFile(ctx, path); err != nil {
						logger.Warn("Re-index of %s failed: %v", filepath.Base(path), err)
					}
				})

			case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
				if t, exists := pending[event.Name]; exists {
					t.Stop()
					delete(pending, event.Name)
				}
				removed, err := w.loader.Remove(ctx, event.Name)
				if err != nil {
					logger.Warn("Removing records for %s failed: %v", filepath.Base(event.Name), err)
					continue
				}
				logger.Info("Removed %d records for deleted file %s", removed, filepath.Base(event.Name))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Knowledge watcher error: %v", err)
		}
	}
}

// Close releases the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
