package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/platform-mesh/golang-commons/logger"
)

// FileEventHandler is notified once a burst of events on the watched file
// has settled.
type FileEventHandler interface {
	OnFileChanged(path string)
	OnFileDeleted(path string)
}

type eventKind int

const (
	ignored eventKind = iota
	changed
	deleted
)

// FileWatcher watches a single file. Events are debounced: the handler sees
// the outcome of the last event of a burst, so an editor's rename-and-create
// save is reported as a change.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	handler  FileEventHandler
	log      *logger.Logger
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending eventKind
}

func NewFileWatcher(handler FileEventHandler, log *logger.Logger, debounce time.Duration) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &FileWatcher{
		watcher:  watcher,
		handler:  handler,
		log:      log,
		debounce: debounce,
	}, nil
}

// Watch blocks until ctx is done. An empty path is valid and only waits for
// ctx, so an unset optional config file does not stop the caller.
func (w *FileWatcher) Watch(ctx context.Context, path string) error {
	defer w.Close()

	if path == "" {
		w.log.Info().Msg("no file to watch, waiting for termination")
		<-ctx.Done()
		return nil
	}

	// the directory is watched so that replaced files keep being observed
	dir := filepath.Dir(path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	w.log.Info().Str("path", path).Dur("debounce", w.debounce).Msg("started watching file")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping file watcher")
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("file watcher events channel closed")
			}
			w.schedule(path, classify(event, path))
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("file watcher errors channel closed")
			}
			w.log.Error().Err(err).Msg("file watcher error")
		}
	}
}

// Close stops the pending notification and releases the fsnotify watcher.
func (w *FileWatcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	return w.watcher.Close()
}

func (w *FileWatcher) schedule(path string, kind eventKind) {
	if kind == ignored {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = kind
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.fire(path)
	})
}

func (w *FileWatcher) fire(path string) {
	w.mu.Lock()
	kind := w.pending
	w.pending = ignored
	w.mu.Unlock()

	switch kind {
	case changed:
		w.log.Debug().Str("path", path).Msg("file changed")
		w.handler.OnFileChanged(path)
	case deleted:
		w.log.Debug().Str("path", path).Msg("file deleted")
		w.handler.OnFileDeleted(path)
	}
}

func classify(event fsnotify.Event, target string) eventKind {
	if filepath.Clean(event.Name) != filepath.Clean(target) {
		return ignored
	}
	switch {
	case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
		return changed
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		return deleted
	default:
		return ignored
	}
}
