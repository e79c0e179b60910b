// Package rosterwatch notices when a loaded roster source file
// changes on disk. Rosters are frozen at category-load time, so a
// change never mutates state; the console just warns the operator
// that the file and the loaded roster have diverged.
package rosterwatch

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeCallback is called with paths of roster files that changed
// after load.
type ChangeCallback func(paths []string)

// Watcher monitors roster source files.
type Watcher struct {
	watcher  *fsnotify.Watcher
	callback ChangeCallback
	debounce time.Duration

	watched map[string]struct{}
	pending map[string]struct{}
	timer   *time.Timer
	mu      sync.Mutex

	cancel context.CancelFunc
}

// New creates a watcher delivering debounced change notifications.
func New(callback ChangeCallback) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:  fsw,
		callback: callback,
		debounce: 500 * time.Millisecond,
		watched:  make(map[string]struct{}),
		pending:  make(map[string]struct{}),
	}, nil
}

// AddFile starts watching one roster file. Already-watched files are
// a no-op.
func (w *Watcher) AddFile(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.watched[path]; exists {
		return nil
	}
	if err := w.watcher.Add(path); err != nil {
		return err
	}
	w.watched[path] = struct{}{}
	return nil
}

// Start begins delivering events until the context is cancelled or
// Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				w.handleEvent(event)
			case _, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				// Keep watching through transient errors.
			}
		}
	}()
}

// Stop ends watching.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.watcher.Close()
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, tracked := w.watched[event.Name]; !tracked {
		return
	}
	w.pending[event.Name] = struct{}{}

	// Editors fire bursts of events per save; collapse them.
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	if len(paths) > 0 && w.callback != nil {
		w.callback(paths)
	}
}
