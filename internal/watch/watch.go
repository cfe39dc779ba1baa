// Package watch signals when the navigation manifest changes on disk.
package watch

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the manifest must stay quiet before a change
// is reported.
const DefaultDebounce = 250 * time.Millisecond

// Watcher monitors a single manifest file using fsnotify. The parent
// directory is watched rather than the file, because editors and navstrip
// itself replace the file by renaming a temp file over it.
type Watcher struct {
	Path    string
	Changes <-chan time.Time // Read-only external channel

	debounce time.Duration
	changes  chan time.Time // Internal write channel
	done     chan struct{}
	watcher  *fsnotify.Watcher
}

// New creates a watcher for the manifest at path. A debounce <= 0 uses
// DefaultDebounce.
func New(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ch := make(chan time.Time, 1)
	return &Watcher{
		Path:     abs,
		Changes:  ch,
		debounce: debounce,
		changes:  ch,
		done:     make(chan struct{}),
		watcher:  fw,
	}, nil
}

// Start begins watching the manifest's directory.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.Path)); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	var pending time.Time
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.Path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.Now()
			}

		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < w.debounce {
				continue
			}
			w.emit(pending)
			pending = time.Time{}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Ignore watch errors; they're non-fatal.
		}
	}
}

// emit coalesces with a change not yet consumed.
func (w *Watcher) emit(at time.Time) {
	select {
	case w.changes <- at:
	default:
	}
}
