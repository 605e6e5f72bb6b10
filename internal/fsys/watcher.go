package fsys

import (
	"fmt"
	"sync"
	"time"

	"filephile/internal/eventbus"
	"filephile/internal/log"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of events, e.g. from a multi-file copy
const DefaultDebounce = 150 * time.Millisecond

// Watcher watches the directory being browsed and publishes a
// DirectoryChangedEvent when its contents change on disk
type Watcher struct {
	bus      eventbus.EventBus
	debounce time.Duration

	fsWatcher *fsnotify.Watcher

	mu      sync.Mutex
	dir     string
	timer   *time.Timer
	stop    chan struct{}
	stopped bool
}

// NewWatcher creates a watcher publishing on bus
func NewWatcher(bus eventbus.EventBus, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		bus:       bus,
		debounce:  debounce,
		fsWatcher: fsWatcher,
		stop:      make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Watch switches the watched directory to dir
func (w *Watcher) Watch(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return fmt.Errorf("watcher stopped")
	}
	if dir == w.dir {
		return nil
	}
	if w.dir != "" {
		if err := w.fsWatcher.Remove(w.dir); err != nil {
			log.LogWithFields(log.F("directory", w.dir), log.F("error", err)).Debug("failed to stop watching")
		}
	}
	w.dir = dir
	if err := w.fsWatcher.Add(dir); err != nil {
		w.dir = ""
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	log.LogWithFields(log.F("directory", dir)).Debug("watching directory")
	return nil
}

// Dir returns the directory being watched
func (w *Watcher) Dir() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dir
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			w.schedule()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.report(err)

		case <-w.stop:
			return
		}
	}
}

// report logs a watcher failure and publishes it for the UI
func (w *Watcher) report(err error) {
	log.LogWithFields(log.F("error", err)).Error("fsnotify watcher error")
	w.bus.Publish(eventbus.ErrorEvent{Message: "watch", Err: fmt.Errorf("watching %s: %w", w.Dir(), err)})
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	dir := w.dir
	w.timer = time.AfterFunc(w.debounce, func() {
		w.bus.Publish(eventbus.DirectoryChangedEvent{Dir: dir})
	})
}

// Stop releases the underlying fsnotify watcher
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.stop)
	if err := w.fsWatcher.Close(); err != nil {
		log.LogWithFields(log.F("error", err)).Error("error closing fsnotify watcher")
	}
}
