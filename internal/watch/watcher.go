// Package watch re-runs an inspection callback when a dataset file changes
// on disk. Producers append records to profile files in place or replace
// them atomically, so both Write and Create events trigger a refresh.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Config holds configuration options for the watcher.
type Config struct {
	// Debounce is the delay to wait after a file change before the callback
	// runs. Default: 250 milliseconds.
	Debounce time.Duration
}

// Watcher observes one dataset file and invokes a callback after changes,
// debounced so a burst of writes yields one refresh.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()
	log      zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	timer  *time.Timer
	wg     sync.WaitGroup
}

// New creates a watcher for path. onChange is called from a timer goroutine
// after each debounced change.
func New(path string, cfg Config, log zerolog.Logger, onChange func()) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = 250 * time.Millisecond
	}
	return &Watcher{
		path:     path,
		debounce: cfg.Debounce,
		onChange: onChange,
		log:      log,
	}
}

// Start begins watching. It returns once the underlying watcher is
// registered; events are handled until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the parent directory: producers often replace the file instead
	// of writing it in place, which would drop a watch on the file itself.
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()

	w.wg.Add(1)
	go w.loop(runCtx, fw)
	return nil
}

// Stop cancels the watch loop and waits for it to exit. Pending debounce
// timers are dropped.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher) {
	defer w.wg.Done()
	defer fw.Close()

	base := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.log.Debug().Str("op", event.Op.String()).Msg("dataset changed")
			w.schedule()

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.onChange)
}
