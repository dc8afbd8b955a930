package pipeline

import (
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/data4good/donorscope/config"
	"github.com/data4good/donorscope/errors"
	"github.com/data4good/donorscope/logger"
)

// Watcher reruns the pipeline when CSV files in the input directory change.
type Watcher struct {
	cfg            *config.Config
	watcher        *fsnotify.Watcher
	onResult       func(*Result)
	mu             sync.Mutex
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
	done           chan struct{}
}

// NewWatcher creates a watcher over the configured input directory.
// onResult is called after every triggered run; it may be nil.
func NewWatcher(cfg *config.Config, onResult func(*Result)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}

	if err := watcher.Add(cfg.Input.Dir); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "watch input directory %s", cfg.Input.Dir)
	}

	return &Watcher{
		cfg:            cfg,
		watcher:        watcher,
		onResult:       onResult,
		debouncePeriod: 500 * time.Millisecond, // CRM exports arrive as several files in quick succession
		done:           make(chan struct{}),
	}, nil
}

// Start begins watching for input changes.
func (w *Watcher) Start() {
	go w.watchLoop()
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// Only rerun on Write or Create of CSV files
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				if !strings.HasSuffix(strings.ToLower(event.Name), ".csv") {
					continue
				}

				logger.Infow("Input change detected",
					"file", event.Name,
					"op", event.Op.String())
				w.scheduleRun()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnw("Input watcher error",
				"error", err)
		}
	}
}

// scheduleRun debounces rapid file changes and triggers a pipeline run.
func (w *Watcher) scheduleRun() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.debouncePeriod, func() {
		result, err := Run(w.cfg)
		if err != nil {
			logger.Errorw("Triggered run failed",
				"error", err)
			return
		}
		if w.onResult != nil {
			w.onResult(result)
		}
	})
}

// Wait blocks until Stop is called.
func (w *Watcher) Wait() {
	<-w.done
}

// Stop stops watching and releases the watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.watcher.Close()
}
