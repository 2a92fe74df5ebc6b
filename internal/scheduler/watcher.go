package scheduler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/navspec/internal/logger"
	"github.com/MrSnakeDoc/navspec/internal/sources/navspec"
	"github.com/MrSnakeDoc/navspec/internal/utils"
)

// DefaultDebounce groups the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// DirWatcher signals trigger when a configuration file in dir changes.
// Editors and atomic writers produce create/rename bursts, so events are
// debounced into a single signal.
type DirWatcher struct {
	dir      string
	trigger  chan<- struct{}
	logger   logger.Logger
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewDirWatcher creates a watcher for dir. trigger is written without
// blocking: a pending signal already covers the change.
func NewDirWatcher(dir string, trigger chan<- struct{}, log logger.Logger, debounce time.Duration) *DirWatcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &DirWatcher{
		dir:      dir,
		trigger:  trigger,
		logger:   log,
		debounce: debounce,
	}
}

// Run watches until ctx is done.
func (w *DirWatcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer utils.Close(fsw)

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching configuration directory", logger.String("dir", w.dir))

	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !Relevant(event) {
				continue
			}
			w.logger.Debug("configuration file changed",
				logger.String("file", event.Name),
				logger.String("op", event.Op.String()))
			w.schedule()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.logger.Warn("watcher overflow, forcing reload")
				w.schedule()
				continue
			}
			w.logger.Warn("watcher error", logger.Error(err))
		}
	}
}

// Relevant reports whether event concerns a configuration file.
func Relevant(event fsnotify.Event) bool {
	if !navspec.IsConfigName(filepath.Base(event.Name)) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}

func (w *DirWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *DirWatcher) fire() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

func (w *DirWatcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
