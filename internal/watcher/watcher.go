package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"debtlens/internal/errors"
	"debtlens/internal/infrastructure"
)

const defaultDebounce = 500 * time.Millisecond

// ChangeHandler is invoked once per settled burst of filesystem events on
// the watched file. path is the file the burst was observed on.
type ChangeHandler func(ctx context.Context, path string)

// FileWatcher watches a single data file for changes. The parent directory
// is registered with fsnotify rather than the file itself, because most
// editors and download tools replace files by writing a temp file and
// renaming it over the target, which silently detaches a file-level watch.
// Rapid event bursts are collapsed by a debounce window.
type FileWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string // absolute path of the watched file
	dir      string // directory registered with fsnotify
	debounce time.Duration
	onChange ChangeHandler
	logger   *slog.Logger

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// New creates a watcher for path. debounce <= 0 falls back to 500ms.
func New(path string, debounce time.Duration, onChange ChangeHandler, logger *slog.Logger) (*FileWatcher, error) {
	if path == "" {
		return nil, errors.NewWatchError("watch path is empty", nil)
	}
	if onChange == nil {
		return nil, errors.NewWatchError("change handler is required", nil)
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.NewWatchError("failed to resolve watch path", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.NewWatchError("failed to create filesystem watcher", err)
	}

	return &FileWatcher{
		watcher:  fsWatcher,
		path:     abs,
		dir:      filepath.Dir(abs),
		debounce: debounce,
		onChange: onChange,
		logger:   logger.With(slog.String("component", "watcher")),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start registers the directory watch and launches the event loop. It is
// non-blocking. Callers treat an error here as a degraded mode, not a fatal
// one; the service works without live reloads.
func (w *FileWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	dir := w.dir
	w.mu.Unlock()

	if err := w.watcher.Add(dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return errors.NewWatchError("failed to watch directory", err)
	}

	w.logger.Info("Watching data file",
		slog.String("path", w.Path()),
		slog.String("dir", dir),
		slog.Duration("debounce", w.debounce))

	go w.run(ctx)
	return nil
}

// Stop halts the event loop and releases the fsnotify handle.
func (w *FileWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("Error closing filesystem watcher", slog.String("error", err.Error()))
	}
	w.logger.Info("Watcher stopped")
}

// Path returns the currently watched file.
func (w *FileWatcher) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}

// Update re-targets the watcher to a new file, moving the directory watch
// when the file lives elsewhere. Called after a reload switches the active
// dataset path.
func (w *FileWatcher) Update(path string) error {
	if path == "" {
		return errors.NewWatchError("watch path is empty", nil)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.NewWatchError("failed to resolve watch path", err)
	}

	w.mu.Lock()
	if abs == w.path {
		w.mu.Unlock()
		return nil
	}
	oldDir := w.dir
	newDir := filepath.Dir(abs)
	w.path = abs
	w.dir = newDir
	running := w.running
	w.mu.Unlock()

	if !running || oldDir == newDir {
		return nil
	}

	if err := w.watcher.Add(newDir); err != nil {
		return errors.NewWatchError("failed to watch directory", err)
	}
	if err := w.watcher.Remove(oldDir); err != nil {
		w.logger.Warn("Failed to drop old watch directory",
			slog.String("dir", oldDir),
			slog.String("error", err.Error()))
	}

	w.logger.Info("Watcher re-targeted",
		slog.String("path", abs),
		slog.String("dir", newDir))
	return nil
}

func (w *FileWatcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var debounce *time.Timer
	var debounceC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("Watcher context cancelled")
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				w.logger.Warn("Watcher event channel closed")
				return
			}
			if !w.matches(event) {
				continue
			}

			w.logger.Debug("Data file event",
				slog.String("op", event.Op.String()),
				slog.String("name", event.Name))

			if debounce == nil {
				debounce = time.NewTimer(w.debounce)
				debounceC = debounce.C
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(w.debounce)
			}

		case <-debounceC:
			debounce = nil
			debounceC = nil
			w.fire(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				w.logger.Warn("Watcher error channel closed")
				return
			}
			w.logger.Warn("Filesystem watcher error", slog.String("error", err.Error()))
		}
	}
}

// matches reports whether the event concerns the watched file. Write,
// create, rename and remove all count; a rename-replace shows up as Create
// on the target name, and Remove matters because the file may be recreated
// a moment later.
func (w *FileWatcher) matches(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	return filepath.Clean(event.Name) == w.Path()
}

func (w *FileWatcher) fire(ctx context.Context) {
	path := w.Path()
	w.logger.Info("Data file changed, triggering refresh", slog.String("path", path))
	w.onChange(ctx, path)
}
